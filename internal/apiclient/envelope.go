package apiclient

import (
	"encoding/json"
	"errors"
)

// Envelope is the JSON shape every backend endpoint answers with. Data is
// kept raw so callers decode it into their own record types.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Error      *ErrorInfo      `json:"error,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// Response is the typed form of Envelope.
type Response[T any] struct {
	Success    bool        `json:"success"`
	Data       *T          `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      *ErrorInfo  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Pagination uses 1-indexed pages; Total, Pages, HasNext and HasPrev are
// computed by the server.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// NewPagination computes the derived fields for a page of a result set.
func NewPagination(page, limit, total int) Pagination {
	if page < 1 {
		page = 1
	}
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

var (
	errSuccessWithoutData = errors.New("envelope: success without data")
	errFailureWithoutErr  = errors.New("envelope: failure without error")
	errSuccessWithError   = errors.New("envelope: success with error")
	errFailureWithData    = errors.New("envelope: failure with data")
)

// Validate checks success ⇔ data present and failure ⇔ error present.
func (e *Envelope) Validate() error {
	hasData := len(e.Data) > 0 && string(e.Data) != "null"
	return validate(e.Success, hasData, e.Error != nil)
}

// Validate checks success ⇔ data present and failure ⇔ error present.
func (r *Response[T]) Validate() error {
	return validate(r.Success, r.Data != nil, r.Error != nil)
}

func validate(success, hasData, hasError bool) error {
	switch {
	case success && !hasData:
		return errSuccessWithoutData
	case success && hasError:
		return errSuccessWithError
	case !success && !hasError:
		return errFailureWithoutErr
	case !success && hasData:
		return errFailureWithData
	}
	return nil
}

// OK builds a successful typed response.
func OK[T any](data T, pagination *Pagination) Response[T] {
	return Response[T]{Success: true, Data: &data, Pagination: pagination}
}

// Fail builds a failed typed response.
func Fail[T any](code, message string) Response[T] {
	return Response[T]{Success: false, Error: &ErrorInfo{Code: code, Message: message}}
}

// failureMessage follows the error.message → message fallback chain.
func (e *Envelope) failureMessage() string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return e.Message
}
