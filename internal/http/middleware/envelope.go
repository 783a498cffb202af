package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
)

// writeError answers in the backend envelope so clients see an APIError with
// the code and message rather than a bare text body.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiclient.Fail[any](code, message))
}
