// Package reports fetches analytics reports and exports them.
package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/export"
	"github.com/wolfman30/clinicdesk/internal/resource"
)

// Config caches analytics for ten minutes.
var Config = resource.Config{
	Name:      "ReportService",
	Path:      "/reports",
	Namespace: "reports",
	TTL:       resource.AnalyticsTTL,
}

// Dashboard holds one report of each kind for the same range.
type Dashboard struct {
	Range        DateRange          `json:"range"`
	Revenue      *RevenueReport     `json:"revenue"`
	Appointments *AppointmentReport `json:"appointments"`
	Clients      *ClientReport      `json:"clients"`
	Products     *ProductReport     `json:"products"`
}

// ExportResult describes a written export.
type ExportResult struct {
	Filename    string
	ContentType string
	Bytes       int
	ArchiveKey  string // set when the export was archived to S3
}

// Option configures a Service.
type Option func(*Service)

// WithUploader archives every export through u.
func WithUploader(u *export.S3Uploader) Option {
	return func(s *Service) { s.uploader = u }
}

// WithClock overrides the time used for export filenames.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	base     *resource.Service[json.RawMessage]
	uploader *export.S3Uploader
	now      func() time.Time
}

func NewService(deps resource.Deps, opts ...Option) *Service {
	s := &Service{base: resource.New[json.RawMessage](Config, deps), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate fetches one report.
func (s *Service) Generate(ctx context.Context, kind Kind, rng DateRange) (Report, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, apiclient.Wrap(Config.Name, "generate", err)
	}
	var raw json.RawMessage
	if err := s.base.ReadInto(ctx, "generate", s.base.Endpoint(string(kind)), rng.Params(), &raw); err != nil {
		return nil, err
	}
	r, err := Decode(raw)
	if err != nil {
		return nil, apiclient.Wrap(Config.Name, "generate", err)
	}
	if r.Kind() != kind {
		return nil, apiclient.Wrap(Config.Name, "generate", fmt.Errorf("asked for %s report, got %s", kind, r.Kind()))
	}
	return r, nil
}

// Dashboard fetches every kind concurrently. The first failure cancels the
// rest and is returned.
func (s *Service) Dashboard(ctx context.Context, rng DateRange) (Dashboard, error) {
	d := Dashboard{Range: rng}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := s.Generate(gctx, KindRevenue, rng)
		if err == nil {
			d.Revenue = r.(*RevenueReport)
		}
		return err
	})
	g.Go(func() error {
		r, err := s.Generate(gctx, KindAppointments, rng)
		if err == nil {
			d.Appointments = r.(*AppointmentReport)
		}
		return err
	})
	g.Go(func() error {
		r, err := s.Generate(gctx, KindClients, rng)
		if err == nil {
			d.Clients = r.(*ClientReport)
		}
		return err
	})
	g.Go(func() error {
		r, err := s.Generate(gctx, KindProducts, rng)
		if err == nil {
			d.Products = r.(*ProductReport)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// Export generates a report and writes it to w in format, archiving a copy
// when an uploader is configured.
func (s *Service) Export(ctx context.Context, kind Kind, rng DateRange, format export.Format, w io.Writer) (ExportResult, error) {
	r, err := s.Generate(ctx, kind, rng)
	if err != nil {
		return ExportResult{}, err
	}

	var buf bytes.Buffer
	switch format {
	case export.FormatCSV:
		headers, rows := Table(r)
		err = export.WriteCSV(&buf, headers, rows)
	case export.FormatJSON:
		err = export.WriteJSON(&buf, r)
	case export.FormatPDF:
		headers, rows := Table(r)
		err = export.WritePrintableHTML(&buf, Title(r), headers, rows)
	default:
		err = fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return ExportResult{}, apiclient.Wrap(Config.Name, "export", err)
	}

	res := ExportResult{
		Filename:    export.Filename(string(kind)+" report", format, s.now()),
		ContentType: format.ContentType(),
		Bytes:       buf.Len(),
	}
	if s.uploader.Enabled() {
		key, err := s.uploader.Upload(ctx, res.Filename, res.ContentType, buf.Bytes())
		if err != nil {
			return ExportResult{}, apiclient.Wrap(Config.Name, "export", err)
		}
		res.ArchiveKey = key
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return ExportResult{}, apiclient.Wrap(Config.Name, "export", err)
	}
	return res, nil
}
