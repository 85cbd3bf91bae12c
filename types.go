package pdfserve

import (
	"context"
	"time"
)

// Request contains one document's rendering parameters. The payload is
// opaque to the pipeline: it flows into the template untouched.
type Request struct {
	Template string         // Template filename, e.g. "proforma_invoice.html" (required)
	Data     map[string]any // Arbitrary JSON payload (may be nil)
	HTMLOnly bool           // Skip PDF generation
}

// Result is one rendered document. Produced once per request, immutable
// after creation, never cached or shared across requests.
type Result struct {
	HTML string // Always set
	PDF  []byte // Set unless Request.HTMLOnly
}

// TemplateRenderer maps a template name plus payload to HTML markup.
// The concrete engine lives in internal/templates; servers may substitute
// fakes in tests.
type TemplateRenderer interface {
	Render(ctx context.Context, name string, data map[string]any) (string, error)
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout time.Duration
}

// defaultTimeout bounds a single PDF conversion.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the PDF conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pdfserve: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithEngine sets the template engine used for the render stage.
func WithEngine(engine TemplateRenderer) Option {
	return func(s *Service) {
		s.engine = engine
	}
}

// WithConverter replaces the PDF converter (e.g. by tests).
func WithConverter(conv PDFConverter) Option {
	return func(s *Service) {
		s.pdfConverter = conv
	}
}
