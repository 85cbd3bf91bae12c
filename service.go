package pdfserve

import (
	"context"
	"fmt"
)

// Service orchestrates the template-to-PDF pipeline.
type Service struct {
	cfg          serviceConfig
	engine       TemplateRenderer
	pdfConverter PDFConverter
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g. WithTimeout, WithEngine).
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create PDF converter if not injected (e.g., by tests)
	if s.pdfConverter == nil {
		s.pdfConverter = newRodConverter(s.cfg.timeout)
	}

	return s
}

// Render runs the pipeline for one request: template to HTML, then HTML
// to PDF unless req.HTMLOnly. A template lookup failure surfaces as the
// engine's not-found error so callers can map it to a client error;
// everything after that point is a server-side failure.
func (s *Service) Render(ctx context.Context, req Request) (*Result, error) {
	if req.Template == "" {
		return nil, ErrEmptyTemplate
	}
	if s.engine == nil {
		return nil, ErrNilEngine
	}

	htmlContent, err := s.engine.Render(ctx, req.Template, req.Data)
	if err != nil {
		return nil, err
	}

	result := &Result{HTML: htmlContent}
	if req.HTMLOnly {
		return result, nil
	}

	// The conversion is seconds-scale and blocks only this request; no
	// lock or shared state is held while waiting on the browser.
	pdfBytes, err := s.pdfConverter.ToPDF(ctx, htmlContent)
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}
	result.PDF = pdfBytes

	return result, nil
}

// Close releases resources (headless Chrome browser).
func (s *Service) Close() error {
	if s.pdfConverter != nil {
		return s.pdfConverter.Close()
	}
	return nil
}
