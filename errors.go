package pdfserve

import "errors"

// Sentinel errors for the render pipeline.
var (
	ErrEmptyTemplate  = errors.New("template name cannot be empty")
	ErrNilEngine      = errors.New("service has no template engine")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
)
