// Package pdfserve renders named HTML templates against JSON payloads and
// converts the result to PDF using headless Chrome.
//
// # Quick Start
//
// Create a service, render a document, and close when done:
//
//	svc := pdfserve.New(pdfserve.WithEngine(engine))
//	defer svc.Close()
//
//	result, err := svc.Render(ctx, pdfserve.Request{
//	    Template: "proforma_invoice.html",
//	    Data:     payload,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("invoice.pdf", result.PDF, 0644)
//
// The result contains both the PDF bytes (result.PDF) and the intermediate
// HTML (result.HTML). Use Request.HTMLOnly to skip PDF generation.
//
// # Pipeline
//
// Each request passes through two stages:
//
//  1. Template rendering (html/template against the request payload)
//  2. PDF rendering via headless Chrome (go-rod), A4 with backgrounds
//
// Template lookup failures are distinguishable from every other error via
// the template engine's not-found sentinel; anything else is a server-side
// failure.
//
// # Parallel Requests
//
// PDF conversion is slow and resource-heavy (one Chrome instance per
// service). HTTP servers should put services behind a ServicePool so
// concurrent requests convert in parallel without unbounded browsers:
//
//	pool := pdfserve.NewServicePool(pdfserve.ResolvePoolSize(0), newService)
//	defer pool.Close()
//
//	svc := pool.Acquire()
//	defer pool.Release(svc)
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library downloads a
// managed Chromium on first run. For containers and CI set ROD_NO_SANDBOX=1
// and/or ROD_BROWSER_BIN to a pre-installed binary.
package pdfserve
