package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alnah/go-pdfserve"
	"github.com/alnah/go-pdfserve/internal/artifact"
	"github.com/alnah/go-pdfserve/internal/fileutil"
)

// DefaultTemplate is rendered when the request names none.
const DefaultTemplate = "proforma_invoice.html"

// maxPayloadBytes bounds the request body (payloads are invoice-sized).
const maxPayloadBytes = 4 << 20

// deliveryDescriptor is the /render/link response: where the stored
// artifact lives and for how long. A non-positive expires_in means the
// artifact never expires.
type deliveryDescriptor struct {
	URL       string `json:"url"`
	Filename  string `json:"filename"`
	ExpiresIn int    `json:"expires_in"`
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// renderInput is everything a render endpoint needs from the request.
type renderInput struct {
	payload  map[string]any
	template string
	filename string
}

// parseRenderRequest decodes the JSON payload and picks up the template
// and filename parameters from the query string.
func parseRenderRequest(r *http.Request) (*renderInput, error) {
	payload := map[string]any{}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		return nil, errors.New("reading request body failed")
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, errors.New("invalid json body")
		}
	}

	q := r.URL.Query()
	template := q.Get("template")
	if template == "" {
		template = DefaultTemplate
	}

	return &renderInput{
		payload:  payload,
		template: template,
		filename: q.Get("filename"),
	}, nil
}

// render runs one request through the pipeline on a pooled service.
// The acquire may wait for a free browser; the conversion itself blocks
// only this request.
func (s *server) render(ctx context.Context, in *renderInput, htmlOnly bool) (*pdfserve.Result, error) {
	svc := s.pool.Acquire()
	defer s.pool.Release(svc)

	return svc.Render(ctx, pdfserve.Request{
		Template: in.template,
		Data:     in.payload,
		HTMLOnly: htmlOnly,
	})
}

func (s *server) renderPDF(w http.ResponseWriter, r *http.Request) {
	in, err := parseRenderRequest(r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.render(r.Context(), in, false)
	if err != nil {
		status, detail := mapPipelineError(err)
		writeDetail(w, status, detail)
		return
	}

	name := artifact.PickBaseName(in.payload, in.template, in.filename) + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Rendered-Filename", name)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.PDF)
}

func (s *server) renderHTML(w http.ResponseWriter, r *http.Request) {
	in, err := parseRenderRequest(r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.render(r.Context(), in, true)
	if err != nil {
		status, detail := mapPipelineError(err)
		writeDetail(w, status, detail)
		return
	}

	name := artifact.PickBaseName(in.payload, in.template, in.filename) + ".html"
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Rendered-Filename", name)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result.HTML)
}

func (s *server) renderLink(w http.ResponseWriter, r *http.Request) {
	in, err := parseRenderRequest(r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.EnsureDir(); err != nil {
		status, detail := mapPipelineError(err)
		writeDetail(w, status, detail)
		return
	}

	// Expired leftovers go before the new artifact comes in, so the
	// directory stays bounded even if deferred deletions were lost to a
	// restart.
	s.store.Sweep(time.Now())

	result, err := s.render(r.Context(), in, false)
	if err != nil {
		status, detail := mapPipelineError(err)
		writeDetail(w, status, detail)
		return
	}

	base := artifact.PickBaseName(in.payload, in.template, in.filename)
	storageName, err := artifact.BuildStorageName(base, time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "storage name generation failed",
			"operation", "render_link",
			"outcome", "failure",
			"request_id", requestIDFromContext(r.Context()),
			"error", err.Error(),
		)
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	path, err := s.store.Write(storageName, result.PDF)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "artifact write failed",
			"operation", "render_link",
			"outcome", "failure",
			"request_id", requestIDFromContext(r.Context()),
			"error", err.Error(),
		)
		writeDetail(w, http.StatusInternalServerError, "storing artifact failed")
		return
	}

	// Fire-and-forget; never blocks this response.
	s.store.ScheduleDeletion(path)

	writeJSON(w, http.StatusOK, deliveryDescriptor{
		URL:       s.baseURL(r) + "/files/" + storageName,
		Filename:  storageName,
		ExpiresIn: s.cfg.TTLSeconds,
	})
}

func (s *server) downloadFile(w http.ResponseWriter, r *http.Request) {
	// chi matches on the raw path, so the parameter may still carry
	// percent-encoded separators. Decode before validating.
	name, err := url.PathUnescape(chi.URLParam(r, "fileName"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid file name")
		return
	}

	// Traversal and extension checks come before any filesystem access.
	if name == "" || strings.ContainsAny(name, "/\\") || !strings.HasSuffix(name, ".pdf") {
		writeDetail(w, http.StatusBadRequest, "invalid file name")
		return
	}

	path := s.store.Path(name)
	if !fileutil.FileExists(path) {
		writeDetail(w, http.StatusNotFound, "file not found")
		return
	}

	// A TTL may elapse before any sweep visits the file; serving stale
	// bytes is worse than a 404, so the read path expires it here.
	if s.store.IsExpired(path, time.Now()) {
		s.store.DeleteIfExists(path)
		writeDetail(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

// baseURL picks the link prefix: the configured public base when set,
// otherwise the inbound request's own origin.
func (s *server) baseURL(r *http.Request) string {
	if s.cfg.PublicBaseURL != "" {
		return s.cfg.PublicBaseURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
