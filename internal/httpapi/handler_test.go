package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-pdfserve"
	"github.com/alnah/go-pdfserve/internal/artifact"
	"github.com/alnah/go-pdfserve/internal/config"
	"github.com/alnah/go-pdfserve/internal/httpapi"
	"github.com/alnah/go-pdfserve/internal/templates"
)

// fakeConverter stands in for headless Chrome.
type fakeConverter struct {
	err error
}

func (f *fakeConverter) ToPDF(_ context.Context, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

func (f *fakeConverter) Close() error { return nil }

type env struct {
	cfg    *config.Config
	store  *artifact.Store
	router http.Handler
}

func newEnv(t *testing.T, mutate func(*config.Config)) *env {
	t.Helper()

	cfg := config.Default()
	cfg.StorageDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := artifact.NewStore(cfg.StorageDir, cfg.TTL(), logger)

	engine := templates.NewEngine(templates.NewEmbeddedLoader())
	pool := pdfserve.NewServicePool(2, func() *pdfserve.Service {
		return pdfserve.New(
			pdfserve.WithEngine(engine),
			pdfserve.WithConverter(&fakeConverter{}),
		)
	})
	t.Cleanup(func() { _ = pool.Close() })

	return &env{
		cfg:    cfg,
		store:  store,
		router: httpapi.NewRouter(cfg, pool, store, logger),
	}
}

func (e *env) do(t *testing.T, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response %q is not an error body: %v", rec.Body.String(), err)
	}
	return body.Detail
}

// ---------------------------------------------------------------------------
// TestHealth
// ---------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	t.Parallel()

	e := newEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/health", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

// ---------------------------------------------------------------------------
// TestRenderPDF
// ---------------------------------------------------------------------------

func TestRenderPDF_InvoiceNumberNaming(t *testing.T) {
	t.Parallel()

	e := newEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/render", `{"invoice":{"number":"INV-42"}}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, `filename="INV-42.pdf"`) {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("X-Rendered-Filename"); got != "INV-42.pdf" {
		t.Errorf("X-Rendered-Filename = %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Errorf("body does not look like a PDF: %q", rec.Body.String()[:10])
	}
}

func TestRenderPDF_ExplicitFilenameWins(t *testing.T) {
	t.Parallel()

	e := newEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/render?filename=../../etc/passwd.pdf",
		`{"invoice":{"number":"INV-42"}}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Rendered-Filename"); got != "passwd.pdf" {
		t.Errorf("X-Rendered-Filename = %q, want traversal reduced to stem", got)
	}
}

func TestRenderPDF_UnknownTemplate(t *testing.T) {
	t.Parallel()

	e := newEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/render?template=bogus.html", `{}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if d := detail(t, rec); !strings.Contains(d, "bogus.html") {
		t.Errorf("detail = %q, want the template name mentioned", d)
	}
}

func TestRenderPDF_InvalidJSON(t *testing.T) {
	t.Parallel()

	e := newEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/render", `{not json`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRenderPDF_EmptyBodyUsesDefaults(t *testing.T) {
	t.Parallel()

	e := newEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/render", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	// No explicit name, no invoice number: falls back to the template stem.
	if got := rec.Header().Get("X-Rendered-Filename"); got != "proforma_invoice.pdf" {
		t.Errorf("X-Rendered-Filename = %q", got)
	}
}

func TestRenderPDF_ConversionFailure(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.StorageDir = t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := artifact.NewStore(cfg.StorageDir, cfg.TTL(), logger)
	engine := templates.NewEngine(templates.NewEmbeddedLoader())
	pool := pdfserve.NewServicePool(1, func() *pdfserve.Service {
		return pdfserve.New(
			pdfserve.WithEngine(engine),
			pdfserve.WithConverter(&fakeConverter{err: pdfserve.ErrPDFGeneration}),
		)
	})
	t.Cleanup(func() { _ = pool.Close() })
	router := httpapi.NewRouter(cfg, pool, store, logger)

	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if d := detail(t, rec); d != "pdf conversion failed" {
		t.Errorf("detail = %q", d)
	}
}

// ---------------------------------------------------------------------------
// TestRenderHTML
// ---------------------------------------------------------------------------

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	e := newEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/render/html", `{"invoice":{"number":"INV-7"}}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != "inline" {
		t.Errorf("Content-Disposition = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "INV-7") {
		t.Error("rendered HTML missing the invoice number")
	}
}

// ---------------------------------------------------------------------------
// TestAccessGate
// ---------------------------------------------------------------------------

func TestAccessGate(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(cfg *config.Config) { cfg.APIToken = "secret" })

	tests := []struct {
		name   string
		target string
		header map[string]string
		want   int
	}{
		{
			name:   "no credential",
			target: "/render",
			want:   http.StatusUnauthorized,
		},
		{
			name:   "bearer token",
			target: "/render",
			header: map[string]string{"Authorization": "Bearer secret"},
			want:   http.StatusOK,
		},
		{
			name:   "bearer scheme is case-insensitive",
			target: "/render",
			header: map[string]string{"Authorization": "bearer secret"},
			want:   http.StatusOK,
		},
		{
			name:   "wrong bearer token",
			target: "/render",
			header: map[string]string{"Authorization": "Bearer wrong"},
			want:   http.StatusUnauthorized,
		},
		{
			name:   "x-api-key header",
			target: "/render",
			header: map[string]string{"X-API-Key": "secret"},
			want:   http.StatusOK,
		},
		{
			name:   "token query parameter",
			target: "/render?token=secret",
			want:   http.StatusOK,
		},
		{
			name:   "access_token query parameter",
			target: "/render?access_token=secret",
			want:   http.StatusOK,
		},
		{
			name:   "first candidate wins over later ones",
			target: "/render?token=secret",
			header: map[string]string{"Authorization": "Bearer wrong"},
			want:   http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, tt.target, `{}`, tt.header)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAccessGate_HealthIsOpen(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(cfg *config.Config) { cfg.APIToken = "secret" })
	rec := e.do(t, http.MethodGet, "/health", "", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want health to bypass the gate", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// TestRenderLink
// ---------------------------------------------------------------------------

func TestRenderLink(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(cfg *config.Config) { cfg.TTLSeconds = 3600 })
	rec := e.do(t, http.MethodPost, "/render/link", `{"invoice":{"number":"INV-42"}}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var desc struct {
		URL       string `json:"url"`
		Filename  string `json:"filename"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &desc); err != nil {
		t.Fatalf("decoding descriptor: %v", err)
	}

	if desc.ExpiresIn != 3600 {
		t.Errorf("expires_in = %d, want 3600", desc.ExpiresIn)
	}
	if !strings.HasPrefix(desc.Filename, "INV-42-") || !strings.HasSuffix(desc.Filename, ".pdf") {
		t.Errorf("filename = %q, want INV-42-<timestamp>-<suffix>.pdf", desc.Filename)
	}
	if !strings.HasSuffix(desc.URL, "/files/"+desc.Filename) {
		t.Errorf("url = %q does not point at /files/%s", desc.URL, desc.Filename)
	}

	// The artifact must be on disk and immediately downloadable.
	if _, err := os.Stat(filepath.Join(e.cfg.StorageDir, desc.Filename)); err != nil {
		t.Fatalf("artifact not stored: %v", err)
	}
	dl := e.do(t, http.MethodGet, "/files/"+desc.Filename, "", nil)
	if dl.Code != http.StatusOK {
		t.Errorf("download status = %d, want 200", dl.Code)
	}
	if got := dl.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("download Content-Type = %q", got)
	}
}

func TestRenderLink_PublicBaseURL(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(cfg *config.Config) {
		cfg.PublicBaseURL = "https://pdf.example.com"
	})
	rec := e.do(t, http.MethodPost, "/render/link", `{}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var desc struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &desc); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(desc.URL, "https://pdf.example.com/files/") {
		t.Errorf("url = %q, want the configured public base", desc.URL)
	}
}

func TestRenderLink_EagerSweepClearsExpired(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(cfg *config.Config) { cfg.TTLSeconds = 60 })
	if err := e.store.EnsureDir(); err != nil {
		t.Fatal(err)
	}
	stale, err := e.store.Write("stale.pdf", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatal(err)
	}

	rec := e.do(t, http.MethodPost, "/render/link", `{}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("expired artifact survived the eager sweep")
	}
}

// ---------------------------------------------------------------------------
// TestDownload
// ---------------------------------------------------------------------------

func TestDownload_InvalidNames(t *testing.T) {
	t.Parallel()

	e := newEnv(t, nil)

	tests := []struct {
		name   string
		target string
	}{
		{name: "encoded traversal", target: "/files/..%2Fsecret.pdf"},
		{name: "encoded backslash", target: "/files/..%5Csecret.pdf"},
		{name: "wrong extension", target: "/files/report.txt"},
		{name: "no extension", target: "/files/report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodGet, tt.target, "", nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 before any filesystem access", rec.Code)
			}
		})
	}
}

func TestDownload_Missing(t *testing.T) {
	t.Parallel()

	e := newEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/files/never-existed.pdf", "", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDownload_ExpiredIsDeletedAndNotFound(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(cfg *config.Config) { cfg.TTLSeconds = 60 })
	if err := e.store.EnsureDir(); err != nil {
		t.Fatal(err)
	}
	path, err := e.store.Write("old.pdf", []byte("%PDF-1.7"))
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}

	rec := e.do(t, http.MethodGet, "/files/old.pdf", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for expired artifact", rec.Code)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired artifact not deleted by the read path")
	}
}

func TestDownload_DisabledTTLServesForever(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(cfg *config.Config) { cfg.TTLSeconds = 0 })
	if err := e.store.EnsureDir(); err != nil {
		t.Fatal(err)
	}
	path, err := e.store.Write("forever.pdf", []byte("%PDF-1.7"))
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-240 * time.Hour)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}

	rec := e.do(t, http.MethodGet, "/files/forever.pdf", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with expiry disabled", rec.Code)
	}
}

func TestDownload_NoAuthRequired(t *testing.T) {
	t.Parallel()

	// The unguessable storage name is the capability; the gate stays out
	// of the download path.
	e := newEnv(t, func(cfg *config.Config) { cfg.APIToken = "secret" })
	if err := e.store.EnsureDir(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.store.Write("open.pdf", []byte("%PDF-1.7")); err != nil {
		t.Fatal(err)
	}

	rec := e.do(t, http.MethodGet, "/files/open.pdf", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 without credentials", rec.Code)
	}
}
