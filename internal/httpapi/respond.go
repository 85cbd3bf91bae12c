package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alnah/go-pdfserve"
	"github.com/alnah/go-pdfserve/internal/artifact"
	"github.com/alnah/go-pdfserve/internal/templates"
)

// errorBody is the shape of every failure response. A short
// machine-readable detail string, never a stack trace or internal path.
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// mapPipelineError translates a render pipeline failure into an HTTP
// status and detail string. Template not-found is the only client error;
// its detail carries the template name so callers can see what was
// requested. Everything else stays generic.
func mapPipelineError(err error) (int, string) {
	switch {
	case errors.Is(err, templates.ErrNotFound):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, templates.ErrInvalidName),
		errors.Is(err, pdfserve.ErrEmptyTemplate):
		return http.StatusBadRequest, "invalid template name"
	case errors.Is(err, templates.ErrRender):
		return http.StatusInternalServerError, "template rendering failed"
	case errors.Is(err, artifact.ErrStorageUnavailable):
		return http.StatusInternalServerError, "storage unavailable"
	case errors.Is(err, pdfserve.ErrPDFGeneration),
		errors.Is(err, pdfserve.ErrBrowserConnect),
		errors.Is(err, pdfserve.ErrPageCreate),
		errors.Is(err, pdfserve.ErrPageLoad):
		return http.StatusInternalServerError, "pdf conversion failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
