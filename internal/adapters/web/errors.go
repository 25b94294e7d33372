package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"auction-house/web/templates/layouts"
	"auction-house/web/templates/pages"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// renderError renders the error layout with status.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, heading, message string) {
	d := h.layoutData(w, r, layouts.Error, heading, "")
	h.write(w, r, status, layouts.Error, d, pages.Error(d, pages.ErrorData{
		Status:  status,
		Heading: heading,
		Message: message,
	}))
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, h.url("/api/")) {
		writeError(w, r, "not found", "NOT_FOUND", http.StatusNotFound)
		return
	}
	h.renderError(w, r, http.StatusNotFound, "Page not found", "The page you asked for does not exist.")
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusMethodNotAllowed, "Method not allowed", "")
}

func (h *Handler) forbidden(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusForbidden, "Access denied", "Your account cannot open this page.")
}
