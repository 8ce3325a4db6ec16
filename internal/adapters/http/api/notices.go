package api

import (
	"net/http"
	"strings"
)

// NoticesHandler serves the dismissible error notices.
type NoticesHandler struct {
	deps Dependencies
}

func NewNoticesHandler(deps Dependencies) *NoticesHandler {
	return &NoticesHandler{deps: deps}
}

func (h *NoticesHandler) HandleNotices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Notices(r.Context()))
}

// HandleDismiss removes a notice by id, routed as DELETE /notices/{id}.
func (h *NoticesHandler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/notices/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if !h.deps.DismissNotice(r.Context(), id) {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
