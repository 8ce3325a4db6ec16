package api

import (
	"encoding/json"
	"net/http"
)

// SelectionHandler drives the two-cluster selection cycle.
type SelectionHandler struct {
	deps Dependencies
}

func NewSelectionHandler(deps Dependencies) *SelectionHandler {
	return &SelectionHandler{deps: deps}
}

type selectRequest struct {
	Indices []int `json:"indices"`
}

// HandleSelection serves GET for the current selection and POST to apply a
// lasso of point indices to it.
func (h *SelectionHandler) HandleSelection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Selection(r.Context()))
	case http.MethodPost:
		var req selectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, h.deps.Select(r.Context(), req.Indices))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
	}
}

func (h *SelectionHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ResetSelection(r.Context()))
}
