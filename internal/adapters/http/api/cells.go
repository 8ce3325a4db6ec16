package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"courtlens/internal/domain/render"
	"courtlens/internal/domain/tensor"
)

// CellsHandler serves the rendered contribution cells and their display
// parameters.
type CellsHandler struct {
	deps Dependencies
}

func NewCellsHandler(deps Dependencies) *CellsHandler {
	return &CellsHandler{deps: deps}
}

type cellView struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Value     float64 `json:"value"`
	Dominance float64 `json:"dominance"`
	Size      float64 `json:"size"`
	Color     string  `json:"color"`
}

type cellsResponse struct {
	Time  string     `json:"time"`
	Cells []cellView `json:"cells"`
}

// HandleCells returns the current display cells. The optional time query
// parameter ("all" or a bin index) overrides the stored selector for this
// request only; PUT /cells/params is the only way to change it.
func (h *CellsHandler) HandleCells(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	var (
		cells []render.Cell
		err   error
	)
	sel := h.deps.TimeSelector(r.Context())
	if raw := r.URL.Query().Get("time"); raw != "" {
		if sel, err = tensor.ParseTimeSelector(raw); err != nil {
			writeError(w, http.StatusBadRequest, "bad_time", err)
			return
		}
		cells, err = h.deps.CellsAt(r.Context(), sel)
	} else {
		cells, err = h.deps.Cells(r.Context())
	}
	if err != nil {
		if errors.Is(err, tensor.ErrBadTimeBin) {
			writeError(w, http.StatusBadRequest, "bad_time", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "reduce_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, cellsResponse{
		Time:  sel.String(),
		Cells: toCellViews(cells),
	})
}

type paramsRequest struct {
	Time string `json:"time"`
}

// HandleParams updates the stored display parameters.
func (h *CellsHandler) HandleParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	var req paramsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	sel, err := tensor.ParseTimeSelector(req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_time", err)
		return
	}
	if err := h.deps.SetTimeSelector(r.Context(), sel); err != nil {
		writeError(w, http.StatusBadRequest, "bad_time", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"time": sel.String()})
}

func toCellViews(cells []render.Cell) []cellView {
	views := make([]cellView, 0, len(cells))
	for _, c := range cells {
		views = append(views, cellView{
			X:         c.X,
			Y:         c.Y,
			Value:     c.Value,
			Dominance: c.Dominance,
			Size:      c.Size,
			Color:     c.Color.String(),
		})
	}
	return views
}
