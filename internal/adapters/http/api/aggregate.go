package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"courtlens/internal/app"
	"courtlens/internal/compute"
	"courtlens/internal/domain/model"
)

// AggregateHandler serves ad-hoc spatial aggregations over a point subset.
type AggregateHandler struct {
	deps Dependencies
}

func NewAggregateHandler(deps Dependencies) *AggregateHandler {
	return &AggregateHandler{deps: deps}
}

type aggregateRequest struct {
	Indices  []int  `json:"indices"`
	Channel  string `json:"channel"`
	Percent  bool   `json:"percent"`
	Weighted bool   `json:"weighted"`
	TimeBin  *int   `json:"time_bin,omitempty"`
}

type aggregateResponse struct {
	Values   []float64 `json:"values"`
	Attempts []float64 `json:"attempts,omitempty"`
}

// HandleAggregate computes per-cell sums for a channel, or shooting
// percentages when percent is set. Weighted only applies to percent mode.
func (h *AggregateHandler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	var req aggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if req.Percent {
		values, attempts, err := h.deps.AggregatePercent(r.Context(), req.Indices, req.Weighted, req.TimeBin)
		if err != nil {
			writeAggregateError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, aggregateResponse{Values: values, Attempts: attempts})
		return
	}

	channel, err := model.ParseChannel(req.Channel)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_channel", err)
		return
	}
	values, err := h.deps.Aggregate(r.Context(), req.Indices, channel, req.TimeBin)
	if err != nil {
		writeAggregateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, aggregateResponse{Values: values})
}

func writeAggregateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrBadChannel):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, compute.ErrBadResponse):
		writeError(w, http.StatusBadGateway, "bad_response", err)
	default:
		writeError(w, http.StatusBadGateway, "compute_unavailable", err)
	}
}
