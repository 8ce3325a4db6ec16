// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"courtlens/internal/app"
	"courtlens/internal/compute"
	"courtlens/internal/domain/model"
	"courtlens/internal/domain/render"
	"courtlens/internal/domain/tensor"
)

// Dependencies bundles the session operations the handlers need. Using an
// interface keeps the handler layer loosely coupled to the app package.
type Dependencies interface {
	Initialize(ctx context.Context, req compute.InitializeRequest) (app.InitSummary, error)
	Select(ctx context.Context, indices []int) app.SelectionView
	ResetSelection(ctx context.Context) app.SelectionView
	Selection(ctx context.Context) app.SelectionView
	Aggregate(ctx context.Context, indices []int, channel model.Channel, timeBin *int) ([]float64, error)
	AggregatePercent(ctx context.Context, indices []int, weighted bool, timeBin *int) (values, attempts []float64, err error)
	Cells(ctx context.Context) ([]render.Cell, error)
	CellsAt(ctx context.Context, sel tensor.TimeSelector) ([]render.Cell, error)
	SetTimeSelector(ctx context.Context, sel tensor.TimeSelector) error
	TimeSelector(ctx context.Context) tensor.TimeSelector
	Points(ctx context.Context) []model.Point
	AvailablePlayers(ctx context.Context, seasons []int) ([]compute.PlayerInfo, error)
	Notices(ctx context.Context) []app.Notice
	DismissNotice(ctx context.Context, id string) bool
	GetStats() map[string]any
	Ready() bool
}

// Server wires HTTP routes for the session API.
type Server struct {
	sessionHandler   *SessionHandler
	selectionHandler *SelectionHandler
	aggregateHandler *AggregateHandler
	cellsHandler     *CellsHandler
	noticesHandler   *NoticesHandler
	statsHandler     *StatsHandler
	healthHandler    *HealthHandler
}

// NewServer creates the API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		sessionHandler:   NewSessionHandler(deps),
		selectionHandler: NewSelectionHandler(deps),
		aggregateHandler: NewAggregateHandler(deps),
		cellsHandler:     NewCellsHandler(deps),
		noticesHandler:   NewNoticesHandler(deps),
		statsHandler:     NewStatsHandler(deps),
		healthHandler:    NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/session/initialize", MetricsMiddleware(s.sessionHandler.HandleInitialize, "initialize"))
	mux.HandleFunc("/points", MetricsMiddleware(s.sessionHandler.HandlePoints, "points"))
	mux.HandleFunc("/players", MetricsMiddleware(s.sessionHandler.HandlePlayers, "players"))
	mux.HandleFunc("/selection", MetricsMiddleware(s.selectionHandler.HandleSelection, "selection"))
	mux.HandleFunc("/selection/reset", MetricsMiddleware(s.selectionHandler.HandleReset, "selection_reset"))
	mux.HandleFunc("/aggregate", MetricsMiddleware(s.aggregateHandler.HandleAggregate, "aggregate"))
	mux.HandleFunc("/cells", MetricsMiddleware(s.cellsHandler.HandleCells, "cells"))
	mux.HandleFunc("/cells/params", MetricsMiddleware(s.cellsHandler.HandleParams, "cells_params"))
	mux.HandleFunc("/notices", MetricsMiddleware(s.noticesHandler.HandleNotices, "notices"))
	mux.HandleFunc("/notices/", MetricsMiddleware(s.noticesHandler.HandleDismiss, "notices_dismiss"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
