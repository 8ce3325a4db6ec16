package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"courtlens/internal/compute"
)

// SessionHandler serves session bootstrap and the embedded point cloud.
type SessionHandler struct {
	deps Dependencies
}

func NewSessionHandler(deps Dependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type initializeRequest struct {
	Seasons  []int  `json:"seasons"`
	GroupIDs []int  `json:"group_ids"`
	Mode     string `json:"mode"`
}

func (h *SessionHandler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	var req initializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	summary, err := h.deps.Initialize(r.Context(), compute.InitializeRequest{
		Seasons:  req.Seasons,
		GroupIDs: req.GroupIDs,
		Mode:     req.Mode,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "compute_unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type pointView struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Group  int     `json:"group"`
	BaseID int     `json:"base_id"`
	Season int     `json:"season,omitempty"`
}

func (h *SessionHandler) HandlePoints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	points := h.deps.Points(r.Context())
	views := make([]pointView, 0, len(points))
	for _, p := range points {
		v := pointView{X: p.X, Y: p.Y, Group: p.GroupLabel, BaseID: p.Obs.BaseID}
		if p.Obs.Tagged() {
			v.Season = int(p.Obs.Season)
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

type playerView struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	GameCount int    `json:"game_count"`
}

// HandlePlayers lists selectable players, filtered by repeated season
// query parameters.
func (h *SessionHandler) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	var seasons []int
	for _, raw := range r.URL.Query()["season"] {
		season, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_season", ErrBadRequest)
			return
		}
		seasons = append(seasons, season)
	}

	players, err := h.deps.AvailablePlayers(r.Context(), seasons)
	if err != nil {
		writeError(w, http.StatusBadGateway, "compute_unavailable", err)
		return
	}
	views := make([]playerView, 0, len(players))
	for _, p := range players {
		views = append(views, playerView{ID: p.ID, Name: p.Name, GameCount: p.GameCount})
	}
	writeJSON(w, http.StatusOK, views)
}
