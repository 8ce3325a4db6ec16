package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"courtlens/internal/domain/model"
	"courtlens/pkg/logger"
)

// Default HTTP client configuration.
const (
	defaultTimeout = 30 * time.Second
)

// HTTPClient talks JSON to the analytics backend. Endpoint shapes mirror
// the backend's API: /aggregate-cluster, /analyze-clusters, /initialize,
// /players.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	log     logger.Logger
}

// HTTPOption applies a configuration option to the HTTPClient.
type HTTPOption func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.hc.Timeout = d
		}
	}
}

// WithHTTPTransport replaces the underlying http.Client, mainly for tests.
func WithHTTPTransport(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(l logger.Logger) HTTPOption {
	return func(c *HTTPClient) {
		if l != nil {
			c.log = l
		}
	}
}

// NewHTTPClient creates a client for the backend at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) post(ctx context.Context, path string, reqBody, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRemote, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", ErrRemote, path, resp.StatusCode, bytes.TrimSpace(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBadResponse, path, err)
	}
	if c.log != nil {
		c.log.Debug(ctx, "compute call ok", logger.String("path", path))
	}
	return nil
}

type aggregateWire struct {
	ClusterIdx []int `json:"cluster_idx"`
	Channel    int   `json:"channel"`
	Weighted   bool  `json:"weighted"`
	TimeBin    *int  `json:"time_bin"`
}

type aggregateResponseWire struct {
	Values   []float64 `json:"values"`
	Attempts []float64 `json:"attempts"`
}

// Aggregate fetches per-cell counts for one statistic channel. The backend
// only serves raw counts for attempts; makes, points and misses are
// recovered from the percentage path, which returns the ratio alongside
// its attempt denominators (makes = ratio*attempts, misses the remainder,
// and the weighted ratio has points as its numerator).
func (c *HTTPClient) Aggregate(ctx context.Context, req AggregateRequest) (AggregateResult, error) {
	if req.Channel == model.ChannelAttempts {
		var out aggregateResponseWire
		err := c.post(ctx, "/aggregate-cluster", aggregateWire{
			ClusterIdx: req.Indices,
			Channel:    model.ChannelAttempts.RemoteIndex(),
			TimeBin:    req.TimeBin,
		}, &out)
		if err != nil {
			return AggregateResult{}, err
		}
		return AggregateResult{Values: out.Values}, nil
	}

	pct, err := c.AggregatePercent(ctx, PercentRequest{
		Indices:  req.Indices,
		Weighted: req.Channel == model.ChannelPoints,
		TimeBin:  req.TimeBin,
	})
	if err != nil {
		return AggregateResult{}, err
	}
	if len(pct.Values) != len(pct.Attempts) {
		return AggregateResult{}, fmt.Errorf("%w: ratio and attempt lengths disagree", ErrBadResponse)
	}

	values := make([]float64, len(pct.Values))
	for i, ratio := range pct.Values {
		if req.Channel == model.ChannelMisses {
			values[i] = pct.Attempts[i] * (1 - ratio)
		} else {
			values[i] = pct.Attempts[i] * ratio
		}
	}
	return AggregateResult{Values: values}, nil
}

// AggregatePercent fetches per-cell FG% or EFG% plus backing attempts.
func (c *HTTPClient) AggregatePercent(ctx context.Context, req PercentRequest) (PercentResult, error) {
	var out aggregateResponseWire
	err := c.post(ctx, "/aggregate-cluster", aggregateWire{
		ClusterIdx: req.Indices,
		Channel:    model.ChannelMakes.RemoteIndex(),
		Weighted:   req.Weighted,
		TimeBin:    req.TimeBin,
	}, &out)
	if err != nil {
		return PercentResult{}, err
	}
	return PercentResult{Values: out.Values, Attempts: out.Attempts}, nil
}

type analyzeWire struct {
	Cluster1Idx    []int `json:"cluster1_idx"`
	Cluster2Idx    []int `json:"cluster2_idx"`
	ReduceChannels bool  `json:"reduce_channels"`
}

type analyzeResponseWire struct {
	ContribTensor   [][]float64 `json:"contrib_tensor"`
	DominanceTensor [][]float64 `json:"dominance_tensor"`
}

// AnalyzeClusters runs the two-cluster analysis remotely.
func (c *HTTPClient) AnalyzeClusters(ctx context.Context, req ContributionRequest) (ContributionResponse, error) {
	if len(req.ClusterA) == 0 || len(req.ClusterB) == 0 {
		return ContributionResponse{}, ErrEmptyCluster
	}
	var out analyzeResponseWire
	err := c.post(ctx, "/analyze-clusters", analyzeWire{
		Cluster1Idx:    req.ClusterA,
		Cluster2Idx:    req.ClusterB,
		ReduceChannels: req.ReduceChannels,
	}, &out)
	if err != nil {
		return ContributionResponse{}, err
	}
	if len(out.ContribTensor) == 0 || len(out.DominanceTensor) == 0 {
		return ContributionResponse{}, fmt.Errorf("%w: empty tensors", ErrBadResponse)
	}
	return ContributionResponse{
		Contribution: out.ContribTensor,
		Dominance:    out.DominanceTensor,
	}, nil
}

type initializeWire struct {
	Seasons      []int  `json:"seasons"`
	PlayerIDs    []int  `json:"player_ids"`
	AnalysisMode string `json:"analysis_mode"`
}

type initializeResponseWire struct {
	Embedding    [][]float64    `json:"embedding"`
	PlayerLabels []int          `json:"player_labels"`
	GameIDs      []int          `json:"game_ids"`
	PlayerNames  []string       `json:"player_names"`
	Metadata     map[string]any `json:"metadata"`
}

// Initialize loads data and computes the embedding remotely, returning
// the points and grid metadata the session keeps.
func (c *HTTPClient) Initialize(ctx context.Context, req InitializeRequest) (InitializeResult, error) {
	mode := req.Mode
	if mode == "" {
		mode = "player"
	}
	var out initializeResponseWire
	err := c.post(ctx, "/initialize", initializeWire{
		Seasons:      req.Seasons,
		PlayerIDs:    req.GroupIDs,
		AnalysisMode: mode,
	}, &out)
	if err != nil {
		return InitializeResult{}, err
	}
	return decodeInitialize(out, mode == "team_season")
}

func decodeInitialize(out initializeResponseWire, tagged bool) (InitializeResult, error) {
	if len(out.Embedding) != len(out.PlayerLabels) || len(out.Embedding) != len(out.GameIDs) {
		return InitializeResult{}, fmt.Errorf("%w: embedding, labels and game ids disagree", ErrBadResponse)
	}

	points := make([]model.Point, len(out.Embedding))
	for i, coord := range out.Embedding {
		if len(coord) < 2 {
			return InitializeResult{}, fmt.Errorf("%w: embedding row %d has %d coords", ErrBadResponse, i, len(coord))
		}
		points[i] = model.Point{
			X:          coord[0],
			Y:          coord[1],
			GroupLabel: out.PlayerLabels[i],
			Obs:        model.DecodeObservationID(out.GameIDs[i], tagged),
		}
	}

	res := InitializeResult{
		Points:     points,
		GroupNames: out.PlayerNames,
		XEdges:     floatList(out.Metadata["x_edges"]),
		YEdges:     floatList(out.Metadata["y_edges"]),
	}
	if n, ok := out.Metadata["num_time_bins"].(float64); ok {
		res.TimeBins = int(n)
	}
	return res, nil
}

// floatList coerces a decoded JSON array into floats; non-numbers drop.
func floatList(v any) []float64 {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(arr))
	for _, e := range arr {
		if f, ok := e.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

type playersWire struct {
	Seasons []int `json:"seasons"`
}

type playersResponseWire struct {
	Players []struct {
		PlayerID   int    `json:"player_id"`
		PlayerName string `json:"player_name"`
		GameCount  int    `json:"game_count"`
	} `json:"players"`
}

// Players lists selectable players for the given seasons.
func (c *HTTPClient) Players(ctx context.Context, seasons []int) ([]PlayerInfo, error) {
	var out playersResponseWire
	if err := c.post(ctx, "/players", playersWire{Seasons: seasons}, &out); err != nil {
		return nil, err
	}
	players := make([]PlayerInfo, len(out.Players))
	for i, p := range out.Players {
		players[i] = PlayerInfo{ID: p.PlayerID, Name: p.PlayerName, GameCount: p.GameCount}
	}
	return players, nil
}
