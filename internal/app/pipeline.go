package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtlens/internal/compute"
	"courtlens/internal/domain/grid"
	"courtlens/internal/domain/model"
	"courtlens/internal/domain/render"
	"courtlens/internal/domain/selection"
	"courtlens/internal/domain/tensor"
	"courtlens/pkg/logger"
	"courtlens/pkg/metrics"
)

// InitSummary is the read shape of an initialization result.
type InitSummary struct {
	Points     int      `json:"points"`
	GroupNames []string `json:"group_names"`
	Rows       int      `json:"rows"`
	Cols       int      `json:"cols"`
	TimeBins   int      `json:"time_bins"`
}

// Initialize loads points and grid metadata through the compute boundary
// and resets all selection and contribution state.
func (s *Service) Initialize(ctx context.Context, req compute.InitializeRequest) (InitSummary, error) {
	res, err := s.client.Initialize(ctx, req)
	if err != nil {
		s.mu.Lock()
		s.addNoticeLocked("initialize", err)
		s.mu.Unlock()
		return InitSummary{}, err
	}

	g, err := grid.New(res.XEdges, res.YEdges)
	if err != nil {
		// Missing or malformed edges: the session stays not-ready and
		// renders empty rather than failing the whole initialization.
		s.log.Warn(ctx, "initialization without usable grid metadata", logger.Error(err))
		g = grid.Grid{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.abortFetchLocked()
	s.ready = err == nil
	s.g = g
	s.points = res.Points
	s.groups = res.GroupNames
	s.timeBins = res.TimeBins
	s.machine = selection.New()
	s.result = nil
	s.timeSel = tensor.AllTime()
	metrics.UpdateDisplayedCells(0)

	s.log.Info(ctx, "session initialized",
		logger.Int("points", len(res.Points)),
		logger.Int("timeBins", res.TimeBins),
		logger.Bool("gridReady", s.ready),
	)
	sum := InitSummary{
		Points:     len(res.Points),
		GroupNames: res.GroupNames,
		TimeBins:   res.TimeBins,
	}
	if s.ready {
		sum.Rows = g.Rows()
		sum.Cols = g.Cols()
	}
	return sum, nil
}

// Points returns the embedded points from the last initialization.
func (s *Service) Points(_ context.Context) []model.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Point(nil), s.points...)
}

// AvailablePlayers lists the players the backend can load, optionally
// filtered by season.
func (s *Service) AvailablePlayers(ctx context.Context, seasons []int) ([]compute.PlayerInfo, error) {
	players, err := s.client.Players(ctx, seasons)
	if err != nil {
		metrics.RecordRemoteError("players")
		s.mu.Lock()
		s.addNoticeLocked("players", err)
		s.mu.Unlock()
		return nil, err
	}
	return players, nil
}

// Ready reports whether grid metadata is available for rendering.
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Select feeds a selection event into the state machine. Completing both
// clusters launches an asynchronous contribution fetch; any other
// transition clears the displayed contribution, since one of the clusters
// is empty again.
func (s *Service) Select(ctx context.Context, indices []int) SelectionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.machine.Apply(indices) {
		return s.selectionViewLocked()
	}
	metrics.RecordSelectionEvent(s.machine.State().String())

	if s.machine.Complete() {
		s.startContributionFetchLocked(ctx)
	} else {
		// Precondition for contribution no longer holds: drop the stale
		// display and invalidate any in-flight fetch.
		s.abortFetchLocked()
		s.result = nil
		metrics.UpdateDisplayedCells(0)
	}
	return s.selectionViewLocked()
}

// ResetSelection clears both clusters and the displayed contribution.
func (s *Service) ResetSelection(_ context.Context) SelectionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.machine.Reset()
	s.abortFetchLocked()
	s.result = nil
	metrics.UpdateDisplayedCells(0)
	metrics.RecordSelectionEvent(s.machine.State().String())
	return s.selectionViewLocked()
}

// Selection returns the current cluster state.
func (s *Service) Selection(_ context.Context) SelectionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectionViewLocked()
}

func (s *Service) selectionViewLocked() SelectionView {
	return SelectionView{
		State:    s.machine.State().String(),
		ClusterA: s.machine.ClusterA(),
		ClusterB: s.machine.ClusterB(),
		Version:  s.machine.Version(),
	}
}

// abortFetchLocked cancels the outstanding contribution fetch, if any,
// and bumps the sequence so its eventual completion is discarded.
func (s *Service) abortFetchLocked() {
	if s.cancelFetch != nil {
		s.cancelFetch()
		s.cancelFetch = nil
	}
	s.fetchSeq++
}

// startContributionFetchLocked issues the contribution request for the
// current clusters on a fresh sequence number. The fetch runs detached
// from the caller's context; selection changes cancel it.
func (s *Service) startContributionFetchLocked(ctx context.Context) {
	s.abortFetchLocked()
	seq := s.fetchSeq

	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelFetch = cancel

	req := compute.ContributionRequest{
		ClusterA:       s.machine.ClusterA(),
		ClusterB:       s.machine.ClusterB(),
		ReduceChannels: s.reduceChannels,
	}
	metrics.RecordFetchIssued("contribution")
	go s.runContributionFetch(fctx, seq, req)
}

func (s *Service) runContributionFetch(ctx context.Context, seq uint64, req compute.ContributionRequest) {
	start := time.Now()
	resp, err := s.client.AnalyzeClusters(ctx, req)
	metrics.RecordFetchLatency("contribution", float64(time.Since(start).Milliseconds()))

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.fetchSeq {
		// A newer selection superseded this request; its result must not
		// overwrite newer state.
		metrics.RecordStaleResponse()
		s.log.Debug(ctx, "discarding stale contribution response",
			logger.Int64("seq", int64(seq)),
			logger.Int64("current", int64(s.fetchSeq)),
		)
		return
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// Keep the last good display; surface a dismissible notice.
		metrics.RecordRemoteError("contribution")
		s.addNoticeLocked("contribution", err)
		s.log.Warn(ctx, "contribution fetch failed", logger.Error(err))
		return
	}

	result, err := tensor.NewContributionResult(resp.Contribution, resp.Dominance)
	if err != nil {
		metrics.RecordRemoteError("contribution")
		s.addNoticeLocked("contribution", fmt.Errorf("response shape: %w", err))
		s.log.Warn(ctx, "contribution response malformed", logger.Error(err))
		return
	}

	s.result = &result
	metrics.RecordFetchApplied("contribution")
	metrics.UpdateDisplayedCells(result.Contribution.Cells())
	s.log.Info(ctx, "contribution applied",
		logger.Int("timeBins", result.Contribution.Times()),
		logger.Int("cells", result.Contribution.Cells()),
		logger.Duration("latency", time.Since(start)),
	)
}

// Aggregate fetches a per-cell statistic for an arbitrary set of points.
// An empty set returns an empty array without touching the backend;
// callers treat that as "no data".
func (s *Service) Aggregate(ctx context.Context, indices []int, channel model.Channel, timeBin *int) ([]float64, error) {
	if len(indices) == 0 {
		return []float64{}, nil
	}
	if !channel.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrBadChannel, int(channel))
	}

	metrics.RecordFetchIssued("aggregate")
	start := time.Now()
	res, err := s.client.Aggregate(ctx, compute.AggregateRequest{
		Indices: indices,
		Channel: channel,
		TimeBin: timeBin,
	})
	metrics.RecordFetchLatency("aggregate", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordRemoteError("aggregate")
		s.mu.Lock()
		s.addNoticeLocked("aggregate", err)
		s.mu.Unlock()
		return nil, err
	}
	metrics.RecordFetchApplied("aggregate")
	return res.Values, nil
}

// AggregatePercent fetches per-cell shooting percentages with attempts.
func (s *Service) AggregatePercent(ctx context.Context, indices []int, weighted bool, timeBin *int) (values, attempts []float64, err error) {
	if len(indices) == 0 {
		return []float64{}, []float64{}, nil
	}

	metrics.RecordFetchIssued("aggregate")
	start := time.Now()
	res, err := s.client.AggregatePercent(ctx, compute.PercentRequest{
		Indices:  indices,
		Weighted: weighted,
		TimeBin:  timeBin,
	})
	metrics.RecordFetchLatency("aggregate", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordRemoteError("aggregate")
		s.mu.Lock()
		s.addNoticeLocked("aggregate", err)
		s.mu.Unlock()
		return nil, nil, err
	}
	metrics.RecordFetchApplied("aggregate")
	return res.Values, res.Attempts, nil
}

// SetTimeSelector changes the display reduction. The stored tensors are
// re-reduced on the next Cells call; nothing is refetched.
func (s *Service) SetTimeSelector(_ context.Context, sel tensor.TimeSelector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTimeSelectorLocked(sel); err != nil {
		return err
	}
	s.timeSel = sel
	return nil
}

func (s *Service) checkTimeSelectorLocked(sel tensor.TimeSelector) error {
	if !sel.IsAll() && s.timeBins > 0 && sel.Bin() >= s.timeBins {
		return fmt.Errorf("%w: bin %d of %d", tensor.ErrBadTimeBin, sel.Bin(), s.timeBins)
	}
	return nil
}

// TimeSelector returns the current display reduction.
func (s *Service) TimeSelector(_ context.Context) tensor.TimeSelector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeSel
}

// Cells reduces the latest contribution result under the current time
// selector and maps it through the render policy. Without grid metadata
// or without an applied result it returns an empty slice: the view is
// simply not ready, which is not an error.
func (s *Service) Cells(_ context.Context) ([]render.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cellsLocked(s.timeSel)
}

// CellsAt reduces under sel for this call only; the stored selector is
// untouched, so reads never change what later reads see.
func (s *Service) CellsAt(_ context.Context, sel tensor.TimeSelector) ([]render.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTimeSelectorLocked(sel); err != nil {
		return nil, err
	}
	return s.cellsLocked(sel)
}

func (s *Service) cellsLocked(sel tensor.TimeSelector) ([]render.Cell, error) {
	if !s.ready || s.result == nil {
		return []render.Cell{}, nil
	}

	vals, dom, err := s.result.Reduce(sel)
	if err != nil {
		return nil, err
	}
	metrics.RecordReductionServed()
	return s.policy.Cells(s.g, vals, dom)
}

// HasContribution reports whether a contribution result is displayed.
func (s *Service) HasContribution() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result != nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"ready":           s.ready,
		"points":          len(s.points),
		"groups":          len(s.groups),
		"timeBins":        s.timeBins,
		"selectionState":  s.machine.State().String(),
		"clusterASize":    len(s.machine.ClusterA()),
		"clusterBSize":    len(s.machine.ClusterB()),
		"hasContribution": s.result != nil,
		"timeSelector":    s.timeSel.String(),
		"openNotices":     len(s.notices),
		"sizeMode":        s.policy.Mode().String(),
	}
}
