package compute

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"courtlens/internal/domain/grid"
	"courtlens/internal/domain/model"
)

// Default engine configuration constants.
const (
	defaultGames      = 48
	defaultTimeBins   = 4
	defaultXBins      = 17
	defaultYBins      = 16
	defaultMinLatency = 5 * time.Millisecond
	defaultMaxLatency = 20 * time.Millisecond
	defaultSeed       = 42
	engineChannels    = 6 // attempts, makes, points, efg weights, misses, frequency
)

// InMemoryEngine implements Client with a deterministic simulated backend.
// It generates a synthetic game/time/cell/channel count tensor at
// construction and answers every call from it, with simulated latency to
// model the real analytics service. Used by tests and local development.
type InMemoryEngine struct {
	games    int
	timeBins int
	xBins    int
	yBins    int
	tagged   bool

	minLatency time.Duration
	maxLatency time.Duration

	// rngMu guards rng: calls arrive concurrently from HTTP handler
	// goroutines and the contribution fetch goroutine.
	rngMu sync.Mutex
	rng   *rand.Rand

	counts [][][][]float64 // [game][time][cell][channel]
	g      grid.Grid
	groups []string
}

// EngineOption applies a configuration option to the InMemoryEngine.
type EngineOption func(*InMemoryEngine)

// WithGames sets the number of synthetic games.
func WithGames(n int) EngineOption {
	return func(e *InMemoryEngine) {
		if n > 0 {
			e.games = n
		}
	}
}

// WithShape sets the grid and time binning.
func WithShape(xBins, yBins, timeBins int) EngineOption {
	return func(e *InMemoryEngine) {
		if xBins > 0 && yBins > 0 && timeBins > 0 {
			e.xBins, e.yBins, e.timeBins = xBins, yBins, timeBins
		}
	}
}

// WithLatencyRange sets the simulated latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) EngineOption {
	return func(e *InMemoryEngine) {
		if minLatency >= 0 && maxLatency > minLatency {
			e.minLatency = minLatency
			e.maxLatency = maxLatency
		}
	}
}

// WithSeed sets the deterministic generation seed.
func WithSeed(seed int64) EngineOption {
	return func(e *InMemoryEngine) {
		e.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic synthetic data
	}
}

// WithGroups sets the group names assigned round-robin to games.
func WithGroups(names []string) EngineOption {
	return func(e *InMemoryEngine) {
		if len(names) > 0 {
			e.groups = append([]string(nil), names...)
		}
	}
}

// WithTaggedObservations makes the engine hand out season-tagged
// observation ids, matching the backend's team-season mode.
func WithTaggedObservations() EngineOption {
	return func(e *InMemoryEngine) { e.tagged = true }
}

// NewInMemoryEngine creates a simulated analytics engine.
func NewInMemoryEngine(opts ...EngineOption) *InMemoryEngine {
	e := &InMemoryEngine{
		games:      defaultGames,
		timeBins:   defaultTimeBins,
		xBins:      defaultXBins,
		yBins:      defaultYBins,
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // deterministic synthetic data
		groups:     []string{"Group 0", "Group 1", "Group 2"},
	}
	for _, opt := range opts {
		opt(e)
	}

	g, err := grid.NewUniform(-250, 250, e.xBins, -47.5, 422.5, e.yBins)
	if err != nil {
		// Only reachable with a broken option guard.
		panic(err)
	}
	e.g = g
	e.generate()
	return e
}

// generate fills the synthetic count tensor. Shots cluster near the rim
// (low rows) so the data has recognizable spatial structure.
func (e *InMemoryEngine) generate() {
	cells := e.g.Cells()
	e.counts = make([][][][]float64, e.games)
	for gm := range e.counts {
		e.counts[gm] = make([][][]float64, e.timeBins)
		for t := range e.counts[gm] {
			e.counts[gm][t] = make([][]float64, cells)
			for cell := range e.counts[gm][t] {
				row, _ := grid.CellRowCol(cell, e.g.Cols())
				ch := make([]float64, engineChannels)

				// Attempt intensity decays with distance from the basket row.
				intensity := math.Exp(-float64(row) / 4.0)
				attempts := float64(e.rng.Intn(3)) * intensity
				attempts = math.Round(attempts)
				makes := math.Round(attempts * (0.3 + 0.3*e.rng.Float64()))
				if makes > attempts {
					makes = attempts
				}
				three := row > e.yBins/2
				pts, efg := 2.0, 1.0
				if three {
					pts, efg = 3.0, 1.5
				}

				ch[0] = attempts
				ch[1] = makes
				ch[2] = makes * pts
				ch[3] = makes * efg
				ch[4] = attempts - makes
				ch[5] = attempts
				e.counts[gm][t][cell] = ch
			}
		}
	}
}

// randInt63n draws from the seeded rng under the lock.
func (e *InMemoryEngine) randInt63n(n int64) int64 {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Int63n(n)
}

// randNorm draws a normal variate from the seeded rng under the lock.
func (e *InMemoryEngine) randNorm() float64 {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.NormFloat64()
}

// simulateLatency models the remote round-trip, honoring cancellation.
func (e *InMemoryEngine) simulateLatency(ctx context.Context) error {
	span := e.maxLatency - e.minLatency
	latency := e.minLatency
	if span > 0 {
		latency += time.Duration(e.randInt63n(int64(span)))
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-time.After(latency):
		return nil
	}
}

// Grid exposes the engine's court grid; tests use it to cross-check
// metadata decoding.
func (e *InMemoryEngine) Grid() grid.Grid { return e.g }

// sumChannel aggregates one channel over the given games. Nil or empty
// indices mean every game, matching the backend. timeBin nil sums time.
func (e *InMemoryEngine) sumChannel(indices []int, channel int, timeBin *int) []float64 {
	games := indices
	if len(games) == 0 {
		games = make([]int, e.games)
		for i := range games {
			games[i] = i
		}
	}
	out := make([]float64, e.g.Cells())
	for _, gm := range games {
		if gm < 0 || gm >= e.games {
			continue
		}
		for t := 0; t < e.timeBins; t++ {
			if timeBin != nil && t != *timeBin {
				continue
			}
			for cell := range out {
				out[cell] += e.counts[gm][t][cell][channel]
			}
		}
	}
	return out
}

// Aggregate returns per-cell counts for the requested channel.
func (e *InMemoryEngine) Aggregate(ctx context.Context, req AggregateRequest) (AggregateResult, error) {
	if err := e.simulateLatency(ctx); err != nil {
		return AggregateResult{}, err
	}
	if req.TimeBin != nil && (*req.TimeBin < 0 || *req.TimeBin >= e.timeBins) {
		return AggregateResult{}, fmt.Errorf("%w: time bin %d", ErrRemote, *req.TimeBin)
	}
	return AggregateResult{Values: e.sumChannel(req.Indices, req.Channel.RemoteIndex(), req.TimeBin)}, nil
}

// AggregatePercent returns per-cell FG% (or EFG%) with backing attempts.
func (e *InMemoryEngine) AggregatePercent(ctx context.Context, req PercentRequest) (PercentResult, error) {
	if err := e.simulateLatency(ctx); err != nil {
		return PercentResult{}, err
	}
	numChannel := model.ChannelMakes.RemoteIndex()
	if req.Weighted {
		numChannel = 3 // efg weights
	}
	attempts := e.sumChannel(req.Indices, model.ChannelAttempts.RemoteIndex(), req.TimeBin)
	num := e.sumChannel(req.Indices, numChannel, req.TimeBin)

	vals := make([]float64, len(attempts))
	for i := range vals {
		if attempts[i] > 0 {
			vals[i] = num[i] / attempts[i]
		}
	}
	return PercentResult{Values: vals, Attempts: attempts}, nil
}

// AnalyzeClusters computes contribution and dominance as the standardized
// mean difference of per-cell attempt counts between the clusters, which
// preserves the sign semantics of the real analysis: positive dominance
// means cluster A shoots more from that cell.
func (e *InMemoryEngine) AnalyzeClusters(ctx context.Context, req ContributionRequest) (ContributionResponse, error) {
	if len(req.ClusterA) == 0 || len(req.ClusterB) == 0 {
		return ContributionResponse{}, ErrEmptyCluster
	}
	if err := e.simulateLatency(ctx); err != nil {
		return ContributionResponse{}, err
	}

	cells := e.g.Cells()
	contrib := make([][]float64, e.timeBins)
	dom := make([][]float64, e.timeBins)
	attemptCh := model.ChannelAttempts.RemoteIndex()

	for t := 0; t < e.timeBins; t++ {
		contrib[t] = make([]float64, cells)
		dom[t] = make([]float64, cells)
		for cell := 0; cell < cells; cell++ {
			a := e.cellSamples(req.ClusterA, t, cell, attemptCh)
			b := e.cellSamples(req.ClusterB, t, cell, attemptCh)
			d := standardizedMeanDiff(a, b)
			dom[t][cell] = d
			contrib[t][cell] = math.Abs(d)
		}
	}
	return ContributionResponse{Contribution: contrib, Dominance: dom}, nil
}

func (e *InMemoryEngine) cellSamples(indices []int, t, cell, channel int) []float64 {
	out := make([]float64, 0, len(indices))
	for _, gm := range indices {
		if gm < 0 || gm >= e.games {
			continue
		}
		out = append(out, e.counts[gm][t][cell][channel])
	}
	return out
}

// standardizedMeanDiff is (mean(a)-mean(b)) / pooled standard deviation,
// zero when both samples are constant.
func standardizedMeanDiff(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	meanA, stdA := stat.MeanStdDev(a, nil)
	meanB, stdB := stat.MeanStdDev(b, nil)
	if math.IsNaN(stdA) {
		stdA = 0
	}
	if math.IsNaN(stdB) {
		stdB = 0
	}
	pooled := math.Sqrt((stdA*stdA + stdB*stdB) / 2)
	if pooled == 0 {
		return 0
	}
	return (meanA - meanB) / pooled
}

// Initialize returns synthetic points on a deterministic embedding plus
// the engine's grid metadata.
func (e *InMemoryEngine) Initialize(ctx context.Context, req InitializeRequest) (InitializeResult, error) {
	if err := e.simulateLatency(ctx); err != nil {
		return InitializeResult{}, err
	}

	tagged := e.tagged || req.Mode == "team_season"
	points := make([]model.Point, e.games)
	for i := range points {
		season := model.SeasonNone
		if tagged {
			season = model.SeasonTag(i % 2)
		}
		points[i] = model.Point{
			X:          e.randNorm() * 10,
			Y:          e.randNorm() * 10,
			GroupLabel: i % len(e.groups),
			Obs:        model.ObservationID{BaseID: 1000 + i, Season: season},
		}
	}
	return InitializeResult{
		Points:     points,
		GroupNames: append([]string(nil), e.groups...),
		XEdges:     e.g.XEdges(),
		YEdges:     e.g.YEdges(),
		TimeBins:   e.timeBins,
	}, nil
}

// Players lists the synthetic groups as selectable players.
func (e *InMemoryEngine) Players(ctx context.Context, _ []int) ([]PlayerInfo, error) {
	if err := e.simulateLatency(ctx); err != nil {
		return nil, err
	}
	players := make([]PlayerInfo, len(e.groups))
	perGroup := e.games / len(e.groups)
	for i, name := range e.groups {
		players[i] = PlayerInfo{ID: 1000 + i, Name: name, GameCount: perGroup}
	}
	return players, nil
}
