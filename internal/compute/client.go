// Package compute defines the boundary to the analytics backend that runs
// the embedding and cluster analysis. The session layer only depends on
// the Client interface; implementations are an HTTP client and an
// in-memory simulated engine.
package compute

import (
	"context"

	"courtlens/internal/domain/model"
)

// AggregateRequest asks for a per-cell statistic over a set of points.
// A nil TimeBin means all time bins combined; the backend performs that
// reduction, it is not a client-side fold.
type AggregateRequest struct {
	Indices []int
	Channel model.Channel
	TimeBin *int
}

// AggregateResult carries the flattened spatial array, row-major per the
// grid package convention.
type AggregateResult struct {
	Values []float64
}

// PercentRequest asks for per-cell shooting percentages. Weighted selects
// effective field goal percentage instead of plain field goal percentage.
type PercentRequest struct {
	Indices  []int
	Weighted bool
	TimeBin  *int
}

// PercentResult carries per-cell probabilities and the attempt counts
// backing them. Cells without attempts hold zero, not NaN.
type PercentResult struct {
	Values   []float64
	Attempts []float64
}

// ContributionRequest asks for the two-cluster contribution analysis.
// ReduceChannels makes the channel reduction explicit: when true the
// backend sums the contribution tensor over the channel axis and returns
// [time][cell]; when false a per-channel variant is returned for
// category-specific displays. The session always sets it true.
type ContributionRequest struct {
	ClusterA       []int
	ClusterB       []int
	ReduceChannels bool
}

// ContributionResponse carries both tensors indexed [time][cell].
// Dominance is signed: positive attributes a cell to cluster A.
type ContributionResponse struct {
	Contribution [][]float64
	Dominance    [][]float64
}

// InitializeRequest selects the data the backend loads before computing
// the embedding.
type InitializeRequest struct {
	Seasons  []int
	GroupIDs []int
	// Mode is "player" or "team_season"; in team_season mode observation
	// ids carry an arithmetic season prefix on the wire.
	Mode string
}

// InitializeResult is what the session keeps from an initialization:
// the embedded points, the group names, and the grid metadata.
type InitializeResult struct {
	Points     []model.Point
	GroupNames []string
	XEdges     []float64
	YEdges     []float64
	TimeBins   int
}

// PlayerInfo describes one selectable player.
type PlayerInfo struct {
	ID        int
	Name      string
	GameCount int
}

// Client is the remote analytics boundary. All calls honor ctx for
// cancellation; implementations must not retain the request slices.
type Client interface {
	Aggregate(ctx context.Context, req AggregateRequest) (AggregateResult, error)
	AggregatePercent(ctx context.Context, req PercentRequest) (PercentResult, error)
	AnalyzeClusters(ctx context.Context, req ContributionRequest) (ContributionResponse, error)
	Initialize(ctx context.Context, req InitializeRequest) (InitializeResult, error)
	Players(ctx context.Context, seasons []int) ([]PlayerInfo, error)
}
