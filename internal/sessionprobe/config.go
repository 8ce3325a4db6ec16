package sessionprobe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL string        // Base URL of the service
	Rounds  int           // Number of selection rounds to run
	Workers int           // Number of concurrent aggregate workers
	Timeout time.Duration // HTTP request timeout
	LogFile string        // Log file for probe output
	Verbose bool          // Enable verbose logging
	Seed    int64         // Seed for the lasso generator
}

// Selection mirrors the selection state the service returns.
type Selection struct {
	State    string `json:"state"`
	ClusterA []int  `json:"cluster_a"`
	ClusterB []int  `json:"cluster_b"`
	Version  uint64 `json:"version"`
}

// Cell mirrors a rendered display cell.
type Cell struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Value     float64 `json:"value"`
	Dominance float64 `json:"dominance"`
	Size      float64 `json:"size"`
	Color     string  `json:"color"`
}

// CellsResponse is the /cells payload.
type CellsResponse struct {
	Time  string `json:"time"`
	Cells []Cell `json:"cells"`
}

// InitSummary is the /session/initialize payload.
type InitSummary struct {
	Points   int `json:"points"`
	Rows     int `json:"rows"`
	Cols     int `json:"cols"`
	TimeBins int `json:"time_bins"`
}

// AggregateResponse is the /aggregate payload.
type AggregateResponse struct {
	Values   []float64 `json:"values"`
	Attempts []float64 `json:"attempts"`
}

// Stats holds probe statistics.
type Stats struct {
	RoundsRun          int
	SelectionsApplied  int
	ContributionsSeen  int
	ContributionsEmpty int
	AggregatesIssued   int
	AggregatesFailed   int
	NoticesSeen        int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
