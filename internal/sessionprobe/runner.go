package sessionprobe

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"courtlens/pkg/logger"
)

// Polling bounds for contribution availability.
const (
	cellsPollInterval = 50 * time.Millisecond
	cellsPollWindow   = 10 * time.Second
)

// Run executes the complete probe: health check, session bootstrap, and a
// series of selection rounds with concurrent aggregates.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting courtlens session probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("rounds", config.Rounds),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
	)

	client := newHTTPClient(config.Timeout)

	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	summary, err := initializeSession(ctx, client, config)
	if err != nil {
		return fmt.Errorf("session initialization failed: %w", err)
	}
	if summary.Points < 2 {
		return fmt.Errorf("not enough points to form two clusters: %d", summary.Points)
	}

	rounds := generateRounds(config.Rounds, summary.Points, summary.TimeBins, config.Seed)
	for i, round := range rounds {
		if err := runRound(ctx, client, config, summary, round, stats); err != nil {
			return fmt.Errorf("round %d failed: %w", i, err)
		}
		stats.RoundsRun++
	}

	if err := collectNotices(ctx, client, config, stats); err != nil {
		log.Warn(ctx, "notice collection failed", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	log.Info(ctx, "probe completed successfully")
	return nil
}

func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	status, err := client.get(ctx, config.BaseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

func initializeSession(ctx context.Context, client *HTTPClient, config *Config) (InitSummary, error) {
	var summary InitSummary
	status, err := client.post(ctx, config.BaseURL+"/session/initialize", map[string]any{"mode": "player"}, &summary)
	if err != nil {
		return InitSummary{}, err
	}
	if status != http.StatusOK {
		return InitSummary{}, fmt.Errorf("initialize returned status: %d", status)
	}
	logger.Get().Info(ctx, "session initialized",
		logger.Int("points", summary.Points),
		logger.Int("rows", summary.Rows),
		logger.Int("cols", summary.Cols),
		logger.Int("timeBins", summary.TimeBins),
	)
	return summary, nil
}

// runRound applies one lasso pair, waits for the contribution display, and
// fires concurrent aggregates over the same clusters.
func runRound(ctx context.Context, client *HTTPClient, config *Config, summary InitSummary, round Round, stats *Stats) error {
	var sel Selection
	if _, err := client.post(ctx, config.BaseURL+"/selection/reset", nil, &sel); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	if err := verifySelection(sel, "empty"); err != nil {
		return err
	}

	if _, err := client.post(ctx, config.BaseURL+"/selection", map[string]any{"indices": round.First}, &sel); err != nil {
		return fmt.Errorf("first lasso failed: %w", err)
	}
	stats.SelectionsApplied++
	if err := verifySelection(sel, "filling_a"); err != nil {
		return err
	}

	if _, err := client.post(ctx, config.BaseURL+"/selection", map[string]any{"indices": round.Second}, &sel); err != nil {
		return fmt.Errorf("second lasso failed: %w", err)
	}
	stats.SelectionsApplied++
	if err := verifySelection(sel, "complete"); err != nil {
		return err
	}

	cells, err := pollCells(ctx, client, config, round.TimeSel)
	if err != nil {
		return err
	}
	if len(cells.Cells) == 0 {
		stats.ContributionsEmpty++
	} else {
		stats.ContributionsSeen++
		if err := verifyCells(cells, summary); err != nil {
			return err
		}
	}

	runAggregates(ctx, client, config, round, stats)

	if config.Verbose {
		logger.Get().Debug(ctx, "round completed",
			logger.Int("clusterA", len(round.First)),
			logger.Int("clusterB", len(round.Second)),
			logger.String("timeSel", round.TimeSel),
			logger.Int("cells", len(cells.Cells)),
		)
	}
	return nil
}

// pollCells waits for the asynchronous contribution fetch to apply.
func pollCells(ctx context.Context, client *HTTPClient, config *Config, timeSel string) (CellsResponse, error) {
	url := config.BaseURL + "/cells?time=" + timeSel
	deadline := time.Now().Add(cellsPollWindow)

	for {
		var cells CellsResponse
		status, err := client.get(ctx, url, &cells)
		if err != nil {
			return CellsResponse{}, fmt.Errorf("cells request failed: %w", err)
		}
		if status != http.StatusOK {
			return CellsResponse{}, fmt.Errorf("cells returned status: %d", status)
		}
		if len(cells.Cells) > 0 || time.Now().After(deadline) {
			return cells, nil
		}

		select {
		case <-ctx.Done():
			return CellsResponse{}, ctx.Err()
		case <-time.After(cellsPollInterval):
		}
	}
}

var aggregateChannels = []string{"attempts", "makes", "points", "misses"}

// runAggregates issues one aggregate per channel plus a percent request,
// spread over the configured worker count. Failures are counted, not fatal:
// the service surfaces them as notices.
func runAggregates(ctx context.Context, client *HTTPClient, config *Config, round Round, stats *Stats) {
	type job struct {
		body map[string]any
	}

	jobs := make([]job, 0, len(aggregateChannels)+1)
	for _, ch := range aggregateChannels {
		jobs = append(jobs, job{body: map[string]any{"indices": round.First, "channel": ch}})
	}
	jobs = append(jobs, job{body: map[string]any{"indices": round.Second, "percent": true, "weighted": true}})

	var issued, failed int64
	jobChan := make(chan job, len(jobs))
	var wg sync.WaitGroup

	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobChan {
				var resp AggregateResponse
				atomic.AddInt64(&issued, 1)
				status, err := client.post(ctx, config.BaseURL+"/aggregate", j.body, &resp)
				if err != nil || status != http.StatusOK {
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}
	for _, j := range jobs {
		jobChan <- j
	}
	close(jobChan)
	wg.Wait()

	stats.AggregatesIssued += int(atomic.LoadInt64(&issued))
	stats.AggregatesFailed += int(atomic.LoadInt64(&failed))
}

func collectNotices(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	var notices []map[string]any
	status, err := client.get(ctx, config.BaseURL+"/notices", &notices)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("notices returned status: %d", status)
	}
	stats.NoticesSeen = len(notices)
	return nil
}

func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("roundsRun", stats.RoundsRun),
		logger.Int("selectionsApplied", stats.SelectionsApplied),
		logger.Int("contributionsSeen", stats.ContributionsSeen),
		logger.Int("contributionsEmpty", stats.ContributionsEmpty),
		logger.Int("aggregatesIssued", stats.AggregatesIssued),
		logger.Int("aggregatesFailed", stats.AggregatesFailed),
		logger.Int("noticesSeen", stats.NoticesSeen),
		logger.String("duration", stats.Duration.String()),
	)
}
