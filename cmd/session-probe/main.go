package main

import (
	"context"
	"flag"
	"os"
	"time"

	"courtlens/internal/sessionprobe"
)

// Default configuration constants.
const (
	defaultRounds       = 20
	defaultWorkers      = 4
	defaultTimeout      = 30 * time.Second
	defaultSeed         = 1
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		rounds  = flag.Int("rounds", defaultRounds, "Number of selection rounds to run")
		workers = flag.Int("workers", defaultWorkers, "Number of concurrent aggregate workers")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed    = flag.Int64("seed", defaultSeed, "Seed for the lasso generator")
		logFile = flag.String("log", "", "Log file for probe output (default: probe_log_TIMESTAMP.log)")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sessionprobe.ShowHelp()
		return
	}

	if err := sessionprobe.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	config := &sessionprobe.Config{
		BaseURL: *baseURL,
		Rounds:  *rounds,
		Workers: *workers,
		Timeout: *timeout,
		LogFile: *logFile,
		Verbose: *verbose,
		Seed:    *seed,
	}

	if err := sessionprobe.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		return
	}
}
