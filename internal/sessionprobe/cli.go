package sessionprobe

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"courtlens/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging configures logging to both console and file. If logFile is
// empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "probe_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	os.Stdout.WriteString(`Courtlens Session Probe
=======================

Drives the courtlens session API through repeated selection rounds and
verifies the invariants the frontend relies on.

Usage:
  go run cmd/session-probe/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -rounds int
        Number of selection rounds to run (default 20)
  -workers int
        Number of concurrent aggregate workers (default 4)
  -timeout duration
        HTTP request timeout (default 30s)
  -seed int
        Seed for the lasso generator (default 1)
  -log string
        Log file for probe output (default: probe_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Probe a local service with defaults
  go run cmd/session-probe/main.go

  # Longer run against a remote deployment
  go run cmd/session-probe/main.go -rounds 200 -url http://courtlens:9080
`)
}
