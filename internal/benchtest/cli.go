package benchtest

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/njdifiore/benchmetrics/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "benchtest_log_" + timestamp + ".log"
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

// ShowHelp prints usage information for the benchmark test tool.
func ShowHelp() {
	os.Stdout.WriteString(`BenchMetrics Traffic Test Tool
==============================

A concurrent tool for exercising the benchmark engine end to end: it submits
generated benchmark records, waits for async ingestion, then runs metric
calculations and benchmark comparisons and verifies their consistency.

Usage:
  go run cmd/bench-check/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9090")
  -records int
        Number of benchmark records to generate and submit (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -settle duration
        Wait for async ingestion to drain (default 5s)
  -output string
        Output file for generated records (default: generated_records_TIMESTAMP.json)
  -log string
        Log file for test output (default: benchtest_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/bench-check/main.go

  # Test with custom parameters
  go run cmd/bench-check/main.go -records 50000 -workers 16 -url http://localhost:8080

  # Test with verbose output
  go run cmd/bench-check/main.go -verbose -records 10000
`)
}
