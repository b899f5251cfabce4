package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/njdifiore/benchmetrics/internal/benchtest"
	"github.com/njdifiore/benchmetrics/pkg/logger"
)

// Default test parameters.
const (
	defaultBaseURL     = "http://localhost:9090"
	defaultNumRecords  = 1000
	defaultTimeout     = 30 * time.Second
	defaultSettleWait  = 5 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", defaultBaseURL, "Base URL of the service")
		numRecords = flag.Int("records", defaultNumRecords, "Number of benchmark records to generate and submit")
		workers    = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settleWait = flag.Duration("settle", defaultSettleWait, "Wait for async ingestion to drain")
		outputFile = flag.String("output", "", "Output file for generated records")
		logFile    = flag.String("log", "", "Log file for test output")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		benchtest.ShowHelp()
		return
	}

	if err := benchtest.SetupLogging(*logFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *outputFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		*outputFile = "generated_records_" + timestamp + ".json"
	}

	config := &benchtest.Config{
		BaseURL:    *baseURL,
		NumRecords: *numRecords,
		Workers:    *workers,
		Timeout:    *timeout,
		SettleWait: *settleWait,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, defaultTestTimeout)
	defer timeoutCancel()

	if err := benchtest.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "traffic test failed", logger.Error(err))
		os.Exit(1)
	}
}
