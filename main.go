package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/yfahmy/tadawul/indicator"
	"github.com/yfahmy/tadawul/service"
	"github.com/yfahmy/tadawul/shared"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	tickers, err := shared.ResolveTickers(cfg.Tickers)
	if err != nil {
		log.Printf("resolving tickers: %v", err)
		return
	}

	var start, end time.Time
	if cfg.Start != "" {
		start, _ = time.Parse(shared.DateLayout, cfg.Start)
	}
	if cfg.End != "" {
		end, _ = time.Parse(shared.DateLayout, cfg.End)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipelineCfg := service.PipelineConfig{
		Tickers:          tickers,
		FMPAPIKey:        cfg.FMPAPIKey,
		Start:            start,
		End:              end,
		OutputDir:        cfg.OutputDir,
		OfflineDataDir:   cfg.OfflineDataDir,
		DatabaseEndpoint: cfg.DatabaseEndpoint,
		DatabaseUser:     cfg.DatabaseUser,
		DatabasePass:     cfg.DatabasePass,
		Refresh:          cfg.Refresh,
		Params:           indicator.DefaultParams(),
		Cancel:           cancel,
	}
	pipeline, err := service.NewPipeline(ctx, &pipelineCfg)
	if err != nil {
		log.Printf("creating analysis pipeline: %v", err)
		return
	}

	go handleTermination(ctx, cancel)
	err = pipeline.Run(ctx)
	if err != nil {
		log.Printf("running analysis pipeline: %v", err)
	}
}
