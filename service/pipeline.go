package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/yfahmy/tadawul/database"
	"github.com/yfahmy/tadawul/dataset"
	"github.com/yfahmy/tadawul/fetch"
	"github.com/yfahmy/tadawul/indicator"
	"github.com/yfahmy/tadawul/shared"
)

const (
	// outputFileSuffix is appended to the lowercased ticker name to form
	// output csv filenames.
	outputFileSuffix = "_saudi.csv"
)

// PipelineConfig represents the configuration struct for the analysis
// pipeline.
type PipelineConfig struct {
	// Tickers maps tracked issuer names to their exchange symbols.
	Tickers map[string]string
	// FMPAPIKey is the FMP service API key.
	FMPAPIKey string
	// Start bounds the start of the requested series.
	Start time.Time
	// End bounds the end of the requested series, zero meaning today.
	End time.Time
	// OutputDir is the directory for processed csv files.
	OutputDir string
	// OfflineDataDir, when set, skips downloading and processes previously
	// saved csv series from the provided directory.
	OfflineDataDir string
	// DatabaseEndpoint is the optional run summary database endpoint.
	DatabaseEndpoint string
	// DatabaseUser is the database user.
	DatabaseUser string
	// DatabasePass is the database user pass.
	DatabasePass string
	// Refresh keeps the pipeline running with a scheduled daily refresh.
	Refresh bool
	// Params configures the indicator engine lookbacks.
	Params indicator.Params
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config has sane inputs.
func (cfg *PipelineConfig) Validate() error {
	var errs error

	if cfg.Cancel == nil {
		errs = errors.Join(errs, errors.New("context cancellation function cannot be nil"))
	}
	if cfg.OutputDir == "" {
		errs = errors.Join(errs, errors.New("output directory cannot be an empty string"))
	}
	if cfg.OfflineDataDir == "" {
		if len(cfg.Tickers) == 0 {
			errs = errors.Join(errs, errors.New("no tickers provided for analysis pipeline"))
		}
		if cfg.FMPAPIKey == "" {
			errs = errors.Join(errs, errors.New("fmp api key cannot be an empty string"))
		}
	}

	return errs
}

// Pipeline represents the indicator analysis pipeline. It downloads (or
// reads) historical series, computes the indicator and signal columns and
// persists the augmented series.
type Pipeline struct {
	cfg          *PipelineConfig
	fetchManager *fetch.Manager
	db           database.SummaryStorer
	logger       *zerolog.Logger
}

// NewPipeline initializes a new analysis pipeline.
func NewPipeline(ctx context.Context, cfg *PipelineConfig) (*Pipeline, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "pipeline").Logger()

	pipeline := &Pipeline{
		cfg:    cfg,
		logger: &logger,
	}

	if cfg.OfflineDataDir == "" {
		client := fetch.NewFMPClient(&fetch.FMPConfig{APIKey: cfg.FMPAPIKey})

		fetchLogger := logger.With().Str("component", "fetch").Logger()
		fetchManager, err := fetch.NewManager(&fetch.ManagerConfig{
			Client:        client,
			Tickers:       cfg.Tickers,
			Start:         cfg.Start,
			End:           cfg.End,
			ProcessSeries: pipeline.processSeries,
			Logger:        &fetchLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating download manager: %w", err)
		}

		pipeline.fetchManager = fetchManager
	}

	if cfg.DatabaseEndpoint != "" {
		dbLogger := logger.With().Str("component", "database").Logger()
		db, err := database.NewDatabase(ctx, &database.DatabaseConfig{
			Endpoint: cfg.DatabaseEndpoint,
			User:     cfg.DatabaseUser,
			Pass:     cfg.DatabasePass,
			Logger:   &dbLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating database: %w", err)
		}

		pipeline.db = db
	}

	return pipeline, nil
}

// processSeries runs the indicator stages for a downloaded series and
// persists the results.
func (p *Pipeline) processSeries(ctx context.Context, ticker string, symbol string, bars []shared.Bar) error {
	frame, err := shared.FrameFromBars(bars)
	if err != nil {
		return fmt.Errorf("building frame for %s: %w", ticker, err)
	}

	return p.processFrame(ctx, ticker, symbol, frame)
}

// processFrame computes the indicator and signal columns for a series and
// persists the augmented frame.
func (p *Pipeline) processFrame(ctx context.Context, ticker string, symbol string, frame *shared.Frame) error {
	computed, err := indicator.Calculate(frame, p.cfg.Params)
	if err != nil {
		return fmt.Errorf("computing indicators for %s: %w", ticker, err)
	}

	annotated, err := indicator.TradingSignals(computed)
	if err != nil {
		return fmt.Errorf("generating signals for %s: %w", ticker, err)
	}

	path := filepath.Join(p.cfg.OutputDir, strings.ToLower(ticker)+outputFileSuffix)
	err = dataset.WriteCSV(path, annotated)
	if err != nil {
		return fmt.Errorf("persisting series for %s: %w", ticker, err)
	}

	summary, err := buildRunSummary(ticker, symbol, annotated)
	if err != nil {
		return fmt.Errorf("summarizing run for %s: %w", ticker, err)
	}

	p.logger.Info().Msgf("processed %s: %d records, %d buy signals, %d sell signals, saved to %s",
		ticker, summary.Records, summary.BuySignals, summary.SellSignals, path)

	if p.db != nil {
		err = p.db.PersistRunSummary(ctx, summary)
		if err != nil {
			return fmt.Errorf("persisting run summary for %s: %w", ticker, err)
		}
	}

	return nil
}

// buildRunSummary derives a run summary from an annotated frame.
func buildRunSummary(ticker string, symbol string, frame *shared.Frame) (*database.RunSummary, error) {
	buy, err := frame.Column(indicator.BuySignalColumn)
	if err != nil {
		return nil, err
	}
	sell, err := frame.Column(indicator.SellSignalColumn)
	if err != nil {
		return nil, err
	}

	var buySignals, sellSignals int
	for idx := range buy {
		if buy[idx] == 1 {
			buySignals++
		}
		if sell[idx] == 1 {
			sellSignals++
		}
	}

	dates := frame.Dates()
	summary := &database.RunSummary{
		ID:          uuid.NewString(),
		Ticker:      ticker,
		Symbol:      symbol,
		Records:     frame.Len(),
		RangeStart:  dates[0].Format(shared.DateLayout),
		RangeEnd:    dates[len(dates)-1].Format(shared.DateLayout),
		BuySignals:  buySignals,
		SellSignals: sellSignals,
		CreatedOn:   time.Now().Unix(),
	}

	return summary, nil
}

// runOffline processes previously saved csv series instead of downloading.
func (p *Pipeline) runOffline(ctx context.Context) error {
	entries, err := os.ReadDir(p.cfg.OfflineDataDir)
	if err != nil {
		return fmt.Errorf("reading offline data directory: %w", err)
	}

	var processed int
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}

		path := filepath.Join(p.cfg.OfflineDataDir, entry.Name())
		frame, err := dataset.ReadCSV(path)
		if err != nil {
			p.logger.Error().Msgf("reading offline series %s: %v", path, err)
			continue
		}

		ticker := strings.TrimSuffix(entry.Name(), ".csv")
		ticker = strings.TrimSuffix(ticker, "_saudi")
		err = p.processFrame(ctx, ticker, "", frame)
		if err != nil {
			p.logger.Error().Msgf("processing offline series %s: %v", path, err)
			continue
		}

		processed++
	}

	if processed == 0 {
		return fmt.Errorf("no series processed from %s", p.cfg.OfflineDataDir)
	}

	return nil
}

// Run manages the lifecycle processes of the analysis pipeline.
func (p *Pipeline) Run(ctx context.Context) error {
	err := os.MkdirAll(p.cfg.OutputDir, 0o755)
	if err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if p.cfg.OfflineDataDir != "" {
		err := p.runOffline(ctx)
		p.cfg.Cancel()
		return err
	}

	p.fetchManager.DownloadAll(ctx)

	if !p.cfg.Refresh {
		p.cfg.Cancel()
		return nil
	}

	err = p.fetchManager.ScheduleDailyRefresh(ctx)
	if err != nil {
		return err
	}

	<-ctx.Done()

	return p.fetchManager.Shutdown()
}
