package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/yfahmy/tadawul/shared"
)

const (
	// maxWorkers is the maximum number of concurrent downloads.
	maxWorkers = 4
	// maxAttempts is the number of fetch attempts per ticker.
	maxAttempts = 3
	// retryBackoff is the base delay between fetch attempts, doubled per
	// attempt.
	retryBackoff = time.Second * 2
	// refreshHour and refreshMinute set the daily refresh time, shortly
	// after the Tadawul close.
	refreshHour   = 15
	refreshMinute = 30
)

// ProcessSeriesFunc handles a downloaded session series for a ticker.
type ProcessSeriesFunc func(ctx context.Context, ticker string, symbol string, bars []shared.Bar) error

// BatchResult summarizes a batch download run.
type BatchResult struct {
	// Successful is the number of tickers downloaded and processed.
	Successful int
	// Failed is the number of tickers that could not be processed.
	Failed int
	// Total is the number of tickers attempted.
	Total int
}

// ManagerConfig represents the configuration for the download manager.
type ManagerConfig struct {
	// Client is the market data client.
	Client *FMPClient
	// Tickers maps tracked issuer names to their exchange symbols.
	Tickers map[string]string
	// Start bounds the start of the requested series.
	Start time.Time
	// End bounds the end of the requested series, zero meaning today.
	End time.Time
	// ProcessSeries handles each downloaded series.
	ProcessSeries ProcessSeriesFunc
	// Backoff overrides the default retry backoff, primarily for tests.
	Backoff time.Duration
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *ManagerConfig) Validate() error {
	var errs error

	if cfg.Client == nil {
		errs = errors.Join(errs, errors.New("market data client cannot be nil"))
	}
	if len(cfg.Tickers) == 0 {
		errs = errors.Join(errs, errors.New("no tickers provided for download manager"))
	}
	if cfg.ProcessSeries == nil {
		errs = errors.Join(errs, errors.New("process series function cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, errors.New("logger cannot be nil"))
	}

	return errs
}

// Manager coordinates batch downloads of historical series for the tracked
// tickers.
type Manager struct {
	cfg          *ManagerConfig
	fetched      atomic.Int32
	failed       atomic.Int32
	jobScheduler gocron.Scheduler
	workers      chan struct{}
}

// NewManager initializes the download manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	if cfg.Backoff == 0 {
		cfg.Backoff = retryBackoff
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating job scheduler: %w", err)
	}

	mgr := &Manager{
		cfg:          cfg,
		jobScheduler: scheduler,
		workers:      make(chan struct{}, maxWorkers),
	}

	return mgr, nil
}

// downloadTicker fetches, parses and processes the series for one ticker,
// retrying transient fetch failures with backoff.
func (m *Manager) downloadTicker(ctx context.Context, ticker string, symbol string) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		data, err := m.cfg.Client.FetchDailyHistorical(ctx, symbol, m.cfg.Start, m.cfg.End)
		if err != nil {
			lastErr = err
			m.cfg.Logger.Warn().Msgf("fetching %s (%s), attempt %d/%d: %v",
				ticker, symbol, attempt, maxAttempts, err)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.cfg.Backoff * time.Duration(attempt)):
				continue
			}
		}

		bars, err := m.cfg.Client.ParseBars(data)
		if err != nil {
			return fmt.Errorf("parsing bars for %s: %w", ticker, err)
		}

		return m.cfg.ProcessSeries(ctx, ticker, symbol, bars)
	}

	return fmt.Errorf("fetching %s (%s): %w", ticker, symbol, lastErr)
}

// DownloadAll downloads and processes the series of every tracked ticker
// using a bounded worker pool. Tickers are independent and processed
// concurrently.
func (m *Manager) DownloadAll(ctx context.Context) *BatchResult {
	m.fetched.Store(0)
	m.failed.Store(0)

	var wg sync.WaitGroup
	for ticker, symbol := range m.cfg.Tickers {
		wg.Add(1)
		m.workers <- struct{}{}

		go func(ticker string, symbol string) {
			defer wg.Done()
			defer func() { <-m.workers }()

			err := m.downloadTicker(ctx, ticker, symbol)
			if err != nil {
				m.failed.Add(1)
				m.cfg.Logger.Error().Msgf("downloading %s: %v", ticker, err)
				return
			}

			m.fetched.Add(1)
		}(ticker, symbol)
	}

	wg.Wait()

	result := &BatchResult{
		Successful: int(m.fetched.Load()),
		Failed:     int(m.failed.Load()),
		Total:      len(m.cfg.Tickers),
	}

	m.cfg.Logger.Info().Msgf("download batch complete: %d/%d successful, %d failed",
		result.Successful, result.Total, result.Failed)

	return result
}

// ScheduleDailyRefresh registers a daily batch download after the exchange
// close and starts the job scheduler.
func (m *Manager) ScheduleDailyRefresh(ctx context.Context) error {
	_, err := m.jobScheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(refreshHour, refreshMinute, 0))),
		gocron.NewTask(func() {
			m.DownloadAll(ctx)
		}),
	)
	if err != nil {
		return fmt.Errorf("scheduling daily refresh: %w", err)
	}

	m.jobScheduler.Start()

	return nil
}

// Shutdown terminates the job scheduler.
func (m *Manager) Shutdown() error {
	return m.jobScheduler.Shutdown()
}
