package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createRunTableSQL = "CREATE TABLE IF NOT EXISTS run (id TEXT PRIMARY KEY, ticker TEXT, symbol TEXT, records INTEGER, rangestart TEXT, rangeend TEXT, buysignals INTEGER, sellsignals INTEGER, createdon INTEGER)"
	persistRunSQL     = "INSERT INTO run(id, ticker, symbol, records, rangestart, rangeend, buysignals, sellsignals, createdon) VALUES(?,?,?,?,?,?,?,?,?)"
)

// RunSummary captures the outcome of processing one ticker series.
type RunSummary struct {
	ID          string
	Ticker      string
	Symbol      string
	Records     int
	RangeStart  string
	RangeEnd    string
	BuySignals  int
	SellSignals int
	CreatedOn   int64
}

// SummaryStorer defines the requirements for storing run summaries.
type SummaryStorer interface {
	// PersistRunSummary stores the provided run summary to the database.
	PersistRunSummary(ctx context.Context, summary *RunSummary) error
}

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
}

// Ensure the database implements the SummaryStorer interface.
var _ SummaryStorer = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	db := &Database{
		cfg:    cfg,
		client: client,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	_, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createRunTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// PersistRunSummary stores the provided run summary to the database.
func (db *Database) PersistRunSummary(ctx context.Context, summary *RunSummary) error {
	_, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL: persistRunSQL,
			PositionalParams: []any{summary.ID, summary.Ticker, summary.Symbol, summary.Records,
				summary.RangeStart, summary.RangeEnd, summary.BuySignals, summary.SellSignals,
				summary.CreatedOn},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		db.cfg.Logger.Error().Msgf("failed to persist run summary: %s", spew.Sdump(summary))
		return err
	}

	return nil
}
