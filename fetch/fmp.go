package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/tidwall/gjson"
	"github.com/yfahmy/tadawul/shared"
)

const (
	// defaultBaseURL is the default FMP API base url.
	defaultBaseURL = "https://financialmodelingprep.com/stable"
	// requestTimeout bounds individual api requests.
	requestTimeout = time.Second * 10
)

// FMPConfig represents the configuration for the FMP client.
type FMPConfig struct {
	// APIKey is the FMP API key.
	APIKey string
	// BaseURL overrides the default API base url, primarily for tests.
	BaseURL string
}

// FMPClient represents the Financial Modeling Prep (FMP) API client.
type FMPClient struct {
	cfg   *FMPConfig
	httpc http.Client
}

// NewFMPClient instantiates a new FMP client.
func NewFMPClient(cfg *FMPConfig) *FMPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	return &FMPClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: requestTimeout},
	}
}

// formURL creates full urls including parameters for the api. The client is
// used concurrently, so the url is assembled on a local buffer.
func (c *FMPClient) formURL(path string, params string) string {
	var buf bytes.Buffer
	buf.Grow(len(c.cfg.BaseURL) + len(path) + len(params) + 1)
	buf.WriteString(c.cfg.BaseURL)
	buf.WriteString(path)
	buf.WriteString("?")
	buf.WriteString(params)

	return buf.String()
}

// ParseBars parses daily session bars from the provided json rows and returns
// them sorted ascending by date. Duplicate session dates are rejected.
func (c *FMPClient) ParseBars(data []gjson.Result) ([]shared.Bar, error) {
	bars := make([]shared.Bar, len(data))

	for idx := range data {
		var bar shared.Bar

		bar.Open = data[idx].Get("open").Float()
		bar.Low = data[idx].Get("low").Float()
		bar.High = data[idx].Get("high").Float()
		bar.Close = data[idx].Get("close").Float()
		bar.Volume = data[idx].Get("volume").Float()

		dt, err := time.Parse(shared.DateLayout, data[idx].Get("date").String())
		if err != nil {
			return nil, fmt.Errorf("parsing session date: %w", err)
		}

		bar.Date = dt
		bars[idx] = bar
	}

	slices.SortFunc(bars, func(a, b shared.Bar) int {
		return a.Date.Compare(b.Date)
	})

	for idx := 1; idx < len(bars); idx++ {
		if bars[idx].Date.Equal(bars[idx-1].Date) {
			return nil, fmt.Errorf("duplicate session date: %s", bars[idx].Date.Format(shared.DateLayout))
		}
	}

	return bars, nil
}

// FetchDailyHistorical fetches end-of-day historical data for the provided
// symbol over the given date range.
func (c *FMPClient) FetchDailyHistorical(ctx context.Context, symbol string, start time.Time, end time.Time) ([]gjson.Result, error) {
	const eodHistoricalPath = "/historical-price-eod/full"

	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("apikey", c.cfg.APIKey)
	if !start.IsZero() {
		params.Add("from", start.Format(shared.DateLayout))
	}
	if !end.IsZero() {
		params.Add("to", end.Format(shared.DateLayout))
	}

	formedURL := c.formURL(eodHistoricalPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating historical data request for %s: %w", symbol, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching daily historical data for %s: %w", symbol, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching daily historical data for %s", resp.StatusCode, symbol)
	}

	data := gjson.ParseBytes(body).Array()
	if len(data) == 0 {
		return nil, fmt.Errorf("no data returned for %s", symbol)
	}

	return data, nil
}
