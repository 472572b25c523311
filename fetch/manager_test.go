package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/rs/zerolog"

	"github.com/yfahmy/tadawul/shared"
)

func TestManagerConfigValidate(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name    string
		cfg     ManagerConfig
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: ManagerConfig{
				Client:        NewFMPClient(&FMPConfig{APIKey: "key"}),
				Tickers:       map[string]string{"Saudi_Aramco": "2222.SR"},
				ProcessSeries: func(ctx context.Context, ticker, symbol string, bars []shared.Bar) error { return nil },
				Logger:        &logger,
			},
			wantErr: false,
		},
		{
			name: "missing client",
			cfg: ManagerConfig{
				Tickers:       map[string]string{"Saudi_Aramco": "2222.SR"},
				ProcessSeries: func(ctx context.Context, ticker, symbol string, bars []shared.Bar) error { return nil },
				Logger:        &logger,
			},
			wantErr: true,
		},
		{
			name: "missing tickers",
			cfg: ManagerConfig{
				Client:        NewFMPClient(&FMPConfig{APIKey: "key"}),
				ProcessSeries: func(ctx context.Context, ticker, symbol string, bars []shared.Bar) error { return nil },
				Logger:        &logger,
			},
			wantErr: true,
		},
		{
			name: "missing process series function",
			cfg: ManagerConfig{
				Client:  NewFMPClient(&FMPConfig{APIKey: "key"}),
				Tickers: map[string]string{"Saudi_Aramco": "2222.SR"},
				Logger:  &logger,
			},
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewManager(&test.cfg)
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDownloadAll(t *testing.T) {
	payload := `[{"open":10,"close":12,"high":15,"low":8,"volume":5,"date":"2024-01-02"},
		{"open":12,"close":13,"high":14,"low":11,"volume":7,"date":"2024-01-03"}]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	var mtx sync.Mutex
	processed := make(map[string]int)

	logger := zerolog.Nop()
	mgr, err := NewManager(&ManagerConfig{
		Client: NewFMPClient(&FMPConfig{APIKey: "key", BaseURL: server.URL}),
		Tickers: map[string]string{
			"Saudi_Aramco": "2222.SR",
			"SABIC":        "2010.SR",
		},
		ProcessSeries: func(ctx context.Context, ticker, symbol string, bars []shared.Bar) error {
			mtx.Lock()
			defer mtx.Unlock()
			processed[ticker] = len(bars)
			return nil
		},
		Logger: &logger,
	})
	assert.NoError(t, err)

	result := mgr.DownloadAll(context.Background())
	assert.Equal(t, result.Total, 2)
	assert.Equal(t, result.Successful, 2)
	assert.Equal(t, result.Failed, 0)

	assert.Equal(t, processed["Saudi_Aramco"], 2)
	assert.Equal(t, processed["SABIC"], 2)
}

func TestDownloadAllFailure(t *testing.T) {
	// An empty payload exhausts all fetch attempts.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	logger := zerolog.Nop()
	mgr, err := NewManager(&ManagerConfig{
		Client:  NewFMPClient(&FMPConfig{APIKey: "key", BaseURL: server.URL}),
		Tickers: map[string]string{"Saudi_Aramco": "2222.SR"},
		Backoff: time.Millisecond,
		ProcessSeries: func(ctx context.Context, ticker, symbol string, bars []shared.Bar) error {
			t.Error("process series should not be called on fetch failure")
			return nil
		},
		Logger: &logger,
	})
	assert.NoError(t, err)

	result := mgr.DownloadAll(context.Background())
	assert.Equal(t, result.Successful, 0)
	assert.Equal(t, result.Failed, 1)
}
