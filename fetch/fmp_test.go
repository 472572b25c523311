package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/tidwall/gjson"
)

func TestFMPClient(t *testing.T) {
	// Ensure the fmp client can be created.
	cfg := &FMPConfig{
		APIKey:  "key",
		BaseURL: "http://base",
	}

	fc := NewFMPClient(cfg)

	// Ensure urls can be formed accurately.
	params := url.Values{}
	params.Add("a", "bbb")
	params.Add("b", "ccc")

	path := "/path"
	formedUrl := fc.formURL(path, params.Encode())
	assert.Equal(t, formedUrl, "http://base/path?a=bbb&b=ccc")

	// Ensure bar data can be parsed and sorted ascending by date.
	data := `[{"open":12,"close":13,"high":14,"low":11,"volume":7,"date":"2024-01-03"},
		{"open":10,"close":12,"high":15,"low":8,"volume":5,"date":"2024-01-02"}]`
	gjd := gjson.Parse(data).Array()

	bars, err := fc.ParseBars(gjd)
	assert.NoError(t, err)
	assert.Equal(t, len(bars), 2)
	assert.Equal(t, bars[0].Open, float64(10))
	assert.Equal(t, bars[0].Close, float64(12))
	assert.Equal(t, bars[0].High, float64(15))
	assert.Equal(t, bars[0].Low, float64(8))
	assert.Equal(t, bars[0].Volume, float64(5))
	assert.Equal(t, bars[0].Date.Day(), 2)
	assert.Equal(t, bars[1].Date.Day(), 3)

	// Ensure duplicate session dates are rejected.
	duplicated := `[{"close":12,"date":"2024-01-02"},{"close":13,"date":"2024-01-02"}]`
	_, err = fc.ParseBars(gjson.Parse(duplicated).Array())
	assert.Error(t, err)

	// Ensure malformed dates are rejected.
	malformed := `[{"close":12,"date":"02-01-2024"}]`
	_, err = fc.ParseBars(gjson.Parse(malformed).Array())
	assert.Error(t, err)
}

func TestFetchDailyHistorical(t *testing.T) {
	payload := `[{"open":10,"close":12,"high":15,"low":8,"volume":5,"date":"2024-01-02"}]`

	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(payload))
	}))
	defer server.Close()

	fc := NewFMPClient(&FMPConfig{APIKey: "key", BaseURL: server.URL})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	data, err := fc.FetchDailyHistorical(context.Background(), "2222.SR", start, time.Time{})
	assert.NoError(t, err)
	assert.Equal(t, len(data), 1)
	assert.Equal(t, gotQuery.Get("symbol"), "2222.SR")
	assert.Equal(t, gotQuery.Get("apikey"), "key")
	assert.Equal(t, gotQuery.Get("from"), "2024-01-01")
	assert.Equal(t, gotQuery.Get("to"), "")

	// Ensure empty payloads are rejected.
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer empty.Close()

	fc = NewFMPClient(&FMPConfig{APIKey: "key", BaseURL: empty.URL})
	_, err = fc.FetchDailyHistorical(context.Background(), "2222.SR", start, time.Time{})
	assert.Error(t, err)

	// Ensure non-200 responses are rejected.
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer failing.Close()

	fc = NewFMPClient(&FMPConfig{APIKey: "key", BaseURL: failing.URL})
	_, err = fc.FetchDailyHistorical(context.Background(), "2222.SR", start, time.Time{})
	assert.Error(t, err)
}
