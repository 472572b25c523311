package shared

import (
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestResolveTickers(t *testing.T) {
	// Ensure an empty name list resolves to the full catalog.
	tickers, err := ResolveTickers(nil)
	assert.NoError(t, err)
	assert.Equal(t, len(tickers), len(SaudiTickers))

	// Ensure a subset resolves to the expected symbols.
	tickers, err = ResolveTickers([]string{"Saudi_Aramco", "SABIC"})
	assert.NoError(t, err)
	assert.Equal(t, len(tickers), 2)
	assert.Equal(t, tickers["Saudi_Aramco"], "2222.SR")
	assert.Equal(t, tickers["SABIC"], "2010.SR")

	// Ensure unknown names are rejected.
	_, err = ResolveTickers([]string{"Unknown_Issuer"})
	assert.Error(t, err)
}
