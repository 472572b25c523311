package shared

import "fmt"

// SaudiTickers maps the tracked Saudi-exchange issuers to their exchange
// symbols.
var SaudiTickers = map[string]string{
	"Saudi_Aramco":        "2222.SR",
	"Al_Rajhi_Bank":       "1120.SR",
	"Saudi_National_Bank": "1180.SR",
	"Saudi_Telecom":       "7010.SR",
	"Saudi_Electricity":   "5110.SR",
	"Savola_Group":        "2050.SR",
	"Jarir_Marketing":     "4190.SR",
	"SABIC":               "2010.SR",
	"ACWA_Power":          "2082.SR",
	"Banque_Saudi_Fransi": "1050.SR",
}

// ResolveTickers maps the provided issuer names to their exchange symbols.
// An empty name list resolves to the full catalog.
func ResolveTickers(names []string) (map[string]string, error) {
	if len(names) == 0 {
		tickers := make(map[string]string, len(SaudiTickers))
		for name, symbol := range SaudiTickers {
			tickers[name] = symbol
		}

		return tickers, nil
	}

	tickers := make(map[string]string, len(names))
	for _, name := range names {
		symbol, ok := SaudiTickers[name]
		if !ok {
			return nil, fmt.Errorf("unknown ticker: %s", name)
		}
		tickers[name] = symbol
	}

	return tickers, nil
}
