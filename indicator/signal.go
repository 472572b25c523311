package indicator

import (
	"fmt"

	"github.com/yfahmy/tadawul/shared"
)

// Trading signal column names.
const (
	BuySignalColumn  = "Buy_Signal"
	SellSignalColumn = "Sell_Signal"
)

const (
	// oversoldRSI is the RSI level below which a security is oversold.
	oversoldRSI = 30
	// overboughtRSI is the RSI level above which a security is overbought.
	overboughtRSI = 70
)

// TradingSignals derives threshold-based buy and sell flags from a computed
// indicator frame and returns a new frame with the signal columns appended.
// Rules are applied in order and later rules overwrite earlier writes on the
// same bar and column: RSI thresholds, then MACD signal-line crosses, then
// bollinger band breaches. The two flags are independent; a bar may carry
// both.
func TradingSignals(frame *shared.Frame) (*shared.Frame, error) {
	closes, err := frame.Column(shared.CloseColumn)
	if err != nil {
		return nil, fmt.Errorf("generating trading signals: %w", err)
	}
	rsi, err := frame.Column(RSIColumn)
	if err != nil {
		return nil, fmt.Errorf("generating trading signals: %w", err)
	}
	macd, err := frame.Column(MACDColumn)
	if err != nil {
		return nil, fmt.Errorf("generating trading signals: %w", err)
	}
	macdSignal, err := frame.Column(MACDSignalColumn)
	if err != nil {
		return nil, fmt.Errorf("generating trading signals: %w", err)
	}
	bbLower, err := frame.Column(BBLowerColumn)
	if err != nil {
		return nil, fmt.Errorf("generating trading signals: %w", err)
	}
	bbUpper, err := frame.Column(BBUpperColumn)
	if err != nil {
		return nil, fmt.Errorf("generating trading signals: %w", err)
	}

	df := frame.Clone()
	n := df.Len()

	buy := make([]float64, n)
	sell := make([]float64, n)

	// RSI thresholds. Undefined comparisons are false and leave the default.
	for idx := range rsi {
		if rsi[idx] < oversoldRSI {
			buy[idx] = 1
		}
		if rsi[idx] > overboughtRSI {
			sell[idx] = 1
		}
	}

	// MACD signal line crosses.
	for idx := 1; idx < n; idx++ {
		if macd[idx] > macdSignal[idx] && macd[idx-1] <= macdSignal[idx-1] {
			buy[idx] = 1
		}
		if macd[idx] < macdSignal[idx] && macd[idx-1] >= macdSignal[idx-1] {
			sell[idx] = 1
		}
	}

	// Bollinger band breaches.
	for idx := range closes {
		if closes[idx] < bbLower[idx] {
			buy[idx] = 1
		}
		if closes[idx] > bbUpper[idx] {
			sell[idx] = 1
		}
	}

	err = df.SetColumn(BuySignalColumn, buy)
	if err != nil {
		return nil, fmt.Errorf("setting %s column: %w", BuySignalColumn, err)
	}
	err = df.SetColumn(SellSignalColumn, sell)
	if err != nil {
		return nil, fmt.Errorf("setting %s column: %w", SellSignalColumn, err)
	}

	return df, nil
}
