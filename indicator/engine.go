package indicator

import (
	"errors"
	"fmt"
	"math"

	"github.com/yfahmy/tadawul/shared"
)

// Derived indicator column names.
const (
	SMA14Column           = "SMA_14"
	SMA50Column           = "SMA_50"
	SMA200Column          = "SMA_200"
	EMA12Column           = "EMA_12"
	EMA26Column           = "EMA_26"
	MACDColumn            = "MACD"
	MACDSignalColumn      = "MACD_Signal"
	MACDHistogramColumn   = "MACD_Histogram"
	RSIColumn             = "RSI"
	BBMiddleColumn        = "BB_Middle"
	BBUpperColumn         = "BB_Upper"
	BBLowerColumn         = "BB_Lower"
	BBWidthColumn         = "BB_Width"
	BBPositionColumn      = "BB_Position"
	Momentum10Column      = "Momentum_10"
	Momentum14Column      = "Momentum_14"
	PriceChangePctColumn  = "Price_Change_Pct"
	VolumeSMAColumn       = "Volume_SMA"
	VolumeRatioColumn     = "Volume_Ratio"
	OBVColumn             = "OBV"
	VolatilityColumn      = "Volatility"
	ATRColumn             = "ATR"
	ResistanceColumn      = "Resistance"
	SupportColumn         = "Support"
	PriceAboveSMA50Column = "Price_Above_SMA50"
	EMACrossColumn        = "EMA_Cross"
)

// column pairs a column name with its computed values.
type column struct {
	name string
	vals []float64
}

const (
	// bollingerWindow is the strict lookback for the bollinger bands.
	bollingerWindow = 20
	// bollingerFactor scales the band distance from the middle band.
	bollingerFactor = 2
	// volumeWindow is the strict lookback for the volume moving average.
	volumeWindow = 20
	// supportResistanceWindow is the strict lookback for rolling support and
	// resistance levels.
	supportResistanceWindow = 20
	// momentumShortLag is the short momentum lookback.
	momentumShortLag = 10
)

// Params configures the indicator engine lookback periods.
type Params struct {
	// Window is the primary lookback for RSI, SMA and volatility.
	Window int
	// EMAShort is the short EMA span for MACD.
	EMAShort int
	// EMALong is the long EMA span for MACD.
	EMALong int
	// Signal is the MACD signal line span.
	Signal int
}

// DefaultParams returns the standard lookback configuration.
func DefaultParams() Params {
	return Params{
		Window:   14,
		EMAShort: 12,
		EMALong:  26,
		Signal:   9,
	}
}

// Validate asserts the params are sane lookback periods.
func (p Params) Validate() error {
	var errs error

	if p.Window <= 0 {
		errs = errors.Join(errs, fmt.Errorf("window must be positive, got %d", p.Window))
	}
	if p.EMAShort <= 0 {
		errs = errors.Join(errs, fmt.Errorf("short ema span must be positive, got %d", p.EMAShort))
	}
	if p.EMALong <= 0 {
		errs = errors.Join(errs, fmt.Errorf("long ema span must be positive, got %d", p.EMALong))
	}
	if p.Signal <= 0 {
		errs = errors.Join(errs, fmt.Errorf("signal span must be positive, got %d", p.Signal))
	}

	return errs
}

// Calculate computes the full indicator set for the provided price series and
// returns a new frame with the indicator columns appended. The input frame
// must carry a close column; high, low and volume columns are optional and
// gate their dependent indicators.
func Calculate(frame *shared.Frame, params Params) (*shared.Frame, error) {
	err := params.Validate()
	if err != nil {
		return nil, err
	}

	closes, err := frame.Column(shared.CloseColumn)
	if err != nil {
		return nil, fmt.Errorf("computing indicators: %w", err)
	}

	df := frame.Clone()
	n := df.Len()

	// Trend: simple moving averages with a relaxed minimum window, and
	// recursively-seeded exponential moving averages.
	sma50 := relaxedMean(closes, 50)
	ema12 := ema(closes, params.EMAShort)
	ema26 := ema(closes, params.EMALong)

	macd := subtract(ema12, ema26)
	macdSignal := ema(macd, params.Signal)

	// Volatility bands over a strict window, unlike the relaxed SMAs above.
	bbMiddle := rollingMean(closes, bollingerWindow)
	bbStd := rollingStd(closes, bollingerWindow)
	bbUpper := make([]float64, n)
	bbLower := make([]float64, n)
	bbWidth := make([]float64, n)
	bbPosition := make([]float64, n)
	for idx := range closes {
		bbUpper[idx] = bbMiddle[idx] + bollingerFactor*bbStd[idx]
		bbLower[idx] = bbMiddle[idx] - bollingerFactor*bbStd[idx]
		bbWidth[idx] = bbUpper[idx] - bbLower[idx]

		span := bbUpper[idx] - bbLower[idx]
		if span == 0 || shared.IsMissing(span) {
			bbPosition[idx] = shared.Missing()
			continue
		}
		bbPosition[idx] = (closes[idx] - bbLower[idx]) / span
	}

	pctChange := make([]float64, n)
	pctChange[0] = shared.Missing()
	for idx := 1; idx < n; idx++ {
		if closes[idx-1] == 0 {
			pctChange[idx] = shared.Missing()
			continue
		}
		pctChange[idx] = (closes[idx] - closes[idx-1]) / closes[idx-1] * 100
	}

	priceAboveSMA50 := make([]float64, n)
	emaCross := make([]float64, n)
	for idx := range closes {
		if closes[idx] > sma50[idx] {
			priceAboveSMA50[idx] = 1
		}
		switch {
		case ema12[idx] > ema26[idx]:
			emaCross[idx] = 1
		case ema12[idx] < ema26[idx]:
			emaCross[idx] = -1
		}
	}

	columns := []column{
		{SMA14Column, relaxedMean(closes, params.Window)},
		{SMA50Column, sma50},
		{SMA200Column, relaxedMean(closes, 200)},
		{EMA12Column, ema12},
		{EMA26Column, ema26},
		{MACDColumn, macd},
		{MACDSignalColumn, macdSignal},
		{MACDHistogramColumn, subtract(macd, macdSignal)},
		{RSIColumn, relativeStrength(closes, params.Window)},
		{BBMiddleColumn, bbMiddle},
		{BBUpperColumn, bbUpper},
		{BBLowerColumn, bbLower},
		{BBWidthColumn, bbWidth},
		{BBPositionColumn, bbPosition},
		{Momentum10Column, momentum(closes, momentumShortLag)},
		{Momentum14Column, momentum(closes, params.Window)},
		{PriceChangePctColumn, pctChange},
	}

	if df.HasColumn(shared.VolumeColumn) {
		volumes, err := df.Column(shared.VolumeColumn)
		if err != nil {
			return nil, fmt.Errorf("computing volume indicators: %w", err)
		}

		volumeSMA := rollingMean(volumes, volumeWindow)
		volumeRatio := make([]float64, n)
		for idx := range volumes {
			if volumeSMA[idx] == 0 || shared.IsMissing(volumeSMA[idx]) {
				volumeRatio[idx] = shared.Missing()
				continue
			}
			volumeRatio[idx] = volumes[idx] / volumeSMA[idx]
		}

		columns = append(columns,
			column{VolumeSMAColumn, volumeSMA},
			column{VolumeRatioColumn, volumeRatio},
			column{OBVColumn, onBalanceVolume(closes, volumes)},
		)
	}

	columns = append(columns, column{VolatilityColumn, rollingStd(closes, params.Window)})

	hasHighLow := df.HasColumn(shared.HighColumn) && df.HasColumn(shared.LowColumn)

	// ATR requires the full high/low/close set; it is wholly undefined when
	// any of them is absent.
	atr := allMissing(n)
	if hasHighLow {
		highs, err := df.Column(shared.HighColumn)
		if err != nil {
			return nil, fmt.Errorf("computing atr: %w", err)
		}
		lows, err := df.Column(shared.LowColumn)
		if err != nil {
			return nil, fmt.Errorf("computing atr: %w", err)
		}

		atr = averageTrueRange(highs, lows, closes, params.Window)

		columns = append(columns,
			column{ATRColumn, atr},
			column{ResistanceColumn, rollingMax(highs, supportResistanceWindow)},
			column{SupportColumn, rollingMin(lows, supportResistanceWindow)},
		)
	} else {
		columns = append(columns, column{ATRColumn, atr})
	}

	columns = append(columns,
		column{PriceAboveSMA50Column, priceAboveSMA50},
		column{EMACrossColumn, emaCross},
	)

	for _, col := range columns {
		err := df.SetColumn(col.name, col.vals)
		if err != nil {
			return nil, fmt.Errorf("setting %s column: %w", col.name, err)
		}
	}

	return df, nil
}

// relativeStrength computes the RSI over the provided window, smoothing gains
// and losses exponentially. A zero smoothed loss maps to an RSI of 100 rather
// than propagating the division anomaly.
func relativeStrength(closes []float64, window int) []float64 {
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for idx := 1; idx < n; idx++ {
		delta := closes[idx] - closes[idx-1]
		switch {
		case delta > 0:
			gains[idx] = delta
		case delta < 0:
			losses[idx] = -delta
		}
	}

	avgGain := smooth(gains, 1/float64(window))
	avgLoss := smooth(losses, 1/float64(window))

	out := make([]float64, n)
	for idx := range out {
		if avgLoss[idx] == 0 {
			out[idx] = 100
			continue
		}

		rs := avgGain[idx] / avgLoss[idx]
		out[idx] = 100 - 100/(1+rs)
	}

	return out
}

// momentum computes the price difference against the bar lag sessions back,
// undefined until the lag is covered.
func momentum(closes []float64, lag int) []float64 {
	out := make([]float64, len(closes))
	for idx := range closes {
		if idx < lag {
			out[idx] = shared.Missing()
			continue
		}
		out[idx] = closes[idx] - closes[idx-lag]
	}

	return out
}

// onBalanceVolume computes the cumulative signed volume flow. The first bar
// has no prior close and contributes nothing.
func onBalanceVolume(closes []float64, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	sum := 0.0
	for idx := 1; idx < len(closes); idx++ {
		switch {
		case closes[idx] > closes[idx-1]:
			sum += volumes[idx]
		case closes[idx] < closes[idx-1]:
			sum -= volumes[idx]
		}
		out[idx] = sum
	}

	return out
}

// subtract returns the element-wise difference of the provided series.
func subtract(a []float64, b []float64) []float64 {
	out := make([]float64, len(a))
	for idx := range a {
		out[idx] = a[idx] - b[idx]
	}

	return out
}

// allMissing returns a column of undefined values.
func allMissing(n int) []float64 {
	out := make([]float64, n)
	for idx := range out {
		out[idx] = math.NaN()
	}

	return out
}
