package shared

import "time"

// Bar represents one OHLCV trading session for a security.
type Bar struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Date   time.Time
}

// FrameFromBars builds a frame with the standard OHLCV columns from the
// provided session bars. Bars must be in strictly-ascending date order.
func FrameFromBars(bars []Bar) (*Frame, error) {
	dates := make([]time.Time, len(bars))
	opens := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))

	for idx := range bars {
		dates[idx] = bars[idx].Date
		opens[idx] = bars[idx].Open
		highs[idx] = bars[idx].High
		lows[idx] = bars[idx].Low
		closes[idx] = bars[idx].Close
		volumes[idx] = bars[idx].Volume
	}

	frame, err := NewFrame(dates)
	if err != nil {
		return nil, err
	}

	columns := []struct {
		name string
		vals []float64
	}{
		{OpenColumn, opens},
		{HighColumn, highs},
		{LowColumn, lows},
		{CloseColumn, closes},
		{VolumeColumn, volumes},
	}
	for _, col := range columns {
		err := frame.SetColumn(col.name, col.vals)
		if err != nil {
			return nil, err
		}
	}

	return frame, nil
}
