package indicator

import "math"

// averageTrueRange computes the strict rolling mean of the true range over
// the provided window. The first bar has no prior close, so its true range
// falls back to the high-low spread.
func averageTrueRange(highs []float64, lows []float64, closes []float64, window int) []float64 {
	trueRange := make([]float64, len(highs))
	for idx := range trueRange {
		highLow := highs[idx] - lows[idx]
		if idx == 0 {
			trueRange[idx] = highLow
			continue
		}

		highClose := math.Abs(highs[idx] - closes[idx-1])
		lowClose := math.Abs(lows[idx] - closes[idx-1])
		trueRange[idx] = math.Max(highLow, math.Max(highClose, lowClose))
	}

	return rollingMean(trueRange, window)
}
