package indicator

import "math"

// relaxedMean computes a trailing mean over the provided window, averaging
// over however many observations are available before the window fills.
func relaxedMean(vals []float64, window int) []float64 {
	out := make([]float64, len(vals))
	for idx := range vals {
		start := idx - window + 1
		if start < 0 {
			start = 0
		}

		sum := 0.0
		for j := start; j <= idx; j++ {
			sum += vals[j]
		}
		out[idx] = sum / float64(idx-start+1)
	}

	return out
}

// rollingMean computes a strict trailing mean, undefined until the window
// fills.
func rollingMean(vals []float64, window int) []float64 {
	out := make([]float64, len(vals))
	for idx := range vals {
		if idx < window-1 {
			out[idx] = math.NaN()
			continue
		}

		sum := 0.0
		for j := idx - window + 1; j <= idx; j++ {
			sum += vals[j]
		}
		out[idx] = sum / float64(window)
	}

	return out
}

// rollingStd computes a strict trailing sample standard deviation, undefined
// until the window fills.
func rollingStd(vals []float64, window int) []float64 {
	out := make([]float64, len(vals))
	if window < 2 {
		for idx := range out {
			out[idx] = math.NaN()
		}

		return out
	}

	for idx := range vals {
		if idx < window-1 {
			out[idx] = math.NaN()
			continue
		}

		mean := 0.0
		for j := idx - window + 1; j <= idx; j++ {
			mean += vals[j]
		}
		mean /= float64(window)

		variance := 0.0
		for j := idx - window + 1; j <= idx; j++ {
			dev := vals[j] - mean
			variance += dev * dev
		}
		out[idx] = math.Sqrt(variance / float64(window-1))
	}

	return out
}

// rollingMax computes a strict trailing maximum, undefined until the window
// fills.
func rollingMax(vals []float64, window int) []float64 {
	out := make([]float64, len(vals))
	for idx := range vals {
		if idx < window-1 {
			out[idx] = math.NaN()
			continue
		}

		max := vals[idx-window+1]
		for j := idx - window + 2; j <= idx; j++ {
			if vals[j] > max {
				max = vals[j]
			}
		}
		out[idx] = max
	}

	return out
}

// rollingMin computes a strict trailing minimum, undefined until the window
// fills.
func rollingMin(vals []float64, window int) []float64 {
	out := make([]float64, len(vals))
	for idx := range vals {
		if idx < window-1 {
			out[idx] = math.NaN()
			continue
		}

		min := vals[idx-window+1]
		for j := idx - window + 2; j <= idx; j++ {
			if vals[j] < min {
				min = vals[j]
			}
		}
		out[idx] = min
	}

	return out
}

// smooth applies recursive exponential smoothing with the provided smoothing
// factor, seeded at the first value.
func smooth(vals []float64, alpha float64) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}

	out[0] = vals[0]
	for idx := 1; idx < len(vals); idx++ {
		out[idx] = alpha*vals[idx] + (1-alpha)*out[idx-1]
	}

	return out
}

// ema computes a recursive exponential moving average for the provided span,
// seeded at the first value.
func ema(vals []float64, span int) []float64 {
	return smooth(vals, 2/float64(span+1))
}
