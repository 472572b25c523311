package indicator

import (
	"math"
	"testing"

	"github.com/yfahmy/tadawul/shared"
)

func TestRelaxedMean(t *testing.T) {
	vals := []float64{2, 4, 6, 8}

	got := relaxedMean(vals, 3)
	closeTo(t, got[0], 2)
	closeTo(t, got[1], 3)
	closeTo(t, got[2], 4)
	closeTo(t, got[3], 6)
}

func TestRollingMean(t *testing.T) {
	vals := []float64{2, 4, 6, 8}

	got := rollingMean(vals, 3)
	if !shared.IsMissing(got[0]) || !shared.IsMissing(got[1]) {
		t.Error("expected undefined means before the window fills")
	}
	closeTo(t, got[2], 4)
	closeTo(t, got[3], 6)
}

func TestRollingStd(t *testing.T) {
	vals := []float64{2, 4, 6, 8}

	// Sample standard deviation over a full window of three.
	got := rollingStd(vals, 3)
	if !shared.IsMissing(got[0]) || !shared.IsMissing(got[1]) {
		t.Error("expected undefined deviations before the window fills")
	}
	closeTo(t, got[2], 2)
	closeTo(t, got[3], 2)

	// A window of one has no sample deviation.
	got = rollingStd(vals, 1)
	for idx := range got {
		if !shared.IsMissing(got[idx]) {
			t.Errorf("expected undefined deviation at %d for a window of one", idx)
		}
	}
}

func TestRollingMaxMin(t *testing.T) {
	vals := []float64{3, 1, 4, 1, 5}

	max := rollingMax(vals, 3)
	min := rollingMin(vals, 3)

	if !shared.IsMissing(max[1]) || !shared.IsMissing(min[1]) {
		t.Error("expected undefined extremes before the window fills")
	}
	closeTo(t, max[2], 4)
	closeTo(t, max[4], 5)
	closeTo(t, min[2], 1)
	closeTo(t, min[4], 1)
}

func TestSmoothSeeding(t *testing.T) {
	vals := []float64{10, 12, 8}
	alpha := 0.25

	got := smooth(vals, alpha)
	closeTo(t, got[0], 10)
	closeTo(t, got[1], 10+alpha*(12-10))
	closeTo(t, got[2], got[1]+alpha*(8-got[1]))

	// An empty series smooths to an empty series.
	if len(smooth(nil, alpha)) != 0 {
		t.Error("expected an empty smoothed series")
	}
}

func TestEMAConstant(t *testing.T) {
	vals := []float64{7, 7, 7, 7}

	got := ema(vals, 12)
	for idx := range got {
		if math.Abs(got[idx]-7) > 1e-12 {
			t.Errorf("expected constant ema, got %v at %d", got[idx], idx)
		}
	}
}
