package dataset

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/peterldowns/testy/assert"

	"github.com/yfahmy/tadawul/shared"
)

func testFrame(t *testing.T) *shared.Frame {
	t.Helper()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := []time.Time{start, start.AddDate(0, 0, 1), start.AddDate(0, 0, 2)}

	frame, err := shared.NewFrame(dates)
	assert.NoError(t, err)

	assert.NoError(t, frame.SetColumn(shared.CloseColumn, []float64{10.25, 1.0 / 3, 12}))
	assert.NoError(t, frame.SetColumn("SMA_14", []float64{shared.Missing(), 5.125, 7.875}))
	assert.NoError(t, frame.SetColumn("RSI", []float64{100, 54.321, shared.Missing()}))

	return frame
}

func TestCSVRoundTrip(t *testing.T) {
	frame := testFrame(t)
	path := filepath.Join(t.TempDir(), "series.csv")

	err := WriteCSV(path, frame)
	assert.NoError(t, err)

	parsed, err := ReadCSV(path)
	assert.NoError(t, err)
	assert.Equal(t, parsed.Len(), frame.Len())

	// Ensure the column set and order survive the round trip.
	if diff := cmp.Diff(frame.Columns(), parsed.Columns()); diff != "" {
		t.Errorf("mismatching columns (-want +got):\n%s", diff)
	}

	// Ensure dates and values survive the round trip exactly, including
	// undefined cells.
	for idx, dt := range frame.Dates() {
		if !parsed.Dates()[idx].Equal(dt) {
			t.Errorf("mismatching date at %d: want %v, got %v", idx, dt, parsed.Dates()[idx])
		}
	}

	for _, name := range frame.Columns() {
		want, err := frame.Column(name)
		assert.NoError(t, err)
		got, err := parsed.Column(name)
		assert.NoError(t, err)

		if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
			t.Errorf("mismatching %s values (-want +got):\n%s", name, diff)
		}
	}
}

func TestReadCSVMalformed(t *testing.T) {
	dir := t.TempDir()

	// Ensure a missing file errors.
	_, err := ReadCSV(filepath.Join(dir, "absent.csv"))
	assert.Error(t, err)
}
