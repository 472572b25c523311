package shared

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMissingColumn is returned when a required column is absent from a frame.
var ErrMissingColumn = errors.New("missing column")

const (
	// DateLayout is the layout used for session date keys.
	DateLayout = "2006-01-02"
)

// Base column names for session bar data.
const (
	OpenColumn   = "Open"
	HighColumn   = "High"
	LowColumn    = "Low"
	CloseColumn  = "Close"
	VolumeColumn = "Volume"
)

// Missing returns the sentinel for an undefined value in a frame column.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether the provided value is undefined.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Frame represents an ordered tabular price series. Rows are keyed by a
// strictly-increasing session date index and columns hold one value per row,
// using the missing sentinel for undefined entries. Pipeline stages transform
// frames functionally, cloning rather than mutating their input.
type Frame struct {
	dates []time.Time
	order []string
	cols  map[string][]float64
}

// NewFrame initializes an empty frame keyed by the provided session dates.
func NewFrame(dates []time.Time) (*Frame, error) {
	if len(dates) == 0 {
		return nil, errors.New("frame requires at least one session date")
	}

	for idx := 1; idx < len(dates); idx++ {
		if !dates[idx].After(dates[idx-1]) {
			return nil, fmt.Errorf("session dates must be strictly increasing, got %s after %s",
				dates[idx].Format(DateLayout), dates[idx-1].Format(DateLayout))
		}
	}

	frame := &Frame{
		dates: append([]time.Time(nil), dates...),
		cols:  make(map[string][]float64),
	}

	return frame, nil
}

// Len returns the number of rows in the frame.
func (f *Frame) Len() int {
	return len(f.dates)
}

// Dates returns the session date index of the frame.
func (f *Frame) Dates() []time.Time {
	return f.dates
}

// Columns returns the frame's column names in insertion order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.order...)
}

// HasColumn reports whether the frame has the named column.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column fetches the named column values.
func (f *Frame) Column(name string) ([]float64, error) {
	vals, ok := f.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}

	return vals, nil
}

// SetColumn sets the named column to the provided values, appending it to the
// column order if it does not exist yet.
func (f *Frame) SetColumn(name string, values []float64) error {
	if len(values) != len(f.dates) {
		return fmt.Errorf("column %s has %d values, expected %d", name, len(values), len(f.dates))
	}

	if _, ok := f.cols[name]; !ok {
		f.order = append(f.order, name)
	}
	f.cols[name] = append([]float64(nil), values...)

	return nil
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	clone := &Frame{
		dates: append([]time.Time(nil), f.dates...),
		order: append([]string(nil), f.order...),
		cols:  make(map[string][]float64, len(f.cols)),
	}

	for name, vals := range f.cols {
		clone.cols[name] = append([]float64(nil), vals...)
	}

	return clone
}
