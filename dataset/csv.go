// Package dataset persists price series frames as delimited text files with
// the session date as the first column.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/yfahmy/tadawul/shared"
)

// dateHeader is the header of the session date column.
const dateHeader = "Date"

// WriteCSV persists the provided frame as delimited text at the given path.
// Undefined values are written as empty cells and floats use their shortest
// exact representation so a read back reproduces identical values.
func WriteCSV(path string, frame *shared.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}
	defer file.Close()

	names := frame.Columns()
	columns := make([][]float64, len(names))
	for idx, name := range names {
		vals, err := frame.Column(name)
		if err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		columns[idx] = vals
	}

	writer := csv.NewWriter(file)

	header := append([]string{dateHeader}, names...)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	dates := frame.Dates()
	record := make([]string, len(header))
	for row := 0; row < frame.Len(); row++ {
		record[0] = dates[row].Format(shared.DateLayout)
		for col := range columns {
			v := columns[col][row]
			if shared.IsMissing(v) {
				record[col+1] = ""
				continue
			}
			record[col+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}

		err = writer.Write(record)
		if err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}

	writer.Flush()
	err = writer.Error()
	if err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return file.Close()
}

// ReadCSV parses a frame previously written by WriteCSV.
func ReadCSV(path string) (*shared.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("csv file %s has no data rows", path)
	}

	header := records[0]
	if len(header) == 0 || header[0] != dateHeader {
		return nil, fmt.Errorf("csv file %s missing %s column", path, dateHeader)
	}

	rows := records[1:]
	dates := make([]time.Time, len(rows))
	for idx, record := range rows {
		if len(record) != len(header) {
			return nil, fmt.Errorf("csv row %d has %d fields, expected %d", idx+1, len(record), len(header))
		}

		dt, err := time.Parse(shared.DateLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("parsing csv session date: %w", err)
		}
		dates[idx] = dt
	}

	frame, err := shared.NewFrame(dates)
	if err != nil {
		return nil, fmt.Errorf("building frame: %w", err)
	}

	for col := 1; col < len(header); col++ {
		vals := make([]float64, len(rows))
		for row := range rows {
			cell := rows[row][col]
			if cell == "" {
				vals[row] = shared.Missing()
				continue
			}

			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("parsing csv value %q in column %s: %w", cell, header[col], err)
			}
			vals[row] = v
		}

		err = frame.SetColumn(header[col], vals)
		if err != nil {
			return nil, fmt.Errorf("setting %s column: %w", header[col], err)
		}
	}

	return frame, nil
}
