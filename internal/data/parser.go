// internal/data/parser.go
package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ErrMalformedCSV is returned when a CSV export cannot be read back.
var ErrMalformedCSV = errors.New("malformed readings csv")

// ReadCSV parses the form produced by WriteCSV back into a Table.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedCSV, err)
	}
	if len(header) == 0 || header[0] != TimestampColumn {
		return nil, fmt.Errorf("%w: first column must be %q", ErrMalformedCSV, TimestampColumn)
	}

	t := &Table{Columns: make([]Column, len(header)-1)}
	sensors := 0
	for i, name := range header[1:] {
		t.Columns[i].Name = name
		if _, s, ok := ParseColumn(name); ok && s > sensors {
			sensors = s
		}
	}
	t.Sensors = sensors

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, line, err)
		}

		ts, err := time.Parse(time.RFC3339Nano, record[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad timestamp %q", ErrMalformedCSV, line, record[0])
		}
		t.Timestamps = append(t.Timestamps, ts)

		for i, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %v", ErrMalformedCSV, line, t.Columns[i].Name, err)
			}
			t.Columns[i].Values = append(t.Columns[i].Values, v)
		}
	}
	if len(t.Timestamps) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedCSV)
	}
	return t, nil
}
