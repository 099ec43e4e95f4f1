package data

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

const (
	TimestampColumn = "timestamp"
	CSVFileName     = "datos_demo.csv"
	CSVContentType  = "text/csv; charset=utf-8"
)

// WriteCSV writes the table with a header row and one row per hourly sample.
// Floats use the shortest representation that parses back to the same value.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	record := make([]string, len(t.Columns)+1)
	record[0] = TimestampColumn
	for i, c := range t.Columns {
		record[i+1] = c.Name
	}
	if err := cw.Write(record); err != nil {
		return err
	}

	for row, ts := range t.Timestamps {
		record[0] = ts.Format(time.RFC3339Nano)
		for i, c := range t.Columns {
			record[i+1] = strconv.FormatFloat(c.Values[row], 'f', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// EncodeCSV is WriteCSV into a byte slice.
func EncodeCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCSV is ReadCSV over a byte slice.
func DecodeCSV(b []byte) (*Table, error) {
	return ReadCSV(bytes.NewReader(b))
}
