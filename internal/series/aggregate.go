package series

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
)

var ErrUnknownColumn = errors.New("unknown column")

// DailyValue is the mean of one column over a calendar date.
type DailyValue struct {
	Date time.Time `json:"date"`
	Mean float64   `json:"mean"`
}

// Label formats the date the way the bar chart and CSV do.
func (d DailyValue) Label() string {
	return d.Date.Format(time.DateOnly)
}

// DailyMean groups the column by the calendar date of each timestamp, in the
// timestamp's own location, and averages it. Rows are in date order.
func DailyMean(t *data.Table, column string) ([]DailyValue, error) {
	values, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}

	var (
		out   []DailyValue
		sum   float64
		count int
	)
	for i, ts := range t.Timestamps {
		y, m, d := ts.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
		if len(out) == 0 || !out[len(out)-1].Date.Equal(day) {
			if count > 0 {
				out[len(out)-1].Mean = sum / float64(count)
			}
			out = append(out, DailyValue{Date: day})
			sum, count = 0, 0
		}
		sum += values[i]
		count++
	}
	if count > 0 {
		out[len(out)-1].Mean = sum / float64(count)
	}
	return out, nil
}

// ColumnStats are the summary rows shown under the sample table.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe computes count, mean, sample standard deviation, min and max for
// every numeric column. Std is 0 when a column has fewer than two values.
func Describe(t *data.Table) []ColumnStats {
	stats := make([]ColumnStats, 0, len(t.Columns))
	for _, c := range t.Columns {
		stats = append(stats, describe(c))
	}
	return stats
}

func describe(c data.Column) ColumnStats {
	st := ColumnStats{Column: c.Name, Count: len(c.Values)}
	if st.Count == 0 {
		return st
	}

	st.Min, st.Max = math.Inf(1), math.Inf(-1)
	var sum float64
	for _, v := range c.Values {
		sum += v
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	st.Mean = sum / float64(st.Count)

	if st.Count > 1 {
		var sq float64
		for _, v := range c.Values {
			d := v - st.Mean
			sq += d * d
		}
		st.Std = math.Sqrt(sq / float64(st.Count-1))
	}
	return st
}

// Head returns up to the first n rows.
func Head(t *data.Table, n int) []data.Row {
	if n > t.Len() {
		n = t.Len()
	}
	rows := make([]data.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, t.Row(i))
	}
	return rows
}

// Select returns a single column as points along the timestamp axis.
func Select(t *data.Table, column string) ([]data.Point, error) {
	values, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	points := make([]data.Point, len(values))
	for i, v := range values {
		points[i] = data.Point{Timestamp: t.Timestamps[i], Value: v}
	}
	return points, nil
}
