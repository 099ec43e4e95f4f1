package data

import (
	"fmt"
	"time"
)

// Reading is one sensor's three values at one timestamp: the long form of a
// table row.
type Reading struct {
	Timestamp   time.Time `json:"timestamp"`
	Sensor      string    `json:"sensor"`
	Temperature float64   `json:"temperature"`
	Vibration   float64   `json:"vibration"`
	Consumption float64   `json:"consumption"`
}

// Long flattens the table into one Reading per sensor per timestamp,
// timestamp-major.
func Long(t *Table) ([]Reading, error) {
	cols := make([][3][]float64, t.Sensors)
	for s := 1; s <= t.Sensors; s++ {
		for j, v := range Variables {
			values, ok := t.Column(ColumnName(v, s))
			if !ok {
				return nil, fmt.Errorf("table is missing %s", ColumnName(v, s))
			}
			cols[s-1][j] = values
		}
	}

	out := make([]Reading, 0, t.Len()*t.Sensors)
	for i, ts := range t.Timestamps {
		for s, c := range cols {
			out = append(out, Reading{
				Timestamp:   ts,
				Sensor:      SensorID(s + 1),
				Temperature: c[0][i],
				Vibration:   c[1][i],
				Consumption: c[2][i],
			})
		}
	}
	return out, nil
}
