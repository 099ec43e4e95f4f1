// internal/data/models.go
package data

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Variable is one of the three physical quantities every sensor reports.
type Variable string

const (
	Temperature Variable = "temperature"
	Vibration   Variable = "vibration"
	Consumption Variable = "consumption"
)

// Variables lists the quantities in column order.
var Variables = []Variable{Temperature, Vibration, Consumption}

// Prefix returns the column prefix used in a Reading Table.
func (v Variable) Prefix() string {
	switch v {
	case Temperature:
		return "temp"
	case Vibration:
		return "vib"
	case Consumption:
		return "cons"
	}
	return ""
}

// ParseVariable accepts the variable name or its column prefix.
func ParseVariable(s string) (Variable, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range Variables {
		if s == string(v) || s == v.Prefix() {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown variable %q", s)
}

// SensorID returns the label of a 1-based sensor index, e.g. "s3".
func SensorID(sensor int) string {
	return "s" + strconv.Itoa(sensor)
}

// ColumnName returns the table column for a variable and sensor, e.g. "temp_s1".
func ColumnName(v Variable, sensor int) string {
	return v.Prefix() + "_" + SensorID(sensor)
}

// ParseColumn splits a column name back into its variable and sensor index.
func ParseColumn(name string) (Variable, int, bool) {
	prefix, id, ok := strings.Cut(name, "_s")
	if !ok {
		return "", 0, false
	}
	sensor, err := strconv.Atoi(id)
	if err != nil || sensor <= 0 {
		return "", 0, false
	}
	v, err := ParseVariable(prefix)
	if err != nil || v.Prefix() != prefix {
		return "", 0, false
	}
	return v, sensor, true
}

// Column is one numeric series of a Reading Table.
type Column struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Table is the Reading Table: an hourly timestamp axis shared by
// temp_sN, vib_sN and cons_sN columns for every sensor.
type Table struct {
	Timestamps []time.Time `json:"timestamps"`
	Sensors    int         `json:"sensors"`
	Columns    []Column    `json:"columns"`
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Timestamps)
}

// ColumnNames returns the numeric column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]float64, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

// Row is a single timestamp of a table, used for the sample view.
type Row struct {
	Timestamp time.Time          `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

// Row materialises row i.
func (t *Table) Row(i int) Row {
	r := Row{Timestamp: t.Timestamps[i], Values: make(map[string]float64, len(t.Columns))}
	for _, c := range t.Columns {
		r.Values[c.Name] = c.Values[i]
	}
	return r
}

// Point is one sample of a single column.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Alert - Structure for sending alerts
type Alert struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Severity  string    `json:"severity"` // "WARN" or "CRITICAL"
	Message   string    `json:"message"`
	Column    string    `json:"column"`
	Value     float64   `json:"value"`
	Sensor    string    `json:"sensor,omitempty"`
}
