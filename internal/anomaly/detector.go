// internal/anomaly/detector.go
package anomaly

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/config"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
)

const (
	SeverityWarn     = "WARN"
	SeverityCritical = "CRITICAL"
)

type Detector struct {
	rules map[data.Variable]config.Rule
}

// NewDetector keeps the rules whose key names a known variable; unknown keys
// are logged and ignored.
func NewDetector(rules map[string]config.Rule) *Detector {
	d := &Detector{rules: make(map[data.Variable]config.Rule, len(rules))}
	for name, rule := range rules {
		v, err := data.ParseVariable(name)
		if err != nil {
			slog.Warn("ignoring anomaly rule", "rule", name, "error", err)
			continue
		}
		d.rules[v] = rule
	}
	return d
}

// Check returns one alert per cell outside its variable's [min, max] range,
// in table order. A value further out than the width of the range is
// CRITICAL.
func (d *Detector) Check(t *data.Table) []data.Alert {
	var alerts []data.Alert

	for _, c := range t.Columns {
		v, sensor, ok := data.ParseColumn(c.Name)
		if !ok {
			continue
		}
		rule, ok := d.rules[v]
		if !ok {
			// No rule defined for this variable, skip
			continue
		}

		width := rule.Max - rule.Min
		for i, value := range c.Values {
			if value >= rule.Min && value <= rule.Max {
				continue
			}
			severity := SeverityWarn
			if value < rule.Min-width || value > rule.Max+width {
				severity = SeverityCritical
			}
			alerts = append(alerts, data.Alert{
				ID:        uuid.NewString(),
				Timestamp: t.Timestamps[i],
				Severity:  severity,
				Message:   fmt.Sprintf("Anomaly detected for %s: Value %.2f is outside range [%.2f, %.2f]", c.Name, value, rule.Min, rule.Max),
				Column:    c.Name,
				Value:     value,
				Sensor:    data.SensorID(sensor),
			})
		}
	}
	return alerts
}
