package anomaly_test

import (
	"testing"
	"time"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/anomaly"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/config"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	table := &data.Table{
		Timestamps: []time.Time{start, start.Add(time.Hour), start.Add(2 * time.Hour)},
		Sensors:    2,
		Columns: []data.Column{
			{Name: "temp_s1", Values: []float64{70, 96, 70}},
			{Name: "vib_s1", Values: []float64{0.1, 0.1, 0.1}},
			{Name: "temp_s2", Values: []float64{10, 70, 70}},
		},
	}

	d := anomaly.NewDetector(map[string]config.Rule{
		"temperature": {Min: 55, Max: 95},
		"humidity":    {Min: 0, Max: 1},
	})
	alerts := d.Check(table)
	require.Len(t, alerts, 2)

	require.Equal(t, "temp_s1", alerts[0].Column)
	require.Equal(t, "s1", alerts[0].Sensor)
	require.Equal(t, anomaly.SeverityWarn, alerts[0].Severity)
	require.True(t, alerts[0].Timestamp.Equal(start.Add(time.Hour)))
	require.NotEmpty(t, alerts[0].ID)

	require.Equal(t, "temp_s2", alerts[1].Column)
	require.Equal(t, anomaly.SeverityCritical, alerts[1].Severity)
	require.Equal(t, 10.0, alerts[1].Value)
}

func TestCheckWithoutRules(t *testing.T) {
	table := &data.Table{
		Timestamps: []time.Time{time.Now()},
		Columns:    []data.Column{{Name: "temp_s1", Values: []float64{1e9}}},
	}
	require.Empty(t, anomaly.NewDetector(nil).Check(table))
}
