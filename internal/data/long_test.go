package data_test

import (
	"testing"
	"time"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/series"
	"github.com/stretchr/testify/require"
)

func TestLong(t *testing.T) {
	end := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	table, err := series.Generate(series.Options{Days: 2, Sensors: 3, Seed: 42, End: end})
	require.NoError(t, err)

	rows, err := data.Long(table)
	require.NoError(t, err)
	require.Len(t, rows, 2*24*3)

	require.Equal(t, "s1", rows[0].Sensor)
	require.Equal(t, "s3", rows[2].Sensor)
	require.True(t, rows[len(rows)-1].Timestamp.Equal(end))

	vib, _ := table.Column("vib_s2")
	require.Equal(t, vib[0], rows[1].Vibration)
}

func TestLongMissingColumn(t *testing.T) {
	table := &data.Table{
		Timestamps: []time.Time{time.Now()},
		Sensors:    1,
		Columns:    []data.Column{{Name: "temp_s1", Values: []float64{1}}},
	}
	_, err := data.Long(table)
	require.Error(t, err)
}
