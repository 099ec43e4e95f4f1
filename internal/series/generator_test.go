package series_test

import (
	"errors"
	"testing"
	"time"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/series"
	"github.com/stretchr/testify/require"
)

var end = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

func TestGenerateRowCountAndSpacing(t *testing.T) {
	for days := 1; days <= 30; days++ {
		table, err := series.Generate(series.Options{Days: days, Sensors: 2, Seed: 42, End: end})
		require.NoError(t, err)
		require.Equal(t, days*24, table.Len())
		require.True(t, table.Timestamps[table.Len()-1].Equal(end))

		for i := 1; i < table.Len(); i++ {
			require.Equal(t, time.Hour, table.Timestamps[i].Sub(table.Timestamps[i-1]))
		}
	}
}

func TestGenerateColumns(t *testing.T) {
	table, err := series.Generate(series.Options{Days: 1, Sensors: 2, Seed: 42, End: end})
	require.NoError(t, err)
	require.Equal(t, 2, table.Sensors)
	require.Equal(t,
		[]string{"temp_s1", "vib_s1", "cons_s1", "temp_s2", "vib_s2", "cons_s2"},
		table.ColumnNames(),
	)
	for _, c := range table.Columns {
		require.Len(t, c.Values, 24)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	opts := series.Options{Days: 7, Sensors: 5, Seed: 42, End: end}

	a, err := series.Generate(opts)
	require.NoError(t, err)
	b, err := series.Generate(opts)
	require.NoError(t, err)
	require.Equal(t, a.Columns, b.Columns)

	opts.Seed = 7
	c, err := series.Generate(opts)
	require.NoError(t, err)
	require.NotEqual(t, a.Columns, c.Columns)
}

func TestGenerateVibrationNonNegative(t *testing.T) {
	table, err := series.Generate(series.Options{Days: 30, Sensors: 5, Seed: 42, End: end})
	require.NoError(t, err)

	for s := 1; s <= 5; s++ {
		values, ok := table.Column(data.ColumnName(data.Vibration, s))
		require.True(t, ok)
		for _, v := range values {
			require.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestGenerateTemperatureBase(t *testing.T) {
	table, err := series.Generate(series.Options{Days: 1, Sensors: 2, Seed: 42, End: end})
	require.NoError(t, err)

	temp1, _ := table.Column("temp_s1")
	require.InDelta(t, 65, temp1[0], 0.5)

	temp2, _ := table.Column("temp_s2")
	// The walk drifts by 0.1 per step, so a day stays well within +-5.
	for _, v := range temp2 {
		require.InDelta(t, 70, v, 5)
	}
}

func TestGenerateConsumptionRange(t *testing.T) {
	table, err := series.Generate(series.Options{Days: 3, Sensors: 1, Seed: 42, End: end})
	require.NoError(t, err)

	cons, _ := table.Column("cons_s1")
	for _, v := range cons {
		require.InDelta(t, 100, v, 10+2*6)
	}
}

func TestGenerateInvalid(t *testing.T) {
	_, err := series.Generate(series.Options{Days: 0, Sensors: 5, End: end})
	require.True(t, errors.Is(err, series.ErrInvalidDays))

	_, err = series.Generate(series.Options{Days: -3, Sensors: 5, End: end})
	require.ErrorIs(t, err, series.ErrInvalidDays)

	_, err = series.Generate(series.Options{Days: 1, Sensors: 0, End: end})
	require.ErrorIs(t, err, series.ErrInvalidSensors)
}

func TestOptionsKey(t *testing.T) {
	a := series.Options{Days: 7, Sensors: 5, Seed: 42, End: end}
	b := a
	b.End = end.Add(time.Hour)
	require.Equal(t, a.Key(), b.Key())
	require.Equal(t, "days=7/sensors=5/seed=42", a.Key())

	b.Days = 8
	require.NotEqual(t, a.Key(), b.Key())
}
