package data_test

import (
	"testing"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
	"github.com/stretchr/testify/require"
)

func TestParseVariable(t *testing.T) {
	v, err := data.ParseVariable("Vibration")
	require.NoError(t, err)
	require.Equal(t, data.Vibration, v)

	v, err = data.ParseVariable("cons")
	require.NoError(t, err)
	require.Equal(t, data.Consumption, v)

	_, err = data.ParseVariable("humidity")
	require.Error(t, err)
}

func TestColumnNames(t *testing.T) {
	require.Equal(t, "temp_s1", data.ColumnName(data.Temperature, 1))
	require.Equal(t, "cons_s12", data.ColumnName(data.Consumption, 12))

	v, s, ok := data.ParseColumn("vib_s4")
	require.True(t, ok)
	require.Equal(t, data.Vibration, v)
	require.Equal(t, 4, s)

	for _, bad := range []string{"timestamp", "vib_s0", "vibration_s1", "temp_sx"} {
		_, _, ok := data.ParseColumn(bad)
		require.False(t, ok, bad)
	}
}
