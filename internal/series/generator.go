// Package series produces synthetic plant sensor readings and the derived
// views over them.
package series

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
)

const (
	DefaultSensors = 5
	DefaultSeed    = 42
	HoursPerDay    = 24
)

var (
	ErrInvalidDays    = errors.New("days must be positive")
	ErrInvalidSensors = errors.New("sensor count must be positive")
)

// Options selects what Generate produces. End is the timestamp of the last
// row; it is part of the input so that Generate stays pure.
type Options struct {
	Days    int
	Sensors int
	Seed    int64
	End     time.Time
}

// Key identifies the options that change the numbers, for caching.
// End is left out on purpose: a cached table keeps the time it was made at.
func (o Options) Key() string {
	return fmt.Sprintf("days=%d/sensors=%d/seed=%d", o.Days, o.Sensors, o.Seed)
}

// Generate builds a Reading Table of Days*24 hourly rows ending at End.
//
// For each sensor s the source is drawn in a fixed order: Days*24 temperature
// increments, then Days*24 vibration samples, then Days*24 consumption noise
// samples, all standard normal.
func Generate(opts Options) (*data.Table, error) {
	if opts.Days <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDays, opts.Days)
	}
	if opts.Sensors <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSensors, opts.Sensors)
	}

	n := opts.Days * HoursPerDay
	rng := rand.New(rand.NewSource(opts.Seed))

	t := &data.Table{
		Timestamps: make([]time.Time, n),
		Sensors:    opts.Sensors,
		Columns:    make([]data.Column, 0, 3*opts.Sensors),
	}
	for i := range t.Timestamps {
		t.Timestamps[i] = opts.End.Add(-time.Duration(n-1-i) * time.Hour)
	}

	// The seasonal ramp runs from 0 to 3.14*days, not math.Pi*days.
	span := 3.14 * float64(opts.Days)

	for s := 1; s <= opts.Sensors; s++ {
		temp := make([]float64, n)
		walk := 0.0
		base := 60 + 5*float64(s)
		for i := range temp {
			walk += rng.NormFloat64()
			temp[i] = base + walk*0.1
		}

		vib := make([]float64, n)
		scale := 0.02 * float64(s)
		for i := range vib {
			vib[i] = math.Abs(rng.NormFloat64() * scale)
		}

		cons := make([]float64, n)
		for i := range cons {
			cons[i] = 100 + math.Sin(linspace(span, i, n))*10 + rng.NormFloat64()*2
		}

		t.Columns = append(t.Columns,
			data.Column{Name: data.ColumnName(data.Temperature, s), Values: temp},
			data.Column{Name: data.ColumnName(data.Vibration, s), Values: vib},
			data.Column{Name: data.ColumnName(data.Consumption, s), Values: cons},
		)
	}

	return t, nil
}

// linspace returns the i-th of n evenly spaced values over [0, stop].
func linspace(stop float64, i, n int) float64 {
	if n == 1 {
		return 0
	}
	return stop * float64(i) / float64(n-1)
}
