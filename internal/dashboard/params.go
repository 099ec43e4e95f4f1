package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/series"
)

var ErrInvalidParams = errors.New("invalid parameters")

// Params are the controls of the dashboard page.
type Params struct {
	Days     int           `json:"days"`
	Sensors  int           `json:"sensors"`
	Seed     int64         `json:"seed"`
	Variable data.Variable `json:"variable"`
	Sensor   int           `json:"sensor"`
	ShowMap  bool          `json:"show_map"`
}

// DefaultParams mirrors the initial state of the page.
func DefaultParams() Params {
	return Params{
		Days:     7,
		Sensors:  series.DefaultSensors,
		Seed:     series.DefaultSeed,
		Variable: data.Temperature,
		Sensor:   1,
		ShowMap:  true,
	}
}

type Limits struct {
	MaxDays    int
	MaxSensors int
}

func (p Params) Validate(l Limits) error {
	switch {
	case p.Days < 1 || p.Days > l.MaxDays:
		return fmt.Errorf("%w: days must be within 1..%d, got %d", ErrInvalidParams, l.MaxDays, p.Days)
	case p.Sensors < 1 || p.Sensors > l.MaxSensors:
		return fmt.Errorf("%w: sensors must be within 1..%d, got %d", ErrInvalidParams, l.MaxSensors, p.Sensors)
	case p.Sensor < 1 || p.Sensor > p.Sensors:
		return fmt.Errorf("%w: sensor must be within 1..%d, got %d", ErrInvalidParams, p.Sensors, p.Sensor)
	case p.Variable.Prefix() == "":
		return fmt.Errorf("%w: unknown variable %q", ErrInvalidParams, p.Variable)
	}
	return nil
}

// Options are the generator inputs for these params.
func (p Params) Options(end time.Time) series.Options {
	return series.Options{Days: p.Days, Sensors: p.Sensors, Seed: p.Seed, End: end}
}

// Key is the cache key of the table behind these params.
func (p Params) Key() string {
	return p.Options(time.Time{}).Key()
}

// Column is the table column selected by variable and sensor.
func (p Params) Column() string {
	return data.ColumnName(p.Variable, p.Sensor)
}
