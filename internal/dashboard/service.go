// Package dashboard turns the page controls into a complete view model:
// the request/response replacement for re-running a script on every
// interaction.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/anomaly"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/series"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/sitemap"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/storage"
)

const (
	HeadRows  = 10
	MaxAlerts = 50
)

// View is everything the page draws for one set of params.
type View struct {
	Params      Params               `json:"params"`
	Key         string               `json:"key"`
	GeneratedAt time.Time            `json:"generated_at"`
	Rows        int                  `json:"rows"`
	Columns     []string             `json:"columns"`
	Sensors     []string             `json:"sensors"`
	Head        []data.Row           `json:"head"`
	Stats       []series.ColumnStats `json:"stats"`
	Column      string               `json:"column"`
	Series      []data.Point         `json:"series"`
	Daily       []series.DailyValue  `json:"daily"`
	Sites       []sitemap.Site       `json:"sites,omitempty"`
	Alerts      []data.Alert         `json:"alerts"`
	AlertCount  int                  `json:"alert_count"`
}

type Settings struct {
	Limits   Limits
	Location *time.Location
	Clock    storage.Clock
	Origin   sitemap.LatLon
	// Exports caches encoded CSV downloads; nil means an in-process cache
	// without expiry.
	Exports storage.Cache[*Export]
}

type Service struct {
	cache    storage.Cache[*data.Table]
	detector *anomaly.Detector
	exports  storage.Cache[*Export]
	settings Settings
}

func NewService(cache storage.Cache[*data.Table], detector *anomaly.Detector, settings Settings) *Service {
	if settings.Clock == nil {
		settings.Clock = storage.SystemClock{}
	}
	if settings.Location == nil {
		settings.Location = time.Local
	}
	if settings.Origin == (sitemap.LatLon{}) {
		settings.Origin = sitemap.Origin
	}
	if settings.Exports == nil {
		settings.Exports = storage.NewMemory[*Export](0, settings.Clock)
	}
	return &Service{cache: cache, detector: detector, exports: settings.Exports, settings: settings}
}

func (s *Service) Limits() Limits {
	return s.settings.Limits
}

// Table returns the cached Reading Table for p, generating it on a miss.
// The table ends at the time it was generated.
func (s *Service) Table(ctx context.Context, p Params) (*data.Table, error) {
	if err := p.Validate(s.settings.Limits); err != nil {
		return nil, err
	}
	return s.cache.GetOrCompute(ctx, p.Key(), func(context.Context) (*data.Table, error) {
		end := s.settings.Clock.Now().In(s.settings.Location).Truncate(time.Second)
		slog.Debug("generating readings", "key", p.Key(), "end", end)
		return series.Generate(p.Options(end))
	})
}

// View builds the full view model for p.
func (s *Service) View(ctx context.Context, p Params) (*View, error) {
	t, err := s.Table(ctx, p)
	if err != nil {
		return nil, err
	}

	column := p.Column()
	points, err := series.Select(t, column)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	daily, err := series.DailyMean(t, column)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	v := &View{
		Params:      p,
		Key:         p.Key(),
		GeneratedAt: t.Timestamps[t.Len()-1],
		Rows:        t.Len(),
		Columns:     append([]string{data.TimestampColumn}, t.ColumnNames()...),
		Sensors:     make([]string, t.Sensors),
		Head:        series.Head(t, HeadRows),
		Stats:       series.Describe(t),
		Column:      column,
		Series:      points,
		Daily:       daily,
	}
	for i := range v.Sensors {
		v.Sensors[i] = data.SensorID(i + 1)
	}
	if p.ShowMap {
		v.Sites = s.Sites(p)
	}

	alerts := s.Alerts(t)
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Timestamp.Before(alerts[j].Timestamp)
	})
	v.AlertCount = len(alerts)
	if len(alerts) > MaxAlerts {
		alerts = alerts[len(alerts)-MaxAlerts:]
	}
	v.Alerts = alerts
	return v, nil
}

// Alerts runs the anomaly rules over the table.
func (s *Service) Alerts(t *data.Table) []data.Alert {
	if s.detector == nil {
		return nil
	}
	return s.detector.Check(t)
}

// Sites places the sensors of p on the map.
func (s *Service) Sites(p Params) []sitemap.Site {
	return sitemap.Place(p.Sensors, p.Seed, s.settings.Origin)
}

// Refresh drops the cached table for p so the next request regenerates it.
func (s *Service) Refresh(ctx context.Context, p Params) error {
	if err := p.Validate(s.settings.Limits); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, p.Key())
}
