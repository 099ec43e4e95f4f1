package dashboard

import (
	"context"
	"time"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
)

// Export is the CSV form of one generated table.
type Export struct {
	GeneratedAt time.Time
	CSV         []byte
}

// CSV returns the download for p. Encoded files are cached separately from
// tables and re-encoded whenever the table behind them was regenerated.
func (s *Service) CSV(ctx context.Context, p Params) (*Export, error) {
	t, err := s.Table(ctx, p)
	if err != nil {
		return nil, err
	}
	generated := t.Timestamps[t.Len()-1]

	encode := func(context.Context) (*Export, error) {
		b, err := data.EncodeCSV(t)
		if err != nil {
			return nil, err
		}
		return &Export{GeneratedAt: generated, CSV: b}, nil
	}

	e, err := s.exports.GetOrCompute(ctx, p.Key(), encode)
	if err != nil {
		return nil, err
	}
	if !e.GeneratedAt.Equal(generated) {
		if err := s.exports.Invalidate(ctx, p.Key()); err != nil {
			return nil, err
		}
		return s.exports.GetOrCompute(ctx, p.Key(), encode)
	}
	return e, nil
}
