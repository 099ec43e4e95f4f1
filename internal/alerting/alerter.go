// internal/alerting/alerter.go
package alerting

import (
	"log/slog"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
)

// Broadcaster is the part of the live hub the alerter needs.
type Broadcaster interface {
	BroadcastAlert(alert any)
}

type Alerter struct {
	hub Broadcaster
	// Add other notification channels here (e.g., email client, SMS service)
}

func NewAlerter(hub Broadcaster) *Alerter {
	return &Alerter{hub: hub}
}

// ProcessAlerts logs each alert and pushes it to connected clients.
func (a *Alerter) ProcessAlerts(alerts []data.Alert) {
	if len(alerts) == 0 {
		return
	}

	slog.Info("processing alerts", "count", len(alerts))
	for _, alert := range alerts {
		slog.Warn(alert.Message, "severity", alert.Severity, "sensor", alert.Sensor, "at", alert.Timestamp)
		if a.hub != nil {
			a.hub.BroadcastAlert(alert)
		}
	}
}
