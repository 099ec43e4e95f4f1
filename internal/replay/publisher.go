// Package replay publishes a Reading Table to an MQTT broker, so downstream
// consumers can be exercised with the synthetic plant data.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
)

const qos = 1

// Publisher sends readings to <prefix>/<sensor>.
type Publisher struct {
	client mqtt.Client
	prefix string
}

func NewPublisher(client mqtt.Client, topicPrefix string) *Publisher {
	return &Publisher{client: client, prefix: topicPrefix}
}

// Topic returns the topic a sensor's readings go to.
func (p *Publisher) Topic(sensor string) string {
	return p.prefix + "/" + sensor
}

// Replay publishes every row of the table, sensor by sensor within a row, in
// chronological order. It stops at the first failure or when ctx is done and
// returns the number of messages sent.
func (p *Publisher) Replay(ctx context.Context, t *data.Table) (int, error) {
	readings, err := data.Long(t)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range readings {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		payload, err := json.Marshal(r)
		if err != nil {
			return sent, fmt.Errorf("failed to marshal reading: %w", err)
		}

		token := p.client.Publish(p.Topic(r.Sensor), qos, false, payload)
		select {
		case <-token.Done():
		case <-ctx.Done():
			return sent, ctx.Err()
		}
		if err := token.Error(); err != nil {
			return sent, fmt.Errorf("failed to publish to %s: %w", p.Topic(r.Sensor), err)
		}
		sent++
	}

	slog.Info("replayed readings over mqtt", "messages", sent, "prefix", p.prefix)
	return sent, nil
}
