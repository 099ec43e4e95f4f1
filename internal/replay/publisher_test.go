package replay_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/replay"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/series"
)

type doneToken struct {
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic   string
	payload []byte
}

// fakeClient embeds the interface so only Publish needs an implementation.
type fakeClient struct {
	mqtt.Client
	sent   []published
	failAt int
}

func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	if c.failAt > 0 && len(c.sent)+1 == c.failAt {
		return doneToken{err: errors.New("broker gone")}
	}
	c.sent = append(c.sent, published{topic: topic, payload: payload.([]byte)})
	return doneToken{}
}

func TestReplay(t *testing.T) {
	end := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	table, err := series.Generate(series.Options{Days: 1, Sensors: 2, Seed: 42, End: end})
	require.NoError(t, err)

	client := &fakeClient{}
	p := replay.NewPublisher(client, "plant/sensors")

	n, err := p.Replay(context.Background(), table)
	require.NoError(t, err)
	require.Equal(t, 48, n)
	require.Len(t, client.sent, 48)

	require.Equal(t, "plant/sensors/s1", client.sent[0].topic)
	require.Equal(t, "plant/sensors/s2", client.sent[1].topic)

	var last data.Reading
	require.NoError(t, json.Unmarshal(client.sent[47].payload, &last))
	require.Equal(t, "s2", last.Sensor)
	require.True(t, last.Timestamp.Equal(end))

	cons, _ := table.Column("cons_s2")
	require.Equal(t, cons[23], last.Consumption)
}

func TestReplayStopsOnError(t *testing.T) {
	end := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	table, err := series.Generate(series.Options{Days: 1, Sensors: 1, Seed: 42, End: end})
	require.NoError(t, err)

	client := &fakeClient{failAt: 5}
	n, err := replay.NewPublisher(client, "p").Replay(context.Background(), table)
	require.Error(t, err)
	require.Equal(t, 4, n)
}

func TestReplayCancelled(t *testing.T) {
	end := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	table, err := series.Generate(series.Options{Days: 1, Sensors: 1, Seed: 42, End: end})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := replay.NewPublisher(&fakeClient{}, "p").Replay(ctx, table)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, n)
}
