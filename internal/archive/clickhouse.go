// Package archive stores Reading Tables in ClickHouse in long format, one
// row per sensor per hour.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
)

const createReadings = `
CREATE TABLE IF NOT EXISTS sensor_readings (
	timestamp   DateTime64(3),
	sensor      LowCardinality(String),
	temperature Float64,
	vibration   Float64,
	consumption Float64,
	batch       String
) ENGINE = MergeTree()
ORDER BY (sensor, timestamp)`

const insertReadings = `INSERT INTO sensor_readings (timestamp, sensor, temperature, vibration, consumption, batch)`

type Config struct {
	Addr     string
	Database string
	Username string
	Password string
}

type ClickHouse struct {
	conn driver.Conn
}

// Open connects, pings and makes sure the readings table exists.
func Open(ctx context.Context, cfg Config) (*ClickHouse, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	if err := conn.Exec(ctx, createReadings); err != nil {
		return nil, fmt.Errorf("failed to create sensor_readings: %w", err)
	}

	slog.Info("connected to clickhouse", "addr", cfg.Addr, "database", cfg.Database)
	return &ClickHouse{conn: conn}, nil
}

// Save inserts the table as one batch tagged with the given batch id and
// returns the number of rows written.
func (c *ClickHouse) Save(ctx context.Context, t *data.Table, batchID string) (int, error) {
	rows, err := data.Long(t)
	if err != nil {
		return 0, err
	}

	batch, err := c.conn.PrepareBatch(ctx, insertReadings)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}
	for _, r := range rows {
		if err := batch.Append(r.Timestamp, r.Sensor, r.Temperature, r.Vibration, r.Consumption, batchID); err != nil {
			batch.Abort()
			return 0, fmt.Errorf("failed to append reading: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to insert readings: %w", err)
	}
	return len(rows), nil
}

func (c *ClickHouse) Close() error {
	return c.conn.Close()
}
