// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/auth"
)

type Config struct {
	Server struct {
		UIPort    int    `mapstructure:"ui_port"`
		AdminPort int    `mapstructure:"admin_port"`
		WebDir    string `mapstructure:"web_dir"`
	} `mapstructure:"server"`
	Dashboard Dashboard `mapstructure:"dashboard"`
	Cache     struct {
		Backend   string `mapstructure:"backend"` // "memory" or "redis"
		RedisAddr string `mapstructure:"redis_addr"`
		RedisDB   int    `mapstructure:"redis_db"`
		Prefix    string `mapstructure:"prefix"`
	} `mapstructure:"cache"`
	Anomaly struct {
		Rules map[string]Rule `mapstructure:"rules"`
	} `mapstructure:"anomaly"`
	Auth       auth.Config `mapstructure:"auth"`
	MQTT       MQTT        `mapstructure:"mqtt"`
	ClickHouse ClickHouse  `mapstructure:"clickhouse"`
	Log        struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

type Dashboard struct {
	DefaultDays int           `mapstructure:"default_days"`
	MaxDays     int           `mapstructure:"max_days"`
	Sensors     int           `mapstructure:"sensors"`
	MaxSensors  int           `mapstructure:"max_sensors"`
	Seed        int64         `mapstructure:"seed"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	ExportTTL   time.Duration `mapstructure:"export_ttl"` // 0 keeps exports until refreshed
	Timezone    string        `mapstructure:"timezone"`
}

type Rule struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

type MQTT struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

type ClickHouse struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Load reads .env, then config.yaml from path, then DASHBOARD_* environment
// variables (DASHBOARD_SERVER_UI_PORT overrides server.ui_port). A missing
// config file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.SetEnvPrefix("dashboard")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Warn("config file not found, using defaults", "path", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the dashboard cannot run without.
func (c *Config) Validate() error {
	d := c.Dashboard
	switch {
	case d.MaxDays <= 0:
		return fmt.Errorf("dashboard.max_days must be positive, got %d", d.MaxDays)
	case d.DefaultDays <= 0 || d.DefaultDays > d.MaxDays:
		return fmt.Errorf("dashboard.default_days must be within 1..%d, got %d", d.MaxDays, d.DefaultDays)
	case d.Sensors <= 0 || d.Sensors > d.MaxSensors:
		return fmt.Errorf("dashboard.sensors must be within 1..%d, got %d", d.MaxSensors, d.Sensors)
	case d.CacheTTL < 0 || d.ExportTTL < 0:
		return errors.New("cache ttls must not be negative")
	}
	if _, err := time.LoadLocation(d.Timezone); err != nil {
		return fmt.Errorf("dashboard.timezone: %w", err)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	return nil
}

// Location returns the zone used to split days for the daily means.
func (d Dashboard) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.ui_port", 8501)
	v.SetDefault("server.admin_port", 8502)
	v.SetDefault("server.web_dir", "./web")

	v.SetDefault("dashboard.default_days", 7)
	v.SetDefault("dashboard.max_days", 30)
	v.SetDefault("dashboard.sensors", 5)
	v.SetDefault("dashboard.max_sensors", 20)
	v.SetDefault("dashboard.seed", 42)
	v.SetDefault("dashboard.cache_ttl", 5*time.Minute)
	v.SetDefault("dashboard.export_ttl", 0)
	v.SetDefault("dashboard.timezone", "Local")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.prefix", "dashboard:readings:")

	v.SetDefault("anomaly.rules", map[string]any{
		"temperature": map[string]any{"min": 55.0, "max": 95.0},
		"vibration":   map[string]any{"min": 0.0, "max": 0.25},
		"consumption": map[string]any{"min": 85.0, "max": 115.0},
	})

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expiration", 60)
	v.SetDefault("auth.api_keys", []string{})

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "plant-dashboard")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_prefix", "plant/sensors")

	v.SetDefault("clickhouse.enabled", false)
	v.SetDefault("clickhouse.addr", "localhost:9000")
	v.SetDefault("clickhouse.database", "plant")
	v.SetDefault("clickhouse.username", "default")
	v.SetDefault("clickhouse.password", "")

	v.SetDefault("log.level", "info")
}
