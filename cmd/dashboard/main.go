// cmd/dashboard/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/alerting"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/anomaly"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/api"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/archive"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/auth"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/config"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/dashboard"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/data"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/replay"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/storage"
	"github.com/correaemmanuel53-cmyk/DASHBOARD-app/internal/websocket"
)

func main() {
	configPath := flag.String("config", ".", "Path to the configuration file directory")
	webDir := flag.String("webdir", "", "Path to the web assets directory (overrides server.web_dir)")
	hashPassword := flag.String("hash-password", "", "Print the bcrypt hash of a password for auth.users and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{TimeFormat: time.Kitchen})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      parseLevel(cfg.Log.Level),
		TimeFormat: time.Kitchen,
	})))
	if *webDir != "" {
		cfg.Server.WebDir = *webDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("dashboard stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// --- Initialize Components ---
	tables, exports, err := newCaches(ctx, cfg)
	if err != nil {
		return err
	}

	hub := websocket.NewHub()
	detector := anomaly.NewDetector(cfg.Anomaly.Rules)
	alerter := alerting.NewAlerter(hub)
	authManager := auth.NewManager(cfg.Auth)

	service := dashboard.NewService(tables, detector, dashboard.Settings{
		Limits:   dashboard.Limits{MaxDays: cfg.Dashboard.MaxDays, MaxSensors: cfg.Dashboard.MaxSensors},
		Location: cfg.Dashboard.Location(),
		Exports:  exports,
	})

	defaults := dashboard.DefaultParams()
	defaults.Days = cfg.Dashboard.DefaultDays
	defaults.Sensors = cfg.Dashboard.Sensors
	defaults.Seed = cfg.Dashboard.Seed

	deps := api.Deps{
		Service:  service,
		Defaults: defaults,
		Hub:      hub,
		Alerter:  alerter,
		Auth:     authManager,
		WebDir:   cfg.Server.WebDir,
	}

	if cfg.MQTT.Enabled {
		client, err := replay.Connect(replay.ClientConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		})
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		deps.Replayer = replay.NewPublisher(client, cfg.MQTT.TopicPrefix)
	}

	if cfg.ClickHouse.Enabled {
		store, err := archive.Open(ctx, archive.Config{
			Addr:     cfg.ClickHouse.Addr,
			Database: cfg.ClickHouse.Database,
			Username: cfg.ClickHouse.Username,
			Password: cfg.ClickHouse.Password,
		})
		if err != nil {
			return err
		}
		defer store.Close()
		deps.Archiver = store
	}

	apiHandler, err := api.NewAPIHandler(deps)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	// --- Start WebSocket Hub ---
	go hub.Run(ctx)

	// --- Setup HTTP Servers ---
	servers := []*http.Server{
		{Addr: fmt.Sprintf(":%d", cfg.Server.UIPort), Handler: api.SetupUIRouter(apiHandler)},
		{Addr: fmt.Sprintf(":%d", cfg.Server.AdminPort), Handler: api.SetupAdminRouter(apiHandler)},
	}

	errc := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			slog.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}(srv)
	}

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
	case err = <-errc:
	}
	slog.Info("shutting down servers")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			slog.Warn("server shutdown", "addr", srv.Addr, "error", serr)
		}
	}
	return err
}

func newCaches(ctx context.Context, cfg *config.Config) (storage.Cache[*data.Table], storage.Cache[*dashboard.Export], error) {
	d := cfg.Dashboard
	if cfg.Cache.Backend != "redis" {
		return storage.NewMemory[*data.Table](d.CacheTTL, nil), storage.NewMemory[*dashboard.Export](d.ExportTTL, nil), nil
	}

	client, err := storage.NewRedisClient(ctx, storage.RedisConfig{Addr: cfg.Cache.RedisAddr, DB: cfg.Cache.RedisDB})
	if err != nil {
		return nil, nil, err
	}
	slog.Info("caching tables in redis", "addr", cfg.Cache.RedisAddr)

	tableCodec := storage.Codec[*data.Table]{Encode: data.EncodeCSV, Decode: data.DecodeCSV}
	// Exports stay in process; they are re-encoded from the shared table.
	return storage.NewRedis(client, cfg.Cache.Prefix, d.CacheTTL, tableCodec),
		storage.NewMemory[*dashboard.Export](d.ExportTTL, nil), nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
