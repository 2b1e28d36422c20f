// Data Collector
//
// This is the main entry point for the people data collector service.
// It stores personal records in a local SQLite file and serves the
// list/form/map screens through a JSON API with a live websocket feed.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/datacollector/internal/api"
	"github.com/nerrad567/datacollector/internal/infrastructure/config"
	"github.com/nerrad567/datacollector/internal/infrastructure/database"
	"github.com/nerrad567/datacollector/internal/infrastructure/influxdb"
	"github.com/nerrad567/datacollector/internal/infrastructure/logging"
	"github.com/nerrad567/datacollector/internal/infrastructure/metrics"
	"github.com/nerrad567/datacollector/internal/infrastructure/mqtt"
	"github.com/nerrad567/datacollector/internal/person"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// peopleCountInterval is how often the stored record count is sampled
// for the people gauge and InfluxDB.
const peopleCountInterval = time.Minute

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting data collector",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", db.Path())

	people := person.NewService(person.NewSQLiteRepository(db.DB))
	people.SetLogger(log)

	// A failed table creation is logged, not fatal: later calls surface
	// the same fault as 503s and the health endpoint reports degraded.
	if initErr := people.Initialize(ctx); initErr != nil {
		log.Error("people table initialisation failed", "error", initErr)
	} else {
		log.Info("people store initialised")
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		people.AddRecorder(m)
		people.AddNotifier(m)
		log.Info("prometheus metrics enabled", "path", cfg.Metrics.Path)
	}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(ctx, cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		people.AddNotifier(mqtt.NewEventPublisher(mqttClient, mqttClient.Topics(), log))
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
			"topics", mqttClient.Topics().AllPeopleEvents(),
		)
	} else {
		log.Info("MQTT disabled")
	}

	influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		people.AddRecorder(influxClient)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	deps := api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Map:      cfg.App.Map,
		Logger:   log,
		People:   people,
		DB:       db,
		Version:  version,
	}
	deps.Subsystems = map[string]api.HealthChecker{}
	if mqttClient != nil {
		deps.MQTT = mqttClient
		deps.Subsystems["mqtt"] = mqttClient
	}
	if influxClient != nil {
		deps.Subsystems["influxdb"] = influxClient
	}
	if m != nil {
		deps.MetricsHandler = m.Handler()
		deps.MetricsPath = cfg.Metrics.Path
		deps.ClientGauge = m
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if !cfg.Security.Auth.Enabled {
		log.Warn("bearer token auth is disabled; the people API is open")
	}

	go samplePeopleCount(ctx, people, m, influxClient, log)

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// API server, InfluxDB, MQTT, database.

	log.Info("data collector stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses DATACOLLECTOR_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("DATACOLLECTOR_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// samplePeopleCount pushes the stored record count to the Prometheus gauge
// and InfluxDB once at startup and then every peopleCountInterval.
// Either sink may be nil.
func samplePeopleCount(ctx context.Context, people *person.Service, m *metrics.Metrics, influx *influxdb.Client, log *logging.Logger) {
	if m == nil && influx == nil {
		return
	}

	sample := func() {
		n, err := people.Count(ctx)
		if err != nil {
			log.Warn("sampling people count failed", "error", err)
			return
		}
		m.SetPeople(n)
		if influx != nil {
			influx.WritePeopleCount(n)
		}
	}

	sample()
	ticker := time.NewTicker(peopleCountInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample()
		}
	}
}
