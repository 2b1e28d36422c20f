package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/datacollector/internal/infrastructure/config"
	"github.com/nerrad567/datacollector/internal/infrastructure/logging"
	"github.com/nerrad567/datacollector/internal/person"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Database is the part of the database handle the API reports on.
type Database interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
}

// BrokerStatus reports the MQTT link state. Optional.
type BrokerStatus interface {
	IsConnected() bool
}

// HealthChecker is an optional subsystem reported by /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ClientGauge is told the websocket client count whenever it changes.
type ClientGauge interface {
	SetWebSocketClients(n int)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Map      config.MapConfig
	Logger   *logging.Logger
	People   *person.Service
	DB       Database

	// Optional.
	MQTT           BrokerStatus
	MetricsHandler http.Handler // mounted at MetricsPath when non-nil
	MetricsPath    string
	ClientGauge    ClientGauge
	Subsystems     map[string]HealthChecker // e.g. "mqtt", "influxdb"
	Version        string
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes, middleware and the websocket hub
// that relays person events. Create with New and start with Start.
type Server struct {
	cfg            config.APIConfig
	wsCfg          config.WebSocketConfig
	secCfg         config.SecurityConfig
	mapCfg         config.MapConfig
	logger         *logging.Logger
	people         *person.Service
	db             Database
	mqtt           BrokerStatus
	metricsHandler http.Handler
	metricsPath    string
	subsystems     map[string]HealthChecker
	version        string
	startTime      time.Time
	server         *http.Server
	addr           string
	hub            *Hub
	cancel         context.CancelFunc
}

// New creates a new API server. The hub is created here and registered as a
// notifier on the person service, so events flow as soon as Start runs.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.People == nil {
		return nil, fmt.Errorf("person service is required")
	}

	s := &Server{
		cfg:            deps.Config,
		wsCfg:          deps.WS,
		secCfg:         deps.Security,
		mapCfg:         deps.Map,
		logger:         deps.Logger,
		people:         deps.People,
		db:             deps.DB,
		mqtt:           deps.MQTT,
		metricsHandler: deps.MetricsHandler,
		metricsPath:    deps.MetricsPath,
		subsystems:     deps.Subsystems,
		version:        deps.Version,
		startTime:      time.Now(),
	}

	s.hub = NewHub(s.wsCfg, s.logger)
	s.hub.SetGauge(deps.ClientGauge)
	s.people.AddNotifier(s.hub)

	return s, nil
}

// Start binds the listener and serves in a background goroutine. Bind
// errors are returned here rather than logged later. Stop with Close.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("binding API listener on %s: %w", addr, err)
	}

	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	t := s.cfg.Timeouts
	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       t.ReadTimeout(),
		ReadHeaderTimeout: t.ReadTimeout(),
		WriteTimeout:      t.WriteTimeout(),
		IdleTimeout:       t.IdleTimeout(),
	}
	s.addr = ln.Addr().String()

	go func() {
		s.logger.Info("API server listening", "address", s.addr)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server stopped unexpectedly", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	return s.addr
}

// Close gracefully shuts down the API server, waiting up to 10 seconds for
// in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

