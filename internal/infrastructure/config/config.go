package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the data collector.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// AppConfig contains application identity and the map view settings.
type AppConfig struct {
	Name string    `yaml:"name"`
	Map  MapConfig `yaml:"map"`
}

// MapConfig is the initial region shown by the map view.
// Deltas are the visible span in degrees.
type MapConfig struct {
	Latitude       float64 `yaml:"latitude"`
	Longitude      float64 `yaml:"longitude"`
	LatitudeDelta  float64 `yaml:"latitude_delta"`
	LongitudeDelta float64 `yaml:"longitude_delta"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains settings for the live people feed.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// MQTTConfig contains settings for publishing person change events.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings for store telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig controls bearer token verification on the people API.
// Tokens are minted for users the external identity provider has signed in.
type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	TokenTTL  int    `yaml:"token_ttl"` // minutes
}

// minJWTSecretLength is the shortest HS256 secret accepted when auth is enabled.
const minJWTSecretLength = 32

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: DATACOLLECTOR_SECTION_KEY
// For example: DATACOLLECTOR_DATABASE_PATH, DATACOLLECTOR_API_PORT
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "Data Collector",
			Map: MapConfig{
				LatitudeDelta:  0.0922,
				LongitudeDelta: 0.0421,
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/datacollector.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "datacollector",
			},
			QoS:         1,
			TopicPrefix: "datacollector",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics/prometheus",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			Auth: AuthConfig{
				Enabled:  true,
				Issuer:   "datacollector",
				TokenTTL: 60,
			},
		},
	}
}

// envPrefix starts every environment override name.
const envPrefix = "DATACOLLECTOR_"

// envOverrides maps an environment variable suffix to the field it sets.
// Values that fail to parse leave the field unchanged.
var envOverrides = map[string]func(*Config, string){
	"DATABASE_PATH":  func(c *Config, v string) { c.Database.Path = v },
	"API_HOST":       func(c *Config, v string) { c.API.Host = v },
	"API_PORT":       func(c *Config, v string) { setInt(&c.API.Port, v) },
	"MQTT_ENABLED":   func(c *Config, v string) { setBool(&c.MQTT.Enabled, v) },
	"MQTT_HOST":      func(c *Config, v string) { c.MQTT.Broker.Host = v },
	"MQTT_USERNAME":  func(c *Config, v string) { c.MQTT.Auth.Username = v },
	"MQTT_PASSWORD":  func(c *Config, v string) { c.MQTT.Auth.Password = v },
	"INFLUXDB_TOKEN": func(c *Config, v string) { c.InfluxDB.Token = v },
	"LOG_LEVEL":      func(c *Config, v string) { c.Logging.Level = v },
	"AUTH_ENABLED":   func(c *Config, v string) { setBool(&c.Security.Auth.Enabled, v) },
	"JWT_SECRET":     func(c *Config, v string) { c.Security.Auth.JWTSecret = v },
}

func applyEnvOverrides(cfg *Config) {
	for suffix, set := range envOverrides {
		if v, ok := os.LookupEnv(envPrefix + suffix); ok && v != "" {
			set(cfg, v)
		}
	}
}

func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setBool(dst *bool, v string) {
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}

// Validate checks the configuration and reports every problem found, not
// just the first.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	check(c.Database.Path != "", "database.path is required")
	check(c.Database.BusyTimeout >= 0, "database.busy_timeout must not be negative")
	check(c.API.Port >= 1 && c.API.Port <= 65535, "api.port must be between 1 and 65535")
	check(c.WebSocket.PingInterval > 0, "websocket.ping_interval must be positive")
	check(c.WebSocket.PongTimeout > 0, "websocket.pong_timeout must be positive")
	check(c.WebSocket.MaxMessageSize > 0, "websocket.max_message_size must be positive")

	if c.MQTT.Enabled {
		check(c.MQTT.Broker.Host != "", "mqtt.broker.host is required when mqtt is enabled")
		check(c.MQTT.QoS >= 0 && c.MQTT.QoS <= 2, "mqtt.qos must be 0, 1, or 2")
	}
	if c.InfluxDB.Enabled {
		check(c.InfluxDB.URL != "", "influxdb.url is required when influxdb is enabled")
	}
	if c.Metrics.Enabled {
		check(strings.HasPrefix(c.Metrics.Path, "/"), "metrics.path must start with /")
	}

	if auth := c.Security.Auth; auth.Enabled {
		if auth.JWTSecret == "" {
			errs = append(errs, errors.New("security.auth.jwt_secret is required (set "+envPrefix+"JWT_SECRET)"))
		} else {
			check(len(auth.JWTSecret) >= minJWTSecretLength,
				fmt.Sprintf("security.auth.jwt_secret must be at least %d characters", minJWTSecretLength))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %w", errors.Join(errs...))
	}
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// ReadTimeout returns the read timeout as a Duration.
func (t APITimeoutConfig) ReadTimeout() time.Duration { return seconds(t.Read) }

// WriteTimeout returns the write timeout as a Duration.
func (t APITimeoutConfig) WriteTimeout() time.Duration { return seconds(t.Write) }

// IdleTimeout returns the keep-alive idle timeout as a Duration.
func (t APITimeoutConfig) IdleTimeout() time.Duration { return seconds(t.Idle) }
