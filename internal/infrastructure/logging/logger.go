package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/datacollector/internal/infrastructure/config"
)

// serviceName is attached to every log entry.
const serviceName = "datacollector"

// redacted replaces the value of any personal-data attribute.
const redacted = "[redacted]"

// personalKeys are attribute keys whose values are never written.
var personalKeys = map[string]struct{}{
	"full_name":      {},
	"address":        {},
	"phone_number":   {},
	"email":          {},
	"city_of_origin": {},
	"date_of_birth":  {},
	"religion":       {},
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// Logger wraps slog.Logger so packages depend on one logging type.
// Safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to stdout, or stderr when cfg.Output says so.
func New(cfg config.LoggingConfig, version string) *Logger {
	var w io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		w = os.Stderr
	}
	return NewWithWriter(cfg, version, w)
}

// NewWithWriter creates a Logger writing to w.
//
// The handler is JSON unless cfg.Format is "text". Every entry carries the
// service name and version, and personal field values are redacted.
func NewWithWriter(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: redactPersonal,
	}

	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	}

	return &Logger{Logger: slog.New(h).With(
		slog.String("service", serviceName),
		slog.String("version", version),
	)}
}

// parseLevel maps a level name to slog.Level. Unknown names mean info.
func parseLevel(level string) slog.Level {
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}

func redactPersonal(_ []string, a slog.Attr) slog.Attr {
	if _, ok := personalKeys[a.Key]; ok {
		return slog.String(a.Key, redacted)
	}
	return a
}

// With returns a new Logger with additional default attributes.
//
//	storeLog := logger.With("component", "person_store")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Discard returns a Logger that drops everything. Used by tests and by
// components constructed without a logger.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

// Default creates a JSON info-level logger on stdout for use before the
// configuration is loaded.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev")
}
