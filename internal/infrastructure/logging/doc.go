// Package logging is the data collector's structured logger: a thin
// log/slog wrapper configured from the logging section of config.yaml
// (level, json or text format, stdout or stderr).
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("person created", "id", id)
//
// Person records hold personal data. Log record ids, never field values.
// Attributes named after a person column (email, full_name, ...) are
// redacted by the handler as a backstop.
package logging
