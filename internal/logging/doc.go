// Package logging provides structured logging for conclist.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// persistent attributes. The collections and the event bus default to
// [NopLogger]; the CLI builds a real logger from configuration.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Persistent attributes (run ID, component)
//   - Size-based log rotation with optional gzip compression
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers
// created via With* methods share the underlying writer.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/tmp/conclist", "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	runLogger := logger.WithRun("run-1").WithComponent("stress")
//	runLogger.Info("round finished", "count", 500)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"round finished","run_id":"run-1","component":"stress","count":500}
//
// # Log Rotation
//
// Rotated files are named conclist.log.1, conclist.log.2, etc., where .1 is
// the most recent backup. With compression enabled they become
// conclist.log.1.gz, etc.
//
// # Configuration
//
//	logging:
//	  level: info
//	  dir: ""
//	  max_size_mb: 10
//	  max_backups: 3
package logging
