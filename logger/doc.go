// Package logger provides structured logging on top of zerolog.
//
// It supports JSON and console output, level configuration (including
// deriving the level from -d/-v style flags), component-scoped loggers and
// a small set of standard field keys for process events.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.Get("process")
//	log.Info("process exited", logger.Fields(logger.FieldPID, 42, logger.FieldExitCode, 0))
package logger
