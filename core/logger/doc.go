// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production).
//
// # Run Awareness
//
// Every sync or snapshot invocation is one run. The WithRunID helper attaches
// a fresh run_id to the logger so all entries of a run can be correlated,
// which matters when output from scheduled runs ends up interleaved.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log = logger.WithRunID(log)
//	log.Info("starting sync")
package logger
