/*
Package logger provides structured logging for configusage. It wraps
uber-go/zap behind a small interface so every pipeline stage can log with
fields without depending on zap directly.

Basic Usage:

	log := logger.NewLogger(logger.Config{
	    Verbosity: 0, // Info and above
	})

	log.WithFields(logger.Fields{
	    "component": "scanner",
	    "files":     42,
	}).Info("Scan completed")

Verbosity Levels:

	0: Info, Warn, Error (default)
	1: Debug + Level 0
	2: Trace + Level 1

Log lines are JSON objects written to stderr so that a report written to
stdout stays machine readable.

The logger is safe for concurrent use by multiple goroutines.
*/
package logger
