// Package logging provides a simple leveled logging interface for the
// photo grid service.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (layout passes, queue picks)
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL or DEBUG environment
// variables. Components obtain a prefixed logger with For.
package logging
