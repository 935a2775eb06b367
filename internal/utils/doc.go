// Package utils exposes reusable helpers consumed by the ghmirror command.
//
// It houses ConfigurationLoader and LoggerFactory abstractions that integrate
// Viper, environment variables, and zap logging for the CLI and the per-run
// session log.
package utils
