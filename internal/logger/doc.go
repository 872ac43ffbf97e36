// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - an optional rotated JSON log file (lumberjack) for long-running daemons,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level parsing and convenience functions (Infof, ErrorKV, etc.).
//
// Services accept a context and extract the logger from it, so the
// installer and the supervisor log under the caller's name and fields.
package logger
