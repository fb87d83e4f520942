// Package log provides a logging abstraction for camship components.
//
// The Logger interface keeps the upload core free of any concrete logging
// library. A zerolog adapter is used by the CLI and a no-op logger by tests.
//
// # Usage
//
//	logger := log.NewZerologAdapter(zerolog.InfoLevel)
//	logger.Info("frame sent", log.Int("ordinal", 3), log.Int("bytes", 4096))
//
// Use With to attach fields to every message of a session:
//
//	sessionLogger := log.With(logger, log.String("session", id))
package log
