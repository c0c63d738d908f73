// Package logging provides structured logging for the wam library and tools.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the library. Logging is silent by default so that
// library consumers and CLI commands get no unexpected output; set the
// WAM_LOG_LEVEL environment variable (or call Initialize explicitly) to
// enable it.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (raw stream dumps, frame decoding)
//   - Info: Normal operations (connections, state changes)
//   - Warn: Non-fatal issues (malformed frames, subscriber failures)
//   - Error: Fatal issues (connection loss, decode loop failures)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Speaker connected",
//	    zap.String("speaker", "192.168.1.100:55001"),
//	    zap.String("model", "HW-Q90R"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
//	logging.LogConnection(addr, "connected")
//	logging.LogFrame(addr, "UIC", "VolumeLevel", true)
//	logging.LogRequest(addr, "SetVolume", 312)
//	logging.LogRawBytes("listener received data", chunk)
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
