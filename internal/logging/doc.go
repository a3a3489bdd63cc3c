// Package logging provides structured logging for the samsungtv library.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the library. Logging is silent by default so that
// embedding applications stay in control of their output; set the
// SAMSUNGTV_LOG_LEVEL environment variable (or call Initialize) to enable it.
//
// # Log Levels
//
//   - Debug: Wire-level detail (packet hex dumps, handshake bytes, SOAP bodies)
//   - Info: Normal operations (connections, pairing, state changes)
//   - Warn: Non-fatal issues (connection drops, reconnect attempts)
//   - Error: Failures (pairing rejected, shutdown faults)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Paired with TV",
//	    zap.String("host", "192.168.1.50"),
//	    zap.String("model", "UE55KS8000"),
//	)
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
