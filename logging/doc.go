// Package logging provides a minimal logging facade for the threads toolkit.
//
// The Logger interface wraps the subset of log/slog used by the toolkit. It
// is small so applications can plug in their own implementation for tests or
// for integration with an existing logging system.
//
// # Default Implementation
//
//	// Use default logger (slog.Default())
//	logger := logging.New(nil)
//
//	// Use a custom slog.Logger
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})
//	threads.SetLogger(logging.New(slog.New(handler)))
//
// # What Gets Logged
//
// Spawned threads log at debug level when they start and finish. A work unit
// that returns an error or panics is logged at error level together with the
// thread id; the failure does not propagate to the thread's owner. Creation
// and destruction of native primitives are logged at debug level.
package logging
