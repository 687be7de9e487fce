// Package logging provides a minimal logging interface and adapters for Vaidya.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the orchestrator and agents use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - PipelineLogger with session / component context and turn helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
