// Package orchestrator composes retrieval, turn scheduling and aggregation
// behind two entry points: Run for a fresh query and Resume for answering a
// pending clarification. It owns session persistence and the per-session
// serialization that keeps concurrent resumes from double-applying.
package orchestrator
