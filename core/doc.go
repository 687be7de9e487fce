// Package core provides the foundational domain types, interfaces and
// execution contexts used by Vaidya. It defines the core abstractions for:
//
//   - Agents (specialist reasoning units driven by the turn scheduler)
//   - Sessions (append-only turn logs with an explicit status machine)
//   - Turns (immutable per-agent invocation records)
//   - TurnContext (the read-only bundle an agent consumes when acting)
//   - Pluggable contracts for session persistence and corpus retrieval
//
// The package intentionally keeps implementation concerns (persistence,
// scheduling, concrete agents, vector backends) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core
