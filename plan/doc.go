// Package plan aggregates per-agent payloads of a completed session into the
// final recommendation artifact and provides archives for storing it.
package plan
