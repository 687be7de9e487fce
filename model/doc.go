// Package model defines the provider-neutral chat completion contract used by
// specialist agents, plus a deterministic MockModel for tests. Concrete
// adapters for hosted providers live in the openai and anthropic sub-packages;
// the wiring layer decides which implementation to instantiate.
package model
