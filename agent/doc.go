// Package agent contains the specialist agent implementations and supporting
// utilities that make up Vaidya's reasoning panel. The package focuses on
// three concerns:
//
//  1. Base identity plumbing (BaseAgent)
//  2. The model-backed specialist with its strict JSON output contract
//     (SpecialistAgent)
//  3. The fixed, statically declared panel registry with its pre-declared
//     dependency order (Panel)
//
// Design principles:
//   - No hidden global state; models and loggers are injected via constructors
//   - Agents are pure with respect to orchestration state: they read the
//     TurnContext and return a result, never touching the session
//   - Panel membership is closed and order-preserving; no runtime discovery
//
// The package intentionally keeps persistence, scheduling and model provider
// specifics in their respective packages to avoid cyclic deps.
package agent
