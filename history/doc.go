// Package history stores per-user mood, symptom and meal logs and assembles
// the recent-history bundle handed to the pipeline. Identifiers stay in this
// package; the bundle that crosses into core is anonymized.
package history
