// Package fusion runs every source adapter over its record batch, sanitizes
// the surviving features and concatenates them into one collection with
// per-source and per-geometry-type counts.
package fusion
