//go:build !debug

// Package debug exposes the Debug constant. When the "debug" build tag is
// set, provers run row-level argument diagnostics (unsatisfied gates,
// broken copy constraints, lookup values missing from their table) before
// doing any commitment work. Release builds compile those checks away and
// an unsatisfiable witness simply yields a proof the verifier rejects.
package debug

// Debug is true when the "debug" build tag is set.
const Debug = false
