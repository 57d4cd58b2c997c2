// Package plonkish is a PLONK-family zero-knowledge proving system for
// arbitrary arithmetic circuits over the bn254 scalar field.
//
// A circuit is described by a constraint.System: fixed, advice and instance
// columns, polynomial gates over rotated column queries, lookup arguments
// and copy constraints. plonk.Setup derives proving and verifying keys for
// a circuit shape, plonk.Prove produces a succinct non-interactive proof
// from a witness assignment, and plonk.Verify checks it against the public
// inputs alone.
//
// Two polynomial commitment back-ends are provided behind a single
// interface: pairing-based KZG openings (constant size) and transparent
// discrete-log inner-product openings (logarithmic size). The back-end is
// fixed at setup time and recorded in the keys.
package plonkish
