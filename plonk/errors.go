package plonk

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAlgebraicRelation is returned by Verify when the vanishing
	// identity does not hold at the evaluation challenge.
	ErrInvalidAlgebraicRelation = errors.New("plonk: algebraic relation does not hold")

	// ErrInvalidProofShape is returned when a proof's component counts do
	// not match the verifying key.
	ErrInvalidProofShape = errors.New("plonk: proof shape does not match verifying key")

	// ErrInstanceMismatch is returned when the public inputs do not match
	// the circuit's instance columns.
	ErrInstanceMismatch = errors.New("plonk: public inputs do not match instance columns")
)

// ConfigurationError reports an invalid circuit shape, detected at key
// generation time.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "plonk: invalid circuit configuration: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// ArgumentViolation reports a permutation or lookup identity that cannot
// vanish for the given witness. Only produced by debug builds; release
// builds emit the doomed proof and let the verifier reject it.
type ArgumentViolation struct {
	Argument string
	Row      int
	Detail   string
}

func (e *ArgumentViolation) Error() string {
	return fmt.Sprintf("plonk: %s argument violated at row %d: %s", e.Argument, e.Row, e.Detail)
}
