package zkproof

import "errors"

// Verification and protocol failures are values; the boolean Verify
// entry point reduces them, the Check entry point surfaces them.
var (
	ErrDimensionMismatch = errors.New("zkproof: dimension mismatch")
	ErrBoundMismatch     = errors.New("zkproof: claimed norm bound exceeds verifier bound")
	ErrChallengeMismatch = errors.New("zkproof: challenge matrix does not match transcript")
	ErrAlgebraicMismatch = errors.New("zkproof: A*Z != T*C + W")
	ErrNormBoundExceeded = errors.New("zkproof: response column norm exceeds bound")
	ErrMaxDraws          = errors.New("zkproof: rejection sampling draw limit reached")
)
