package zkproof

import (
	"fmt"
	"time"

	"github.com/yarongvili1/latticezk/matrix"
	"github.com/yarongvili1/latticezk/prof"
	"github.com/yarongvili1/latticezk/rnd"
)

// Verifier re-derives the challenge from the transcript and checks the
// algebraic and norm predicates of a proof. Its scratch matrices are
// allocated once for the expected dimensions.
type Verifier[E matrix.Elem] struct {
	ops matrix.Ops[E]

	r, v, l, n matrix.Dim
	b          float64

	matAZ   *matrix.ColumnMajor[E]
	matTC   *matrix.ColumnMajor[E]
	matTCpW *matrix.ColumnMajor[E]
	zcols   []float64
}

// NewVerifier builds a verifier for the given dimensions and norm
// bound b; proofs claiming a larger bound are rejected.
func NewVerifier[E matrix.Elem](ops matrix.Ops[E], r, v, l, n matrix.Dim, b float64) *Verifier[E] {
	return &Verifier[E]{
		ops: ops,
		r:   r, v: v, l: l, n: n, b: b,
		matAZ:   matrix.NewColumnMajor[E](r, n),
		matTC:   matrix.NewColumnMajor[E](r, n),
		matTCpW: matrix.NewColumnMajor[E](r, n),
		zcols:   make([]float64, n),
	}
}

// Verify reduces Check to a boolean.
func (vf *Verifier[E]) Verify(proof *Proof[E]) bool {
	ok, _ := vf.Check(proof)
	return ok
}

// Check runs the verification predicates in order: bound, dimensions,
// challenge re-derivation, A*Z = T*C + W, and the per-column norm
// bound. The first failure is returned; everything past the dimension
// check operates on public data only, so early returns leak nothing.
func (vf *Verifier[E]) Check(proof *Proof[E]) (bool, error) {
	defer prof.Track(time.Now(), "verifier/check")
	if proof.B > vf.b {
		return false, fmt.Errorf("%w: claimed %v, accepting at most %v", ErrBoundMismatch, proof.B, vf.b)
	}
	if proof.MatA.NumRows() != vf.r || proof.MatA.NumCols() != vf.v ||
		proof.MatZ.NumRows() != vf.v || proof.MatZ.NumCols() != vf.n ||
		proof.MatW.NumRows() != vf.r || proof.MatW.NumCols() != vf.n ||
		proof.MatT.NumRows() != vf.r || proof.MatT.NumCols() != vf.l ||
		proof.MatC.NumRows() != vf.l || proof.MatC.NumCols() != vf.n {
		return false, ErrDimensionMismatch
	}

	// The multiplies below read A, Z, T and C through the backend.
	if !vf.ops.SyncRowMajor(proof.MatA) ||
		!vf.ops.SyncColumnMajor(proof.MatZ) ||
		!vf.ops.SyncRowMajor(proof.MatT) ||
		!vf.ops.SyncColumnMajor(proof.MatC) {
		return false, fmt.Errorf("zkproof: syncing proof matrices failed")
	}

	var local rnd.AESRandom
	if !proof.Seed(&local) {
		return false, fmt.Errorf("zkproof: seeding from transcript failed")
	}
	if !checkMatrix(proof.MatC.Data(), bitNext(rnd.NewBitSampler(&local))) {
		return false, ErrChallengeMismatch
	}

	if !vf.ops.Multiply(proof.MatA, proof.MatZ, vf.matAZ) ||
		!vf.ops.Multiply(proof.MatT, proof.MatC, vf.matTC) ||
		!vf.matTCpW.Add(vf.matTC, proof.MatW) {
		return false, fmt.Errorf("zkproof: calculating verification matrices failed")
	}
	if !vf.matAZ.Equal(vf.matTCpW) {
		return false, ErrAlgebraicMismatch
	}

	clear(vf.zcols)
	zdata := proof.MatZ.Data()
	for j := matrix.Dim(0); j < vf.n; j++ {
		col := zdata[int(j)*int(vf.v) : (int(j)+1)*int(vf.v)]
		var s float64
		for _, z := range col {
			f := float64(z)
			s += f * f
		}
		vf.zcols[j] = s
	}
	bb := proof.B * proof.B
	for j := matrix.Dim(0); j < vf.n; j++ {
		if vf.zcols[j] > bb {
			return false, fmt.Errorf("%w: column %d has squared norm %v, bound %v", ErrNormBoundExceeded, j, vf.zcols[j], bb)
		}
	}
	return true, nil
}
