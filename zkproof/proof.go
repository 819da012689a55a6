package zkproof

import (
	"github.com/yarongvili1/latticezk/matrix"
	"github.com/yarongvili1/latticezk/rnd"
)

// Proof is the verifier's view of one protocol run.
type Proof[E matrix.Elem] struct {
	R, V, L, N matrix.Dim
	// B is the per-column Euclidean norm bound claimed for Z.
	B float64

	MatA *matrix.RowMajor[E]    // r x v public matrix
	MatT *matrix.RowMajor[E]    // r x l image A*S
	MatW *matrix.ColumnMajor[E] // r x n commitment A*Y
	MatC *matrix.ColumnMajor[E] // l x n challenge
	MatZ *matrix.ColumnMajor[E] // v x n response S*C + Y
}

// NewProof allocates a zeroed proof for the given dimensions and bound.
func NewProof[E matrix.Elem](r, v, l, n matrix.Dim, b float64) *Proof[E] {
	return &Proof[E]{
		R: r, V: v, L: l, N: n, B: b,
		MatA: matrix.NewRowMajor[E](r, v),
		MatT: matrix.NewRowMajor[E](r, l),
		MatW: matrix.NewColumnMajor[E](r, n),
		MatC: matrix.NewColumnMajor[E](l, n),
		MatZ: matrix.NewColumnMajor[E](v, n),
	}
}

// Seed absorbs A, T, W in exactly that order and reseeds prg with the
// folded digest. Both sides derive the challenge from this.
func (p *Proof[E]) Seed(prg *rnd.AESRandom) bool {
	mh := NewMatrixHasher()
	UpdateRowMajor(mh, p.MatA)
	UpdateRowMajor(mh, p.MatT)
	UpdateColumnMajor(mh, p.MatW)
	return mh.Digest(prg) == nil
}
