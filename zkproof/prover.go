package zkproof

import (
	"fmt"
	"math"
	"time"

	"github.com/yarongvili1/latticezk/matrix"
	"github.com/yarongvili1/latticezk/prof"
	"github.com/yarongvili1/latticezk/rnd"
)

// Prover holds the witness and every scratch matrix of the protocol.
// S and T are kept in both storage orders: column-major for the image
// computation, row-major for the left-multiplications of the response
// phase. All matrices are allocated once at construction and the
// rejection loop reassigns them wholesale; the Gaussian sampler, the
// challenge bit sampler and the transcript hasher are created afresh on
// every draw, so each draw still allocates.
type Prover[E matrix.Elem] struct {
	ops matrix.Ops[E]

	r, v, l, n matrix.Dim
	sigma      uint32
	rho, b     float64

	maxDraws       uint64
	parallelCommit bool

	matA         *matrix.RowMajor[E]
	matS         *matrix.ColumnMajor[E]
	lmatS, lmatT *matrix.RowMajor[E]
	matT         *matrix.ColumnMajor[E]
	matY         *matrix.ColumnMajor[E]
	matW         *matrix.ColumnMajor[E]
	matC         *matrix.ColumnMajor[E]
	matB         *matrix.ColumnMajor[E]
	matZ         *matrix.ColumnMajor[E]
}

// NewProver validates the protocol parameters against the witness and,
// on success, builds a prover owning copies of A and S plus T = A*S in
// both orders. Each failed precondition is reported as an error naming
// the violated inequality.
func NewProver[E matrix.Elem](ops matrix.Ops[E], matA *matrix.RowMajor[E], matS *matrix.ColumnMajor[E], sigma uint32, lambda uint32, s float64, n matrix.Dim, rho float64) (*Prover[E], error) {
	if matA.NumCols() != matS.NumRows() {
		return nil, fmt.Errorf("zkproof: A has %d columns but S has %d rows", matA.NumCols(), matS.NumRows())
	}
	if n < 0 || uint32(n) < lambda+2 {
		return nil, fmt.Errorf("zkproof: n=%d violates n >= lambda+2 = %d", n, lambda+2)
	}
	if rho <= 1.0 {
		return nil, fmt.Errorf("zkproof: rho=%v violates rho > 1", rho)
	}
	if s <= 0 {
		return nil, fmt.Errorf("zkproof: s=%v violates s > 0", s)
	}
	l := matS.NumCols()
	if s1 := matS.UpperBoundOnOperatorNorm(); s1 > s {
		return nil, fmt.Errorf("zkproof: operator norm bound %v of S violates bound <= s = %v", s1, s)
	}
	if required := 12 / math.Log(rho) * s * math.Sqrt(float64(l)*float64(n)); float64(sigma) < required {
		return nil, fmt.Errorf("zkproof: sigma=%d violates sigma >= 12/ln(rho)*s*sqrt(l*n) = %v", sigma, required)
	}

	r, v := matA.NumRows(), matA.NumCols()
	p := &Prover[E]{
		ops:            ops,
		r:              r,
		v:              v,
		l:              l,
		n:              n,
		sigma:          sigma,
		rho:            rho,
		b:              math.Sqrt(2*float64(v)) * float64(sigma),
		parallelCommit: true,
		matA:           matrix.NewRowMajor[E](r, v),
		matS:           matrix.NewColumnMajor[E](v, l),
		lmatS:          matrix.NewRowMajor[E](v, l),
		lmatT:          matrix.NewRowMajor[E](r, l),
		matT:           matrix.NewColumnMajor[E](r, l),
		matY:           matrix.NewColumnMajor[E](v, n),
		matW:           matrix.NewColumnMajor[E](r, n),
		matC:           matrix.NewColumnMajor[E](l, n),
		matB:           matrix.NewColumnMajor[E](v, n),
		matZ:           matrix.NewColumnMajor[E](v, n),
	}

	defer prof.Track(time.Now(), "prover/setup")
	ok := ops.CopyRowMajor(p.matA, matA) &&
		ops.CopyColumnMajor(p.matS, matS) &&
		ops.SyncRowMajor(p.matA) &&
		ops.SyncColumnMajor(p.matS) &&
		ops.Multiply(p.matA, p.matS, p.matT) &&
		matrix.ToRowMajor(p.matS, p.lmatS) &&
		ops.SyncRowMajor(p.lmatS) &&
		matrix.ToRowMajor(p.matT, p.lmatT) &&
		ops.SyncRowMajor(p.lmatT)
	if !ok {
		return nil, fmt.Errorf("zkproof: prover setup failed")
	}
	return p, nil
}

// B returns the norm bound the prover claims for each response column.
func (p *Prover[E]) B() float64 { return p.b }

// SetMaxDraws caps the rejection loop; zero means unlimited.
func (p *Prover[E]) SetMaxDraws(n uint64) { p.maxDraws = n }

// SetParallelCommit toggles worker fan-out for the commitment
// sampling. It defaults to on; large Y fills then use child PRGs
// derived from the caller's PRG.
func (p *Prover[E]) SetParallelCommit(on bool) { p.parallelCommit = on }

// Commit samples Y from D_{Z,sigma}, computes W = A*Y, and publishes
// A, T, W into the proof.
func (p *Prover[E]) Commit(prg *rnd.AESRandom, proof *Proof[E]) bool {
	defer prof.Track(time.Now(), "prover/commit")
	return fillGaussian(p.matY.Data(), p.sigma, prg, p.parallelCommit) &&
		p.ops.SyncColumnMajor(p.matY) &&
		p.ops.Multiply(p.matA, p.matY, p.matW) &&
		p.ops.CopyRowMajor(proof.MatA, p.matA) &&
		p.ops.CopyRowMajor(proof.MatT, p.lmatT) &&
		p.ops.CopyColumnMajor(proof.MatW, p.matW)
}

// Challenge derives the challenge from the transcript: a local PRG is
// reseeded from the hash of (A, T, W) and C is drawn from it bit by
// bit.
func (p *Prover[E]) Challenge(proof *Proof[E]) bool {
	defer prof.Track(time.Now(), "prover/challenge")
	var local rnd.AESRandom
	if !proof.Seed(&local) {
		return false
	}
	fillMatrix(p.matC.Data(), bitNext(rnd.NewBitSampler(&local)))
	return p.ops.SyncColumnMajor(p.matC) &&
		p.ops.CopyColumnMajor(proof.MatC, p.matC)
}

// Response computes Z = S*C + Y and publishes it into the proof.
func (p *Prover[E]) Response(proof *Proof[E]) bool {
	defer prof.Track(time.Now(), "prover/response")
	return p.ops.Multiply(p.lmatS, p.matC, p.matB) &&
		p.matZ.Add(p.matB, p.matY) &&
		p.ops.CopyColumnMajor(proof.MatZ, p.matZ)
}

// Prove runs commit-challenge-response draws until the rejection test
// accepts, returning the number of draws. No state survives a rejected
// draw: every matrix involved is rewritten wholesale on the next one.
func (p *Prover[E]) Prove(prg *rnd.AESRandom, proof *Proof[E]) (uint64, error) {
	rj := newRejector[E](prg, p.sigma, p.rho)
	var draws uint64
	for {
		draws++
		if !p.Commit(prg, proof) {
			return draws, fmt.Errorf("zkproof: commit failed")
		}
		if !p.Challenge(proof) {
			return draws, fmt.Errorf("zkproof: challenge failed")
		}
		if !p.Response(proof) {
			return draws, fmt.Errorf("zkproof: response failed")
		}
		if !rj.reject(p.matZ, p.matB) {
			return draws, nil
		}
		if p.maxDraws > 0 && draws == p.maxDraws {
			return draws, ErrMaxDraws
		}
	}
}

// rejector implements the rejection test that makes the accepted Z
// statistically independent of S: redraw unless
// u <= (1/rho) * exp((-2<Z,B> + ||B||^2) / (2 sigma^2)).
type rejector[E matrix.Elem] struct {
	u64        *rnd.UIntSampler[uint64]
	innerDenom float64
	outerDenom float64
}

func newRejector[E matrix.Elem](prg *rnd.AESRandom, sigma uint32, rho float64) *rejector[E] {
	return &rejector[E]{
		u64:        rnd.NewUIntSampler[uint64](prg),
		innerDenom: 1.0 / (2 * float64(sigma) * float64(sigma)),
		outerDenom: 1.0 / rho,
	}
}

// reject reports whether the draw must be discarded.
func (rj *rejector[E]) reject(matZ, matB *matrix.ColumnMajor[E]) bool {
	u := float64(rj.u64.Next()>>11) * 0x1p-53
	zb, ok1 := matZ.FrobeniusInnerProduct(matB)
	bb, ok2 := matB.FrobeniusInnerProduct(matB)
	if !ok1 || !ok2 {
		return true
	}
	return !(u <= math.Exp((-2*zb+bb)*rj.innerDenom)*rj.outerDenom)
}
