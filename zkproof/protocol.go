package zkproof

import (
	"fmt"
	"time"

	"github.com/yarongvili1/latticezk/matrix"
	"github.com/yarongvili1/latticezk/prof"
	"github.com/yarongvili1/latticezk/rnd"
)

// Params are the protocol parameters of one run. SBits bounds the
// secret's entries to the signed SBits-bit range; Lambda is the
// security parameter; N, Rho, R, V, L are the protocol parameters of
// the paper; Sigma is the deviation of the commitment sampler.
type Params struct {
	SBits    int
	Lambda   uint32
	N        matrix.Dim
	Rho      float64
	R, V, L  matrix.Dim
	Sigma    uint32
	MaxDraws uint64
}

// DefaultParams returns the parameter set of the default invocation.
func DefaultParams() Params {
	return Params{
		SBits:  7,
		Lambda: 80,
		N:      100,
		Rho:    2,
		R:      100,
		V:      3000,
		L:      3000,
		Sigma:  2000000000,
	}
}

// Result summarizes one protocol run.
type Result struct {
	Draws    uint64
	Verified bool
}

// Run samples a uniform public A and a short secret S from prg, proves
// knowledge of S, and verifies the proof. The returned error reports
// parameter validation or prover failures; a sound run with a
// non-verifying proof is reported through Result.Verified.
func Run[E matrix.Elem](ops matrix.Ops[E], prg *rnd.AESRandom, par Params) (Result, error) {
	if par.SBits < 1 || par.SBits > 64 {
		return Result{}, fmt.Errorf("zkproof: s_bits=%d out of range [1,64]", par.SBits)
	}
	s := float64(par.L) * float64(uint64(1)<<uint(par.SBits-1))

	bsampler := rnd.NewBitsSampler(prg, par.SBits)
	afill := uniformNext[E](prg)

	matA := matrix.NewRowMajor[E](par.R, par.V)
	matS := matrix.NewColumnMajor[E](par.V, par.L)
	func() {
		defer prof.Track(time.Now(), "driver/sample A")
		fillMatrix(matA.Data(), afill)
	}()
	func() {
		defer prof.Track(time.Now(), "driver/sample S")
		fillMatrix(matS.Data(), bsampler.Next)
	}()

	prover, err := NewProver(ops, matA, matS, par.Sigma, par.Lambda, s, par.N, par.Rho)
	if err != nil {
		return Result{}, err
	}
	prover.SetMaxDraws(par.MaxDraws)

	proof := NewProof[E](par.R, par.V, par.L, par.N, prover.B())
	start := time.Now()
	draws, err := prover.Prove(prg, proof)
	prof.Track(start, "driver/prove")
	if err != nil {
		return Result{Draws: draws}, err
	}

	verifier := NewVerifier(ops, proof.R, proof.V, proof.L, proof.N, proof.B)
	start = time.Now()
	verified := verifier.Verify(proof)
	prof.Track(start, "driver/verify")
	return Result{Draws: draws, Verified: verified}, nil
}
