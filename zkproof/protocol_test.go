package zkproof

import (
	"errors"
	"strings"
	"testing"

	"github.com/yarongvili1/latticezk/matrix"
	"github.com/yarongvili1/latticezk/rnd"
)

func zeroSeededPRG(t *testing.T) *rnd.AESRandom {
	t.Helper()
	prg, err := rnd.NewAESRandom(make([]byte, rnd.SeedSize))
	if err != nil {
		t.Fatalf("NewAESRandom: %v", err)
	}
	return prg
}

// Small parameter sets satisfying the prover preconditions with the
// fixed-circuit deviations.
func smallParams() Params {
	return Params{
		SBits:  1,
		Lambda: 8,
		N:      16,
		Rho:    2,
		R:      2,
		V:      50,
		L:      2,
		Sigma:  215,
	}
}

func largeSigmaParams() Params {
	return Params{
		SBits:  7,
		Lambda: 6,
		N:      8,
		Rho:    2,
		R:      4,
		V:      64,
		L:      8,
		Sigma:  2000000000,
	}
}

func TestRunEndToEndInt32(t *testing.T) {
	res, err := Run[int32](matrix.NewCPUOps[int32](), zeroSeededPRG(t), smallParams())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Verified {
		t.Fatalf("proof did not verify")
	}
	if res.Draws != 1 {
		t.Fatalf("draws = %d, want 1 under the zero seed", res.Draws)
	}
}

func TestRunEndToEndInt64(t *testing.T) {
	res, err := Run[int64](matrix.NewCPUOps[int64](), zeroSeededPRG(t), largeSigmaParams())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Verified {
		t.Fatalf("proof did not verify")
	}
	if res.Draws != 5 {
		t.Fatalf("draws = %d, want 5 under the zero seed", res.Draws)
	}
}

// proveSmall runs the prover side only and returns the proof plus a
// verifier for its dimensions.
func proveSmall(t *testing.T) (*Proof[int32], *Verifier[int32]) {
	t.Helper()
	par := smallParams()
	ops := matrix.NewCPUOps[int32]()
	prg := zeroSeededPRG(t)

	s := float64(par.L) * float64(uint64(1)<<uint(par.SBits-1))
	bsampler := rnd.NewBitsSampler(prg, par.SBits)
	afill := uniformNext[int32](prg)
	matA := matrix.NewRowMajor[int32](par.R, par.V)
	matS := matrix.NewColumnMajor[int32](par.V, par.L)
	fillMatrix(matA.Data(), afill)
	fillMatrix(matS.Data(), bsampler.Next)

	prover, err := NewProver(ops, matA, matS, par.Sigma, par.Lambda, s, par.N, par.Rho)
	if err != nil {
		t.Fatalf("NewProver: %v", err)
	}
	proof := NewProof[int32](par.R, par.V, par.L, par.N, prover.B())
	if _, err := prover.Prove(prg, proof); err != nil {
		t.Fatalf("Prove: %v", err)
	}
	return proof, NewVerifier[int32](ops, proof.R, proof.V, proof.L, proof.N, proof.B)
}

func TestVerifierAcceptsHonestProof(t *testing.T) {
	proof, vf := proveSmall(t)
	ok, err := vf.Check(proof)
	if !ok || err != nil {
		t.Fatalf("honest proof rejected: %v", err)
	}
}

func TestVerifierRejectsTamperedZ(t *testing.T) {
	proof, vf := proveSmall(t)
	proof.MatZ.Set(0, 0, proof.MatZ.At(0, 0)^1)
	ok, err := vf.Check(proof)
	if ok {
		t.Fatalf("tampered Z accepted")
	}
	if !errors.Is(err, ErrAlgebraicMismatch) && !errors.Is(err, ErrNormBoundExceeded) {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestVerifierRejectsRandomChallenge(t *testing.T) {
	proof, vf := proveSmall(t)
	other, err := rnd.NewAESRandom([]byte("ffffffffffffffff"))
	if err != nil {
		t.Fatal(err)
	}
	fillMatrix(proof.MatC.Data(), bitNext(rnd.NewBitSampler(other)))
	ok, err := vf.Check(proof)
	if ok {
		t.Fatalf("random challenge accepted")
	}
	if !errors.Is(err, ErrChallengeMismatch) {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

// Swapping transcript bytes without re-deriving C must trip the
// challenge re-derivation.
func TestFiatShamirBinding(t *testing.T) {
	for name, tamper := range map[string]func(*Proof[int32]){
		"A": func(p *Proof[int32]) { p.MatA.Set(0, 0, p.MatA.At(0, 0)^1) },
		"T": func(p *Proof[int32]) { p.MatT.Set(0, 0, p.MatT.At(0, 0)^1) },
		"W": func(p *Proof[int32]) { p.MatW.Set(0, 0, p.MatW.At(0, 0)^1) },
	} {
		proof, vf := proveSmall(t)
		tamper(proof)
		ok, err := vf.Check(proof)
		if ok {
			t.Fatalf("%s: tampered transcript accepted", name)
		}
		if !errors.Is(err, ErrChallengeMismatch) {
			t.Fatalf("%s: unexpected rejection: %v", name, err)
		}
	}
}

func TestVerifierRejectsInflatedBound(t *testing.T) {
	proof, vf := proveSmall(t)
	proof.B *= 2
	ok, err := vf.Check(proof)
	if ok {
		t.Fatalf("inflated bound accepted")
	}
	if !errors.Is(err, ErrBoundMismatch) {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestVerifierRejectsWrongDimensions(t *testing.T) {
	proof, _ := proveSmall(t)
	ops := matrix.NewCPUOps[int32]()
	vf := NewVerifier[int32](ops, proof.R, proof.V, proof.L, proof.N+1, proof.B)
	ok, err := vf.Check(proof)
	if ok {
		t.Fatalf("wrong dimensions accepted")
	}
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func TestProverPreconditions(t *testing.T) {
	ops := matrix.NewCPUOps[int32]()
	matA := matrix.NewRowMajor[int32](2, 3)
	matS := matrix.NewColumnMajor[int32](3, 3)

	cases := []struct {
		name   string
		matS   *matrix.ColumnMajor[int32]
		sigma  uint32
		lambda uint32
		s      float64
		n      matrix.Dim
		rho    float64
		frag   string
	}{
		{"shape", matrix.NewColumnMajor[int32](4, 3), 215, 4, 12, 8, 2, "columns"},
		{"n", matS, 215, 8, 12, 8, 2, "lambda"},
		{"rho", matS, 215, 4, 12, 8, 1, "rho"},
		{"s", matS, 215, 4, 0, 8, 2, "s > 0"},
		{"sigma", matS, 215, 4, 12, 8, 2, "sigma"},
	}
	for _, c := range cases {
		_, err := NewProver(ops, matA, c.matS, c.sigma, c.lambda, c.s, c.n, c.rho)
		if err == nil {
			t.Fatalf("%s: precondition violation accepted", c.name)
		}
		if !strings.Contains(err.Error(), c.frag) {
			t.Fatalf("%s: diagnostic %q does not name the inequality", c.name, err)
		}
	}
}

// A secret whose operator-norm upper bound exceeds s is refused.
func TestProverRejectsWideSecret(t *testing.T) {
	ops := matrix.NewCPUOps[int32]()
	matA := matrix.NewRowMajor[int32](2, 3)
	matS := matrix.NewColumnMajor[int32](3, 3)
	for i := range matS.Data() {
		matS.Data()[i] = 100
	}
	s := float64(3) * 4 // l * 2^(s_bits-1) with s_bits=3
	_, err := NewProver(ops, matA, matS, 4_000_000, 2, s, 4, 2)
	if err == nil {
		t.Fatalf("wide secret accepted")
	}
	if !strings.Contains(err.Error(), "operator norm") {
		t.Fatalf("diagnostic %q does not name the norm bound", err)
	}
}

func TestProverMaxDraws(t *testing.T) {
	res, err := Run[int64](matrix.NewCPUOps[int64](), zeroSeededPRG(t), largeSigmaParams())
	if err != nil {
		t.Fatal(err)
	}
	if res.Draws < 2 {
		t.Skip("seeded run accepts on the first draw")
	}
	par := largeSigmaParams()
	par.MaxDraws = res.Draws - 1
	_, err = Run[int64](matrix.NewCPUOps[int64](), zeroSeededPRG(t), par)
	if !errors.Is(err, ErrMaxDraws) {
		t.Fatalf("want ErrMaxDraws, got %v", err)
	}
}

func TestRunRejectsBadSBits(t *testing.T) {
	par := smallParams()
	par.SBits = 0
	if _, err := Run[int32](matrix.NewCPUOps[int32](), zeroSeededPRG(t), par); err == nil {
		t.Fatalf("s_bits=0 accepted")
	}
}
