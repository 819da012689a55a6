package gaussian

import (
	"math"
	"testing"

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

func TestHalfGaussianRange(t *testing.T) {
	for _, c := range []struct {
		name string
		mk   func(*rnd.AESRandom) *HalfGaussian
		bits int
	}{
		{"s2", NewHalfGaussianS2, 5},
		{"s215", NewHalfGaussianS215, 10},
	} {
		h := c.mk(zeroSeededPRG(t))
		if h.BitsPerSample() != c.bits {
			t.Fatalf("%s: BitsPerSample=%d, want %d", c.name, h.BitsPerSample(), c.bits)
		}
		limit := 1 << uint(c.bits)
		for i := 0; i < 4*HalfGaussianLanes; i++ {
			v := h.Next()
			if v < 0 || v >= limit {
				t.Fatalf("%s: sample %d out of range [0,%d)", c.name, v, limit)
			}
		}
	}
}

func TestHalfGaussianDeterminism(t *testing.T) {
	a := NewHalfGaussianS215(zeroSeededPRG(t))
	b := NewHalfGaussianS215(zeroSeededPRG(t))
	for i := 0; i < 4*HalfGaussianLanes; i++ {
		if va, vb := a.Next(), b.Next(); va != vb {
			t.Fatalf("sequences diverge at %d: %d vs %d", i, va, vb)
		}
	}
}

func TestHalfGaussianThresholdsDecrease(t *testing.T) {
	thr := halfGaussianThresholds(215, 10)
	if len(thr) != (1<<10)-1 {
		t.Fatalf("threshold count %d", len(thr))
	}
	for i := 1; i < len(thr); i++ {
		if thr[i] > thr[i-1] {
			t.Fatalf("thresholds not non-increasing at %d", i)
		}
	}
	// Pr(X >= 1) for sigma=215 is just below 1.
	if float64(thr[0]) < 0.99*math.Ldexp(1, 64) {
		t.Fatalf("first threshold too small: %d", thr[0])
	}
}

// chiSquare compares observed counts against the rounded-Gaussian PMF
// restricted to the sampler's support. Ranges with an expectation
// below 5 are merged into their left neighbor so no term divides by a
// vanishing expectation.
func chiSquare(t *testing.T, counts []uint64, total int, sigma float64, binWidth int) (float64, int) {
	t.Helper()
	max := len(counts)
	weights := make([]float64, max)
	var wsum float64
	for x := 0; x < max; x++ {
		weights[x] = math.Exp(-float64(x) * float64(x) / (2 * sigma * sigma))
		wsum += weights[x]
	}
	var obs, exp []float64
	for lo := 0; lo < max; lo += binWidth {
		hi := lo + binWidth
		if hi > max {
			hi = max
		}
		var o, e float64
		for x := lo; x < hi; x++ {
			o += float64(counts[x])
			e += weights[x] / wsum * float64(total)
		}
		if n := len(exp); n > 0 && (e < 5 || exp[n-1] < 5) {
			obs[n-1] += o
			exp[n-1] += e
		} else {
			obs = append(obs, o)
			exp = append(exp, e)
		}
	}
	var chi2 float64
	for i := range exp {
		d := obs[i] - exp[i]
		chi2 += d * d / exp[i]
	}
	return chi2, len(exp) - 1
}

func TestHalfGaussianChiSquareS215(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}
	h := NewHalfGaussianS215(zeroSeededPRG(t))
	const n = 1 << 18
	counts := make([]uint64, 1<<10)
	for i := 0; i < n; i++ {
		counts[h.Next()]++
	}
	chi2, dof := chiSquare(t, counts, n, 215, 32)
	// Around 32 bins; the 0.001 critical value for 31 dof is 61.1.
	if chi2 > 2.5*float64(dof) {
		t.Fatalf("chi2=%v with %d dof", chi2, dof)
	}
}

func TestHalfGaussianChiSquareS2(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}
	h := NewHalfGaussianS2(zeroSeededPRG(t))
	const n = 1 << 18
	counts := make([]uint64, 1<<5)
	for i := 0; i < n; i++ {
		counts[h.Next()]++
	}
	chi2, dof := chiSquare(t, counts, n, 2, 1)
	if dof < 5 {
		t.Fatalf("too few populated bins: %d", dof)
	}
	if chi2 > 4*float64(dof) {
		t.Fatalf("chi2=%v with %d dof", chi2, dof)
	}
}

func TestFullGaussianFoldsSigns(t *testing.T) {
	g := NewPlainGaussianS215(zeroSeededPRG(t))
	var pos, neg int
	var sum float64
	const n = 1 << 14
	for i := 0; i < n; i++ {
		v := g.Next()
		if v > 0 {
			pos++
		} else if v < 0 {
			neg++
		}
		sum += float64(v)
	}
	if pos == 0 || neg == 0 {
		t.Fatalf("signs not folded: pos=%d neg=%d", pos, neg)
	}
	// Mean standard error is sigma/sqrt(n) ~ 1.7.
	if mean := sum / n; math.Abs(mean) > 10 {
		t.Fatalf("mean %v too far from 0", mean)
	}
}
