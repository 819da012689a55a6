package gaussian

import (
	"math"
	"testing"

	"github.com/yarongvili1/latticezk/rnd"
)

func TestExpSmallMatchesExp(t *testing.T) {
	for x := -cLog2; x <= cLog2; x += 1.0 / 128 {
		got, want := expSmall(x), math.Exp(x)
		if math.Abs(got-want) > 1e-14*want {
			t.Fatalf("expSmall(%v)=%v, want %v", x, got, want)
		}
	}
}

func TestBerExpFixtures(t *testing.T) {
	cases := []struct {
		x          float64
		rnd1, rnd2 uint64
		want       int
	}{
		{0.0, 0, 0, 1},
		{0.5, 0x123456789abcdef0, 0x0fedcba987654321, 0},
		{0.5, 0x123456789abcdef0, 0xffffffffffffffff, 0},
		{2.0, 0x0, 0x1, 1},
		{5.0, 0xffffffffffffffff, 0x0, 0},
		{100.0, 0, 0, 1},
	}
	for _, c := range cases {
		if got := BerExp(c.x, c.rnd1, c.rnd2); got != c.want {
			t.Fatalf("BerExp(%v, %#x, %#x) = %d, want %d", c.x, c.rnd1, c.rnd2, got, c.want)
		}
	}
}

func TestBerExpAcceptanceRate(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}
	u64 := rnd.NewUIntSampler[uint64](zeroSeededPRG(t))
	for _, x := range []float64{0.25, 0.5, 1.0, 2.0} {
		const n = 1 << 17
		accepted := 0
		for i := 0; i < n; i++ {
			accepted += BerExp(x, u64.Next(), u64.Next())
		}
		p := float64(accepted) / n
		want := math.Exp(-x)
		// Four standard errors of a Bernoulli estimate.
		tol := 4 * math.Sqrt(want*(1-want)/n)
		if math.Abs(p-want) > tol {
			t.Fatalf("x=%v: acceptance %v, want %v +/- %v", x, p, want, tol)
		}
	}
}

func TestAdjustedSamplerRejectsBadSigma(t *testing.T) {
	if _, err := NewAdjustedSamplerS215(zeroSeededPRG(t), 0, 215); err == nil {
		t.Fatalf("sigma equal to the base deviation accepted")
	}
	if _, err := NewAdjustedSamplerS215(zeroSeededPRG(t), 0, 0); err == nil {
		t.Fatalf("sigma=0 accepted")
	}
}

func TestAdjustedSamplerMoments(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}
	const (
		mu    = 0.5
		sigma = 120.0
		n     = 1 << 16
	)
	a, err := NewAdjustedSamplerS215(zeroSeededPRG(t), mu, sigma)
	if err != nil {
		t.Fatal(err)
	}
	var sum, sum2 float64
	for i := 0; i < n; i++ {
		v := float64(a.Next())
		sum += v
		sum2 += v * v
	}
	mean := sum / n
	variance := sum2/n - mean*mean
	// Mean standard error ~ 0.47.
	if math.Abs(mean-mu) > 2.5 {
		t.Fatalf("mean %v, want near %v", mean, mu)
	}
	if variance < 0.95*sigma*sigma || variance > 1.05*sigma*sigma {
		t.Fatalf("variance %v outside 5%% of %v", variance, sigma*sigma)
	}
}
