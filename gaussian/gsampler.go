package gaussian

import (
	"fmt"
	"math"

	"github.com/yarongvili1/latticezk/rnd"
)

// FullGaussian folds a half-Gaussian with a uniform sign bit. Zero
// keeps both signs, so its weight is doubled relative to the exact
// distribution; the samplers built on top compensate through their own
// rejection step.
type FullGaussian struct {
	half *HalfGaussian
	bit  *rnd.BitSampler
}

// NewFullGaussian folds half with signs drawn from bit.
func NewFullGaussian(half *HalfGaussian, bit *rnd.BitSampler) *FullGaussian {
	return &FullGaussian{half: half, bit: bit}
}

// Next returns one signed sample.
func (g *FullGaussian) Next() int {
	z := g.half.Next()
	b := g.bit.Next()
	return (b<<1 - 1) * z
}

// Sigma returns the deviation of the underlying half-Gaussian.
func (g *FullGaussian) Sigma() float64 { return g.half.Sigma() }

// NewPlainGaussianS2 builds a sigma=2 full Gaussian with both
// sub-samplers drawn from prg, in construction order half then sign.
func NewPlainGaussianS2(prg *rnd.AESRandom) *FullGaussian {
	half := NewHalfGaussianS2(prg)
	return NewFullGaussian(half, rnd.NewBitSampler(prg))
}

// NewPlainGaussianS215 builds a sigma=215 full Gaussian with both
// sub-samplers drawn from prg.
func NewPlainGaussianS215(prg *rnd.AESRandom) *FullGaussian {
	half := NewHalfGaussianS215(prg)
	return NewFullGaussian(half, rnd.NewBitSampler(prg))
}

// AdjustedSampler draws from D_{Z,mu,sigma} for an arbitrary center mu
// and a target sigma below the base sampler's deviation, by rejection
// against the bimodal proposal built from the base full Gaussian.
type AdjustedSampler struct {
	mu, sigma, sigma0 float64
	s                 int
	r                 float64
	dss, d2s0s0       float64

	base *FullGaussian
	bit  *rnd.BitSampler
	u64  *rnd.UIntSampler[uint64]

	rejections uint64
}

// NewAdjustedSampler rejects until the proposal matches D_{Z,mu,sigma}.
// The base sampler's deviation acts as sigma_0 and must exceed sigma.
func NewAdjustedSampler(base *FullGaussian, bit *rnd.BitSampler, u64 *rnd.UIntSampler[uint64], mu, sigma float64) (*AdjustedSampler, error) {
	sigma0 := base.Sigma()
	if sigma <= 0 || sigma >= sigma0 {
		return nil, fmt.Errorf("gaussian: adjusted sampler needs 0 < sigma < %v, got %v", sigma0, sigma)
	}
	s := int(math.Floor(mu))
	a := &AdjustedSampler{
		mu:     mu,
		sigma:  sigma,
		sigma0: sigma0,
		s:      s,
		r:      mu - float64(s),
		dss:    1.0 / (2 * sigma * sigma),
		d2s0s0: 1.0 / (2 * sigma0 * sigma0),
		base:   base,
		bit:    bit,
		u64:    u64,
	}
	return a, nil
}

// NewAdjustedSamplerS215 wires the sigma=215 base circuit and its
// companion samplers from prg, in a fixed construction order.
func NewAdjustedSamplerS215(prg *rnd.AESRandom, mu, sigma float64) (*AdjustedSampler, error) {
	half := NewHalfGaussianS215(prg)
	bit := rnd.NewBitSampler(prg)
	u64 := rnd.NewUIntSampler[uint64](prg)
	return NewAdjustedSampler(NewFullGaussian(half, bit), bit, u64, mu, sigma)
}

// NewAdjustedSamplerS2 wires the sigma=2 base circuit and its
// companion samplers from prg.
func NewAdjustedSamplerS2(prg *rnd.AESRandom, mu, sigma float64) (*AdjustedSampler, error) {
	half := NewHalfGaussianS2(prg)
	bit := rnd.NewBitSampler(prg)
	u64 := rnd.NewUIntSampler[uint64](prg)
	return NewAdjustedSampler(NewFullGaussian(half, bit), bit, u64, mu, sigma)
}

// Next returns one sample centered on mu.
func (a *AdjustedSampler) Next() int {
	for {
		// The bimodal proposal: with b=1 sample against a Gaussian
		// centered on 1, with b=0 against one centered on 0. Either
		// way the proposal dominates the target on z's range.
		z0 := a.base.Next()
		b := a.bit.Next()
		z := b + (b<<1-1)*z0

		zr := float64(z) - a.r
		zb := float64(z - b)
		x := zr*zr*a.dss - zb*zb*a.d2s0s0
		if BerExp(x, a.u64.Next(), a.u64.Next()) == 1 {
			return a.s + z
		}
		a.rejections++
	}
}

// Rejections returns the number of rejected proposals so far.
func (a *AdjustedSampler) Rejections() uint64 { return a.rejections }

// Sigma returns the target deviation.
func (a *AdjustedSampler) Sigma() float64 { return a.sigma }
