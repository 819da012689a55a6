package gaussian

import (
	"encoding/binary"
	"math"

	"github.com/yarongvili1/latticezk/rnd"
)

// HalfGaussianLanes is the number of samples evaluated per circuit
// pass: the boolean circuit runs bit-sliced across 64-bit words.
const HalfGaussianLanes = 64

// halfGaussianBitsIn is the number of random input bits consumed per
// lane per pass, fixing the comparison precision of the synthesized
// circuit.
const halfGaussianBitsIn = 64

// HalfGaussian samples the non-negative discrete Gaussian D_{Z,sigma,>=0}
// for a small fixed sigma through a constant-time bit-sliced circuit.
// The circuit is synthesized once at construction from the
// distribution's cumulative table: one threshold per support point,
// evaluated as a ripple comparison plus a ripple increment across all
// lanes at once. The gate schedule and therefore the entropy
// consumption are fixed per (sigma, output width) configuration.
type HalfGaussian struct {
	rnd   *rnd.AESRandom
	sigma float64
	nOut  int
	thr   []uint64 // round(2^64 * Pr(X >= m)) for m = 1, 2, ...

	bit     [halfGaussianBitsIn]uint64
	out     []uint64
	samples [HalfGaussianLanes]int
	cursor  int
}

// NewHalfGaussianS2 returns the sigma=2 sampler with 5 output bits.
func NewHalfGaussianS2(r *rnd.AESRandom) *HalfGaussian {
	return newHalfGaussian(r, 2, 5)
}

// NewHalfGaussianS215 returns the sigma=215 sampler with 10 output bits.
func NewHalfGaussianS215(r *rnd.AESRandom) *HalfGaussian {
	return newHalfGaussian(r, 215, 10)
}

func newHalfGaussian(r *rnd.AESRandom, sigma float64, nOut int) *HalfGaussian {
	h := &HalfGaussian{
		rnd:   r,
		sigma: sigma,
		nOut:  nOut,
		thr:   halfGaussianThresholds(sigma, nOut),
		out:   make([]uint64, nOut),
	}
	h.fill()
	return h
}

// Sigma returns the configured deviation.
func (h *HalfGaussian) Sigma() float64 { return h.sigma }

// BitsPerSample returns the output width of the circuit.
func (h *HalfGaussian) BitsPerSample() int { return h.nOut }

// Next returns one sample in [0, 2^BitsPerSample).
func (h *HalfGaussian) Next() int {
	r := h.samples[h.cursor]
	h.cursor++
	if h.cursor == HalfGaussianLanes {
		h.fill()
	}
	return r
}

// fill evaluates the circuit over fresh input bits for all lanes.
func (h *HalfGaussian) fill() {
	var block [rnd.BlockSize]byte
	for j := 0; j < halfGaussianBitsIn; j += 2 {
		h.rnd.RandomBytes(block[:])
		h.bit[j] = binary.LittleEndian.Uint64(block[0:8])
		h.bit[j+1] = binary.LittleEndian.Uint64(block[8:16])
	}
	clear(h.out)
	for _, t := range h.thr {
		lt := h.lessThan(t)
		// Ripple increment of the per-lane counters by the 0/1 mask.
		carry := lt
		for j := 0; j < h.nOut; j++ {
			c := h.out[j] & carry
			h.out[j] ^= carry
			carry = c
		}
	}
	for i := 0; i < HalfGaussianLanes; i++ {
		v := 0
		for j := 0; j < h.nOut; j++ {
			v |= int((h.out[j]>>uint(i))&1) << uint(j)
		}
		h.samples[i] = v
	}
	h.cursor = 0
}

// lessThan returns, as a lane mask, whether each lane's input word is
// below the public threshold t, rippling from the most significant
// bit. Branches depend only on the fixed table, never on the random
// bits.
func (h *HalfGaussian) lessThan(t uint64) uint64 {
	eq := ^uint64(0)
	var lt uint64
	for j := halfGaussianBitsIn - 1; j >= 0; j-- {
		if (t>>uint(j))&1 == 1 {
			lt |= eq &^ h.bit[j]
			eq &= h.bit[j]
		} else {
			eq &^= h.bit[j]
		}
	}
	return lt
}

// halfGaussianThresholds builds the cumulative table of the
// half-Gaussian restricted to [0, 2^nOut): entry m-1 holds
// round(2^64 * Pr(X >= m)). Tails are accumulated smallest-first to
// keep the floating-point error below the comparison granularity.
func halfGaussianThresholds(sigma float64, nOut int) []uint64 {
	max := 1 << uint(nOut)
	weights := make([]float64, max)
	for x := 0; x < max; x++ {
		weights[x] = math.Exp(-float64(x) * float64(x) / (2 * sigma * sigma))
	}
	tails := make([]float64, max+1)
	for x := max - 1; x >= 0; x-- {
		tails[x] = tails[x+1] + weights[x]
	}
	total := tails[0]
	thr := make([]uint64, 0, max-1)
	for m := 1; m < max; m++ {
		f := math.Ldexp(tails[m]/total, 64)
		var t uint64
		switch {
		case f >= math.Ldexp(1, 64):
			t = ^uint64(0)
		case f > 0:
			t = uint64(math.RoundToEven(f))
		}
		thr = append(thr, t)
	}
	return thr
}
