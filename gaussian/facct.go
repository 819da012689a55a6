// Package gaussian implements the discrete Gaussian samplers of the
// protocol: the constant-time FACCT sampler for large deviations, the
// bit-sliced half-Gaussian samplers for small fixed deviations, and
// the arbitrary-center sampler built on top of them.
package gaussian

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/holiman/uint256"

	"github.com/yarongvili1/latticezk/rnd"
)

// Sigma0 is the base deviation sqrt(1/(2 ln 2)) of the FACCT
// construction; the target deviation is realized as k*Sigma0 plus a
// uniform offset in [0,k).
var Sigma0 = math.Sqrt(1.0 / (2.0 * math.Ln2))

const facctBatch = 8

// facctBuffered is the number of samples drawn per refill of the
// public single-value API.
const facctBuffered = 256

// FacctSampler draws from the discrete Gaussian D_{Z,sigma} over the
// integers. Sampling is constant-time with respect to the returned
// value: every branch in the hot path depends only on public rejection
// events. Samples are produced eight at a time from fixed-size entropy
// blocks.
type FacctSampler struct {
	src rnd.ByteSource

	sigma  uint32
	k      uint64
	k2inv  float64 // -1/k^2, the 2^x exponent scale
	usize  int     // bytes per uniform draw
	shift  uint    // 8*usize
	factor uint64  // floor(2^shift / k)
	q      uint64  // k*factor, the acceptance bound
	rej    int     // uniform draw slots per 8-sample block

	baseBlock    int
	bernBlock    int
	tablesBlock  int
	uniformBytes int
	uniformBlock int
	extraBlock   int
	allBytes     int

	rbuf []byte
	z    [facctBatch]uint64
	b    [facctBatch]uint64
	lane int

	samples  [facctBuffered]int64
	cursor   int
	nsampled int

	exhausted bool
}

// NewFacctSampler returns a sampler for the given deviation over src.
// sigma must be positive; its bit-width is at most 32 by type.
func NewFacctSampler(sigma uint32, src rnd.ByteSource) (*FacctSampler, error) {
	return NewFacctSamplerAligned(sigma, src, 1)
}

// NewFacctSamplerAligned is NewFacctSampler with every entropy region
// rounded up to a multiple of align, the layout accelerator backends
// require. align must be 1 or 8.
func NewFacctSamplerAligned(sigma uint32, src rnd.ByteSource, align int) (*FacctSampler, error) {
	if sigma == 0 {
		return nil, fmt.Errorf("gaussian: sigma must be positive")
	}
	if align != 1 && align != 8 {
		return nil, fmt.Errorf("gaussian: unsupported alignment %d", align)
	}
	s := &FacctSampler{src: src, sigma: sigma}
	s.k = uint64(math.Ceil(float64(sigma) * (1.0 / Sigma0)))
	s.k2inv = (-1.0 / float64(s.k)) / float64(s.k)
	s.usize = uniformSizeOf(s.k)
	s.shift = uint(8 * s.usize)
	s.factor = barrettFactor(s.k, s.shift)
	s.q = s.k * s.factor
	s.rej = uniformRejSlots(s.q, s.shift)

	alignUp := func(x int) int { return (x + align - 1) / align * align }
	s.baseBlock = alignUp(baseTableSize)
	s.bernBlock = alignUp(bernoulliTableSize)
	s.tablesBlock = 2 * (s.baseBlock + s.bernBlock)
	s.uniformBytes = s.rej * s.usize
	s.uniformBlock = alignUp(s.uniformBytes)
	s.extraBlock = alignUp(1)
	s.allBytes = s.tablesBlock + s.uniformBlock + s.extraBlock
	s.rbuf = make([]byte, s.allBytes)
	s.lane = facctBatch
	return s, nil
}

// uniformSizeOf returns the byte width of the uniform draw covering
// [0,k).
func uniformSizeOf(k uint64) int {
	switch {
	case k < 1<<8:
		return 1
	case k < 1<<16:
		return 2
	case k < 1<<32:
		return 4
	default:
		return 8
	}
}

// barrettFactor computes floor(2^shift / k); shift may be 64, so the
// division runs over a wide integer.
func barrettFactor(k uint64, shift uint) uint64 {
	num := new(uint256.Int).Lsh(uint256.NewInt(1), shift)
	den := uint256.NewInt(k)
	return new(uint256.Int).Div(num, den).Uint64()
}

// uniformRejSlots returns the number of uniform draw slots that keeps
// the probability of running out below 2^-64 for a block of eight, and
// never fewer than the eight draws a block consumes.
func uniformRejSlots(q uint64, shift uint) int {
	choices := math.Ldexp(1, int(shift))
	rejProb := (choices - float64(q)) / choices
	rej := 0
	if rejProb > 0 && rejProb < 1 {
		rej = int(math.Ceil(64 * math.Log(0.5) / math.Log(rejProb)))
	}
	if rej < facctBatch {
		rej = facctBatch
	}
	return rej
}

// Sigma returns the configured deviation.
func (s *FacctSampler) Sigma() uint32 { return s.sigma }

// K returns the derived multiplier ceil(sigma/Sigma0).
func (s *FacctSampler) K() uint64 { return s.k }

// BlockBytes returns the entropy bytes consumed per block of eight
// samples.
func (s *FacctSampler) BlockBytes() int { return s.allBytes }

// Exhausted reports whether the entropy source ran out during a
// previous Sample call.
func (s *FacctSampler) Exhausted() bool { return s.exhausted }

// Next returns one sample, refilling an internal buffer as needed. It
// must only be used over an inexhaustible source.
func (s *FacctSampler) Next() int64 {
	if s.cursor == s.nsampled {
		s.nsampled = s.Sample(s.samples[:])
		s.cursor = 0
		if s.nsampled == 0 {
			panic("gaussian: entropy source exhausted")
		}
	}
	r := s.samples[s.cursor]
	s.cursor++
	return r
}

// Sample fills out with samples and returns the number produced, which
// is short only when the entropy source is exhausted.
func (s *FacctSampler) Sample(out []int64) int {
	j := 0
	signOff := s.allBytes - s.extraBlock
	for j < len(out) {
		var kbit uint64
		var i int
		for {
			if s.lane == facctBatch {
				if !s.round() {
					s.exhausted = true
					return j
				}
				s.lane = 0
			}
			kbit = uint64((s.rbuf[signOff] >> s.lane) & 1)
			s.lane++
			i = s.lane - 1
			// Reject when the Bernoulli failed, or when z = 0 came up
			// with sign bit 0: zero has a single representation.
			z := s.z[i]
			if (s.b[i]&((z|-z)|(kbit|-kbit)))>>63 == 1 {
				break
			}
		}
		out[j] = int64(s.z[i] * (1 ^ ((-kbit) & 0xfffffffffffffffe)))
		j++
	}
	return j
}

// round refills the eight-lane state from one entropy block.
func (s *FacctSampler) round() bool {
	if !s.src.Read(s.rbuf) {
		return false
	}
	var y [facctBatch]uint64
	s.uniform(s.rbuf[s.tablesBlock:s.tablesBlock+s.uniformBlock], &y)

	half := s.baseBlock + s.bernBlock
	for batch := 0; batch < 2; batch++ {
		base := batch * half
		x := cdtSample(s.rbuf[base : base+baseTableSize])
		var w [4]uint64
		for lane := 0; lane < 4; lane++ {
			xk := x[lane] * s.k
			z := xk + y[4*batch+lane]
			s.z[4*batch+lane] = z
			w[lane] = z + xk // y + 2kx
		}
		bern := s.rbuf[base+s.baseBlock : base+s.baseBlock+bernoulliTableSize]
		s.bernoulli(4*batch, y[4*batch:4*batch+4], w, bern)
	}
	return true
}

// cdtSample draws four base samples from 64 bytes of entropy: lane i
// reads its low limb at 8i and its high limb at 32+8i, both masked to
// 63 bits, and accumulates one vote per table row.
func cdtSample(r []byte) [4]uint64 {
	var x [4]uint64
	for lane := 0; lane < 4; lane++ {
		r1 := le64(r[8*lane:]) & cdtLowMask
		r2 := le64(r[32+8*lane:]) & cdtLowMask
		var v uint64
		for row := 0; row < cdtLength; row++ {
			lt0 := r1 - cdtLow[row]
			lt1 := r2 - cdtHigh[row]
			b := ((lt0 & eqMask(r2, cdtHigh[row])) | lt1) >> 63
			v += b
		}
		x[lane] = v
	}
	return x
}

// bernoulli evaluates, for four lanes, a Bernoulli with success
// probability 2^(-y*w/k^2) = exp(-y*(y+2kx)/(2 sigma_0^2)), writing an
// all-ones/sign mask per lane into s.b[off:]. The power of two is
// evaluated as 2^floor(t) * 2^f with the polynomial over f in [0,1),
// and compared against 72 bits of uniform randomness split into
// mantissa and exponent.
func (s *FacctSampler) bernoulli(off int, y []uint64, w [4]uint64, r []byte) {
	for lane := 0; lane < 4; lane++ {
		vx := float64(y[lane]) * float64(w[lane]) * s.k2inv

		vx1 := math.Floor(vx)
		vt := (math.Float64bits(vx1+magic52x15) - magic52x15Bit) << expMantissaPrecision

		f := vx - vx1
		sum := math.FMA(math.Float64frombits(expCoff[0]), f, math.Float64frombits(expCoff[1]))
		for c := 2; c < len(expCoff); c++ {
			sum = math.FMA(sum, f, math.Float64frombits(expCoff[c]))
		}

		res := vt + math.Float64bits(sum)

		resMant := (res & expMantissaMask) | (uint64(1) << expMantissaPrecision)
		ue := (res >> expMantissaPrecision) + resExponentAdd
		resExp := (uint64(1) << (ue & 63)) & isZeroMask(ue&^63)

		rm := le64(r[8*lane:])
		re := rm >> rMantissaPrecision
		rm &= rMantissaMask
		re |= uint64(r[32+lane]) << (64 - rMantissaPrecision)

		s.b[off+lane] = ((rm - resMant) & (re - resExp)) | eqMask(res, doubleOne)
	}
}

// uniform fills eight draws from [0,k) by rejection against q followed
// by a Barrett reduction. The slot region is shared by all eight draws
// and sized so that running out has probability below 2^-64; should it
// happen anyway the final slot is force-accepted, which keeps the
// access in bounds at a negligible bias (the reduction stays correct
// for any x < 2^shift).
func (s *FacctSampler) uniform(r []byte, y *[facctBatch]uint64) {
	last := len(r)/s.usize - 1
	i := 0
	for j := 0; j < facctBatch; j++ {
		var x uint64
		for {
			idx := i
			if idx > last {
				idx = last
			}
			x = s.readUniform(r, idx)
			i++
			_, below := bits.Sub64(x, s.q, 0)
			if below == 1 || idx == last {
				break
			}
		}
		y[j] = barrettReduce(x, s.k, s.factor, s.shift)
	}
}

func (s *FacctSampler) readUniform(r []byte, i int) uint64 {
	switch s.usize {
	case 1:
		return uint64(r[i])
	case 2:
		return uint64(r[2*i]) | uint64(r[2*i+1])<<8
	case 4:
		return uint64(r[4*i]) | uint64(r[4*i+1])<<8 | uint64(r[4*i+2])<<16 | uint64(r[4*i+3])<<24
	default:
		return le64(r[8*i:])
	}
}

// barrettReduce maps an accepted draw x < k*factor to x mod k using
// the multiply-high estimate and one masked correction.
func barrettReduce(x, k, factor uint64, shift uint) uint64 {
	hi, lo := bits.Mul64(x, factor)
	var est uint64
	if shift == 64 {
		est = hi
	} else {
		est = hi<<(64-shift) | lo>>shift
	}
	t := x - (est+1)*k
	t += (t >> 63) * k
	return t
}

func le64(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// isZeroMask returns all ones when v is zero, else zero.
func isZeroMask(v uint64) uint64 {
	return ((v | -v) >> 63) - 1
}

// eqMask returns all ones when a equals b, else zero.
func eqMask(a, b uint64) uint64 {
	return isZeroMask(a ^ b)
}
