package gaussian

import "math"

const (
	cLog2 = 0.69314718055994530941723212146
	cP55  = 36028797018963968.0 // 2^55
)

// expSmall computes exp(x) for |x| <= ln 2 to about 50 bits, using the
// fdlibm-derived polynomial over x/2 followed by squaring. It is
// constant-time whenever the underlying floating-point operations are.
func expSmall(x float64) float64 {
	const (
		p1 = 1.66666666666666019037e-01
		p2 = -2.77777777770155933842e-03
		p3 = 6.61375632143793436117e-05
		p4 = -1.65339022054652515390e-06
		p5 = 4.13813679705723846039e-08
	)
	s := x * 0.5
	t := s * s
	c := s - t*(p1+t*(p2+t*(p3+t*(p4+t*p5))))
	s = 1.0 - ((s*c)/(c-2.0) - s)
	return s * s
}

// BerExp samples a bit with probability exp(-x) for x >= 0, consuming
// two 64-bit uniform words. x is reduced as s*ln2 + r with r in
// [0, ln 2); s saturates at 63, where the outcome probability is
// already at most 2^-63. The two partial bits are combined with masks only.
func BerExp(x float64, rnd1, rnd2 uint64) int {
	s := int64(math.Floor(x / cLog2))
	r := x - float64(s)*cLog2

	sw := uint32(s)
	sw ^= (sw ^ 63) & -((63 - sw) >> 31)
	su := uint(sw)

	// A bit with probability 2^-s: keep s random bits, test for zero.
	w := rnd1
	w ^= (w >> su) << su
	b := 1 - int((w|-w)>>63)

	// A bit with probability exp(-r), via a 55-bit scaled comparison.
	z := uint64(math.RoundToEven(expSmall(-r) * cP55))
	w = rnd2 & ((uint64(1) << 55) - 1)
	b &= int((w - z) >> 63)

	return b
}
