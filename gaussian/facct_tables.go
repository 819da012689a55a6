package gaussian

// Frozen tables for the FACCT sampler. The CDT rows describe the base
// half-Gaussian with sigma_0 = sqrt(1/(2 ln 2)) as 128-bit cumulative
// weights split into 63-bit low and high limbs; expCoff holds the
// IEEE-754 bit patterns of the 2^f evaluation polynomial, highest
// degree first. Changing any value changes the sampled distribution.

const cdtLength = 9

var cdtLow = [cdtLength]uint64{
	2200310400551559144,
	7912151619254726620,
	5167367257772081627,
	5081592746475748971,
	6522074513864805092,
	2579734681240182346,
	8175784047440310133,
	2947787991558061753,
	22489665999543,
}

var cdtHigh = [cdtLength]uint64{
	3327841033070651387,
	380075531178589176,
	11604843442081400,
	90134450315532,
	175786317361,
	85801740,
	10472,
	0,
	0,
}

var expCoff = [10]uint64{
	0x3e833b70ffa2c5d4,
	0x3eb4a480fda7e6e1,
	0x3ef01b254493363f,
	0x3f242e0e0aa273cc,
	0x3f55d8a2334ed31b,
	0x3f83b2aa56db0f1a,
	0x3fac6b08e11fc57e,
	0x3fcebfbdff556072,
	0x3fe62e42fefa7fe6,
	0x3ff0000000000000,
}

const (
	cdtLowMask = 0x7fffffffffffffff

	expMantissaPrecision = 52
	expMantissaMask      = (uint64(1) << expMantissaPrecision) - 1
	rMantissaPrecision   = expMantissaPrecision + 1
	rMantissaMask        = (uint64(1) << rMantissaPrecision) - 1
	// 72 bits of comparison randomness: 53 mantissa bits, 19 exponent
	// bits drawn from the trailing extra bytes.
	rExponentL = 8*bernoulliEntrySize - rMantissaPrecision

	doubleOne = uint64(1023) << expMantissaPrecision

	// IEEE exponent rebias rExponentL - 1023 + 1 as a wrapped uint64.
	resExponentAdd = ^uint64(1002)

	// 1.5*2^52 as a value and as a bit pattern, the anchor of the
	// float-to-exponent conversion trick.
	magic52x15    = 6755399441055744.0
	magic52x15Bit = uint64(0x4338000000000000)

	cdtEntrySize       = 16
	bernoulliEntrySize = 9
	baseTableSize      = 4 * cdtEntrySize
	bernoulliTableSize = 4 * bernoulliEntrySize
)
