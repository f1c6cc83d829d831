package cbor

import "math"

// This file implements IEEE 754 half/single/double conversions using
// bitwise manipulation only, so the encode path never needs the FPU for
// anything beyond a final ALU subtract. It follows the "magic
// add/subtract" technique for half subnormals and the narrow-if-lossless
// rule for the encoder collapse path, per spec.md 4.2.

const (
	singleExpBias = 127
	singleExpPos  = 23
	singleExpMask = 0xFF
	singleSignPos = 31
	singleFracBit = 0x7FFFFF

	halfExpBias = 15
	halfExpPos  = 10
	halfExpMask = 0x1F
	halfSignPos = 15
	halfFracBit = 0x3FF

	doubleExpBias = 1023
	doubleExpPos  = 52
	doubleExpMask = 0x7FF
	doubleSignPos = 63
	doubleFracBit = (uint64(1) << 52) - 1

	// Mantissa bits lost when single -> half: the low 13 bits of a
	// 23-bit single mantissa don't fit in a 10-bit half mantissa.
	singleToHalfLossMask = 0x1FFF
	// Mantissa bits lost when double -> single: the low 29 bits of a
	// 52-bit double mantissa don't fit in a 23-bit single mantissa.
	doubleToSingleLossMask = 0x1FFFFFFF
)

// halfBitsToFloat32Bits widens a half-float (as its raw 16-bit pattern)
// into the bit pattern of the equivalent float32.
func halfBitsToFloat32Bits(h uint16) uint32 {
	sign := uint32(h&(1<<halfSignPos)) << (singleSignPos - halfSignPos)
	exp := uint32(h>>halfExpPos) & halfExpMask
	frac := uint32(h & halfFracBit)

	switch exp {
	case 0:
		if frac == 0 {
			return sign
		}
		// Subnormal half: place frac as a normal single mantissa under
		// an exponent of 2^-14 (single biased exponent 113), then
		// subtract that same bias-only value to cancel the implicit
		// leading one we never had. This is the magic add/subtract
		// trick: it re-normalizes the subnormal through a single
		// precision bias without a mantissa-shifting loop.
		const magicBits = uint32(singleExpBias-halfExpBias+1) << singleExpPos
		magic := math.Float32frombits(magicBits)
		adjusted := math.Float32frombits(magicBits | (frac << (singleExpPos - halfExpPos)))
		return sign | math.Float32bits(adjusted-magic)
	case halfExpMask:
		return sign | singleExpMask<<singleExpPos | (frac << (singleExpPos - halfExpPos))
	default:
		rebiased := exp + (singleExpBias - halfExpBias)
		return sign | rebiased<<singleExpPos | (frac << (singleExpPos - halfExpPos))
	}
}

// float32BitsToHalfBits narrows a float32 bit pattern to the nearest
// half-float bit pattern, assuming the caller has already verified the
// narrowing is lossless (see singleNarrowsToHalf).
func float32BitsToHalfBits(bits uint32) uint16 {
	sign := uint16(bits>>(singleSignPos-halfSignPos)) & (1 << halfSignPos)
	exp := (bits >> singleExpPos) & singleExpMask
	frac := uint16((bits >> (singleExpPos - halfExpPos)) & halfFracBit)

	switch {
	case exp == singleExpMask:
		return sign | halfExpMask<<halfExpPos | frac
	case exp == 0:
		return sign
	case exp < singleExpBias-halfExpBias+1:
		// Half subnormal: the full significand, implicit one included,
		// shifted down to a multiple of 2^-24.
		sig := bits&singleFracBit | 1<<singleExpPos
		return sign | uint16(sig>>(singleExpBias-halfExpBias+1+singleExpPos-halfExpPos-exp))
	default:
		return sign | uint16(exp-(singleExpBias-halfExpBias))<<halfExpPos | frac
	}
}

// singleNarrowsToHalf reports whether the float32 bit pattern can be
// re-encoded as a half-float without losing precision: ±0, ±Inf, NaN
// always qualify; a value in the normal half range qualifies when the
// low 13 mantissa bits (those a half cannot represent) are zero, and a
// value in the half subnormal range qualifies when it is a whole
// multiple of the smallest half subnormal, 2^-24.
func singleNarrowsToHalf(bits uint32) bool {
	exp := int((bits >> singleExpPos) & singleExpMask)
	if exp == singleExpMask {
		return true // Inf or NaN
	}
	if exp == 0 && bits&singleFracBit == 0 {
		return true // ±0
	}
	lo := singleExpBias - halfExpBias + 1
	hi := singleExpBias + halfExpBias
	if exp >= lo-halfExpPos && exp < lo {
		sig := bits&singleFracBit | 1<<singleExpPos
		shift := lo + (singleExpPos - halfExpPos) - exp
		return sig&(1<<shift-1) == 0
	}
	return exp >= lo && exp <= hi && bits&singleToHalfLossMask == 0
}

// doubleBitsToSingleBits narrows a float64 bit pattern to the nearest
// float32 bit pattern, assuming the caller has verified losslessness
// (see doubleNarrowsToSingle).
func doubleBitsToSingleBits(bits uint64) uint32 {
	sign := uint32(bits>>(doubleSignPos-singleSignPos)) & (1 << singleSignPos)
	exp := (bits >> doubleExpPos) & doubleExpMask
	frac := uint32((bits >> (doubleExpPos - singleExpPos)) & singleFracBit)

	switch {
	case exp == doubleExpMask:
		return sign | singleExpMask<<singleExpPos | frac
	case exp == 0:
		return sign
	default:
		return sign | uint32(exp-(doubleExpBias-singleExpBias))<<singleExpPos | frac
	}
}

// doubleNarrowsToSingle reports whether the float64 bit pattern can be
// re-encoded as a normal float32 (or ±0, ±Inf, NaN) without losing
// precision. Values below the normal float32 exponent range report
// false, even where a float32 subnormal would hold them exactly.
func doubleNarrowsToSingle(bits uint64) bool {
	exp := int((bits >> doubleExpPos) & doubleExpMask)
	if exp == doubleExpMask {
		return true // Inf or NaN
	}
	if exp == 0 && bits&doubleFracBit == 0 {
		return true // ±0
	}
	lo := doubleExpBias - singleExpBias + 1
	hi := doubleExpBias + singleExpBias
	return exp >= lo && exp <= hi && bits&doubleToSingleLossMask == 0
}

// narrowFloatBits picks the shortest of {half, single, double} that
// losslessly represents v, returning the chosen CBOR major-7 size class
// (sizeShort/sizeWord/sizeLong) and the raw bits in that width
// (zero-extended into a uint64 for uniform handling by the formatter).
// A value below the normal float32 range is kept as a double.
func narrowFloatBits(v float64) (sizeClass uint8, bits uint64) {
	dbits := math.Float64bits(v)
	if !doubleNarrowsToSingle(dbits) {
		return sizeLong, dbits
	}
	sbits := doubleBitsToSingleBits(dbits)
	if !singleNarrowsToHalf(sbits) {
		return sizeWord, uint64(sbits)
	}
	return sizeShort, uint64(float32BitsToHalfBits(sbits))
}
