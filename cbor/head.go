package cbor

import (
	"encoding/binary"
	"math/bits"
)

// head is the decoded initial byte plus argument of a CBOR item.
type head struct {
	major MajorType
	// argument holds the decoded numeric argument for ai < 31. It is
	// meaningless for ai == 31 (indefinite marker / break).
	argument uint64
	// ai is the raw argument-info nibble (0-31), preserved so callers
	// can distinguish an indefinite marker from an immediate 31 (which
	// cannot occur: 31 is reserved for that marker).
	ai uint8
	// length is the total number of bytes the head itself occupies
	// (1 for immediate/indefinite, 1+2^n for a length-prefixed
	// argument).
	length int
}

// decodeHead reads the initial byte and any following argument bytes
// starting at buf[0]. max bounds the accepted size class: a size class
// whose byte width exceeds the destination type's capacity is reported
// as Overflow rather than silently truncated (spec.md 4.1, "OVERFLOW if
// the caller's max size class is exceeded").
func decodeHead(buf []byte, max uint8) (head, error) {
	if len(buf) == 0 {
		return head{}, ErrEnd
	}
	ib := buf[0]
	mt := MajorType(ib >> typeOffset)
	ai := ib & valueMask

	switch {
	case ai < sizeByte:
		return head{major: mt, argument: uint64(ai), ai: ai, length: 1}, nil
	case ai == sizeIndefinite:
		// Only legal for arrays/maps (indefinite container) or major
		// type 7 (break marker); callers that don't expect this reject
		// it themselves based on context.
		return head{major: mt, ai: ai, length: 1}, nil
	case ai >= 28 && ai <= 30:
		return head{}, ErrInvalid
	default:
		if ai > max {
			return head{}, ErrOverflow
		}
		nbytes := 1 << (ai - sizeByte)
		if len(buf) < 1+nbytes {
			return head{}, ErrEnd
		}
		var arg uint64
		switch nbytes {
		case 1:
			arg = uint64(buf[1])
		case 2:
			arg = uint64(binary.BigEndian.Uint16(buf[1:3]))
		case 4:
			arg = uint64(binary.BigEndian.Uint32(buf[1:5]))
		case 8:
			arg = binary.BigEndian.Uint64(buf[1:9])
		}
		return head{major: mt, argument: arg, ai: ai, length: 1 + nbytes}, nil
	}
}

// encodedHeadLen returns the number of bytes encodeHeadInto would write
// for (major, value), without writing anything. Mirrors
// BitsNonNegativeBinaryInteger/OctetsNonNegativeBinaryIntegerLength from
// the teacher's per/encode.go: the smallest size class is chosen via
// bits.Len64 on the value rather than a chain of comparisons.
func encodedHeadLen(value uint64) int {
	if value < sizeByte {
		return 1
	}
	return 1 + octetsForValue(value)
}

// octetsForValue returns the minimum power-of-two byte width (1, 2, 4, or
// 8) able to hold value, the same "smallest of {1,2,4,8}" rule the
// teacher's OctetsNonNegativeBinaryIntegerLength applies, specialized to
// CBOR's four fixed argument widths instead of an arbitrary octet count.
func octetsForValue(value uint64) int {
	switch n := bits.Len64(value); {
	case n <= 8:
		return 1
	case n <= 16:
		return 2
	case n <= 32:
		return 4
	default:
		return 8
	}
}

// sizeClassFor maps an octet width to its argument-info size-class
// constant.
func sizeClassFor(octets int) uint8 {
	switch octets {
	case 1:
		return sizeByte
	case 2:
		return sizeShort
	case 4:
		return sizeWord
	default:
		return sizeLong
	}
}

// encodeHeadInto writes the initial byte and argument for (major, value)
// into dst, which must be at least encodedHeadLen(value) bytes long, and
// returns the number of bytes written.
func encodeHeadInto(dst []byte, major MajorType, value uint64) int {
	ib := uint8(major) << typeOffset
	if value < sizeByte {
		dst[0] = ib | uint8(value)
		return 1
	}
	octets := octetsForValue(value)
	dst[0] = ib | sizeClassFor(octets)
	switch octets {
	case 1:
		dst[1] = uint8(value)
	case 2:
		binary.BigEndian.PutUint16(dst[1:3], uint16(value))
	case 4:
		binary.BigEndian.PutUint32(dst[1:5], uint32(value))
	case 8:
		binary.BigEndian.PutUint64(dst[1:9], value)
	}
	return 1 + octets
}
