package cbor

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Encoder writes CBOR items to a Sink. It holds no buffer of its own:
// every Fmt/Put call measures the bytes it needs, asks the sink whether
// they fit, and if so hands them over. Len reports the running total of
// bytes every call needed across the Encoder's lifetime, counted whether
// or not the sink had room for them, which is also how a dry-run pass
// against a NullSink (see sink.go) yields an exact size to allocate for
// a real pass.
type Encoder struct {
	sink    Sink
	written int
}

// NewEncoder creates an Encoder writing to sink.
func NewEncoder(sink Sink) *Encoder {
	return &Encoder{sink: sink}
}

// Len returns the total number of bytes the calls so far needed,
// including bytes a sink rejected for lack of room (and, against a
// NullSink, bytes that were only counted).
func (e *Encoder) Len() int { return e.written }

func (e *Encoder) putHead(major MajorType, value uint64) error {
	n := encodedHeadLen(value)
	// len accumulates unconditionally: a sink reporting "does not fit"
	// still needs its would-be length counted, or a dry run against
	// NullSink couldn't report the true required size (spec.md 4.6).
	e.written += n
	if !e.sink.Fits(n) {
		return ErrEnd
	}
	var tmp [9]byte
	encodeHeadInto(tmp[:n], major, value)
	e.sink.Append(tmp[:n])
	return nil
}

// putSimple writes an immediate (ai < 24) major-7 value.
func (e *Encoder) putSimple(value uint8) error {
	return e.putHead(TypeFloat, uint64(value))
}

// FmtUint writes a non-negative integer.
func (e *Encoder) FmtUint(value uint64) error {
	return e.putHead(TypeUint, value)
}

// FmtInt writes a signed integer, choosing major type uint or nint
// according to its sign.
func (e *Encoder) FmtInt(value int64) error {
	if value >= 0 {
		return e.putHead(TypeUint, uint64(value))
	}
	return e.putHead(TypeNint, uint64(-1-value))
}

// FmtTag writes a tag head. The tagged content must be formatted by a
// separate call immediately after.
func (e *Encoder) FmtTag(tag uint64) error {
	return e.putHead(TypeTag, tag)
}

// FmtBool writes a CBOR boolean.
func (e *Encoder) FmtBool(value bool) error {
	if value {
		return e.putSimple(SimpleTrue)
	}
	return e.putSimple(SimpleFalse)
}

// FmtNull writes the null simple value.
func (e *Encoder) FmtNull() error { return e.putSimple(SimpleNull) }

// FmtUndefined writes the undefined simple value.
func (e *Encoder) FmtUndefined() error { return e.putSimple(SimpleUndef) }

// FmtSimple writes a raw simple value. Values 24-31 are reserved by RFC
// 8949 and rejected.
func (e *Encoder) FmtSimple(value uint8) error {
	if value >= sizeByte && value <= 31 {
		return ErrInvalidType
	}
	return e.putHead(TypeFloat, uint64(value))
}

// FmtBstr writes only the head of a definite-length byte string of the
// given length; the caller is responsible for writing length bytes of
// payload afterward (see PutBstr for the common, single-call case).
func (e *Encoder) FmtBstr(length int) error {
	return e.putHead(TypeBstr, uint64(length))
}

// FmtTstr writes only the head of a definite-length text string.
func (e *Encoder) FmtTstr(length int) error {
	return e.putHead(TypeTstr, uint64(length))
}

// PutBstr writes a complete byte string: head and payload.
func (e *Encoder) PutBstr(data []byte) error {
	if err := e.FmtBstr(len(data)); err != nil {
		return err
	}
	e.written += len(data)
	if !e.sink.Fits(len(data)) {
		return ErrEnd
	}
	e.sink.Append(data)
	return nil
}

// PutTstr writes a complete text string: head and payload. s's bytes are
// handed to the sink without copying.
func (e *Encoder) PutTstr(s string) error {
	if err := e.FmtTstr(len(s)); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	e.written += len(s)
	if !e.sink.Fits(len(s)) {
		return ErrEnd
	}
	data := unsafe.Slice(unsafe.StringData(s), len(s))
	e.sink.Append(data)
	return nil
}

// FmtArray writes a definite-length array head for count elements.
func (e *Encoder) FmtArray(count int) error {
	return e.putHead(TypeArray, uint64(count))
}

// FmtMap writes a definite-length map head for pairs key/value pairs.
func (e *Encoder) FmtMap(pairs int) error {
	return e.putHead(TypeMap, uint64(pairs))
}

func (e *Encoder) putIndefiniteHead(major MajorType) error {
	e.written++
	if !e.sink.Fits(1) {
		return ErrEnd
	}
	e.sink.Append([]byte{uint8(major)<<typeOffset | sizeIndefinite})
	return nil
}

// FmtArrayIndefinite writes an indefinite-length array head. Terminate
// the array with FmtEndIndefinite once every element is written.
func (e *Encoder) FmtArrayIndefinite() error { return e.putIndefiniteHead(TypeArray) }

// FmtMapIndefinite writes an indefinite-length map head.
func (e *Encoder) FmtMapIndefinite() error { return e.putIndefiniteHead(TypeMap) }

// FmtEndIndefinite writes the break marker that closes an indefinite
// array or map.
func (e *Encoder) FmtEndIndefinite() error {
	e.written++
	if !e.sink.Fits(1) {
		return ErrEnd
	}
	e.sink.Append([]byte{breakMarker})
	return nil
}

func floatByteWidth(sizeClass uint8) int {
	switch sizeClass {
	case sizeShort:
		return 2
	case sizeWord:
		return 4
	default:
		return 8
	}
}

func (e *Encoder) fmtFloatBits(sizeClass uint8, bits uint64) error {
	width := floatByteWidth(sizeClass)
	n := 1 + width
	e.written += n
	if !e.sink.Fits(n) {
		return ErrEnd
	}
	var tmp [9]byte
	tmp[0] = uint8(TypeFloat)<<typeOffset | sizeClass
	switch sizeClass {
	case sizeShort:
		binary.BigEndian.PutUint16(tmp[1:3], uint16(bits))
	case sizeWord:
		binary.BigEndian.PutUint32(tmp[1:5], uint32(bits))
	case sizeLong:
		binary.BigEndian.PutUint64(tmp[1:9], bits)
	}
	e.sink.Append(tmp[:n])
	return nil
}

// FmtFloat writes v as a CBOR float, narrowing to a half-float when that
// loses no precision.
func (e *Encoder) FmtFloat(v float32) error {
	bits := math.Float32bits(v)
	if singleNarrowsToHalf(bits) {
		return e.fmtFloatBits(sizeShort, uint64(float32BitsToHalfBits(bits)))
	}
	return e.fmtFloatBits(sizeWord, uint64(bits))
}

// FmtDouble writes v as a CBOR float, narrowing to the shortest of
// half/single/double that represents it losslessly. A value below the
// normal float32 range is written as a double, not as a float32
// subnormal.
func (e *Encoder) FmtDouble(v float64) error {
	sizeClass, bits := narrowFloatBits(v)
	return e.fmtFloatBits(sizeClass, bits)
}

// FmtDecimalFraction writes tag(4) [exponent, mantissa].
func (e *Encoder) FmtDecimalFraction(exponent, mantissa int32) error {
	if err := e.FmtTag(TagDecimalFraction); err != nil {
		return err
	}
	if err := e.FmtArray(2); err != nil {
		return err
	}
	if err := e.FmtInt(int64(exponent)); err != nil {
		return err
	}
	return e.FmtInt(int64(mantissa))
}
