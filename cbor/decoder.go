package cbor

import (
	"encoding/binary"
	"errors"
	"math"
	"unicode/utf8"
	"unsafe"
)

// Decoder is a cursor over an in-place CBOR byte slice. It borrows data
// and any packed-table slices; it owns none of them and has no
// destructor. The zero value is not usable; construct one with
// NewDecoder or a packed variant.
type Decoder struct {
	data      []byte
	remaining uint64
	flags     uint8
	tables    [NestedTablesMax][]byte
	numTables int
}

// NewDecoder creates a top-level decoder over buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{data: buf}
}

// NewDecoderPacked creates a top-level decoder with packed-CBOR
// resolution enabled and an empty table stack.
func NewDecoderPacked(buf []byte) *Decoder {
	return &Decoder{data: buf, flags: flagPackedEnabled}
}

// NewDecoderPackedWithTable creates a packed-enabled decoder over buf
// with one outer shared-item table pre-installed from table. table must
// be a well-formed CBOR array head (its payload need not be fully
// well-formed; elements are only interpreted lazily, on lookup).
func NewDecoderPackedWithTable(buf, table []byte) (*Decoder, error) {
	h, err := decodeHead(table, sizeLong)
	if err != nil {
		return nil, ErrPackedFormat
	}
	if h.major != TypeArray {
		return nil, ErrPackedFormat
	}
	d := NewDecoderPacked(buf)
	d.tables[0] = table
	d.numTables = 1
	return d, nil
}

// Fork returns an independent copy of d's cursor state. Decoder is a
// plain value with no owned resources, so this is just `tmp := *d`
// wherever the original C needs lookahead (e.g. "peek the type without
// consuming"); exported since callers implementing their own lookahead
// benefit from it too.
func (d *Decoder) Fork() *Decoder {
	cp := *d
	return &cp
}

// AtEnd reports whether the cursor is exhausted: past the end of the
// buffer, at the break marker of an indefinite container, or (for a
// definite container) out of remaining items.
func (d *Decoder) AtEnd() bool {
	if len(d.data) == 0 {
		return true
	}
	if d.flags&flagContainer != 0 {
		if d.flags&flagIndefinite != 0 {
			return d.data[0] == breakMarker
		}
		return d.remaining == 0
	}
	return false
}

const breakMarker = uint8(TypeFloat)<<typeOffset | sizeIndefinite

// InContainer reports whether the cursor is positioned inside an array
// or map.
func (d *Decoder) InContainer() bool {
	return d.flags&flagContainer != 0
}

// ContainerIndefinite reports whether the enclosing container has
// indefinite length.
func (d *Decoder) ContainerIndefinite() bool {
	return d.flags&(flagContainer|flagIndefinite) == flagContainer|flagIndefinite
}

// ContainerRemaining returns the number of items still expected in the
// enclosing container. For a map this counts keys and values separately
// (twice the number of pairs). The result is undefined outside a
// container or for an indefinite-length one.
func (d *Decoder) ContainerRemaining() uint64 {
	return d.remaining
}

// ArrayItemsRemaining is ContainerRemaining under the array name.
func (d *Decoder) ArrayItemsRemaining() uint64 {
	return d.remaining
}

// MapItemsRemaining returns the number of key/value pairs remaining.
func (d *Decoder) MapItemsRemaining() uint64 {
	return d.remaining / 2
}

// rawType returns the major type at the cursor without packed
// resolution, or an End error if exhausted.
func (d *Decoder) rawType() (MajorType, error) {
	if d.AtEnd() {
		return 0, ErrEnd
	}
	return MajorType(d.data[0] >> typeOffset), nil
}

// GetType returns the major type of the item at the cursor, transparently
// resolving packed references first.
func (d *Decoder) GetType() (MajorType, error) {
	var target Decoder
	_, err := d.follow(&target)
	if err != nil {
		return 0, err
	}
	return target.rawType()
}

// rawGetUint64 decodes a non-negative integer argument of the given
// major type, bounded by max (one of sizeByte/sizeShort/sizeWord/
// sizeLong), and returns its value and the number of bytes the head
// occupied.
func (d *Decoder) rawGetUint64(want MajorType, max uint8) (uint64, int, error) {
	mt, err := d.rawType()
	if err != nil {
		return 0, 0, err
	}
	if mt != want {
		return 0, 0, ErrInvalidType
	}
	h, err := decodeHead(d.data, max)
	if err != nil {
		return 0, 0, err
	}
	if h.ai == sizeIndefinite {
		return 0, 0, ErrInvalidType
	}
	d.advance(h.length)
	return h.argument, h.length, nil
}

func (d *Decoder) advance(n int) {
	d.data = d.data[n:]
	if d.flags&flagContainer != 0 {
		d.remaining--
	}
}

// getUintWidth implements GetUint8/16/32/64: decode a TypeUint item and
// reject values too large for bits.
func getUintWidth[T ~uint8 | ~uint16 | ~uint32 | ~uint64](d *Decoder, bitSize int) (T, int, error) {
	var target Decoder
	substituted, err := d.follow(&target)
	if err != nil {
		return 0, 0, err
	}
	value, n, err := target.rawGetUint64(TypeUint, sizeLong)
	if err != nil {
		return 0, 0, err
	}
	if bitSize < 64 && value >= (uint64(1)<<uint(bitSize)) {
		return 0, 0, ErrOverflow
	}
	if err := d.finishGetter(&target, substituted); err != nil {
		return 0, 0, err
	}
	return T(value), n, nil
}

// finishGetter performs the packed post-resolution bookkeeping described
// in spec.md 4.5. When a substitution occurred, target was a reference
// living in some packed table and the *original* cursor d must instead
// be advanced by exactly one logical item (the reference itself, under
// a fresh recursion budget) regardless of how many bytes the referenced
// value occupied elsewhere. When no substitution occurred, target simply
// is d's own advanced state and is copied back into d.
func (d *Decoder) finishGetter(target *Decoder, substituted bool) error {
	if substituted {
		return d.Skip()
	}
	*d = *target
	return nil
}

// GetUint8 decodes a non-negative integer fitting in a uint8.
func (d *Decoder) GetUint8() (uint8, int, error) { return getUintWidth[uint8](d, 8) }

// GetUint16 decodes a non-negative integer fitting in a uint16.
func (d *Decoder) GetUint16() (uint16, int, error) { return getUintWidth[uint16](d, 16) }

// GetUint32 decodes a non-negative integer fitting in a uint32.
func (d *Decoder) GetUint32() (uint32, int, error) { return getUintWidth[uint32](d, 32) }

// GetUint64 decodes a non-negative integer fitting in a uint64.
func (d *Decoder) GetUint64() (uint64, int, error) { return getUintWidth[uint64](d, 64) }

// getIntWidth implements GetInt8/16/32/64: decode either a TypeUint or a
// TypeNint item (negative values are encoded as -1-u) and reject values
// outside [min,max].
func getIntWidth[T ~int8 | ~int16 | ~int32 | ~int64](d *Decoder, bitSize int) (T, int, error) {
	var target Decoder
	substituted, err := d.follow(&target)
	if err != nil {
		return 0, 0, err
	}
	mt, err := target.rawType()
	if err != nil {
		return 0, 0, err
	}
	var (
		n     int
		value int64
	)
	switch mt {
	case TypeUint:
		u, consumed, err := target.rawGetUint64(TypeUint, sizeLong)
		if err != nil {
			return 0, 0, err
		}
		// Largest u representable as a non-negative T is 2^(bitSize-1)-1;
		// checked even at bitSize==64, where int64(u) would otherwise
		// silently wrap negative for u >= 2^63.
		if u > (uint64(1)<<uint(bitSize-1))-1 {
			return 0, 0, ErrOverflow
		}
		value, n = int64(u), consumed
	case TypeNint:
		u, consumed, err := target.rawGetUint64(TypeNint, sizeLong)
		if err != nil {
			return 0, 0, err
		}
		// value = -1-u must not fall below T's minimum, -2^(bitSize-1);
		// that bounds u to at most 2^(bitSize-1)-1, same limit as above,
		// again checked even at bitSize==64.
		if u > (uint64(1)<<uint(bitSize-1))-1 {
			return 0, 0, ErrOverflow
		}
		value, n = -1-int64(u), consumed
	default:
		return 0, 0, ErrInvalidType
	}
	if err := d.finishGetter(&target, substituted); err != nil {
		return 0, 0, err
	}
	return T(value), n, nil
}

// GetInt8 decodes a signed integer fitting in an int8.
func (d *Decoder) GetInt8() (int8, int, error) { return getIntWidth[int8](d, 8) }

// GetInt16 decodes a signed integer fitting in an int16.
func (d *Decoder) GetInt16() (int16, int, error) { return getIntWidth[int16](d, 16) }

// GetInt32 decodes a signed integer fitting in an int32.
func (d *Decoder) GetInt32() (int32, int, error) { return getIntWidth[int32](d, 32) }

// GetInt64 decodes a signed integer fitting in an int64.
func (d *Decoder) GetInt64() (int64, int, error) { return getIntWidth[int64](d, 64) }

// GetTag decodes a tag head as a uint32 without descending into its
// content.
func (d *Decoder) GetTag() (uint32, error) {
	var target Decoder
	substituted, err := d.follow(&target)
	if err != nil {
		return 0, err
	}
	value, _, err := target.rawGetUint64(TypeTag, sizeWord)
	if err != nil {
		return 0, err
	}
	target.remaining = d.remaining // the content still counts as the item
	if err := d.finishGetter(&target, substituted); err != nil {
		return 0, err
	}
	return uint32(value), nil
}

// GetTag64 decodes a tag head as a uint64 without descending into its
// content.
func (d *Decoder) GetTag64() (uint64, error) {
	var target Decoder
	substituted, err := d.follow(&target)
	if err != nil {
		return 0, err
	}
	value, _, err := target.rawGetUint64(TypeTag, sizeLong)
	if err != nil {
		return 0, err
	}
	target.remaining = d.remaining // the content still counts as the item
	if err := d.finishGetter(&target, substituted); err != nil {
		return 0, err
	}
	return value, nil
}

// rawGetString decodes a definite-length byte or text string payload,
// returning a slice borrowed from the underlying buffer. Indefinite
// length strings are rejected with ErrInvalidType: RFC 8949 permits but
// does not require chunked string support, and reassembling chunks needs
// an allocator this package doesn't use.
func (d *Decoder) rawGetString(want MajorType) ([]byte, int, error) {
	mt, err := d.rawType()
	if err != nil {
		return nil, 0, err
	}
	if mt != want {
		return nil, 0, ErrInvalidType
	}
	if d.data[0]&valueMask == sizeIndefinite {
		return nil, 0, ErrInvalidType
	}
	h, err := decodeHead(d.data, sizeLong)
	if err != nil {
		return nil, 0, err
	}
	length := h.argument
	if length > uint64(len(d.data)-h.length) {
		return nil, 0, ErrEnd
	}
	payload := d.data[h.length : h.length+int(length)]
	total := h.length + int(length)
	d.advance(total)
	return payload, total, nil
}

// GetByteString returns a borrowed slice over a definite-length byte
// string's payload and advances past it.
func (d *Decoder) GetByteString() ([]byte, error) {
	var target Decoder
	substituted, err := d.follow(&target)
	if err != nil {
		return nil, err
	}
	payload, _, err := target.rawGetString(TypeBstr)
	if err != nil {
		return nil, err
	}
	if err := d.finishGetter(&target, substituted); err != nil {
		return nil, err
	}
	return payload, nil
}

// GetTextString returns a borrowed string over a definite-length text
// string's payload and advances past it. The payload is validated as
// UTF-8, as RFC 8949 requires for CBOR text strings, and converted to a
// string without copying via unsafe.String.
func (d *Decoder) GetTextString() (string, error) {
	var target Decoder
	substituted, err := d.follow(&target)
	if err != nil {
		return "", err
	}
	payload, _, err := target.rawGetString(TypeTstr)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(payload) {
		return "", ErrInvalid
	}
	if err := d.finishGetter(&target, substituted); err != nil {
		return "", err
	}
	if len(payload) == 0 {
		return "", nil
	}
	return unsafe.String(&payload[0], len(payload)), nil
}

// GetNull matches an exact null head and advances past it.
func (d *Decoder) GetNull() error {
	return d.matchSimple(SimpleNull)
}

// GetUndefined matches an exact undefined head and advances past it.
func (d *Decoder) GetUndefined() error {
	return d.matchSimple(SimpleUndef)
}

// GetBool decodes a CBOR boolean.
func (d *Decoder) GetBool() (bool, error) {
	var target Decoder
	substituted, err := d.follow(&target)
	if err != nil {
		return false, err
	}
	mt, err := target.rawType()
	if err != nil {
		return false, err
	}
	if mt != TypeFloat {
		return false, ErrInvalidType
	}
	var value bool
	switch target.data[0] & valueMask {
	case SimpleFalse:
		value = false
	case SimpleTrue:
		value = true
	default:
		return false, ErrInvalidType
	}
	target.advance(1)
	if err := d.finishGetter(&target, substituted); err != nil {
		return false, err
	}
	return value, nil
}

func (d *Decoder) matchSimple(simple uint8) error {
	var target Decoder
	substituted, err := d.follow(&target)
	if err != nil {
		return err
	}
	mt, err := target.rawType()
	if err != nil {
		return err
	}
	if mt != TypeFloat || target.data[0]&valueMask != simple {
		return ErrInvalidType
	}
	target.advance(1)
	return d.finishGetter(&target, substituted)
}

// GetSimple returns the raw simple-value byte (e.g. a CBOR true decodes
// to 21), skipping interpretation of assigned meanings.
func (d *Decoder) GetSimple() (uint8, error) {
	var target Decoder
	substituted, err := d.follow(&target)
	if err != nil {
		return 0, err
	}
	mt, err := target.rawType()
	if err != nil {
		return 0, err
	}
	if mt != TypeFloat {
		return 0, ErrInvalidType
	}
	ai := target.data[0] & valueMask
	if ai == sizeIndefinite {
		return 0, ErrInvalidType
	}
	if ai < sizeByte {
		target.advance(1)
		if err := d.finishGetter(&target, substituted); err != nil {
			return 0, err
		}
		return ai, nil
	}
	if ai != sizeByte {
		return 0, ErrInvalidType
	}
	if len(target.data) < 2 {
		return 0, ErrEnd
	}
	value := target.data[1]
	target.advance(2)
	if err := d.finishGetter(&target, substituted); err != nil {
		return 0, err
	}
	return value, nil
}

// GetFloat decodes a CBOR half- or single-precision float, widening a
// half to the equivalent float32. A double-precision item is rejected
// with ErrInvalidType: use GetDouble for that.
func (d *Decoder) GetFloat() (float32, error) {
	var target Decoder
	substituted, err := d.follow(&target)
	if err != nil {
		return 0, err
	}
	mt, err := target.rawType()
	if err != nil {
		return 0, err
	}
	if mt != TypeFloat {
		return 0, ErrInvalidType
	}
	var value float32
	switch target.data[0] & valueMask {
	case sizeShort:
		if len(target.data) < 3 {
			return 0, ErrEnd
		}
		value = math.Float32frombits(halfBitsToFloat32Bits(binary.BigEndian.Uint16(target.data[1:3])))
		target.advance(3)
	case sizeWord:
		if len(target.data) < 5 {
			return 0, ErrEnd
		}
		value = math.Float32frombits(binary.BigEndian.Uint32(target.data[1:5]))
		target.advance(5)
	default:
		return 0, ErrInvalidType
	}
	if err := d.finishGetter(&target, substituted); err != nil {
		return 0, err
	}
	return value, nil
}

// GetDouble decodes a CBOR float of any width (half, single, or
// double), widening to float64.
func (d *Decoder) GetDouble() (float64, error) {
	var target Decoder
	substituted, err := d.follow(&target)
	if err != nil {
		return 0, err
	}
	mt, err := target.rawType()
	if err != nil {
		return 0, err
	}
	if mt != TypeFloat {
		return 0, ErrInvalidType
	}
	var value float64
	switch target.data[0] & valueMask {
	case sizeShort:
		if len(target.data) < 3 {
			return 0, ErrEnd
		}
		value = float64(math.Float32frombits(halfBitsToFloat32Bits(binary.BigEndian.Uint16(target.data[1:3]))))
		target.advance(3)
	case sizeWord:
		if len(target.data) < 5 {
			return 0, ErrEnd
		}
		value = float64(math.Float32frombits(binary.BigEndian.Uint32(target.data[1:5])))
		target.advance(5)
	case sizeLong:
		if len(target.data) < 9 {
			return 0, ErrEnd
		}
		value = math.Float64frombits(binary.BigEndian.Uint64(target.data[1:9]))
		target.advance(9)
	default:
		return 0, ErrInvalidType
	}
	if err := d.finishGetter(&target, substituted); err != nil {
		return 0, err
	}
	return value, nil
}

// GetDecimalFraction decodes tag 4 (decimal fraction) followed by the
// 2-array [exponent, mantissa].
func (d *Decoder) GetDecimalFraction() (exponent int32, mantissa int32, err error) {
	tag, err := d.GetTag64()
	if err != nil {
		return 0, 0, err
	}
	if tag != TagDecimalFraction {
		return 0, 0, ErrInvalidType
	}
	var arr Decoder
	if err := d.EnterArray(&arr); err != nil {
		return 0, 0, err
	}
	e, _, err := arr.GetInt32()
	if err != nil {
		return 0, 0, err
	}
	m, _, err := arr.GetInt32()
	if err != nil {
		return 0, 0, err
	}
	if err := d.Leave(&arr); err != nil {
		return 0, 0, err
	}
	return e, m, nil
}

// GetKeyTextString scans the map d is positioned into (d must currently
// be positioned at a map key) for a text-string key equal to key,
// writing a cursor positioned at the matching value into out. It skips
// over each non-matching key/value pair using the skip engine. d is
// left positioned just past the matched value on success; on failure
// (ErrNotFound) d's position is undefined, as with any failed getter
// (spec.md 7: "a cursor left in an error state should be discarded").
func (d *Decoder) GetKeyTextString(key string, out *Decoder) error {
	for !d.AtEnd() {
		s, err := d.GetTextString()
		if err != nil {
			return err
		}
		if s == key {
			*out = *d
			return d.Skip()
		}
		if err := d.Skip(); err != nil {
			return err
		}
	}
	return ErrNotFound
}

// GetSubCBOR records the cursor's current position, skips exactly one
// item, and returns the verbatim bytes that item occupied so it can be
// forwarded without re-encoding.
func (d *Decoder) GetSubCBOR() ([]byte, error) {
	start := d.data
	if err := d.Skip(); err != nil {
		return nil, err
	}
	return start[:len(start)-len(d.data)], nil
}

// isNotFound reports whether err is the ErrNotFound sentinel, the one
// error that is not user-visible when it comes from packed resolution:
// it just means "no substitution occurred".
func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
