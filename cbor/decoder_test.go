package cbor

import (
	"testing"
)

func TestGetUintBasic(t *testing.T) {
	d := NewDecoder(mustHex(t, "18ff"))
	v, n, err := d.GetUint8()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 255 || n != 2 {
		t.Fatalf("got value=%d n=%d, want 255/2", v, n)
	}
	if !d.AtEnd() {
		t.Fatalf("expected cursor exhausted")
	}
}

func TestGetUintOverflow(t *testing.T) {
	d := NewDecoder(mustHex(t, "190100")) // 256, doesn't fit uint8
	if _, _, err := d.GetUint8(); err != ErrOverflow {
		t.Fatalf("got %v, want ErrOverflow", err)
	}
}

func TestGetIntNegative(t *testing.T) {
	d := NewDecoder(mustHex(t, "20")) // -1
	v, n, err := d.GetInt8()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != -1 || n != 1 {
		t.Fatalf("got value=%d n=%d, want -1/1", v, n)
	}
}

func TestGetIntWrongType(t *testing.T) {
	d := NewDecoder(mustHex(t, "60")) // empty text string, not an integer
	if _, _, err := d.GetInt32(); err != ErrInvalidType {
		t.Fatalf("got %v, want ErrInvalidType", err)
	}
}

func TestGetInt8NintOverflow(t *testing.T) {
	// nint argument u=128 means value -1-128=-129, outside int8's
	// [-128,127] range.
	d := NewDecoder(mustHex(t, "3880"))
	if _, _, err := d.GetInt8(); err != ErrOverflow {
		t.Fatalf("got %v, want ErrOverflow", err)
	}
}

func TestGetInt8NintBoundary(t *testing.T) {
	// nint argument u=127 means value -1-127=-128, exactly int8's
	// minimum: must be accepted, not rejected.
	d := NewDecoder(mustHex(t, "387f"))
	v, _, err := d.GetInt8()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != -128 {
		t.Fatalf("got %d, want -128", v)
	}
}

func TestGetInt64NintOverflow(t *testing.T) {
	// nint argument u=0x8000000000000000 (2^63) means value
	// -1-2^63, which underflows int64's minimum (-2^63).
	d := NewDecoder(mustHex(t, "3b8000000000000000"))
	if _, _, err := d.GetInt64(); err != ErrOverflow {
		t.Fatalf("got %v, want ErrOverflow", err)
	}
}

func TestGetInt64UintOverflow(t *testing.T) {
	// uint argument u=0x8000000000000000 (2^63) exceeds int64's
	// maximum (2^63-1); must not silently wrap negative.
	d := NewDecoder(mustHex(t, "1b8000000000000000"))
	if _, _, err := d.GetInt64(); err != ErrOverflow {
		t.Fatalf("got %v, want ErrOverflow", err)
	}
}

func TestSequentialGettersAdvanceCursor(t *testing.T) {
	// [1, 2, 3] encoded as a definite array; walk it manually via
	// EnterArray to check each element advances independently.
	d := NewDecoder(mustHex(t, "83010203"))
	var arr Decoder
	if err := d.EnterArray(&arr); err != nil {
		t.Fatalf("EnterArray: %v", err)
	}
	for i, want := range []uint8{1, 2, 3} {
		v, _, err := arr.GetUint8()
		if err != nil {
			t.Fatalf("element %d: %v", i, err)
		}
		if v != want {
			t.Fatalf("element %d = %d, want %d", i, v, want)
		}
	}
	if !arr.AtEnd() {
		t.Fatalf("expected array exhausted")
	}
	if err := d.Leave(&arr); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if !d.AtEnd() {
		t.Fatalf("expected outer cursor exhausted after Leave")
	}
}

func TestNestedArrayLeaveAdvancesParentRemaining(t *testing.T) {
	// [[[1,2],3],4]: Leave must decrement the enclosing container's own
	// remaining-items count, not just its byte position, or an outer
	// array's trailing sibling gets folded into an inner array's loop
	// instead of being read as the outer array's own next element.
	d := NewDecoder(mustHex(t, "82828201020304"))
	var outer Decoder
	if err := d.EnterArray(&outer); err != nil {
		t.Fatalf("EnterArray outer: %v", err)
	}
	var mid Decoder
	if err := outer.EnterArray(&mid); err != nil {
		t.Fatalf("EnterArray mid: %v", err)
	}
	var inner Decoder
	if err := mid.EnterArray(&inner); err != nil {
		t.Fatalf("EnterArray inner: %v", err)
	}
	for i, want := range []uint8{1, 2} {
		v, _, err := inner.GetUint8()
		if err != nil {
			t.Fatalf("inner element %d: %v", i, err)
		}
		if v != want {
			t.Fatalf("inner element %d = %d, want %d", i, v, want)
		}
	}
	if !inner.AtEnd() {
		t.Fatalf("expected inner exhausted")
	}
	if err := mid.Leave(&inner); err != nil {
		t.Fatalf("Leave inner: %v", err)
	}
	if mid.AtEnd() {
		t.Fatalf("mid should still have one element (3) left after leaving inner")
	}
	v, _, err := mid.GetUint8()
	if err != nil {
		t.Fatalf("mid element: %v", err)
	}
	if v != 3 {
		t.Fatalf("got %d, want 3", v)
	}
	if !mid.AtEnd() {
		t.Fatalf("expected mid exhausted after its two elements")
	}
	if err := outer.Leave(&mid); err != nil {
		t.Fatalf("Leave mid: %v", err)
	}
	if outer.AtEnd() {
		t.Fatalf("outer should still have one element (4) left after leaving mid")
	}
	v, _, err = outer.GetUint8()
	if err != nil {
		t.Fatalf("outer element: %v", err)
	}
	if v != 4 {
		t.Fatalf("got %d, want 4 (outer's trailing sibling must not be consumed by mid)", v)
	}
	if !outer.AtEnd() {
		t.Fatalf("expected outer exhausted after its two elements")
	}
	if err := d.Leave(&outer); err != nil {
		t.Fatalf("Leave outer: %v", err)
	}
	if !d.AtEnd() {
		t.Fatalf("expected top-level cursor exhausted")
	}
}

func TestGetByteStringZeroCopy(t *testing.T) {
	raw := mustHex(t, "4401020304")
	d := NewDecoder(raw)
	bstr, err := d.GetByteString()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bstr) != 4 || bstr[0] != 1 || bstr[3] != 4 {
		t.Fatalf("got %v", bstr)
	}
	// Borrowed slice must alias the input, not a copy.
	if &bstr[0] != &raw[1] {
		t.Fatalf("GetByteString copied instead of borrowing")
	}
}

func TestGetTextStringValidatesUTF8(t *testing.T) {
	d := NewDecoder([]byte{0x61, 0xff}) // tstr(1) with an invalid UTF-8 byte
	if _, err := d.GetTextString(); err != ErrInvalid {
		t.Fatalf("got %v, want ErrInvalid", err)
	}
}

func TestGetTextStringIndefiniteRejected(t *testing.T) {
	d := NewDecoder(mustHex(t, "7f6161ff")) // indefinite tstr chunked as "a"
	if _, err := d.GetTextString(); err != ErrInvalidType {
		t.Fatalf("got %v, want ErrInvalidType", err)
	}
}

func TestIndefiniteArray(t *testing.T) {
	// [_ 1, 2]
	d := NewDecoder(mustHex(t, "9f0102ff"))
	var arr Decoder
	if err := d.EnterArray(&arr); err != nil {
		t.Fatalf("EnterArray: %v", err)
	}
	if !arr.ContainerIndefinite() {
		t.Fatalf("expected indefinite container")
	}
	var got []uint8
	for !arr.AtEnd() {
		v, _, err := arr.GetUint8()
		if err != nil {
			t.Fatalf("element: %v", err)
		}
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v", got)
	}
	if err := d.Leave(&arr); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if !d.AtEnd() {
		t.Fatalf("expected outer cursor exhausted")
	}
}

func TestGetTagThenByteString(t *testing.T) {
	// tag(24) h'01'
	d := NewDecoder(mustHex(t, "d8184101"))
	tag, err := d.GetTag()
	if err != nil {
		t.Fatalf("GetTag: %v", err)
	}
	if tag != 24 {
		t.Fatalf("got tag %d, want 24", tag)
	}
	bstr, err := d.GetByteString()
	if err != nil {
		t.Fatalf("GetByteString: %v", err)
	}
	if len(bstr) != 1 || bstr[0] != 1 {
		t.Fatalf("got %v", bstr)
	}
}

func TestGetDecimalFraction(t *testing.T) {
	// 4(-1, 27315) == 2731.5
	d := NewDecoder(mustHex(t, "c48220196aB3"))
	exp, mant, err := d.GetDecimalFraction()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp != -1 || mant != 27315 {
		t.Fatalf("got exponent=%d mantissa=%d", exp, mant)
	}
}

func TestGetKeyTextStringFindsValue(t *testing.T) {
	// {"a": 1, "b": 2}
	d := NewDecoder(mustHex(t, "a2616101616202"))
	var mp Decoder
	if err := d.EnterMap(&mp); err != nil {
		t.Fatalf("EnterMap: %v", err)
	}
	var value Decoder
	if err := mp.GetKeyTextString("b", &value); err != nil {
		t.Fatalf("GetKeyTextString: %v", err)
	}
	v, _, err := value.GetUint8()
	if err != nil {
		t.Fatalf("GetUint8: %v", err)
	}
	if v != 2 {
		t.Fatalf("got %d, want 2", v)
	}
}

func TestGetKeyTextStringNotFound(t *testing.T) {
	d := NewDecoder(mustHex(t, "a2616101616202"))
	var mp Decoder
	if err := d.EnterMap(&mp); err != nil {
		t.Fatalf("EnterMap: %v", err)
	}
	var value Decoder
	if err := mp.GetKeyTextString("z", &value); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestGetSubCBOR(t *testing.T) {
	raw := mustHex(t, "8301020304")
	d := NewDecoder(raw)
	sub, err := d.GetSubCBOR()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := raw[:4]
	if len(sub) != len(want) {
		t.Fatalf("got len %d, want %d", len(sub), len(want))
	}
	for i := range want {
		if sub[i] != want[i] {
			t.Fatalf("byte %d: got %#x want %#x", i, sub[i], want[i])
		}
	}
	next, _, err := d.GetUint8()
	if err != nil || next != 4 {
		t.Fatalf("expected cursor positioned after first array, got %d err=%v", next, err)
	}
}

func TestForkIsIndependentOfOriginal(t *testing.T) {
	d := NewDecoder(mustHex(t, "0102"))
	fork := d.Fork()
	if _, _, err := fork.GetUint8(); err != nil {
		t.Fatalf("fork GetUint8: %v", err)
	}
	// The fork advanced; the original must not have.
	v, _, err := d.GetUint8()
	if err != nil {
		t.Fatalf("original GetUint8: %v", err)
	}
	if v != 1 {
		t.Fatalf("got %d, want 1 (original should be unaffected by fork's advance)", v)
	}
}

func TestGetFloatWidensHalf(t *testing.T) {
	d := NewDecoder(mustHex(t, "f93e00")) // half 1.5
	v, err := d.GetFloat()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1.5 {
		t.Fatalf("got %v, want 1.5", v)
	}
}

func TestGetFloatRejectsDouble(t *testing.T) {
	d := NewDecoder(mustHex(t, "fb3ff8000000000000")) // double 1.5
	if _, err := d.GetFloat(); err != ErrInvalidType {
		t.Fatalf("got %v, want ErrInvalidType", err)
	}
}

func TestGetDoubleWidensAnyWidth(t *testing.T) {
	cases := []struct {
		hex  string
		want float64
	}{
		{"f93e00", 1.5},            // half
		{"fa3fc00000", 1.5},        // single
		{"fb3ff8000000000000", 1.5}, // double
	}
	for _, c := range cases {
		d := NewDecoder(mustHex(t, c.hex))
		v, err := d.GetDouble()
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.hex, err)
		}
		if v != c.want {
			t.Fatalf("%s: got %v, want %v", c.hex, v, c.want)
		}
	}
}

func TestEncodedLengthMatchesDecodedByteCount(t *testing.T) {
	var sink NullSink
	enc := NewEncoder(&sink)
	if err := enc.FmtUint(1 << 40); err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf := make([]byte, enc.Len())
	mem := NewMemorySink(buf)
	enc2 := NewEncoder(mem)
	if err := enc2.FmtUint(1 << 40); err != nil {
		t.Fatalf("encode pass 2: %v", err)
	}
	d := NewDecoder(mem.Bytes())
	_, n, err := d.GetUint64()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != enc.Len() {
		t.Fatalf("decoded byte count %d != encoded length %d", n, enc.Len())
	}
}
