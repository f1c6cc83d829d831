package cbor

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func encodeToBytes(t *testing.T, fn func(*Encoder) error) []byte {
	t.Helper()
	var sink NullSink
	dry := NewEncoder(&sink)
	if err := fn(dry); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	buf := make([]byte, dry.Len())
	mem := NewMemorySink(buf)
	real := NewEncoder(mem)
	if err := fn(real); err != nil {
		t.Fatalf("real run: %v", err)
	}
	return mem.Bytes()
}

func TestFmtUintMinimalWidth(t *testing.T) {
	cases := []struct {
		value uint64
		want  string
	}{
		{0, "00"},
		{23, "17"},
		{24, "1818"},
		{255, "18ff"},
		{256, "190100"},
		{65535, "19ffff"},
		{65536, "1a00010000"},
		{1 << 32, "1b0000000100000000"},
	}
	for _, c := range cases {
		got := encodeToBytes(t, func(e *Encoder) error { return e.FmtUint(c.value) })
		want, _ := hex.DecodeString(c.want)
		if !bytes.Equal(got, want) {
			t.Fatalf("FmtUint(%d) = %x, want %x", c.value, got, want)
		}
	}
}

func TestFmtIntNegative(t *testing.T) {
	got := encodeToBytes(t, func(e *Encoder) error { return e.FmtInt(-1) })
	want, _ := hex.DecodeString("20")
	if !bytes.Equal(got, want) {
		t.Fatalf("FmtInt(-1) = %x, want %x", got, want)
	}
}

func TestFmtSimpleRejectsReserved(t *testing.T) {
	var sink NullSink
	e := NewEncoder(&sink)
	for v := uint8(24); v <= 31; v++ {
		if err := e.FmtSimple(v); err != ErrInvalidType {
			t.Fatalf("FmtSimple(%d) = %v, want ErrInvalidType", v, err)
		}
	}
}

func TestPutBstrRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	got := encodeToBytes(t, func(e *Encoder) error { return e.PutBstr(payload) })
	d := NewDecoder(got)
	out, err := d.GetByteString()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("got %v, want %v", out, payload)
	}
}

func TestPutTstrRoundTrip(t *testing.T) {
	got := encodeToBytes(t, func(e *Encoder) error { return e.PutTstr("hello") })
	d := NewDecoder(got)
	s, err := d.GetTextString()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s != "hello" {
		t.Fatalf("got %q", s)
	}
}

func TestFmtArrayAndElements(t *testing.T) {
	got := encodeToBytes(t, func(e *Encoder) error {
		if err := e.FmtArray(2); err != nil {
			return err
		}
		if err := e.FmtUint(1); err != nil {
			return err
		}
		return e.FmtUint(2)
	})
	d := NewDecoder(got)
	var arr Decoder
	if err := d.EnterArray(&arr); err != nil {
		t.Fatalf("EnterArray: %v", err)
	}
	v1, _, _ := arr.GetUint8()
	v2, _, _ := arr.GetUint8()
	if v1 != 1 || v2 != 2 {
		t.Fatalf("got %d,%d", v1, v2)
	}
}

func TestFmtArrayIndefiniteRoundTrip(t *testing.T) {
	got := encodeToBytes(t, func(e *Encoder) error {
		if err := e.FmtArrayIndefinite(); err != nil {
			return err
		}
		if err := e.FmtUint(1); err != nil {
			return err
		}
		if err := e.FmtUint(2); err != nil {
			return err
		}
		return e.FmtEndIndefinite()
	})
	want, _ := hex.DecodeString("9f0102ff")
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestFmtFloatNarrowsToHalf(t *testing.T) {
	got := encodeToBytes(t, func(e *Encoder) error { return e.FmtFloat(1.5) })
	want, _ := hex.DecodeString("f93e00")
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestFmtDoubleNarrowsToHalf(t *testing.T) {
	got := encodeToBytes(t, func(e *Encoder) error { return e.FmtDouble(1.5) })
	want, _ := hex.DecodeString("f93e00")
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestFmtDoubleKeepsPrecisionWhenNeeded(t *testing.T) {
	v := 0.1 // not exactly representable in half or single
	got := encodeToBytes(t, func(e *Encoder) error { return e.FmtDouble(v) })
	d := NewDecoder(got)
	mt, err := d.GetType()
	if err != nil {
		t.Fatalf("GetType: %v", err)
	}
	if mt != TypeFloat {
		t.Fatalf("got major type %d", mt)
	}
	if len(got) != 9 {
		t.Fatalf("expected a full double (9 bytes), got %d", len(got))
	}
}

func TestFmtDecimalFractionRoundTrip(t *testing.T) {
	got := encodeToBytes(t, func(e *Encoder) error { return e.FmtDecimalFraction(-1, 27315) })
	d := NewDecoder(got)
	exp, mant, err := d.GetDecimalFraction()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if exp != -1 || mant != 27315 {
		t.Fatalf("got exponent=%d mantissa=%d", exp, mant)
	}
}

func TestMemorySinkReportsEnd(t *testing.T) {
	mem := NewMemorySink(make([]byte, 1))
	e := NewEncoder(mem)
	if err := e.FmtUint(1000); err != ErrEnd {
		t.Fatalf("got %v, want ErrEnd", err)
	}
	// Len must still report the true required size (3 bytes: a 1-byte
	// head plus a 2-byte argument) even though the sink rejected it, so
	// a null-sink sizing pass and a short real sink behave the same way
	// with respect to Len.
	if got := e.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
}

func TestPutBstrLenAccumulatesOnShortSink(t *testing.T) {
	// Head (1 byte) fits in a 2-byte sink, but the 4-byte payload
	// doesn't; Len must still count the full 5 bytes this call needed.
	mem := NewMemorySink(make([]byte, 2))
	e := NewEncoder(mem)
	if err := e.PutBstr([]byte{1, 2, 3, 4}); err != ErrEnd {
		t.Fatalf("got %v, want ErrEnd", err)
	}
	if got := e.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}
}

func TestGrowingSinkNeverRejects(t *testing.T) {
	var sink GrowingSink
	e := NewEncoder(&sink)
	for i := 0; i < 1000; i++ {
		if err := e.FmtUint(uint64(i)); err != nil {
			t.Fatalf("i=%d: %v", i, err)
		}
	}
	d := NewDecoder(sink.Bytes())
	for i := 0; i < 1000; i++ {
		v, _, err := d.GetUint64()
		if err != nil {
			t.Fatalf("decode i=%d: %v", i, err)
		}
		if v != uint64(i) {
			t.Fatalf("i=%d: got %d", i, v)
		}
	}
}
