package cbor

import "github.com/thebagchi/nanocbor-go/internal/bytebuf"

// Sink is the destination an Encoder writes to. It mirrors the fits/
// append function-pointer pair of the original C encoder: Fits asks
// whether n more bytes can be accepted without writing anything, and
// Append commits them. Splitting the two lets an Encoder run a dry-run
// sizing pass (a Sink whose Fits always answers true and whose Append
// only counts bytes) before a real pass that actually stores them.
type Sink interface {
	// Fits reports whether n additional bytes can be written right now.
	Fits(n int) bool
	// Append writes data, which must satisfy a preceding, unconsumed
	// Fits(len(data)) == true.
	Append(data []byte)
}

// MemorySink writes into a fixed-capacity caller-supplied buffer and
// performs no allocation of its own.
type MemorySink struct {
	buf []byte
	n   int
}

// NewMemorySink wraps buf for writing. buf's length is the sink's total
// capacity; Bytes returns only the portion written so far.
func NewMemorySink(buf []byte) *MemorySink {
	return &MemorySink{buf: buf}
}

func (s *MemorySink) Fits(n int) bool { return s.n+n <= len(s.buf) }

func (s *MemorySink) Append(data []byte) { s.n += copy(s.buf[s.n:], data) }

// Len returns the number of bytes written so far.
func (s *MemorySink) Len() int { return s.n }

// Bytes returns the bytes written so far, a slice of the backing buffer.
func (s *MemorySink) Bytes() []byte { return s.buf[:s.n] }

// GrowingSink is the one allocating Sink in this package: it wraps a
// bytebuf.Buffer that doubles its backing array as needed. Scope it to
// call sites outside the hard-real-time path; everywhere else, prefer
// MemorySink sized from a prior NullSink dry run.
type GrowingSink struct {
	buf bytebuf.Buffer
}

func (s *GrowingSink) Fits(int) bool { return true }

func (s *GrowingSink) Append(data []byte) { s.buf.Append(data) }

// Bytes returns the bytes written so far.
func (s *GrowingSink) Bytes() []byte { return s.buf.Bytes() }

// Len returns the number of bytes written so far.
func (s *GrowingSink) Len() int { return s.buf.Len() }

// FuncSink adapts a pair of callbacks to the Sink interface, the direct
// analogue of the original C encoder's fits/append function pointers.
type FuncSink struct {
	FitsFunc   func(n int) bool
	AppendFunc func(data []byte)
}

func (s *FuncSink) Fits(n int) bool { return s.FitsFunc(n) }

func (s *FuncSink) Append(data []byte) { s.AppendFunc(data) }

// NullSink discards every Append but always reports that data fits,
// only counting bytes. An Encoder run against a NullSink computes the
// exact length a real encode would need, so callers can allocate a
// precisely sized buffer and encode a second time, byte-identically,
// into a MemorySink over it.
type NullSink struct {
	n int
}

func (s *NullSink) Fits(int) bool { return true }

func (s *NullSink) Append(data []byte) { s.n += len(data) }

// Len returns the total number of bytes that would have been written.
func (s *NullSink) Len() int { return s.n }
