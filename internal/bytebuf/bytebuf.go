// Package bytebuf provides a growable byte buffer for the one
// allocating corner of the cbor package: Encoder's GrowingSink. Every
// other sink is fixed-capacity and allocation-free.
package bytebuf

import "slices"

// InitialCapacity is the capacity a zero-value Buffer grows to on its
// first write, mirroring the teacher package's InitialBufferSize knob.
var InitialCapacity = 64

// Buffer is an append-only byte buffer with exponential growth. The
// zero value is ready to use.
type Buffer struct {
	data []byte
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the buffer's contents. The slice is valid until the next
// Append call.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Reset empties the buffer without releasing its backing array.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

// Append grows the buffer as needed and copies p onto its end.
//
// Growth doubles capacity (or takes the requested size if larger),
// guaranteeing O(1) amortized appends: the sum 1+2+4+...+n is O(n), so
// total copying across all grows stays linear in the bytes ultimately
// written. slices.Grow does the actual reallocation, leaving the
// doubling policy as the only thing this function decides.
func (b *Buffer) Append(p []byte) {
	b.grow(len(p))
	n := len(b.data)
	b.data = b.data[:n+len(p)]
	copy(b.data[n:], p)
}

func (b *Buffer) grow(n int) {
	if cap(b.data) < len(b.data)+n {
		needed := len(b.data) + n
		capacity := max(cap(b.data)*2, needed, InitialCapacity)
		b.data = slices.Grow(b.data, capacity-len(b.data))
	}
}
