// Package cbor provides a minimal, allocation-free-at-the-core codec for
// Concise Binary Object Representation (CBOR, RFC 8949).
//
// # Overview
//
// The package is built around two cooperating, cursor-style cores:
//
//   - Decoder walks an in-place byte slice without copying, exposing a
//     cursor that traverses nested containers, recovers primitive values,
//     and optionally resolves packed-CBOR references (draft-ietf-cbor-packed)
//     against a stack of shared-item tables.
//   - Encoder emits canonical head/body bytes into a caller-provided Sink,
//     with a dry-run mode ([NullSink]) that only computes the encoded
//     length.
//
// # Key Features
//
//   - Zero-copy decoding: getters return sub-slices of the input buffer
//   - Bounded recursion for container skipping and packed-reference
//     resolution (RecursionMax), with a separate bound on nested packed
//     tables (NestedTablesMax)
//   - A polymorphic encoder Sink with a fixed-capacity, zero-allocation
//     MemorySink plus a growable sink and a callback-pair sink for
//     integration with foreign buffer types
//
// # Scope
//
// This package targets protocols (CoAP, OSCORE, SenML, CORECONF) that rely
// on predictable, deterministic CBOR shapes. It deliberately omits
// date/time semantic interpretation, bignum arithmetic, and
// canonicalization beyond the shortest-head encoding the encoder naturally
// produces. Indefinite-length byte and text strings are rejected rather
// than parsed, since RFC 8949 permits but does not require support for
// them and the chunked form needs an allocator to reassemble.
//
// # Thread Safety
//
// A Decoder and an Encoder are plain values with no destructors; they
// borrow their buffers and do not own them. Multiple Decoders over the
// same immutable buffer may be used concurrently from different
// goroutines. Mutating a single Decoder or Encoder from more than one
// goroutine concurrently is undefined.
package cbor
