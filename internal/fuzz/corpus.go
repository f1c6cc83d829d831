// Package fuzz holds seed inputs for the cbor package's fuzz targets,
// grounded on the well-formed and packed fixtures exercised by
// _examples/original_source/tests/automated/test_decoder.c and
// test_decoder_packed.c. Keeping the corpus here, rather than inline in
// the *_test.go files, mirrors the teacher's convention of splitting
// reusable fixtures from the table-driven tests that consume them.
package fuzz

// PlainSeeds are well-formed, non-packed CBOR items of varying shape:
// integers at each size class, strings, indefinite and definite
// containers, tags, and floats.
var PlainSeeds = [][]byte{
	{0x00},                                     // uint 0
	{0x17},                                     // uint 23 (largest immediate)
	{0x18, 0xff},                               // uint 255
	{0x19, 0x01, 0x00},                         // uint 256
	{0x1a, 0x00, 0x01, 0x00, 0x00},              // uint 65536
	{0x1b, 0, 0, 0, 1, 0, 0, 0, 0},              // uint 1<<32
	{0x20},                                     // nint -1
	{0x38, 0x29},                               // nint -42
	{0x40},                                     // empty byte string
	{0x44, 0x01, 0x02, 0x03, 0x04},             // byte string
	{0x60},                                     // empty text string
	{0x61, 0x61},                               // text string "a"
	{0x83, 0x01, 0x02, 0x03},                   // array [1,2,3]
	{0x9f, 0x01, 0x02, 0x03, 0xff},             // indefinite array [_ 1,2,3]
	{0xa1, 0x61, 0x61, 0x01},                   // map {"a": 1}
	{0xc4, 0x82, 0x20, 0x19, 0x6a, 0xb3},        // tag(4) decimal fraction
	{0xf4},                                     // false
	{0xf5},                                     // true
	{0xf6},                                     // null
	{0xf7},                                     // undefined
	{0xf9, 0x3e, 0x00},                         // half 1.5
	{0xfa, 0x3f, 0xc0, 0x00, 0x00},              // single 1.5
	{0xfb, 0x3f, 0xf8, 0, 0, 0, 0, 0, 0},         // double 1.5
	{},                                          // empty input
	{0x1c},                                     // reserved argument-info
	{0xff},                                     // stray break marker
}

// PackedSeeds are packed-CBOR items (tag 113 tables, simple(0..15) and
// tag(6) references), grounded directly on
// test_decoder_packed.c fixtures.
var PackedSeeds = [][]byte{
	{0xd8, 0x71, 0x82, 0x81, 0xf6, 0xe0}, // table [null], ref simple(0)
	{0xd8, 0x71, 0x82, 0x80, 0xf6},       // empty table, not a reference
	{0xd8, 0x71, 0x82, 0x81, 0xe0, 0xe0}, // self-referencing loop
	{0xe0},                               // bare simple(0), no table at all
	// 113([[0,false*15,true,null], [6(0), 6(-1), 6(simple(0))]])
	{
		0xD8, 0x71, 0x82, 0x92, 0x00,
		0xF4, 0xF4, 0xF4, 0xF4, 0xF4, 0xF4, 0xF4, 0xF4, 0xF4, 0xF4, 0xF4, 0xF4, 0xF4, 0xF4, 0xF4,
		0xF5, 0xF6,
		0x83, 0xC6, 0x00, 0xC6, 0x20, 0xC6, 0xE0,
	},
	// nested tables with indirection
	{0xD8, 0x71, 0x82, 0x82, 0xF5, 0xE0, 0xD8, 0x71, 0x82, 0x81, 0xF4, 0xE2},
	// max nesting of table definitions, four deep, terminated by null
	{
		0xD8, 0x71, 0x82, 0x80, 0xD8, 0x71, 0x82, 0x80,
		0xD8, 0x71, 0x82, 0x80, 0xD8, 0x71, 0x82, 0x80, 0xF6,
	},
}
