package cbor

// MajorType identifies one of the eight CBOR semantic categories encoded
// in the top 3 bits of an item's initial byte.
type MajorType uint8

const (
	TypeUint  MajorType = 0
	TypeNint  MajorType = 1
	TypeBstr  MajorType = 2
	TypeTstr  MajorType = 3
	TypeArray MajorType = 4
	TypeMap   MajorType = 5
	TypeTag   MajorType = 6
	TypeFloat MajorType = 7
)

const (
	typeOffset = 5
	typeMask   = 0xE0
	valueMask  = 0x1F
)

// Argument-info size classes (the low 5 bits of the initial byte).
const (
	sizeByte       = 24
	sizeShort      = 25
	sizeWord       = 26
	sizeLong       = 27
	sizeIndefinite = 31
)

// Simple values living in major type 7.
const (
	SimpleFalse = 20
	SimpleTrue  = 21
	SimpleNull  = 22
	SimpleUndef = 23
)

// Tag numbers this package interprets semantically; every other tag
// passes through GetTag/GetTag64 untouched.
const (
	TagDecimalFraction = 4
	TagPackedTable     = 113
	TagPackedShared    = 6
)

// RecursionMax bounds the depth of nested container skips and packed
// reference resolutions. It is a compile-time-ish knob (an ordinary
// package var, not a config struct, per the teacher's convention of
// exposing small tunables as package-level values such as
// bitbuffer.InitialBufferSize).
var RecursionMax uint8 = 8

// NestedTablesMax bounds the number of concurrently active packed
// shared-item tables.
const NestedTablesMax = 8

// decoder flags, stored in Decoder.flags.
const (
	flagContainer uint8 = 1 << iota
	flagIndefinite
	flagPackedEnabled
	flagShared
)
