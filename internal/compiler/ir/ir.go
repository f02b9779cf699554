// Package ir defines the typed intermediate representation the Attribute
// Resolver produces and every downstream compiler stage reads: FieldSpec,
// ReportGroup and Collection from spec.md §3, plus the element-kind and
// qualifier vocabulary used to populate them.
//
// Everything in this package exists only during the compile-time transform
// (spec.md §3 Lifecycle) — nothing here is imported by generated code.
package ir

import (
	"strings"

	"github.com/halfpeak/hidc/internal/compiler/diag"
)

// ReportKind classifies a FieldSpec/ReportGroup as Input, Output or Feature.
type ReportKind uint8

const (
	Input ReportKind = iota
	Output
	Feature
)

func (k ReportKind) String() string {
	switch k {
	case Input:
		return "Input"
	case Output:
		return "Output"
	case Feature:
		return "Feature"
	default:
		return "Unknown"
	}
}

// CollectionKind enumerates the HID collection kinds a field path may nest
// through (spec.md §3).
type CollectionKind uint8

const (
	Physical CollectionKind = iota
	Application
	Logical
	ReportCollection
	NamedArray
	UsageSwitch
	UsageModifier
)

// collectionCodes gives each CollectionKind its USB HID 1.11 §6.2.2.4 numeric
// code, used directly by the emitter.
var collectionCodes = map[CollectionKind]byte{
	Physical:         0x00,
	Application:      0x01,
	Logical:          0x02,
	ReportCollection: 0x03,
	NamedArray:       0x04,
	UsageSwitch:      0x05,
	UsageModifier:    0x06,
}

// Code returns the numeric HID collection-type code for k.
func (k CollectionKind) Code() byte { return collectionCodes[k] }

var collectionNames = map[string]CollectionKind{
	"physical":      Physical,
	"application":   Application,
	"logical":       Logical,
	"report":        ReportCollection,
	"named_array":   NamedArray,
	"usage_switch":  UsageSwitch,
	"usage_modifier": UsageModifier,
}

// ParseCollectionKind resolves a DSL collection-kind identifier (lower_snake
// case, case-insensitive) to a CollectionKind.
func ParseCollectionKind(name string) (CollectionKind, bool) {
	k, ok := collectionNames[strings.ToLower(name)]
	return k, ok
}

// Sign distinguishes signed and unsigned scalar element kinds.
type Sign uint8

const (
	Unsigned Sign = iota
	Signed
)

// ElementKind describes a FieldSpec's raw wire shape: a scalar integer of a
// given bit width and signedness, optionally repeated (array length > 1).
type ElementKind struct {
	Sign     Sign
	BitWidth uint8 // one of 1, 8, 16, 32
	// ArrayLen is the number of repeated elements; 1 for scalars.
	ArrayLen uint32
}

func (e ElementKind) IsArray() bool { return e.ArrayLen > 1 }

// NaturalLogicalBounds derives the default logical_min/logical_max for an
// element kind per spec.md §4.2: signed -2^(n-1)..2^(n-1)-1, unsigned 0..2^n-1.
func (e ElementKind) NaturalLogicalBounds() (min, max int32) {
	n := e.BitWidth
	if e.Sign == Signed {
		switch {
		case n >= 32:
			return -(1 << 31), (1 << 31) - 1
		default:
			return -(1 << (n - 1)), (1 << (n - 1)) - 1
		}
	}
	switch {
	case n >= 32:
		return 0, 0x7FFFFFFF // unsigned 32-bit max does not fit in int32; callers needing the
		// true unsigned range use UnsignedMax instead.
	default:
		return 0, int32((uint32(1) << n) - 1)
	}
}

// UnsignedMax returns the true unsigned maximum representable in BitWidth
// bits, as a uint32 (exact even for 32-bit fields, unlike NaturalLogicalBounds).
func (e ElementKind) UnsignedMax() uint32 {
	if e.BitWidth >= 32 {
		return 0xFFFFFFFF
	}
	return (uint32(1) << e.BitWidth) - 1
}

// Usage is either a single (usage_page, usage_id) pair or a (usage_min,
// usage_max) range. Exactly one form is populated; Resolver enforces the
// mutual exclusion from spec.md §4.2.
type Usage struct {
	Page uint16

	// Stacked usages, left to right (the "usage" attribute may repeat).
	IDs []uint16

	// Range form. HasRange is true iff usage_min/usage_max were given.
	HasRange       bool
	UsageMin       uint16
	UsageMax       uint16
}

// LogicalBounds carries the field's raw-value range and optional physical
// range/unit exponent (spec.md §3 FieldSpec).
type LogicalBounds struct {
	Min, Max int32

	HasPhysical         bool
	PhysicalMin, PhysicalMax int32

	HasUnitExponent bool
	UnitExponent    int32
}

// Qualifier is a single report-qualifier flag from spec.md §3 (the
// {Data|Constant, Variable|Array, Absolute|Relative, Wrap, NonLinear,
// NoPreferred, NullState, Volatile, BufferedBytes} set).
type Qualifier uint16

const (
	QConstant Qualifier = 1 << iota
	QVariable
	QRelative
	QWrap
	QNonLinear
	QNoPreferred
	QNullState
	QVolatile
	QBufferedBytes
)

// Has reports whether q includes flag.
func (q Qualifier) Has(flag Qualifier) bool { return q&flag != 0 }

// MainItemByte packs the qualifier set into the Main-item data value per
// USB HID 1.11 §6.2.2.5 (bit 0 Data/Constant ... bit 8 Buffered Bytes). The
// value never exceeds 9 bits, but is returned as a uint32 since that is
// what the Emitter's appendMain takes directly.
func (q Qualifier) MainItemByte() uint32 {
	var b uint32
	if q.Has(QConstant) {
		b |= 1 << 0
	}
	if q.Has(QVariable) {
		b |= 1 << 1
	}
	if q.Has(QRelative) {
		b |= 1 << 2
	}
	if q.Has(QWrap) {
		b |= 1 << 3
	}
	if q.Has(QNonLinear) {
		b |= 1 << 4
	}
	if q.Has(QNoPreferred) {
		b |= 1 << 5
	}
	if q.Has(QNullState) {
		b |= 1 << 6
	}
	if q.Has(QVolatile) {
		b |= 1 << 7
	}
	if q.Has(QBufferedBytes) {
		b |= 1 << 8
	}
	return b
}

// FieldSpec is one named data field in the record (spec.md §3).
type FieldSpec struct {
	Ident string

	Element ElementKind
	Usage   Usage
	Bounds  LogicalBounds

	Kind       ReportKind
	Qualifiers Qualifier

	ReportID uint8 // 0 means "no report ID"

	CollectionPath []CollectionKind

	// ReportSize/ReportCount, 0 meaning "use the derived default" until the
	// Resolver fills them in; after resolution both are always > 0.
	ReportSize  uint32
	ReportCount uint32

	// BitOffset is assigned by the Layout Planner: the field's first bit
	// within its ReportGroup, counting from 0 at the first bit after the
	// report-ID prefix (if any).
	BitOffset uint32

	// IsPadding marks a synthetic constant field the Layout Planner
	// inserted to round a group up to a byte boundary (spec.md §4.3). The
	// Emitter skips Usage emission for padding and the Packer always
	// writes it as zero.
	IsPadding bool

	// Parent is the Collection this field's Main item is declared inside;
	// set by the Resolver and used by the Layout Planner to splice a
	// synthetic padding field into the same scope as the last real field
	// of its group.
	Parent *Collection

	Span diag.Span
}

// BitSize returns the total bit span this field occupies: report_size *
// report_count.
func (f *FieldSpec) BitSize() uint64 {
	return uint64(f.ReportSize) * uint64(f.ReportCount)
}

// GroupKey identifies the ReportGroup a FieldSpec belongs to.
type GroupKey struct {
	ReportID uint8
	Kind     ReportKind
}

// ReportGroup is a set of FieldSpecs sharing the same (report_id,
// report_kind) (spec.md §3). Fields are kept in source order, which is the
// order layout and emission use.
type ReportGroup struct {
	Key    GroupKey
	Fields []*FieldSpec

	// Populated by the Layout Planner.
	ByteLength uint32
}

// Collection is a nested container in the Collection tree (spec.md §3). Its
// Decls list is the canonical declaration order the Descriptor Emitter
// walks: a Main item is emitted for each Decl in order, either a nested
// Collection (recursing, then EndCollection) or a single FieldSpec.
type Collection struct {
	Kind  CollectionKind
	Usage *Usage
	Decls []Decl
}

// Decl is one entry in a Collection's declaration order: exactly one of
// Collection/Field is non-nil.
type Decl struct {
	Collection *Collection
	Field      *FieldSpec
}

// InsertFieldAfter splices a synthetic FieldSpec decl immediately after an
// existing field's decl in c.Decls. It is used solely by the Layout
// Planner to place an auto-inserted padding field in the same declaration
// scope as the last real field of its group (spec.md §4.3).
func (c *Collection) InsertFieldAfter(after *FieldSpec, f *FieldSpec) {
	for i, d := range c.Decls {
		if d.Field == after {
			rest := append([]Decl{{Field: f}}, c.Decls[i+1:]...)
			c.Decls = append(c.Decls[:i+1:i+1], rest...)
			return
		}
	}
	// Fallback: append at the end if the anchor wasn't found (should not
	// happen for a well-formed Record).
	c.Decls = append(c.Decls, Decl{Field: f})
}

// Record is the top-level IR produced by the Attribute Resolver: the
// top-level declaration sequence plus every ReportGroup discovered while
// walking it (spec.md §3 Ownership).
type Record struct {
	Name string
	Root []Decl // top-level declarations, source order
	// Groups indexes every ReportGroup in the record by its key, for the
	// Layout Planner and Packer Synthesizer which operate per-group rather
	// than by walking the Collection tree.
	Groups map[GroupKey]*ReportGroup
	// GroupOrder preserves first-discovery order of the above map's keys,
	// since map iteration order is unspecified and output must be
	// deterministic (spec.md §5).
	GroupOrder []GroupKey
}
