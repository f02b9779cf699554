package resolve

import "github.com/halfpeak/hidc/internal/compiler/ir"

// scalarKinds maps the Go scalar type names the DSL accepts to their HID
// element kind (sign + bit width). spec.md §3 restricts FieldSpec element
// kinds to bit widths in {1, 8, 16, 32}; there is no native 1-bit Go type,
// so a 1-bit field is declared as uint8 storage with an explicit
// report_size=1 attribute (handled in resolve.go, not here).
var scalarKinds = map[string]ir.ElementKind{
	"uint8":  {Sign: ir.Unsigned, BitWidth: 8},
	"int8":   {Sign: ir.Signed, BitWidth: 8},
	"uint16": {Sign: ir.Unsigned, BitWidth: 16},
	"int16":  {Sign: ir.Signed, BitWidth: 16},
	"uint32": {Sign: ir.Unsigned, BitWidth: 32},
	"int32":  {Sign: ir.Signed, BitWidth: 32},
}

// elementKindFor resolves a parsed Go base type name (and array length, 0
// for scalars) to an ir.ElementKind. ok is false for any type the DSL does
// not support.
func elementKindFor(baseType string, arrayLen int) (ir.ElementKind, bool) {
	k, ok := scalarKinds[baseType]
	if !ok {
		return ir.ElementKind{}, false
	}
	if arrayLen > 0 {
		k.ArrayLen = uint32(arrayLen)
	} else {
		k.ArrayLen = 1
	}
	return k, true
}
