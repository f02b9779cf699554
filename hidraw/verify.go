package hidraw

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/halfpeak/hidc/usbhid"
)

// Diff compares a compiled descriptor against the kernel's live copy read
// back from a hidraw device node, returning a human-readable mismatch
// description, or "" if they are byte-for-byte identical.
func Diff(compiled, live []byte) string {
	if bytes.Equal(compiled, live) {
		return ""
	}
	if len(compiled) != len(live) {
		return fmt.Sprintf("length mismatch: compiled %d bytes, device reports %d bytes", len(compiled), len(live))
	}
	for i := range compiled {
		if compiled[i] != live[i] {
			return fmt.Sprintf("byte %d differs: compiled 0x%02x%s, device 0x%02x%s",
				i, compiled[i], describeByte(compiled, i), live[i], describeByte(live, i))
		}
	}
	return ""
}

// describeByte classifies b[i] for the diagnostic message: a Main item
// prefix byte names its item type, and the byte (or byte pair, for a 2-byte
// item) immediately following a Collection or Input/Output/Feature prefix is
// decoded as a collection type code or qualifier bit field respectively
// (USB HID 1.11 §6.2.2.4-6). Returns "" when b[i] isn't one of these.
func describeByte(b []byte, i int) string {
	if kind := mainItemName(b[i]); kind != "" {
		return " (" + kind + " item)"
	}
	if i == 0 {
		return ""
	}
	prefix := b[i-1]
	switch mainItemName(prefix) {
	case "Collection":
		return " (" + collectionName(b[i]) + " collection)"
	case "Input", "Output", "Feature":
		v := uint16(b[i])
		if prefix&0x03 == 2 && i+1 < len(b) {
			v |= uint16(b[i+1]) << 8
		}
		if names := qualifierNames(v); names != "" {
			return " (" + names + ")"
		}
	}
	return ""
}

func mainItemName(b byte) string {
	switch b &^ 0x03 {
	case usbhid.ItemInput:
		return "Input"
	case usbhid.ItemOutput:
		return "Output"
	case usbhid.ItemCollection:
		return "Collection"
	case usbhid.ItemFeature:
		return "Feature"
	case usbhid.ItemEndCollection:
		return "EndCollection"
	default:
		return ""
	}
}

func collectionName(code byte) string {
	switch code {
	case usbhid.CollectionPhysical:
		return "Physical"
	case usbhid.CollectionApplication:
		return "Application"
	case usbhid.CollectionLogical:
		return "Logical"
	case usbhid.CollectionReport:
		return "Report"
	case usbhid.CollectionNamedArray:
		return "NamedArray"
	case usbhid.CollectionUsageSwitch:
		return "UsageSwitch"
	case usbhid.CollectionUsageModifier:
		return "UsageModifier"
	default:
		return fmt.Sprintf("unknown(0x%02x)", code)
	}
}

// qualifierNames decodes a Main item's data value into its set flag names.
// The Data/Constant, Array/Variable and Absolute/Relative axes always report
// whichever side is set (e.g. "constant" vs "data"); the remaining flags are
// named only when set. BufferedBytes (bit 8) can only be set in an item that
// uses the 2-byte data form.
func qualifierNames(v uint16) string {
	var flags []string
	axis := func(bit uint16, set, unset string) {
		if v&bit != 0 {
			flags = append(flags, set)
		} else {
			flags = append(flags, unset)
		}
	}
	axis(usbhid.MainConstant, "constant", "data")
	axis(usbhid.MainVariable, "variable", "array")
	axis(usbhid.MainRelative, "relative", "absolute")
	if v&usbhid.MainWrap != 0 {
		flags = append(flags, "wrap")
	}
	if v&usbhid.MainNonLinear != 0 {
		flags = append(flags, "non_linear")
	}
	if v&usbhid.MainNoPreferred != 0 {
		flags = append(flags, "no_preferred")
	}
	if v&usbhid.MainNullState != 0 {
		flags = append(flags, "null_state")
	}
	if v&usbhid.MainVolatile != 0 {
		flags = append(flags, "volatile")
	}
	if v&usbhid.MainBufferedByte != 0 {
		flags = append(flags, "buffered_bytes")
	}
	return strings.Join(flags, ",")
}
