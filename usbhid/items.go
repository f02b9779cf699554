package usbhid

// Main item tag bytes (USB HID 1.11 §6.2.2.4), used by hidraw.Diff to
// classify a mismatching byte when comparing a compiled descriptor against
// a live device's copy.
const (
	ItemInput         byte = 0x80
	ItemOutput        byte = 0x90
	ItemCollection    byte = 0xA0
	ItemFeature       byte = 0xB0
	ItemEndCollection byte = 0xC0
)

// Collection type codes (§6.2.2.6).
const (
	CollectionPhysical      byte = 0x00
	CollectionApplication   byte = 0x01
	CollectionLogical       byte = 0x02
	CollectionReport        byte = 0x03
	CollectionNamedArray    byte = 0x04
	CollectionUsageSwitch   byte = 0x05
	CollectionUsageModifier byte = 0x06
)

// Main-item qualifier bits (§6.2.2.5), used by hidraw.Diff to name the flags
// of a Main item read back from hardware. The compiler's
// ir.Qualifier.MainItemByte sets the same bit positions without importing
// these constants.
const (
	MainConstant     uint16 = 1 << 0
	MainVariable     uint16 = 1 << 1
	MainRelative     uint16 = 1 << 2
	MainWrap         uint16 = 1 << 3
	MainNonLinear    uint16 = 1 << 4
	MainNoPreferred  uint16 = 1 << 5
	MainNullState    uint16 = 1 << 6
	MainVolatile     uint16 = 1 << 7
	MainBufferedByte uint16 = 1 << 8
)
