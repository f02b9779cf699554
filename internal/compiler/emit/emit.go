package emit

import "github.com/halfpeak/hidc/internal/compiler/ir"

// Descriptor walks rec in canonical HID order — spec.md §4.4 / §4.6's state
// machine { AtRecord, InCollection, EmittingMainItem, EmittingGlobals,
// EmittingLocals, Done } — and returns the minimal HID report descriptor
// byte sequence. The shadow's suppress-iff-equal rule (Testable Property 3)
// is the only optimization applied; every Collection is matched by an
// EndCollection at the same depth (Testable Property 4) because the walk
// never emits one without the other.
func Descriptor(rec *ir.Record) []byte {
	s := &shadow{}
	var buf []byte
	return walkDecls(buf, s, rec.Root)
}

func walkDecls(buf []byte, s *shadow, decls []ir.Decl) []byte {
	for _, d := range decls {
		switch {
		case d.Collection != nil:
			buf = emitCollection(buf, s, d.Collection)
		case d.Field != nil:
			buf = emitField(buf, s, d.Field)
		}
	}
	return buf
}

func emitCollection(buf []byte, s *shadow, c *ir.Collection) []byte {
	if c.Usage != nil {
		buf = s.setUsagePage(buf, c.Usage.Page)
		buf = syncUsageLocals(buf, c.Usage)
	}
	buf = appendMain(buf, tagCollection, uint32(c.Kind.Code()))
	// Collection is itself a Main item: Local state (the usage just emitted
	// above) does not carry into the nested decls.
	buf = walkDecls(buf, s, c.Decls)
	buf = appendEndCollection(buf)
	// EndCollection is also a Main item; nothing Local survives it either,
	// but there is no Local state left to clear here since none was set
	// since the last Main item inside the collection.
	return buf
}

func emitField(buf []byte, s *shadow, f *ir.FieldSpec) []byte {
	buf = s.syncGlobals(buf, f)
	if !f.IsPadding {
		buf = syncUsageLocals(buf, &f.Usage)
	}
	buf = appendMain(buf, mainTag(f.Kind), uint32(f.Qualifiers.MainItemByte()))
	return buf
}

func mainTag(kind ir.ReportKind) byte {
	switch kind {
	case ir.Output:
		return tagOutput
	case ir.Feature:
		return tagFeature
	default:
		return tagInput
	}
}
