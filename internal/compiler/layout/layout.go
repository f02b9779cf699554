// Package layout implements the Layout Planner (spec.md §4.3): it assigns
// bit offsets to every field within each ReportGroup, inserts trailing
// padding, and computes final byte sizes.
package layout

import "github.com/halfpeak/hidc/internal/compiler/ir"

const reportIDPrefixBits = 8

// Plan lays out every group in rec in place, setting each FieldSpec's
// BitOffset and each ReportGroup's ByteLength, and appends a synthetic
// constant padding FieldSpec to any group whose bit size is not already a
// multiple of 8.
//
// Plan is deterministic: groups are visited in rec.GroupOrder (first
// source-order discovery), never by iterating the Groups map directly,
// because map iteration order is unspecified and layout must not depend on
// it (spec.md §5).
func Plan(rec *ir.Record) {
	for _, key := range rec.GroupOrder {
		grp := rec.Groups[key]
		planGroup(rec, grp)
	}
}

func planGroup(rec *ir.Record, grp *ir.ReportGroup) {
	var offset uint32
	if grp.Key.ReportID != 0 {
		offset = reportIDPrefixBits
	}
	prefixBits := offset

	for _, f := range grp.Fields {
		f.BitOffset = offset
		offset += uint32(f.BitSize())
	}

	if rem := (offset - prefixBits) % 8; rem != 0 {
		padBits := 8 - rem
		last := grp.Fields[len(grp.Fields)-1]
		pad := &ir.FieldSpec{
			Ident: "_padding",
			// Usage/Bounds are copied from the last real field so the
			// Emitter's Global shadow sees no change here: the padding
			// field must never re-emit usage_page/logical_min/logical_max
			// (spec.md §4.3; Testable Property 3) or corrupt the shadow
			// for every field the record declares afterward.
			Usage:       last.Usage,
			Bounds:      last.Bounds,
			Kind:        grp.Key.Kind,
			Qualifiers:  ir.QConstant,
			ReportID:    grp.Key.ReportID,
			ReportSize:  padBits,
			ReportCount: 1,
			BitOffset:   offset,
			IsPadding:   true,
			Parent:      last.Parent,
			CollectionPath: last.CollectionPath,
		}
		grp.Fields = append(grp.Fields, pad)
		offset += padBits

		if pad.Parent != nil {
			pad.Parent.InsertFieldAfter(last, pad)
		} else {
			rec.Root = insertFieldAfterRoot(rec.Root, last, pad)
		}
	}

	totalBits := offset
	grp.ByteLength = (totalBits + 7) / 8
}

// insertFieldAfterRoot splices pad's Decl immediately after after's Decl in
// a top-level declaration list, mirroring ir.Collection.InsertFieldAfter for
// the record's own Root (which has no enclosing Collection).
func insertFieldAfterRoot(decls []ir.Decl, after, pad *ir.FieldSpec) []ir.Decl {
	for i, d := range decls {
		if d.Field == after {
			rest := append([]ir.Decl{{Field: pad}}, decls[i+1:]...)
			return append(decls[:i+1:i+1], rest...)
		}
	}
	return append(decls, ir.Decl{Field: pad})
}
