package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halfpeak/hidc/internal/compiler/ir"
)

// TestPlanInsertsTrailingPadding exercises the auto-padding path (spec.md
// §4.3) for a group that is not already byte-aligned by a hand-declared
// constant field. The
// synthetic padding field must inherit the last real field's Usage/Bounds
// so the Emitter's Global shadow sees no change and does not re-emit
// usage_page/logical_min/logical_max ahead of the padding's Main item.
func TestPlanInsertsTrailingPadding(t *testing.T) {
	f := &ir.FieldSpec{
		Ident:       "Flags",
		Usage:       ir.Usage{Page: 0x09, HasRange: true, UsageMin: 1, UsageMax: 3},
		Bounds:      ir.LogicalBounds{Min: 0, Max: 1},
		Kind:        ir.Input,
		Qualifiers:  ir.QVariable,
		ReportSize:  3,
		ReportCount: 1,
	}
	key := ir.GroupKey{ReportID: 0, Kind: ir.Input}
	grp := &ir.ReportGroup{Key: key, Fields: []*ir.FieldSpec{f}}
	rec := &ir.Record{
		Name:       "Test",
		Root:       []ir.Decl{{Field: f}},
		Groups:     map[ir.GroupKey]*ir.ReportGroup{key: grp},
		GroupOrder: []ir.GroupKey{key},
	}

	Plan(rec)

	require.Len(t, grp.Fields, 2)
	pad := grp.Fields[1]
	assert.True(t, pad.IsPadding)
	assert.Equal(t, uint32(5), pad.ReportSize)
	assert.Equal(t, uint32(1), pad.ReportCount)
	assert.Equal(t, uint32(3), pad.BitOffset)
	assert.Equal(t, f.Usage, pad.Usage)
	assert.Equal(t, f.Bounds, pad.Bounds)
	assert.Equal(t, uint32(1), grp.ByteLength)

	require.Len(t, rec.Root, 2)
	assert.Same(t, pad, rec.Root[1].Field)
}
