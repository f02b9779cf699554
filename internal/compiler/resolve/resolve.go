// Package resolve implements the Attribute Resolver (spec.md §4.2): it
// typechecks and normalizes the DSL Parser's attribute expressions and
// builds the Report Group IR.
package resolve

import (
	"strconv"
	"strings"

	"github.com/halfpeak/hidc/internal/compiler/diag"
	"github.com/halfpeak/hidc/internal/compiler/dsl"
	"github.com/halfpeak/hidc/internal/compiler/ir"
	"github.com/halfpeak/hidc/usbhid"
)

// global carries HID Global-item state: it persists across Main items and
// across collection boundaries, mirroring the real host-side parser state
// this compiler must stay consistent with (spec.md §3 DescriptorState).
type global struct {
	usagePage              uint16
	havePage                bool
	logicalMin, logicalMax  int32
	haveLogical             bool
	physicalMin, physicalMax int32
	havePhysical            bool
	reportSize, reportCount uint32
	haveSize, haveCount     bool
	reportID                uint8
}

// local carries HID Local-item state: cleared after every Main item
// (including Collection/EndCollection, which are Main items too).
type local struct {
	usageIDs        []uint16
	usageMin, usageMax uint16
	hasRange        bool
}

func (l *local) reset() { *l = local{} }

// Resolve typechecks tree and builds the Report Group IR, accumulating
// every diagnostic it finds rather than stopping at the first.
func Resolve(tree *dsl.ParseTree) (*ir.Record, *diag.List) {
	diags := &diag.List{}
	rec := &ir.Record{
		Name:   tree.RecordName,
		Groups: make(map[ir.GroupKey]*ir.ReportGroup),
	}

	g := global{}
	l := local{}

	var stack []*ir.Collection
	currentParent := func() *ir.Collection {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}
	appendChild := func(child *ir.Collection) {
		if p := currentParent(); p != nil {
			p.Decls = append(p.Decls, ir.Decl{Collection: child})
		} else {
			rec.Root = append(rec.Root, ir.Decl{Collection: child})
		}
	}
	appendField := func(fs *ir.FieldSpec) {
		if p := currentParent(); p != nil {
			p.Decls = append(p.Decls, ir.Decl{Field: fs})
		} else {
			rec.Root = append(rec.Root, ir.Decl{Field: fs})
		}
	}
	collectionPath := func() []ir.CollectionKind {
		if len(stack) == 0 {
			return nil
		}
		path := make([]ir.CollectionKind, len(stack))
		for i, c := range stack {
			path[i] = c.Kind
		}
		return path
	}

	for _, f := range tree.Fields {
		// Merge this field's own attributes into the running Global/Local
		// state before deciding what kind of declaration it is: a field may
		// both set state (usage_page=...) and, if it also names a report
		// kind, be a Main item in the same breath (spec.md §6.1 sketch).
		var kindAttr *dsl.Attr
		var isCollectionOpen, isCollectionClose bool
		var collKind ir.CollectionKind
		var collKindOK bool

		for i := range f.Attrs {
			a := &f.Attrs[i]
			switch a.Name {
			case "usage_page":
				v, err := parseUint16(a.Value, usbhid.LookupPageName)
				if err != nil {
					diags.Addf(diag.BadAttributeValue, f.Span, "usage_page: %v", err)
					continue
				}
				g.usagePage, g.havePage = v, true
			case "usage":
				v, err := parseUint16(a.Value, usbhid.LookupUsageName)
				if err != nil {
					diags.Addf(diag.BadAttributeValue, f.Span, "usage: %v", err)
					continue
				}
				l.usageIDs = append(l.usageIDs, v)
			case "usage_min":
				v, err := parseUint16(a.Value, nil)
				if err != nil {
					diags.Addf(diag.BadAttributeValue, f.Span, "usage_min: %v", err)
					continue
				}
				l.usageMin, l.hasRange = v, true
			case "usage_max":
				v, err := parseUint16(a.Value, nil)
				if err != nil {
					diags.Addf(diag.BadAttributeValue, f.Span, "usage_max: %v", err)
					continue
				}
				l.usageMax, l.hasRange = v, true
			case "logical_min":
				v, err := parseInt32(a.Value)
				if err != nil {
					diags.Addf(diag.BadAttributeValue, f.Span, "logical_min: %v", err)
					continue
				}
				g.logicalMin, g.haveLogical = v, true
			case "logical_max":
				v, err := parseInt32(a.Value)
				if err != nil {
					diags.Addf(diag.BadAttributeValue, f.Span, "logical_max: %v", err)
					continue
				}
				g.logicalMax, g.haveLogical = v, true
			case "physical_min":
				v, err := parseInt32(a.Value)
				if err != nil {
					diags.Addf(diag.BadAttributeValue, f.Span, "physical_min: %v", err)
					continue
				}
				g.physicalMin, g.havePhysical = v, true
			case "physical_max":
				v, err := parseInt32(a.Value)
				if err != nil {
					diags.Addf(diag.BadAttributeValue, f.Span, "physical_max: %v", err)
					continue
				}
				g.physicalMax, g.havePhysical = v, true
			case "report_size":
				v, err := parseUint32(a.Value)
				if err != nil {
					diags.Addf(diag.BadAttributeValue, f.Span, "report_size: %v", err)
					continue
				}
				g.reportSize, g.haveSize = v, true
			case "report_count":
				v, err := parseUint32(a.Value)
				if err != nil {
					diags.Addf(diag.BadAttributeValue, f.Span, "report_count: %v", err)
					continue
				}
				g.reportCount, g.haveCount = v, true
			case "report_id":
				v, err := parseUint32(a.Value)
				if err != nil || v > 0xFF {
					diags.Addf(diag.BadAttributeValue, f.Span, "report_id: out of range 0..255")
					continue
				}
				g.reportID = uint8(v)
			case "collection":
				k, ok := ir.ParseCollectionKind(a.Value)
				if !ok {
					diags.Addf(diag.BadAttributeValue, f.Span, "collection: unknown kind %q", a.Value)
					continue
				}
				isCollectionOpen, collKind, collKindOK = true, k, true
			case "endcollection":
				isCollectionClose = true
			case "input", "output", "feature":
				if kindAttr != nil {
					diags.Addf(diag.ConflictingAttrs, f.Span, "multiple report kinds on one field")
					continue
				}
				cp := *a
				kindAttr = &cp
			default:
				diags.Addf(diag.UnknownAttribute, f.Span, "unknown attribute %q", a.Name)
			}
		}

		switch {
		case isCollectionClose:
			if len(stack) == 0 {
				diags.Addf(diag.CollectionMisnesting, f.Span, "endcollection with no open collection")
				l.reset()
				continue
			}
			stack = stack[:len(stack)-1]
			l.reset()

		case isCollectionOpen:
			if !collKindOK {
				l.reset()
				continue
			}
			var usage *ir.Usage
			if len(l.usageIDs) > 0 || l.hasRange {
				u := ir.Usage{Page: g.usagePage, IDs: l.usageIDs, HasRange: l.hasRange, UsageMin: l.usageMin, UsageMax: l.usageMax}
				usage = &u
			}
			child := &ir.Collection{Kind: collKind, Usage: usage}
			appendChild(child)
			stack = append(stack, child)
			l.reset()

		case kindAttr != nil:
			fs := resolveField(f, &g, &l, kindAttr, diags)
			l.reset()
			if fs == nil {
				continue
			}
			fs.Parent = currentParent()
			fs.CollectionPath = collectionPath()
			key := ir.GroupKey{ReportID: fs.ReportID, Kind: fs.Kind}
			grp, ok := rec.Groups[key]
			if !ok {
				grp = &ir.ReportGroup{Key: key}
				rec.Groups[key] = grp
				rec.GroupOrder = append(rec.GroupOrder, key)
			}
			grp.Fields = append(grp.Fields, fs)
			appendField(fs)

		default:
			// A pure Global-setting marker field: state above has already
			// been merged; nothing else to do. Local state it may have
			// touched (unusual but not forbidden) persists until the next
			// Main item, per HID Local semantics.
		}
	}

	if len(stack) > 0 {
		diags.Addf(diag.CollectionMisnesting, diag.Span{}, "%d collection(s) left unclosed", len(stack))
	}

	return rec, diags
}

func resolveField(f dsl.ParsedField, g *global, l *local, kindAttr *dsl.Attr, diags *diag.List) *ir.FieldSpec {
	elem, ok := elementKindFor(f.GoType, f.ArrayLen)
	if !ok {
		diags.Addf(diag.BadAttributeValue, f.Span, "unsupported field type %q", f.GoType)
		return nil
	}

	if !g.havePage {
		diags.Addf(diag.UsagePageOutOfScope, f.Span, "no usage_page in scope")
		return nil
	}

	if len(l.usageIDs) > 0 && l.hasRange {
		diags.Addf(diag.ConflictingAttrs, f.Span, "usage and usage_min/usage_max are mutually exclusive")
		return nil
	}

	logMin, logMax := g.logicalMin, g.logicalMax
	if !g.haveLogical {
		logMin, logMax = elem.NaturalLogicalBounds()
	}
	if logMin > logMax {
		diags.Addf(diag.LogicalBoundsInvert, f.Span, "logical_min (%d) > logical_max (%d)", logMin, logMax)
		return nil
	}

	reportSize := g.reportSize
	if !g.haveSize {
		reportSize = uint32(elem.BitWidth)
	}
	reportCount := g.reportCount
	if !g.haveCount {
		reportCount = elem.ArrayLen
		if reportCount == 0 {
			reportCount = 1
		}
	}
	if reportSize == 0 || reportSize > 32 {
		diags.Addf(diag.BadAttributeValue, f.Span, "report_size %d out of range", reportSize)
		return nil
	}
	if reportCount == 0 {
		diags.Addf(diag.BadAttributeValue, f.Span, "report_count 0 out of range")
		return nil
	}
	if !fitsInBits(logMin, logMax, reportSize) {
		diags.Addf(diag.ValueOverflowsSize, f.Span, "logical range %d..%d does not fit in report_size=%d bits", logMin, logMax, reportSize)
		return nil
	}

	var kind ir.ReportKind
	switch kindAttr.Name {
	case "input":
		kind = ir.Input
	case "output":
		kind = ir.Output
	case "feature":
		kind = ir.Feature
	}

	quals, err := resolveQualifiers(kindAttr.Args)
	if err != nil {
		diags.Addf(diag.BadAttributeValue, f.Span, "%v", err)
		return nil
	}

	fs := &ir.FieldSpec{
		Ident:   f.Name,
		Element: elem,
		Usage: ir.Usage{
			Page:     g.usagePage,
			IDs:      append([]uint16(nil), l.usageIDs...),
			HasRange: l.hasRange,
			UsageMin: l.usageMin,
			UsageMax: l.usageMax,
		},
		Bounds: ir.LogicalBounds{
			Min: logMin, Max: logMax,
			HasPhysical: g.havePhysical, PhysicalMin: g.physicalMin, PhysicalMax: g.physicalMax,
		},
		Kind:        kind,
		Qualifiers:  quals,
		ReportID:    g.reportID,
		ReportSize:  reportSize,
		ReportCount: reportCount,
		Span:        f.Span,
	}
	return fs
}

func fitsInBits(min, max int32, bits uint32) bool {
	if bits >= 32 {
		return true
	}
	if min < 0 {
		lo := -(int32(1) << (bits - 1))
		hi := (int32(1) << (bits - 1)) - 1
		return min >= lo && max <= hi
	}
	hi := int64(1)<<bits - 1
	return int64(max) <= hi
}

type qualAxis struct {
	bit      ir.Qualifier
	positive string
	negative string
}

var axes = []qualAxis{
	{ir.QConstant, "constant", "data"},
	{ir.QVariable, "variable", "array"},
	{ir.QRelative, "relative", "absolute"},
	{ir.QWrap, "wrap", "no_wrap"},
	{ir.QNonLinear, "non_linear", "linear"},
	{ir.QNoPreferred, "no_preferred", "preferred"},
	{ir.QNullState, "null_state", "no_null"},
	{ir.QVolatile, "volatile", "non_volatile"},
}

func resolveQualifiers(args []string) (ir.Qualifier, error) {
	var q ir.Qualifier
	seen := make(map[ir.Qualifier]string)
	for _, tok := range args {
		tok = strings.TrimSpace(tok)
		if tok == "buffered_bytes" {
			q |= ir.QBufferedBytes
			continue
		}
		matched := false
		for _, ax := range axes {
			switch tok {
			case ax.positive:
				if prev, ok := seen[ax.bit]; ok && prev != ax.positive {
					return 0, conflictErr(prev, tok)
				}
				seen[ax.bit] = tok
				q |= ax.bit
				matched = true
			case ax.negative:
				if prev, ok := seen[ax.bit]; ok && prev != ax.negative {
					return 0, conflictErr(prev, tok)
				}
				seen[ax.bit] = tok
				matched = true
			}
			if matched {
				break
			}
		}
		if !matched {
			return 0, unknownQualifierErr(tok)
		}
	}
	return q, nil
}

func conflictErr(a, b string) error {
	return &qualConflict{a: a, b: b}
}

type qualConflict struct{ a, b string }

func (e *qualConflict) Error() string {
	return "conflicting qualifiers " + e.a + " and " + e.b
}

func unknownQualifierErr(tok string) error {
	return &unknownQual{tok: tok}
}

type unknownQual struct{ tok string }

func (e *unknownQual) Error() string { return "unknown qualifier " + e.tok }

func parseUint16(s string, symbols func(string) (uint16, bool)) (uint16, error) {
	if symbols != nil {
		if v, ok := symbols(s); ok {
			return v, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}
