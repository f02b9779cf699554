package emit

import "github.com/halfpeak/hidc/internal/compiler/ir"

// shadow is the Emitter's model of the host parser's DescriptorState
// (spec.md §3): the Global state a conformant host parser would be tracking at the current
// point in the byte stream. A Global item is written only when it would
// change this shadow (spec.md §4.4, Testable Property 3); Local state is
// never suppressed and is reset after every Main item.
type shadow struct {
	usagePage   uint16
	havePage    bool
	logicalMin  int32
	haveLogicalMin bool
	logicalMax  int32
	haveLogicalMax bool
	physicalMin int32
	havePhysicalMin bool
	physicalMax int32
	havePhysicalMax bool
	reportSize  uint32
	haveSize    bool
	reportCount uint32
	haveCount   bool
	reportID    uint8
	haveReportID bool
}

func (s *shadow) setUsagePage(buf []byte, page uint16) []byte {
	if s.havePage && s.usagePage == page {
		return buf
	}
	s.usagePage, s.havePage = page, true
	return appendUnsigned(buf, tagUsagePage, typeGlobal, uint32(page))
}

func (s *shadow) setLogicalMin(buf []byte, v int32) []byte {
	if s.haveLogicalMin && s.logicalMin == v {
		return buf
	}
	s.logicalMin, s.haveLogicalMin = v, true
	return appendSigned(buf, tagLogicalMin, typeGlobal, v)
}

func (s *shadow) setLogicalMax(buf []byte, v int32) []byte {
	if s.haveLogicalMax && s.logicalMax == v {
		return buf
	}
	s.logicalMax, s.haveLogicalMax = v, true
	return appendSigned(buf, tagLogicalMax, typeGlobal, v)
}

func (s *shadow) setPhysicalMin(buf []byte, v int32) []byte {
	if s.havePhysicalMin && s.physicalMin == v {
		return buf
	}
	s.physicalMin, s.havePhysicalMin = v, true
	return appendSigned(buf, tagPhysicalMin, typeGlobal, v)
}

func (s *shadow) setPhysicalMax(buf []byte, v int32) []byte {
	if s.havePhysicalMax && s.physicalMax == v {
		return buf
	}
	s.physicalMax, s.havePhysicalMax = v, true
	return appendSigned(buf, tagPhysicalMax, typeGlobal, v)
}

func (s *shadow) setReportSize(buf []byte, v uint32) []byte {
	if s.haveSize && s.reportSize == v {
		return buf
	}
	s.reportSize, s.haveSize = v, true
	return appendUnsigned(buf, tagReportSize, typeGlobal, v)
}

func (s *shadow) setReportCount(buf []byte, v uint32) []byte {
	if s.haveCount && s.reportCount == v {
		return buf
	}
	s.reportCount, s.haveCount = v, true
	return appendUnsigned(buf, tagReportCount, typeGlobal, v)
}

func (s *shadow) setReportID(buf []byte, v uint8) []byte {
	if s.haveReportID && s.reportID == v {
		return buf
	}
	s.reportID, s.haveReportID = v, true
	return appendUnsigned(buf, tagReportID, typeGlobal, uint32(v))
}

// syncGlobals emits whatever subset of Global items f's group requires that
// differs from the current shadow, in the order usage page, report ID,
// logical min/max, physical min/max, report size, report count.
func (s *shadow) syncGlobals(buf []byte, f *ir.FieldSpec) []byte {
	buf = s.setUsagePage(buf, f.Usage.Page)
	if f.ReportID != 0 {
		buf = s.setReportID(buf, f.ReportID)
	}
	buf = s.setLogicalMin(buf, f.Bounds.Min)
	buf = s.setLogicalMax(buf, f.Bounds.Max)
	if f.Bounds.HasPhysical {
		buf = s.setPhysicalMin(buf, f.Bounds.PhysicalMin)
		buf = s.setPhysicalMax(buf, f.Bounds.PhysicalMax)
	}
	buf = s.setReportSize(buf, f.ReportSize)
	buf = s.setReportCount(buf, f.ReportCount)
	return buf
}

// syncUsageLocals emits the Local items (always, never suppressed) u's
// usage form requires: either a stacked Usage list or a Usage Minimum/
// Maximum range, per spec.md §4.1's mutual-exclusion rule.
func syncUsageLocals(buf []byte, u *ir.Usage) []byte {
	if u.HasRange {
		buf = appendUnsigned(buf, tagUsageMinimum, typeLocal, uint32(u.UsageMin))
		buf = appendUnsigned(buf, tagUsageMaximum, typeLocal, uint32(u.UsageMax))
		return buf
	}
	for _, id := range u.IDs {
		buf = appendUnsigned(buf, tagUsage, typeLocal, uint32(id))
	}
	return buf
}
