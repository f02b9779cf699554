// Package pack implements the Report Packer Synthesizer (spec.md §4.5): it
// generates, per ReportGroup, a Pack routine (and an Unpack routine for
// Output/Feature groups) that copies a record's field values into or out of
// wire-format report bytes.
package pack

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/halfpeak/hidc/internal/compiler/ir"
)

// Group is the template-facing view of one ir.ReportGroup.
type Group struct {
	Suffix      string // e.g. "Input", "OutputReport2"
	ByteLength  uint32
	HasReportID bool
	ReportID    uint8
	Kind        string
	GenerateUnpack bool
	Fields      []Field
}

// Field is the template-facing view of one ir.FieldSpec within a Group.
type Field struct {
	GoName      string
	GoType      string // native Go element type: uint8/int8/uint16/int16/uint32/int32
	BitOffset   uint32
	ReportSize  uint32
	ReportCount uint32
	TotalBits   uint32
	Signed      bool
	IsArray     bool
	// WriteZero marks a field the Packer always writes as zero and never
	// reads back on Unpack: either a constant-qualified field (user-declared
	// reserved bits) or synthetic trailing padding the Layout Planner
	// inserted (spec.md §4.5: "Constant/padding fields are written as
	// zero."). Neither kind needs a readable Go identifier.
	WriteZero bool
}

// Data is the record template's input: the descriptor variable and
// Pack/Unpack methods for a single record type. GenerateFile renders one or
// more of them into a single file.
type Data struct {
	PackageName string
	RecordName  string
	DescriptorVar string
	DescriptorBytes []byte
	Groups      []Group
}

// BuildData converts a resolved, laid-out ir.Record plus its emitted
// descriptor bytes into the template input for Generate.
func BuildData(rec *ir.Record, descriptor []byte, packageName string) Data {
	d := Data{
		PackageName:     packageName,
		RecordName:      rec.Name,
		DescriptorVar:   rec.Name + "Descriptor",
		DescriptorBytes: descriptor,
	}
	for _, key := range rec.GroupOrder {
		grp := rec.Groups[key]
		d.Groups = append(d.Groups, buildGroup(grp))
	}
	return d
}

func buildGroup(grp *ir.ReportGroup) Group {
	g := Group{
		Suffix:         groupSuffix(grp.Key),
		ByteLength:     grp.ByteLength,
		HasReportID:    grp.Key.ReportID != 0,
		ReportID:       grp.Key.ReportID,
		Kind:           grp.Key.Kind.String(),
		GenerateUnpack: grp.Key.Kind == ir.Output || grp.Key.Kind == ir.Feature,
	}
	for _, f := range grp.Fields {
		g.Fields = append(g.Fields, Field{
			GoName:      fieldGoName(f),
			GoType:      nativeGoType(f),
			BitOffset:   f.BitOffset,
			ReportSize:  f.ReportSize,
			ReportCount: f.ReportCount,
			TotalBits:   f.ReportSize * f.ReportCount,
			Signed:      f.Element.Sign == ir.Signed,
			IsArray:     f.Element.IsArray(),
			WriteZero:   f.IsPadding || f.Qualifiers.Has(ir.QConstant),
		})
	}
	return g
}

func fieldGoName(f *ir.FieldSpec) string {
	return f.Ident
}

// nativeGoType names the Go scalar type a padding-free field's Ident holds,
// derived from the element kind the DSL Parser recovered from the source
// struct's Go type — independent of any report_size override, since a
// bitmask-style field (e.g. report_size=1, report_count=3 packed from a
// single uint8) keeps its original Go width.
func nativeGoType(f *ir.FieldSpec) string {
	n := f.Element.BitWidth
	if n == 1 {
		n = 8
	}
	if f.Element.Sign == ir.Signed {
		return fmt.Sprintf("int%d", n)
	}
	return fmt.Sprintf("uint%d", n)
}

func groupSuffix(key ir.GroupKey) string {
	if key.ReportID == 0 {
		return key.Kind.String()
	}
	return fmt.Sprintf("%sReport%d", key.Kind.String(), key.ReportID)
}

// Generate renders the Pack/Unpack source file for a single record, with
// its own package header. Most callers compiling a file with more than one
// //hidc:record type should use GenerateFile instead, which shares one
// header across every record in the file.
func Generate(d Data) (string, error) {
	return GenerateFile(d.PackageName, []Data{d})
}

// GenerateFile renders one generated Go source file containing every record
// in records, sharing a single package clause and import block — the
// shape a go:generate-driven tool produces for a source file declaring
// multiple //hidc:record types.
func GenerateFile(packageName string, records []Data) (string, error) {
	funcs := template.FuncMap{
		"hexByte": func(b byte) string { return fmt.Sprintf("0x%02x", b) },
		"mod":     func(a, b int) int { return a % b },
		"add":     func(a, b int) int { return a + b },
	}
	header := template.Must(template.New("header").Funcs(funcs).Parse(headerTemplate))
	body := template.Must(template.New("record").Funcs(funcs).Parse(recordTemplate))

	var buf bytes.Buffer
	if err := header.Execute(&buf, struct{ PackageName string }{packageName}); err != nil {
		return "", fmt.Errorf("executing pack header template: %w", err)
	}
	for _, d := range records {
		if err := body.Execute(&buf, d); err != nil {
			return "", fmt.Errorf("executing pack template for %s: %w", d.RecordName, err)
		}
	}
	return buf.String(), nil
}

const headerTemplate = `// Code generated by hidc. DO NOT EDIT.

package {{.PackageName}}

import (
	"fmt"

	"github.com/halfpeak/hidc/usbhid"
)
`

const recordTemplate = `
// {{.DescriptorVar}} is the canonical USB HID report descriptor for
// {{.RecordName}}, generated from its annotated field definitions.
var {{.DescriptorVar}} = []byte{
{{range $i, $b := .DescriptorBytes}}{{if eq (mod $i 12) 0}}	{{end}}{{hexByte $b}}, {{if eq (mod (add $i 1) 12) 0}}
{{end}}{{end}}
}
{{range .Groups}}
// Pack{{.Suffix}} packs r's {{.Kind}} fields into out in wire format.
// out must be at least {{.ByteLength}} bytes long.
func (r *{{$.RecordName}}) Pack{{.Suffix}}(out []byte) error {
	if len(out) < {{.ByteLength}} {
		return fmt.Errorf("hidc: Pack{{.Suffix}}: buffer too small: need %d bytes, have %d", {{.ByteLength}}, len(out))
	}
{{if .HasReportID}}	out[0] = {{.ReportID}}
{{end}}{{range .Fields}}{{if .WriteZero}}	usbhid.PutBits(out, {{.BitOffset}}, {{.TotalBits}}, 0)
{{else if .IsArray}}	for i := uint32(0); i < {{.ReportCount}}; i++ {
		usbhid.PutBits(out, {{.BitOffset}}+i*{{.ReportSize}}, {{.ReportSize}}, uint64({{.GoType}}(r.{{.GoName}}[i])))
	}
{{else}}	usbhid.PutBits(out, {{.BitOffset}}, {{.TotalBits}}, uint64({{.GoType}}(r.{{.GoName}})))
{{end}}{{end}}	return nil
}
{{if .GenerateUnpack}}
// Unpack{{.Suffix}} reads r's {{.Kind}} fields out of in, inverse of Pack{{.Suffix}}.
func (r *{{$.RecordName}}) Unpack{{.Suffix}}(in []byte) error {
	if len(in) < {{.ByteLength}} {
		return fmt.Errorf("hidc: Unpack{{.Suffix}}: buffer too small: need %d bytes, have %d", {{.ByteLength}}, len(in))
	}
{{range .Fields}}{{if .WriteZero}}{{else if .IsArray}}	for i := uint32(0); i < {{.ReportCount}}; i++ {
		r.{{.GoName}}[i] = {{.GoType}}({{if .Signed}}usbhid.SignExtend(usbhid.GetBits(in, {{.BitOffset}}+i*{{.ReportSize}}, {{.ReportSize}}), {{.ReportSize}}){{else}}usbhid.GetBits(in, {{.BitOffset}}+i*{{.ReportSize}}, {{.ReportSize}}){{end}})
	}
{{else}}	r.{{.GoName}} = {{.GoType}}({{if .Signed}}usbhid.SignExtend(usbhid.GetBits(in, {{.BitOffset}}, {{.TotalBits}}), {{.TotalBits}}){{else}}usbhid.GetBits(in, {{.BitOffset}}, {{.TotalBits}}){{end}})
{{end}}{{end}}	return nil
}
{{end}}{{end}}`
