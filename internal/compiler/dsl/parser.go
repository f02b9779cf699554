// Package dsl implements the DSL Parser (spec.md §4.1).
//
// The annotated record definition is a Go struct type carrying a
// `//hidc:record` doc comment; each field is preceded (in source order) by
// the attribute expressions that apply to it, carried in a `hid:"..."`
// struct tag on that same field, exactly as VIIPER's internal/codegen
// scanner recovers `viiper:wire` comment tags and json struct tags by
// walking go/ast rather than writing a bespoke lexer for Go source itself.
// hidc only needs a bespoke lexer for the small attribute-expression
// language living *inside* the tag string (attrs.go); the enclosing Go
// grammar is handled by go/parser.
package dsl

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/halfpeak/hidc/internal/compiler/diag"
)

// ParsedField is one struct field recovered from the record, in source
// order, with its attribute expressions parsed but not yet typechecked.
type ParsedField struct {
	// Name is the Go field name ("_" for blank/marker fields).
	Name string
	// GoType is the scalar base type name of the field's declared type,
	// e.g. "uint8", or "int8" for a "[2]int8" array (whose length goes in
	// ArrayLen). Blank marker fields carrying no data leave this empty.
	GoType string
	// ArrayLen is the fixed array length if GoType is an array type, else 0.
	ArrayLen int
	Attrs    []Attr
	Span     diag.Span
}

// ParseTree is the parser's output for one record: its declared field
// sequence, each carrying its own attribute list, in source order.
type ParseTree struct {
	RecordName string
	Fields     []ParsedField
}

const recordMarker = "hidc:record"

// ParseFile reads filename and returns the ParseTree for every
// `//hidc:record`-annotated struct type it finds.
//
// ParseFile is total: on a source file go/parser itself cannot read, it
// returns a SyntaxError diagnostic rather than panicking (spec.md §4.1
// Contract). Malformed attribute tags on individual fields are likewise
// reported as diagnostics rather than aborting the whole file: independent
// records/fields are still checked, to maximize diagnostics per build
// (spec.md §7).
func ParseFile(filename string) ([]*ParseTree, *diag.List) {
	diags := &diag.List{}
	src, err := os.ReadFile(filename)
	if err != nil {
		diags.Addf(diag.SyntaxError, diag.Span{}, "read %s: %v", filename, err)
		return nil, diags
	}
	return ParseSource(filename, src)
}

// ParseSource parses already-loaded source, under the given filename for
// diagnostic spans.
func ParseSource(filename string, src []byte) ([]*ParseTree, *diag.List) {
	diags := &diag.List{}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		diags.Addf(diag.SyntaxError, diag.Span{}, "%v", err)
		return nil, diags
	}

	var trees []*ParseTree
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			if !hasRecordMarker(genDecl, typeSpec) {
				continue
			}
			structType, ok := typeSpec.Type.(*ast.StructType)
			if !ok {
				diags.Addf(diag.SyntaxError, spanOf(fset, typeSpec.Pos(), typeSpec.Name.Name),
					"%s marker on non-struct type", recordMarker)
				continue
			}
			tree := &ParseTree{RecordName: typeSpec.Name.Name}
			for _, field := range structType.Fields.List {
				pf, ferr := parseField(fset, field)
				if ferr != nil {
					diags.Addf(diag.SyntaxError, pf.Span, "%v", ferr)
					continue
				}
				tree.Fields = append(tree.Fields, pf)
			}
			trees = append(trees, tree)
		}
	}
	if len(trees) == 0 && !diags.HasErrors() {
		diags.Addf(diag.SyntaxError, diag.Span{}, "no %s struct found in %s", recordMarker, filename)
	}
	return trees, diags
}

func hasRecordMarker(genDecl *ast.GenDecl, typeSpec *ast.TypeSpec) bool {
	for _, doc := range []*ast.CommentGroup{typeSpec.Doc, genDecl.Doc} {
		if doc == nil {
			continue
		}
		for _, c := range doc.List {
			if strings.Contains(c.Text, recordMarker) {
				return true
			}
		}
	}
	return false
}

func parseField(fset *token.FileSet, field *ast.Field) (ParsedField, error) {
	name := "_"
	if len(field.Names) > 0 {
		name = field.Names[0].Name
	}
	pos := fset.Position(field.Pos())
	span := diag.Span{Pos: pos, Field: name}

	goType, arrayLen := exprToType(field.Type)

	pf := ParsedField{Name: name, GoType: goType, ArrayLen: arrayLen, Span: span}

	if field.Tag == nil {
		return pf, nil
	}
	raw, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return pf, err
	}
	hidTag := reflect.StructTag(raw).Get("hid")
	if hidTag == "" {
		return pf, nil
	}
	attrs, err := parseAttrList(hidTag)
	if err != nil {
		return pf, err
	}
	pf.Attrs = attrs
	return pf, nil
}

func spanOf(fset *token.FileSet, pos token.Pos, field string) diag.Span {
	return diag.Span{Pos: fset.Position(pos), Field: field}
}

// PackageNameOf returns the package clause name of the Go source file at
// filename, so the generated "<name>_hidgen.go" sibling can share its
// package without re-parsing the whole file body.
func PackageNameOf(filename string) (string, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, nil, parser.PackageClauseOnly)
	if err != nil {
		return "", err
	}
	return file.Name.Name, nil
}

// exprToType resolves a field's type expression to its scalar base type
// name (e.g. "uint8") and, for a fixed-size array of such a scalar, the
// array length (0 for a bare scalar). Only the shapes the DSL supports
// (scalar integers and fixed arrays of them) are meaningful; any other
// expression yields an empty base type, which the Resolver rejects.
func exprToType(expr ast.Expr) (baseType string, arrayLen int) {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, 0
	case *ast.ArrayType:
		elemType, _ := exprToType(t.Elt)
		n := 0
		if lit, ok := t.Len.(*ast.BasicLit); ok && lit.Kind == token.INT {
			if v, err := strconv.Atoi(lit.Value); err == nil {
				n = v
			}
		}
		return elemType, n
	default:
		return "", 0
	}
}
