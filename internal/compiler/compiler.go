// Package compiler orchestrates the five-stage pipeline spec.md §2
// describes: DSL Parser, Attribute Resolver, Layout Planner, Descriptor
// Emitter, Report Packer Synthesizer.
package compiler

import (
	"fmt"
	"go/format"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/halfpeak/hidc/internal/compiler/dsl"
	"github.com/halfpeak/hidc/internal/compiler/emit"
	"github.com/halfpeak/hidc/internal/compiler/layout"
	"github.com/halfpeak/hidc/internal/compiler/pack"
	"github.com/halfpeak/hidc/internal/compiler/resolve"
)

// Compiler drives one or more source files through the pipeline, mirroring
// the shape of the teacher's internal/codegen/generator.Generator: a small
// struct holding the output directory and a logger, with a one-call entry
// point per unit of work.
type Compiler struct {
	outputDir string
	logger    *slog.Logger
}

// New returns a Compiler that writes generated files under outputDir.
func New(outputDir string, logger *slog.Logger) *Compiler {
	return &Compiler{outputDir: outputDir, logger: logger}
}

// Result is what CompileFile returns on success: one entry per
// //hidc:record type found in the source file, plus the path of the
// generated file they all share.
type Result struct {
	Records    []RecordResult
	OutputPath string
}

// RecordResult is one compiled record's outcome.
type RecordResult struct {
	RecordName string
	Descriptor []byte
}

// CompileFile runs the full pipeline over every //hidc:record type declared
// in the Go source file at path, writing a single "<name>_hidgen.go"
// sibling alongside it (or under c.outputDir if set) containing all of
// their generated descriptors and Pack/Unpack methods. It returns a
// *diag.Error wrapping every diagnostic the Parser or Resolver accumulated
// if any record was ill-formed; no partial file is written in that case
// (spec.md §7: "a downstream stage is skipped if its input is known
// ill-formed").
func (c *Compiler) CompileFile(path string) (*Result, error) {
	c.logger.Info("compiling record definitions", "path", path)

	trees, parseDiags := dsl.ParseFile(path)
	if parseDiags.HasErrors() {
		c.logger.Error("parse failed", "path", path, "diagnostics", len(parseDiags.All()))
		return nil, parseDiags.Err()
	}

	pkgName, err := dsl.PackageNameOf(path)
	if err != nil {
		return nil, fmt.Errorf("hidc: %s: %w", path, err)
	}

	var datas []pack.Data
	var results []RecordResult
	for _, tree := range trees {
		rec, resolveDiags := resolve.Resolve(tree)
		if resolveDiags.HasErrors() {
			c.logger.Error("resolve failed", "path", path, "record", tree.RecordName, "diagnostics", len(resolveDiags.All()))
			return nil, resolveDiags.Err()
		}
		c.logger.Debug("resolved record", "record", rec.Name, "groups", len(rec.GroupOrder))

		layout.Plan(rec)
		for _, key := range rec.GroupOrder {
			grp := rec.Groups[key]
			c.logger.Debug("planned group", "record", rec.Name, "report_id", key.ReportID, "kind", key.Kind, "bytes", grp.ByteLength)
		}

		descriptor := emit.Descriptor(rec)
		c.logger.Info("emitted descriptor", "record", rec.Name, "bytes", len(descriptor))

		datas = append(datas, pack.BuildData(rec, descriptor, pkgName))
		results = append(results, RecordResult{RecordName: rec.Name, Descriptor: descriptor})
	}

	src, err := pack.GenerateFile(pkgName, datas)
	if err != nil {
		return nil, fmt.Errorf("hidc: generating packer for %s: %w", path, err)
	}

	formatted, err := format.Source([]byte(src))
	if err != nil {
		// Fall back to the unformatted source rather than lose the
		// generated file entirely; the compiler logs the cause.
		c.logger.Warn("generated source did not gofmt cleanly", "path", path, "error", err)
		formatted = []byte(src)
	}

	outPath := c.outputPathFor(path)
	if err := os.WriteFile(outPath, formatted, 0o644); err != nil {
		return nil, fmt.Errorf("hidc: writing %s: %w", outPath, err)
	}
	c.logger.Info("wrote generated file", "path", outPath, "records", len(results))

	return &Result{Records: results, OutputPath: outPath}, nil
}

func (c *Compiler) outputPathFor(srcPath string) string {
	base := strings.TrimSuffix(filepath.Base(srcPath), ".go")
	name := base + "_hidgen.go"
	if c.outputDir != "" {
		return filepath.Join(c.outputDir, name)
	}
	return filepath.Join(filepath.Dir(srcPath), name)
}
