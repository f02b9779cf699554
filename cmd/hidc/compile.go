package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/halfpeak/hidc/internal/compiler"
	"github.com/halfpeak/hidc/internal/compiler/diag"
)

// CompileCmd runs the full compiler pipeline over one or more Go source
// files, writing a "<name>_hidgen.go" sibling for each.
type CompileCmd struct {
	Files  []string `arg:"" name:"file" help:"Go source file(s) declaring //hidc:record types" type:"path"`
	Output string   `help:"Directory to write generated files into (default: alongside each source file)" type:"path"`
}

func (c *CompileCmd) Run(logger *slog.Logger) error {
	if len(c.Files) == 0 {
		return errors.New("hidc compile: no input files")
	}

	comp := compiler.New(c.Output, logger)

	var failed bool
	for _, path := range c.Files {
		result, err := comp.CompileFile(path)
		if err != nil {
			failed = true
			var diagErr *diag.Error
			if errors.As(err, &diagErr) {
				diag.Print(os.Stderr, diagsFromError(diagErr))
				fmt.Fprintf(os.Stderr, "%s: %s\n", filepath.Base(path), diag.Summary(diagsFromError(diagErr)))
				continue
			}
			fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(path), err)
			continue
		}
		for _, r := range result.Records {
			logger.Info("compiled record", "record", r.RecordName, "descriptor_bytes", len(r.Descriptor))
		}
		fmt.Println(result.OutputPath)
	}

	if failed {
		return errors.New("hidc compile: one or more files failed to compile")
	}
	return nil
}

// diagsFromError rebuilds a *diag.List from an aggregated *diag.Error so
// diag.Print can render it; CompileFile only returns the aggregate because
// Go errors don't carry a *List directly.
func diagsFromError(e *diag.Error) *diag.List {
	l := &diag.List{}
	for _, d := range e.Diagnostics {
		l.Add(d)
	}
	return l
}
