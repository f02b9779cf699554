// Command hidc compiles //hidc:record-annotated Go struct definitions into
// USB HID report descriptors and Pack/Unpack methods (spec.md), the way
// the teacher's own cmd/viiper wires a kong CLI around its internal
// pipeline packages.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/halfpeak/hidc/internal/configpaths"
	"github.com/halfpeak/hidc/internal/log"
)

// CLI is the root command structure, with persistent flags shared by every
// subcommand and one Kong-managed subcommand struct each.
type CLI struct {
	Config string `help:"Path to a hidc.{json,yaml,toml} configuration file" type:"path"`

	Log struct {
		Level string `help:"Log level: trace, debug, info, warn, error" default:"info" enum:"trace,debug,info,warn,error"`
		File  string `help:"Also write the full log stream to this file" type:"path"`
	} `embed:"" prefix:"log-"`

	Compile CompileCmd `cmd:"" help:"Compile //hidc:record definitions into a _hidgen.go sibling file"`
	Verify  VerifyCmd  `cmd:"" help:"Diff a compiled descriptor against a live hidraw device"`
}

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.CandidatePaths(userCfg)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("hidc"),
		kong.Description("Compile-time USB HID report descriptor compiler"),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.Setup(cli.Log.Level, cli.Log.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hidc: failed to set up logging:", err)
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	ctx.Bind(logger)
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if len(a) > len("--config=") && a[:len("--config=")] == "--config=" {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("HIDC_CONFIG"); v != "" {
		return v
	}
	return ""
}
