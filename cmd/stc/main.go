// Package main implements the stc entry point: it indexes, links and
// validates a set of Structured Text compilation units.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/you-not-fish/stc/internal/diag"
	"github.com/you-not-fish/stc/internal/driver"
	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/indexer"
	"github.com/you-not-fish/stc/internal/project"
	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

// Command line flags
var (
	projectFile  = flag.String("project", "", "Project file or directory holding stc.toml")
	errorConfig  = flag.String("error-config", "", "Error severity configuration (TOML or JSON)")
	format       = flag.String("format", "", "Diagnostics format (clang, codespan or none)")
	headerDir    = flag.String("header-dir", "", "Write a C header per unit into this directory")
	hardwareConf = flag.String("hardware-conf", "", "Write the hardware configuration to this file (.json or .toml)")
	jobs         = flag.Int("j", 0, "Units indexed and linked in parallel (0 = GOMAXPROCS)")
	verbose      = flag.Bool("v", false, "Verbose output")
	explain      = flag.String("explain", "", "Describe an error code, e.g. E004")
	emitAST      = flag.Bool("emit-ast", false, "Output the AST of a unit")
	astFormat    = flag.String("ast-format", "text", "AST output format (text or json)")
	emitIndex    = flag.Bool("emit-index", false, "Output the symbols a unit declares")
	dumpErrors   = flag.Bool("dump-error-config", false, "Output the effective error configuration as TOML")
	version      = flag.Bool("version", false, "Print version")
)

// Version information
const Version = "0.1.0-dev"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "stc %s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: stc [options] <unit.json>...\n")
		fmt.Fprintf(os.Stderr, "       stc -project <dir|stc.toml> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Printf("stc version %s\n", Version)
		fmt.Printf("go version %s\n", runtime.Version())
		os.Exit(0)
	}

	if *explain != "" {
		os.Exit(runExplain(*explain))
	}

	if *dumpErrors {
		os.Exit(runDumpErrorConfig(*errorConfig))
	}

	args := flag.Args()

	if *emitAST || *emitIndex {
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "error: expected exactly one input file")
			os.Exit(1)
		}
		if *emitAST {
			os.Exit(runEmitAST(args[0]))
		}
		os.Exit(runEmitIndex(args[0]))
	}

	opts, err := options(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(runCompile(opts))
}

// options combines the project file, if any, with the command line.
// Flags override the project file; input files replace its file list.
func options(args []string) (driver.Options, error) {
	opts := driver.Options{
		Jobs:    *jobs,
		Verbose: *verbose,
	}
	if *projectFile != "" {
		p, err := project.Load(*projectFile)
		if err != nil {
			return opts, err
		}
		if len(args) == 0 {
			units, err := p.Units()
			if err != nil {
				return opts, err
			}
			opts.Units = units
		}
		opts.ErrorConfig = p.Diagnostics.Config
		opts.Format = diag.Format(p.Diagnostics.Format)
		opts.HeaderDir = p.Output.HeaderDir
		opts.HardwareConf = p.Output.HardwareConf
	}
	if len(args) > 0 {
		opts.Units = args
	}
	if len(opts.Units) == 0 {
		return opts, errors.New("no input files")
	}
	if *errorConfig != "" {
		opts.ErrorConfig = *errorConfig
	}
	if *format != "" {
		opts.Format = diag.Format(*format)
	}
	if *headerDir != "" {
		opts.HeaderDir = *headerDir
	}
	if *hardwareConf != "" {
		opts.HardwareConf = *hardwareConf
	}
	return opts, nil
}

// runCompile runs the pipeline and returns an exit code: 0 on success,
// 1 if errors were reported and 2 if the pipeline could not run.
func runCompile(opts driver.Options) int {
	opts.Diagnostics = os.Stderr
	opts.Log = os.Stderr
	_, err := driver.Run(context.Background(), opts)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, driver.ErrFailed):
		return 1
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return 2
}

// runExplain prints the description of an error code.
func runExplain(code string) int {
	text, err := diag.NewRegistry().Explain(code)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Print(text)
	return 0
}

// runDumpErrorConfig prints the severity of every code after applying the
// configuration at path, if any.
func runDumpErrorConfig(path string) int {
	r := diag.NewRegistry()
	if path != "" {
		cfg, err := diag.LoadConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		if err := r.Configure(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}
	data, err := r.Configuration().MarshalTOML()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	os.Stdout.Write(data)
	return 0
}

func readUnit(filename string) (*syntax.CompilationUnit, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return syntax.ReadUnit(filename, f)
}

// runEmitAST reads a unit and outputs its AST.
func runEmitAST(filename string) int {
	u, err := readUnit(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	switch *astFormat {
	case "json":
		if err := syntax.FprintJSON(os.Stdout, u); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	default:
		syntax.Fprint(os.Stdout, u)
	}
	return 0
}

// runEmitIndex indexes a unit on its own and lists what it declares.
func runEmitIndex(filename string) int {
	u, err := readUnit(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	unit := indexer.Index(u)

	// sizes need the builtin types
	full := index.New()
	full.Import(indexer.Builtins())
	full.Import(unit)
	indexer.ResolveConstants(full)

	printIndex(unit, types.NewSizes(full))
	return 0
}

func printIndex(idx *index.Index, sizes *types.Sizes) {
	fmt.Printf("%-10s %-24s %s\n", "KIND", "NAME", "TYPE")
	fmt.Printf("%-10s %-24s %s\n", strings.Repeat("-", 10), strings.Repeat("-", 24), strings.Repeat("-", 20))

	for _, g := range idx.Globals().Values() {
		fmt.Printf("%-10s %-24s %s\n", "global", g.Name, g.TypeName)
	}
	for _, t := range idx.Types().Values() {
		if t.IsInternal() {
			continue
		}
		fmt.Printf("%-10s %-24s %s (size: %d, align: %d)\n", "type", t.Name, t.Nature, sizes.Sizeof(t), sizes.Alignof(t))
	}
	for _, p := range idx.Pous().Values() {
		ret := p.ReturnType
		if ret == "" {
			ret = "-"
		}
		fmt.Printf("%-10s %-24s %s\n", strings.ToLower(p.Kind.String()), p.Name, ret)
		for _, m := range idx.ContainerMembers(p.Name) {
			fmt.Printf("%-10s %-24s %s\n", "", "."+m.Name, m.TypeName)
		}
	}
	for _, i := range idx.Interfaces().Values() {
		fmt.Printf("%-10s %-24s %s\n", "interface", i.Name, "-")
	}
}
