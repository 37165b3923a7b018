// Command khrc compiles behavior graph documents to KHR_interactivity JSON.
//
// Usage:
//
//	khrc [options] <input>
//
// Examples:
//
//	khrc graph.yaml                      # Compile to stdout
//	khrc -o graph.json graph.yaml        # Compile to file
//	khrc -indent 2 graph.yaml            # Indented output
//	khrc -check graph.json               # Check a compiled graph
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/khrgraph"
	"github.com/gogpu/khrgraph/config"
	"github.com/gogpu/khrgraph/gltf"
	"github.com/gogpu/khrgraph/ir"
	"github.com/gogpu/khrgraph/schema"
)

const khrcVersion = "0.1.0-dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	output     string
	configFile string
	noConfig   bool
	validate   bool
	fold       bool
	dedup      bool
	noCleanUp  bool
	indent     int
	logLevel   string
	check      bool
	stats      bool
	version    bool
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("khrc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var f flags
	fs.StringVar(&f.output, "o", "", "output `file` (default: stdout)")
	fs.StringVar(&f.configFile, "config", "", "use specific config `file`")
	fs.BoolVar(&f.noConfig, "no-config", false, "ignore config files")
	fs.BoolVar(&f.validate, "validate", true, "validate the graph before compiling")
	fs.BoolVar(&f.fold, "fold", true, "fold constant math into literals")
	fs.BoolVar(&f.dedup, "dedup", true, "merge duplicate pure nodes")
	fs.BoolVar(&f.noCleanUp, "no-cleanup", false, "disable every clean-up")
	fs.IntVar(&f.indent, "indent", 0, "JSON indent width, 0 for compact output")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&f.check, "check", false, "read a compiled graph and report problems")
	fs.BoolVar(&f.stats, "stats", false, "print compilation statistics")
	fs.BoolVar(&f.version, "version", false, "print version")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: khrc [options] <input.yaml>\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nConfig:\n")
		fmt.Fprintf(stderr, "  Searches for khrgraph.toml or .khrgraph.toml next to the input and in parent directories.\n")
		fmt.Fprintf(stderr, "  CLI flags override config file settings.\n")
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  khrc graph.yaml                 Compile to stdout\n")
		fmt.Fprintf(stderr, "  khrc -o graph.json graph.yaml   Compile to file\n")
		fmt.Fprintf(stderr, "  khrc -check graph.json          Check a compiled graph\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if f.version {
		fmt.Fprintf(stdout, "khrc version %s\n", khrcVersion)
		return nil
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("no input file specified")
	}
	inputPath := fs.Arg(0)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	cfg, configPath, err := loadConfig(f, inputPath)
	if err != nil {
		return err
	}

	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	cli := config.MergeOptions{NoCleanUp: f.noCleanUp}
	if set["validate"] {
		cli.Validate = &f.validate
	}
	if set["fold"] {
		cli.FoldConstants = &f.fold
	}
	if set["dedup"] {
		cli.Deduplicate = &f.dedup
	}
	if set["indent"] {
		cli.Indent = &f.indent
	}
	opts := cfg.Merge(cli)

	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	opts.Logger = logger
	if configPath != "" {
		logger.Debug("using config", "path", configPath)
	}

	if f.check {
		return check(data, stdout)
	}

	result, err := khrgraph.CompileWithOptions(data, opts)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", inputPath, err)
	}

	if f.stats {
		s := result.Stats
		fmt.Fprintf(stderr, "nodes: %d -> %d, conversions: %d, cycles broken: %d, removed: %d, declarations: %d, types: %d, diagnostics: %d\n",
			s.NodesIn, s.NodesOut, s.ConversionsInserted, s.CyclesBroken, s.NodesRemoved, s.Declarations, s.Types, len(result.Diagnostics))
	}

	if f.output == "" {
		if _, err := stdout.Write(result.JSON); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(f.output, result.JSON, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	fmt.Fprintf(stdout, "Successfully compiled %s to %s (%d bytes)\n", inputPath, f.output, len(result.JSON))
	return nil
}

// loadConfig returns the config named by -config, the one discovered
// from the input's directory, or an empty config.
func loadConfig(f flags, inputPath string) (*config.Config, string, error) {
	if f.noConfig {
		return &config.Config{}, "", nil
	}
	if f.configFile != "" {
		cfg, err := config.LoadFile(f.configFile)
		if err != nil {
			return nil, "", fmt.Errorf("loading config file %s: %w", f.configFile, err)
		}
		return cfg, f.configFile, nil
	}
	cfg, path, err := config.Load(filepath.Dir(inputPath))
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	return cfg, path, nil
}

// check reads a compiled graph and prints every structural error and
// diagnostic found in it.
func check(data []byte, out io.Writer) error {
	g, err := gltf.Read(data, schema.Default())
	if err != nil {
		return err
	}
	errs, err := ir.Validate(g)
	if err != nil {
		return err
	}
	for _, e := range errs {
		fmt.Fprintf(out, "error: %v\n", e)
	}
	diags := ir.ValidateCompiled(g)
	for _, d := range diags {
		fmt.Fprintf(out, "warning: %s\n", d)
	}
	if len(errs) > 0 || len(diags) > 0 {
		return fmt.Errorf("%d errors, %d warnings", len(errs), len(diags))
	}
	fmt.Fprintf(out, "ok: %d nodes, %d declarations, %d types\n", len(g.Nodes), len(g.Declarations), g.Types.Len())
	return nil
}
