package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/kwedelange/minilang/pkg/lang"
)

// CLI is the command-line surface of spec §6.1: `-h`, `-v`, `-t<N>`,
// `-d<N>`, positional module_file, plus a `-config` flag for the
// layered-configuration AMBIENT STACK supplement.
var CLI struct {
	Version    bool   `short:"v" help:"Print the interpreter version and exit"`
	TabWidth   int    `short:"t" name:"tab-width" help:"Columns a tab advances the indentation column by"`
	Debug      int    `short:"d" name:"debug" help:"Debug bitmask: 1=dump tokens, 4/8=dump AST, 16/32=dump final state"`
	Color      bool   `name:"color" help:"Colourise error diagnostics"`
	ConfigPath string `name:"config" help:"Path to a YAML configuration file" default:"minilang.yaml"`
	Module     string `arg:"" optional:"" help:"Module file to run"`
}

const version = "minilang 0.1.0"

func main() {
	kctx := kong.Parse(&CLI)

	if CLI.Version {
		fmt.Println(version)
		return
	}
	if CLI.Module == "" {
		kctx.FatalIfErrorf(fmt.Errorf("module_file is required"))
		return
	}

	flagsSet := map[string]bool{}
	if CLI.TabWidth != 0 {
		flagsSet["tab-width"] = true
	}
	if CLI.Debug != 0 {
		flagsSet["debug"] = true
	}
	if CLI.Color {
		flagsSet["color"] = true
	}

	cfg, err := lang.LoadConfig(CLI.ConfigPath, lang.Config{
		TabWidth:         CLI.TabWidth,
		DebugBitmask:     CLI.Debug,
		ColorDiagnostics: CLI.Color,
	}, flagsSet)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(int(lang.SystemError))
	}

	exitCode := run(CLI.Module, cfg)
	os.Exit(exitCode)
}

func run(path string, cfg lang.Config) int {
	if cfg.DebugBitmask != 0 {
		return runWithDebug(path, cfg)
	}

	exitCode, err := lang.Run(path, lang.RunOptions{TabWidth: cfg.TabWidth})
	if err != nil {
		lang.PrintDiagnostic(os.Stderr, err, cfg.ColorDiagnostics)
	}
	return exitCode
}

// runWithDebug drives the pipeline a stage at a time so it can interleave
// the `-d` dump points (SPEC_FULL.md supplemented feature 1); lang.Run
// itself knows nothing about debug dumping.
func runWithDebug(path string, cfg lang.Config) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return int(lang.SystemError)
	}

	if cfg.DebugBitmask&1 != 0 {
		if err := lang.DumpTokens(os.Stdout, path, src, cfg.TabWidth); err != nil {
			lang.PrintDiagnostic(os.Stderr, err, cfg.ColorDiagnostics)
			return exitCodeOf(err)
		}
	}

	modules := lang.NewModuleTable()
	modules.Loader = lang.MapLoader{path: src}
	program, err := lang.ParseModule(path, modules, cfg.TabWidth)
	if err != nil {
		lang.PrintDiagnostic(os.Stderr, err, cfg.ColorDiagnostics)
		return exitCodeOf(err)
	}

	if cfg.DebugBitmask&(4|8) != 0 {
		lang.DumpAST(os.Stdout, program)
		if cfg.DebugBitmask&8 == 0 {
			return 0
		}
	}

	scopes := lang.NewScopeStack()
	checker := lang.NewChecker(path, scopes, modules)
	if err := checker.Check(program); err != nil {
		lang.PrintDiagnostic(os.Stderr, err, cfg.ColorDiagnostics)
		return exitCodeOf(err)
	}

	evaluator := lang.NewEvaluator(path, scopes, modules, os.Stdout, os.Stdin)
	result, err := evaluator.Run(program)
	if err != nil {
		lang.PrintDiagnostic(os.Stderr, err, cfg.ColorDiagnostics)
		return exitCodeOf(err)
	}

	if cfg.DebugBitmask&(16|32) != 0 {
		lang.DumpState(os.Stdout, result)
	}

	exitCode, _ := result.ExitValue()
	return exitCode
}

func exitCodeOf(err error) int {
	if le, ok := lang.AsLangError(err); ok {
		return le.Kind.ExitCode()
	}
	return int(lang.SystemError)
}
