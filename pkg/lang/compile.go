package lang

import (
	"io"
	"os"
)

// RunOptions configures one interpreter run (spec §6.1).
type RunOptions struct {
	// TabWidth is the number of columns a tab advances to, for the
	// indentation measurement the lexer performs (spec §4.1).
	TabWidth int

	// BaseDir anchors relative `import` module names, mirroring the
	// directory the entry module was loaded from.
	BaseDir string

	Stdout io.Writer
	Stdin  io.Reader
}

func (o RunOptions) withDefaults() RunOptions {
	if o.TabWidth <= 0 {
		o.TabWidth = defaultTabWidth
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	return o
}

// Run loads, parses, checks, and evaluates the module named path, and
// returns the process exit code the run produced (spec §6.1): the integer
// value of the last expression statement executed when numeric, else 0; a
// *LangError's ExitCode() if evaluation failed.
func Run(path string, opts RunOptions) (int, error) {
	opts = opts.withDefaults()

	modules := NewModuleTable()
	modules.BaseDir = opts.BaseDir

	program, err := ParseModule(path, modules, opts.TabWidth)
	if err != nil {
		return exitCodeFor(err), err
	}

	scopes := NewScopeStack()
	checker := NewChecker(path, scopes, modules)
	if err := checker.Check(program); err != nil {
		return exitCodeFor(err), err
	}

	evaluator := NewEvaluator(path, scopes, modules, opts.Stdout, opts.Stdin)
	result, err := evaluator.Run(program)
	if err != nil {
		return exitCodeFor(err), err
	}
	defer result.Decref()

	d := deref(result)
	if _, ok := numericRank(d); ok {
		return int(asInt(d)), nil
	}
	return 0, nil
}

func exitCodeFor(err error) int {
	if le, ok := AsLangError(err); ok {
		return le.Kind.ExitCode()
	}
	return SystemError.ExitCode()
}

// RunToStrings is a test convenience counterpart to Run: the same
// parse→check→evaluate pipeline, loading module source from an in-memory
// map instead of the filesystem and capturing stdout as a string.
func RunToStrings(entry string, sources map[string][]byte, stdin io.Reader) (exitCode int, stdout string, err error) {
	var out writerBuffer
	modules := MapLoader(sources)

	program, perr := parseFromLoader(entry, modules)
	if perr != nil {
		return exitCodeFor(perr), "", perr
	}

	scopes := NewScopeStack()
	table := newTableFromLoader(modules)
	checker := NewChecker(entry, scopes, table)
	if cerr := checker.Check(program); cerr != nil {
		return exitCodeFor(cerr), "", cerr
	}

	evaluator := NewEvaluator(entry, scopes, table, &out, stdin)
	result, eerr := evaluator.Run(program)
	if eerr != nil {
		return exitCodeFor(eerr), out.String(), eerr
	}
	defer result.Decref()

	d := deref(result)
	if _, ok := numericRank(d); ok {
		return int(asInt(d)), out.String(), nil
	}
	return 0, out.String(), nil
}

func newTableFromLoader(loader MapLoader) *ModuleTable {
	t := NewModuleTable()
	t.Loader = loader
	return t
}

func parseFromLoader(entry string, loader MapLoader) (*Block, error) {
	t := newTableFromLoader(loader)
	return ParseModule(entry, t, defaultTabWidth)
}

type writerBuffer struct {
	buf []byte
}

func (w *writerBuffer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *writerBuffer) String() string { return string(w.buf) }
