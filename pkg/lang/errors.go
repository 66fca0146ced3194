package lang

import "fmt"

// ErrorKind is one of the ten stable error numbers that double as process
// exit codes (spec §5, original_source/error.h).
type ErrorKind int

const (
	NameError ErrorKind = iota + 1
	TypeError
	SyntaxError
	ValueError
	SystemError
	IndexError
	OutOfMemoryError
	ModNotAllowedError
	DivisionByZeroError
	DesignError
)

// errorInfo describes one ErrorKind: its human-readable name and whether
// diagnostics for it should include the offending source line, matching
// original_source/error.c's errors[] table ({number, description,
// print_extra_info}).
type errorInfo struct {
	Name           string
	PrintExtraInfo bool
}

var errorTable = map[ErrorKind]errorInfo{
	NameError:           {"NameError", true},
	TypeError:           {"TypeError", true},
	SyntaxError:         {"SyntaxError", true},
	ValueError:          {"ValueError", true},
	SystemError:         {"SystemError", false},
	IndexError:          {"IndexError", true},
	OutOfMemoryError:    {"OutOfMemoryError", false},
	ModNotAllowedError:  {"ModNotAllowedError", true},
	DivisionByZeroError: {"DivisionByZeroError", true},
	DesignError:         {"DesignError", false},
}

func (k ErrorKind) String() string {
	if info, ok := errorTable[k]; ok {
		return info.Name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ExitCode returns the process exit code for this error kind, which is
// simply its stable number (spec §5: "the 10 error numbers double as
// process exit codes").
func (k ErrorKind) ExitCode() int { return int(k) }

// LangError is the single error taxonomy used across the lexer, parser,
// checker and evaluator (spec §5). It is fatal: discovering one terminates
// the run.
type LangError struct {
	Kind       ErrorKind
	Module     string
	Line       int
	SourceLine string // offending source line, populated when PrintExtraInfo
	Message    string
}

func (e *LangError) Error() string {
	if info := errorTable[e.Kind]; info.PrintExtraInfo && e.SourceLine != "" {
		return fmt.Sprintf("%s: %s:%d: %s\n    %s", e.Kind, e.Module, e.Line, e.Message, e.SourceLine)
	}
	return fmt.Sprintf("%s: %s:%d: %s", e.Kind, e.Module, e.Line, e.Message)
}

// newError builds a LangError, omitting the source line when the kind's
// table entry says diagnostics for it don't carry extra context.
func newError(kind ErrorKind, module string, line int, sourceLine, message string) error {
	e := &LangError{Kind: kind, Module: module, Line: line, Message: message}
	if info := errorTable[kind]; info.PrintExtraInfo {
		e.SourceLine = sourceLine
	}
	return e
}

// AsLangError unwraps err into a *LangError, if it is one.
func AsLangError(err error) (*LangError, bool) {
	le, ok := err.(*LangError)
	return le, ok
}
