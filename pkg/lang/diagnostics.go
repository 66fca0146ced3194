package lang

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintDiagnostic writes err to w the way original_source/error.c's
// raise() formats a fatal error: kind, module, line, message, and the
// offending source line when the kind's table entry calls for it. When
// colorize is true the kind name is colourised (SPEC_FULL.md AMBIENT
// STACK), following the pack's cli/command_validate.go use of
// color.Red/color.Green — decoration only, never a change in what was
// decided as an error.
func PrintDiagnostic(w io.Writer, err error, colorize bool) {
	le, ok := AsLangError(err)
	if !ok {
		fmt.Fprintln(w, err)
		return
	}

	kind := le.Kind.String()
	if colorize {
		kind = color.New(color.FgRed, color.Bold).Sprint(kind)
	}
	fmt.Fprintf(w, "%s: %s:%d: %s\n", kind, le.Module, le.Line, le.Message)
	if le.SourceLine != "" {
		fmt.Fprintf(w, "    %s\n", le.SourceLine)
	}
}
