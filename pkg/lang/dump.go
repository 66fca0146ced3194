package lang

import (
	"fmt"
	"io"
)

// DumpTokens lexes src and writes every token to w, one per line, for the
// `-d` bit-1 debug flag (SPEC_FULL.md supplemented feature 1). The core
// lexer/parser/checker/evaluator never call this themselves; it is a
// collaborator the CLI reaches for before parsing.
func DumpTokens(w io.Writer, moduleName string, src []byte, tabWidth int) error {
	lexer := NewLexer(NewReader(moduleName, src), tabWidth)
	for {
		tok, err := lexer.NextToken()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, tok)
		if tok.Type == ENDMARKER {
			return nil
		}
	}
}

// DumpAST writes program's tree to w using every node's String() method,
// for the `-d` bit-4/8 debug flags.
func DumpAST(w io.Writer, program *Block) {
	fmt.Fprintln(w, program)
}

// DumpState writes result's final runtime value to w, for the `-d`
// bit-16/32 dump-after-exit debug flags. The evaluator has no knowledge of
// this; the CLI calls it itself after Run returns.
func DumpState(w io.Writer, result *Value) {
	fmt.Fprintf(w, "exit value: %s (%s)\n", toDisplayString(result), result.TypeName())
}
