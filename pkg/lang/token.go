package lang

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	UNKNOWN TokenType = iota // sentinel: not yet classified

	// Literals
	CHARLIT    // 'c'
	INTLIT     // 123
	FLOATLIT   // 1.5, 1e10
	STRINGLIT  // "..."
	IDENTIFIER // variable / function name

	// Type keywords
	CHAR
	INT
	FLOAT
	STR
	LIST

	// Statement keywords
	DEF
	IF
	ELSE
	WHILE
	DO
	FOR
	PRINT
	RETURN
	INPUT
	IMPORT
	PASS
	BREAK
	CONTINUE
	IN

	// Logical keywords
	AND
	OR

	// Punctuation
	LPAR
	RPAR
	LSQB
	RSQB
	COMMA
	DOT
	COLON

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	NOT

	EQUAL        // =
	EQEQUAL      // ==
	NOTEQUAL     // != or <>
	LESS         // <
	LESSEQUAL    // <=
	GREATER      // >
	GREATEREQUAL // >=
	PLUSEQUAL    // +=
	MINUSEQUAL   // -=
	STAREQUAL    // *=
	SLASHEQUAL   // /=
	PERCENTEQUAL // %=

	// Synthetic
	NEWLINE
	INDENT
	DEDENT
	ENDMARKER
)

// keywords maps source text to its keyword TokenType. Looked up by the
// lexer after scanning a full identifier; case-sensitive, exact.
var keywords = map[string]TokenType{
	"char":     CHAR,
	"int":      INT,
	"float":    FLOAT,
	"str":      STR,
	"list":     LIST,
	"def":      DEF,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"do":       DO,
	"for":      FOR,
	"print":    PRINT,
	"return":   RETURN,
	"input":    INPUT,
	"import":   IMPORT,
	"pass":     PASS,
	"break":    BREAK,
	"continue": CONTINUE,
	"in":       IN,
	"and":      AND,
	"or":       OR,
}

var tokenNames = map[TokenType]string{
	UNKNOWN:      "UNKNOWN",
	CHARLIT:      "CHARACTER LITERAL",
	INTLIT:       "INTEGER LITERAL",
	FLOATLIT:     "FLOAT LITERAL",
	STRINGLIT:    "STRING LITERAL",
	IDENTIFIER:   "IDENTIFIER",
	CHAR:         "char",
	INT:          "int",
	FLOAT:        "float",
	STR:          "str",
	LIST:         "list",
	DEF:          "def",
	IF:           "if",
	ELSE:         "else",
	WHILE:        "while",
	DO:           "do",
	FOR:          "for",
	PRINT:        "print",
	RETURN:       "return",
	INPUT:        "input",
	IMPORT:       "import",
	PASS:         "pass",
	BREAK:        "break",
	CONTINUE:     "continue",
	IN:           "in",
	AND:          "and",
	OR:           "or",
	LPAR:         "(",
	RPAR:         ")",
	LSQB:         "[",
	RSQB:         "]",
	COMMA:        ",",
	DOT:          ".",
	COLON:        ":",
	PLUS:         "+",
	MINUS:        "-",
	STAR:         "*",
	SLASH:        "/",
	PERCENT:      "%",
	NOT:          "!",
	EQUAL:        "=",
	EQEQUAL:      "==",
	NOTEQUAL:     "!=",
	LESS:         "<",
	LESSEQUAL:    "<=",
	GREATER:      ">",
	GREATEREQUAL: ">=",
	PLUSEQUAL:    "+=",
	MINUSEQUAL:   "-=",
	STAREQUAL:    "*=",
	SLASHEQUAL:   "/=",
	PERCENTEQUAL: "%=",
	NEWLINE:      "NEWLINE",
	INDENT:       "INDENT",
	DEDENT:       "DEDENT",
	ENDMARKER:    "ENDMARKER",
}

func (tt TokenType) String() string {
	if s, ok := tokenNames[tt]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// shorthandAssignOps maps a shorthand assignment token to the binary
// operator it performs before assigning, e.g. PLUSEQUAL -> PLUS.
var shorthandAssignOps = map[TokenType]TokenType{
	PLUSEQUAL:    PLUS,
	MINUSEQUAL:   MINUS,
	STAREQUAL:    STAR,
	SLASHEQUAL:   SLASH,
	PERCENTEQUAL: PERCENT,
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // source text of literals and identifiers; char/str escapes already resolved
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q line %d", t.Type, t.Lexeme, t.Line)
}
