package lang

import (
	"fmt"
	"unicode"
)

const defaultTabWidth = 4

// maxIndentDepth is the maximum nested indentation depth (spec §6.2).
const maxIndentDepth = 132

// lexerState is a complete snapshot of a Lexer, for save/load around a
// recursive parse of an imported module (spec §4.2: "save(state)/load(state)
// snapshot and restore the complete lexer state").
type lexerState struct {
	readerPos, readerLine, readerBOL int
	atBOL                            bool
	indentStack                      []int
	peeked                           *Token
	peekErr                          error
}

// Lexer converts a module's character stream into a token stream, emitting
// synthetic INDENT/DEDENT/NEWLINE/ENDMARKER tokens based on leading
// whitespace, the way original_source/scanner.c's read_next_token() does.
type Lexer struct {
	reader   *Reader
	tabWidth int

	atBOL       bool
	indentStack []int

	peeked  *Token
	peekErr error
}

// NewLexer creates a Lexer reading from r. tabWidth must be >= 1; pass 0 to
// use the default of 4 (spec §4.2).
func NewLexer(r *Reader, tabWidth int) *Lexer {
	if tabWidth <= 0 {
		tabWidth = defaultTabWidth
	}
	return &Lexer{
		reader:      r,
		tabWidth:    tabWidth,
		atBOL:       true,
		indentStack: []int{0},
	}
}

// Save snapshots the complete lexer state (spec §4.2).
func (l *Lexer) Save() lexerState {
	return lexerState{
		readerPos:   l.reader.pos,
		readerLine:  l.reader.line,
		readerBOL:   l.reader.bol,
		atBOL:       l.atBOL,
		indentStack: append([]int(nil), l.indentStack...),
		peeked:      l.peeked,
		peekErr:     l.peekErr,
	}
}

// Load restores a previously saved lexer state.
func (l *Lexer) Load(s lexerState) {
	l.reader.pos = s.readerPos
	l.reader.line = s.readerLine
	l.reader.bol = s.readerBOL
	l.atBOL = s.atBOL
	l.indentStack = s.indentStack
	l.peeked = s.peeked
	l.peekErr = s.peekErr
}

func (l *Lexer) errf(line int, format string, args ...any) error {
	return newError(SyntaxError, l.reader.name, line, l.reader.LineText(line), fmt.Sprintf(format, args...))
}

// NextToken returns the next token, consuming a cached peek if present.
func (l *Lexer) NextToken() (Token, error) {
	if l.peeked != nil {
		t, err := *l.peeked, l.peekErr
		l.peeked, l.peekErr = nil, nil
		return t, err
	}
	return l.scan()
}

// PeekToken looks one token ahead without consuming it. Only a single
// level of look-ahead is supported (spec §4.2).
func (l *Lexer) PeekToken() (Token, error) {
	if l.peeked == nil {
		t, err := l.scan()
		l.peeked, l.peekErr = &t, err
	}
	return *l.peeked, l.peekErr
}

// scan performs the actual token read described in spec §4.2.
func (l *Lexer) scan() (Token, error) {
	for l.atBOL {
		l.atBOL = false

		col := 0
		var ch rune
		for {
			ch = l.reader.NextChar()
			if ch == ' ' {
				col++
			} else if ch == '\t' {
				col = (col/l.tabWidth + 1) * l.tabWidth
			} else {
				break
			}
		}

		if ch == '#' {
			for ch != '\n' && ch != EOFRune {
				ch = l.reader.NextChar()
			}
		}
		if ch == '\r' {
			ch = l.reader.NextChar()
		}

		top := len(l.indentStack) - 1
		if ch == '\n' {
			l.atBOL = true
			continue
		} else if ch == EOFRune {
			if col == l.indentStack[top] {
				return Token{Type: ENDMARKER, Line: l.reader.line}, nil
			}
		} else {
			l.reader.PushBackChar()
		}

		switch {
		case col == l.indentStack[top]:
			// indentation unchanged, continue scanning the real token
		case col > l.indentStack[top]:
			if top+1 >= maxIndentDepth {
				return Token{}, l.errf(l.reader.line, "max indentation level reached")
			}
			l.indentStack = append(l.indentStack, col)
			return Token{Type: INDENT, Line: l.reader.line}, nil
		default: // col < top
			l.indentStack = l.indentStack[:top]
			top--
			if top < 0 {
				return Token{}, l.errf(l.reader.line, "inconsistent use of TAB and space in indentation")
			}
			if col != l.indentStack[top] {
				l.atBOL = true
				l.reader.pos = l.reader.bol
			}
			return Token{Type: DEDENT, Line: l.reader.line}, nil
		}
	}

	var ch rune
	for {
		ch = l.reader.NextChar()
		if ch != ' ' && ch != '\t' {
			break
		}
	}

	if ch == '#' {
		for ch != '\n' && ch != EOFRune {
			ch = l.reader.NextChar()
		}
	}

	line := l.reader.line
	if ch == '\r' {
		ch = l.reader.NextChar()
	}
	if ch == '\n' {
		l.atBOL = true
		return Token{Type: NEWLINE, Line: line}, nil
	}
	if ch == EOFRune {
		return Token{Type: ENDMARKER, Line: line}, nil
	}

	if unicode.IsDigit(ch) {
		l.reader.PushBackChar()
		return l.scanNumber()
	}
	if unicode.IsLetter(ch) || ch == '_' {
		l.reader.PushBackChar()
		return l.scanIdentifier()
	}

	switch ch {
	case '\'':
		return l.scanChar(line)
	case '"':
		return l.scanString(line)
	case '(':
		return Token{Type: LPAR, Line: line}, nil
	case ')':
		return Token{Type: RPAR, Line: line}, nil
	case '[':
		return Token{Type: LSQB, Line: line}, nil
	case ']':
		return Token{Type: RSQB, Line: line}, nil
	case ',':
		return Token{Type: COMMA, Line: line}, nil
	case '.':
		return Token{Type: DOT, Line: line}, nil
	case ':':
		return Token{Type: COLON, Line: line}, nil
	case '*':
		return l.maybeEqual(line, STAR, STAREQUAL)
	case '%':
		return l.maybeEqual(line, PERCENT, PERCENTEQUAL)
	case '+':
		return l.maybeEqual(line, PLUS, PLUSEQUAL)
	case '-':
		return l.maybeEqual(line, MINUS, MINUSEQUAL)
	case '/':
		return l.maybeEqual(line, SLASH, SLASHEQUAL)
	case '!':
		return l.maybeEqual(line, NOT, NOTEQUAL)
	case '=':
		return l.maybeEqual(line, EQUAL, EQEQUAL)
	case '<':
		if l.reader.PeekChar() == '=' {
			l.reader.NextChar()
			return Token{Type: LESSEQUAL, Line: line}, nil
		}
		if l.reader.PeekChar() == '>' {
			l.reader.NextChar()
			return Token{Type: NOTEQUAL, Lexeme: "<>", Line: line}, nil
		}
		return Token{Type: LESS, Line: line}, nil
	case '>':
		if l.reader.PeekChar() == '=' {
			l.reader.NextChar()
			return Token{Type: GREATEREQUAL, Line: line}, nil
		}
		return Token{Type: GREATER, Line: line}, nil
	}

	return Token{}, l.errf(line, "unexpected character %q", ch)
}

// maybeEqual recognises the common "op" vs "op=" two-character lookahead.
func (l *Lexer) maybeEqual(line int, plain, withEqual TokenType) (Token, error) {
	if l.reader.PeekChar() == '=' {
		l.reader.NextChar()
		return Token{Type: withEqual, Line: line}, nil
	}
	return Token{Type: plain, Line: line}, nil
}

// scanNumber reads a decimal integer, with an optional fractional part and
// optional e/E exponent (spec §4.2). Missing exponent digits are a syntax
// error, matching scanner.c's read_number().
func (l *Lexer) scanNumber() (Token, error) {
	line := l.reader.line
	var buf []rune
	dots := 0

	ch := l.reader.NextChar()
	for ch != EOFRune && (unicode.IsDigit(ch) || ch == '.') {
		if ch == '.' {
			dots++
			if dots > 1 {
				return Token{}, l.errf(line, "multiple decimal points")
			}
		}
		buf = append(buf, ch)
		ch = l.reader.NextChar()
	}

	isFloat := dots == 1
	if ch == 'e' || ch == 'E' {
		isFloat = true
		buf = append(buf, ch)
		ch = l.reader.NextChar()
		if ch == '-' || ch == '+' {
			buf = append(buf, ch)
			ch = l.reader.NextChar()
		}
		if !unicode.IsDigit(ch) {
			return Token{}, l.errf(line, "missing exponent")
		}
		for ch != EOFRune && unicode.IsDigit(ch) {
			buf = append(buf, ch)
			ch = l.reader.NextChar()
		}
	}
	l.reader.PushBackChar()

	typ := INTLIT
	if isFloat {
		typ = FLOATLIT
	}
	return Token{Type: typ, Lexeme: string(buf), Line: line}, nil
}

// scanIdentifier reads a name and classifies it as a keyword or
// IDENTIFIER via the keyword table (spec §4.2).
func (l *Lexer) scanIdentifier() (Token, error) {
	line := l.reader.line
	var buf []rune
	ch := l.reader.NextChar()
	for ch != EOFRune && (unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_') {
		buf = append(buf, ch)
		ch = l.reader.NextChar()
	}
	l.reader.PushBackChar()

	name := string(buf)
	if kw, ok := keywords[name]; ok {
		return Token{Type: kw, Lexeme: "", Line: line}, nil
	}
	return Token{Type: IDENTIFIER, Lexeme: name, Line: line}, nil
}

// escapeChar maps the escape letter following a backslash to its byte
// value, for both character and string literals (spec §4.2).
func escapeChar(ch rune) (rune, bool) {
	switch ch {
	case '0':
		return 0, true
	case 'a':
		return '\a', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case 'v':
		return '\v', true
	case '\\':
		return '\\', true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	}
	return 0, false
}

// scanChar reads a single character constant 'c' or one recognised escape.
func (l *Lexer) scanChar(line int) (Token, error) {
	ch := l.reader.NextChar()

	var val rune
	if ch == '\\' {
		esc := l.reader.NextChar()
		v, ok := escapeChar(esc)
		if !ok {
			return Token{}, newError(SyntaxError, l.reader.name, line, l.reader.LineText(line), fmt.Sprintf("unknown escape sequence: %c", esc))
		}
		val = v
	} else if ch == '\'' || ch == EOFRune {
		return Token{}, l.errf(line, "empty character constant")
	} else {
		val = ch
	}

	closing := l.reader.NextChar()
	if closing != '\'' {
		return Token{}, l.errf(line, "too many characters in character constant")
	}

	return Token{Type: CHARLIT, Lexeme: string(val), Line: line}, nil
}

// scanString reads a "..." string literal. EOF ends the string silently
// (spec §4.2), matching scanner.c's read_string().
func (l *Lexer) scanString(line int) (Token, error) {
	var buf []rune
	for {
		ch := l.reader.NextChar()
		if ch == EOFRune || ch == '"' {
			break
		}
		if ch == '\\' {
			esc := l.reader.NextChar()
			if v, ok := escapeChar(esc); ok {
				ch = v
			} else {
				ch = esc
			}
		}
		buf = append(buf, ch)
	}
	return Token{Type: STRINGLIT, Lexeme: string(buf), Line: line}, nil
}
