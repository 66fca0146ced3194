package lang

import "fmt"

// Pos is the source position every node carries: the module it came from,
// its 1-based line, and the byte offset of the start of that line, so the
// error reporter can echo the offending line (spec §3).
type Pos struct {
	Module string
	Line   int
	BOL    int
}

// Trailer is the optional subscript/slice chain plus at most one
// .method(args) call that follows any primary expression (spec §3, §4.3).
type Trailer struct {
	Subscripts []Subscript
	Method     string // "" if no method call was attached
	MethodArgs []Expr
}

// Subscript is either a single index (End == nil) or a slice (Start/End,
// either of which may be nil to mean "defaulted").
type Subscript struct {
	Start Expr
	End   Expr
	Slice bool
}

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	String() string
	Position() Pos
	GetTrailer() *Trailer
}

type exprBase struct {
	Pos     Pos
	Trailer *Trailer
}

func (e *exprBase) exprNode()          {}
func (e *exprBase) Position() Pos      { return e.Pos }
func (e *exprBase) GetTrailer() *Trailer { return e.Trailer }

// Literal is a char/int/float/str constant, still carrying its raw source
// lexeme; it is converted to a Value at first evaluation (spec §4.5).
type Literal struct {
	exprBase
	Type   TokenType // CHAR, INT, FLOAT, or STR
	Lexeme string
}

func (l *Literal) String() string { return fmt.Sprintf("%s(%s)", l.Type, l.Lexeme) }

// ListLiteral is `[e1, e2, ...]`; each element is evaluated and deep-copied
// into a fresh list (spec §4.5, the ARGLIST variant).
type ListLiteral struct {
	exprBase
	Elements []Expr
}

func (l *ListLiteral) String() string { return fmt.Sprintf("%v", l.Elements) }

// Reference is a read of a named variable.
type Reference struct {
	exprBase
	Name string
}

func (r *Reference) String() string { return r.Name }

// BinaryExpr represents Left Op Right for the arithmetic/comparison/
// membership operators of spec §4.5.
type BinaryExpr struct {
	exprBase
	Op    TokenType
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) String() string { return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right) }

// LogicalExpr represents Left and/or Right. Kept distinct from BinaryExpr
// to make the non-short-circuit evaluation rule (spec §4.5, §9) explicit at
// the type level even though both operands are always evaluated.
type LogicalExpr struct {
	exprBase
	Op    TokenType
	Left  Expr
	Right Expr
}

func (l *LogicalExpr) String() string { return fmt.Sprintf("(%s %s %s)", l.Left, l.Op, l.Right) }

// UnaryExpr represents !x, -x, +x.
type UnaryExpr struct {
	exprBase
	Op    TokenType
	Right Expr
}

func (u *UnaryExpr) String() string { return fmt.Sprintf("(%s%s)", u.Op, u.Right) }

// Assignment represents `target op value`, where op is EQUAL or one of the
// shorthand operators. It is an expression (spec §4.3: "`=` is an
// expression-level operator"), so it evaluates to the assigned value.
type Assignment struct {
	exprBase
	Target Expr
	Op     TokenType
	Value  Expr
}

func (a *Assignment) String() string { return fmt.Sprintf("(%s %s %s)", a.Target, a.Op, a.Value) }

// FunctionCall represents name(args). Builtin is set at parse time by
// looking the name up in the builtin registry (spec §4.3).
type FunctionCall struct {
	exprBase
	Name    string
	Args    []Expr
	Builtin bool
}

func (c *FunctionCall) String() string { return fmt.Sprintf("%s(%v)", c.Name, c.Args) }

//  Statement nodes

// Stmt is implemented by every node that does not itself produce a value.
type Stmt interface {
	stmtNode()
	String() string
	Position() Pos
}

type stmtBase struct {
	Pos Pos
}

func (s *stmtBase) stmtNode()     {}
func (s *stmtBase) Position() Pos { return s.Pos }

// VariableDecl represents `type name [= expr]`.
type VariableDecl struct {
	stmtBase
	Type TokenType // CHAR, INT, FLOAT, STR, LIST
	Name string
	Init Expr // nil if no initializer; falls back to the type's zero value
}

func (d *VariableDecl) String() string { return fmt.Sprintf("%s %s = %s", d.Type, d.Name, d.Init) }

// Block is a sequence of statements produced by NEWLINE INDENT stmt+ DEDENT.
type Block struct {
	stmtBase
	Stmts []Stmt
}

func (b *Block) String() string { return fmt.Sprintf("Block(len=%d)", len(b.Stmts)) }

// IfStmt represents `if cond: body [else: elseBody]`.
type IfStmt struct {
	stmtBase
	Condition Expr
	Body      *Block
	ElseBody  *Block // nil if there is no else clause
}

func (i *IfStmt) String() string { return fmt.Sprintf("if %s: %s", i.Condition, i.Body) }

// WhileStmt represents `while cond: body`.
type WhileStmt struct {
	stmtBase
	Condition Expr
	Body      *Block
}

func (w *WhileStmt) String() string { return fmt.Sprintf("while %s: %s", w.Condition, w.Body) }

// DoWhileStmt represents `do: body while cond` — body runs at least once.
type DoWhileStmt struct {
	stmtBase
	Body      *Block
	Condition Expr
}

func (d *DoWhileStmt) String() string { return fmt.Sprintf("do: %s while %s", d.Body, d.Condition) }

// ForStmt represents `for id in seq: body`.
type ForStmt struct {
	stmtBase
	Var  string
	Seq  Expr
	Body *Block
}

func (f *ForStmt) String() string { return fmt.Sprintf("for %s in %s: %s", f.Var, f.Seq, f.Body) }

// FunctionDecl represents `def name(params): body`.
type FunctionDecl struct {
	stmtBase
	Name   string
	Params []string
	Body   *Block

	// checked latches true once the checker has validated this function's
	// body, preventing infinite recursion when validating self- and
	// mutually-recursive calls (spec §4.4).
	checked bool
}

func (f *FunctionDecl) String() string {
	return fmt.Sprintf("def %s(%v): %s", f.Name, f.Params, f.Body)
}

// PrintStmt represents `print [-raw] e1, e2, ...`.
type PrintStmt struct {
	stmtBase
	Raw  bool
	Args []Expr
}

func (p *PrintStmt) String() string { return fmt.Sprintf("print(raw=%v, %v)", p.Raw, p.Args) }

// InputItem is one (prompt, target) pair of an input statement.
type InputItem struct {
	Prompt string // "" when omitted
	Target string
}

// InputStmt represents `input [prompt] id, [prompt] id, ...`.
type InputStmt struct {
	stmtBase
	Items []InputItem
}

func (s *InputStmt) String() string { return fmt.Sprintf("input(%v)", s.Items) }

// ImportStmt represents `import name`. Body is the already-parsed AST of
// the imported module, attached at parse time (spec §4.3).
type ImportStmt struct {
	stmtBase
	ModuleName string
	Body       *Block
}

func (s *ImportStmt) String() string { return fmt.Sprintf("import %s", s.ModuleName) }

// ReturnStmt represents `return [expr]`.
type ReturnStmt struct {
	stmtBase
	Expr Expr // nil means "return 0"
}

func (r *ReturnStmt) String() string { return fmt.Sprintf("return %s", r.Expr) }

// BreakStmt represents `break`.
type BreakStmt struct{ stmtBase }

func (s *BreakStmt) String() string { return "break" }

// ContinueStmt represents `continue`.
type ContinueStmt struct{ stmtBase }

func (s *ContinueStmt) String() string { return "continue" }

// PassStmt represents `pass`.
type PassStmt struct{ stmtBase }

func (s *PassStmt) String() string { return "pass" }

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	stmtBase
	Expr Expr
}

func (e *ExprStmt) String() string { return fmt.Sprintf("ExprStmt(%s)", e.Expr) }
