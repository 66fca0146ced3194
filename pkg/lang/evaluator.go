package lang

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// StepKind is the outcome of executing one statement or block, replacing
// the module-global do_break/do_continue/do_return flags of the original
// with an explicit variant returned up the call stack (spec §9 design
// note: "eliminates a subtle thread-unsafety and clarifies control flow").
type StepKind int

const (
	StepNormal StepKind = iota
	StepBreak
	StepContinue
	StepReturn
)

// StepResult is what evalStmt returns: StepNormal carries no payload,
// StepReturn carries the returned Value (owned by the caller).
type StepResult struct {
	Kind  StepKind
	Value *Value
}

var normalStep = StepResult{Kind: StepNormal}

// Evaluator walks the checked AST, exchanging values through direct
// return values rather than an explicit value stack — Go's call stack
// plays that role, so every eval method's signature already carries
// exactly the value(s) its caller needs (spec §4.5: "a value stack passed
// as an argument; this keeps every visit function uniform").
type Evaluator struct {
	moduleName string
	scopes     *ScopeStack
	modules    *ModuleTable
	out        io.Writer
	in         *bufio.Reader

	// lastValue is the most recently produced expression-statement value,
	// used as the process exit value (spec §6.1: "the integer value of the
	// top-of-stack value at program end when numeric, else 0").
	lastValue *Value
}

// NewEvaluator creates an evaluator sharing scopes with the checker that
// ran before it (spec §4.4/§4.5 operate over one ScopeStack).
func NewEvaluator(moduleName string, scopes *ScopeStack, modules *ModuleTable, out io.Writer, in io.Reader) *Evaluator {
	return &Evaluator{
		moduleName: moduleName,
		scopes:     scopes,
		modules:    modules,
		out:        out,
		in:         bufio.NewReader(in),
		lastValue:  NewInt(0),
	}
}

// Run executes program and returns its exit value (spec §6.1).
func (e *Evaluator) Run(program *Block) (*Value, error) {
	if _, err := e.evalStmt(program); err != nil {
		return nil, err
	}
	return e.lastValue, nil
}

func (e *Evaluator) errf(pos Pos, kind ErrorKind, format string, args ...any) error {
	return newError(kind, pos.Module, pos.Line, e.modules.LineText(pos.Module, pos.Line), fmt.Sprintf(format, args...))
}

//  Statements

func (e *Evaluator) evalStmt(s Stmt) (StepResult, error) {
	switch v := s.(type) {
	case *VariableDecl:
		return e.evalVariableDecl(v)
	case *Block:
		for _, st := range v.Stmts {
			res, err := e.evalStmt(st)
			if err != nil {
				return StepResult{}, err
			}
			if res.Kind != StepNormal {
				return res, nil
			}
		}
		return normalStep, nil
	case *IfStmt:
		return e.evalIf(v)
	case *WhileStmt:
		return e.evalWhile(v)
	case *DoWhileStmt:
		return e.evalDoWhile(v)
	case *ForStmt:
		return e.evalFor(v)
	case *FunctionDecl:
		return normalStep, nil // bound by the checker; nothing to do at run time
	case *PrintStmt:
		return normalStep, e.evalPrint(v)
	case *InputStmt:
		return normalStep, e.evalInput(v)
	case *ImportStmt:
		return e.evalStmt(v.Body)
	case *ReturnStmt:
		var val *Value
		if v.Expr != nil {
			var err error
			val, err = e.evalExpr(v.Expr)
			if err != nil {
				return StepResult{}, err
			}
		} else {
			val = NewInt(0)
		}
		return StepResult{Kind: StepReturn, Value: val}, nil
	case *BreakStmt:
		return StepResult{Kind: StepBreak}, nil
	case *ContinueStmt:
		return StepResult{Kind: StepContinue}, nil
	case *PassStmt:
		return normalStep, nil
	case *ExprStmt:
		val, err := e.evalExpr(v.Expr)
		if err != nil {
			return StepResult{}, err
		}
		e.lastValue.Decref()
		e.lastValue = val
		return normalStep, nil
	}
	return normalStep, nil
}

func (e *Evaluator) evalVariableDecl(v *VariableDecl) (StepResult, error) {
	var val *Value
	if v.Init != nil {
		raw, err := e.evalExpr(v.Init)
		if err != nil {
			return StepResult{}, err
		}
		val, err = e.coerceToKind(raw, declKindOf(v.Type), v.Pos)
		raw.Decref()
		if err != nil {
			return StepResult{}, err
		}
	} else {
		val = ZeroValue(v.Type)
	}
	e.scopes.DefineVariable(v.Name, val)
	val.Decref()
	return normalStep, nil
}

func (e *Evaluator) evalIf(v *IfStmt) (StepResult, error) {
	cond, err := e.evalExpr(v.Condition)
	if err != nil {
		return StepResult{}, err
	}
	truthy := isTruthy(cond)
	cond.Decref()
	if truthy {
		return e.evalStmt(v.Body)
	}
	if v.ElseBody != nil {
		return e.evalStmt(v.ElseBody)
	}
	return normalStep, nil
}

func (e *Evaluator) evalWhile(v *WhileStmt) (StepResult, error) {
	for {
		cond, err := e.evalExpr(v.Condition)
		if err != nil {
			return StepResult{}, err
		}
		truthy := isTruthy(cond)
		cond.Decref()
		if !truthy {
			return normalStep, nil
		}
		res, err := e.evalStmt(v.Body)
		if err != nil {
			return StepResult{}, err
		}
		switch res.Kind {
		case StepBreak:
			return normalStep, nil
		case StepReturn:
			return res, nil
		}
	}
}

func (e *Evaluator) evalDoWhile(v *DoWhileStmt) (StepResult, error) {
	for {
		res, err := e.evalStmt(v.Body)
		if err != nil {
			return StepResult{}, err
		}
		switch res.Kind {
		case StepBreak:
			return normalStep, nil
		case StepReturn:
			return res, nil
		}
		cond, err := e.evalExpr(v.Condition)
		if err != nil {
			return StepResult{}, err
		}
		truthy := isTruthy(cond)
		cond.Decref()
		if !truthy {
			return normalStep, nil
		}
	}
}

func (e *Evaluator) evalFor(v *ForStmt) (StepResult, error) {
	seq, err := e.evalExpr(v.Seq)
	if err != nil {
		return StepResult{}, err
	}
	base := deref(seq)
	var length int
	switch base.Kind {
	case KindStr:
		length = len(base.Str)
	case KindList:
		length = len(base.List)
	default:
		seq.Decref()
		return StepResult{}, e.errf(v.Pos, TypeError, "for target must be str or list, got %s", base.Kind)
	}

	if length == 0 {
		e.scopes.DefineVariable(v.Var, NewNone())
	}
	for i := 0; i < length; i++ {
		var elem *Value
		if base.Kind == KindList {
			elem = newListNode(base.List[i])
		} else {
			elem = NewChar(base.Str[i])
		}
		e.scopes.DefineVariable(v.Var, elem)
		elem.Decref()

		res, err := e.evalStmt(v.Body)
		if err != nil {
			seq.Decref()
			return StepResult{}, err
		}
		if res.Kind == StepBreak {
			break
		}
		if res.Kind == StepReturn {
			seq.Decref()
			return res, nil
		}
	}
	seq.Decref()
	return normalStep, nil
}

func (e *Evaluator) evalPrint(v *PrintStmt) error {
	parts := make([]string, len(v.Args))
	for i, a := range v.Args {
		val, err := e.evalExpr(a)
		if err != nil {
			return err
		}
		parts[i] = toDisplayString(val)
		val.Decref()
	}
	if v.Raw {
		fmt.Fprint(e.out, strings.Join(parts, ""))
	} else {
		fmt.Fprintln(e.out, strings.Join(parts, " "))
	}
	return nil
}

// evalInput implements `input [prompt] id, ...`: prompts, reads a line,
// and parses it into a value of the existing type of id when that type is
// char, int, float or str; a target of any other type receives the line as
// a str (spec §4.5).
func (e *Evaluator) evalInput(v *InputStmt) error {
	for _, item := range v.Items {
		if item.Prompt != "" {
			fmt.Fprint(e.out, item.Prompt)
		}
		line, err := e.in.ReadString('\n')
		if err != nil && line == "" {
			line = ""
		}
		line = strings.TrimRight(line, "\r\n")

		id := e.scopes.Lookup(item.Target)
		if id == nil || id.Kind != IdentVariable {
			return e.errf(v.Pos, NameError, "%q not defined", item.Target)
		}
		parsed, err := parseInputLine(id.Value.Kind, line)
		if err != nil {
			return e.errf(v.Pos, ValueError, "%s", err)
		}
		e.scopes.DefineVariable(item.Target, parsed)
		parsed.Decref()
	}
	return nil
}

func parseInputLine(kind ValueKind, line string) (*Value, error) {
	switch kind {
	case KindChar:
		if len(line) == 0 {
			return NewChar(0), nil
		}
		return NewChar(line[0]), nil
	case KindInt:
		i, err := parseIntLexeme(strings.TrimSpace(line))
		if err != nil {
			return nil, err
		}
		return NewInt(i), nil
	case KindFloat:
		f, err := parseFloatLexeme(strings.TrimSpace(line))
		if err != nil {
			return nil, err
		}
		return NewFloat(f), nil
	case KindStr:
		return NewStr(line), nil
	}
	return NewStr(line), nil
}

//  Expressions

func (e *Evaluator) evalExpr(x Expr) (*Value, error) {
	var val *Value
	var err error
	switch v := x.(type) {
	case *Literal:
		val, err = e.evalLiteral(v)
	case *ListLiteral:
		val, err = e.evalListLiteral(v)
	case *Reference:
		val, err = e.evalReference(v)
	case *BinaryExpr:
		val, err = e.evalBinary(v)
	case *LogicalExpr:
		val, err = e.evalLogical(v)
	case *UnaryExpr:
		val, err = e.evalUnary(v)
	case *Assignment:
		val, err = e.evalAssignment(v)
	case *FunctionCall:
		val, err = e.evalCall(v)
	default:
		return nil, fmt.Errorf("unhandled expression node %T", x)
	}
	if err != nil {
		return nil, err
	}
	return e.applyTrailer(val, x.GetTrailer(), x.Position())
}

func (e *Evaluator) evalLiteral(l *Literal) (*Value, error) {
	switch l.Type {
	case CHAR:
		b, err := parseCharLexeme(l.Lexeme)
		if err != nil {
			return nil, e.errf(l.Pos, ValueError, "%s", err)
		}
		return NewChar(b), nil
	case INT:
		i, err := parseIntLexeme(l.Lexeme)
		if err != nil {
			return nil, e.errf(l.Pos, ValueError, "%s", err)
		}
		return NewInt(i), nil
	case FLOAT:
		f, err := parseFloatLexeme(l.Lexeme)
		if err != nil {
			return nil, e.errf(l.Pos, ValueError, "%s", err)
		}
		return NewFloat(f), nil
	case STR:
		return NewStr(l.Lexeme), nil
	}
	return nil, e.errf(l.Pos, DesignError, "unhandled literal type %s", l.Type)
}

func (e *Evaluator) evalListLiteral(l *ListLiteral) (*Value, error) {
	items := make([]*Value, len(l.Elements))
	for i, el := range l.Elements {
		v, err := e.evalExpr(el)
		if err != nil {
			return nil, err
		}
		items[i] = deepCopy(v)
		v.Decref()
	}
	return NewList(items), nil
}

func (e *Evaluator) evalReference(r *Reference) (*Value, error) {
	id := e.scopes.Lookup(r.Name)
	if id == nil {
		return nil, e.errf(r.Pos, NameError, "%q not defined", r.Name)
	}
	if id.Kind != IdentVariable {
		return nil, e.errf(r.Pos, TypeError, "%q is not a variable", r.Name)
	}
	id.Value.Incref()
	return id.Value, nil
}

func isTruthy(v *Value) bool {
	v = deref(v)
	switch v.Kind {
	case KindChar:
		return v.Char != 0
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindStr:
		return len(v.Str) > 0
	case KindList:
		return len(v.List) > 0
	}
	return false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (e *Evaluator) evalLogical(l *LogicalExpr) (*Value, error) {
	// Both operands are always evaluated: no short-circuiting (spec §4.5,
	// §9 — this deviates from most languages but matches the source).
	left, err := e.evalExpr(l.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(l.Right)
	if err != nil {
		left.Decref()
		return nil, err
	}
	lt, rt := isTruthy(left), isTruthy(right)
	left.Decref()
	right.Decref()
	if l.Op == AND {
		return NewInt(boolInt(lt && rt)), nil
	}
	return NewInt(boolInt(lt || rt)), nil
}

func (e *Evaluator) evalUnary(u *UnaryExpr) (*Value, error) {
	right, err := e.evalExpr(u.Right)
	if err != nil {
		return nil, err
	}
	d := deref(right)
	switch u.Op {
	case NOT:
		t := isTruthy(d)
		right.Decref()
		return NewInt(boolInt(!t)), nil
	case PLUS:
		if _, ok := numericRank(d); !ok {
			right.Decref()
			return nil, e.errf(u.Pos, TypeError, "unary + requires a numeric operand, got %s", d.Kind)
		}
		return right, nil
	case MINUS:
		rank, ok := numericRank(d)
		if !ok {
			right.Decref()
			return nil, e.errf(u.Pos, TypeError, "unary - requires a numeric operand, got %s", d.Kind)
		}
		var result *Value
		switch rank {
		case 2:
			result = NewFloat(-asFloat(d))
		case 1:
			result = NewInt(-asInt(d))
		default:
			result = NewChar(byte(-int64(d.Char)))
		}
		right.Decref()
		return result, nil
	}
	right.Decref()
	return nil, e.errf(u.Pos, DesignError, "unhandled unary operator %s", u.Op)
}

func (e *Evaluator) evalBinary(b *BinaryExpr) (*Value, error) {
	left, err := e.evalExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(b.Right)
	if err != nil {
		left.Decref()
		return nil, err
	}
	ld, rd := deref(left), deref(right)
	defer left.Decref()
	defer right.Decref()

	switch b.Op {
	case PLUS, MINUS, STAR, SLASH, PERCENT:
		return e.arith(b.Op, ld, rd, b.Pos)
	case LESS, LESSEQUAL, GREATER, GREATEREQUAL:
		return e.compare(b.Op, ld, rd, b.Pos)
	case EQEQUAL:
		return NewInt(boolInt(valueEqual(ld, rd))), nil
	case NOTEQUAL:
		return NewInt(boolInt(!valueEqual(ld, rd))), nil
	case IN:
		return e.membership(ld, rd, b.Pos)
	}
	return nil, e.errf(b.Pos, DesignError, "unhandled binary operator %s", b.Op)
}

// arith implements the arithmetic coercion law of spec §4.5/§8: result
// type is float if either operand is float, else int if either is int,
// else char.
func (e *Evaluator) arith(op TokenType, l, r *Value, pos Pos) (*Value, error) {
	lRank, lNum := numericRank(l)
	rRank, rNum := numericRank(r)
	if lNum && rNum {
		rank := lRank
		if rRank > rank {
			rank = rRank
		}
		switch op {
		case PLUS:
			return makeNumeric(rank, asFloat(l)+asFloat(r), asInt(l)+asInt(r)), nil
		case MINUS:
			return makeNumeric(rank, asFloat(l)-asFloat(r), asInt(l)-asInt(r)), nil
		case STAR:
			return makeNumeric(rank, asFloat(l)*asFloat(r), asInt(l)*asInt(r)), nil
		case SLASH:
			if rank == 2 {
				if asFloat(r) == 0 {
					return nil, e.errf(pos, DivisionByZeroError, "division by zero")
				}
				return NewFloat(asFloat(l) / asFloat(r)), nil
			}
			if asInt(r) == 0 {
				return nil, e.errf(pos, DivisionByZeroError, "division by zero")
			}
			return makeNumeric(rank, 0, asInt(l)/asInt(r)), nil
		case PERCENT:
			if rank == 2 {
				return nil, e.errf(pos, ModNotAllowedError, "%% not allowed on float operands")
			}
			if asInt(r) == 0 {
				return nil, e.errf(pos, DivisionByZeroError, "division by zero")
			}
			return makeNumeric(rank, 0, asInt(l)%asInt(r)), nil
		}
	}

	if op == PLUS {
		if l.Kind == KindStr || r.Kind == KindStr {
			return NewStr(toConcatString(l) + toConcatString(r)), nil
		}
		if l.Kind == KindList && r.Kind == KindList {
			items := make([]*Value, 0, len(l.List)+len(r.List))
			for _, it := range l.List {
				items = append(items, deepCopy(it))
			}
			for _, it := range r.List {
				items = append(items, deepCopy(it))
			}
			return NewList(items), nil
		}
	}

	if op == STAR {
		if seq, count, ok := pickRepetition(l, r); ok {
			return repeatSequence(seq, count), nil
		}
	}

	return nil, e.errf(pos, TypeError, "unsupported operand types for %s: %s and %s", op, l.Kind, r.Kind)
}

func makeNumeric(rank int, f float64, i int64) *Value {
	switch rank {
	case 2:
		return NewFloat(f)
	case 1:
		return NewInt(i)
	default:
		return NewChar(byte(i))
	}
}

// pickRepetition detects the "exactly one operand numeric, the other
// string or list" shape (spec §4.5) and returns the sequence operand plus
// the repeat count.
func pickRepetition(l, r *Value) (seq *Value, count int64, ok bool) {
	_, lNum := numericRank(l)
	_, rNum := numericRank(r)
	lSeq := l.Kind == KindStr || l.Kind == KindList
	rSeq := r.Kind == KindStr || r.Kind == KindList
	if lNum && rSeq {
		return r, asInt(l), true
	}
	if rNum && lSeq {
		return l, asInt(r), true
	}
	return nil, 0, false
}

// repeatSequence implements string/list repetition, clamping a negative
// count to 0 (spec §4.5).
func repeatSequence(seq *Value, count int64) *Value {
	if count < 0 {
		count = 0
	}
	switch seq.Kind {
	case KindStr:
		return NewStr(strings.Repeat(seq.Str, int(count)))
	case KindList:
		items := make([]*Value, 0, len(seq.List)*int(count))
		for i := int64(0); i < count; i++ {
			for _, it := range seq.List {
				items = append(items, deepCopy(it))
			}
		}
		return NewList(items)
	}
	return NewNone()
}

func (e *Evaluator) compare(op TokenType, l, r *Value, pos Pos) (*Value, error) {
	if _, ok := numericRank(l); !ok {
		return nil, e.errf(pos, TypeError, "comparison requires numeric operands, got %s", l.Kind)
	}
	if _, ok := numericRank(r); !ok {
		return nil, e.errf(pos, TypeError, "comparison requires numeric operands, got %s", r.Kind)
	}
	lf, rf := asFloat(l), asFloat(r)
	var result bool
	switch op {
	case LESS:
		result = lf < rf
	case LESSEQUAL:
		result = lf <= rf
	case GREATER:
		result = lf > rf
	case GREATEREQUAL:
		result = lf >= rf
	}
	return NewInt(boolInt(result)), nil
}

func (e *Evaluator) membership(l, r *Value, pos Pos) (*Value, error) {
	switch r.Kind {
	case KindStr:
		lb, ok := singleByte(l)
		if !ok {
			return NewInt(0), nil
		}
		return NewInt(boolInt(strings.IndexByte(r.Str, lb) >= 0)), nil
	case KindList:
		for _, it := range r.List {
			if valueEqual(l, it) {
				return NewInt(1), nil
			}
		}
		return NewInt(0), nil
	}
	return nil, e.errf(pos, TypeError, "'in' requires a str or list right operand, got %s", r.Kind)
}

// singleByte lets `in` compare a char and a single-character str
// interchangeably against string elements.
func singleByte(v *Value) (byte, bool) {
	switch v.Kind {
	case KindChar:
		return v.Char, true
	case KindStr:
		if len(v.Str) == 1 {
			return v.Str[0], true
		}
	}
	return 0, false
}

//  Assignment

func (e *Evaluator) evalAssignment(a *Assignment) (*Value, error) {
	rhs, err := e.evalExpr(a.Value)
	if err != nil {
		return nil, err
	}
	if a.Op != EQUAL {
		binOp, ok := shorthandAssignOps[a.Op]
		if !ok {
			rhs.Decref()
			return nil, e.errf(a.Pos, DesignError, "unhandled assignment operator %s", a.Op)
		}
		cur, err := e.evalExpr(a.Target)
		if err != nil {
			rhs.Decref()
			return nil, err
		}
		result, err := e.arith(binOp, deref(cur), deref(rhs), a.Pos)
		cur.Decref()
		rhs.Decref()
		if err != nil {
			return nil, err
		}
		rhs = result
	}
	return e.assignTo(a.Target, rhs, a.Pos)
}

func (e *Evaluator) assignTo(target Expr, value *Value, pos Pos) (*Value, error) {
	ref, ok := target.(*Reference)
	if !ok {
		value.Decref()
		return nil, e.errf(pos, TypeError, "invalid assignment target")
	}
	if ref.Trailer == nil {
		id := e.scopes.Lookup(ref.Name)
		if id == nil {
			value.Decref()
			return nil, e.errf(pos, NameError, "%q not defined", ref.Name)
		}
		if id.Kind != IdentVariable {
			value.Decref()
			return nil, e.errf(pos, TypeError, "%q is not a variable", ref.Name)
		}
		if id.Value.Kind == KindListNode {
			// a for-loop variable over a list: write through to the element
			slot := id.Value.Slot
			coerced, err := e.coerceToKind(value, slot.Kind, pos)
			value.Decref()
			if err != nil {
				return nil, err
			}
			overwriteInPlace(slot, coerced)
			coerced.Decref()
			slot.Incref()
			return slot, nil
		}
		coerced, err := e.coerceToKind(value, id.Value.Kind, pos)
		value.Decref()
		if err != nil {
			return nil, err
		}
		e.scopes.DefineVariable(ref.Name, coerced)
		coerced.Incref()
		return coerced, nil
	}

	id := e.scopes.Lookup(ref.Name)
	if id == nil {
		value.Decref()
		return nil, e.errf(pos, NameError, "%q not defined", ref.Name)
	}
	slot, err := e.navigateToSlot(id.Value, ref.Trailer, pos)
	if err != nil {
		value.Decref()
		return nil, err
	}
	coerced, err := e.coerceToKind(value, slot.Kind, pos)
	value.Decref()
	if err != nil {
		return nil, err
	}
	overwriteInPlace(slot, coerced)
	coerced.Decref()
	slot.Incref()
	return slot, nil
}

// overwriteInPlace mutates dst's fields to match src while keeping dst's
// pointer identity and refcount, so a ListNode aliasing dst observes the
// new contents (spec §3, §4.5's write-through subscript assignment).
func overwriteInPlace(dst, src *Value) {
	dst.Kind = src.Kind
	dst.Char = src.Char
	dst.Int = src.Int
	dst.Float = src.Float
	dst.Str = src.Str
	dst.List = src.List
	dst.Slot = nil
}

// navigateToSlot walks all but the last subscript of trailer as ordinary
// reads, then resolves the final subscript to the addressable list slot
// itself (its literal *Value pointer) so the caller can write through it.
func (e *Evaluator) navigateToSlot(base *Value, trailer *Trailer, pos Pos) (*Value, error) {
	if len(trailer.Subscripts) == 0 {
		return nil, e.errf(pos, TypeError, "invalid assignment target")
	}
	cur := base
	for i, sub := range trailer.Subscripts {
		last := i == len(trailer.Subscripts)-1
		d := deref(cur)
		if last {
			if sub.Slice {
				return nil, e.errf(pos, TypeError, "cannot assign to a slice")
			}
			if d.Kind != KindList {
				return nil, e.errf(pos, TypeError, "cannot assign to an index of %s", d.Kind)
			}
			idx, err := e.evalIndexValue(sub.Start, len(d.List), pos)
			if err != nil {
				return nil, err
			}
			return d.List[idx], nil
		}
		next, err := e.applySubscript(cur, sub, pos)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return nil, e.errf(pos, TypeError, "invalid assignment target")
}

//  Trailer application: subscripts + at most one method call

func (e *Evaluator) applyTrailer(val *Value, t *Trailer, pos Pos) (*Value, error) {
	if t == nil {
		return val, nil
	}
	cur := val
	for _, sub := range t.Subscripts {
		next, err := e.applySubscript(cur, sub, pos)
		cur.Decref()
		if err != nil {
			return nil, err
		}
		cur = next
	}
	if t.Method != "" {
		args := make([]*Value, len(t.MethodArgs))
		for i, a := range t.MethodArgs {
			v, err := e.evalExpr(a)
			if err != nil {
				for _, prior := range args[:i] {
					prior.Decref()
				}
				cur.Decref()
				return nil, err
			}
			args[i] = v
		}
		result, err := e.callMethod(cur, t.Method, args, pos)
		for _, a := range args {
			a.Decref()
		}
		cur.Decref()
		if err != nil {
			return nil, err
		}
		cur = result
	}
	return cur, nil
}

func (e *Evaluator) applySubscript(v *Value, sub Subscript, pos Pos) (*Value, error) {
	base := deref(v)
	switch base.Kind {
	case KindStr:
		if sub.Slice {
			start, end := e.resolveSliceBounds(sub, len(base.Str), pos)
			return NewStr(base.Str[start:end]), nil
		}
		idx, err := e.evalIndexValue(sub.Start, len(base.Str), pos)
		if err != nil {
			return nil, err
		}
		return NewChar(base.Str[idx]), nil
	case KindList:
		if sub.Slice {
			start, end := e.resolveSliceBounds(sub, len(base.List), pos)
			items := make([]*Value, end-start)
			for i := start; i < end; i++ {
				items[i-start] = deepCopy(base.List[i])
			}
			return NewList(items), nil
		}
		idx, err := e.evalIndexValue(sub.Start, len(base.List), pos)
		if err != nil {
			return nil, err
		}
		return newListNode(base.List[idx]), nil
	}
	return nil, e.errf(pos, TypeError, "cannot subscript %s", base.Kind)
}

// evalIndexValue evaluates a single-index subscript expression, adjusting
// a negative index by +length and raising IndexError out of range (spec
// §4.5).
func (e *Evaluator) evalIndexValue(expr Expr, length int, pos Pos) (int, error) {
	v, err := e.evalExpr(expr)
	if err != nil {
		return 0, err
	}
	idx := int(asInt(deref(v)))
	v.Decref()
	if idx < 0 {
		idx += length
	}
	if idx < 0 || idx >= length {
		return 0, e.errf(pos, IndexError, "index %d out of range", idx)
	}
	return idx, nil
}

// resolveSliceBounds evaluates and clamps a slice's start/end, defaulting
// absent bounds to 0/length and mapping negative indices by +length before
// clamping (spec §4.5, §8 property "slice clamping").
func (e *Evaluator) resolveSliceBounds(sub Subscript, length int, pos Pos) (int, int) {
	start := 0
	if sub.Start != nil {
		if v, err := e.evalExpr(sub.Start); err == nil {
			start = int(asInt(deref(v)))
			v.Decref()
		}
	}
	end := length
	if sub.End != nil {
		if v, err := e.evalExpr(sub.End); err == nil {
			end = int(asInt(deref(v)))
			v.Decref()
		}
	}
	if start < 0 {
		start += length
	}
	if end < 0 {
		end += length
	}
	start = clamp(start, 0, length)
	end = clamp(end, 0, length)
	if end < start {
		end = start
	}
	return start, end
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

//  Method call trailer (spec §4.5)

func (e *Evaluator) callMethod(receiver *Value, name string, args []*Value, pos Pos) (*Value, error) {
	base := deref(receiver)
	switch name {
	case "len":
		if len(args) != 0 {
			return nil, e.errf(pos, SyntaxError, "len() takes no arguments")
		}
		switch base.Kind {
		case KindStr:
			return NewInt(int64(len(base.Str))), nil
		case KindList:
			return NewInt(int64(len(base.List))), nil
		}
	case "append":
		if len(args) != 1 {
			return nil, e.errf(pos, SyntaxError, "append() takes exactly one argument")
		}
		if base.Kind == KindList {
			base.List = append(base.List, deepCopy(args[0]))
			return NewNone(), nil
		}
	case "insert":
		if len(args) != 2 {
			return nil, e.errf(pos, SyntaxError, "insert() takes exactly two arguments")
		}
		if base.Kind == KindList {
			idx := clamp(int(asInt(deref(args[0]))), 0, len(base.List))
			base.List = append(base.List, nil)
			copy(base.List[idx+1:], base.List[idx:])
			base.List[idx] = deepCopy(args[1])
			return NewNone(), nil
		}
	case "remove":
		if len(args) != 1 {
			return nil, e.errf(pos, SyntaxError, "remove() takes exactly one argument")
		}
		if base.Kind == KindList {
			idx := int(asInt(deref(args[0])))
			if idx < 0 {
				idx += len(base.List)
			}
			if idx < 0 || idx >= len(base.List) {
				return NewNone(), nil
			}
			removed := base.List[idx]
			base.List = append(base.List[:idx], base.List[idx+1:]...)
			return removed, nil
		}
	default:
		return nil, e.errf(pos, SyntaxError, "unknown method %q", name)
	}
	return nil, e.errf(pos, SyntaxError, "%s has no method %q", base.Kind, name)
}

//  Function calls (spec §4.5: call-by-value via deep copy, default return 0)

func (e *Evaluator) evalCall(c *FunctionCall) (*Value, error) {
	args := make([]*Value, len(c.Args))
	for i, a := range c.Args {
		v, err := e.evalExpr(a)
		if err != nil {
			for _, prior := range args[:i] {
				prior.Decref()
			}
			return nil, err
		}
		args[i] = v
	}

	if c.Builtin {
		plain := make([]*Value, len(args))
		for i, a := range args {
			plain[i] = deref(a)
		}
		result, err := callBuiltin(c.Name, plain)
		for _, a := range args {
			a.Decref()
		}
		if err != nil {
			return nil, e.errf(c.Pos, SyntaxError, "%s", err)
		}
		return result, nil
	}

	id := e.scopes.Global().Lookup(c.Name)
	if id == nil || id.Kind != IdentFunction {
		for _, a := range args {
			a.Decref()
		}
		return nil, e.errf(c.Pos, NameError, "%q not defined", c.Name)
	}
	decl := id.FuncDecl

	e.scopes.PushLocal()
	for i, param := range decl.Params {
		bound := deepCopy(args[i])
		e.scopes.DefineVariable(param, bound)
		bound.Decref()
	}
	for _, a := range args {
		a.Decref()
	}

	res, err := e.evalStmt(decl.Body)
	e.scopes.PopLocal()
	if err != nil {
		return nil, err
	}
	if res.Kind == StepReturn {
		return res.Value, nil
	}
	return NewInt(0), nil
}

//  Coercion

func declKindOf(t TokenType) ValueKind {
	switch t {
	case CHAR:
		return KindChar
	case INT:
		return KindInt
	case FLOAT:
		return KindFloat
	case STR:
		return KindStr
	case LIST:
		return KindList
	}
	return KindNone
}

// coerceToKind implements the target-type coercion rules of spec §4.5:
// numeric targets truncate/widen from any numeric source; str accepts any
// value via to-string coercion; list only accepts list (deep copied).
func (e *Evaluator) coerceToKind(v *Value, kind ValueKind, pos Pos) (*Value, error) {
	d := deref(v)
	switch kind {
	case KindChar:
		if _, ok := numericRank(d); ok {
			return NewChar(byte(asInt(d) & 0xFF)), nil
		}
	case KindInt:
		if _, ok := numericRank(d); ok {
			return NewInt(asInt(d)), nil
		}
	case KindFloat:
		if _, ok := numericRank(d); ok {
			return NewFloat(asFloat(d)), nil
		}
	case KindStr:
		return NewStr(toConcatString(d)), nil
	case KindList:
		if d.Kind == KindList {
			return deepCopy(d), nil
		}
	case KindNone:
		return deepCopy(d), nil
	}
	return nil, e.errf(pos, TypeError, "cannot assign %s to a %s", d.Kind, kind)
}
