package lang

import "fmt"

// Checker is the semantic checker of spec §4.4: a first pass over the AST
// that binds identifiers, validates references, and catches static errors
// so that "any check done here is not repeated during evaluation."
type Checker struct {
	moduleName string
	scopes     *ScopeStack
	modules    *ModuleTable
}

// NewChecker creates a checker sharing scopes with the evaluator that will
// run afterwards, so the function bindings the checker makes are reused
// rather than redone; the evaluator binds variables again as it runs
// (spec §4.4/§4.5 share one ScopeStack).
func NewChecker(moduleName string, scopes *ScopeStack, modules *ModuleTable) *Checker {
	return &Checker{moduleName: moduleName, scopes: scopes, modules: modules}
}

// Check validates program, hoisting its top-level function declarations
// first so forward and mutually-recursive calls resolve.
func (c *Checker) Check(program *Block) error {
	return c.checkBlock(program, true)
}

func (c *Checker) errf(pos Pos, kind ErrorKind, format string, args ...any) error {
	return newError(kind, pos.Module, pos.Line, c.modules.LineText(pos.Module, pos.Line), fmt.Sprintf(format, args...))
}

func (c *Checker) checkBlock(b *Block, hoistFunctions bool) error {
	if hoistFunctions {
		for _, s := range b.Stmts {
			if fd, ok := s.(*FunctionDecl); ok {
				if err := c.declareFunction(fd); err != nil {
					return err
				}
			}
		}
	}
	for _, s := range b.Stmts {
		if err := c.checkStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) declareFunction(fd *FunctionDecl) error {
	if IsBuiltin(fd.Name) {
		return c.errf(fd.Pos, NameError, "function %q shadows a built-in", fd.Name)
	}
	if existing := c.scopes.Global().Lookup(fd.Name); existing != nil {
		return c.errf(fd.Pos, NameError, "%q already declared", fd.Name)
	}
	c.scopes.DefineFunction(fd.Name, fd)
	return nil
}

// checkFunctionBody validates decl's body exactly once, latching `checked`
// first so self- and mutually-recursive calls discovered while checking
// the body don't recurse forever (spec §4.4).
func (c *Checker) checkFunctionBody(decl *FunctionDecl) error {
	if decl.checked {
		return nil
	}
	decl.checked = true
	c.scopes.PushLocal()
	defer c.scopes.PopLocal()
	for _, param := range decl.Params {
		c.scopes.DefineVariable(param, NewNone())
	}
	return c.checkBlock(decl.Body, false)
}

func (c *Checker) checkStmt(s Stmt) error {
	switch v := s.(type) {
	case *VariableDecl:
		if IsBuiltin(v.Name) {
			return c.errf(v.Pos, NameError, "variable %q shadows a built-in", v.Name)
		}
		if existing := c.scopes.Local().Lookup(v.Name); existing != nil {
			return c.errf(v.Pos, NameError, "%q already declared", v.Name)
		}
		if v.Init != nil {
			if err := c.checkExpr(v.Init); err != nil {
				return err
			}
		}
		c.scopes.DefineVariable(v.Name, ZeroValue(v.Type))
		return nil
	case *Block:
		return c.checkBlock(v, false)
	case *IfStmt:
		if err := c.checkExpr(v.Condition); err != nil {
			return err
		}
		if err := c.checkBlock(v.Body, false); err != nil {
			return err
		}
		if v.ElseBody != nil {
			return c.checkBlock(v.ElseBody, false)
		}
		return nil
	case *WhileStmt:
		if err := c.checkExpr(v.Condition); err != nil {
			return err
		}
		return c.checkBlock(v.Body, false)
	case *DoWhileStmt:
		if err := c.checkBlock(v.Body, false); err != nil {
			return err
		}
		return c.checkExpr(v.Condition)
	case *ForStmt:
		if err := c.checkExpr(v.Seq); err != nil {
			return err
		}
		if c.scopes.Local().Lookup(v.Var) == nil {
			c.scopes.DefineVariable(v.Var, NewNone())
		}
		return c.checkBlock(v.Body, false)
	case *FunctionDecl:
		if c.scopes.Global().Lookup(v.Name) == nil {
			if err := c.declareFunction(v); err != nil {
				return err
			}
		}
		return c.checkFunctionBody(v)
	case *PrintStmt:
		for _, a := range v.Args {
			if err := c.checkExpr(a); err != nil {
				return err
			}
		}
		return nil
	case *InputStmt:
		for _, item := range v.Items {
			id := c.scopes.Lookup(item.Target)
			if id == nil {
				return c.errf(v.Pos, NameError, "%q not defined", item.Target)
			}
			if id.Kind != IdentVariable {
				return c.errf(v.Pos, TypeError, "%q is not a variable", item.Target)
			}
		}
		return nil
	case *ImportStmt:
		return c.checkBlock(v.Body, true)
	case *ReturnStmt:
		if v.Expr != nil {
			return c.checkExpr(v.Expr)
		}
		return nil
	case *BreakStmt, *ContinueStmt, *PassStmt:
		return nil
	case *ExprStmt:
		return c.checkExpr(v.Expr)
	}
	return nil
}

func (c *Checker) checkExpr(e Expr) error {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *Literal:
		if err := c.checkLiteral(v); err != nil {
			return err
		}
	case *ListLiteral:
		for _, el := range v.Elements {
			if err := c.checkExpr(el); err != nil {
				return err
			}
		}
	case *Reference:
		id := c.scopes.Lookup(v.Name)
		if id == nil {
			return c.errf(v.Pos, NameError, "%q not defined", v.Name)
		}
		if id.Kind != IdentVariable {
			return c.errf(v.Pos, TypeError, "%q is not a variable", v.Name)
		}
	case *BinaryExpr:
		if err := c.checkExpr(v.Left); err != nil {
			return err
		}
		if err := c.checkExpr(v.Right); err != nil {
			return err
		}
	case *LogicalExpr:
		if err := c.checkExpr(v.Left); err != nil {
			return err
		}
		if err := c.checkExpr(v.Right); err != nil {
			return err
		}
	case *UnaryExpr:
		if err := c.checkExpr(v.Right); err != nil {
			return err
		}
	case *Assignment:
		if err := c.checkExpr(v.Target); err != nil {
			return err
		}
		if err := c.checkExpr(v.Value); err != nil {
			return err
		}
	case *FunctionCall:
		if err := c.checkFunctionCall(v); err != nil {
			return err
		}
	}
	return c.checkTrailer(e.GetTrailer())
}

func (c *Checker) checkLiteral(l *Literal) error {
	var err error
	switch l.Type {
	case CHAR:
		_, err = parseCharLexeme(l.Lexeme)
	case INT:
		_, err = parseIntLexeme(l.Lexeme)
	case FLOAT:
		_, err = parseFloatLexeme(l.Lexeme)
	}
	if err != nil {
		return c.errf(l.Pos, ValueError, "%s", err)
	}
	return nil
}

func (c *Checker) checkFunctionCall(v *FunctionCall) error {
	for _, a := range v.Args {
		if err := c.checkExpr(a); err != nil {
			return err
		}
	}
	if v.Builtin {
		if BuiltinArity(v.Name) != len(v.Args) {
			return c.errf(v.Pos, SyntaxError, "%s expects %d argument(s), got %d", v.Name, BuiltinArity(v.Name), len(v.Args))
		}
		return nil
	}
	id := c.scopes.Global().Lookup(v.Name)
	if id == nil {
		return c.errf(v.Pos, NameError, "%q not defined", v.Name)
	}
	if id.Kind != IdentFunction {
		return c.errf(v.Pos, TypeError, "%q is not a function", v.Name)
	}
	decl := id.FuncDecl
	if len(decl.Params) != len(v.Args) {
		return c.errf(v.Pos, SyntaxError, "%s expects %d argument(s), got %d", v.Name, len(decl.Params), len(v.Args))
	}
	return c.checkFunctionBody(decl)
}

func (c *Checker) checkTrailer(t *Trailer) error {
	if t == nil {
		return nil
	}
	for _, sub := range t.Subscripts {
		if sub.Start != nil {
			if err := c.checkExpr(sub.Start); err != nil {
				return err
			}
		}
		if sub.End != nil {
			if err := c.checkExpr(sub.End); err != nil {
				return err
			}
		}
	}
	for _, a := range t.MethodArgs {
		if err := c.checkExpr(a); err != nil {
			return err
		}
	}
	return nil
}
