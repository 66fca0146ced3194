package lang

import "testing"

func parseSource(t *testing.T, name, src string) *Block {
	t.Helper()
	modules := NewModuleTable()
	modules.Loader = MapLoader{name: []byte(src)}
	block, err := ParseModule(name, modules, 4)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return block
}

func TestParseVariableDecl(t *testing.T) {
	block := parseSource(t, "m", "int x = 1\n")
	if len(block.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(block.Stmts))
	}
	decl, ok := block.Stmts[0].(*VariableDecl)
	if !ok {
		t.Fatalf("expected *VariableDecl, got %T", block.Stmts[0])
	}
	if decl.Name != "x" || decl.Type != INT {
		t.Errorf("got name=%q type=%s, want x/int", decl.Name, decl.Type)
	}
}

func TestParseMultiVariableDeclWrapsInBlock(t *testing.T) {
	block := parseSource(t, "m", "int a,b,c\n")
	inner, ok := block.Stmts[0].(*Block)
	if !ok {
		t.Fatalf("expected multi-declaration to wrap in *Block, got %T", block.Stmts[0])
	}
	if len(inner.Stmts) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(inner.Stmts))
	}
	for i, name := range []string{"a", "b", "c"} {
		d, ok := inner.Stmts[i].(*VariableDecl)
		if !ok || d.Name != name {
			t.Errorf("decl %d: got %v, want name %q", i, inner.Stmts[i], name)
		}
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	block := parseSource(t, "m", "int x = 1 + 2 * 3\n")
	decl := block.Stmts[0].(*VariableDecl)
	bin, ok := decl.Init.(*BinaryExpr)
	if !ok || bin.Op != PLUS {
		t.Fatalf("expected top-level +, got %#v", decl.Init)
	}
	right, ok := bin.Right.(*BinaryExpr)
	if !ok || right.Op != STAR {
		t.Fatalf("expected * nested under +, got %#v", bin.Right)
	}
}

func TestParseIfElse(t *testing.T) {
	src := "if x:\n    int a = 1\nelse:\n    int b = 2\n"
	block := parseSource(t, "m", src)
	ifStmt, ok := block.Stmts[0].(*IfStmt)
	if !ok {
		t.Fatalf("expected *IfStmt, got %T", block.Stmts[0])
	}
	if ifStmt.ElseBody == nil || len(ifStmt.ElseBody.Stmts) != 1 {
		t.Fatalf("expected else body with one statement, got %v", ifStmt.ElseBody)
	}
}

func TestParseForStmt(t *testing.T) {
	src := "for ch in \"abc\":\n    print ch\n"
	block := parseSource(t, "m", src)
	forStmt, ok := block.Stmts[0].(*ForStmt)
	if !ok {
		t.Fatalf("expected *ForStmt, got %T", block.Stmts[0])
	}
	if forStmt.Var != "ch" {
		t.Errorf("got loop var %q, want ch", forStmt.Var)
	}
}

func TestParseFunctionCallAndTrailer(t *testing.T) {
	src := "int y = f(1, 2)[0]\n"
	block := parseSource(t, "m", src)
	decl := block.Stmts[0].(*VariableDecl)
	call, ok := decl.Init.(*FunctionCall)
	if !ok {
		t.Fatalf("expected *FunctionCall, got %T", decl.Init)
	}
	if call.Name != "f" || len(call.Args) != 2 {
		t.Fatalf("got name=%q args=%d, want f/2", call.Name, len(call.Args))
	}
	if call.Trailer == nil || len(call.Trailer.Subscripts) != 1 {
		t.Fatalf("expected one subscript trailer, got %v", call.Trailer)
	}
}

func TestParseMethodCallTrailer(t *testing.T) {
	src := "mylist.append(1)\n"
	block := parseSource(t, "m", src)
	stmt, ok := block.Stmts[0].(*ExprStmt)
	if !ok {
		t.Fatalf("expected *ExprStmt, got %T", block.Stmts[0])
	}
	ref, ok := stmt.Expr.(*Reference)
	if !ok || ref.Trailer == nil || ref.Trailer.Method != "append" {
		t.Fatalf("expected reference with append trailer, got %#v", stmt.Expr)
	}
}

func TestParseSliceSubscript(t *testing.T) {
	src := "str y = s[1:2]\n"
	block := parseSource(t, "m", src)
	decl := block.Stmts[0].(*VariableDecl)
	ref, ok := decl.Init.(*Reference)
	if !ok || ref.Trailer == nil || len(ref.Trailer.Subscripts) != 1 {
		t.Fatalf("expected one subscript, got %#v", decl.Init)
	}
	if !ref.Trailer.Subscripts[0].Slice {
		t.Errorf("expected a slice subscript")
	}
}

func TestParseChainedAssignment(t *testing.T) {
	src := "int a\nint b\na = b = 5\n"
	block := parseSource(t, "m", src)
	stmt := block.Stmts[2].(*ExprStmt)
	outer, ok := stmt.Expr.(*Assignment)
	if !ok {
		t.Fatalf("expected *Assignment, got %T", stmt.Expr)
	}
	inner, ok := outer.Value.(*Assignment)
	if !ok {
		t.Fatalf("expected chained assignment, got %#v", outer.Value)
	}
	if inner.Op != EQUAL {
		t.Errorf("expected inner assignment op =, got %s", inner.Op)
	}
}

func TestParsePrintRaw(t *testing.T) {
	src := "print -raw \"x\"\n"
	block := parseSource(t, "m", src)
	p, ok := block.Stmts[0].(*PrintStmt)
	if !ok || !p.Raw {
		t.Fatalf("expected raw print statement, got %#v", block.Stmts[0])
	}
}

func TestParseInputStmt(t *testing.T) {
	src := "int n\ninput \"n? \" n\n"
	block := parseSource(t, "m", src)
	in, ok := block.Stmts[1].(*InputStmt)
	if !ok || len(in.Items) != 1 {
		t.Fatalf("expected one input item, got %#v", block.Stmts[1])
	}
	if in.Items[0].Prompt != "n? " || in.Items[0].Target != "n" {
		t.Errorf("got %#v", in.Items[0])
	}
}

func TestParseMissingIdentifierAfterInputPromptIsSyntaxError(t *testing.T) {
	modules := NewModuleTable()
	modules.Loader = MapLoader{"m": []byte("input \"n? \"\n")}
	_, err := ParseModule("m", modules, 4)
	if err == nil {
		t.Fatal("expected a syntax error for a prompt with no target identifier")
	}
	le, ok := AsLangError(err)
	if !ok || le.Kind != SyntaxError {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
}

func TestParseDoubleImportIsError(t *testing.T) {
	modules := NewModuleTable()
	modules.Loader = MapLoader{
		"main": []byte("import lib\nimport lib\n"),
		"lib":  []byte("int x = 1\n"),
	}
	_, err := ParseModule("main", modules, 4)
	if err == nil {
		t.Fatal("expected an error for a double import")
	}
}

func TestParseImportAttachesBody(t *testing.T) {
	modules := NewModuleTable()
	modules.Loader = MapLoader{
		"main": []byte("import lib\n"),
		"lib":  []byte("int x = 1\n"),
	}
	block, err := ParseModule("main", modules, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	imp, ok := block.Stmts[0].(*ImportStmt)
	if !ok || imp.Body == nil || len(imp.Body.Stmts) != 1 {
		t.Fatalf("expected import statement with an attached body, got %#v", block.Stmts[0])
	}
}
