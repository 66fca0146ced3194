package lang

import "testing"

func TestScopeStackLookupSkipsIntermediateScopes(t *testing.T) {
	s := NewScopeStack()
	s.DefineVariable("g", NewInt(1))

	s.PushLocal()
	s.DefineVariable("mid", NewInt(2))

	s.PushLocal() // a second local scope; "mid" lives one level further out
	s.DefineVariable("inner", NewInt(3))

	if id := s.Lookup("mid"); id != nil {
		t.Errorf("Lookup(mid) should not see the scope between local and global, got %v", id)
	}
	if id := s.Lookup("inner"); id == nil {
		t.Fatal("Lookup(inner) should find the current local scope")
	}
	if id := s.Lookup("g"); id == nil {
		t.Fatal("Lookup(g) should find the global scope")
	}
}

func TestScopeStackPushPopRestoresLocal(t *testing.T) {
	s := NewScopeStack()
	s.DefineVariable("outer", NewInt(1))

	s.PushLocal()
	s.DefineVariable("inner", NewInt(2))
	if !s.InFunction() {
		t.Fatal("expected InFunction() true after PushLocal")
	}

	s.PopLocal()
	if s.InFunction() {
		t.Fatal("expected InFunction() false after PopLocal back to top level")
	}
	if id := s.Lookup("inner"); id != nil {
		t.Errorf("inner should not be visible after PopLocal, got %v", id)
	}
	if id := s.Lookup("outer"); id == nil {
		t.Fatal("outer should still be visible after PopLocal")
	}
}

func TestDefineVariableReleasesPreviousBinding(t *testing.T) {
	s := NewScopeStack()
	first := NewInt(1)
	s.DefineVariable("x", first)
	if got := first.Refs(); got != 2 {
		t.Fatalf("first binding refs: got %d, want 2 (allocator + scope)", got)
	}

	second := NewInt(2)
	s.DefineVariable("x", second)
	if got := first.Refs(); got != 1 {
		t.Errorf("rebinding x should release the old value: refs got %d, want 1", got)
	}

	id := s.Lookup("x")
	if id == nil || id.Value != second {
		t.Errorf("Lookup(x) should now return the new value")
	}
}

func TestDefineFunctionAlwaysGoesToGlobal(t *testing.T) {
	s := NewScopeStack()
	s.PushLocal()

	decl := &FunctionDecl{Name: "f"}
	s.DefineFunction("f", decl)

	if id := s.Global().Lookup("f"); id == nil || id.Kind != IdentFunction {
		t.Fatal("DefineFunction should bind into the global scope")
	}
}

func TestScopeOrderPreservesDeclarationOrder(t *testing.T) {
	sc := newScope()
	sc.Define(&Identifier{Name: "a", Kind: IdentVariable})
	sc.Define(&Identifier{Name: "b", Kind: IdentVariable})
	sc.Define(&Identifier{Name: "a", Kind: IdentVariable}) // redefine, no duplicate in order

	got := sc.Names()
	want := []string{"a", "b"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Names(): got %v, want %v", got, want)
	}
}
