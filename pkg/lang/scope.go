package lang

import "fmt"

// IdentKind distinguishes a variable binding from a function binding
// (spec §3: "Identifier. { name, kind: Variable|Function, binding, next }").
type IdentKind int

const (
	IdentVariable IdentKind = iota
	IdentFunction
)

// Identifier is one name bound in a Scope. A Variable binding owns a
// Value; a Function binding points at its declaration node.
type Identifier struct {
	Name    string
	Kind    IdentKind
	Value   *Value        // set when Kind == IdentVariable
	FuncDecl *FunctionDecl // set when Kind == IdentFunction
}

// Scope is a flat, order-preserving table of identifiers, the adapted
// descendant of original_source/identifier.c's singly-linked, tail-
// appended list (kept order-preserving so any future identifier-dump
// utility — out of scope here, spec §1 — sees declaration order).
type Scope struct {
	order []string
	table map[string]*Identifier
}

func newScope() *Scope {
	return &Scope{table: make(map[string]*Identifier)}
}

// Define adds id to the scope. The caller is responsible for rejecting
// duplicates and built-in shadowing (spec §4.4); Define itself always
// succeeds, overwriting any prior binding under the same name.
func (s *Scope) Define(id *Identifier) {
	if _, exists := s.table[id.Name]; !exists {
		s.order = append(s.order, id.Name)
	}
	s.table[id.Name] = id
}

// Lookup returns the identifier named name, or nil if absent.
func (s *Scope) Lookup(name string) *Identifier {
	return s.table[name]
}

// Names returns identifiers in declaration order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// ScopeStack holds exactly two live scopes at any time: the outermost
// `global` (never popped) and the innermost `local` (spec §3: "Two
// globally reachable pointers... Lookup searches local then global only —
// intermediate scopes are intentionally skipped"). PushLocal/PopLocal
// swap out `local` wholesale rather than nesting a parent chain, which is
// what makes the skip-the-middle behaviour fall out naturally instead of
// needing a special case in Lookup.
type ScopeStack struct {
	global *Scope
	local  *Scope // equals global at top level
	saved  []*Scope
}

// NewScopeStack creates a stack with an empty global scope and local
// initially pointing at the same scope (top-level code runs "in global").
func NewScopeStack() *ScopeStack {
	g := newScope()
	return &ScopeStack{global: g, local: g}
}

// Global returns the outermost scope.
func (s *ScopeStack) Global() *Scope { return s.global }

// Local returns the current innermost scope.
func (s *ScopeStack) Local() *Scope { return s.local }

// InFunction reports whether a local scope distinct from global is active.
func (s *ScopeStack) InFunction() bool { return s.local != s.global }

// PushLocal enters a new function activation, saving the previous local
// scope so PopLocal can restore it (spec §5: "pushed exactly on function
// entry... popped on the matching exit path").
func (s *ScopeStack) PushLocal() *Scope {
	s.saved = append(s.saved, s.local)
	fresh := newScope()
	s.local = fresh
	return fresh
}

// PopLocal restores the scope active before the matching PushLocal.
func (s *ScopeStack) PopLocal() {
	if len(s.saved) == 0 {
		return
	}
	n := len(s.saved) - 1
	s.local = s.saved[n]
	s.saved = s.saved[:n]
}

// Lookup searches local then global only, per the two-level model above.
func (s *ScopeStack) Lookup(name string) *Identifier {
	if id := s.local.Lookup(name); id != nil {
		return id
	}
	if s.local != s.global {
		if id := s.global.Lookup(name); id != nil {
			return id
		}
	}
	return nil
}

// DefineVariable binds name to value in the current local scope,
// decrementing any previously bound value (spec §3: "identifier binding to
// a new value unbinds the previous value").
func (s *ScopeStack) DefineVariable(name string, value *Value) {
	value.Incref()
	if existing := s.local.Lookup(name); existing != nil && existing.Kind == IdentVariable {
		existing.Value.Decref()
		existing.Value = value
		return
	}
	s.local.Define(&Identifier{Name: name, Kind: IdentVariable, Value: value})
}

// DefineFunction binds name to decl in the global scope (function
// declarations are always global, spec §4.4).
func (s *ScopeStack) DefineFunction(name string, decl *FunctionDecl) {
	s.global.Define(&Identifier{Name: name, Kind: IdentFunction, FuncDecl: decl})
}

func (id *Identifier) String() string {
	if id.Kind == IdentFunction {
		return fmt.Sprintf("%s()", id.Name)
	}
	return id.Name
}
