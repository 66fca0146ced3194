package lang

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind is the tag of the Value variant (spec §3).
type ValueKind int

const (
	KindNone ValueKind = iota
	KindChar
	KindInt
	KindFloat
	KindStr
	KindList
	KindListNode
)

func (k ValueKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindList:
		return "list"
	case KindListNode:
		return "ListNode"
	}
	return "unknown"
}

// Value is a runtime object: a tagged variant over the language's seven
// value kinds, carrying an explicit reference count (spec §3). Every value
// the allocator produces starts at refcount 1; binding a value keeps it,
// decrementing releases it. Because list elements are deep-copied on
// insertion (see deepCopy), no value ever transitively contains itself, so
// plain reference counting is sufficient — no cycle collector is needed.
type Value struct {
	Kind  ValueKind
	refs  int
	Char  byte
	Int   int64
	Float float64
	Str   string
	List  []*Value

	// Slot is populated only for KindListNode: it aliases the list element
	// this node addresses, so that assignment through a subscript writes
	// through to the owning list (spec §3, §4.5).
	Slot *Value
}

// NewNone returns the distinguished error/sentinel singleton value, freshly
// allocated with refcount 1 (callers are expected to Decref it like any
// other value; "singleton" describes its semantics, not its allocation).
func NewNone() *Value { return &Value{Kind: KindNone, refs: 1} }

func NewChar(c byte) *Value        { return &Value{Kind: KindChar, Char: c, refs: 1} }
func NewInt(i int64) *Value        { return &Value{Kind: KindInt, Int: i, refs: 1} }
func NewFloat(f float64) *Value    { return &Value{Kind: KindFloat, Float: f, refs: 1} }
func NewStr(s string) *Value       { return &Value{Kind: KindStr, Str: s, refs: 1} }
func NewList(items []*Value) *Value { return &Value{Kind: KindList, List: items, refs: 1} }

// newListNode wraps v as a write-through handle into slot (spec §3,
// "ListNode" variant): the result of subscripting a list.
func newListNode(slot *Value) *Value {
	return &Value{Kind: KindListNode, Slot: slot, refs: 1}
}

// Incref increments v's reference count.
func (v *Value) Incref() {
	if v != nil {
		v.refs++
	}
}

// Decref decrements v's reference count. The port has no separate
// deallocator: once refs drops to zero the value simply becomes
// unreachable and Go's collector reclaims it. The explicit counter exists
// so ref-count soundness (spec §8 property 3) remains a testable
// invariant, matching the original's manual incref/decref discipline.
func (v *Value) Decref() {
	if v == nil {
		return
	}
	v.refs--
}

// Refs reports the current reference count, for tests.
func (v *Value) Refs() int { return v.refs }

// deref unwraps a ListNode to the value it addresses; every other kind is
// returned unchanged. Most operators call this before inspecting Kind (spec §4.5: "both operands numeric after ListNode
// unwrap").
func deref(v *Value) *Value {
	if v.Kind == KindListNode {
		return v.Slot
	}
	return v
}

// deepCopy produces an independent value with no aliasing to v, the way
// original_source/array.c deep-copies on every insertion so that lists can
// never contain a reference to themselves (spec §3, §4.5). Used for list
// literals, append/insert, parameter binding, and for-loop variable
// binding — the same four call sites the original duplicates.
func deepCopy(v *Value) *Value {
	v = deref(v)
	switch v.Kind {
	case KindList:
		items := make([]*Value, len(v.List))
		for i, it := range v.List {
			items[i] = deepCopy(it)
		}
		return &Value{Kind: KindList, List: items, refs: 1}
	case KindNone:
		return NewNone()
	default:
		cp := *v
		cp.refs = 1
		cp.Slot = nil
		return &cp
	}
}

// TypeName returns the name printed by the builtin type() function.
func (v *Value) TypeName() string { return deref(v).Kind.String() }

// ExitValue reports whether v is numeric and, if so, its value truncated
// to int (spec §6.1: "the integer value of the top-of-stack value at
// program end when numeric, else 0").
func (v *Value) ExitValue() (int, bool) {
	d := deref(v)
	if _, ok := numericRank(d); !ok {
		return 0, false
	}
	return int(asInt(d)), true
}

//  Conversion from literal lexemes (spec §4.5: "converted from their
//  stored lexeme at first evaluation").

func parseCharLexeme(s string) (byte, error) {
	if len(s) != 1 {
		// CHARLIT lexemes are always exactly one resolved byte by the time
		// the lexer hands them to the parser; a mismatch here means the
		// literal was produced with the wrong escape resolution.
		return 0, fmt.Errorf("invalid character literal %q", s)
	}
	return s[0], nil
}

func parseIntLexeme(s string) (int64, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal %q", s)
	}
	return i, nil
}

func parseFloatLexeme(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float literal %q", s)
	}
	return f, nil
}

// ZeroValue returns the default value for a declared type (spec §4.5):
// numeric types -> 0, str -> "", list -> [].
func ZeroValue(t TokenType) *Value {
	switch t {
	case CHAR:
		return NewChar(0)
	case INT:
		return NewInt(0)
	case FLOAT:
		return NewFloat(0)
	case STR:
		return NewStr("")
	case LIST:
		return NewList(nil)
	}
	return NewNone()
}

//  Coercion and printing

// numericRank reports whether v is char/int/float, and its coercion rank
// (0=char,1=int,2=float); asFloat/asInt read the value itself. Matching
// the arithmetic coercion law of spec §4.5/§8: "float > int > char".
func numericRank(v *Value) (rank int, isNumeric bool) {
	switch v.Kind {
	case KindChar:
		return 0, true
	case KindInt:
		return 1, true
	case KindFloat:
		return 2, true
	}
	return 0, false
}

func asFloat(v *Value) float64 {
	switch v.Kind {
	case KindChar:
		return float64(v.Char)
	case KindInt:
		return float64(v.Int)
	case KindFloat:
		return v.Float
	}
	return 0
}

func asInt(v *Value) int64 {
	switch v.Kind {
	case KindChar:
		return int64(v.Char)
	case KindInt:
		return v.Int
	case KindFloat:
		return int64(v.Float)
	}
	return 0
}

// toDisplayString renders v the way `print` does (spec §4.5): char as the
// character itself, int decimal, float with up to 15 significant digits,
// str raw, list as [item,item,...], none as "none".
func toDisplayString(v *Value) string {
	v = deref(v)
	switch v.Kind {
	case KindChar:
		return string(rune(v.Char))
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', 15, 64)
	case KindStr:
		return v.Str
	case KindList:
		parts := make([]string, len(v.List))
		for i, it := range v.List {
			parts[i] = toDisplayString(it)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindNone:
		return "none"
	}
	return ""
}

// toConcatString renders v the way string concatenation's "other operand"
// coercion does (spec §4.5): identical to display formatting.
func toConcatString(v *Value) string { return toDisplayString(v) }

// valueEqual implements deep value equality for ==/!= on strings and
// lists, and ordinary equality on scalars (spec §4.5: "mismatched types
// yield 0/1, never an error; on strings and lists, deep value equality").
func valueEqual(a, b *Value) bool {
	a, b = deref(a), deref(b)

	ra, na := numericRank(a)
	rb, nb := numericRank(b)
	if na && nb {
		_ = ra
		_ = rb
		return asFloat(a) == asFloat(b)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindStr:
		return a.Str == b.Str
	case KindList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !valueEqual(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case KindNone:
		return true
	}
	return false
}
