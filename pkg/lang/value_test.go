package lang

import "testing"

func TestValueRefcounting(t *testing.T) {
	v := NewInt(42)
	if got := v.Refs(); got != 1 {
		t.Fatalf("fresh value refs: got %d, want 1", got)
	}
	v.Incref()
	if got := v.Refs(); got != 2 {
		t.Fatalf("after Incref: got %d, want 2", got)
	}
	v.Decref()
	v.Decref()
	if got := v.Refs(); got != 0 {
		t.Fatalf("after two Decref: got %d, want 0", got)
	}
}

func TestDeepCopyIsIndependent(t *testing.T) {
	inner := NewInt(1)
	list := NewList([]*Value{inner})

	cp := deepCopy(list)
	cp.List[0].Int = 99

	if list.List[0].Int != 1 {
		t.Errorf("deepCopy aliased the original list's element: got %d", list.List[0].Int)
	}
	if cp.List[0] == list.List[0] {
		t.Errorf("deepCopy shares the inner *Value pointer with the original")
	}
}

func TestListNodeWritesThroughOwningList(t *testing.T) {
	list := NewList([]*Value{NewInt(1), NewInt(2)})
	node := newListNode(list.List[0])

	node.Slot.Int = 7

	if list.List[0].Int != 7 {
		t.Errorf("ListNode write did not propagate to owning list: got %d", list.List[0].Int)
	}
}

func TestNumericRankAndCoercion(t *testing.T) {
	c := NewChar('A')
	i := NewInt(5)
	f := NewFloat(2.5)

	if rank, ok := numericRank(c); !ok || rank != 0 {
		t.Errorf("char rank: got (%d,%v), want (0,true)", rank, ok)
	}
	if rank, ok := numericRank(i); !ok || rank != 1 {
		t.Errorf("int rank: got (%d,%v), want (1,true)", rank, ok)
	}
	if rank, ok := numericRank(f); !ok || rank != 2 {
		t.Errorf("float rank: got (%d,%v), want (2,true)", rank, ok)
	}
	if asFloat(i) != 5.0 {
		t.Errorf("asFloat(int 5): got %v", asFloat(i))
	}
	if asInt(f) != 2 {
		t.Errorf("asInt(float 2.5): got %v", asInt(f))
	}
}

func TestValueEqualNeverErrorsOnTypeMismatch(t *testing.T) {
	tests := []struct {
		name string
		a, b *Value
		want bool
	}{
		{"int-vs-float-equal", NewInt(2), NewFloat(2.0), true},
		{"int-vs-str-mismatch", NewInt(2), NewStr("2"), false},
		{"str-deep-equal", NewStr("hi"), NewStr("hi"), true},
		{"list-deep-equal", NewList([]*Value{NewInt(1)}), NewList([]*Value{NewInt(1)}), true},
		{"list-deep-unequal", NewList([]*Value{NewInt(1)}), NewList([]*Value{NewInt(2)}), false},
		{"none-vs-none", NewNone(), NewNone(), true},
		{"none-vs-int", NewNone(), NewInt(0), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := valueEqual(tc.a, tc.b); got != tc.want {
				t.Errorf("valueEqual(%v, %v): got %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestToDisplayString(t *testing.T) {
	tests := []struct {
		name string
		v    *Value
		want string
	}{
		{"char", NewChar('A'), "A"},
		{"int", NewInt(-7), "-7"},
		{"str", NewStr("hi"), "hi"},
		{"list", NewList([]*Value{NewInt(1), NewInt(2)}), "[1,2]"},
		{"none", NewNone(), "none"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := toDisplayString(tc.v); got != tc.want {
				t.Errorf("toDisplayString: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExitValue(t *testing.T) {
	if v, ok := NewInt(5).ExitValue(); !ok || v != 5 {
		t.Errorf("int exit value: got (%d,%v)", v, ok)
	}
	if _, ok := NewStr("x").ExitValue(); ok {
		t.Errorf("str should not report a numeric exit value")
	}
}
