package lang

import "testing"

func TestBuiltinType(t *testing.T) {
	tests := []struct {
		v    *Value
		want string
	}{
		{NewInt(1), "int"},
		{NewFloat(1.0), "float"},
		{NewChar('a'), "char"},
		{NewStr("s"), "str"},
		{NewList(nil), "list"},
		{NewNone(), "none"},
	}
	for _, tc := range tests {
		got, err := callBuiltin("type", []*Value{tc.v})
		if err != nil {
			t.Fatalf("type(%v): unexpected error %v", tc.v, err)
		}
		if got.Str != tc.want {
			t.Errorf("type(%v): got %q, want %q", tc.v, got.Str, tc.want)
		}
	}
}

func TestBuiltinChrAndOrd(t *testing.T) {
	chr, err := callBuiltin("chr", []*Value{NewInt(65)})
	if err != nil || chr.Str != "A" {
		t.Fatalf("chr(65): got (%v, %v), want (\"A\", nil)", chr, err)
	}

	ord, err := callBuiltin("ord", []*Value{NewStr("A")})
	if err != nil || ord.Int != 65 {
		t.Fatalf("ord(\"A\"): got (%v, %v), want (65, nil)", ord, err)
	}
}

func TestBuiltinOrdRejectsEmptyString(t *testing.T) {
	if _, err := callBuiltin("ord", []*Value{NewStr("")}); err == nil {
		t.Fatal("expected an error for ord(\"\")")
	}
}

func TestBuiltinArityMismatch(t *testing.T) {
	if _, err := callBuiltin("chr", []*Value{NewInt(1), NewInt(2)}); err == nil {
		t.Fatal("expected an arity error for chr with two arguments")
	}
}

func TestIsBuiltin(t *testing.T) {
	if !IsBuiltin("chr") || !IsBuiltin("ord") || !IsBuiltin("type") {
		t.Fatal("expected type/chr/ord to be registered builtins")
	}
	if IsBuiltin("len") {
		t.Fatal("len is a method, not a registered builtin function")
	}
}
