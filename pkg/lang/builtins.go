package lang

import "fmt"

// builtinInfo describes one entry of the built-in function registry
// (spec §6.4), consulted by the parser at parse time (by name only,
// case-sensitive, exact) and by the checker for arity validation.
type builtinInfo struct {
	Arity int
	Call  func(args []*Value) (*Value, error)
}

var builtins map[string]builtinInfo

func init() {
	builtins = map[string]builtinInfo{
		"type": {Arity: 1, Call: builtinType},
		"chr":  {Arity: 1, Call: builtinChr},
		"ord":  {Arity: 1, Call: builtinOrd},
	}
}

// IsBuiltin reports whether name is in the built-in registry.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// BuiltinArity returns the declared arity of a built-in, for the checker's
// arity validation (spec §4.4).
func BuiltinArity(name string) int { return builtins[name].Arity }

func callBuiltin(name string, args []*Value) (*Value, error) {
	info, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown builtin %q", name)
	}
	if len(args) != info.Arity {
		return nil, fmt.Errorf("%s expects %d argument(s), got %d", name, info.Arity, len(args))
	}
	return info.Call(args)
}

// builtinType returns str naming x's type (spec §6.4).
func builtinType(args []*Value) (*Value, error) {
	return NewStr(args[0].TypeName()), nil
}

// builtinChr returns the single-character str whose byte is i & 0xFF.
func builtinChr(args []*Value) (*Value, error) {
	v := deref(args[0])
	rank, ok := numericRank(v)
	_ = rank
	if !ok {
		return nil, fmt.Errorf("chr() requires a numeric argument")
	}
	return NewStr(string([]byte{byte(asInt(v) & 0xFF)})), nil
}

// builtinOrd returns the int byte value of s's first character; s must be
// str (spec §6.4).
func builtinOrd(args []*Value) (*Value, error) {
	v := deref(args[0])
	if v.Kind != KindStr || len(v.Str) == 0 {
		return nil, fmt.Errorf("ord() requires a non-empty str argument")
	}
	return NewInt(int64(v.Str[0])), nil
}
