package typesystem

import "testing"

var (
	intT = ChoiceConstruct{Name: "int"}
	strT = ChoiceConstruct{Name: "str"}
)

func TestString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{intT, "int"},
		{ChoiceConstruct{Name: "vec", Arguments: []Type{ChoiceConstruct{Name: "opt", Arguments: []Type{intT}}}}, "vec (opt int)"},
		{Function{Inputs: []Type{intT, Variable{Name: "a"}}, Output: strT}, "\\int, a > str"},
		{Record{Fields: map[string]Type{"b": intT, "a": strT}}, "{ a str, b int }"},
		{Record{}, "{}"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSubstitute(t *testing.T) {
	pair := Record{Fields: map[string]Type{"first": Variable{Name: "a"}, "second": Variable{Name: "b"}}}
	got := Substitute(pair, map[string]Type{"a": intT})
	want := Record{Fields: map[string]Type{"first": intT, "second": Variable{Name: "b"}}}
	if !Equal(got, want) {
		t.Fatalf("Substitute = %s, want %s", got, want)
	}
	if !Equal(pair.Fields["first"], Variable{Name: "a"}) {
		t.Fatalf("Substitute mutated its input")
	}
}

func TestWalkHelpers(t *testing.T) {
	typ := Function{
		Inputs: []Type{ChoiceConstruct{Name: "tree", Arguments: []Type{Variable{Name: "b"}}}},
		Output: Variable{Name: "a"},
	}
	if !MentionsAny(typ, map[string]bool{"tree": true}) {
		t.Errorf("expected tree to be mentioned")
	}
	if MentionsAny(typ, map[string]bool{"forest": true}) {
		t.Errorf("forest is not mentioned")
	}
	vars := FreeVariables(typ)
	if len(vars) != 2 || vars[0] != "a" || vars[1] != "b" {
		t.Errorf("FreeVariables = %v", vars)
	}
	if !ContainsFunction(Record{Fields: map[string]Type{"f": typ}}) {
		t.Errorf("expected a nested function to be found")
	}
	if ContainsFunction(intT) {
		t.Errorf("int contains no function")
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		typ  Type
		want bool
		deep int
	}{
		{intT, true, 1},
		{nil, false, 1},
		{Function{Inputs: []Type{intT}, Output: nil}, false, 2},
		{Function{Inputs: []Type{intT}, Output: Record{Fields: map[string]Type{"a": nil}}}, false, 3},
		{Function{Inputs: []Type{intT}, Output: Record{Fields: map[string]Type{"a": intT}}}, true, 3},
		{ChoiceConstruct{Name: "vec", Arguments: []Type{nil}}, false, 2},
		{Variable{Name: "a"}, true, 1},
	}
	for _, tt := range tests {
		if got := Complete(tt.typ); got != tt.want {
			t.Errorf("Complete(%v) = %v, want %v", tt.typ, got, tt.want)
		}
		if got := Depth(tt.typ); got != tt.deep {
			t.Errorf("Depth(%v) = %d, want %d", tt.typ, got, tt.deep)
		}
	}
}
