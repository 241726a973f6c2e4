package rust

import (
	"strings"
	"testing"
)

func TestPrintFunction(t *testing.T) {
	file := &File{
		InnerAttributes: []string{"allow(dead_code)"},
		Uses:            []string{"crate::still_core::*"},
		Items: []Item{&Fn{
			Public:     true,
			Name:       "double",
			Parameters: []Parameter{{Name: "x", Type: Named("Int")}},
			Output:     Named("Int"),
			Body: &Block{Result: &CallExpr{
				Func: &Ident{Name: "int_add"},
				Args: []Expr{&Ident{Name: "x"}, &Ident{Name: "x"}},
			}},
		}},
	}
	want := `#![allow(dead_code)]
use crate::still_core::*;

pub fn double(x: Int) -> Int {
    int_add(x, x)
}
`
	if got := Print(file); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintEnumAndImpl(t *testing.T) {
	list := &PathType{Path: "List", Lifetimes: []string{"'a"}, Arguments: []Type{Named("A")}}
	file := &File{Items: []Item{
		&Enum{
			Attributes: []string{"derive(Clone, Copy)"},
			Name:       "List",
			Generics:   Generics{Lifetimes: []string{"'a"}, Params: []GenericParam{{Name: "A"}}},
			Variants: []EnumVariant{
				{Name: "Empty"},
				{Name: "Link", Payload: &RefType{Lifetime: "'a", Inner: list}},
			},
		},
		&Impl{
			Generics: Generics{Lifetimes: []string{"'a"}, Params: []GenericParam{{Name: "A", Bounds: []string{"StillIntoOwned", "Clone"}}}},
			Trait:    "StillIntoOwned",
			For:      list,
			Associated: []AssociatedType{{
				Name:  "Owned",
				Value: &PathType{Path: "List_Owned", Arguments: []Type{&QualifiedType{Self: Named("A"), Name: "Owned"}}},
			}},
		},
	}}
	got := Print(file)
	for _, want := range []string{
		"#[derive(Clone, Copy)]\npub enum List<'a, A> {\n    Empty,\n    Link(&'a List<'a, A>),\n}\n",
		"impl<'a, A: StillIntoOwned + Clone> StillIntoOwned for List<'a, A> {\n    type Owned = List_Owned<A::Owned>;\n}\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing:\n%s\nin:\n%s", want, got)
		}
	}
}

func TestPrintExpressions(t *testing.T) {
	tests := []struct {
		expr Expr
		want string
	}{
		{&MethodCallExpr{Receiver: &Ident{Name: "x"}, Method: "clone"}, "x.clone()"},
		{&DerefExpr{Inner: &Ident{Name: "x"}}, "*x"},
		{&StructExpr{Path: "Name·", Fields: []FieldInit{{Name: "name", Value: &Ident{Name: "n"}}}}, "Name· { name: n }"},
		{&StructExpr{Path: "P", Fields: []FieldInit{{Name: "x", Value: &Lit{Text: "1.0"}}}, Base: &Ident{Name: "p"}}, "P { x: 1.0, ..p }"},
		{&CastExpr{
			Inner: &CallExpr{Func: &Ident{Name: "allocator.alloc"}, Args: []Expr{&ClosureExpr{
				Move:       true,
				Parameters: []Parameter{{Name: "y", Type: Named("Int")}},
				Body:       &Ident{Name: "y"},
			}}},
			Type: &DynFnType{Lifetime: "'a", Inputs: []Type{Named("Int")}, Output: Named("Int")},
		}, "(allocator.alloc(move |y: Int| y) as &'a dyn Fn(Int) -> Int)"},
		{&TurbofishExpr{Base: "Vec", Arguments: []Type{Named("Int")}, Member: "from_vec"}, "Vec::<Int>::from_vec"},
		{&CallExpr{Func: &Block{Result: &Ident{Name: "f"}}, Args: []Expr{&Lit{Text: "1"}}}, "({\n    f\n})(1)"},
		{&MatchExpr{
			Scrutinee: &Ident{Name: "o"},
			Arms: []Arm{
				{Pattern: &TupleStructPat{Path: "Opt::Present", Elements: []Pattern{&IdentPat{Name: "s"}}},
					Guard: &BinaryExpr{Left: &MethodCallExpr{Receiver: &Ident{Name: "s"}, Method: "as_str"}, Op: "==", Right: &Lit{Text: `"hi"`}},
					Body:  &Lit{Text: "1"}},
				{Pattern: &WildPat{}, Body: &Lit{Text: "0"}},
			},
		}, "match o {\n    Opt::Present(s) if s.as_str() == \"hi\" => 1,\n    _ => 0,\n}"},
	}
	for _, tt := range tests {
		if got := ExprString(tt.expr); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
