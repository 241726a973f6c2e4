package ownership

import (
	"testing"

	"github.com/funvibe/still/internal/symbols"
	"github.com/funvibe/still/internal/typesystem"
)

func construct(name string, args ...typesystem.Type) typesystem.Type {
	return typesystem.ChoiceConstruct{Name: name, Arguments: args}
}

func expectFlags(t *testing.T, what string, got, want symbols.Flags) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %+v, want %+v", what, got, want)
	}
}

func TestScalarsAreCopyOwnedAndLifetimeFree(t *testing.T) {
	c := New(symbols.NewTables())
	for _, name := range []string{"int", "dec", "chr", "str", "unt", "order"} {
		expectFlags(t, name, c.Classify(construct(name)), symbols.Flags{IsCopy: true, HasOwnedRepresentation: true})
	}
}

func TestContainers(t *testing.T) {
	c := New(symbols.NewTables())
	tests := []struct {
		name string
		typ  typesystem.Type
		want symbols.Flags
	}{
		{"opt int", construct("opt", construct("int")), symbols.Flags{IsCopy: true, HasOwnedRepresentation: true}},
		{"vec int", construct("vec", construct("int")), symbols.Flags{HasOwnedRepresentation: true, HasLifetimeParameter: true}},
		{"opt (vec int)", construct("opt", construct("vec", construct("int"))), symbols.Flags{HasOwnedRepresentation: true, HasLifetimeParameter: true}},
		{"type variable", typesystem.Variable{Name: "a"}, symbols.Flags{HasOwnedRepresentation: true}},
		{"record", typesystem.Record{Fields: map[string]typesystem.Type{"x": construct("dec"), "y": construct("dec")}}, symbols.Flags{IsCopy: true, HasOwnedRepresentation: true}},
		{"unknown", nil, symbols.Placeholder},
	}
	for _, tt := range tests {
		expectFlags(t, tt.name, c.Classify(tt.typ), tt.want)
	}
}

func TestFunctionsAreNeverOwned(t *testing.T) {
	c := New(symbols.NewTables())
	fn := typesystem.Function{Inputs: []typesystem.Type{construct("int")}, Output: construct("int")}
	expectFlags(t, "function", c.Classify(fn), symbols.Flags{IsCopy: true, HasLifetimeParameter: true})

	containing := []typesystem.Type{
		construct("vec", fn),
		construct("opt", fn),
		typesystem.Record{Fields: map[string]typesystem.Type{"on_click": fn, "label": construct("str")}},
		construct("continue_or_exit", construct("int"), fn),
	}
	for _, typ := range containing {
		if c.Classify(typ).HasOwnedRepresentation {
			t.Errorf("%s contains a function and must not be owned", typ)
		}
	}
}

func TestSelfRecursiveChoiceIsBoxedAndNeedsLifetime(t *testing.T) {
	tables := symbols.NewTables()
	list := &symbols.ChoiceTypeInfo{
		Name: "list",
		Variants: []*symbols.VariantInfo{
			{Name: "Empty"},
			{Name: "Cons", HasPayload: true, Value: typesystem.Record{Fields: map[string]typesystem.Type{
				"head": construct("int"),
				"tail": construct("list"),
			}}},
		},
	}
	tables.Choices["list"] = list

	c := New(tables)
	c.BeginGroup([]string{"list"})
	MarkRecursiveVariants(list, map[string]bool{"list": true})
	if list.Variants[0].ConstructsRecursiveType {
		t.Errorf("Empty has no payload and cannot be recursive")
	}
	if !list.Variants[1].ConstructsRecursiveType {
		t.Fatalf("Cons mentions list and must be boxed")
	}
	if got := c.Classify(construct("list")); got != symbols.Placeholder {
		t.Errorf("a name of the pending group must classify as the placeholder, got %+v", got)
	}
	flags := c.DeclarationFlags(list)
	c.EndGroup()

	if !flags.HasLifetimeParameter {
		t.Errorf("a boxed payload needs the lifetime")
	}
	if !flags.IsCopy {
		t.Errorf("a boxed payload is a reference and copies")
	}
}

func TestDeclarationFlagsTreatParametersAsNeutral(t *testing.T) {
	tables := symbols.NewTables()
	maybe := &symbols.ChoiceTypeInfo{
		Name:       "maybe",
		Parameters: []string{"a"},
		Variants: []*symbols.VariantInfo{
			{Name: "Just", HasPayload: true, Value: typesystem.Variable{Name: "a"}},
			{Name: "Nothing"},
		},
	}
	tables.Choices["maybe"] = maybe

	c := New(tables)
	c.BeginGroup([]string{"maybe"})
	maybe.Flags = c.DeclarationFlags(maybe)
	maybe.Resolved = true
	c.EndGroup()

	expectFlags(t, "maybe int", c.Classify(construct("maybe", construct("int"))), symbols.Flags{IsCopy: true, HasOwnedRepresentation: true})
	expectFlags(t, "maybe (vec int)", c.Classify(construct("maybe", construct("vec", construct("int")))), symbols.Flags{HasOwnedRepresentation: true, HasLifetimeParameter: true})
}
