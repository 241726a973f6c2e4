package symbols

import (
	"testing"

	"github.com/funvibe/still/internal/typesystem"
)

func TestPreludeIsShared(t *testing.T) {
	if GetPrelude() != GetPrelude() {
		t.Fatal("GetPrelude must return the same tables every time")
	}
}

func TestPreludeContents(t *testing.T) {
	p := GetPrelude()
	for _, name := range []string{"int", "dec", "chr", "str", "unt", "vec", "opt", "order", "continue_or_exit"} {
		info, ok := p.Choices[name]
		if !ok {
			t.Errorf("missing built-in type %s", name)
			continue
		}
		if !info.Builtin || info.RustName == "" {
			t.Errorf("%s: expected a built-in with a rust name, got %+v", name, info)
		}
	}
	for _, name := range []string{"int", "dec", "chr", "str"} {
		f := p.Choices[name].Flags
		if !f.IsCopy || !f.HasOwnedRepresentation || f.HasLifetimeParameter {
			t.Errorf("%s: expected copy, owned, lifetime-free; got %+v", name, f)
		}
	}

	add, ok := p.Variables["int_add"]
	if !ok {
		t.Fatal("missing int_add")
	}
	fn, ok := add.Type.(typesystem.Function)
	if !ok || len(fn.Inputs) != 2 || fn.Output.String() != "int" {
		t.Errorf("int_add has type %v", add.Type)
	}
	if add.HasAllocatorParameter {
		t.Errorf("int_add takes no allocator")
	}
	if !p.Variables["vec_truncate"].HasAllocatorParameter {
		t.Errorf("vec_truncate takes the allocator")
	}

	choice, variant, ok := p.ChoiceOfVariant("Present")
	if !ok || choice.Name != "opt" || !variant.HasPayload {
		t.Errorf("Present should be the payload variant of opt")
	}
}

func TestNewTablesIsolated(t *testing.T) {
	a := NewTables()
	b := NewTables()
	a.Variables["double"] = &VariableDeclarationInfo{Name: "double"}
	if _, leaked := b.Variables["double"]; leaked {
		t.Fatal("tables of different programs must not share declarations")
	}
	if _, leaked := GetPrelude().Variables["double"]; leaked {
		t.Fatal("the prelude must not be modified")
	}
}

func TestIsBuiltinName(t *testing.T) {
	for _, name := range []string{"int", "vec_sort", "Present", "blank", "Alloc"} {
		if !IsBuiltinName(name) {
			t.Errorf("%s should be built-in or reserved", name)
		}
	}
	if IsBuiltinName("tree") {
		t.Errorf("tree is free")
	}
}
