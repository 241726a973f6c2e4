package codegen

import (
	"strconv"
	"testing"
)

func TestScopeWithLeavesOriginal(t *testing.T) {
	base := emptyScope().With("x", &binding{RustName: "x"})
	extended := base.With("y", &binding{RustName: "y"})

	if base.Lookup("y") != nil {
		t.Error("extending a scope changed the original")
	}
	if extended.Lookup("x") == nil || extended.Lookup("y") == nil {
		t.Error("extended scope lost a binding")
	}
	if base.Len() != 1 || extended.Len() != 2 {
		t.Errorf("lengths = %d, %d", base.Len(), extended.Len())
	}

	replaced := extended.With("x", &binding{RustName: "x2"})
	if replaced.Len() != 2 {
		t.Errorf("rebinding a name changed the length to %d", replaced.Len())
	}
	if got := replaced.Lookup("x").RustName; got != "x2" {
		t.Errorf("x = %s after rebinding", got)
	}
	if got := extended.Lookup("x").RustName; got != "x" {
		t.Errorf("rebinding leaked into the parent scope: %s", got)
	}
}

func TestScopeManyBindings(t *testing.T) {
	scope := emptyScope()
	const n = 2000
	for i := 0; i < n; i++ {
		name := "v" + strconv.Itoa(i)
		scope = scope.With(name, &binding{RustName: name})
	}
	if scope.Len() != n {
		t.Fatalf("Len = %d, want %d", scope.Len(), n)
	}
	for i := 0; i < n; i++ {
		name := "v" + strconv.Itoa(i)
		b := scope.Lookup(name)
		if b == nil || b.RustName != name {
			t.Fatalf("lookup of %s failed", name)
		}
	}
	if scope.Lookup("missing") != nil {
		t.Error("found a name that was never bound")
	}
}

func TestNilScopeLookup(t *testing.T) {
	var s *Scope
	if s.Lookup("x") != nil {
		t.Error("nil scope has no bindings")
	}
	if _, ok := emptyScope().LocalType("x"); ok {
		t.Error("empty scope has no local types")
	}
}
