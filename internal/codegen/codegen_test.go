package codegen

import (
	"strings"
	"testing"

	"github.com/funvibe/still/internal/analyzer"
	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/rust"
)

// generateSource decodes, analyzes and lowers a YAML syntax tree and returns
// the printed Rust file.
func generateSource(t *testing.T, input string) (string, *Generator, *analyzer.Analyzer) {
	t.Helper()
	program, err := ast.Decode("test.still.yaml", []byte(input))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a := analyzer.New(nil, nil)
	a.Analyze(program)
	g := New(a, Options{})
	return rust.Print(g.Generate()), g, a
}

func errorList(a *analyzer.Analyzer) string {
	var msgs []string
	for _, d := range a.Errors().Sorted() {
		msgs = append(msgs, d.Error())
	}
	return strings.Join(msgs, "\n")
}

func expectNoErrors(t *testing.T, a *analyzer.Analyzer) {
	t.Helper()
	if a.Errors().Len() > 0 {
		t.Fatalf("expected no errors, got:\n%s", errorList(a))
	}
}

func expectContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output is missing %q:\n%s", w, out)
		}
	}
}

func TestGenerateFunction(t *testing.T) {
	out, _, a := generateSource(t, `
- variable: double
  result:
    lambda: [{typed: int, pattern: x}]
    result: {call: int_add, arguments: [x, x]}
`)
	expectNoErrors(t, a)
	expectContains(t, out,
		"#![allow(dead_code",
		"use crate::still_core::*;",
		"pub fn double(x: Int) -> Int {",
		"int_add(x, x)",
	)
}

func TestGenerateRuntimeModuleOption(t *testing.T) {
	program, err := ast.Decode("test.still.yaml", []byte(`
- variable: answer
  result: {typed: int, expression: {int: "42"}}
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a := analyzer.New(nil, nil)
	a.Analyze(program)
	out := rust.Print(Generate(a, Options{RuntimeModule: "still_core"}))
	expectNoErrors(t, a)
	expectContains(t, out, "use still_core::*;", "pub const answer: Int = 42;")
}

func TestRecordsSharedAcrossFieldOrders(t *testing.T) {
	out, g, a := generateSource(t, `
- variable: forwards
  result: {record: {a: {int: "1"}, b: {char: "x"}}}
- variable: backwards
  result: {record: {b: {char: "y"}, a: {int: "2"}}}
`)
	expectNoErrors(t, a)
	if n := g.Records().Len(); n != 1 {
		t.Errorf("registered %d record structs, want 1", n)
	}
	expectContains(t, out, "pub struct A·b<A, B> {", "A·b { a: 1, b: 'x' }", "A·b { b: 'y', a: 2 }")
	if strings.Count(out, "pub struct A·b") != 1 {
		t.Errorf("struct emitted more than once:\n%s", out)
	}
}

func TestCloneOnlyBeforeLastUse(t *testing.T) {
	for name, fields := range map[string]string{
		"value first":  `{first: v, later: {lambda: [{typed: int, pattern: n}], result: v}}`,
		"lambda first": `{later: {lambda: [{typed: int, pattern: n}], result: v}, first: v}`,
	} {
		t.Run(name, func(t *testing.T) {
			out, _, a := generateSource(t, `
- variable: both
  result:
    lambda: [{typed: {construct: vec, arguments: [int]}, pattern: v}]
    result: {record: `+fields+`}
`)
			expectNoErrors(t, a)
			expectContains(t, out,
				"pub fn both<'a>(allocator: &'a impl Alloc, v: Vec<'a, Int>)",
				"let v = v.clone();",
				"move |n: Int| v.clone()",
				"first: v",
			)
			if strings.Contains(out, "first: v.clone()") {
				t.Errorf("the last use of v should move it:\n%s", out)
			}
		})
	}
}

func TestAllocatorPropagatesThroughCalls(t *testing.T) {
	out, _, a := generateSource(t, `
- variable: make
  result:
    lambda: [{typed: int, pattern: n}]
    result: {lambda: [{typed: int, pattern: m}], result: {call: int_add, arguments: [n, m]}}
- variable: caller
  result:
    lambda: [{typed: int, pattern: z}]
    result: {call: make, arguments: [z]}
- variable: plain
  result:
    lambda: [{typed: int, pattern: z}]
    result: {call: int_add, arguments: [z, z]}
`)
	expectNoErrors(t, a)
	tables := a.Tables()
	if !tables.Variables["make"].HasAllocatorParameter {
		t.Error("make builds a closure and needs the allocator")
	}
	if !tables.Variables["caller"].HasAllocatorParameter {
		t.Error("caller calls make and needs the allocator")
	}
	if tables.Variables["plain"].HasAllocatorParameter {
		t.Error("plain neither allocates nor calls anything that does")
	}
	expectContains(t, out, "make(allocator, z)", "pub fn plain(z: Int) -> Int {")
}

func TestAllocatorFixpointInMutualRecursion(t *testing.T) {
	_, _, a := generateSource(t, `
- variable: ping
  result:
    typed: {function: [int], output: {function: [int], output: int}}
    expression:
      lambda: [n]
      result: {call: pong, arguments: [n]}
- variable: pong
  result:
    typed: {function: [int], output: {function: [int], output: int}}
    expression:
      lambda: [n]
      result:
        match: n
        cases:
          - pattern: {int: "0"}
            result: {lambda: [m], result: m}
          - pattern: _
            result: {call: ping, arguments: [n]}
`)
	expectNoErrors(t, a)
	for _, name := range []string{"ping", "pong"} {
		if !a.Tables().Variables[name].HasAllocatorParameter {
			t.Errorf("%s should take the allocator", name)
		}
	}
}

func TestSelfReferentialConstant(t *testing.T) {
	out, _, a := generateSource(t, `
- variable: forever
  result:
    typed: int
    expression: {call: int_add, arguments: [forever, {int: "1"}]}
- variable: fine
  result:
    typed: {function: [int], output: int}
    expression: {lambda: [n], result: {call: fine, arguments: [n]}}
`)
	found := a.Errors().WithCode(diagnostics.ErrR002)
	if len(found) != 1 || a.Errors().Len() != 1 {
		t.Fatalf("expected exactly one R002, got:\n%s", errorList(a))
	}
	if !strings.Contains(found[0].Error(), "forever") {
		t.Errorf("R002 should name the constant: %s", found[0].Error())
	}
	expectContains(t, out, "pub fn forever() -> Int {", "todo!()")
}

func TestRecursiveChoice(t *testing.T) {
	out, _, a := generateSource(t, `
- choice: list
  variants:
    Empty: ~
    Link: {record: {head: int, tail: list}}
- variable: single
  result:
    typed: list
    expression: {variant: Link, value: {record: {head: {int: "1"}, tail: {variant: Empty}}}}
`)
	expectNoErrors(t, a)
	expectContains(t, out,
		"#[derive(Copy, Clone, PartialEq, Debug)]",
		"pub enum List<'a> {",
		"Link(&'a Head·tail<Int, List<'a>>),",
		"pub enum List_Owned",
		"impl<'a> StillIntoOwned for List<'a>",
		"impl OwnedToStill for List_Owned",
		"List::Link(allocator.alloc(Head·tail { head: 1, tail: List::Empty }))",
	)
}

func TestChoiceWithFunctionIsNotComparable(t *testing.T) {
	out, _, a := generateSource(t, `
- choice: handler
  variants:
    Handle: {function: [int], output: int}
    Ignore: ~
`)
	expectNoErrors(t, a)
	expectContains(t, out, "#[derive(Copy, Clone)]", "pub enum Handler<'a> {")
	if strings.Contains(out, "PartialEq") {
		t.Errorf("a choice holding a function cannot derive PartialEq:\n%s", out)
	}
}

func TestEmptyVecNeedsType(t *testing.T) {
	out, _, a := generateSource(t, `
- variable: nothing
  result: {vec: []}
- variable: none
  result: {typed: {construct: vec, arguments: [int]}, expression: {vec: []}}
`)
	found := a.Errors().WithCode(diagnostics.ErrS006)
	if len(found) != 1 {
		t.Fatalf("expected one S006, got:\n%s", errorList(a))
	}
	expectContains(t, out, "Vec::<Int>::from_vec(std::vec::Vec::new())")
}

func TestUnknownField(t *testing.T) {
	_, _, a := generateSource(t, `
- variable: get
  result:
    lambda: [{typed: {record: {x: int}}, pattern: r}]
    result: {access: r, field: y}
`)
	if len(a.Errors().WithCode(diagnostics.ErrN005)) != 1 {
		t.Fatalf("expected one N005, got:\n%s", errorList(a))
	}
}

func TestCallArityMismatch(t *testing.T) {
	_, _, a := generateSource(t, `
- variable: broken
  result:
    lambda: [{typed: int, pattern: x}]
    result: {call: int_add, arguments: [x]}
`)
	found := a.Errors().WithCode(diagnostics.ErrA002)
	if len(found) != 1 {
		t.Fatalf("expected one A002, got:\n%s", errorList(a))
	}
	if !strings.Contains(found[0].Error(), "int_add") {
		t.Errorf("A002 should name the function: %s", found[0].Error())
	}
}

func TestStringPatternBecomesGuard(t *testing.T) {
	out, _, a := generateSource(t, `
- variable: greet
  result:
    lambda: [{typed: str, pattern: s}]
    result:
      match: s
      cases:
        - pattern: {string: "hi"}
          result: {int: "1"}
        - pattern: _
          result: {int: "0"}
`)
	expectNoErrors(t, a)
	expectContains(t, out, `string·0 if string·0.as_str() == "hi" => 1,`, "_ => 0,")
}

func TestDeterministicOutput(t *testing.T) {
	input := `
- variable: pair
  result:
    lambda: [{typed: int, pattern: x}]
    result: {record: {left: x, right: {record: {z: x, y: x, w: x}}}}
- variable: other
  result: {record: {q: {int: "1"}, p: {int: "2"}}}
`
	first, _, _ := generateSource(t, input)
	for i := 0; i < 5; i++ {
		if again, _, _ := generateSource(t, input); again != first {
			t.Fatalf("output differs between runs:\n%s\n---\n%s", first, again)
		}
	}
}

func TestRecursiveGroupSignaturesAreComplete(t *testing.T) {
	out, _, a := generateSource(t, `
- variable: first
  result:
    lambda: [{typed: int, pattern: x}]
    result: {call: second, arguments: [x]}
- variable: second
  result:
    lambda: [{typed: int, pattern: x}]
    result: {call: third, arguments: [x]}
- variable: third
  result:
    lambda: [{typed: int, pattern: x}]
    result:
      match: x
      cases:
        - pattern: {int: "0"}
          result: {int: "0"}
        - pattern: _
          result: {call: first, arguments: [x]}
- variable: wrap
  result:
    lambda: [{typed: int, pattern: x}]
    result: {record: {a: {call: first, arguments: [x]}}}
`)
	expectNoErrors(t, a)
	expectContains(t, out,
		"pub fn first(x: Int) -> Int {",
		"pub fn second(x: Int) -> Int {",
		"pub fn third(x: Int) -> Int {",
		"pub fn wrap(x: Int) -> A·<Int> {",
	)
	if strings.Contains(out, "_>") || strings.Contains(out, "-> _") {
		t.Errorf("no signature may leave a type to inference:\n%s", out)
	}
}

func TestIncompleteSignatureIsReported(t *testing.T) {
	_, _, a := generateSource(t, `
- variable: spin
  result:
    lambda: [{typed: int, pattern: x}]
    result: {call: spin, arguments: [x]}
- variable: wrap
  result:
    lambda: [{typed: int, pattern: x}]
    result: {record: {a: {call: spin, arguments: [x]}}}
`)
	found := a.Errors().WithCode(diagnostics.ErrT001)
	if len(found) != 2 || a.Errors().Len() != 2 {
		t.Fatalf("expected two T001 errors, got:\n%s", errorList(a))
	}
	if !strings.Contains(found[0].Message, "result type of spin") {
		t.Errorf("first T001 should be about spin: %s", found[0].Message)
	}
	if !strings.Contains(found[1].Message, "result type of wrap (I only know { a ? })") {
		t.Errorf("second T001 should show what is known of wrap: %s", found[1].Message)
	}
}

func TestFieldAccessReadsInPlace(t *testing.T) {
	out, _, a := generateSource(t, `
- variable: summary
  result:
    lambda: [{typed: {record: {count: int, items: {construct: vec, arguments: [int]}}}, pattern: s}]
    result: {record: {n: {access: s, field: count}, first: {access: s, field: items}, again: {access: s, field: items}}}
`)
	expectNoErrors(t, a)
	expectContains(t, out, "n: s.count,", "first: s.items.clone(),", "again: s.items")
	if strings.Contains(out, "s.clone()") || strings.Contains(out, "again: s.items.clone()") {
		t.Errorf("only the field should be cloned, and not at its last use:\n%s", out)
	}
}

func TestEmptyVecOfUndeclaredParameter(t *testing.T) {
	_, _, a := generateSource(t, `
- variable: size
  result:
    lambda: [{typed: int, pattern: x}]
    result: {call: vec_length, arguments: [{vec: []}]}
`)
	found := a.Errors().WithCode(diagnostics.ErrS006)
	if len(found) != 1 || a.Errors().Len() != 1 {
		t.Fatalf("expected one S006, got:\n%s", errorList(a))
	}
	if !strings.Contains(found[0].Message, "vec has elements of type a, which is not a type parameter of size") {
		t.Errorf("unexpected message: %s", found[0].Message)
	}
}

func TestLambdaNeedsParameters(t *testing.T) {
	_, _, a := generateSource(t, `
- variable: constant
  result: {lambda: [], result: {int: "1"}}
- variable: maker
  result:
    lambda: [{typed: int, pattern: x}]
    result: {lambda: [], result: x}
`)
	if n := len(a.Errors().WithCode(diagnostics.ErrS005)); n != 2 {
		t.Fatalf("expected two S005 errors, got:\n%s", errorList(a))
	}
}

func TestStringsAreCopied(t *testing.T) {
	out, _, a := generateSource(t, `
- variable: echo
  result:
    lambda: [{typed: str, pattern: s}]
    result: {call: str_attach, arguments: [s, s]}
`)
	expectNoErrors(t, a)
	expectContains(t, out, "pub fn echo(s: Str) -> Str {", "str_attach(s, s)")
}
