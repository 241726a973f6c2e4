package ast

import (
	"testing"

	"github.com/funvibe/still/internal/token"
)

func TestDecodeDeclarations(t *testing.T) {
	input := `
file: shapes.still
declarations:
  - choice: shape
    documentation: a drawable thing
    variants:
      Circle: {record: {radius: dec}}
      Nothing: ~
  - alias: pair
    parameters: [a, b]
    type: {record: {first: {var: a}, second: {var: b}}}
  - variable: area
    range: "10:1-14:20"
    result:
      lambda: [{typed: shape, pattern: s}]
      result:
        match: s
        cases:
          - pattern: {variant: Circle, value: {record: {radius: ~}}}
            result: {call: dec_mul, arguments: [radius, radius]}
          - pattern: _
            result: {dec: "0"}
  - error: "??"
`
	program, err := Decode("input.yaml", []byte(input))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if program.File != "shapes.still" {
		t.Errorf("file = %q", program.File)
	}
	if len(program.Declarations) != 4 {
		t.Fatalf("expected 4 declarations, got %d", len(program.Declarations))
	}

	choice, ok := program.Declarations[0].(*ChoiceTypeDeclaration)
	if !ok {
		t.Fatalf("expected a choice, got %T", program.Declarations[0])
	}
	if choice.Name.Value != "shape" || choice.Documentation != "a drawable thing" || len(choice.Variants) != 2 {
		t.Errorf("unexpected choice %+v", choice)
	}
	if choice.Variants[1].Value != nil {
		t.Errorf("Nothing has no payload")
	}
	if choice.Name.Range.Start != (token.Position{Line: 3, Column: 13}) {
		t.Errorf("name position = %v", choice.Name.Range.Start)
	}

	alias := program.Declarations[1].(*TypeAliasDeclaration)
	if len(alias.Parameters) != 2 || alias.Parameters[1].Value != "b" {
		t.Errorf("unexpected parameters %+v", alias.Parameters)
	}
	if _, ok := alias.Type.(*TypeRecord); !ok {
		t.Errorf("expected a record type, got %T", alias.Type)
	}

	variable := program.Declarations[2].(*VariableDeclaration)
	want := token.Range{Start: token.Position{Line: 10, Column: 1}, End: token.Position{Line: 14, Column: 20}}
	if variable.Range != want {
		t.Errorf("explicit range = %v, want %v", variable.Range, want)
	}
	lambda, ok := AsLambda(variable.Result)
	if !ok || len(lambda.Parameters) != 1 {
		t.Fatalf("expected a one-parameter lambda, got %T", variable.Result)
	}
	match := lambda.Result.(*Match)
	if len(match.Cases) != 2 {
		t.Fatalf("expected 2 cases")
	}
	record := match.Cases[0].Pattern.(*PatternVariant).Value.(*PatternRecord)
	if record.Fields[0].Name.Value != "radius" || record.Fields[0].Value != nil {
		t.Errorf("punned field expected, got %+v", record.Fields[0])
	}
	if _, ok := match.Cases[1].Pattern.(*PatternIgnored); !ok {
		t.Errorf("_ decodes as the ignored pattern")
	}

	if _, ok := program.Declarations[3].(*ErrorDeclaration); !ok {
		t.Errorf("expected an error declaration")
	}
}

func TestDecodeRejectsUnknownKinds(t *testing.T) {
	tests := []string{
		`[{frobnicate: x}]`,
		`[{variable: x, result: {wibble: 1}}]`,
		`[{alias: x, type: {wobble: 1}}]`,
		`{declarations: {variable: x}}`,
	}
	for _, input := range tests {
		if _, err := Decode("bad.yaml", []byte(input)); err == nil {
			t.Errorf("expected an error for %s", input)
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	program, err := Decode("empty.yaml", nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(program.Declarations) != 0 {
		t.Errorf("expected no declarations")
	}
}
