package codegen

import (
	"testing"

	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/token"
)

func lambdaOf(t *testing.T, input string) *ast.Lambda {
	t.Helper()
	program, err := ast.Decode("test.still.yaml", []byte(input))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	decl := program.Declarations[0].(*ast.VariableDeclaration)
	lambda, ok := ast.AsLambda(decl.Result)
	if !ok {
		t.Fatalf("not a lambda: %T", decl.Result)
	}
	return lambda
}

// referenceRanges lists the ranges of every reference to name, in source order.
func referenceRanges(e ast.Expression, name string) []token.Range {
	var ranges []token.Range
	var walk func(ast.Expression)
	walk = func(e ast.Expression) {
		if ref, ok := e.(*ast.Reference); ok && ref.Name == name {
			ranges = append(ranges, ref.Range)
		}
		switch expr := e.(type) {
		case *ast.Lambda:
			walk(expr.Result)
		case *ast.Match:
			walk(expr.Matched)
			for _, c := range expr.Cases {
				walk(c.Result)
			}
		case *ast.Let:
			walk(expr.Value)
			walk(expr.Result)
		default:
			forEachChild(e, walk)
		}
	}
	walk(e)
	return ranges
}

func TestLastUseInCall(t *testing.T) {
	lambda := lambdaOf(t, `
- variable: f
  result:
    lambda: [v]
    result: {call: g, arguments: [v, v]}
`)
	moves := analyzeLastUses(lambda.Result, []string{"v"})
	refs := referenceRanges(lambda.Result, "v")
	if len(refs) != 2 {
		t.Fatalf("found %d references", len(refs))
	}
	if moves[refs[0]] || !moves[refs[1]] {
		t.Errorf("only the second argument may move: %v", moves)
	}
}

func TestLastUseAcrossMatchCases(t *testing.T) {
	lambda := lambdaOf(t, `
- variable: f
  result:
    lambda: [v]
    result:
      match: {int: "0"}
      cases:
        - pattern: {int: "0"}
          result: v
        - pattern: _
          result: {call: g, arguments: [v, v]}
`)
	moves := analyzeLastUses(lambda.Result, []string{"v"})
	refs := referenceRanges(lambda.Result, "v")
	if len(refs) != 3 {
		t.Fatalf("found %d references", len(refs))
	}
	if !moves[refs[0]] {
		t.Error("the first case may move v since the other case does not run")
	}
	if moves[refs[1]] || !moves[refs[2]] {
		t.Error("within the second case only the last use moves")
	}
}

func TestLambdaCaptureCountsAtRegionStart(t *testing.T) {
	lambda := lambdaOf(t, `
- variable: f
  result:
    lambda: [v]
    result: {record: {first: v, later: {lambda: [n], result: v}}}
`)
	moves := analyzeLastUses(lambda.Result, []string{"v"})
	refs := referenceRanges(lambda.Result, "v")
	if len(refs) != 2 {
		t.Fatalf("found %d references", len(refs))
	}
	if !moves[refs[0]] {
		t.Error("the field use comes after the capture and may move")
	}
}

func TestNonLocalReferencesNeverMove(t *testing.T) {
	lambda := lambdaOf(t, `
- variable: f
  result:
    lambda: [v]
    result: {call: g, arguments: [other]}
`)
	moves := analyzeLastUses(lambda.Result, []string{"v"})
	if len(moves) != 0 {
		t.Errorf("references to top-level names are not tracked: %v", moves)
	}
}
