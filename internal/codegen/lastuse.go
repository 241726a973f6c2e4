package codegen

import (
	"sort"

	"github.com/funvibe/still/internal/analyzer"
	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/token"
)

// nameSet is an immutable set of local names.
type nameSet map[string]bool

func (s nameSet) with(names ...string) nameSet {
	result := make(nameSet, len(s)+len(names))
	for n := range s {
		result[n] = true
	}
	for _, n := range names {
		result[n] = true
	}
	return result
}

func (s nameSet) without(names ...string) nameSet {
	result := make(nameSet, len(s))
	for n := range s {
		result[n] = true
	}
	for _, n := range names {
		delete(result, n)
	}
	return result
}

func (s nameSet) union(other nameSet) nameSet {
	result := make(nameSet, len(s)+len(other))
	for n := range s {
		result[n] = true
	}
	for n := range other {
		result[n] = true
	}
	return result
}

func (s nameSet) sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// lastUses walks a declaration body in reverse evaluation order and records
// every reference after which its binding is never read again. Only those
// references may move their binding; all others clone.
//
// A region is a function body, lambda body, match case or let body. Lambdas
// are hoisted to the start of their innermost region, so their captures
// count as a single use at that region's entry and do not compete with the
// uses inside it. Match cases are walked independently from the same
// continuation since only one of them runs.
type lastUses struct {
	moves map[token.Range]bool
}

// analyzeLastUses runs the pre-pass over the result of a top-level
// declaration. Parameters of a top-level function are bound in params.
func analyzeLastUses(body ast.Expression, params []string) map[token.Range]bool {
	l := &lastUses{moves: make(map[token.Range]bool)}
	l.region(body, nameSet{}.with(params...), nameSet{})
	return l.moves
}

func (l *lastUses) region(e ast.Expression, bound, later nameSet) nameSet {
	used := l.expr(e, bound, later)
	hoistedLambdas(e, func(lambda *ast.Lambda) {
		used = used.union(l.captures(lambda, bound))
	})
	return used
}

// captures walks a hoisted lambda as its own region and returns the outer
// bindings it reads.
func (l *lastUses) captures(lambda *ast.Lambda, bound nameSet) nameSet {
	var params []string
	for _, p := range lambda.Parameters {
		params = append(params, analyzer.PatternVariables(p)...)
	}
	inner := l.region(lambda.Result, bound.with(params...), nameSet{}).without(params...)
	captured := nameSet{}
	for n := range inner {
		if bound[n] {
			captured[n] = true
		}
	}
	return captured
}

func (l *lastUses) expr(e ast.Expression, bound, later nameSet) nameSet {
	switch expr := e.(type) {
	case *ast.Reference:
		if !bound[expr.Name] {
			return later
		}
		if !later[expr.Name] {
			l.moves[expr.Range] = true
		}
		return later.with(expr.Name)

	case *ast.VariantConstruct:
		return l.expr(expr.Value, bound, later)

	case *ast.Call:
		for i := len(expr.Arguments) - 1; i >= 0; i-- {
			later = l.expr(expr.Arguments[i], bound, later)
		}
		return l.expr(expr.Called, bound, later)

	case *ast.Lambda:
		// hoisted, accounted for at the region entry
		return later

	case *ast.Match:
		after := later
		for _, c := range expr.Cases {
			if c == nil {
				continue
			}
			names := analyzer.PatternVariables(c.Pattern)
			later = later.union(l.region(c.Result, bound.with(names...), after).without(names...))
		}
		return l.expr(expr.Matched, bound, later)

	case *ast.Let:
		if expr.Name == nil {
			return l.expr(expr.Value, bound, l.region(expr.Result, bound, later))
		}
		name := expr.Name.Value
		body := l.region(expr.Result, bound.with(name), later).without(name)
		return l.expr(expr.Value, bound, body)

	case *ast.VecLiteral:
		for i := len(expr.Elements) - 1; i >= 0; i-- {
			later = l.expr(expr.Elements[i], bound, later)
		}
		return later

	case *ast.RecordLiteral:
		for i := len(expr.Fields) - 1; i >= 0; i-- {
			if expr.Fields[i] != nil {
				later = l.expr(expr.Fields[i].Value, bound, later)
			}
		}
		return later

	case *ast.RecordAccess:
		return l.expr(expr.Record, bound, later)

	case *ast.RecordUpdate:
		// field values are evaluated before the base
		later = l.expr(expr.Record, bound, later)
		for i := len(expr.Fields) - 1; i >= 0; i-- {
			if expr.Fields[i] != nil {
				later = l.expr(expr.Fields[i].Value, bound, later)
			}
		}
		return later

	case *ast.Typed:
		return l.expr(expr.Expression, bound, later)
	case *ast.Parenthesized:
		return l.expr(expr.Inner, bound, later)
	case *ast.WithComment:
		return l.expr(expr.Expression, bound, later)
	}
	return later
}

// hoistedLambdas calls visit for every lambda whose innermost region is e,
// in evaluation order.
func hoistedLambdas(e ast.Expression, visit func(*ast.Lambda)) {
	switch expr := e.(type) {
	case *ast.Lambda:
		visit(expr)
	case *ast.VariantConstruct:
		hoistedLambdas(expr.Value, visit)
	case *ast.Call:
		hoistedLambdas(expr.Called, visit)
		for _, arg := range expr.Arguments {
			hoistedLambdas(arg, visit)
		}
	case *ast.Match:
		hoistedLambdas(expr.Matched, visit)
	case *ast.Let:
		hoistedLambdas(expr.Value, visit)
	case *ast.VecLiteral:
		for _, el := range expr.Elements {
			hoistedLambdas(el, visit)
		}
	case *ast.RecordLiteral:
		for _, f := range expr.Fields {
			if f != nil {
				hoistedLambdas(f.Value, visit)
			}
		}
	case *ast.RecordAccess:
		hoistedLambdas(expr.Record, visit)
	case *ast.RecordUpdate:
		for _, f := range expr.Fields {
			if f != nil {
				hoistedLambdas(f.Value, visit)
			}
		}
		hoistedLambdas(expr.Record, visit)
	case *ast.Typed:
		hoistedLambdas(expr.Expression, visit)
	case *ast.Parenthesized:
		hoistedLambdas(expr.Inner, visit)
	case *ast.WithComment:
		hoistedLambdas(expr.Expression, visit)
	}
}
