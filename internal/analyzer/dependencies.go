package analyzer

import (
	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/graph"
)

// BuildGraphs builds the type graph and the variable graph. The two name
// spaces never share edges, even where a variable mentions a type.
func (a *Analyzer) BuildGraphs() {
	a.TypeGraph = graph.New()
	for _, name := range a.typeNames {
		a.TypeGraph.AddNode(name)
	}
	for _, name := range a.typeNames {
		from, _ := a.TypeGraph.Lookup(name)
		visit := func(referenced string) {
			if to, ok := a.TypeGraph.Lookup(referenced); ok {
				a.TypeGraph.AddEdge(from, to)
			}
		}
		if alias, ok := a.aliasDecls[name]; ok {
			typeReferences(alias.Type, visit)
		}
		if choice, ok := a.choiceDecls[name]; ok {
			for _, v := range choice.Variants {
				if v != nil {
					typeReferences(v.Value, visit)
				}
			}
		}
	}

	a.VariableGraph = graph.New()
	for _, name := range a.variableNames {
		a.VariableGraph.AddNode(name)
	}
	for _, name := range a.variableNames {
		from, _ := a.VariableGraph.Lookup(name)
		variableReferences(a.variableDecls[name].Result, nil, func(referenced string) {
			if to, ok := a.VariableGraph.Lookup(referenced); ok {
				a.VariableGraph.AddEdge(from, to)
			}
		})
	}
}

// typeReferences calls visit with every constructor name in t.
func typeReferences(t ast.Type, visit func(string)) {
	switch typ := t.(type) {
	case *ast.TypeFunction:
		for _, in := range typ.Inputs {
			typeReferences(in, visit)
		}
		typeReferences(typ.Output, visit)
	case *ast.TypeConstruct:
		if typ.Name != nil {
			visit(typ.Name.Value)
		}
		for _, arg := range typ.Arguments {
			typeReferences(arg, visit)
		}
	case *ast.TypeRecord:
		for _, f := range typ.Fields {
			if f != nil {
				typeReferences(f.Value, visit)
			}
		}
	case *ast.TypeParenthesized:
		typeReferences(typ.Inner, visit)
	case *ast.TypeWithComment:
		typeReferences(typ.Type, visit)
	}
}

// localNames is the set of names bound by enclosing patterns and lets.
type localNames map[string]bool

func (l localNames) with(names ...string) localNames {
	extended := make(localNames, len(l)+len(names))
	for k := range l {
		extended[k] = true
	}
	for _, n := range names {
		extended[n] = true
	}
	return extended
}

// variableReferences calls visit with every free reference in e.
func variableReferences(e ast.Expression, locals localNames, visit func(string)) {
	switch expr := e.(type) {
	case *ast.Reference:
		if !locals[expr.Name] {
			visit(expr.Name)
		}
	case *ast.VariantConstruct:
		variableReferences(expr.Value, locals, visit)
	case *ast.Call:
		variableReferences(expr.Called, locals, visit)
		for _, arg := range expr.Arguments {
			variableReferences(arg, locals, visit)
		}
	case *ast.Lambda:
		var bound []string
		for _, p := range expr.Parameters {
			bound = append(bound, PatternVariables(p)...)
		}
		variableReferences(expr.Result, locals.with(bound...), visit)
	case *ast.Match:
		variableReferences(expr.Matched, locals, visit)
		for _, c := range expr.Cases {
			if c != nil {
				variableReferences(c.Result, locals.with(PatternVariables(c.Pattern)...), visit)
			}
		}
	case *ast.Let:
		variableReferences(expr.Value, locals, visit)
		if expr.Name != nil {
			variableReferences(expr.Result, locals.with(expr.Name.Value), visit)
		} else {
			variableReferences(expr.Result, locals, visit)
		}
	case *ast.VecLiteral:
		for _, el := range expr.Elements {
			variableReferences(el, locals, visit)
		}
	case *ast.RecordLiteral:
		for _, f := range expr.Fields {
			if f != nil {
				variableReferences(f.Value, locals, visit)
			}
		}
	case *ast.RecordAccess:
		variableReferences(expr.Record, locals, visit)
	case *ast.RecordUpdate:
		variableReferences(expr.Record, locals, visit)
		for _, f := range expr.Fields {
			if f != nil {
				variableReferences(f.Value, locals, visit)
			}
		}
	case *ast.Typed:
		variableReferences(expr.Expression, locals, visit)
	case *ast.Parenthesized:
		variableReferences(expr.Inner, locals, visit)
	case *ast.WithComment:
		variableReferences(expr.Expression, locals, visit)
	}
}

// PatternVariables lists the names a pattern binds, left to right.
func PatternVariables(p ast.Pattern) []string {
	var names []string
	var walk func(ast.Pattern)
	walk = func(p ast.Pattern) {
		switch pat := p.(type) {
		case *ast.PatternTyped:
			walk(pat.Pattern)
		case *ast.PatternVariable:
			names = append(names, pat.Name)
		case *ast.PatternVariant:
			walk(pat.Value)
		case *ast.PatternRecord:
			for _, f := range pat.Fields {
				switch {
				case f == nil:
				case f.Value == nil && f.Name != nil:
					// `{ x }` binds the field to a variable of the same name
					names = append(names, f.Name.Value)
				default:
					walk(f.Value)
				}
			}
		case *ast.PatternParenthesized:
			walk(pat.Inner)
		case *ast.PatternWithComment:
			walk(pat.Pattern)
		}
	}
	walk(p)
	return names
}
