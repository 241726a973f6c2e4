package codegen

import (
	"strconv"

	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/rust"
	"github.com/funvibe/still/internal/typesystem"
)

// patternLowering accumulates what lowering one pattern produces besides
// the rust pattern itself.
type patternLowering struct {
	g      *Generator
	scope  *Scope
	guards []rust.Expr
}

// lowerPattern lowers p against a value of type expected. Bindings are
// added to the returned scope; string literals become guards. reference
// is set when the matched value is borrowed.
func (g *Generator) lowerPattern(p ast.Pattern, expected typesystem.Type, scope *Scope, reference bool) (rust.Pattern, []rust.Expr, *Scope) {
	l := &patternLowering{g: g, scope: scope}
	pattern := l.lower(p, expected, reference)
	return pattern, l.guards, l.scope
}

func (l *patternLowering) bind(name string, rng ast.Node, t typesystem.Type, reference bool) rust.Pattern {
	l.g.checkShadowing(name, rng.GetRange(), l.scope)
	b := &binding{
		Type:      t,
		Copy:      l.g.isCopy(t),
		Reference: reference,
		Depth:     l.g.fn.depth,
		RustName:  identifier(name),
	}
	l.scope = l.scope.With(name, b)
	return &rust.IdentPat{Name: b.RustName}
}

func (l *patternLowering) lower(p ast.Pattern, expected typesystem.Type, reference bool) rust.Pattern {
	g := l.g
	switch pat := p.(type) {
	case nil:
		return &rust.WildPat{}
	case *ast.PatternTyped:
		t := expected
		if pat.Type != nil {
			t = g.analyzer.ResolveType(pat.Type, nil)
		}
		if pat.Pattern == nil {
			g.errs.Errorf(diagnostics.ErrS007, pat.Range, "this type annotation is missing its pattern")
			return &rust.WildPat{}
		}
		return l.lower(pat.Pattern, t, reference)
	case *ast.PatternVariable:
		return l.bind(pat.Name, pat, expected, reference)
	case *ast.PatternIgnored:
		return &rust.WildPat{}
	case *ast.PatternInt:
		return &rust.LitPat{Text: pat.Value}
	case *ast.PatternChar:
		return &rust.LitPat{Text: charLiteral(pat.Value)}
	case *ast.PatternString:
		// Str cannot be matched against a literal, so bind and compare
		name := g.nextStringName()
		l.guards = append(l.guards, &rust.BinaryExpr{
			Left:  &rust.MethodCallExpr{Receiver: &rust.Ident{Name: name}, Method: "as_str"},
			Op:    "==",
			Right: &rust.Lit{Text: stringLiteral(pat.Value)},
		})
		return &rust.IdentPat{Name: name}
	case *ast.PatternVariant:
		return l.lowerVariant(pat, expected, reference)
	case *ast.PatternRecord:
		return l.lowerRecord(pat, expected, reference)
	case *ast.PatternParenthesized:
		return l.lower(pat.Inner, expected, reference)
	case *ast.PatternWithComment:
		return l.lower(pat.Pattern, expected, reference)
	}
	return &rust.WildPat{}
}

func (l *patternLowering) lowerVariant(pat *ast.PatternVariant, expected typesystem.Type, reference bool) rust.Pattern {
	g := l.g
	if pat.Name == nil {
		g.errs.Errorf(diagnostics.ErrS001, pat.Range, "this variant pattern is missing its name")
		return &rust.WildPat{}
	}
	choice, variant, ok := g.tables.ChoiceOfVariant(pat.Name.Value)
	if !ok {
		g.errs.Errorf(diagnostics.ErrN004, pat.Name.Range, "I could not find a variant named %s", pat.Name.Value)
		return &rust.WildPat{}
	}
	path := choiceName(choice) + "::" + variant.Name
	if !variant.HasPayload {
		if pat.Value != nil {
			g.errs.Errorf(diagnostics.ErrA003, pat.Range,
				"the variant %s has no payload, so remove the pattern after it", variant.Name)
		}
		return &rust.PathPat{Path: path}
	}
	if pat.Value == nil {
		g.errs.Errorf(diagnostics.ErrA003, pat.Range,
			"the variant %s carries a %s; match it with a pattern, or with _ to ignore it",
			variant.Name, describeType(variant.Value))
		return &rust.TupleStructPat{Path: path, Elements: []rust.Pattern{&rust.WildPat{}}}
	}
	inner := l.lower(pat.Value, payloadType(choice, variant, expected), reference || variant.ConstructsRecursiveType)
	return &rust.TupleStructPat{Path: path, Elements: []rust.Pattern{inner}}
}

func (l *patternLowering) lowerRecord(pat *ast.PatternRecord, expected typesystem.Type, reference bool) rust.Pattern {
	g := l.g
	record, known := expected.(typesystem.Record)
	var fields []*ast.PatternField
	seen := make(map[string]bool, len(pat.Fields))
	for _, f := range pat.Fields {
		if f == nil || f.Name == nil {
			g.errs.Errorf(diagnostics.ErrS001, pat.Range, "a field of this record pattern is missing its name")
			continue
		}
		if seen[f.Name.Value] {
			g.errs.Errorf(diagnostics.ErrN001, f.Name.Range, "the field %s appears twice", f.Name.Value)
			continue
		}
		if known {
			if _, has := record.Fields[f.Name.Value]; !has {
				g.errs.Errorf(diagnostics.ErrN005, f.Name.Range, "the record %s has no field %s", record, f.Name.Value)
				continue
			}
		}
		seen[f.Name.Value] = true
		fields = append(fields, f)
	}

	all := make([]string, 0, len(fields))
	if known {
		all = record.FieldNames()
	} else {
		for _, f := range fields {
			all = append(all, f.Name.Value)
		}
	}
	if len(all) == 0 {
		return &rust.StructPat{Path: "Blank", Rest: true}
	}
	result := &rust.StructPat{Path: g.records.Register(all), Rest: len(fields) < len(all)}
	for _, f := range fields {
		fieldType := record.Fields[f.Name.Value]
		var sub rust.Pattern
		if f.Value == nil {
			sub = l.bind(f.Name.Value, f.Name, fieldType, reference)
		} else {
			sub = l.lower(f.Value, fieldType, reference)
		}
		result.Fields = append(result.Fields, rust.FieldPat{Name: identifier(f.Name.Value), Pattern: sub})
	}
	return result
}

// parameterMatch is a function parameter whose pattern is matched at the
// start of the body.
type parameterMatch struct {
	name    string
	pattern rust.Pattern
	guards  []rust.Expr
}

// lowerParameters binds the parameter patterns of a function or lambda.
// A plain variable becomes a named parameter; anything else gets a
// generated name and is destructured by a match around the body. It
// returns the parameters (without types), those matches, the parameter
// types and the scope of the body.
func (g *Generator) lowerParameters(patterns []ast.Pattern, inputs []typesystem.Type, scope *Scope) ([]rust.Parameter, []parameterMatch, []typesystem.Type, *Scope) {
	params := make([]rust.Parameter, len(patterns))
	types := make([]typesystem.Type, len(patterns))
	var matches []parameterMatch
	for i, p := range patterns {
		if i < len(inputs) {
			types[i] = inputs[i]
		}
		core := ast.UnwrapPattern(p)
		if typed, ok := core.(*ast.PatternTyped); ok {
			if typed.Type != nil {
				types[i] = g.analyzer.ResolveType(typed.Type, nil)
			}
			core = ast.UnwrapPattern(typed.Pattern)
		}
		switch pat := core.(type) {
		case *ast.PatternVariable:
			l := &patternLowering{g: g, scope: scope}
			l.bind(pat.Name, pat, types[i], false)
			scope = l.scope
			params[i] = rust.Parameter{Name: identifier(pat.Name)}
		case *ast.PatternIgnored, nil:
			params[i] = rust.Parameter{Name: "_"}
		default:
			name := "parameter·" + strconv.Itoa(i)
			pattern, guards, inner := g.lowerPattern(core, types[i], scope, false)
			scope = inner
			params[i] = rust.Parameter{Name: name}
			matches = append(matches, parameterMatch{name: name, pattern: pattern, guards: guards})
		}
	}
	return params, matches, types, scope
}

func wrapParameterMatches(body rust.Expr, matches []parameterMatch) rust.Expr {
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		body = &rust.MatchExpr{
			Scrutinee: &rust.Ident{Name: m.name},
			Arms:      []rust.Arm{{Pattern: m.pattern, Guard: joinGuards(m.guards), Body: body}},
		}
	}
	return body
}
