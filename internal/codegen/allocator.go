package codegen

import (
	"github.com/funvibe/still/internal/analyzer"
	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/symbols"
)

// solveAllocatorParameters decides which declarations take the allocator
// handle. Inside a recursive group the answer depends on the other members,
// so each group is iterated until nothing changes.
func (g *Generator) solveAllocatorParameters() {
	for _, group := range g.analyzer.VariableGroups {
		for changed := true; changed; {
			changed = false
			for _, name := range group {
				info := g.tables.Variables[name]
				decl, ok := g.analyzer.Variable(name)
				if !ok || info == nil || info.HasAllocatorParameter {
					continue
				}
				if g.declarationNeedsAllocator(decl) {
					info.HasAllocatorParameter = true
					changed = true
				}
			}
		}
	}
}

func (g *Generator) declarationNeedsAllocator(decl *ast.VariableDeclaration) bool {
	if lambda, ok := ast.AsLambda(decl.Result); ok {
		return g.needsAllocator(lambda.Result, lambdaLocals(lambda, nameSet{}))
	}
	return g.needsAllocator(decl.Result, nameSet{})
}

func lambdaLocals(lambda *ast.Lambda, locals nameSet) nameSet {
	var params []string
	for _, p := range lambda.Parameters {
		params = append(params, analyzer.PatternVariables(p)...)
	}
	return locals.with(params...)
}

// needsAllocator reports whether lowering e allocates: a closure, a boxed
// recursive payload, a top-level function used as a value, or a call of
// something that takes the allocator itself.
func (g *Generator) needsAllocator(e ast.Expression, locals nameSet) bool {
	switch expr := e.(type) {
	case *ast.Lambda:
		return true
	case *ast.VariantConstruct:
		if expr.Name != nil {
			if _, variant, ok := g.tables.ChoiceOfVariant(expr.Name.Value); ok && variant.ConstructsRecursiveType {
				return true
			}
		}
		return g.needsAllocator(expr.Value, locals)
	case *ast.Reference:
		if locals[expr.Name] {
			return false
		}
		info, ok := g.tables.Variables[expr.Name]
		if !ok {
			return false
		}
		// a function used as a value is wrapped in an allocated closure
		return info.Kind == symbols.KindFunction || info.HasAllocatorParameter
	case *ast.Call:
		for _, arg := range expr.Arguments {
			if g.needsAllocator(arg, locals) {
				return true
			}
		}
		if ref, ok := ast.UnwrapExpression(expr.Called).(*ast.Reference); ok && !locals[ref.Name] {
			if info, found := g.tables.Variables[ref.Name]; found {
				return info.HasAllocatorParameter
			}
			return false
		}
		return g.needsAllocator(expr.Called, locals)
	case *ast.Match:
		if g.needsAllocator(expr.Matched, locals) {
			return true
		}
		for _, c := range expr.Cases {
			if c != nil && g.needsAllocator(c.Result, locals.with(analyzer.PatternVariables(c.Pattern)...)) {
				return true
			}
		}
		return false
	case *ast.Let:
		if g.needsAllocator(expr.Value, locals) {
			return true
		}
		if expr.Name != nil {
			locals = locals.with(expr.Name.Value)
		}
		return g.needsAllocator(expr.Result, locals)
	case *ast.VecLiteral:
		for _, el := range expr.Elements {
			if g.needsAllocator(el, locals) {
				return true
			}
		}
	case *ast.RecordLiteral:
		for _, f := range expr.Fields {
			if f != nil && g.needsAllocator(f.Value, locals) {
				return true
			}
		}
	case *ast.RecordAccess:
		return g.needsAllocator(expr.Record, locals)
	case *ast.RecordUpdate:
		for _, f := range expr.Fields {
			if f != nil && g.needsAllocator(f.Value, locals) {
				return true
			}
		}
		return g.needsAllocator(expr.Record, locals)
	case *ast.Typed:
		return g.needsAllocator(expr.Expression, locals)
	case *ast.Parenthesized:
		return g.needsAllocator(expr.Inner, locals)
	case *ast.WithComment:
		return g.needsAllocator(expr.Expression, locals)
	}
	return false
}

// checkConstantRecursion rejects constants that need their own value to be
// computed: a reference from a constant's initializer to a member of its
// own group that is not behind a lambda.
func (g *Generator) checkConstantRecursion() {
	for _, group := range g.analyzer.VariableGroups {
		members := make(nameSet, len(group))
		for _, name := range group {
			members[name] = true
		}
		for _, name := range group {
			info := g.tables.Variables[name]
			decl, ok := g.analyzer.Variable(name)
			if !ok || info == nil || info.Kind != symbols.KindConstant {
				continue
			}
			eagerReferences(decl.Result, nameSet{}, func(ref *ast.Reference) {
				if !members[ref.Name] {
					return
				}
				g.recursiveConstants[name] = true
				if ref.Name == name {
					g.errs.Errorf(diagnostics.ErrR002, ref.Range,
						"the constant %s refers to itself, so its value can never be computed; "+
							"make it a function or move the reference into a lambda", name)
				} else {
					g.errs.Errorf(diagnostics.ErrR002, ref.Range,
						"the constant %s refers to %s, which in turn depends on %s; "+
							"move the reference into a lambda to break the cycle", name, ref.Name, name)
				}
			})
		}
	}
}

// eagerReferences visits the free references of e that are evaluated right
// away, skipping lambda bodies.
func eagerReferences(e ast.Expression, locals nameSet, visit func(*ast.Reference)) {
	switch expr := e.(type) {
	case *ast.Reference:
		if !locals[expr.Name] {
			visit(expr)
		}
	case *ast.VariantConstruct:
		eagerReferences(expr.Value, locals, visit)
	case *ast.Call:
		eagerReferences(expr.Called, locals, visit)
		for _, arg := range expr.Arguments {
			eagerReferences(arg, locals, visit)
		}
	case *ast.Match:
		eagerReferences(expr.Matched, locals, visit)
		for _, c := range expr.Cases {
			if c != nil {
				eagerReferences(c.Result, locals.with(analyzer.PatternVariables(c.Pattern)...), visit)
			}
		}
	case *ast.Let:
		eagerReferences(expr.Value, locals, visit)
		if expr.Name != nil {
			locals = locals.with(expr.Name.Value)
		}
		eagerReferences(expr.Result, locals, visit)
	case *ast.VecLiteral:
		for _, el := range expr.Elements {
			eagerReferences(el, locals, visit)
		}
	case *ast.RecordLiteral:
		for _, f := range expr.Fields {
			if f != nil {
				eagerReferences(f.Value, locals, visit)
			}
		}
	case *ast.RecordAccess:
		eagerReferences(expr.Record, locals, visit)
	case *ast.RecordUpdate:
		eagerReferences(expr.Record, locals, visit)
		for _, f := range expr.Fields {
			if f != nil {
				eagerReferences(f.Value, locals, visit)
			}
		}
	case *ast.Typed:
		eagerReferences(expr.Expression, locals, visit)
	case *ast.Parenthesized:
		eagerReferences(expr.Inner, locals, visit)
	case *ast.WithComment:
		eagerReferences(expr.Expression, locals, visit)
	}
}
