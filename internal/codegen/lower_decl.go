package codegen

import (
	"github.com/funvibe/still/internal/analyzer"
	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/config"
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/rust"
	"github.com/funvibe/still/internal/symbols"
	"github.com/funvibe/still/internal/typesystem"
)

// lowerVariables emits the top-level variables group by group, in
// processing order.
func (g *Generator) lowerVariables() []rust.Item {
	var items []rust.Item
	for _, group := range g.analyzer.VariableGroups {
		for _, name := range group {
			info := g.tables.Variables[name]
			decl, ok := g.analyzer.Variable(name)
			if !ok || info == nil || info.Builtin || decl.Result == nil {
				continue
			}
			if lambda, isLambda := ast.AsLambda(decl.Result); isLambda {
				items = append(items, g.lowerFunction(info, lambda))
			} else {
				items = append(items, g.lowerConstant(info, decl))
			}
		}
	}
	g.fn = nil
	return items
}

// signatureGenerics declares the type parameters of a top-level item. The
// lifetime is declared when a parameter or result type borrows, or when
// the allocator is taken.
func (g *Generator) signatureGenerics(info *symbols.VariableDeclarationInfo, types ...typesystem.Type) rust.Generics {
	var generics rust.Generics
	needsLifetime := info.HasAllocatorParameter
	for _, t := range types {
		if t != nil && g.flags(t).HasLifetimeParameter {
			needsLifetime = true
		}
	}
	bounds := []string{"Clone"}
	if needsLifetime {
		generics.Lifetimes = lifetime
		bounds = append(bounds, config.LifetimeName)
	}
	for _, v := range typesystem.FreeVariables(info.Type) {
		generics.Params = append(generics.Params, rust.GenericParam{Name: typeParameterName(v), Bounds: bounds})
	}
	return generics
}

func (g *Generator) lowerFunction(info *symbols.VariableDeclarationInfo, lambda *ast.Lambda) rust.Item {
	var paramNames []string
	for _, p := range lambda.Parameters {
		paramNames = append(paramNames, analyzer.PatternVariables(p)...)
	}
	g.checkLambdaParameters(lambda)
	g.beginDeclaration(info.Name, info.Type, analyzeLastUses(lambda.Result, paramNames))

	fnType, _ := info.Type.(typesystem.Function)
	params, matches, inputs, scope := g.lowerParameters(lambda.Parameters, fnType.Inputs, emptyScope())

	item := &rust.Fn{Documentation: info.Documentation, Public: true, Name: info.RustName}
	if info.HasAllocatorParameter {
		item.Parameters = append(item.Parameters, allocatorParameter())
	}
	for i, in := range inputs {
		if !typesystem.Complete(in) {
			g.errs.Errorf(diagnostics.ErrT001, lambda.Parameters[i].GetRange(),
				"I could not determine the type of this parameter of %s%s; add a type annotation", info.Name, partially(in))
		}
		params[i].Type = g.rustType(in)
	}
	item.Parameters = append(item.Parameters, params...)

	output := fnType.Output
	if !typesystem.Complete(output) {
		if inferred := g.infer(lambda.Result, scope); output == nil || typesystem.Complete(inferred) {
			output = inferred
		}
	}
	if !typesystem.Complete(output) {
		g.errs.Errorf(diagnostics.ErrT001, info.NameRange,
			"I could not determine the result type of %s%s; add a type annotation", info.Name, partially(output))
	}
	item.Output = g.rustType(output)
	item.Generics = g.signatureGenerics(info, append(append([]typesystem.Type(nil), inputs...), output)...)

	var body rust.Expr
	if lambda.Result == nil {
		g.errs.Errorf(diagnostics.ErrS002, lambda.Range, "the function %s is missing its result", info.Name)
		body = rust.Todo()
	} else {
		body = g.lowerRegion(lambda.Result, output, scope)
	}
	item.Body = asBlock(wrapParameterMatches(body, matches))
	return item
}

func (g *Generator) lowerConstant(info *symbols.VariableDeclarationInfo, decl *ast.VariableDeclaration) rust.Item {
	if !typesystem.Complete(info.Type) {
		g.errs.Errorf(diagnostics.ErrT001, info.NameRange,
			"I could not determine the type of %s%s; add a type annotation", info.Name, partially(info.Type))
	}
	if lit := literalConstant(decl.Result); lit != nil {
		return &rust.Const{
			Documentation: info.Documentation,
			Name:          info.RustName,
			Type:          g.rustType(info.Type),
			Value:         lowerLiteral(lit),
		}
	}

	g.beginDeclaration(info.Name, info.Type, analyzeLastUses(decl.Result, nil))
	item := &rust.Fn{
		Documentation: info.Documentation,
		Public:        true,
		Name:          info.RustName,
		Generics:      g.signatureGenerics(info, info.Type),
		Output:        g.rustType(info.Type),
	}
	if info.HasAllocatorParameter {
		item.Parameters = append(item.Parameters, allocatorParameter())
	}
	if g.recursiveConstants[info.Name] {
		item.Body = asBlock(rust.Todo())
		return item
	}
	item.Body = asBlock(g.lowerRegion(decl.Result, info.Type, emptyScope()))
	return item
}

// partially shows what is known of an incomplete signature type.
func partially(t typesystem.Type) string {
	if t == nil {
		return ""
	}
	return " (I only know " + t.String() + ")"
}
