package analyzer

import (
	"fmt"
	"strings"

	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/symbols"
	"github.com/funvibe/still/internal/token"
)

// Collect partitions the declarations into type and variable declarations,
// creates their table entries and reports duplicate or reserved names.
// The first of several same-named declarations wins.
func (a *Analyzer) Collect(program *ast.Program) {
	if program == nil {
		return
	}
	typeRanges := make(map[string]token.Range)
	variantRanges := make(map[string]token.Range)
	variableRanges := make(map[string]token.Range)

	for _, decl := range program.Declarations {
		if errDecl, ok := decl.(*ast.ErrorDeclaration); ok {
			a.errs.Errorf(diagnostics.ErrS004, errDecl.Range,
				"could not parse this declaration: %s", summarize(errDecl.Text))
			continue
		}
		name := ast.NameOf(decl)
		if name == nil || name.Value == "" {
			a.errs.Errorf(diagnostics.ErrS001, decl.GetRange(), "%s is missing a name", describe(decl))
			continue
		}

		switch d := decl.(type) {
		case *ast.ChoiceTypeDeclaration:
			if !a.claim(name, "type", typeRanges) {
				continue
			}
			a.collectChoice(d, variantRanges)
		case *ast.TypeAliasDeclaration:
			if !a.claim(name, "type", typeRanges) {
				continue
			}
			a.aliasDecls[name.Value] = d
			a.typeNames = append(a.typeNames, name.Value)
			a.tables.Aliases[name.Value] = &symbols.TypeAliasInfo{
				Name:             name.Value,
				NameRange:        name.Range,
				DeclarationRange: d.Range,
				Documentation:    d.Documentation,
				Parameters:       a.parameterNames(d.Parameters),
				Flags:            symbols.Placeholder,
			}
		case *ast.VariableDeclaration:
			if !a.claim(name, "variable", variableRanges) {
				continue
			}
			a.variableDecls[name.Value] = d
			a.variableNames = append(a.variableNames, name.Value)
			kind := symbols.KindConstant
			if _, isLambda := ast.AsLambda(d.Result); isLambda {
				kind = symbols.KindFunction
			}
			a.tables.Variables[name.Value] = &symbols.VariableDeclarationInfo{
				Name:             name.Value,
				NameRange:        name.Range,
				DeclarationRange: d.Range,
				Documentation:    d.Documentation,
				Kind:             kind,
			}
		}
	}
}

// claim registers name in a name space, reporting built-in collisions and duplicates.
func (a *Analyzer) claim(name *ast.Identifier, space string, taken map[string]token.Range) bool {
	if symbols.IsBuiltinName(name.Value) {
		a.errs.Errorf(diagnostics.ErrN002, name.Range,
			"%s is a built-in name and cannot be declared as a %s", name.Value, space)
		return false
	}
	if first, dup := taken[name.Value]; dup {
		a.errs.Errorf(diagnostics.ErrN001, name.Range,
			"the %s %s is already declared at %s", space, name.Value, first.Start)
		return false
	}
	taken[name.Value] = name.Range
	return true
}

func (a *Analyzer) collectChoice(d *ast.ChoiceTypeDeclaration, variantRanges map[string]token.Range) {
	name := d.Name.Value
	info := &symbols.ChoiceTypeInfo{
		Name:             name,
		NameRange:        d.Name.Range,
		DeclarationRange: d.Range,
		Documentation:    d.Documentation,
		Parameters:       a.parameterNames(d.Parameters),
		Flags:            symbols.Placeholder,
	}
	for _, v := range d.Variants {
		if v == nil || v.Name == nil || v.Name.Value == "" {
			rng := d.Range
			if v != nil {
				rng = v.Range
			}
			a.errs.Errorf(diagnostics.ErrS001, rng, "a variant of %s is missing a name", name)
			continue
		}
		if !a.claim(v.Name, "variant", variantRanges) {
			continue
		}
		info.Variants = append(info.Variants, &symbols.VariantInfo{
			Name:       v.Name.Value,
			NameRange:  v.Name.Range,
			HasPayload: v.Value != nil,
		})
		a.tables.Variants[v.Name.Value] = name
	}
	a.choiceDecls[name] = d
	a.typeNames = append(a.typeNames, name)
	a.tables.Choices[name] = info
}

func (a *Analyzer) parameterNames(params []*ast.Identifier) []string {
	names := make([]string, 0, len(params))
	seen := make(map[string]bool)
	for _, p := range params {
		if p == nil || p.Value == "" {
			continue
		}
		if seen[p.Value] {
			a.errs.Errorf(diagnostics.ErrN001, p.Range, "the type parameter %s is declared twice", p.Value)
			continue
		}
		seen[p.Value] = true
		names = append(names, p.Value)
	}
	return names
}

func describe(decl ast.Declaration) string {
	switch decl.(type) {
	case *ast.ChoiceTypeDeclaration:
		return "choice type declaration"
	case *ast.TypeAliasDeclaration:
		return "type alias declaration"
	case *ast.VariableDeclaration:
		return "variable declaration"
	}
	return "declaration"
}

func summarize(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + " ..."
	}
	if len(text) > 60 {
		text = text[:57] + "..."
	}
	return fmt.Sprintf("%q", text)
}
