package analyzer

import (
	"fmt"
	"strings"

	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/typesystem"
)

// ResolveType converts a syntax type into its canonical form. Aliases are
// expanded, parentheses and comments dropped. When params is non-nil, only
// the type variables it contains may appear.
//
// Errors are reported and resolution goes on: a missing part comes back as
// nil, while arity mismatches still expand with what was given. A nil
// result means the whole type is unknown.
func (a *Analyzer) ResolveType(t ast.Type, params map[string]bool) typesystem.Type {
	if t == nil {
		return nil
	}
	switch typ := t.(type) {
	case *ast.TypeParenthesized:
		if typ.Inner == nil {
			a.errs.Errorf(diagnostics.ErrS003, typ.Range, "missing type inside parentheses")
			return nil
		}
		return a.ResolveType(typ.Inner, params)

	case *ast.TypeWithComment:
		if typ.Type == nil {
			a.errs.Errorf(diagnostics.ErrS003, typ.Range, "missing type after comment")
			return nil
		}
		return a.ResolveType(typ.Type, params)

	case *ast.TypeVariable:
		if params != nil && !params[typ.Name] {
			a.errs.Errorf(diagnostics.ErrN004, typ.Range,
				"the type variable %s is not a parameter of this declaration", typ.Name)
		}
		return typesystem.Variable{Name: typ.Name}

	case *ast.TypeFunction:
		inputs := make([]typesystem.Type, 0, len(typ.Inputs))
		for _, in := range typ.Inputs {
			inputs = append(inputs, a.ResolveType(in, params))
		}
		if len(typ.Inputs) == 0 {
			a.errs.Errorf(diagnostics.ErrS005, typ.Range, "a function type needs at least one input type")
		}
		var output typesystem.Type
		if typ.Output == nil {
			a.errs.Errorf(diagnostics.ErrS005, typ.Range, "this function type is missing its output type")
		} else {
			output = a.ResolveType(typ.Output, params)
		}
		return typesystem.Function{Inputs: inputs, Output: output}

	case *ast.TypeConstruct:
		return a.resolveConstruct(typ, params)

	case *ast.TypeRecord:
		fields := make(map[string]typesystem.Type, len(typ.Fields))
		for _, f := range typ.Fields {
			if f == nil || f.Name == nil {
				a.errs.Errorf(diagnostics.ErrS001, typ.Range, "a record field is missing its name")
				continue
			}
			if _, dup := fields[f.Name.Value]; dup {
				a.errs.Errorf(diagnostics.ErrN001, f.Name.Range, "the field %s appears twice", f.Name.Value)
				continue
			}
			if f.Value == nil {
				a.errs.Errorf(diagnostics.ErrS003, f.Range, "the record field %s is missing its type", f.Name.Value)
				continue
			}
			fields[f.Name.Value] = a.ResolveType(f.Value, params)
		}
		return typesystem.Record{Fields: fields}
	}
	return nil
}

func (a *Analyzer) resolveConstruct(typ *ast.TypeConstruct, params map[string]bool) typesystem.Type {
	if typ.Name == nil || typ.Name.Value == "" {
		a.errs.Errorf(diagnostics.ErrS003, typ.Range, "this type is missing its name")
		return nil
	}
	name := typ.Name.Value
	args := make([]typesystem.Type, len(typ.Arguments))
	for i, arg := range typ.Arguments {
		args[i] = a.ResolveType(arg, params)
	}

	if alias, ok := a.tables.Aliases[name]; ok {
		a.checkArity("type alias", name, alias.Parameters, len(args), typ)
		if alias.Type == nil {
			// Unresolved or rejected; its own diagnostics already explain why.
			return nil
		}
		subst := make(map[string]typesystem.Type, len(alias.Parameters))
		for i, param := range alias.Parameters {
			if i < len(args) {
				subst[param] = args[i]
			}
		}
		return typesystem.Substitute(alias.Type, subst)
	}

	if choice, ok := a.tables.Choices[name]; ok {
		a.checkArity("choice type", name, choice.Parameters, len(args), typ)
		// pad with the parameters themselves so the arity stays right
		for len(args) < len(choice.Parameters) {
			args = append(args, typesystem.Variable{Name: choice.Parameters[len(args)]})
		}
		return typesystem.ChoiceConstruct{Name: name, Arguments: args[:len(choice.Parameters)]}
	}

	a.errs.Errorf(diagnostics.ErrN004, typ.Name.Range, "unknown type %s", name)
	return nil
}

func (a *Analyzer) checkArity(what, name string, params []string, got int, typ *ast.TypeConstruct) {
	switch {
	case got < len(params):
		missing := params[got:]
		a.errs.Errorf(diagnostics.ErrA001, typ.Range,
			"the %s %s expects %s but got %d; missing %s for %s",
			what, name, plural(len(params), "argument"), got,
			plural(len(missing), "argument"), parameterList(missing))
	case got > len(params):
		a.errs.Errorf(diagnostics.ErrA001, typ.Range,
			"the %s %s expects %s (%s) but got %d; remove the %d surplus",
			what, name, plural(len(params), "argument"), parameterList(params), got, got-len(params))
	}
}

func parameterList(params []string) string {
	if len(params) == 0 {
		return "no parameters"
	}
	if len(params) == 1 {
		return "parameter " + params[0]
	}
	return "parameters " + strings.Join(params, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
