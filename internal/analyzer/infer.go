package analyzer

import (
	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/config"
	"github.com/funvibe/still/internal/typesystem"
)

// LocalTypes gives the types of the local bindings in scope.
type LocalTypes interface {
	LocalType(name string) (typesystem.Type, bool)
}

type localFrame struct {
	bindings map[string]typesystem.Type
	parent   LocalTypes
}

func (f *localFrame) LocalType(name string) (typesystem.Type, bool) {
	if t, ok := f.bindings[name]; ok {
		return t, true
	}
	if f.parent == nil {
		return nil, false
	}
	return f.parent.LocalType(name)
}

// WithLocals extends parent by bindings. Parent may be nil.
func WithLocals(parent LocalTypes, bindings map[string]typesystem.Type) LocalTypes {
	if len(bindings) == 0 && parent != nil {
		return parent
	}
	return &localFrame{bindings: bindings, parent: parent}
}

func lookupLocal(locals LocalTypes, name string) (typesystem.Type, bool) {
	if locals == nil {
		return nil, false
	}
	return locals.LocalType(name)
}

func primitive(name string) typesystem.Type {
	return typesystem.ChoiceConstruct{Name: name}
}

// InferExpression returns the result type of e, or nil when it cannot be
// determined locally. There is no unification: a match takes the type of
// its first case, a lambda is typed by its parameter patterns and body,
// and a call is specialized by Bind over its argument types.
func (a *Analyzer) InferExpression(e ast.Expression, locals LocalTypes) typesystem.Type {
	switch expr := e.(type) {
	case nil:
		return nil
	case *ast.IntegerLiteral:
		return primitive(config.IntTypeName)
	case *ast.DecimalLiteral:
		return primitive(config.DecTypeName)
	case *ast.CharLiteral:
		return primitive(config.ChrTypeName)
	case *ast.StringLiteral:
		return primitive(config.StrTypeName)

	case *ast.Reference:
		if t, ok := lookupLocal(locals, expr.Name); ok {
			return t
		}
		if info, ok := a.tables.Variables[expr.Name]; ok {
			return info.Type
		}
		return nil

	case *ast.VariantConstruct:
		if expr.Name == nil {
			return nil
		}
		choice, variant, ok := a.tables.ChoiceOfVariant(expr.Name.Value)
		if !ok {
			return nil
		}
		bindings := make(map[string]typesystem.Type)
		if variant.Value != nil && expr.Value != nil {
			Bind(variant.Value, a.InferExpression(expr.Value, locals), bindings)
		}
		args := make([]typesystem.Type, len(choice.Parameters))
		for i, param := range choice.Parameters {
			if bound, ok := bindings[param]; ok {
				args[i] = bound
			} else {
				args[i] = typesystem.Variable{Name: param}
			}
		}
		return typesystem.ChoiceConstruct{Name: choice.Name, Arguments: args}

	case *ast.Call:
		fn, ok := a.InferExpression(expr.Called, locals).(typesystem.Function)
		if !ok {
			return nil
		}
		bindings := make(map[string]typesystem.Type)
		for i, arg := range expr.Arguments {
			if i >= len(fn.Inputs) {
				break
			}
			Bind(fn.Inputs[i], a.InferExpression(arg, locals), bindings)
		}
		return typesystem.Substitute(fn.Output, bindings)

	case *ast.Lambda:
		inputs := make([]typesystem.Type, len(expr.Parameters))
		bindings := make(map[string]typesystem.Type)
		for i, p := range expr.Parameters {
			inputs[i] = a.BindPattern(p, nil, bindings)
		}
		output := a.InferExpression(expr.Result, WithLocals(locals, bindings))
		return typesystem.Function{Inputs: inputs, Output: output}

	case *ast.Match:
		if len(expr.Cases) == 0 || expr.Cases[0] == nil {
			return nil
		}
		matched := a.InferExpression(expr.Matched, locals)
		bindings := make(map[string]typesystem.Type)
		a.BindPattern(expr.Cases[0].Pattern, matched, bindings)
		return a.InferExpression(expr.Cases[0].Result, WithLocals(locals, bindings))

	case *ast.Let:
		value := a.InferExpression(expr.Value, locals)
		if expr.Name == nil {
			return a.InferExpression(expr.Result, locals)
		}
		return a.InferExpression(expr.Result, WithLocals(locals, map[string]typesystem.Type{expr.Name.Value: value}))

	case *ast.VecLiteral:
		if len(expr.Elements) == 0 {
			return nil
		}
		element := a.InferExpression(expr.Elements[0], locals)
		if element == nil {
			return nil
		}
		return typesystem.ChoiceConstruct{Name: config.VecTypeName, Arguments: []typesystem.Type{element}}

	case *ast.RecordLiteral:
		fields := make(map[string]typesystem.Type, len(expr.Fields))
		for _, f := range expr.Fields {
			if f != nil && f.Name != nil {
				fields[f.Name.Value] = a.InferExpression(f.Value, locals)
			}
		}
		return typesystem.Record{Fields: fields}

	case *ast.RecordAccess:
		record, ok := a.InferExpression(expr.Record, locals).(typesystem.Record)
		if !ok || expr.Field == nil {
			return nil
		}
		return record.Fields[expr.Field.Value]

	case *ast.RecordUpdate:
		return a.InferExpression(expr.Record, locals)

	case *ast.Typed:
		if expr.Type == nil {
			return a.InferExpression(expr.Expression, locals)
		}
		return a.ResolveType(expr.Type, nil)

	case *ast.Parenthesized:
		return a.InferExpression(expr.Inner, locals)
	case *ast.WithComment:
		return a.InferExpression(expr.Expression, locals)
	}
	return nil
}

// BindPattern records the type of every variable p binds into bindings and
// returns the type the pattern matches. expected is the type of the matched
// value if known; a type annotation inside the pattern takes precedence.
func (a *Analyzer) BindPattern(p ast.Pattern, expected typesystem.Type, bindings map[string]typesystem.Type) typesystem.Type {
	switch pat := p.(type) {
	case *ast.PatternTyped:
		t := expected
		if pat.Type != nil {
			t = a.ResolveType(pat.Type, nil)
		}
		if pat.Pattern != nil {
			a.BindPattern(pat.Pattern, t, bindings)
		}
		return t
	case *ast.PatternVariable:
		bindings[pat.Name] = expected
		return expected
	case *ast.PatternIgnored:
		return expected
	case *ast.PatternInt:
		return primitive(config.IntTypeName)
	case *ast.PatternChar:
		return primitive(config.ChrTypeName)
	case *ast.PatternString:
		return primitive(config.StrTypeName)
	case *ast.PatternVariant:
		if pat.Name == nil {
			return expected
		}
		choice, variant, ok := a.tables.ChoiceOfVariant(pat.Name.Value)
		if !ok {
			return expected
		}
		subst := make(map[string]typesystem.Type, len(choice.Parameters))
		args := make([]typesystem.Type, len(choice.Parameters))
		construct, sameChoice := expected.(typesystem.ChoiceConstruct)
		for i, param := range choice.Parameters {
			args[i] = typesystem.Variable{Name: param}
			if sameChoice && construct.Name == choice.Name && i < len(construct.Arguments) {
				args[i] = construct.Arguments[i]
			}
			subst[param] = args[i]
		}
		if pat.Value != nil {
			a.BindPattern(pat.Value, typesystem.Substitute(variant.Value, subst), bindings)
		}
		return typesystem.ChoiceConstruct{Name: choice.Name, Arguments: args}
	case *ast.PatternRecord:
		record, _ := expected.(typesystem.Record)
		fields := make(map[string]typesystem.Type, len(pat.Fields))
		for _, f := range pat.Fields {
			if f == nil || f.Name == nil {
				continue
			}
			fieldType := record.Fields[f.Name.Value]
			fields[f.Name.Value] = fieldType
			if f.Value == nil {
				bindings[f.Name.Value] = fieldType
			} else {
				a.BindPattern(f.Value, fieldType, bindings)
			}
		}
		if expected != nil {
			return expected
		}
		return typesystem.Record{Fields: fields}
	case *ast.PatternParenthesized:
		return a.BindPattern(pat.Inner, expected, bindings)
	case *ast.PatternWithComment:
		return a.BindPattern(pat.Pattern, expected, bindings)
	}
	return expected
}

// Bind walks a declared parameter type against an argument type and records
// the type variable bindings it can read off. It is one-directional and never
// backtracks: the first binding of a variable wins, and any structural
// mismatch is skipped without complaint.
func Bind(param, arg typesystem.Type, bindings map[string]typesystem.Type) {
	if param == nil || arg == nil {
		return
	}
	switch p := param.(type) {
	case typesystem.Variable:
		if _, bound := bindings[p.Name]; !bound {
			bindings[p.Name] = arg
		}
	case typesystem.Function:
		fn, ok := arg.(typesystem.Function)
		if !ok {
			return
		}
		for i := 0; i < len(p.Inputs) && i < len(fn.Inputs); i++ {
			Bind(p.Inputs[i], fn.Inputs[i], bindings)
		}
		Bind(p.Output, fn.Output, bindings)
	case typesystem.ChoiceConstruct:
		c, ok := arg.(typesystem.ChoiceConstruct)
		if !ok || c.Name != p.Name {
			return
		}
		for i := 0; i < len(p.Arguments) && i < len(c.Arguments); i++ {
			Bind(p.Arguments[i], c.Arguments[i], bindings)
		}
	case typesystem.Record:
		r, ok := arg.(typesystem.Record)
		if !ok {
			return
		}
		for _, name := range p.FieldNames() {
			if value, found := r.Fields[name]; found {
				Bind(p.Fields[name], value, bindings)
			}
		}
	}
}
