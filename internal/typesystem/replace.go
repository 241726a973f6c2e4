package typesystem

import "sort"

// Substitute replaces type variables by the types bound to them in subst.
// Variables without a binding are left in place.
func Substitute(t Type, subst map[string]Type) Type {
	if t == nil || len(subst) == 0 {
		return t
	}
	switch typ := t.(type) {
	case Variable:
		if replacement, ok := subst[typ.Name]; ok && replacement != nil {
			return replacement
		}
		return typ
	case Function:
		newInputs := make([]Type, len(typ.Inputs))
		for i, in := range typ.Inputs {
			newInputs[i] = Substitute(in, subst)
		}
		return Function{Inputs: newInputs, Output: Substitute(typ.Output, subst)}
	case ChoiceConstruct:
		newArgs := make([]Type, len(typ.Arguments))
		for i, arg := range typ.Arguments {
			newArgs[i] = Substitute(arg, subst)
		}
		return ChoiceConstruct{Name: typ.Name, Arguments: newArgs}
	case Record:
		newFields := make(map[string]Type, len(typ.Fields))
		for k, v := range typ.Fields {
			newFields[k] = Substitute(v, subst)
		}
		return Record{Fields: newFields}
	default:
		return t
	}
}

// Walk calls visit for t and every type nested inside it, outermost first.
// Absent types are skipped.
func Walk(t Type, visit func(Type)) {
	if t == nil {
		return
	}
	visit(t)
	switch typ := t.(type) {
	case Function:
		for _, in := range typ.Inputs {
			Walk(in, visit)
		}
		Walk(typ.Output, visit)
	case ChoiceConstruct:
		for _, arg := range typ.Arguments {
			Walk(arg, visit)
		}
	case Record:
		for _, name := range typ.FieldNames() {
			Walk(typ.Fields[name], visit)
		}
	}
}

// MentionsAny reports whether t applies any choice type named in names.
func MentionsAny(t Type, names map[string]bool) bool {
	found := false
	Walk(t, func(inner Type) {
		if c, ok := inner.(ChoiceConstruct); ok && names[c.Name] {
			found = true
		}
	})
	return found
}

// FreeVariables returns the distinct type variable names in t, sorted.
func FreeVariables(types ...Type) []string {
	seen := make(map[string]bool)
	for _, t := range types {
		Walk(t, func(inner Type) {
			if v, ok := inner.(Variable); ok {
				seen[v.Name] = true
			}
		})
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ContainsFunction reports whether a function type occurs anywhere inside t.
func ContainsFunction(t Type) bool {
	found := false
	Walk(t, func(inner Type) {
		if _, ok := inner.(Function); ok {
			found = true
		}
	})
	return found
}

// Complete reports whether t is known all the way down: no input, output,
// argument or field of it is absent.
func Complete(t Type) bool {
	switch typ := t.(type) {
	case nil:
		return false
	case Function:
		for _, in := range typ.Inputs {
			if !Complete(in) {
				return false
			}
		}
		return Complete(typ.Output)
	case ChoiceConstruct:
		for _, arg := range typ.Arguments {
			if !Complete(arg) {
				return false
			}
		}
	case Record:
		for _, field := range typ.Fields {
			if !Complete(field) {
				return false
			}
		}
	}
	return true
}

// Depth is the nesting depth of t. Absent and leaf types have depth 1.
func Depth(t Type) int {
	deepest := 0
	switch typ := t.(type) {
	case Function:
		for _, in := range typ.Inputs {
			deepest = max(deepest, Depth(in))
		}
		deepest = max(deepest, Depth(typ.Output))
	case ChoiceConstruct:
		for _, arg := range typ.Arguments {
			deepest = max(deepest, Depth(arg))
		}
	case Record:
		for _, field := range typ.Fields {
			deepest = max(deepest, Depth(field))
		}
	}
	return deepest + 1
}
