package typesystem

import (
	"sort"
	"strings"
)

// Type is the canonical, alias-free form of a type expression.
// Parentheses and comments never survive resolution.
type Type interface {
	String() string
	typeNode()
}

// Variable is a type parameter, e.g. `a` in `vec a`.
type Variable struct {
	Name string
}

func (Variable) typeNode() {}

func (v Variable) String() string { return v.Name }

// Function is a closure type with at least one input.
type Function struct {
	Inputs []Type
	Output Type
}

func (Function) typeNode() {}

func (f Function) String() string {
	var sb strings.Builder
	sb.WriteString("\\")
	for i, in := range f.Inputs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(argumentString(in))
	}
	sb.WriteString(" > ")
	sb.WriteString(stringOrUnknown(f.Output))
	return sb.String()
}

// ChoiceConstruct applies a choice type (declared or built-in) to arguments.
type ChoiceConstruct struct {
	Name      string
	Arguments []Type
}

func (ChoiceConstruct) typeNode() {}

func (c ChoiceConstruct) String() string {
	if len(c.Arguments) == 0 {
		return c.Name
	}
	parts := make([]string, 0, len(c.Arguments)+1)
	parts = append(parts, c.Name)
	for _, arg := range c.Arguments {
		parts = append(parts, argumentString(arg))
	}
	return strings.Join(parts, " ")
}

// Record is a structural record. Field order carries no meaning.
type Record struct {
	Fields map[string]Type
}

func (Record) typeNode() {}

func (r Record) String() string {
	if len(r.Fields) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, name := range r.FieldNames() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(" ")
		sb.WriteString(stringOrUnknown(r.Fields[name]))
	}
	sb.WriteString(" }")
	return sb.String()
}

// FieldNames returns the field names in sorted order.
func (r Record) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func argumentString(t Type) string {
	switch typ := t.(type) {
	case ChoiceConstruct:
		if len(typ.Arguments) > 0 {
			return "(" + typ.String() + ")"
		}
	case Function:
		return "(" + typ.String() + ")"
	}
	return stringOrUnknown(t)
}

func stringOrUnknown(t Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

// Equal compares two types structurally. Absent types are equal only to each other.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Variable:
		y, ok := b.(Variable)
		return ok && x.Name == y.Name
	case Function:
		y, ok := b.(Function)
		if !ok || len(x.Inputs) != len(y.Inputs) {
			return false
		}
		for i := range x.Inputs {
			if !Equal(x.Inputs[i], y.Inputs[i]) {
				return false
			}
		}
		return Equal(x.Output, y.Output)
	case ChoiceConstruct:
		y, ok := b.(ChoiceConstruct)
		if !ok || x.Name != y.Name || len(x.Arguments) != len(y.Arguments) {
			return false
		}
		for i := range x.Arguments {
			if !Equal(x.Arguments[i], y.Arguments[i]) {
				return false
			}
		}
		return true
	case Record:
		y, ok := b.(Record)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for name, value := range x.Fields {
			other, found := y.Fields[name]
			if !found || !Equal(value, other) {
				return false
			}
		}
		return true
	}
	return false
}
