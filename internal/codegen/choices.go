package codegen

import (
	"strings"

	"github.com/funvibe/still/internal/config"
	"github.com/funvibe/still/internal/rust"
	"github.com/funvibe/still/internal/symbols"
	"github.com/funvibe/still/internal/typesystem"
)

// lowerChoices emits one enum per declared choice type, in type-schedule
// order.
func (g *Generator) lowerChoices() []rust.Item {
	var items []rust.Item
	for _, group := range g.analyzer.TypeGroups {
		for _, name := range group {
			info, ok := g.tables.Choices[name]
			if !ok || info.Builtin {
				continue
			}
			items = append(items, g.lowerChoice(info))
		}
	}
	return items
}

func (g *Generator) lowerChoice(info *symbols.ChoiceTypeInfo) *rust.Enum {
	enum := &rust.Enum{
		Documentation: info.Documentation,
		Attributes:    []string{"derive(" + strings.Join(g.choiceDerives(info, info.IsCopy), ", ") + ")"},
		Name:          choiceName(info),
		Generics:      choiceGenerics(info, info.HasLifetimeParameter, nil),
	}
	for _, v := range info.Variants {
		variant := rust.EnumVariant{Name: v.Name}
		if v.HasPayload {
			payload := g.rustType(v.Value)
			if v.ConstructsRecursiveType {
				payload = &rust.RefType{Lifetime: config.LifetimeName, Inner: payload}
			}
			variant.Payload = payload
		}
		enum.Variants = append(enum.Variants, variant)
	}
	return enum
}

func choiceGenerics(info *symbols.ChoiceTypeInfo, withLifetime bool, bounds []string) rust.Generics {
	var generics rust.Generics
	if withLifetime {
		generics.Lifetimes = lifetime
	}
	for _, p := range info.Parameters {
		generics.Params = append(generics.Params, rust.GenericParam{Name: typeParameterName(p), Bounds: bounds})
	}
	return generics
}

func choiceTypeArguments(info *symbols.ChoiceTypeInfo, arg func(string) rust.Type) []rust.Type {
	args := make([]rust.Type, len(info.Parameters))
	for i, p := range info.Parameters {
		args[i] = arg(typeParameterName(p))
	}
	return args
}

// choiceDerives lists the derived traits. Debug and PartialEq are left out
// when a function can hide anywhere in a payload.
func (g *Generator) choiceDerives(info *symbols.ChoiceTypeInfo, copyable bool) []string {
	var derives []string
	if copyable {
		derives = append(derives, "Copy")
	}
	derives = append(derives, "Clone")
	if g.comparable(info.Name) {
		derives = append(derives, "PartialEq", "Debug")
	}
	return derives
}

// comparable reports whether no function type is reachable from the
// payloads of the named choice type, looking through other declared choices.
func (g *Generator) comparable(name string) bool {
	if result, ok := g.debuggable[name]; ok {
		return result
	}
	result := g.functionFree(name, make(map[string]bool))
	g.debuggable[name] = result
	return result
}

// functionFree only memoizes through comparable: a result computed while
// some choice is still being visited can be wrong for that choice.
func (g *Generator) functionFree(name string, visiting map[string]bool) bool {
	if result, ok := g.debuggable[name]; ok {
		return result
	}
	info, ok := g.tables.Choices[name]
	if visiting[name] || !ok || info.Builtin {
		return true
	}
	visiting[name] = true
	for _, v := range info.Variants {
		result := true
		typesystem.Walk(v.Value, func(inner typesystem.Type) {
			switch typ := inner.(type) {
			case typesystem.Function:
				result = false
			case typesystem.ChoiceConstruct:
				if result && !g.functionFree(typ.Name, visiting) {
					result = false
				}
			}
		})
		if !result {
			return false
		}
	}
	return true
}

// recordStructs emits the registry structs, sorted by name.
func (g *Generator) recordStructs() []rust.Item {
	var items []rust.Item
	for _, name := range g.records.Names() {
		s := &rust.Struct{
			Attributes: []string{"derive(Copy, Clone, PartialEq, Debug)"},
			Name:       name,
		}
		for _, field := range g.records.Fields(name) {
			param := typeParameterName(field)
			s.Generics.Params = append(s.Generics.Params, rust.GenericParam{Name: param})
			s.Fields = append(s.Fields, rust.Field{Name: identifier(field), Type: rust.Named(param)})
		}
		items = append(items, s)
	}
	return items
}
