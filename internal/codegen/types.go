package codegen

import (
	"github.com/funvibe/still/internal/config"
	"github.com/funvibe/still/internal/rust"
	"github.com/funvibe/still/internal/symbols"
	"github.com/funvibe/still/internal/typesystem"
)

const (
	stillIntoOwned = "StillIntoOwned"
	ownedToStill   = "OwnedToStill"
)

var lifetime = []string{config.LifetimeName}

func choiceName(info *symbols.ChoiceTypeInfo) string {
	if info.RustName != "" {
		return info.RustName
	}
	return identifier(capitalize(info.Name))
}

// rustType is the Rust spelling of a value of type t. Unknown types
// become `_`.
func (g *Generator) rustType(t typesystem.Type) rust.Type {
	switch typ := t.(type) {
	case typesystem.Variable:
		return rust.Named(typeParameterName(typ.Name))
	case typesystem.Function:
		inputs := make([]rust.Type, len(typ.Inputs))
		for i, in := range typ.Inputs {
			inputs[i] = g.rustType(in)
		}
		return &rust.DynFnType{Lifetime: config.LifetimeName, Inputs: inputs, Output: g.rustType(typ.Output)}
	case typesystem.Record:
		names := typ.FieldNames()
		if len(names) == 0 {
			return rust.Named("Blank")
		}
		path := &rust.PathType{Path: g.records.Register(names)}
		for _, name := range names {
			path.Arguments = append(path.Arguments, g.rustType(typ.Fields[name]))
		}
		return path
	case typesystem.ChoiceConstruct:
		info, ok := g.tables.Choices[typ.Name]
		if !ok {
			return rust.Named(identifier(capitalize(typ.Name)))
		}
		path := &rust.PathType{Path: choiceName(info)}
		if info.HasLifetimeParameter {
			path.Lifetimes = lifetime
		}
		for _, arg := range typ.Arguments {
			path.Arguments = append(path.Arguments, g.rustType(arg))
		}
		return path
	}
	return &rust.InferredType{}
}

// annotationType is rustType for closure annotations, where a type variable
// the enclosing function does not declare would not compile. Those become `_`
// and are left to Rust's inference.
func (g *Generator) annotationType(t typesystem.Type) rust.Type {
	if t == nil {
		return &rust.InferredType{}
	}
	for _, v := range typesystem.FreeVariables(t) {
		if g.fn == nil || !g.fn.generics[v] {
			return &rust.InferredType{}
		}
	}
	return g.rustType(t)
}

// ownedType is the Rust spelling of the owned counterpart of t, as it appears
// inside an owned enum whose own type parameters already stand for owned
// types.
func (g *Generator) ownedType(t typesystem.Type) rust.Type {
	switch typ := t.(type) {
	case typesystem.Variable:
		return rust.Named(typeParameterName(typ.Name))
	case typesystem.Record:
		names := typ.FieldNames()
		if len(names) == 0 {
			return rust.Named("Blank")
		}
		path := &rust.PathType{Path: g.records.Register(names)}
		for _, name := range names {
			path.Arguments = append(path.Arguments, g.ownedType(typ.Fields[name]))
		}
		return path
	case typesystem.ChoiceConstruct:
		info, ok := g.tables.Choices[typ.Name]
		if !ok {
			return &rust.InferredType{}
		}
		args := make([]rust.Type, len(typ.Arguments))
		for i, arg := range typ.Arguments {
			args[i] = g.ownedType(arg)
		}
		switch {
		case info.Name == config.VecTypeName:
			return &rust.PathType{Path: "std::vec::Vec", Arguments: args}
		case info.Opaque:
			return &rust.QualifiedType{Self: g.rustType(t), Trait: stillIntoOwned, Name: "Owned"}
		case info.HasLifetimeParameter:
			return &rust.PathType{Path: choiceName(info) + config.OwnedTypeSuffix, Arguments: args}
		default:
			return &rust.PathType{Path: choiceName(info), Arguments: args}
		}
	}
	return &rust.InferredType{}
}

func (g *Generator) flags(t typesystem.Type) symbols.Flags {
	return g.classifier.Classify(t)
}

func (g *Generator) isCopy(t typesystem.Type) bool {
	return t != nil && g.flags(t).IsCopy
}
