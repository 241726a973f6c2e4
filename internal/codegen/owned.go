package codegen

import (
	"strings"

	"github.com/funvibe/still/internal/config"
	"github.com/funvibe/still/internal/rust"
	"github.com/funvibe/still/internal/symbols"
)

// Owned counterparts let a host keep still values past the allocator they
// were built in: StillIntoOwned copies a value out, OwnedToStill brings it
// back.

var (
	intoOwnedBounds = []string{stillIntoOwned, "Clone"}
	toStillBounds   = []string{ownedToStill}
)

func projection(param, name string, lifetimes []string) rust.Type {
	return &rust.QualifiedType{Self: rust.Named(param), Name: name, Lifetimes: lifetimes}
}

func selfProjection(name string, lifetimes []string) rust.Type {
	return &rust.QualifiedType{Self: rust.Named("Self"), Name: name, Lifetimes: lifetimes}
}

func outlives(params []string) []string {
	where := make([]string, len(params))
	for i, p := range params {
		where[i] = p + ": " + config.LifetimeName
	}
	return where
}

func intoOwnedFn(body rust.Expr) *rust.Fn {
	return &rust.Fn{
		Name:       "into_owned",
		Parameters: []rust.Parameter{{Name: "self"}},
		Output:     selfProjection("Owned", nil),
		Body:       asBlock(body),
	}
}

// stillFn is to_still (borrowing) or into_still (consuming).
func stillFn(name string, borrow bool, body rust.Expr) *rust.Fn {
	receiver := "self"
	if borrow {
		receiver = "&" + config.LifetimeName + " self"
	}
	return &rust.Fn{
		Name:       name,
		Generics:   rust.Generics{Lifetimes: lifetime},
		Parameters: []rust.Parameter{{Name: receiver}, allocatorParameter()},
		Output:     selfProjection("Still", lifetime),
		Body:       asBlock(body),
	}
}

func traitCall(trait, method string, args ...rust.Expr) rust.Expr {
	return &rust.CallExpr{Func: &rust.Ident{Name: trait + "::" + method}, Args: args}
}

// ownedChoiceItems emits the conversions of every choice type that has an
// owned representation. A choice that borrows also gets its owned enum.
func (g *Generator) ownedChoiceItems() []rust.Item {
	var items []rust.Item
	for _, group := range g.analyzer.TypeGroups {
		for _, name := range group {
			info, ok := g.tables.Choices[name]
			if !ok || info.Builtin || !info.HasOwnedRepresentation {
				continue
			}
			ownedName := choiceName(info)
			if info.HasLifetimeParameter {
				ownedName += config.OwnedTypeSuffix
				items = append(items, g.ownedEnum(info, ownedName))
			}
			items = append(items, g.choiceIntoOwned(info, ownedName), g.choiceToStill(info, ownedName))
		}
	}
	return items
}

func (g *Generator) ownedEnum(info *symbols.ChoiceTypeInfo, ownedName string) *rust.Enum {
	enum := &rust.Enum{
		Attributes: []string{"derive(" + strings.Join(g.choiceDerives(info, false), ", ") + ")"},
		Name:       ownedName,
		Generics:   choiceGenerics(info, false, nil),
	}
	for _, v := range info.Variants {
		variant := rust.EnumVariant{Name: v.Name}
		if v.HasPayload {
			payload := g.ownedType(v.Value)
			if v.ConstructsRecursiveType {
				payload = &rust.PathType{Path: "std::boxed::Box", Arguments: []rust.Type{payload}}
			}
			variant.Payload = payload
		}
		enum.Variants = append(enum.Variants, variant)
	}
	return enum
}

// convertVariants matches every variant of from and rebuilds it as the
// same variant of to, converting the payload with convert.
func convertVariants(info *symbols.ChoiceTypeInfo, from, to string, convert func(rust.Expr) rust.Expr) rust.Expr {
	m := &rust.MatchExpr{Scrutinee: &rust.Ident{Name: "self"}}
	for _, v := range info.Variants {
		if !v.HasPayload {
			m.Arms = append(m.Arms, rust.Arm{
				Pattern: &rust.PathPat{Path: from + "::" + v.Name},
				Body:    &rust.Ident{Name: to + "::" + v.Name},
			})
			continue
		}
		m.Arms = append(m.Arms, rust.Arm{
			Pattern: &rust.TupleStructPat{Path: from + "::" + v.Name, Elements: []rust.Pattern{&rust.IdentPat{Name: "value"}}},
			Body: &rust.CallExpr{
				Func: &rust.Ident{Name: to + "::" + v.Name},
				Args: []rust.Expr{convert(&rust.Ident{Name: "value"})},
			},
		})
	}
	return m
}

func (g *Generator) choiceIntoOwned(info *symbols.ChoiceTypeInfo, ownedName string) *rust.Impl {
	name := choiceName(info)
	self := &rust.PathType{Path: name, Arguments: choiceTypeArguments(info, func(p string) rust.Type { return rust.Named(p) })}
	if info.HasLifetimeParameter {
		self.Lifetimes = lifetime
	}
	owned := &rust.PathType{Path: ownedName, Arguments: choiceTypeArguments(info, func(p string) rust.Type {
		return projection(p, "Owned", nil)
	})}
	return &rust.Impl{
		Generics:   choiceGenerics(info, info.HasLifetimeParameter, intoOwnedBounds),
		Trait:      stillIntoOwned,
		For:        self,
		Associated: []rust.AssociatedType{{Name: "Owned", Value: owned}},
		Fns: []*rust.Fn{intoOwnedFn(convertVariants(info, name, ownedName, func(value rust.Expr) rust.Expr {
			return traitCall(stillIntoOwned, "into_owned", value)
		}))},
	}
}

func (g *Generator) choiceToStill(info *symbols.ChoiceTypeInfo, ownedName string) *rust.Impl {
	name := choiceName(info)
	still := &rust.PathType{Path: name, Arguments: choiceTypeArguments(info, func(p string) rust.Type {
		return projection(p, "Still", lifetime)
	})}
	if info.HasLifetimeParameter {
		still.Lifetimes = lifetime
	}
	params := make([]string, len(info.Parameters))
	for i, p := range info.Parameters {
		params[i] = typeParameterName(p)
	}
	convert := func(method string) func(rust.Expr) rust.Expr {
		return func(value rust.Expr) rust.Expr {
			return traitCall(ownedToStill, method, value, allocatorIdent())
		}
	}
	return &rust.Impl{
		Generics: choiceGenerics(info, false, toStillBounds),
		Trait:    ownedToStill,
		For:      &rust.PathType{Path: ownedName, Arguments: choiceTypeArguments(info, func(p string) rust.Type { return rust.Named(p) })},
		Associated: []rust.AssociatedType{{
			Name:   "Still",
			Params: lifetime,
			Where:  outlives(params),
			Value:  still,
		}},
		Fns: []*rust.Fn{
			stillFn("to_still", true, convertVariants(info, ownedName, name, convert("to_still"))),
			stillFn("into_still", false, convertVariants(info, ownedName, name, convert("into_still"))),
		},
	}
}

// ownedRecordItems emits the conversions of every registry struct. Both
// directions keep the struct and convert its fields.
func (g *Generator) ownedRecordItems() []rust.Item {
	var items []rust.Item
	for _, name := range g.records.Names() {
		fields := g.records.Fields(name)
		params := make([]string, len(fields))
		for i, f := range fields {
			params[i] = typeParameterName(f)
		}
		generics := func(bounds []string) rust.Generics {
			var gen rust.Generics
			for _, p := range params {
				gen.Params = append(gen.Params, rust.GenericParam{Name: p, Bounds: bounds})
			}
			return gen
		}
		applied := func(arg func(string) rust.Type) *rust.PathType {
			t := &rust.PathType{Path: name}
			for _, p := range params {
				t.Arguments = append(t.Arguments, arg(p))
			}
			return t
		}
		convert := func(value func(field string) rust.Expr) rust.Expr {
			s := &rust.StructExpr{Path: name}
			for _, f := range fields {
				s.Fields = append(s.Fields, rust.FieldInit{Name: identifier(f), Value: value(identifier(f))})
			}
			return s
		}
		field := func(f string) rust.Expr {
			return &rust.FieldExpr{Receiver: &rust.Ident{Name: "self"}, Field: f}
		}
		self := applied(func(p string) rust.Type { return rust.Named(p) })

		items = append(items, &rust.Impl{
			Generics:   generics(intoOwnedBounds),
			Trait:      stillIntoOwned,
			For:        self,
			Associated: []rust.AssociatedType{{Name: "Owned", Value: applied(func(p string) rust.Type { return projection(p, "Owned", nil) })}},
			Fns: []*rust.Fn{intoOwnedFn(convert(func(f string) rust.Expr {
				return traitCall(stillIntoOwned, "into_owned", field(f))
			}))},
		}, &rust.Impl{
			Generics: generics(toStillBounds),
			Trait:    ownedToStill,
			For:      self,
			Associated: []rust.AssociatedType{{
				Name:   "Still",
				Params: lifetime,
				Where:  outlives(params),
				Value:  applied(func(p string) rust.Type { return projection(p, "Still", lifetime) }),
			}},
			Fns: []*rust.Fn{
				stillFn("to_still", true, convert(func(f string) rust.Expr {
					return traitCall(ownedToStill, "to_still", &rust.RefExpr{Inner: field(f)}, allocatorIdent())
				})),
				stillFn("into_still", false, convert(func(f string) rust.Expr {
					return traitCall(ownedToStill, "into_still", field(f), allocatorIdent())
				})),
			},
		})
	}
	return items
}
