// Package ownership decides how values of a resolved type are represented:
// whether they copy, whether an owned form exists and whether the
// representation borrows from the allocator.
package ownership

import (
	"strings"

	"github.com/funvibe/still/internal/symbols"
	"github.com/funvibe/still/internal/typesystem"
)

// Classifier computes flags structurally, memoized within one type group.
type Classifier struct {
	tables  *symbols.Tables
	pending map[string]bool
	memo    map[string]symbols.Flags
	// set while a boxed payload is classified
	boxed bool
}

func New(tables *symbols.Tables) *Classifier {
	return &Classifier{
		tables:  tables,
		pending: make(map[string]bool),
		memo:    make(map[string]symbols.Flags),
	}
}

// BeginGroup marks names as still being computed. Until EndGroup they
// classify as symbols.Placeholder.
func (c *Classifier) BeginGroup(names []string) {
	c.pending = make(map[string]bool, len(names))
	for _, name := range names {
		c.pending[name] = true
	}
	c.memo = make(map[string]symbols.Flags)
}

func (c *Classifier) EndGroup() {
	c.pending = make(map[string]bool)
	c.memo = make(map[string]symbols.Flags)
}

// Classify returns the flags of a value of type t. A type variable stands
// for an arbitrary instantiation: it is cloned rather than copied, and it is
// assumed to have an owned form. Unknown (nil) types are the placeholder.
func (c *Classifier) Classify(t typesystem.Type) symbols.Flags {
	return c.classify(t, false)
}

// DeclarationFlags computes the flags of a choice type declaration from its
// variants. Its own parameters are neutral here, since every use
// combines these flags with the flags of the actual arguments.
// Boxed payloads are references: they copy, and they need the lifetime.
func (c *Classifier) DeclarationFlags(info *symbols.ChoiceTypeInfo) symbols.Flags {
	flags := symbols.Flags{IsCopy: true, HasOwnedRepresentation: true}
	for _, v := range info.Variants {
		if !v.HasPayload {
			continue
		}
		var payload symbols.Flags
		if v.ConstructsRecursiveType {
			payload = c.boxedPayload(v.Value)
		} else {
			payload = c.classify(v.Value, true)
		}
		flags = combine(flags, payload)
	}
	return flags
}

// boxedPayload classifies a payload that is stored behind a reference. The
// owned form stores it in a Box instead, so a name of the pending group
// does not rule out an owned representation.
func (c *Classifier) boxedPayload(t typesystem.Type) symbols.Flags {
	c.boxed = true
	flags := c.classify(t, true)
	c.boxed = false
	flags.IsCopy = true
	flags.HasLifetimeParameter = true
	return flags
}

// MarkRecursiveVariants flags every variant whose payload mentions a choice
// type of the same group. Those payloads get boxed.
func MarkRecursiveVariants(info *symbols.ChoiceTypeInfo, group map[string]bool) {
	for _, v := range info.Variants {
		v.ConstructsRecursiveType = v.Value != nil && typesystem.MentionsAny(v.Value, group)
	}
}

func (c *Classifier) classify(t typesystem.Type, neutralVariables bool) symbols.Flags {
	key := memoKey(t, neutralVariables)
	if c.boxed {
		key = "boxed:" + key
	}
	if flags, ok := c.memo[key]; ok {
		return flags
	}
	flags := c.compute(t, neutralVariables)
	c.memo[key] = flags
	return flags
}

func (c *Classifier) compute(t typesystem.Type, neutralVariables bool) symbols.Flags {
	switch typ := t.(type) {
	case nil:
		return symbols.Placeholder
	case typesystem.Variable:
		return symbols.Flags{IsCopy: neutralVariables, HasOwnedRepresentation: true}
	case typesystem.Function:
		// closures are borrowed trait objects
		return symbols.Flags{IsCopy: true, HasOwnedRepresentation: false, HasLifetimeParameter: true}
	case typesystem.Record:
		flags := symbols.Flags{IsCopy: true, HasOwnedRepresentation: true}
		for _, name := range typ.FieldNames() {
			flags = combine(flags, c.classify(typ.Fields[name], neutralVariables))
		}
		return flags
	case typesystem.ChoiceConstruct:
		flags := symbols.Placeholder
		if info, ok := c.tables.Choices[typ.Name]; ok && !c.pending[typ.Name] && info.Resolved {
			flags = info.Flags
		} else if c.pending[typ.Name] && c.boxed {
			flags.HasOwnedRepresentation = true
		}
		for _, arg := range typ.Arguments {
			flags = combine(flags, c.classify(arg, neutralVariables))
		}
		return flags
	}
	return symbols.Placeholder
}

// combine is the structural rule: copy and owned need every part,
// a lifetime is needed as soon as one part needs it.
func combine(a, b symbols.Flags) symbols.Flags {
	return symbols.Flags{
		IsCopy:                 a.IsCopy && b.IsCopy,
		HasOwnedRepresentation: a.HasOwnedRepresentation && b.HasOwnedRepresentation,
		HasLifetimeParameter:   a.HasLifetimeParameter || b.HasLifetimeParameter,
	}
}

func memoKey(t typesystem.Type, neutralVariables bool) string {
	var sb strings.Builder
	if neutralVariables {
		sb.WriteString("decl:")
	}
	writeKey(&sb, t)
	return sb.String()
}

func writeKey(sb *strings.Builder, t typesystem.Type) {
	switch typ := t.(type) {
	case nil:
		sb.WriteString("?")
	case typesystem.Variable:
		sb.WriteString("'")
		sb.WriteString(typ.Name)
	case typesystem.Function:
		sb.WriteString("fn(")
		for _, in := range typ.Inputs {
			writeKey(sb, in)
			sb.WriteString(",")
		}
		sb.WriteString(")")
		writeKey(sb, typ.Output)
	case typesystem.ChoiceConstruct:
		sb.WriteString(typ.Name)
		sb.WriteString("<")
		for _, arg := range typ.Arguments {
			writeKey(sb, arg)
			sb.WriteString(",")
		}
		sb.WriteString(">")
	case typesystem.Record:
		sb.WriteString("{")
		for _, name := range typ.FieldNames() {
			sb.WriteString(name)
			sb.WriteString(":")
			writeKey(sb, typ.Fields[name])
			sb.WriteString(",")
		}
		sb.WriteString("}")
	}
}
