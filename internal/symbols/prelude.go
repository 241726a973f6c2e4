package symbols

import (
	"strings"
	"sync"

	"github.com/funvibe/still/internal/config"
	"github.com/funvibe/still/internal/typesystem"
)

var (
	preludeTables *Tables
	preludeOnce   sync.Once
)

// GetPrelude returns the immutable built-in tables shared by every compilation.
func GetPrelude() *Tables {
	preludeOnce.Do(func() {
		preludeTables = &Tables{
			Aliases:   make(map[string]*TypeAliasInfo),
			Choices:   make(map[string]*ChoiceTypeInfo),
			Variables: make(map[string]*VariableDeclarationInfo),
			Variants:  make(map[string]string),
		}
		preludeTables.initBuiltinTypes()
		preludeTables.initBuiltinOperations()
	})
	return preludeTables
}

// IsBuiltinName reports whether name is taken by the prelude or reserved for
// the runtime in any name space.
func IsBuiltinName(name string) bool {
	p := GetPrelude()
	if _, ok := p.Choices[name]; ok {
		return true
	}
	if _, ok := p.Variables[name]; ok {
		return true
	}
	if _, ok := p.Variants[name]; ok {
		return true
	}
	for _, reserved := range config.ReservedNames {
		if strings.EqualFold(name, reserved) {
			return true
		}
	}
	return false
}

func construct(name string, args ...typesystem.Type) typesystem.Type {
	return typesystem.ChoiceConstruct{Name: name, Arguments: args}
}

func variable(name string) typesystem.Type {
	return typesystem.Variable{Name: name}
}

var (
	unt   = construct(config.UntTypeName)
	intT  = construct(config.IntTypeName)
	dec   = construct(config.DecTypeName)
	chr   = construct(config.ChrTypeName)
	str   = construct(config.StrTypeName)
	order = construct(config.OrderTypeName)
)

func opt(t typesystem.Type) typesystem.Type { return construct(config.OptTypeName, t) }
func vec(t typesystem.Type) typesystem.Type { return construct(config.VecTypeName, t) }
func continueOrExit(c, e typesystem.Type) typesystem.Type {
	return construct(config.ContinueOrExitTypeName, c, e)
}
func fn(output typesystem.Type, inputs ...typesystem.Type) typesystem.Type {
	return typesystem.Function{Inputs: inputs, Output: output}
}

func (t *Tables) defineChoice(info *ChoiceTypeInfo) {
	info.Builtin = true
	info.Resolved = true
	t.Choices[info.Name] = info
	for _, v := range info.Variants {
		t.Variants[v.Name] = info.Name
	}
}

func (t *Tables) initBuiltinTypes() {
	// Str counts as a scalar too, so strings are never cloned. The runtime
	// library has to implement Copy for it and take it without a lifetime.
	scalar := Flags{IsCopy: true, HasOwnedRepresentation: true, HasLifetimeParameter: false}
	for _, name := range []struct{ still, rust string }{
		{config.IntTypeName, "Int"},
		{config.DecTypeName, "Dec"},
		{config.ChrTypeName, "Chr"},
		{config.StrTypeName, "Str"},
		{config.UntTypeName, "Unt"},
	} {
		t.defineChoice(&ChoiceTypeInfo{Name: name.still, RustName: name.rust, Opaque: true, Flags: scalar})
	}

	// A vec borrows its elements from the allocator.
	t.defineChoice(&ChoiceTypeInfo{
		Name:       config.VecTypeName,
		RustName:   "Vec",
		Parameters: []string{"a"},
		Opaque:     true,
		Flags:      Flags{IsCopy: false, HasOwnedRepresentation: true, HasLifetimeParameter: true},
	})

	t.defineChoice(&ChoiceTypeInfo{
		Name:       config.OptTypeName,
		RustName:   "Opt",
		Parameters: []string{"a"},
		Variants: []*VariantInfo{
			{Name: config.PresentVariantName, HasPayload: true, Value: variable("a")},
			{Name: config.AbsentVariantName},
		},
		Flags: scalar,
	})
	t.defineChoice(&ChoiceTypeInfo{
		Name:     config.OrderTypeName,
		RustName: "Order",
		Variants: []*VariantInfo{
			{Name: config.LessVariantName},
			{Name: config.EqualVariantName},
			{Name: config.GreaterVariantName},
		},
		Flags: scalar,
	})
	t.defineChoice(&ChoiceTypeInfo{
		Name:       config.ContinueOrExitTypeName,
		RustName:   "Continue_or_exit",
		Parameters: []string{"continue", "exit"},
		Variants: []*VariantInfo{
			{Name: config.ContinueVariantName, HasPayload: true, Value: variable("continue")},
			{Name: config.ExitVariantName, HasPayload: true, Value: variable("exit")},
		},
		Flags: scalar,
	})
}

// operation is one entry of the built-in library.
type operation struct {
	name      string
	typ       typesystem.Type
	allocator bool
}

func builtinOperations() []operation {
	a := variable("a")
	state := variable("state")
	exit := variable("exit")
	return []operation{
		{name: "unt_add", typ: fn(unt, unt, unt)},
		{name: "unt_mul", typ: fn(unt, unt, unt)},
		{name: "unt_div", typ: fn(unt, unt, unt)},
		{name: "unt_order", typ: fn(order, unt, unt)},
		{name: "unt_to_int", typ: fn(intT, unt)},
		{name: "unt_to_dec", typ: fn(dec, unt)},
		{name: "unt_to_str", typ: fn(str, unt)},
		{name: "str_to_unt", typ: fn(opt(unt), str)},

		{name: "int_negate", typ: fn(intT, intT)},
		{name: "int_absolute", typ: fn(unt, intT)},
		{name: "int_add", typ: fn(intT, intT, intT)},
		{name: "int_mul", typ: fn(intT, intT, intT)},
		{name: "int_div", typ: fn(intT, intT, intT)},
		{name: "int_order", typ: fn(order, intT, intT)},
		{name: "int_to_unt", typ: fn(opt(unt), intT)},
		{name: "int_to_dec", typ: fn(dec, intT)},
		{name: "int_to_str", typ: fn(str, intT)},
		{name: "str_to_int", typ: fn(opt(intT), str)},

		{name: "dec_negate", typ: fn(dec, dec)},
		{name: "dec_absolute", typ: fn(dec, dec)},
		{name: "dec_add", typ: fn(dec, dec, dec)},
		{name: "dec_mul", typ: fn(dec, dec, dec)},
		{name: "dec_div", typ: fn(dec, dec, dec)},
		{name: "dec_to_power_of", typ: fn(dec, dec, dec)},
		{name: "dec_truncate", typ: fn(intT, dec)},
		{name: "dec_floor", typ: fn(intT, dec)},
		{name: "dec_ceiling", typ: fn(intT, dec)},
		{name: "dec_round", typ: fn(intT, dec)},
		{name: "dec_order", typ: fn(order, dec, dec)},
		{name: "dec_to_str", typ: fn(str, dec)},
		{name: "str_to_dec", typ: fn(opt(dec), str)},

		{name: "chr_byte_count", typ: fn(unt, chr)},
		{name: "chr_order", typ: fn(order, chr, chr)},
		{name: "code_point_to_chr", typ: fn(opt(chr), unt)},
		{name: "chr_to_code_point", typ: fn(unt, chr)},
		{name: "chr_to_str", typ: fn(str, chr)},

		{name: "str_byte_count", typ: fn(unt, str)},
		{name: "str_chr_at_byte_index", typ: fn(opt(chr), str, unt)},
		{name: "str_slice_from_byte_index_with_byte_length", typ: fn(str, str, unt, unt), allocator: true},
		{name: "str_to_chrs", typ: fn(vec(chr), str)},
		{name: "chrs_to_str", typ: fn(str, vec(chr))},
		{name: "str_order", typ: fn(order, str, str)},
		{name: "str_walk_chrs_from", typ: fn(continueOrExit(state, exit), str, state, fn(continueOrExit(state, exit), state, chr))},
		{name: "str_attach_chr", typ: fn(str, str, chr)},
		{name: "str_attach", typ: fn(str, str, str)},
		{name: "strs_flatten", typ: fn(str, vec(str))},

		{name: "vec_repeat", typ: fn(vec(a), unt, a)},
		{name: "vec_length", typ: fn(unt, vec(a))},
		{name: "vec_element", typ: fn(opt(a), vec(a), unt)},
		{name: "vec_replace_element", typ: fn(vec(a), vec(a), unt, a)},
		{name: "vec_swap", typ: fn(vec(a), vec(a), unt, unt)},
		{name: "vec_truncate", typ: fn(vec(a), vec(a), unt), allocator: true},
		{name: "vec_slice_from_index_with_length", typ: fn(vec(a), vec(a), unt, unt), allocator: true},
		{name: "vec_increase_capacity_by", typ: fn(vec(a), vec(a), unt)},
		{name: "vec_sort", typ: fn(vec(a), vec(a), fn(order, a, a))},
		{name: "vec_attach_element", typ: fn(vec(a), vec(a), a)},
		{name: "vec_attach", typ: fn(vec(a), vec(a), vec(a))},
		{name: "vec_flatten", typ: fn(vec(a), vec(vec(a)))},
		{name: "vec_walk_from", typ: fn(continueOrExit(state, exit), vec(a), state, fn(continueOrExit(state, exit), state, a))},
	}
}

func (t *Tables) initBuiltinOperations() {
	for _, op := range builtinOperations() {
		t.Variables[op.name] = &VariableDeclarationInfo{
			Name:                  op.name,
			Type:                  op.typ,
			Kind:                  KindFunction,
			HasAllocatorParameter: op.allocator,
			Builtin:               true,
			RustName:              op.name,
		}
	}
}
