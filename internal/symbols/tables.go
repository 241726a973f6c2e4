package symbols

import (
	"sort"

	"github.com/funvibe/still/internal/token"
	"github.com/funvibe/still/internal/typesystem"
)

// Flags is the ownership classification of a type.
type Flags struct {
	IsCopy                 bool
	HasOwnedRepresentation bool
	HasLifetimeParameter   bool
}

// Placeholder is what a name of the group currently being classified
// counts as until its own flags are known.
var Placeholder = Flags{IsCopy: false, HasOwnedRepresentation: false, HasLifetimeParameter: true}

type TypeAliasInfo struct {
	Name             string
	NameRange        token.Range
	DeclarationRange token.Range
	Documentation    string
	Parameters       []string
	// Type stays nil while the alias's group is unresolved or its body errored.
	Type typesystem.Type
	Flags
}

type VariantInfo struct {
	Name      string
	NameRange token.Range
	// HasPayload is set when the declaration names a payload; Value can
	// still be nil if that payload failed to resolve.
	HasPayload              bool
	Value                   typesystem.Type
	ConstructsRecursiveType bool
}

type ChoiceTypeInfo struct {
	Name             string
	NameRange        token.Range
	DeclarationRange token.Range
	Documentation    string
	Parameters       []string
	Variants         []*VariantInfo
	Flags
	// Builtin types come from the runtime library. Opaque ones (int, vec, ...)
	// have no variants visible to programs.
	Builtin bool
	Opaque  bool
	// RustName is the generated spelling; the code generator fills it in
	// for declared types.
	RustName string
	// Resolved is set once the variants of the choice type's group are known.
	Resolved bool
}

// Variant returns the variant named name, or nil.
func (c *ChoiceTypeInfo) Variant(name string) *VariantInfo {
	for _, v := range c.Variants {
		if v.Name == name {
			return v
		}
	}
	return nil
}

type VariableKind int

const (
	KindConstant VariableKind = iota
	KindFunction
)

func (k VariableKind) String() string {
	if k == KindFunction {
		return "function"
	}
	return "constant"
}

type VariableDeclarationInfo struct {
	Name             string
	NameRange        token.Range
	DeclarationRange token.Range
	Documentation    string
	// Type is nil when it could not be inferred.
	Type                  typesystem.Type
	Kind                  VariableKind
	HasAllocatorParameter bool
	Builtin               bool
	RustName              string
}

// Tables holds the three name-keyed lookup tables of one program, plus the
// variant index used to find a choice type from a variant name.
type Tables struct {
	Aliases   map[string]*TypeAliasInfo
	Choices   map[string]*ChoiceTypeInfo
	Variables map[string]*VariableDeclarationInfo
	Variants  map[string]string
}

// NewTables returns a fresh table set pre-seeded with the prelude.
// Built-in entries are shared and must not be modified.
func NewTables() *Tables {
	prelude := GetPrelude()
	t := &Tables{
		Aliases:   make(map[string]*TypeAliasInfo),
		Choices:   make(map[string]*ChoiceTypeInfo, len(prelude.Choices)),
		Variables: make(map[string]*VariableDeclarationInfo, len(prelude.Variables)),
		Variants:  make(map[string]string, len(prelude.Variants)),
	}
	for k, v := range prelude.Choices {
		t.Choices[k] = v
	}
	for k, v := range prelude.Variables {
		t.Variables[k] = v
	}
	for k, v := range prelude.Variants {
		t.Variants[k] = v
	}
	return t
}

// ChoiceOfVariant finds the choice type declaring variant.
func (t *Tables) ChoiceOfVariant(variant string) (*ChoiceTypeInfo, *VariantInfo, bool) {
	choiceName, ok := t.Variants[variant]
	if !ok {
		return nil, nil, false
	}
	choice := t.Choices[choiceName]
	if choice == nil {
		return nil, nil, false
	}
	v := choice.Variant(variant)
	return choice, v, v != nil
}

// UserAliases returns the non-built-in aliases sorted by name.
func (t *Tables) UserAliases() []*TypeAliasInfo {
	result := make([]*TypeAliasInfo, 0, len(t.Aliases))
	for _, a := range t.Aliases {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// UserChoices returns the declared choice types sorted by name.
func (t *Tables) UserChoices() []*ChoiceTypeInfo {
	var result []*ChoiceTypeInfo
	for _, c := range t.Choices {
		if !c.Builtin {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// UserVariables returns the declared variables sorted by name.
func (t *Tables) UserVariables() []*VariableDeclarationInfo {
	var result []*VariableDeclarationInfo
	for _, v := range t.Variables {
		if !v.Builtin {
			result = append(result, v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
