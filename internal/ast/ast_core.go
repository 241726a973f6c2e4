package ast

import "github.com/funvibe/still/internal/token"

// Node is the base interface for all syntax nodes handed over by the parser.
type Node interface {
	GetRange() token.Range
}

// Identifier is a name together with the range it was written at.
type Identifier struct {
	Range token.Range
	Value string
}

func (i *Identifier) GetRange() token.Range {
	if i == nil {
		return token.Range{}
	}
	return i.Range
}

// Program is the declaration list of one source file.
type Program struct {
	File         string
	Declarations []Declaration
}

// Declaration is a top-level declaration or an error node from parser recovery.
type Declaration interface {
	Node
	declarationNode()
}

// ChoiceTypeDeclaration is a tagged union: `choice tree a = Leaf a | Node (vec (tree a))`.
type ChoiceTypeDeclaration struct {
	Range         token.Range
	Documentation string
	Name          *Identifier
	Parameters    []*Identifier
	Variants      []*Variant
}

// Variant carries at most one payload type.
type Variant struct {
	Range token.Range
	Name  *Identifier
	Value Type
}

func (d *ChoiceTypeDeclaration) declarationNode()      {}
func (d *ChoiceTypeDeclaration) GetRange() token.Range { return d.Range }

// TypeAliasDeclaration abbreviates a structural type.
type TypeAliasDeclaration struct {
	Range         token.Range
	Documentation string
	Name          *Identifier
	Parameters    []*Identifier
	Type          Type
}

func (d *TypeAliasDeclaration) declarationNode()      {}
func (d *TypeAliasDeclaration) GetRange() token.Range { return d.Range }

// VariableDeclaration binds a top-level name to an expression.
type VariableDeclaration struct {
	Range         token.Range
	Documentation string
	Name          *Identifier
	Result        Expression
}

func (d *VariableDeclaration) declarationNode()      {}
func (d *VariableDeclaration) GetRange() token.Range { return d.Range }

// ErrorDeclaration is what parser recovery leaves for text it could not read.
type ErrorDeclaration struct {
	Range token.Range
	Text  string
}

func (d *ErrorDeclaration) declarationNode()      {}
func (d *ErrorDeclaration) GetRange() token.Range { return d.Range }

// NameOf returns the declared name, or nil for error nodes and unnamed declarations.
func NameOf(d Declaration) *Identifier {
	switch decl := d.(type) {
	case *ChoiceTypeDeclaration:
		return decl.Name
	case *TypeAliasDeclaration:
		return decl.Name
	case *VariableDeclaration:
		return decl.Name
	}
	return nil
}
