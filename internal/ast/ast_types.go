package ast

import "github.com/funvibe/still/internal/token"

// --- Type Nodes ---

// Type is a syntactic type expression.
type Type interface {
	Node
	typeNode()
}

// TypeVariable is a lowercase parameter such as `a`.
type TypeVariable struct {
	Range token.Range
	Name  string
}

func (t *TypeVariable) typeNode()             {}
func (t *TypeVariable) GetRange() token.Range { return t.Range }

// TypeFunction is `\in1, in2 > out`.
type TypeFunction struct {
	Range  token.Range
	Inputs []Type
	Output Type
}

func (t *TypeFunction) typeNode()             {}
func (t *TypeFunction) GetRange() token.Range { return t.Range }

// TypeConstruct names a choice type or alias, applied to arguments.
type TypeConstruct struct {
	Range     token.Range
	Name      *Identifier
	Arguments []Type
}

func (t *TypeConstruct) typeNode()             {}
func (t *TypeConstruct) GetRange() token.Range { return t.Range }

type TypeRecord struct {
	Range  token.Range
	Fields []*TypeField
}

// TypeField has a nil Value when the source omitted it.
type TypeField struct {
	Range token.Range
	Name  *Identifier
	Value Type
}

func (t *TypeRecord) typeNode()             {}
func (t *TypeRecord) GetRange() token.Range { return t.Range }

type TypeParenthesized struct {
	Range token.Range
	Inner Type
}

func (t *TypeParenthesized) typeNode()             {}
func (t *TypeParenthesized) GetRange() token.Range { return t.Range }

type TypeWithComment struct {
	Range   token.Range
	Comment string
	Type    Type
}

func (t *TypeWithComment) typeNode()             {}
func (t *TypeWithComment) GetRange() token.Range { return t.Range }

// UnwrapType strips parentheses and comments. It returns nil if nothing is left.
func UnwrapType(t Type) Type {
	for {
		switch typ := t.(type) {
		case *TypeParenthesized:
			t = typ.Inner
		case *TypeWithComment:
			t = typ.Type
		default:
			return t
		}
	}
}
