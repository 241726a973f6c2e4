package ast

import "github.com/funvibe/still/internal/token"

// --- Expression Nodes ---

type Expression interface {
	Node
	expressionNode()
}

// Literals keep their source text; the code generator re-emits it.

type IntegerLiteral struct {
	Range token.Range
	Value string
}

func (e *IntegerLiteral) expressionNode()       {}
func (e *IntegerLiteral) GetRange() token.Range { return e.Range }

type DecimalLiteral struct {
	Range token.Range
	Value string
}

func (e *DecimalLiteral) expressionNode()       {}
func (e *DecimalLiteral) GetRange() token.Range { return e.Range }

type CharLiteral struct {
	Range token.Range
	Value rune
}

func (e *CharLiteral) expressionNode()       {}
func (e *CharLiteral) GetRange() token.Range { return e.Range }

type StringLiteral struct {
	Range token.Range
	Value string
}

func (e *StringLiteral) expressionNode()       {}
func (e *StringLiteral) GetRange() token.Range { return e.Range }

// Reference names a local binding, a top-level variable or a built-in operation.
type Reference struct {
	Range token.Range
	Name  string
}

func (e *Reference) expressionNode()       {}
func (e *Reference) GetRange() token.Range { return e.Range }

type VariantConstruct struct {
	Range token.Range
	Name  *Identifier
	Value Expression
}

func (e *VariantConstruct) expressionNode()       {}
func (e *VariantConstruct) GetRange() token.Range { return e.Range }

type Call struct {
	Range     token.Range
	Called    Expression
	Arguments []Expression
}

func (e *Call) expressionNode()       {}
func (e *Call) GetRange() token.Range { return e.Range }

type Lambda struct {
	Range      token.Range
	Parameters []Pattern
	Result     Expression
}

func (e *Lambda) expressionNode()       {}
func (e *Lambda) GetRange() token.Range { return e.Range }

type Match struct {
	Range   token.Range
	Matched Expression
	Cases   []*MatchCase
}

type MatchCase struct {
	Range   token.Range
	Pattern Pattern
	Result  Expression
}

func (e *Match) expressionNode()       {}
func (e *Match) GetRange() token.Range { return e.Range }

// Let binds Name to Value for the evaluation of Result.
type Let struct {
	Range  token.Range
	Name   *Identifier
	Value  Expression
	Result Expression
}

func (e *Let) expressionNode()       {}
func (e *Let) GetRange() token.Range { return e.Range }

type VecLiteral struct {
	Range    token.Range
	Elements []Expression
}

func (e *VecLiteral) expressionNode()       {}
func (e *VecLiteral) GetRange() token.Range { return e.Range }

type RecordLiteral struct {
	Range  token.Range
	Fields []*RecordField
}

type RecordField struct {
	Range token.Range
	Name  *Identifier
	Value Expression
}

func (e *RecordLiteral) expressionNode()       {}
func (e *RecordLiteral) GetRange() token.Range { return e.Range }

type RecordAccess struct {
	Range  token.Range
	Record Expression
	Field  *Identifier
}

func (e *RecordAccess) expressionNode()       {}
func (e *RecordAccess) GetRange() token.Range { return e.Range }

// RecordUpdate is `{ ..record, field value }`.
type RecordUpdate struct {
	Range  token.Range
	Record Expression
	Fields []*RecordField
}

func (e *RecordUpdate) expressionNode()       {}
func (e *RecordUpdate) GetRange() token.Range { return e.Range }

// Typed annotates an expression with its expected type.
type Typed struct {
	Range      token.Range
	Type       Type
	Expression Expression
}

func (e *Typed) expressionNode()       {}
func (e *Typed) GetRange() token.Range { return e.Range }

type Parenthesized struct {
	Range token.Range
	Inner Expression
}

func (e *Parenthesized) expressionNode()       {}
func (e *Parenthesized) GetRange() token.Range { return e.Range }

type WithComment struct {
	Range      token.Range
	Comment    string
	Expression Expression
}

func (e *WithComment) expressionNode()       {}
func (e *WithComment) GetRange() token.Range { return e.Range }

// UnwrapExpression strips parentheses and comments but keeps type annotations.
func UnwrapExpression(e Expression) Expression {
	for {
		switch expr := e.(type) {
		case *Parenthesized:
			e = expr.Inner
		case *WithComment:
			e = expr.Expression
		default:
			return e
		}
	}
}

// AsLambda looks through parentheses, comments and type annotations for a lambda.
func AsLambda(e Expression) (*Lambda, bool) {
	for {
		switch expr := UnwrapExpression(e).(type) {
		case *Typed:
			e = expr.Expression
		case *Lambda:
			return expr, true
		default:
			return nil, false
		}
	}
}
