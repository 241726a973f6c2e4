package ast

import "github.com/funvibe/still/internal/token"

// --- Pattern Nodes ---

type Pattern interface {
	Node
	patternNode()
}

// PatternTyped is `:type:pattern`, the only way a lambda parameter gets its type.
type PatternTyped struct {
	Range   token.Range
	Type    Type
	Pattern Pattern
}

func (p *PatternTyped) patternNode()          {}
func (p *PatternTyped) GetRange() token.Range { return p.Range }

type PatternVariable struct {
	Range token.Range
	Name  string
}

func (p *PatternVariable) patternNode()          {}
func (p *PatternVariable) GetRange() token.Range { return p.Range }

type PatternIgnored struct {
	Range token.Range
}

func (p *PatternIgnored) patternNode()          {}
func (p *PatternIgnored) GetRange() token.Range { return p.Range }

type PatternInt struct {
	Range token.Range
	Value string
}

func (p *PatternInt) patternNode()          {}
func (p *PatternInt) GetRange() token.Range { return p.Range }

type PatternChar struct {
	Range token.Range
	Value rune
}

func (p *PatternChar) patternNode()          {}
func (p *PatternChar) GetRange() token.Range { return p.Range }

type PatternString struct {
	Range token.Range
	Value string
}

func (p *PatternString) patternNode()          {}
func (p *PatternString) GetRange() token.Range { return p.Range }

// PatternVariant destructures a choice type variant, e.g. `Present x`.
type PatternVariant struct {
	Range token.Range
	Name  *Identifier
	Value Pattern
}

func (p *PatternVariant) patternNode()          {}
func (p *PatternVariant) GetRange() token.Range { return p.Range }

type PatternRecord struct {
	Range  token.Range
	Fields []*PatternField
}

type PatternField struct {
	Range token.Range
	Name  *Identifier
	Value Pattern
}

func (p *PatternRecord) patternNode()          {}
func (p *PatternRecord) GetRange() token.Range { return p.Range }

type PatternParenthesized struct {
	Range token.Range
	Inner Pattern
}

func (p *PatternParenthesized) patternNode()          {}
func (p *PatternParenthesized) GetRange() token.Range { return p.Range }

type PatternWithComment struct {
	Range   token.Range
	Comment string
	Pattern Pattern
}

func (p *PatternWithComment) patternNode()          {}
func (p *PatternWithComment) GetRange() token.Range { return p.Range }

// UnwrapPattern strips parentheses and comments.
func UnwrapPattern(p Pattern) Pattern {
	for {
		switch pat := p.(type) {
		case *PatternParenthesized:
			p = pat.Inner
		case *PatternWithComment:
			p = pat.Pattern
		default:
			return p
		}
	}
}
