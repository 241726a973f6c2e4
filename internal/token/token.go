package token

import "fmt"

// Position is a 1-based line/column location in a source file.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p comes strictly before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// Range is the half-open source span [Start, End) of a syntax node.
type Range struct {
	Start Position
	End   Position
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// IsZero reports whether the range carries no position at all.
func (r Range) IsZero() bool {
	return r == Range{}
}

// Contains reports whether inner lies within r.
func (r Range) Contains(inner Range) bool {
	return !inner.Start.Before(r.Start) && !r.End.Before(inner.End)
}

// Compare orders ranges by start, then by end.
func Compare(a, b Range) int {
	switch {
	case a.Start.Before(b.Start):
		return -1
	case b.Start.Before(a.Start):
		return 1
	case a.End.Before(b.End):
		return -1
	case b.End.Before(a.End):
		return 1
	}
	return 0
}
