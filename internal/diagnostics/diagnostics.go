package diagnostics

import (
	"fmt"
	"sort"

	"github.com/funvibe/still/internal/token"
)

type ErrorCode string

// Structural: required syntax is missing.
const (
	ErrS001 ErrorCode = "S001" // declaration without a name
	ErrS002 ErrorCode = "S002" // missing result expression
	ErrS003 ErrorCode = "S003" // missing type
	ErrS004 ErrorCode = "S004" // unparsable declaration
	ErrS005 ErrorCode = "S005" // function type or lambda without inputs or output
	ErrS006 ErrorCode = "S006" // empty collection without expected type
	ErrS007 ErrorCode = "S007" // missing pattern
)

// Name conflicts and unknown names.
const (
	ErrN001 ErrorCode = "N001" // duplicate declaration
	ErrN002 ErrorCode = "N002" // built-in name reused
	ErrN003 ErrorCode = "N003" // local binding reuses an outer name
	ErrN004 ErrorCode = "N004" // unknown name
	ErrN005 ErrorCode = "N005" // unknown record field
)

// Arity.
const (
	ErrA001 ErrorCode = "A001" // type constructor arity
	ErrA002 ErrorCode = "A002" // call arity
	ErrA003 ErrorCode = "A003" // variant payload presence
)

// Recursion.
const (
	ErrR001 ErrorCode = "R001" // alias-only type cycle
	ErrR002 ErrorCode = "R002" // constant initializer refers to itself
)

// Type information unavailable where lowering needs it.
const (
	ErrT001 ErrorCode = "T001"
)

// Diagnostic is a single advisory error. There is only one severity.
type Diagnostic struct {
	Code    ErrorCode
	Range   token.Range
	Message string
	File    string
}

func NewError(code ErrorCode, rng token.Range, message string) *Diagnostic {
	return &Diagnostic{Code: code, Range: rng, Message: message}
}

func (d *Diagnostic) Error() string {
	if d.File != "" {
		return fmt.Sprintf("%s:%d:%d: [%s] %s", d.File, d.Range.Start.Line, d.Range.Start.Column, d.Code, d.Message)
	}
	return fmt.Sprintf("%d:%d: [%s] %s", d.Range.Start.Line, d.Range.Start.Column, d.Code, d.Message)
}

// List accumulates diagnostics for one compilation pass.
// Reporting the same code twice at the same range keeps only the first.
type List struct {
	items []*Diagnostic
	seen  map[string]bool
}

func (l *List) Add(d *Diagnostic) {
	key := fmt.Sprintf("%s:%s:%s", d.Range, d.Code, d.Message)
	if l.seen == nil {
		l.seen = make(map[string]bool)
	}
	if l.seen[key] {
		return
	}
	l.seen[key] = true
	l.items = append(l.items, d)
}

// Errorf is shorthand for Add(NewError(code, rng, fmt.Sprintf(...))).
func (l *List) Errorf(code ErrorCode, rng token.Range, format string, args ...any) {
	l.Add(NewError(code, rng, fmt.Sprintf(format, args...)))
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Sorted returns the diagnostics ordered by position, then code, then message.
func (l *List) Sorted() []*Diagnostic {
	if l == nil {
		return nil
	}
	result := make([]*Diagnostic, len(l.items))
	copy(result, l.items)
	sort.SliceStable(result, func(i, j int) bool {
		if c := token.Compare(result[i].Range, result[j].Range); c != 0 {
			return c < 0
		}
		if result[i].Code != result[j].Code {
			return result[i].Code < result[j].Code
		}
		return result[i].Message < result[j].Message
	})
	return result
}

// WithCode returns the diagnostics carrying code, in report order.
func (l *List) WithCode(code ErrorCode) []*Diagnostic {
	var result []*Diagnostic
	for _, d := range l.items {
		if d.Code == code {
			result = append(result, d)
		}
	}
	return result
}
