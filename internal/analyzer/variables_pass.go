package analyzer

import (
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/typesystem"
)

// InferVariableGroups infers the types of every top-level variable group in
// processing order. Members of a recursive group start out unknown and are
// re-inferred until no member's type changes. Each round can only carry
// knowledge one member further around the cycle, so the rounds are bounded
// by the group size times the depth of the deepest member type.
func (a *Analyzer) InferVariableGroups() {
	for _, group := range a.VariableGroups {
		for _, name := range group {
			decl := a.variableDecls[name]
			info := a.tables.Variables[name]
			if decl != nil && info != nil && decl.Result == nil {
				a.errs.Errorf(diagnostics.ErrS002, info.NameRange,
					"the variable %s is missing its value", name)
			}
		}
		changed := a.inferVariableRound(group)
		if !a.recursiveVariableGroup(group) {
			continue
		}
		for round := 1; changed && round < a.roundLimit(group); round++ {
			changed = a.inferVariableRound(group)
		}
	}
}

// inferVariableRound infers every member of group once and reports whether
// any recorded type changed. A member never loses a type it already has.
func (a *Analyzer) inferVariableRound(group []string) bool {
	changed := false
	for _, name := range group {
		decl := a.variableDecls[name]
		info := a.tables.Variables[name]
		if decl == nil || info == nil || decl.Result == nil {
			continue
		}
		t := a.InferExpression(decl.Result, nil)
		if t == nil || typesystem.Equal(t, info.Type) {
			continue
		}
		info.Type = t
		changed = true
	}
	return changed
}

func (a *Analyzer) roundLimit(group []string) int {
	depth := 1
	for _, name := range group {
		if info := a.tables.Variables[name]; info != nil {
			depth = max(depth, typesystem.Depth(info.Type))
		}
	}
	return len(group)*depth + 1
}

func (a *Analyzer) recursiveVariableGroup(group []string) bool {
	if len(group) > 1 {
		return true
	}
	n, ok := a.VariableGraph.Lookup(group[0])
	return ok && a.VariableGraph.HasEdge(n, n)
}

// VariableType is the inferred type of a top-level variable, or nil.
func (a *Analyzer) VariableType(name string) typesystem.Type {
	if info, ok := a.tables.Variables[name]; ok {
		return info.Type
	}
	return nil
}
