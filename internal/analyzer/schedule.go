package analyzer

import (
	"strings"

	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/graph"
)

// Schedule computes the processing order of both graphs and rejects type
// groups whose recursion could only be expanded forever.
//
// A group with two or more aliases is rejected outright. A lone alias is
// rejected when it refers to itself and the group has no choice type to put
// an indirection in between. Variable groups are never rejected here.
func (a *Analyzer) Schedule() {
	components := a.TypeGraph.StronglyConnectedComponents()
	a.TypeGroups = namesOf(a.TypeGraph, components)
	for i, component := range components {
		group := a.TypeGroups[i]
		var aliases []string
		hasChoice := false
		for _, name := range group {
			if _, ok := a.aliasDecls[name]; ok {
				aliases = append(aliases, name)
			} else {
				hasChoice = true
			}
		}
		switch {
		case len(aliases) >= 2:
			a.rejectAliases(aliases, group)
		case len(aliases) == 1 && !hasChoice && a.TypeGraph.IsCyclic(component):
			a.rejectAliases(aliases, group)
		}
	}
	a.VariableGroups = namesOf(a.VariableGraph, a.VariableGraph.StronglyConnectedComponents())
}

func namesOf(g *graph.Graph, components [][]graph.Node) [][]string {
	groups := make([][]string, len(components))
	for i, c := range components {
		for _, n := range c {
			groups[i] = append(groups[i], g.Name(n))
		}
	}
	return groups
}

func (a *Analyzer) rejectAliases(aliases, group []string) {
	involved := strings.Join(group, ", ")
	for _, name := range aliases {
		a.rejectedAliases[name] = true
		var message string
		if len(group) == 1 {
			message = "the type alias " + name + " refers to itself, so it can never be fully expanded; " +
				"declare it as a choice type instead"
		} else {
			message = "the type alias " + name + " is part of a recursive cycle through " + involved +
				"; aliases cannot be recursive, turn one of the aliases into a choice type"
		}
		a.errs.Add(diagnostics.NewError(diagnostics.ErrR001, a.tables.Aliases[name].NameRange, message))
	}
}

// groupSet turns a group into a membership set.
func groupSet(group []string) map[string]bool {
	set := make(map[string]bool, len(group))
	for _, name := range group {
		set[name] = true
	}
	return set
}
