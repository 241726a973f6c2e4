package analyzer

import (
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/ownership"
	"github.com/funvibe/still/internal/symbols"
)

// ResolveTypeGroups resolves the type groups in processing order. Inside a
// group, aliases are expanded first (they can only reach choice types of the
// group, never each other), then variant payloads, and finally the
// ownership flags: choice types from their variants while the group's
// names are still placeholders, aliases from their expansion afterwards.
func (a *Analyzer) ResolveTypeGroups() {
	classifier := a.Classifier()
	for _, group := range a.TypeGroups {
		members := groupSet(group)
		var choices []*symbols.ChoiceTypeInfo
		var aliases []*symbols.TypeAliasInfo

		for _, name := range group {
			decl, ok := a.aliasDecls[name]
			if !ok {
				continue
			}
			info := a.tables.Aliases[name]
			aliases = append(aliases, info)
			if a.rejectedAliases[name] {
				continue
			}
			if decl.Type == nil {
				a.errs.Errorf(diagnostics.ErrS003, info.NameRange, "the type alias %s is missing its type", name)
				continue
			}
			info.Type = a.ResolveType(decl.Type, paramSet(info.Parameters))
		}

		for _, name := range group {
			decl, ok := a.choiceDecls[name]
			if !ok {
				continue
			}
			info := a.tables.Choices[name]
			choices = append(choices, info)
			params := paramSet(info.Parameters)
			done := make(map[string]bool)
			for _, variantDecl := range decl.Variants {
				if variantDecl == nil || variantDecl.Name == nil || done[variantDecl.Name.Value] {
					continue
				}
				done[variantDecl.Name.Value] = true
				variant := info.Variant(variantDecl.Name.Value)
				if variant == nil || variantDecl.Value == nil {
					continue
				}
				variant.Value = a.ResolveType(variantDecl.Value, params)
			}
			ownership.MarkRecursiveVariants(info, members)
		}

		classifier.BeginGroup(group)
		flags := make([]symbols.Flags, len(choices))
		for i, info := range choices {
			flags[i] = classifier.DeclarationFlags(info)
		}
		classifier.EndGroup()
		for i, info := range choices {
			info.Flags = flags[i]
			info.Resolved = true
		}
		for _, info := range aliases {
			if info.Type == nil {
				info.Flags = symbols.Placeholder
				continue
			}
			info.Flags = classifier.Classify(info.Type)
		}
	}
}

// Classifier returns the ownership classifier bound to this program's tables.
func (a *Analyzer) Classifier() *ownership.Classifier {
	if a.classifier == nil {
		a.classifier = ownership.New(a.tables)
	}
	return a.classifier
}

func paramSet(params []string) map[string]bool {
	set := make(map[string]bool, len(params))
	for _, p := range params {
		set[p] = true
	}
	return set
}
