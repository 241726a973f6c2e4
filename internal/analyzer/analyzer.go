package analyzer

import (
	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/graph"
	"github.com/funvibe/still/internal/ownership"
	"github.com/funvibe/still/internal/symbols"
)

// Analyzer owns the table set of one program while it is being compiled.
// It is not safe for concurrent use; each compilation builds its own.
type Analyzer struct {
	tables *symbols.Tables
	errs   *diagnostics.List

	choiceDecls   map[string]*ast.ChoiceTypeDeclaration
	aliasDecls    map[string]*ast.TypeAliasDeclaration
	variableDecls map[string]*ast.VariableDeclaration
	// declaration order, kept for deterministic scheduling
	typeNames     []string
	variableNames []string

	TypeGraph     *graph.Graph
	VariableGraph *graph.Graph
	// Groups in processing order, members in declaration order.
	TypeGroups     [][]string
	VariableGroups [][]string
	// aliases whose group was rejected; they stay unresolved
	rejectedAliases map[string]bool

	classifier *ownership.Classifier
}

func New(tables *symbols.Tables, errs *diagnostics.List) *Analyzer {
	if tables == nil {
		tables = symbols.NewTables()
	}
	if errs == nil {
		errs = &diagnostics.List{}
	}
	return &Analyzer{
		tables:          tables,
		errs:            errs,
		choiceDecls:     make(map[string]*ast.ChoiceTypeDeclaration),
		aliasDecls:      make(map[string]*ast.TypeAliasDeclaration),
		variableDecls:   make(map[string]*ast.VariableDeclaration),
		rejectedAliases: make(map[string]bool),
	}
}

func (a *Analyzer) Tables() *symbols.Tables { return a.tables }

func (a *Analyzer) Errors() *diagnostics.List { return a.errs }

// Variable returns the collected declaration of a top-level variable.
func (a *Analyzer) Variable(name string) (*ast.VariableDeclaration, bool) {
	d, ok := a.variableDecls[name]
	return d, ok
}

// Choice returns the collected declaration of a choice type.
func (a *Analyzer) Choice(name string) (*ast.ChoiceTypeDeclaration, bool) {
	d, ok := a.choiceDecls[name]
	return d, ok
}

// Analyze runs every front-end stage over the program. The code generator
// takes over from the populated tables and groups.
func (a *Analyzer) Analyze(program *ast.Program) {
	a.Collect(program)
	a.BuildGraphs()
	a.Schedule()
	a.ResolveTypeGroups()
	a.InferVariableGroups()
}
