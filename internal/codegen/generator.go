// Package codegen lowers an analyzed program to the rust item model.
//
// Generation never stops at an error. Whatever cannot be lowered
// becomes a todo!() placeholder, and the reason goes to the shared
// diagnostic list.
package codegen

import (
	"strconv"

	"github.com/funvibe/still/internal/analyzer"
	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/config"
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/ownership"
	"github.com/funvibe/still/internal/rust"
	"github.com/funvibe/still/internal/symbols"
	"github.com/funvibe/still/internal/token"
	"github.com/funvibe/still/internal/typesystem"
)

// Options configures one generation run.
type Options struct {
	// RuntimeModule is the Rust path the runtime library is imported from.
	RuntimeModule string
}

var headerLints = []string{
	"allow(dead_code, non_shorthand_field_patterns, non_camel_case_types, non_snake_case, " +
		"uncommon_codepoints, unused_parens, unused_variables, clippy::all)",
}

// Generator holds the state of one generation run. It shares the analyzer's
// tables and diagnostic list.
type Generator struct {
	analyzer   *analyzer.Analyzer
	tables     *symbols.Tables
	errs       *diagnostics.List
	classifier *ownership.Classifier
	records    *Records
	options    Options

	// constants emitted as `const` items rather than functions
	constItems         map[string]bool
	recursiveConstants map[string]bool
	// memo for the derive decision of choice types
	debuggable map[string]bool

	fn *fnState
}

// fnState is the per-declaration lowering state.
type fnState struct {
	name     string
	generics map[string]bool
	moves    map[token.Range]bool
	depth    int
	closures int
	strings  int
	// statements hoisted to the start of the current region
	hoisted *[]rust.Stmt
}

func New(a *analyzer.Analyzer, opts Options) *Generator {
	if opts.RuntimeModule == "" {
		opts.RuntimeModule = config.DefaultRuntimeModule
	}
	return &Generator{
		analyzer:           a,
		tables:             a.Tables(),
		errs:               a.Errors(),
		classifier:         a.Classifier(),
		records:            NewRecords(),
		options:            opts,
		constItems:         make(map[string]bool),
		recursiveConstants: make(map[string]bool),
		debuggable:         make(map[string]bool),
	}
}

// Generate lowers every declaration the analyzer collected.
func Generate(a *analyzer.Analyzer, opts Options) *rust.File {
	return New(a, opts).Generate()
}

func (g *Generator) Records() *Records { return g.records }

func (g *Generator) Generate() *rust.File {
	g.assignRustNames()
	g.solveAllocatorParameters()
	g.checkConstantRecursion()

	enums := g.lowerChoices()
	values := g.lowerVariables()
	ownedChoices := g.ownedChoiceItems()
	// every field set is registered by now
	structs := g.recordStructs()
	ownedRecords := g.ownedRecordItems()

	file := &rust.File{
		InnerAttributes: headerLints,
		Uses:            []string{g.options.RuntimeModule + "::*"},
	}
	file.Items = append(file.Items, enums...)
	file.Items = append(file.Items, structs...)
	file.Items = append(file.Items, ownedChoices...)
	file.Items = append(file.Items, ownedRecords...)
	file.Items = append(file.Items, values...)
	return file
}

func (g *Generator) assignRustNames() {
	for _, c := range g.tables.UserChoices() {
		c.RustName = identifier(capitalize(c.Name))
	}
	for _, v := range g.tables.UserVariables() {
		v.RustName = identifier(v.Name)
		if decl, ok := g.analyzer.Variable(v.Name); ok && literalConstant(decl.Result) != nil {
			g.constItems[v.Name] = true
		}
	}
}

// literalConstant returns the literal a constant is initialized with, if
// that is all there is to it.
func literalConstant(e ast.Expression) ast.Expression {
	switch expr := ast.UnwrapExpression(e).(type) {
	case *ast.Typed:
		return literalConstant(expr.Expression)
	case *ast.IntegerLiteral, *ast.DecimalLiteral, *ast.CharLiteral, *ast.StringLiteral:
		return expr
	}
	return nil
}

func (g *Generator) beginDeclaration(name string, t typesystem.Type, moves map[token.Range]bool) {
	generics := make(map[string]bool)
	for _, v := range typesystem.FreeVariables(t) {
		generics[v] = true
	}
	g.fn = &fnState{name: name, generics: generics, moves: moves}
}

// lowerRegion lowers e as a region: closures created inside are hoisted to
// the front of the block it returns.
func (g *Generator) lowerRegion(e ast.Expression, expected typesystem.Type, scope *Scope) rust.Expr {
	saved := g.fn.hoisted
	var stmts []rust.Stmt
	g.fn.hoisted = &stmts
	body := g.lowerExpr(e, expected, scope)
	g.fn.hoisted = saved
	if len(stmts) == 0 {
		return body
	}
	if block, ok := body.(*rust.Block); ok {
		return &rust.Block{Stmts: append(stmts, block.Stmts...), Result: block.Result}
	}
	return &rust.Block{Stmts: stmts, Result: body}
}

func (g *Generator) hoist(stmt rust.Stmt) {
	*g.fn.hoisted = append(*g.fn.hoisted, stmt)
}

func (g *Generator) nextClosureName() string {
	name := config.ClosurePrefix + strconv.Itoa(g.fn.closures)
	g.fn.closures++
	return name
}

func (g *Generator) nextStringName() string {
	name := "string·" + strconv.Itoa(g.fn.strings)
	g.fn.strings++
	return name
}

func allocatorIdent() rust.Expr {
	return &rust.Ident{Name: config.AllocatorParameterName}
}

func allocate(value rust.Expr) rust.Expr {
	return &rust.MethodCallExpr{Receiver: allocatorIdent(), Method: "alloc", Args: []rust.Expr{value}}
}

func clone(e rust.Expr) rust.Expr {
	return &rust.MethodCallExpr{Receiver: e, Method: "clone"}
}

func asBlock(e rust.Expr) *rust.Block {
	if block, ok := e.(*rust.Block); ok {
		return block
	}
	return &rust.Block{Result: e}
}

// allocatorParameter is `allocator: &'a impl Alloc`.
func allocatorParameter() rust.Parameter {
	return rust.Parameter{
		Name: config.AllocatorParameterName,
		Type: &rust.RefType{Lifetime: config.LifetimeName, Inner: &rust.ImplType{Bounds: config.AllocTraitName}},
	}
}
