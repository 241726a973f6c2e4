// Package compiler is the entry point for compiling one program.
package compiler

import (
	"log/slog"

	"github.com/funvibe/still/internal/analyzer"
	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/codegen"
	"github.com/funvibe/still/internal/config"
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/pipeline"
	"github.com/funvibe/still/internal/rust"
	"github.com/funvibe/still/internal/symbols"
)

type Options struct {
	RuntimeModule string
	Logger        *slog.Logger
}

// Result is everything one compilation produces. Diagnostics are sorted
// and carry the program name as their file.
type Result struct {
	Name        string
	Program     *rust.File
	Text        string
	Tables      *symbols.Tables
	Diagnostics []*diagnostics.Diagnostic
}

func (r *Result) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// Compile analyzes and lowers program. A program with errors still
// produces output, with placeholders where lowering was not possible.
// The same input always gives the same result.
func Compile(name string, program *ast.Program, opts Options) *Result {
	if opts.RuntimeModule == "" {
		opts.RuntimeModule = config.DefaultRuntimeModule
	}
	if program == nil {
		program = &ast.Program{File: name}
	}

	ctx := pipeline.NewPipelineContext(name, program)
	ctx.RuntimeModule = opts.RuntimeModule
	ctx.Logger = opts.Logger

	processors := append(analyzer.Processors(), &codegen.GeneratorProcessor{})
	ctx = pipeline.New(processors...).Run(ctx)

	result := &Result{
		Name:        name,
		Program:     ctx.Output,
		Tables:      ctx.Tables,
		Diagnostics: ctx.Errors.Sorted(),
	}
	for _, d := range result.Diagnostics {
		if d.File == "" {
			d.File = name
		}
	}
	if result.Program != nil {
		result.Text = rust.Print(result.Program)
	}
	return result
}
