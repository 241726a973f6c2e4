package pipeline

import (
	"io"
	"log/slog"

	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/rust"
	"github.com/funvibe/still/internal/symbols"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Name() string
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries one program through the stages. Every stage
// appends to the same diagnostic list.
type PipelineContext struct {
	Name    string
	Program *ast.Program
	Tables  *symbols.Tables
	Errors  *diagnostics.List

	// Analysis is the front-end state shared by the analysis and lowering
	// stages. It is set by the first analysis stage.
	Analysis any

	// RuntimeModule is the Rust path the generated code imports from.
	RuntimeModule string
	Output        *rust.File

	Logger *slog.Logger
}

func NewPipelineContext(name string, program *ast.Program) *PipelineContext {
	return &PipelineContext{
		Name:    name,
		Program: program,
		Tables:  symbols.NewTables(),
		Errors:  &diagnostics.List{},
	}
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func (ctx *PipelineContext) logger() *slog.Logger {
	if ctx.Logger == nil {
		return discard
	}
	return ctx.Logger
}
