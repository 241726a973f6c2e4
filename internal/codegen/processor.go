package codegen

import (
	"github.com/funvibe/still/internal/analyzer"
	"github.com/funvibe/still/internal/pipeline"
)

// GeneratorProcessor lowers the analyzed program into ctx.Output.
type GeneratorProcessor struct{}

func (*GeneratorProcessor) Name() string { return "lower" }

func (*GeneratorProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	a := analyzer.From(ctx)
	if a == nil {
		return ctx
	}
	ctx.Output = Generate(a, Options{RuntimeModule: ctx.RuntimeModule})
	return ctx
}
