package analyzer

import "github.com/funvibe/still/internal/pipeline"

// From returns the analyzer the collect stage stored in ctx, or nil.
func From(ctx *pipeline.PipelineContext) *Analyzer {
	a, _ := ctx.Analysis.(*Analyzer)
	return a
}

// CollectProcessor fills the tables from the declaration list.
type CollectProcessor struct{}

func (*CollectProcessor) Name() string { return "collect" }

func (*CollectProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil {
		return ctx
	}
	a := New(ctx.Tables, ctx.Errors)
	a.Collect(ctx.Program)
	ctx.Analysis = a
	return ctx
}

// GraphProcessor builds both dependency graphs and schedules their groups.
type GraphProcessor struct{}

func (*GraphProcessor) Name() string { return "graph" }

func (*GraphProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if a := From(ctx); a != nil {
		a.BuildGraphs()
		a.Schedule()
	}
	return ctx
}

// TypeProcessor resolves and classifies the type declarations, group by group.
type TypeProcessor struct{}

func (*TypeProcessor) Name() string { return "types" }

func (*TypeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if a := From(ctx); a != nil {
		a.ResolveTypeGroups()
	}
	return ctx
}

// VariableProcessor infers the types of the top-level variables.
type VariableProcessor struct{}

func (*VariableProcessor) Name() string { return "variables" }

func (*VariableProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if a := From(ctx); a != nil {
		a.InferVariableGroups()
	}
	return ctx
}

// Processors lists the analysis stages in order.
func Processors() []pipeline.Processor {
	return []pipeline.Processor{&CollectProcessor{}, &GraphProcessor{}, &TypeProcessor{}, &VariableProcessor{}}
}
