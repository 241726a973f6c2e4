package pipeline

import "log/slog"

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	logger := ctx.logger()
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors: later stages report what they can and
		// lower the rest to placeholders.
		logger.Debug("stage done",
			slog.String("program", ctx.Name),
			slog.String("stage", processor.Name()),
			slog.Int("diagnostics", ctx.Errors.Len()))
	}
	return ctx
}
