package pipeline

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/token"
)

type stage struct {
	name string
	run  func(ctx *PipelineContext)
}

func (s stage) Name() string { return s.name }

func (s stage) Process(ctx *PipelineContext) *PipelineContext {
	s.run(ctx)
	return ctx
}

func TestRunContinuesAfterErrors(t *testing.T) {
	var order []string
	failing := stage{"first", func(ctx *PipelineContext) {
		order = append(order, "first")
		ctx.Errors.Errorf(diagnostics.ErrS004, token.Range{}, "broken")
	}}
	later := stage{"second", func(ctx *PipelineContext) {
		order = append(order, "second")
	}}

	ctx := New(failing, later).Run(NewPipelineContext("main", nil))
	if strings.Join(order, ",") != "first,second" {
		t.Errorf("stages ran as %v", order)
	}
	if ctx.Errors.Len() != 1 {
		t.Errorf("expected the first stage's diagnostic, got %d", ctx.Errors.Len())
	}
}

func TestRunLogsEachStage(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewPipelineContext("main", nil)
	ctx.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	noop := func(*PipelineContext) {}

	New(stage{"collect", noop}, stage{"lower", noop}).Run(ctx)

	out := buf.String()
	if strings.Count(out, "stage done") != 2 {
		t.Fatalf("expected two stage records:\n%s", out)
	}
	for _, want := range []string{"stage=collect", "stage=lower", "program=main", "diagnostics=0"} {
		if !strings.Contains(out, want) {
			t.Errorf("log is missing %q:\n%s", want, out)
		}
	}
}
