// Package workspace compiles many programs and publishes the latest result
// of each one for lock-free readers.
package workspace

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/compiler"
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/rust"
	"github.com/funvibe/still/internal/symbols"
)

// Input is one program to compile.
type Input struct {
	Name    string
	Program *ast.Program
}

// Snapshot is the published state of one program. It is never modified
// after publication.
type Snapshot struct {
	Generation  uuid.UUID
	Sequence    uint64
	Name        string
	Tables      *symbols.Tables
	Program     *rust.File
	Text        string
	Diagnostics []*diagnostics.Diagnostic
}

// Completed is what a worker hands back to the publishing goroutine.
type Completed struct {
	Index    int
	Sequence uint64
	Result   *compiler.Result
}

type Options struct {
	// Jobs bounds concurrent compilations; zero means GOMAXPROCS.
	Jobs     int
	Compiler compiler.Options
	Logger   *slog.Logger
}

// Host owns the published snapshots. Compilations run on worker
// goroutines, each with its own table set; only the publishing goroutine
// writes snapshots.
type Host struct {
	options  Options
	logger   *slog.Logger
	jobs     int
	sequence atomic.Uint64
	slots    sync.Map // name -> *atomic.Pointer[Snapshot]
}

func NewHost(opts Options) *Host {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Compiler.Logger == nil {
		opts.Compiler.Logger = logger
	}
	return &Host{options: opts, logger: logger, jobs: jobs}
}

// Snapshot returns the latest published state of name, or nil.
func (h *Host) Snapshot(name string) *Snapshot {
	slot, ok := h.slots.Load(name)
	if !ok {
		return nil
	}
	return slot.(*atomic.Pointer[Snapshot]).Load()
}

// Submit compiles one program on the calling goroutine and publishes it.
// It reports false when a newer compilation of the same name was
// published meanwhile; the returned snapshot is the one readers see.
func (h *Host) Submit(name string, program *ast.Program) (*Snapshot, bool) {
	seq := h.sequence.Add(1)
	result := compiler.Compile(name, program, h.options.Compiler)
	return h.publish(seq, result)
}

func (h *Host) publish(seq uint64, result *compiler.Result) (*Snapshot, bool) {
	snap := &Snapshot{
		Generation:  uuid.New(),
		Sequence:    seq,
		Name:        result.Name,
		Tables:      result.Tables,
		Program:     result.Program,
		Text:        result.Text,
		Diagnostics: result.Diagnostics,
	}
	value, _ := h.slots.LoadOrStore(result.Name, new(atomic.Pointer[Snapshot]))
	slot := value.(*atomic.Pointer[Snapshot])
	for {
		current := slot.Load()
		if current != nil && current.Sequence > seq {
			h.logger.Debug("stale result discarded",
				slog.String("program", result.Name),
				slog.Uint64("sequence", seq),
				slog.Uint64("published", current.Sequence))
			return current, false
		}
		if slot.CompareAndSwap(current, snap) {
			return snap, true
		}
	}
}

// CompileAll compiles inputs with at most Jobs running at once and
// publishes each result as it completes. Results come back in input
// order. Cancelling ctx stops scheduling; programs already finished stay
// published.
func (h *Host) CompileAll(ctx context.Context, inputs []Input) ([]*compiler.Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.jobs)
	done := make(chan Completed)

	errc := make(chan error, 1)
	go func() {
		for i, in := range inputs {
			i, in := i, in
			if gctx.Err() != nil {
				break
			}
			seq := h.sequence.Add(1)
			h.logger.Debug("scheduled", slog.String("program", in.Name), slog.Uint64("sequence", seq))
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				result := compiler.Compile(in.Name, in.Program, h.options.Compiler)
				select {
				case done <- Completed{Index: i, Sequence: seq, Result: result}:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		errc <- g.Wait()
		close(done)
	}()

	results := make([]*compiler.Result, len(inputs))
	for c := range done {
		h.publish(c.Sequence, c.Result)
		results[c.Index] = c.Result
		h.logger.Debug("completed",
			slog.String("program", c.Result.Name),
			slog.Int("diagnostics", len(c.Result.Diagnostics)))
	}
	if err := <-errc; err != nil {
		return results, err
	}
	return results, ctx.Err()
}
