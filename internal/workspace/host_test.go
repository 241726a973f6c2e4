package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/compiler"
)

func program(t *testing.T, name, input string) *ast.Program {
	t.Helper()
	p, err := ast.Decode(name+".still.yaml", []byte(input))
	if err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return p
}

func constant(t *testing.T, name string, value int) Input {
	return Input{Name: name, Program: program(t, name, fmt.Sprintf(`
- variable: value
  result: {typed: int, expression: {int: "%d"}}
`, value))}
}

func TestCompileAllKeepsInputOrder(t *testing.T) {
	h := NewHost(Options{Jobs: 3})
	var inputs []Input
	for i := 0; i < 20; i++ {
		inputs = append(inputs, constant(t, fmt.Sprintf("p%d", i), i))
	}

	results, err := h.CompileAll(context.Background(), inputs)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(inputs) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.Name != inputs[i].Name {
			t.Errorf("result %d is %s, want %s", i, r.Name, inputs[i].Name)
		}
		if want := fmt.Sprintf("pub const value: Int = %d;", i); !strings.Contains(r.Text, want) {
			t.Errorf("%s: missing %q", r.Name, want)
		}
		snap := h.Snapshot(r.Name)
		if snap == nil || snap.Text != r.Text {
			t.Errorf("%s was not published", r.Name)
		}
	}
}

func TestSnapshotsHaveDistinctGenerations(t *testing.T) {
	h := NewHost(Options{})
	first, ok := h.Submit("main", constant(t, "main", 1).Program)
	if !ok {
		t.Fatal("first submission was discarded")
	}
	second, ok := h.Submit("main", constant(t, "main", 2).Program)
	if !ok {
		t.Fatal("second submission was discarded")
	}
	if first.Generation == second.Generation || second.Sequence <= first.Sequence {
		t.Errorf("snapshots not ordered: %+v then %+v", first, second)
	}
	if h.Snapshot("main") != second {
		t.Error("readers should see the latest snapshot")
	}
	if h.Snapshot("other") != nil {
		t.Error("unknown programs have no snapshot")
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	h := NewHost(Options{})
	newer := compiler.Compile("main", constant(t, "main", 2).Program, compiler.Options{})
	older := compiler.Compile("main", constant(t, "main", 1).Program, compiler.Options{})

	if _, ok := h.publish(5, newer); !ok {
		t.Fatal("newer result not published")
	}
	current, ok := h.publish(4, older)
	if ok {
		t.Error("an older sequence must not replace a newer one")
	}
	if current.Sequence != 5 || !strings.Contains(current.Text, "= 2;") {
		t.Errorf("published snapshot changed: %+v", current)
	}
}

func TestConcurrentReaders(t *testing.T) {
	h := NewHost(Options{Jobs: 2})
	inputs := []Input{constant(t, "a", 1), constant(t, "b", 2)}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if snap := h.Snapshot("a"); snap != nil && snap.Name != "a" {
					t.Error("snapshot for the wrong program")
					return
				}
			}
		}()
	}
	for i := 0; i < 5; i++ {
		if _, err := h.CompileAll(context.Background(), inputs); err != nil {
			t.Error(err)
		}
	}
	close(stop)
	wg.Wait()
}

func TestCompileAllCancelled(t *testing.T) {
	h := NewHost(Options{Jobs: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.CompileAll(ctx, []Input{constant(t, "a", 1)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
	if h.Snapshot("a") != nil {
		t.Error("nothing should be published after cancellation")
	}
}
