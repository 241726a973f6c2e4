package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/cache"
	"github.com/funvibe/still/internal/compiler"
	"github.com/funvibe/still/internal/config"
	"github.com/funvibe/still/internal/diagnostics"
	"github.com/funvibe/still/internal/workspace"
)

func newBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build [files...]",
		Short: "Compile syntax trees to Rust",
		Long: `Compile each input syntax tree to <output_dir>/<name>.rs.

Without arguments every still syntax tree in the current directory is built.
Diagnostics are printed as file:line:col: [code] message. Output is written
for programs with diagnostics too, with todo!() where lowering failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := fromContext(cmd.Context())
			summary, err := build(cmd.Context(), e, args)
			if err != nil {
				return err
			}
			printDiagnostics(cmd.ErrOrStderr(), summary.diagnostics, e.color)
			fmt.Fprintf(cmd.OutOrStdout(), "compiled %d %s (%d from cache) into %s\n",
				summary.programs, plural(summary.programs, "program"), summary.cached, e.cfg.OutputDir)
			if len(summary.diagnostics) > 0 {
				return ErrDiagnostics
			}
			return nil
		},
	}
}

type source struct {
	path    string
	program *ast.Program
	key     string
}

type buildSummary struct {
	programs    int
	cached      int
	diagnostics []*diagnostics.Diagnostic
}

func build(ctx context.Context, e *env, args []string) (*buildSummary, error) {
	cfg := e.cfg
	if err := cfg.CheckRuntime(); err != nil {
		return nil, err
	}

	paths := args
	if len(paths) == 0 {
		var err error
		if paths, err = discoverSources("."); err != nil {
			return nil, err
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files: pass syntax trees or run in a directory containing *%s files", config.SourceFileExt)
	}

	if err := checkOutputNames(paths); err != nil {
		return nil, err
	}

	sources := make([]*source, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		program, err := ast.Decode(path, data)
		if err != nil {
			return nil, err
		}
		sources[i] = &source{
			path:    path,
			program: program,
			key:     cache.Key(path, data, config.Version, cfg.RuntimeModule),
		}
	}

	store, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	artifacts := make([]*cache.Artifact, len(sources))
	var pending []workspace.Input
	var pendingIndex []int
	for i, src := range sources {
		if store != nil {
			a, err := store.Get(ctx, src.key)
			if err != nil {
				return nil, err
			}
			if a != nil {
				e.logger.Debug("cache hit", slog.String("program", src.path), slog.String("run", a.RunID.String()))
				artifacts[i] = a
				continue
			}
		}
		pending = append(pending, workspace.Input{Name: src.path, Program: src.program})
		pendingIndex = append(pendingIndex, i)
	}

	host := workspace.NewHost(workspace.Options{
		Jobs:     cfg.Jobs,
		Compiler: compiler.Options{RuntimeModule: cfg.RuntimeModule, Logger: e.logger},
		Logger:   e.logger,
	})
	results, err := host.CompileAll(ctx, pending)
	if err != nil {
		return nil, err
	}
	for j, result := range results {
		i := pendingIndex[j]
		a := &cache.Artifact{Name: result.Name, Rust: result.Text, Diagnostics: result.Diagnostics}
		if store != nil {
			if err := store.Put(ctx, sources[i].key, a); err != nil {
				return nil, err
			}
		}
		artifacts[i] = a
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	summary := &buildSummary{programs: len(sources), cached: len(sources) - len(pending)}
	for i, src := range sources {
		out := filepath.Join(cfg.OutputDir, outputName(src.path))
		if err := os.WriteFile(out, []byte(artifacts[i].Rust), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", out, err)
		}
		summary.diagnostics = append(summary.diagnostics, artifacts[i].Diagnostics...)
	}
	return summary, nil
}

func openCache(ctx context.Context, path string) (*cache.Store, error) {
	if path == "" {
		return nil, nil
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	store, err := cache.Open(path)
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// discoverSources lists the syntax trees directly in dir, sorted.
func discoverSources(dir string) ([]string, error) {
	var paths []string
	for _, ext := range config.SourceFileExtensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}

// outputName maps shapes.still.yaml to shapes.rs.
func outputName(path string) string {
	base := filepath.Base(path)
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext) + config.OutputFileExt
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + config.OutputFileExt
}

// checkOutputNames rejects inputs that would be written to the same file.
func checkOutputNames(paths []string) error {
	written := make(map[string]string, len(paths))
	for _, path := range paths {
		out := outputName(path)
		if first, ok := written[out]; ok {
			return fmt.Errorf("%s and %s would both be written to %s; rename one of them", first, path, out)
		}
		written[out] = path
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
