// Package cli provides the still command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/funvibe/still/internal/config"
)

// ErrDiagnostics is returned by commands that finished but reported
// diagnostics. The process exits with 1 for it and 2 for any other error.
var ErrDiagnostics = errors.New("compilation reported errors")

const (
	exitOK          = 0
	exitDiagnostics = 1
	exitFailure     = 2
)

var cfgFile string

// envKey stores the per-invocation environment in the command context.
type envKey struct{}

// env is what every command gets from the root command.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	color  bool
}

func fromContext(ctx context.Context) *env {
	if e, ok := ctx.Value(envKey{}).(*env); ok {
		return e
	}
	cfg, _ := config.Load("", nil)
	return &env{cfg: cfg, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "still",
		Short: "still - compile still programs to Rust",
		Long: `still lowers parsed still programs (syntax trees serialized as YAML or JSON)
to Rust source that builds against the still_core runtime library.`,
		Version: config.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			path := cfgFile
			if path == "" {
				if wd, err := os.Getwd(); err == nil {
					path = config.FindConfig(wd)
				}
			}
			cfg, err := config.Load(path, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			level, err := cfg.Level()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if cfg.File != "" {
				logger.Debug("using config file", slog.String("path", cfg.File))
			}

			e := &env{cfg: cfg, logger: logger, color: useColor(cfg.Color, cmd.ErrOrStderr())}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, e))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: still.yaml in this or a parent directory)")
	flags.String("output-dir", "", "Directory for generated .rs files")
	flags.String("runtime-module", "", "Rust path of the runtime library")
	flags.String("runtime-version", "", "Semver constraint the runtime API must satisfy")
	flags.IntP("jobs", "j", 0, "Maximum number of programs compiled at once")
	flags.String("cache", "", "Path of the artifact cache database (empty disables it)")
	flags.String("color", "", "Color diagnostics (auto|always|never)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("color", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ColorAuto, config.ColorAlways, config.ColorNever}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newBuildCommand())
	rootCmd.AddCommand(newTablesCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Run executes the command line args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	cfgFile = ""
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.ExecuteContext(context.Background())
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ErrDiagnostics):
		return exitDiagnostics
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
}

// Execute runs the root command on the process arguments.
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}
