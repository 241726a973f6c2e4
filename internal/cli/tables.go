package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/funvibe/still/internal/ast"
	"github.com/funvibe/still/internal/compiler"
	"github.com/funvibe/still/internal/symbols"
	"github.com/funvibe/still/internal/typesystem"
)

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <file>",
		Short: "Show the type and variable tables of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := fromContext(cmd.Context())
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			program, err := ast.Decode(args[0], data)
			if err != nil {
				return err
			}
			result := compiler.Compile(args[0], program, compiler.Options{RuntimeModule: e.cfg.RuntimeModule, Logger: e.logger})
			renderTables(cmd.OutOrStdout(), result.Tables)
			printDiagnostics(cmd.ErrOrStderr(), result.Diagnostics, e.color)
			if result.HasErrors() {
				return ErrDiagnostics
			}
			return nil
		},
	}
}

func renderTables(w io.Writer, tables *symbols.Tables) {
	aliases := newTable(w, "Aliases", table.Row{"Name", "Parameters", "Type", "Copy", "Owned", "Lifetime"})
	for _, a := range tables.UserAliases() {
		aliases.AppendRow(table.Row{a.Name, strings.Join(a.Parameters, " "), typeText(a.Type),
			a.IsCopy, a.HasOwnedRepresentation, a.HasLifetimeParameter})
	}
	aliases.Render()

	choices := newTable(w, "Choice types", table.Row{"Name", "Rust", "Parameters", "Variants", "Copy", "Owned", "Lifetime"})
	for _, c := range tables.UserChoices() {
		var variants []string
		for _, v := range c.Variants {
			if v.HasPayload {
				variants = append(variants, v.Name+" "+typeText(v.Value))
			} else {
				variants = append(variants, v.Name)
			}
		}
		choices.AppendRow(table.Row{c.Name, c.RustName, strings.Join(c.Parameters, " "), strings.Join(variants, " | "),
			c.IsCopy, c.HasOwnedRepresentation, c.HasLifetimeParameter})
	}
	choices.Render()

	variables := newTable(w, "Variables", table.Row{"Name", "Rust", "Kind", "Type", "Allocator"})
	for _, v := range tables.UserVariables() {
		variables.AppendRow(table.Row{v.Name, v.RustName, v.Kind, typeText(v.Type), v.HasAllocatorParameter})
	}
	variables.Render()
}

func newTable(w io.Writer, title string, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(header)
	return t
}

func typeText(t typesystem.Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}
