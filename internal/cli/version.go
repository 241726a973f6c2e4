package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/still/internal/config"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "still v%s\n", config.Version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "runtime API %s\n", config.RuntimeAPIVersion)
		},
	}
}
