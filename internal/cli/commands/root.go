// Package commands implements the mcpgate CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/mcpgate/mcpgate/internal/cli/ui"
)

var rootCmd = &cobra.Command{
	Use:   "mcpgate",
	Short: "Session-isolated gateway for stdio tool servers",
	Long: `mcpgate exposes a stdio-based tool server over a streaming HTTP endpoint.

Every accepted connection gets its own dedicated tool server process with the
connection's access token injected into its environment, so credentials never
leak between concurrent clients. When the connection ends, the process is torn
down with it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := ui.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		return ui.SetGlobalFormatter(format)
	},
}

var outputFormat string

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "", "Output format (pretty, json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(psCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
