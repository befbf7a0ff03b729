package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "defectlog",
		Short: "Log production defect observations and export them as reports",
		Long: `defectlog keeps a running list of defect observations (time, quality
percentage, occurrence) in a local JSON file and writes CSV and text
reports from it, on demand or at fixed times of day.

Run "defectlog serve" to start the MCP server with the export scheduler.
The other commands work directly on the record file. While serve is running,
add, edit, clear and export refuse to run; use the server's tools instead.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default: $DEFECTLOG_CONFIG_PATH)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newAddCmd(opts))
	root.AddCommand(newEditCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newClearCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newNextCmd(opts))

	return root
}

func warnf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}
