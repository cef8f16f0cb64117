package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dataDir string

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "commandlogd",
		Short:         "Append-only, newline-delimited command log server",
		Long:          "commandlogd persists newline-terminated commands received over TCP, echoing the full log back to each client. The chardev-demo command exercises an in-process seekable byte interface over a separate, freshly created bounded log.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for config, telemetry database, and the server log file")

	root.AddCommand(
		newServeCmd(),
		newStatsCmd(),
		newLogsCmd(),
		newCharDevDemoCmd(),
	)

	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
