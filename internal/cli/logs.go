package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/commandlogd/commandlogd/internal/config"
)

func newLogsCmd() *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent server log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(effectiveDataDir())
			if err != nil {
				return err
			}

			f, err := os.Open(cfg.LogFilePath())
			if err != nil {
				return fmt.Errorf("opening log file: %w (has the server run at least once?)", err)
			}
			defer f.Close()

			var all []string
			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				all = append(all, scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading log file: %w", err)
			}

			start := len(all) - lines
			if start < 0 {
				start = 0
			}
			for _, line := range all[start:] {
				fmt.Println(line)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 100, "number of log lines to show")
	return cmd
}
