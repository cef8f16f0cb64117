package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/commandlogd/commandlogd/internal/config"
	"github.com/commandlogd/commandlogd/internal/metrics"
)

func newStatsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recent session telemetry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(effectiveDataDir())
			if err != nil {
				return err
			}

			store, err := metrics.Open(cfg.MetricsDBPath())
			if err != nil {
				return fmt.Errorf("opening telemetry store: %w (has the server run at least once?)", err)
			}
			defer store.Close()

			sessions, err := store.RecentSessions(limit)
			if err != nil {
				return fmt.Errorf("loading sessions: %w", err)
			}

			ticks, err := store.TickCount()
			if err != nil {
				return fmt.Errorf("loading tick count: %w", err)
			}

			fmt.Printf("Ticker appends: %d\n\n", ticks)
			fmt.Println("Sessions:")
			for _, s := range sessions {
				status := "open"
				if s.ClosedAt != nil {
					status = s.ClosedAt.Format("15:04:05")
				}
				fmt.Printf("  %s  %-21s  opened=%s  closed=%-8s  commands=%d  bytes=%d\n",
					s.ID[:8], s.RemoteAddr, s.OpenedAt.Format("15:04:05"), status, s.CommandsCount, s.BytesWritten)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of sessions to show")
	return cmd
}
