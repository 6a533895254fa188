package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"membership_webapp/internal/db"
	"membership_webapp/internal/service"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print platform statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := databaseURL(cmd)
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")

			loc := time.Local
			if tz := os.Getenv("DRAW_TIMEZONE"); tz != "" {
				if loc, err = time.LoadLocation(tz); err != nil {
					return fmt.Errorf("invalid DRAW_TIMEZONE: %w", err)
				}
			}

			pool := db.Connect(dsn)
			defer pool.Close()

			stats, err := service.NewAdminService(pool, loc).GetStats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			fmt.Fprintf(out, "users:      %d total, %d new today\n", stats.TotalUsers, stats.NewUsersToday)
			fmt.Fprintf(out, "members:    %d silver plus, %d diamond plus\n", stats.SilverPlusMembers, stats.DiamondMembers)
			fmt.Fprintf(out, "tips:       %d total (%s), %d today (%s)\n",
				stats.TipsTotal, stats.TippedTotal.StringFixed(2), stats.TipsToday, stats.TippedToday.StringFixed(2))
			fmt.Fprintf(out, "next draw:  %s, %d tickets\n", stats.NextDraw.Format(time.RFC3339), stats.NextDrawTickets)
			fmt.Fprintf(out, "payouts:    %d pending (%s)\n", stats.PendingPayouts, stats.PendingPayoutSum.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().BoolP("json", "j", false, "output as JSON")
	return cmd
}
