package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"membership_webapp/internal/db"
	"membership_webapp/internal/domain"
	"membership_webapp/internal/repository"
	"membership_webapp/internal/service"

	"github.com/spf13/cobra"
)

func ticketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "List ticket holders for a drawing",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := databaseURL(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			loc := time.Local
			if tz := os.Getenv("DRAW_TIMEZONE"); tz != "" {
				if loc, err = time.LoadLocation(tz); err != nil {
					return fmt.Errorf("invalid DRAW_TIMEZONE: %w", err)
				}
			}

			drawDate := domain.NextDrawDate(time.Now(), loc)
			if raw, _ := cmd.Flags().GetString("draw"); raw != "" {
				if drawDate, err = time.ParseInLocation(time.RFC3339, raw, loc); err != nil {
					return fmt.Errorf("--draw must be RFC3339: %w", err)
				}
			}

			pool := db.Connect(dsn)
			defer pool.Close()

			tickets := repository.NewTicketRepository(pool)
			summary, err := tickets.Summary(cmd.Context(), drawDate)
			if err != nil {
				return err
			}
			holders, err := service.NewJackpotService(tickets, loc).Holders(cmd.Context(), drawDate, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "draw %s: %d tickets, %s tipped\n\n",
				drawDate.Format(time.RFC3339), summary.TotalTickets, summary.TotalTipped.StringFixed(2))

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USER ID\tUSERNAME\tTICKETS")
			for _, h := range holders {
				fmt.Fprintf(w, "%d\t%s\t%d\n", h.UserID, h.Username, h.Tickets)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("draw", "", "draw date as RFC3339 (defaults to the next drawing)")
	cmd.Flags().IntP("limit", "n", 100, "maximum holders to list")

	return cmd
}

func commissionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commissions",
		Short: "Referral commission payouts",
	}

	pending := &cobra.Command{
		Use:   "pending",
		Short: "List commissions awaiting payout",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := databaseURL(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			pool := db.Connect(dsn)
			defer pool.Close()

			payouts, err := repository.NewCommissionRepository(pool).ListPending(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSER ID\tAMOUNT\tPAYMENT\tCREATED")
			for _, p := range payouts {
				fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%s\n",
					p.ID, p.UserID, p.Amount.StringFixed(2), p.SourcePaymentID, p.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
	pending.Flags().IntP("limit", "n", 100, "maximum rows")
	cmd.AddCommand(pending)

	return cmd
}
