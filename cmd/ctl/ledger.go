package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"membership_webapp/internal/db"
	"membership_webapp/internal/domain"
	"membership_webapp/internal/repository"
	"membership_webapp/internal/service"

	"github.com/spf13/cobra"
)

func paymentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payment <order-id>",
		Short: "Show the payment recorded for a PayPal order id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := databaseURL(cmd)
			if err != nil {
				return err
			}

			pool := db.Connect(dsn)
			defer pool.Close()

			p, err := repository.NewPaymentRepository(pool).GetByOrderID(cmd.Context(), args[0])
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("no payment for order %q", args[0])
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "id\t%d\n", p.ID)
			fmt.Fprintf(w, "user id\t%d\n", p.UserID)
			fmt.Fprintf(w, "amount\t%s %s\n", p.Amount.StringFixed(2), p.Currency)
			fmt.Fprintf(w, "status\t%s\n", p.Status)
			fmt.Fprintf(w, "type\t%s\n", p.PaymentType)
			fmt.Fprintf(w, "capture\t%s\n", p.CaptureID)
			fmt.Fprintf(w, "created\t%s\n", p.CreatedAt.Format(time.RFC3339))
			return w.Flush()
		},
	}
}

func tipsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tips",
		Short: "List recent tips sent or received by a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			tipper, _ := cmd.Flags().GetString("tipper")
			tipped, _ := cmd.Flags().GetString("tipped")
			limit, _ := cmd.Flags().GetInt("limit")
			if (tipper == "") == (tipped == "") {
				return fmt.Errorf("exactly one of --tipper or --tipped is required")
			}

			dsn, err := databaseURL(cmd)
			if err != nil {
				return err
			}

			pool := db.Connect(dsn)
			defer pool.Close()

			ctx := cmd.Context()
			u, err := lookupUser(cmd, repository.NewUserRepository(pool), tipper+tipped)
			if err != nil {
				return err
			}

			repo := repository.NewTipRepository(pool)
			var tips []*domain.TipTransaction
			if tipper != "" {
				tips, err = repo.ListByTipper(ctx, u.ID, limit)
			} else {
				tips, err = repo.ListByTipped(ctx, u.ID, limit)
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPAYMENT\tTIPPER\tTIPPED\tAMOUNT\tTICKETS\tREFERRER\tCOMMISSION\tCOMPLETED")
			for _, t := range tips {
				fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
					t.ID, t.PaymentID, t.TipperID, t.TippedUsername, t.Amount.StringFixed(2),
					t.TicketsGenerated, t.ReferrerUsername, t.ReferrerCommission.StringFixed(2),
					t.CompletedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("tipper", "", "username of the sender")
	cmd.Flags().String("tipped", "", "username of the recipient")
	cmd.Flags().IntP("limit", "n", 50, "maximum rows")

	return cmd
}

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show audit log entries for a user or category",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("user")
			category, _ := cmd.Flags().GetString("category")
			limit, _ := cmd.Flags().GetInt("limit")
			if (username == "") == (category == "") {
				return fmt.Errorf("exactly one of --user or --category is required")
			}

			dsn, err := databaseURL(cmd)
			if err != nil {
				return err
			}

			pool := db.Connect(dsn)
			defer pool.Close()

			ctx := cmd.Context()
			audit := service.NewAuditService(pool)

			var logs []*domain.AuditLog
			if username != "" {
				u, err := lookupUser(cmd, repository.NewUserRepository(pool), username)
				if err != nil {
					return err
				}
				logs, err = audit.GetUserAuditLogs(ctx, u.ID, limit)
				if err != nil {
					return err
				}
			} else {
				if logs, err = audit.GetLogsByCategory(ctx, category, limit); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tUSER ID\tCATEGORY\tACTION\tIP\tDETAILS")
			for _, l := range logs {
				details, _ := json.Marshal(l.Details)
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
					l.CreatedAt.Format(time.RFC3339), l.UserID, l.Category, l.Action, l.IP, details)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringP("user", "u", "", "username whose entries to show")
	cmd.Flags().StringP("category", "c", "", "auth, payment or media")
	cmd.Flags().IntP("limit", "n", 50, "maximum rows")

	return cmd
}

func lookupUser(cmd *cobra.Command, users *repository.UserRepository, username string) (*domain.User, error) {
	u, err := users.GetByUsername(cmd.Context(), username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("user %q not found", username)
	}
	return u, err
}
