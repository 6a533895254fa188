package main

import (
	"errors"
	"fmt"

	"membership_webapp/internal/db"
	"membership_webapp/internal/domain"
	"membership_webapp/internal/repository"
	"membership_webapp/internal/service"

	"github.com/spf13/cobra"
)

var tiers = map[string]domain.MembershipTier{
	"free":   domain.MembershipFree,
	"silver": domain.MembershipSilver,
	"gold":   domain.MembershipGold,
}

func createUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-user <username>",
		Short: "Create an account, or report the existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := databaseURL(cmd)
			if err != nil {
				return err
			}
			password, _ := cmd.Flags().GetString("password")
			email, _ := cmd.Flags().GetString("email")
			tierName, _ := cmd.Flags().GetString("tier")

			tier, ok := tiers[tierName]
			if !ok {
				return fmt.Errorf("unknown tier %q", tierName)
			}
			if err := service.ValidatePassword(password); err != nil {
				return err
			}

			pool := db.Connect(dsn)
			defer pool.Close()

			ctx := cmd.Context()
			users := repository.NewUserRepository(pool)

			existing, err := users.GetByUsername(ctx, args[0])
			switch {
			case err == nil:
				fmt.Fprintf(cmd.OutOrStdout(), "user already exists id=%d tier=%s\n", existing.ID, existing.MembershipTier)
				return nil
			case !errors.Is(err, repository.ErrNotFound):
				return err
			}

			hash, err := service.HashPassword(password)
			if err != nil {
				return err
			}
			u := &domain.User{
				Username:       args[0],
				Email:          email,
				PasswordHash:   hash,
				MembershipTier: tier,
			}
			if err := users.Create(ctx, u); err != nil {
				return fmt.Errorf("create user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "user created id=%d username=%s tier=%s\n", u.ID, u.Username, u.MembershipTier)
			return nil
		},
	}

	cmd.Flags().StringP("password", "p", "", "initial password (8-72 bytes)")
	cmd.Flags().StringP("email", "e", "", "contact email")
	cmd.Flags().StringP("tier", "t", "free", "membership tier (free, silver, gold)")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
