package main

import (
	"fmt"

	"membership_webapp/internal/migrations"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := databaseURL(cmd)
			if err != nil {
				return err
			}
			if err := migrations.Up(dsn); err != nil {
				return err
			}
			return printVersion(cmd, dsn)
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := databaseURL(cmd)
			if err != nil {
				return err
			}
			steps, _ := cmd.Flags().GetInt("steps")
			if err := migrations.Down(dsn, steps); err != nil {
				return err
			}
			return printVersion(cmd, dsn)
		},
	}
	down.Flags().Int("steps", 1, "number of migrations to roll back (0 = all)")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := databaseURL(cmd)
			if err != nil {
				return err
			}
			return printVersion(cmd, dsn)
		},
	})

	return cmd
}

func printVersion(cmd *cobra.Command, dsn string) error {
	v, dirty, ok, err := migrations.Version(dsn)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "schema: empty")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema: version %d dirty=%t\n", v, dirty)
	return nil
}
