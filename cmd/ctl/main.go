// Command ctl is the operator CLI: schema migrations, account seeding and
// draw reports against the configured database.
package main

import (
	"fmt"
	"os"

	"membership_webapp/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	rootCmd := &cobra.Command{
		Use:           "ctl",
		Short:         "Operator tools for the membership backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("database-url", "", "postgres URL (defaults to $DATABASE_URL)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createUserCmd())
	rootCmd.AddCommand(ticketsCmd())
	rootCmd.AddCommand(commissionsCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(paymentCmd())
	rootCmd.AddCommand(tipsCmd())
	rootCmd.AddCommand(auditCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func databaseURL(cmd *cobra.Command) (string, error) {
	dsn, _ := cmd.Flags().GetString("database-url")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return "", fmt.Errorf("DATABASE_URL not set")
	}
	return dsn, nil
}
