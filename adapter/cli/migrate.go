package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		dbConfig, err := database.ConfigFrom(cfg)
		if err != nil {
			return err
		}
		conn, err := database.NewConnection(ctx, dbConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() { _ = conn.Close() }()

		applied, err := migrations.NewRunner(conn, logger).Up(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(applied) == 0 {
			fmt.Fprintln(out, "database is up to date")
			return nil
		}
		for _, version := range applied {
			fmt.Fprintf(out, "applied %s\n", version)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
