package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/kassa/internal/cli"
	"github.com/Veraticus/kassa/internal/config"
	"github.com/Veraticus/kassa/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Bring the database schema up to date.

Every command migrates the database on open; run this explicitly after an
upgrade, or with --status to see what would change.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbPath, err := config.DatabasePath(viper.GetViper())
			if err != nil {
				return err
			}

			// Opened without initStorage so --status leaves the schema alone.
			store, err := storage.NewSQLiteStorage(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			current, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			pending, err := store.PendingMigrations(ctx)
			if err != nil {
				return err
			}

			if status {
				fmt.Fprintf(out(cmd), "Database:       %s\n", dbPath)
				fmt.Fprintf(out(cmd), "Schema version: %d of %d\n", current, storage.ExpectedSchemaVersion)
				if len(pending) == 0 {
					fmt.Fprintln(out(cmd), cli.FormatSuccess("Up to date"))
					return nil
				}
				rows := make([][]string, 0, len(pending))
				for _, m := range pending {
					rows = append(rows, []string{strconv.Itoa(m.Version), m.Description})
				}
				fmt.Fprintln(out(cmd), cli.Table([]string{"Pending", "Description"}, rows))
				return nil
			}

			if len(pending) == 0 {
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Already at schema version %d", current)))
				return nil
			}
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Applied %d migration(s); schema version %d",
				len(pending), storage.ExpectedSchemaVersion)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Show the schema version and pending migrations without migrating")
	return cmd
}
