// File: cmd/server/migrate.go
package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"travel_agent_backend/internal/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run document data migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withTools(cmd, func(ctx context.Context, t *tools) error {
			applied, err := t.Migrations.Up(ctx)
			for _, rec := range applied {
				cmd.Printf("applied %d %s\n", rec.Version, rec.Name)
			}
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				cmd.Println("no pending migrations")
			}
			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which migrations are applied",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withTools(cmd, func(ctx context.Context, t *tools) error {
			statuses, err := t.Migrations.Status(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT\tREVERSIBLE")
			for _, st := range statuses {
				appliedAt := "pending"
				if st.AppliedAt != nil {
					appliedAt = st.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", st.Version, st.Name, appliedAt, st.Reversible)
			}
			return w.Flush()
		})
	},
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Revert the most recently applied migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withTools(cmd, func(ctx context.Context, t *tools) error {
			rec, err := t.Migrations.Rollback(ctx)
			if errors.Is(err, migration.ErrNothingApplied) {
				cmd.Println("no applied migrations")
				return nil
			}
			if err != nil {
				return err
			}
			cmd.Printf("rolled back %d %s\n", rec.Version, rec.Name)
			return nil
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd, migrateRollbackCmd)
}
