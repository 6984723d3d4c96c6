// File: cmd/server/schema.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"travel_agent_backend/internal/config"
	"travel_agent_backend/internal/platform/database"
	"travel_agent_backend/internal/platform/logger"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the SQL schema behind the postgres and sqlite document stores",
}

var schemaUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending SQL schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.DocstoreBackend == config.BackendFirestore {
			cmd.Println("firestore backend has no SQL schema")
			return nil
		}
		appLogger, err := logger.New(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = appLogger.Sync() }()

		db, err := database.OpenSchemaDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.MigrateSchema(cmd.Context(), db, cfg.DocstoreBackend, appLogger); err != nil {
			return err
		}
		version, err := database.SchemaVersion(cmd.Context(), db, cfg.DocstoreBackend)
		if err != nil {
			return err
		}
		cmd.Printf("schema is at version %d\n", version)
		return nil
	},
}

func init() {
	schemaCmd.AddCommand(schemaUpCmd)
}
