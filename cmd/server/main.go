// File: cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"travel_agent_backend/internal/backup"
	"travel_agent_backend/internal/config"
	"travel_agent_backend/internal/docstore"
	"travel_agent_backend/internal/itinerary"
	"travel_agent_backend/internal/migration"
	platformElasticsearch "travel_agent_backend/internal/platform/elasticsearch"
)

// tools are the services the maintenance commands run against.
type tools struct {
	Logger      *zap.Logger
	Store       docstore.Store
	Migrations  *migration.Runner
	Backups     backup.Service
	Itineraries itinerary.Service
}

var rootCmd = &cobra.Command{
	Use:           "travel-agent",
	Short:         "Travel Agent backend",
	Long:          `API server and maintenance commands for the travel agent backend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return startServer(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(syncItinerariesCmd)
}

func main() {
	// Running the binary without a subcommand starts the server.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, serveCmd.Use)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Printf("FATAL: %v", err)
		os.Exit(1)
	}
}

func startServer(ctx context.Context, cfg *config.Config) error {
	server, cleanup, err := initializeServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	defer cleanup()

	if server.ESClient != nil && server.ESClient.Enabled() {
		if err := platformElasticsearch.EnsureIndex(ctx, server.ESClient, platformElasticsearch.ItinerariesIndexName,
			platformElasticsearch.ItinerariesMapping(), server.AppLogger); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch itineraries index; search stays unavailable until it exists", zap.Error(err))
		}
	} else {
		server.AppLogger.Info("Elasticsearch client not enabled, skipping index creation.")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed to start or crashed: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
		return err
	}
	if err := <-serverErr; err != nil {
		return err
	}
	log.Println("INFO: Server shutdown complete.")
	return nil
}

// withTools loads the configuration, builds the maintenance services and runs fn.
func withTools(cmd *cobra.Command, fn func(ctx context.Context, t *tools) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx := cmd.Context()
	t, cleanup, err := initializeTools(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cleanup()
	return fn(ctx, t)
}
