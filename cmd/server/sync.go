// File: cmd/server/sync.go
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncItinerariesCmd = &cobra.Command{
	Use:   "sync-itineraries",
	Short: "Re-index every itinerary into Elasticsearch",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withTools(cmd, func(ctx context.Context, t *tools) error {
			t.Logger.Info("Starting itinerary synchronization to Elasticsearch...")
			stats, err := t.Itineraries.SyncIndex(ctx)
			if err != nil {
				return err
			}
			t.Logger.Info("Itinerary synchronization finished",
				zap.Uint64("indexed", stats.Indexed),
				zap.Uint64("failed", stats.Failed),
			)
			if stats.Failed > 0 {
				return fmt.Errorf("%d itineraries failed to sync", stats.Failed)
			}
			return nil
		})
	},
}
