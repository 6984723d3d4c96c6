// File: cmd/server/backup.go
package main

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	restoreCollections []string
	pruneKeep          int
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, list, restore and prune document store backups",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Export the configured collections to a new backup",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withTools(cmd, func(ctx context.Context, t *tools) error {
			info, err := t.Backups.Create(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("created %s (%d bytes)\n", info.Name, info.Size)
			printCounts(cmd, info.Documents)
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withTools(cmd, func(ctx context.Context, t *tools) error {
			infos, err := t.Backups.List(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCREATED AT\tSIZE")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%d\n", info.Name, info.CreatedAt.Format(time.RFC3339), info.Size)
			}
			return w.Flush()
		})
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore NAME",
	Short: "Write the documents of a backup back into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTools(cmd, func(ctx context.Context, t *tools) error {
			result, err := t.Backups.Restore(ctx, args[0], restoreCollections)
			if err != nil {
				return err
			}
			cmd.Printf("restored %s\n", result.Name)
			printCounts(cmd, result.Documents)
			return nil
		})
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest backups",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withTools(cmd, func(ctx context.Context, t *tools) error {
			deleted, err := t.Backups.Prune(ctx, pruneKeep)
			if err != nil {
				return err
			}
			for _, name := range deleted {
				cmd.Printf("deleted %s\n", name)
			}
			cmd.Printf("%d backups deleted\n", len(deleted))
			return nil
		})
	},
}

func printCounts(cmd *cobra.Command, counts map[string]int) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd.Printf("  %s: %d documents\n", name, counts[name])
	}
}

func init() {
	backupRestoreCmd.Flags().StringSliceVarP(&restoreCollections, "collections", "c", nil, "collections to restore (default: all in the backup)")
	backupPruneCmd.Flags().IntVarP(&pruneKeep, "keep", "k", 7, "number of newest backups to keep")
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd, backupPruneCmd)
}
