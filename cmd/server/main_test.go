package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	paths := [][]string{
		{"serve"},
		{"migrate", "up"},
		{"migrate", "status"},
		{"migrate", "rollback"},
		{"backup", "create"},
		{"backup", "list"},
		{"backup", "restore"},
		{"backup", "prune"},
		{"schema", "up"},
		{"sync-itineraries"},
	}
	for _, path := range paths {
		cmd, rest, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Empty(t, rest, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestBackupRestore_RequiresName(t *testing.T) {
	assert.Error(t, backupRestoreCmd.Args(backupRestoreCmd, nil))
	assert.NoError(t, backupRestoreCmd.Args(backupRestoreCmd, []string{"backup-20240101T000000Z.json.gz"}))
}

func TestBackupPrune_DefaultKeep(t *testing.T) {
	flag := backupPruneCmd.Flags().Lookup("keep")
	require.NotNil(t, flag)
	assert.Equal(t, "7", flag.DefValue)
}
