package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travel_agent_backend/internal/config"
)

func TestMigrateSchema_SQLite(t *testing.T) {
	cfg := &config.Config{DocstoreBackend: config.BackendSQLite, SQLitePath: "file::memory:?cache=shared", LogLevel: "silent"}
	db, err := NewGORM(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { CloseGORMDB(db, zap.NewNop()) })

	sqlDB, err := db.DB()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, MigrateSchema(ctx, sqlDB, cfg.DocstoreBackend, nil))
	// Running twice is a no-op.
	require.NoError(t, MigrateSchema(ctx, sqlDB, cfg.DocstoreBackend, nil))

	version, err := SchemaVersion(ctx, sqlDB, cfg.DocstoreBackend)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	assert.True(t, db.Migrator().HasTable("documents"))
}

func TestNewGORM_RejectsFirestoreBackend(t *testing.T) {
	_, err := NewGORM(&config.Config{DocstoreBackend: config.BackendFirestore}, zap.NewNop())
	assert.Error(t, err)
}
