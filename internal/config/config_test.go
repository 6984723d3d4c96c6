package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SQLiteDefaults(t *testing.T) {
	t.Setenv("DOCSTORE_BACKEND", "SQLite")
	t.Setenv("BACKUP_STORAGE", "local")
	t.Setenv("TRAVEL_API_CACHE_TTL_SECONDS", "120")
	t.Setenv("BACKUP_COLLECTIONS", "users, itineraries")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.DocstoreBackend)
	assert.Equal(t, "2m0s", cfg.TravelAPICacheTTL.String())
	assert.Equal(t, []string{"users", "itineraries"}, cfg.BackupCollections)
	assert.Equal(t, 500, cfg.MigrationBatchSize)
	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress())
	assert.Contains(t, cfg.DBSource, "dbname=travel_agent_db")
}

func TestLoad_FirestoreRequiresServiceAccount(t *testing.T) {
	t.Setenv("DOCSTORE_BACKEND", "firestore")
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_SERVICE_ACCOUNT_KEY_PATH")
}

func TestValidate(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(keyPath, []byte("{}"), 0o600))

	valid := func() Config {
		return Config{
			DocstoreBackend:               BackendFirestore,
			FirebaseServiceAccountKeyPath: keyPath,
			BackupStorage:                 BackupStorageLocal,
			BackupDir:                     "./backups",
			MigrationBatchSize:            500,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.DocstoreBackend = "mongo" }, wantErr: "DOCSTORE_BACKEND"},
		{name: "gcs without bucket", mutate: func(c *Config) { c.BackupStorage = BackupStorageGCS }, wantErr: "FIREBASE_STORAGE_BUCKET"},
		{name: "batch too large", mutate: func(c *Config) { c.MigrationBatchSize = 501 }, wantErr: "MIGRATION_BATCH_SIZE"},
		{name: "missing key file", mutate: func(c *Config) { c.FirebaseServiceAccountKeyPath = "/nope/sa.json" }, wantErr: "not found"},
		{name: "sqlite skips firebase", mutate: func(c *Config) {
			c.DocstoreBackend = BackendSQLite
			c.FirebaseServiceAccountKeyPath = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
