// File: cmd/server/providers.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	fb "firebase.google.com/go/v4"
	"go.uber.org/zap"

	"travel_agent_backend/internal/auth"
	"travel_agent_backend/internal/backup"
	"travel_agent_backend/internal/config"
	"travel_agent_backend/internal/docstore"
	"travel_agent_backend/internal/filestorage"
	"travel_agent_backend/internal/firebase"
	"travel_agent_backend/internal/migration"
	"travel_agent_backend/internal/platform/database"
	"travel_agent_backend/internal/platform/logger"
)

// backupObjectPrefix is the folder backups live under in the storage bucket.
const backupObjectPrefix = "backups"

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	appLogger, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := appLogger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}
	return appLogger, cleanup, nil
}

// provideFirebaseApp is used by the HTTP server, which always verifies ID tokens.
func provideFirebaseApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*fb.App, error) {
	return firebase.NewApp(ctx, cfg, logger)
}

// provideOptionalFirebaseApp returns nil when neither the document store nor backups live in Firebase.
func provideOptionalFirebaseApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*fb.App, error) {
	if !cfg.NeedsFirebaseAdmin() {
		return nil, nil
	}
	return firebase.NewApp(ctx, cfg, logger)
}

func provideStore(ctx context.Context, cfg *config.Config, app *fb.App, logger *zap.Logger) (docstore.Store, func(), error) {
	if cfg.DocstoreBackend == config.BackendFirestore {
		if app == nil {
			return nil, nil, errors.New("firestore backend needs the Firebase Admin SDK")
		}
		client, err := firebase.NewFirestoreClient(ctx, app)
		if err != nil {
			return nil, nil, err
		}
		store := docstore.NewFirestoreStore(client, logger)
		cleanup := func() {
			if err := store.Close(); err != nil {
				logger.Error("Error closing Firestore client", zap.Error(err))
			}
		}
		return store, cleanup, nil
	}

	db, err := database.NewGORM(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		database.CloseGORMDB(db, logger)
		return nil, nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := database.MigrateSchema(ctx, sqlDB, cfg.DocstoreBackend, logger); err != nil {
		database.CloseGORMDB(db, logger)
		return nil, nil, err
	}
	return docstore.NewSQLStore(db, logger), func() { database.CloseGORMDB(db, logger) }, nil
}

func provideBackupStorage(ctx context.Context, cfg *config.Config, app *fb.App, logger *zap.Logger) (filestorage.Storage, error) {
	if cfg.BackupStorage == config.BackupStorageGCS {
		if app == nil {
			return nil, errors.New("gcs backup storage needs the Firebase Admin SDK")
		}
		bucket, err := firebase.NewStorageBucket(ctx, app, cfg.FirebaseStorageBucket)
		if err != nil {
			return nil, err
		}
		return filestorage.NewGCSStorage(bucket, backupObjectPrefix, logger), nil
	}
	return filestorage.NewLocalStorage(cfg.BackupDir, logger)
}

func provideBackupService(store docstore.Store, storage filestorage.Storage, cfg *config.Config, logger *zap.Logger) *backup.ServiceImplementation {
	return backup.NewService(store, storage, cfg.BackupCollections, logger)
}

func provideMigrationRunner(store docstore.Store, cfg *config.Config, logger *zap.Logger) (*migration.Runner, error) {
	runner := migration.NewRunner(store, logger)
	if err := runner.Register(migration.Builtin(cfg.MigrationBatchSize)...); err != nil {
		return nil, err
	}
	return runner, nil
}

func provideIdentityToolkit(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*auth.IdentityToolkitClient, error) {
	return auth.NewIdentityToolkitClient(ctx, cfg, logger)
}
