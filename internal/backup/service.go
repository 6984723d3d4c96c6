// File: internal/backup/service.go
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/docstore"
	"travel_agent_backend/internal/filestorage"
)

// DefaultCollections are exported when no collections are configured.
var DefaultCollections = []string{"users", "itineraries", "chatSessions"}

const readPageSize = docstore.MaxBatchWrites

// Info describes a stored backup.
type Info struct {
	Name      string         `json:"name"`
	Size      int64          `json:"size"`
	CreatedAt time.Time      `json:"created_at"`
	Documents map[string]int `json:"documents,omitempty"`
}

// RestoreResult counts the documents written back per collection.
type RestoreResult struct {
	Name      string         `json:"name"`
	Documents map[string]int `json:"documents"`
}

// Service defines backup operations.
type Service interface {
	Create(ctx context.Context) (*Info, error)
	// Restore writes the archived documents back. An empty collections list restores everything.
	Restore(ctx context.Context, name string, collections []string) (*RestoreResult, error)
	List(ctx context.Context) ([]Info, error)
	// Prune deletes all but the newest keep backups and returns the deleted names.
	Prune(ctx context.Context, keep int) ([]string, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	store       docstore.Store
	storage     filestorage.Storage
	collections []string
	logger      *zap.Logger
	now         func() time.Time
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a backup service exporting collections from store into storage.
func NewService(store docstore.Store, storage filestorage.Storage, collections []string, logger *zap.Logger) *ServiceImplementation {
	if len(collections) == 0 {
		collections = DefaultCollections
	}
	return &ServiceImplementation{
		store:       store,
		storage:     storage,
		collections: collections,
		logger:      logger.Named("BackupService"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *ServiceImplementation) export(ctx context.Context, collection string) ([]archivedDocument, error) {
	out := []archivedDocument{}
	for offset := 0; ; offset += readPageSize {
		docs, err := s.store.List(ctx, collection, docstore.Query{}.Page(offset, readPageSize))
		if err != nil {
			return nil, fmt.Errorf("reading %s at offset %d: %w", collection, offset, err)
		}
		for _, doc := range docs {
			ad, err := newArchiveDocument(doc)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", collection, err)
			}
			out = append(out, ad)
		}
		if len(docs) < readPageSize {
			return out, nil
		}
	}
}

// Create exports the configured collections into a new archive.
func (s *ServiceImplementation) Create(ctx context.Context) (*Info, error) {
	now := s.now()
	a := &archive{
		FormatVersion: FormatVersion,
		CreatedAt:     now,
		Collections:   make(map[string][]archivedDocument, len(s.collections)),
	}
	counts := make(map[string]int, len(s.collections))
	for _, c := range s.collections {
		docs, err := s.export(ctx, c)
		if err != nil {
			s.logger.Error("Backup export failed", zap.String("collection", c), zap.Error(err))
			return nil, err
		}
		a.Collections[c] = docs
		counts[c] = len(docs)
	}

	var buf bytes.Buffer
	if err := writeArchive(&buf, a); err != nil {
		return nil, err
	}
	size := int64(buf.Len())
	name := ArchiveName(now, newArchiveTag())
	if err := s.storage.Save(ctx, name, &buf); err != nil {
		return nil, fmt.Errorf("storing backup %s: %w", name, err)
	}

	s.logger.Info("Backup created", zap.String("name", name), zap.Int64("bytes", size), zap.Any("documents", counts))
	return &Info{Name: name, Size: size, CreatedAt: now, Documents: counts}, nil
}

func (s *ServiceImplementation) Restore(ctx context.Context, name string, collections []string) (*RestoreResult, error) {
	if _, ok := ParseArchiveName(name); !ok {
		return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("%q is not a backup name.", name))
	}
	rc, err := s.storage.Open(ctx, name)
	if err != nil {
		if errors.Is(err, filestorage.ErrNotExist) {
			return nil, common.ErrNotFound.WithDetails("Backup not found.")
		}
		return nil, err
	}
	defer rc.Close()

	a, err := readArchive(rc)
	if err != nil {
		return nil, fmt.Errorf("reading backup %s: %w", name, err)
	}

	if len(collections) == 0 {
		for c := range a.Collections {
			collections = append(collections, c)
		}
		sort.Strings(collections)
	}
	for _, c := range collections {
		if _, ok := a.Collections[c]; !ok {
			return nil, common.ErrBadRequest.WithDetails(fmt.Sprintf("Backup %s has no collection %q.", name, c))
		}
	}

	result := &RestoreResult{Name: name, Documents: make(map[string]int, len(collections))}
	for _, c := range collections {
		batch := s.store.Batch()
		for _, doc := range a.Collections[c] {
			data, err := docstore.UnmarshalData(doc.Data)
			if err != nil {
				return nil, fmt.Errorf("backup %s: %s/%s: %w", name, c, doc.ID, err)
			}
			batch.Set(c, doc.ID, data)
		}
		if err := batch.Commit(ctx); err != nil {
			s.logger.Error("Restore failed", zap.String("name", name), zap.String("collection", c), zap.Error(err))
			return nil, fmt.Errorf("restoring %s from %s: %w", c, name, err)
		}
		result.Documents[c] = len(a.Collections[c])
	}
	s.logger.Info("Backup restored", zap.String("name", name), zap.Any("documents", result.Documents))
	return result, nil
}

// List returns the stored backups, newest first.
func (s *ServiceImplementation) List(ctx context.Context) ([]Info, error) {
	objects, err := s.storage.List(ctx, namePrefix)
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}
	out := make([]Info, 0, len(objects))
	for _, o := range objects {
		t, ok := ParseArchiveName(o.Name)
		if !ok {
			continue
		}
		out = append(out, Info{Name: o.Name, Size: o.Size, CreatedAt: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Name > out[j].Name
	})
	return out, nil
}

// Prune keeps the newest keep backups. keep <= 0 keeps everything.
func (s *ServiceImplementation) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	backups, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var deleted []string
	for i := keep; i < len(backups); i++ {
		if err := s.storage.Delete(ctx, backups[i].Name); err != nil {
			return deleted, fmt.Errorf("pruning %s: %w", backups[i].Name, err)
		}
		deleted = append(deleted, backups[i].Name)
	}
	if len(deleted) > 0 {
		s.logger.Info("Old backups pruned", zap.Strings("deleted", deleted), zap.Int("kept", keep))
	}
	return deleted, nil
}
