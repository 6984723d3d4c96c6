// File: internal/docstore/sql.go
package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travel_agent_backend/internal/config"
	"travel_agent_backend/internal/platform/database"
)

// documentRow is one document in the documents table.
type documentRow struct {
	Collection string `gorm:"primaryKey;size:255"`
	ID         string `gorm:"primaryKey;size:255"`
	Data       string `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRow) TableName() string { return "documents" }

// SQLStore keeps documents as JSON in a single SQL table. Queries load the
// collection and filter in memory, which suits local development and tests.
type SQLStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLStore wraps an open GORM connection whose schema is already migrated.
func NewSQLStore(db *gorm.DB, logger *zap.Logger) *SQLStore {
	return &SQLStore{db: db, logger: logger.Named("SQLStore")}
}

// OpenSQLite opens (or creates) a SQLite database at path, applies the schema and returns a store.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLStore, error) {
	cfg := &config.Config{DocstoreBackend: config.BackendSQLite, SQLitePath: path, LogLevel: "silent"}
	db, err := database.NewGORM(cfg, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := database.MigrateSchema(ctx, sqlDB, config.BackendSQLite, nil); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return NewSQLStore(db, logger), nil
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var row documentRow
	err := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting %s/%s: %w", collection, id, err)
	}
	return rowToDocument(&row)
}

func (s *SQLStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	return setRow(s.db.WithContext(ctx), collection, id, data)
}

func (s *SQLStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateRow(tx, collection, id, fields)
	})
}

func (s *SQLStore) UpdateFunc(ctx context.Context, collection, id string, fn Mutator) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("collection = ? AND id = ?", collection, id)
		if tx.Dialector.Name() == "postgres" {
			// SQLite runs on a single connection and serializes transactions already.
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var row documentRow
		if err := q.First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("loading %s/%s for update: %w", collection, id, err)
		}
		doc, err := rowToDocument(&row)
		if err != nil {
			return err
		}
		fields, err := fn(doc)
		if err != nil || len(fields) == 0 {
			return err
		}
		return updateRow(tx, collection, id, fields)
	})
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	return deleteRow(s.db.WithContext(ctx), collection, id)
}

func (s *SQLStore) List(ctx context.Context, collection string, q Query) ([]*Document, error) {
	docs, err := s.load(ctx, collection, q)
	if err != nil {
		return nil, err
	}

	if q.OrderBy != "" {
		ordered := docs[:0]
		for _, d := range docs {
			if _, ok := getPath(d.Data, q.OrderBy); ok {
				ordered = append(ordered, d)
			}
		}
		docs = ordered
		sort.SliceStable(docs, func(i, j int) bool {
			a, _ := getPath(docs[i].Data, q.OrderBy)
			b, _ := getPath(docs[j].Data, q.OrderBy)
			c, ok := compareValues(a, b)
			if !ok || c == 0 {
				return docs[i].ID < docs[j].ID
			}
			if q.Direction == Desc {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(docs) {
			return []*Document{}, nil
		}
		docs = docs[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(docs) {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (s *SQLStore) Count(ctx context.Context, collection string, q Query) (int64, error) {
	docs, err := s.load(ctx, collection, q)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// load returns the collection's documents matching q's filters, ordered by id.
func (s *SQLStore) load(ctx context.Context, collection string, q Query) ([]*Document, error) {
	var rows []documentRow
	if err := s.db.WithContext(ctx).Where("collection = ?", collection).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}

	filters := make([]Filter, len(q.Filters))
	for i, f := range q.Filters {
		filters[i] = Filter{Field: f.Field, Value: Normalize(f.Value)}
	}

	docs := make([]*Document, 0, len(rows))
	for i := range rows {
		doc, err := rowToDocument(&rows[i])
		if err != nil {
			return nil, err
		}
		if matches(doc.Data, filters) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *SQLStore) Batch() Batch {
	return &sqlBatch{db: s.db}
}

func (s *SQLStore) Collections(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&documentRow{}).Distinct("collection").Order("collection").Pluck("collection", &names).Error
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	return names, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type sqlBatch struct {
	opQueue
	db *gorm.DB
}

func (b *sqlBatch) Commit(ctx context.Context) error {
	for i, chunk := range b.chunks() {
		err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, op := range chunk {
				var err error
				switch op.kind {
				case opSet:
					err = setRow(tx, op.collection, op.id, op.data)
				case opUpdate:
					err = updateRow(tx, op.collection, op.id, op.data)
				case opDelete:
					err = deleteRow(tx, op.collection, op.id)
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("committing batch chunk %d: %w", i, err)
		}
	}
	return nil
}

func setRow(db *gorm.DB, collection, id string, data map[string]interface{}) error {
	raw, err := MarshalData(data)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, id, err)
	}
	now := time.Now().UTC()
	row := documentRow{Collection: collection, ID: id, Data: string(raw), CreatedAt: now, UpdatedAt: now}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("setting %s/%s: %w", collection, id, err)
	}
	return nil
}

func updateRow(db *gorm.DB, collection, id string, fields map[string]interface{}) error {
	var row documentRow
	err := db.Where("collection = ? AND id = ?", collection, id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("loading %s/%s for update: %w", collection, id, err)
	}

	data, err := UnmarshalData([]byte(row.Data))
	if err != nil {
		return err
	}
	for path, value := range fields {
		setPath(data, path, value)
	}
	raw, err := MarshalData(data)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, id, err)
	}

	err = db.Model(&documentRow{}).
		Where("collection = ? AND id = ?", collection, id).
		Updates(map[string]interface{}{"data": string(raw), "updated_at": time.Now().UTC()}).Error
	if err != nil {
		return fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}
	return nil
}

func deleteRow(db *gorm.DB, collection, id string) error {
	if err := db.Where("collection = ? AND id = ?", collection, id).Delete(&documentRow{}).Error; err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

func rowToDocument(row *documentRow) (*Document, error) {
	data, err := UnmarshalData([]byte(row.Data))
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", row.Collection, row.ID, err)
	}
	return &Document{ID: row.ID, Data: data, CreateTime: row.CreatedAt, UpdateTime: row.UpdatedAt}, nil
}

func matches(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		v, ok := getPath(data, f.Field)
		if !ok || !valuesEqual(v, f.Value) {
			return false
		}
	}
	return true
}
