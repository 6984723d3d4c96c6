// File: internal/migration/runner.go
package migration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"travel_agent_backend/internal/docstore"
)

// CollectionName records which migrations have been applied, one document per version.
const CollectionName = "_migrations"

var (
	// ErrIrreversible is returned by Rollback when the latest migration has no Down step.
	ErrIrreversible = errors.New("migration cannot be rolled back")
	// ErrNothingApplied is returned by Rollback when no migration has been applied.
	ErrNothingApplied = errors.New("no applied migrations")
)

// Func is one direction of a migration.
type Func func(ctx context.Context, store docstore.Store) error

// Migration is a versioned change to the stored documents.
type Migration struct {
	Version int
	Name    string
	Up      Func
	// Down is optional.
	Down Func
}

// Record is the stored trace of an applied migration.
type Record struct {
	Version   int       `json:"version"`
	Name      string    `json:"name"`
	AppliedAt time.Time `json:"applied_at"`
}

// Status describes one registered migration.
type Status struct {
	Version   int        `json:"version"`
	Name      string     `json:"name"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
	// Reversible reports whether the migration has a Down step.
	Reversible bool `json:"reversible"`
}

// Runner applies registered migrations in version order.
type Runner struct {
	store      docstore.Store
	migrations map[int]Migration
	logger     *zap.Logger
	now        func() time.Time
}

// NewRunner creates a runner with no registered migrations.
func NewRunner(store docstore.Store, logger *zap.Logger) *Runner {
	return &Runner{
		store:      store,
		migrations: map[int]Migration{},
		logger:     logger.Named("MigrationRunner"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register adds migrations. Versions must be positive and unique.
func (r *Runner) Register(migrations ...Migration) error {
	for _, m := range migrations {
		if m.Version <= 0 {
			return fmt.Errorf("migration %q: version must be positive", m.Name)
		}
		if m.Up == nil {
			return fmt.Errorf("migration %d (%s): missing Up", m.Version, m.Name)
		}
		if existing, ok := r.migrations[m.Version]; ok {
			return fmt.Errorf("migration %d (%s): version already registered by %q", m.Version, m.Name, existing.Name)
		}
		r.migrations[m.Version] = m
	}
	return nil
}

// sorted returns the registered migrations in ascending version order.
func (r *Runner) sorted() []Migration {
	out := make([]Migration, 0, len(r.migrations))
	for _, m := range r.migrations {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

func (r *Runner) applied(ctx context.Context) (map[int]Record, error) {
	docs, err := r.store.List(ctx, CollectionName, docstore.Query{})
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}
	out := make(map[int]Record, len(docs))
	for _, doc := range docs {
		var rec Record
		if err := docstore.Decode(doc.Data, &rec); err != nil {
			return nil, fmt.Errorf("decoding migration record %s: %w", doc.ID, err)
		}
		if rec.Version == 0 {
			v, err := strconv.Atoi(doc.ID)
			if err != nil {
				r.logger.Warn("Ignoring unrecognized migration record", zap.String("id", doc.ID))
				continue
			}
			rec.Version = v
		}
		out[rec.Version] = rec
	}
	return out, nil
}

// Up applies every pending migration in ascending version order. It stops at the
// first failure; migrations applied before it stay recorded.
func (r *Runner) Up(ctx context.Context) ([]Record, error) {
	done, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}

	var ran []Record
	for _, m := range r.sorted() {
		if _, ok := done[m.Version]; ok {
			continue
		}
		r.logger.Info("Applying migration", zap.Int("version", m.Version), zap.String("name", m.Name))
		start := time.Now()
		if err := m.Up(ctx, r.store); err != nil {
			r.logger.Error("Migration failed", zap.Int("version", m.Version), zap.String("name", m.Name), zap.Error(err))
			return ran, fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}

		rec := Record{Version: m.Version, Name: m.Name, AppliedAt: r.now()}
		if err := r.store.Set(ctx, CollectionName, strconv.Itoa(m.Version), map[string]interface{}{
			"version":    int64(rec.Version),
			"name":       rec.Name,
			"applied_at": rec.AppliedAt,
		}); err != nil {
			return ran, fmt.Errorf("recording migration %d (%s): %w", m.Version, m.Name, err)
		}
		r.logger.Info("Migration applied", zap.Int("version", m.Version), zap.Duration("took", time.Since(start)))
		ran = append(ran, rec)
	}
	if len(ran) == 0 {
		r.logger.Info("No pending migrations")
	}
	return ran, nil
}

// Status lists every registered migration with its applied state.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	done, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	sorted := r.sorted()
	out := make([]Status, 0, len(sorted))
	for _, m := range sorted {
		st := Status{Version: m.Version, Name: m.Name, Reversible: m.Down != nil}
		if rec, ok := done[m.Version]; ok {
			st.Applied = true
			at := rec.AppliedAt
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}

// Rollback reverts the most recently applied migration, by version.
func (r *Runner) Rollback(ctx context.Context) (*Record, error) {
	done, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	latest := 0
	for v := range done {
		if v > latest {
			latest = v
		}
	}
	if latest == 0 {
		return nil, ErrNothingApplied
	}

	m, ok := r.migrations[latest]
	if !ok {
		return nil, fmt.Errorf("migration %d is applied but not registered", latest)
	}
	if m.Down == nil {
		return nil, fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, ErrIrreversible)
	}

	r.logger.Info("Rolling back migration", zap.Int("version", m.Version), zap.String("name", m.Name))
	if err := m.Down(ctx, r.store); err != nil {
		return nil, fmt.Errorf("rollback of migration %d (%s) failed: %w", m.Version, m.Name, err)
	}
	if err := r.store.Delete(ctx, CollectionName, strconv.Itoa(m.Version)); err != nil {
		return nil, fmt.Errorf("removing record of migration %d: %w", m.Version, err)
	}
	rec := done[latest]
	return &rec, nil
}
