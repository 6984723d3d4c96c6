package backup

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/docstore"
	"travel_agent_backend/internal/filestorage"
)

type fixture struct {
	store   docstore.Store
	storage *filestorage.LocalStorage
	svc     *ServiceImplementation
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := docstore.NewMemoryStore(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	storage, err := filestorage.NewLocalStorage(filepath.Join(t.TempDir(), "backups"), zap.NewNop())
	require.NoError(t, err)

	f := &fixture{store: store, storage: storage, clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.svc = NewService(store, storage, nil, zap.NewNop())
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) tick() { f.clock = f.clock.Add(time.Hour) }

func TestArchiveName(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 5, 0, time.FixedZone("X", 3600))
	name := ArchiveName(at, "0a1b2c3d")
	assert.Equal(t, "backup-20260301T113005Z-0a1b2c3d.json.gz", name)

	for _, n := range []string{name, ArchiveName(at, "")} {
		parsed, ok := ParseArchiveName(n)
		require.True(t, ok, n)
		assert.True(t, parsed.Equal(at), n)
	}

	for _, bad := range []string{
		"backup.json.gz", "backup-2026.json.gz", "../backup-20260301T113005Z.json.gz", "backup-20261301T113005Z.json.gz",
		"backup-20260301T113005Z-XYZ.json.gz", "backup-20260301T113005Z-0a1b2c3d4e.json.gz",
	} {
		_, ok := ParseArchiveName(bad)
		assert.False(t, ok, bad)
	}
}

func TestCreateAndRestore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	joined := time.Date(2025, 12, 24, 8, 0, 0, 0, time.UTC)
	require.NoError(t, f.store.Set(ctx, "users", "u1", map[string]interface{}{
		"email": "a@example.com", "created_at": joined, "preferences": map[string]interface{}{"currency": "EUR"},
	}))
	require.NoError(t, f.store.Set(ctx, "itineraries", "i1", map[string]interface{}{"title": "Oslo", "travelers": int64(2)}))

	info, err := f.svc.Create(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^backup-20260301T120000Z-[0-9a-f]{8}\.json\.gz$`, info.Name)
	assert.Equal(t, 1, info.Documents["users"])
	assert.Equal(t, 0, info.Documents["chatSessions"])
	assert.Positive(t, info.Size)

	// Damage the data, then restore.
	require.NoError(t, f.store.Delete(ctx, "users", "u1"))
	require.NoError(t, f.store.Update(ctx, "itineraries", "i1", map[string]interface{}{"title": "Changed"}))

	result, err := f.svc.Restore(ctx, info.Name, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"users": 1, "itineraries": 1, "chatSessions": 0}, result.Documents)

	doc, err := f.store.Get(ctx, "users", "u1")
	require.NoError(t, err)
	createdAt, ok := doc.Data["created_at"].(time.Time)
	require.True(t, ok, "timestamps restore as time.Time")
	assert.True(t, joined.Equal(createdAt))
	assert.Equal(t, "EUR", doc.Data["preferences"].(map[string]interface{})["currency"])

	doc, err = f.store.Get(ctx, "itineraries", "i1")
	require.NoError(t, err)
	assert.Equal(t, "Oslo", doc.Data["title"])
	assert.Equal(t, int64(2), doc.Data["travelers"])
}

func TestRestore_SelectedCollections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Set(ctx, "users", "u1", map[string]interface{}{"email": "a@example.com"}))
	require.NoError(t, f.store.Set(ctx, "itineraries", "i1", map[string]interface{}{"title": "Oslo"}))
	info, err := f.svc.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, f.store.Delete(ctx, "users", "u1"))
	require.NoError(t, f.store.Delete(ctx, "itineraries", "i1"))

	_, err = f.svc.Restore(ctx, info.Name, []string{"users"})
	require.NoError(t, err)
	_, err = f.store.Get(ctx, "users", "u1")
	assert.NoError(t, err)
	_, err = f.store.Get(ctx, "itineraries", "i1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = f.svc.Restore(ctx, info.Name, []string{"payments"})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestRestore_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Restore(ctx, "../../etc/passwd", nil)
	assert.ErrorIs(t, err, common.ErrBadRequest)

	missing := ArchiveName(f.clock, "0a1b2c3d")
	_, err = f.svc.Restore(ctx, missing, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, f.storage.Save(ctx, missing, bytes.NewReader([]byte("not gzip"))))
	_, err = f.svc.Restore(ctx, missing, nil)
	assert.Error(t, err)
}

func TestCreate_SameSecondKeepsBothArchives(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Set(ctx, "users", "u1", map[string]interface{}{"email": "a@example.com"}))
	first, err := f.svc.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, f.store.Set(ctx, "users", "u2", map[string]interface{}{"email": "b@example.com"}))
	second, err := f.svc.Create(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Name, second.Name)

	backups, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 2)

	require.NoError(t, f.store.Delete(ctx, "users", "u1"))
	require.NoError(t, f.store.Delete(ctx, "users", "u2"))
	result, err := f.svc.Restore(ctx, first.Name, []string{"users"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Documents["users"])
	result, err = f.svc.Restore(ctx, second.Name, []string{"users"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Documents["users"])
}

func TestList_ReadsUntaggedArchives(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Create(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeArchive(&buf, &archive{FormatVersion: FormatVersion, CreatedAt: f.clock, Collections: map[string][]archivedDocument{}}))
	legacy := ArchiveName(f.clock.Add(-time.Hour), "")
	require.NoError(t, f.storage.Save(ctx, legacy, &buf))

	backups, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, legacy, backups[1].Name)
}

func TestListAndPrune(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	var names []string
	for i := 0; i < 4; i++ {
		info, err := f.svc.Create(ctx)
		require.NoError(t, err)
		names = append(names, info.Name)
		f.tick()
	}
	require.NoError(t, f.storage.Save(ctx, "notes.txt", bytes.NewReader([]byte("ignored"))))

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, names[3], list[0].Name)

	deleted, err := f.svc.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, deleted)

	deleted, err = f.svc.Prune(ctx, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{names[0], names[1]}, deleted)

	list, err = f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, names[3], list[0].Name)
	assert.Equal(t, names[2], list[1].Name)
}
