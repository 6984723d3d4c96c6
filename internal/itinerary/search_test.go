package itinerary

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travel_agent_backend/internal/config"
	"travel_agent_backend/internal/platform/elasticsearch"
)

// fakeSearchCluster serves the search, bulk and index-admin endpoints.
type fakeSearchCluster struct {
	mu          sync.Mutex
	lastSearch  map[string]interface{}
	searchCode  int
	searchReply string
	bulkIDs     []string
	indexExists bool
}

func (f *fakeSearchCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/":
		_, _ = io.WriteString(w, `{"version":{"number":"8.18.0"}}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_ = json.NewDecoder(r.Body).Decode(&f.lastSearch)
		if f.searchCode != 0 {
			w.WriteHeader(f.searchCode)
		}
		_, _ = io.WriteString(w, f.searchReply)
	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		var items []string
		scanner := bufio.NewScanner(r.Body)
		scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
		for i := 0; scanner.Scan(); i++ {
			if i%2 != 0 {
				continue
			}
			var meta map[string]map[string]interface{}
			if err := json.Unmarshal(scanner.Bytes(), &meta); err != nil {
				continue
			}
			id, _ := meta["index"]["_id"].(string)
			f.bulkIDs = append(f.bulkIDs, id)
			items = append(items, fmt.Sprintf(`{"index":{"_id":%q,"status":201}}`, id))
		}
		_, _ = fmt.Fprintf(w, `{"took":1,"errors":false,"items":[%s]}`, strings.Join(items, ","))
	case r.Method == http.MethodHead:
		if !f.indexExists {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut:
		f.indexExists = true
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	default:
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"result":"ok"}`)
	}
}

func newClusterIndexer(t *testing.T, cluster *fakeSearchCluster) Indexer {
	t.Helper()
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)
	client, err := elasticsearch.NewClient(&config.Config{ElasticsearchURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	return NewIndexer(client, zap.NewNop())
}

func TestToSearchDocument(t *testing.T) {
	it := &Itinerary{
		ID:          "1",
		UserID:      "alice",
		Title:       "Rome",
		Destination: "Italy",
		Status:      StatusPlanned,
		Days: []Day{
			{Day: 1, Items: []Item{{Title: "Colosseum", Location: "Piazza del Colosseo"}, {Title: "Dinner"}}},
		},
		CreatedAt: time.Now(),
	}
	doc := ToSearchDocument(it)
	assert.Equal(t, []string{"Colosseum", "Dinner"}, doc["activities"])
	assert.Equal(t, []string{"Piazza del Colosseo"}, doc["locations"])
	assert.Equal(t, "planned", doc["status"])
	assert.NotContains(t, doc, "start_date")

	it.StartDate = "2026-06-01"
	assert.Equal(t, "2026-06-01", ToSearchDocument(it)["start_date"])
}

func TestNewIndexer_Disabled(t *testing.T) {
	client, err := elasticsearch.NewClient(&config.Config{}, zap.NewNop())
	require.NoError(t, err)
	idx := NewIndexer(client, zap.NewNop())

	assert.NoError(t, idx.Index(context.Background(), &Itinerary{ID: "1"}))
	assert.NoError(t, idx.Remove(context.Background(), "1"))
	_, err = idx.Search(context.Background(), SearchRequest{Query: "x"})
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

func TestESIndexer_Search(t *testing.T) {
	cluster := &fakeSearchCluster{
		searchReply: `{"hits":{"total":{"value":2},"hits":[{"_id":"b"},{"_id":"a"}]}}`,
	}
	idx := newClusterIndexer(t, cluster)

	res, err := idx.Search(context.Background(), SearchRequest{Query: " paris ", UserID: "alice", Status: "draft", From: 10, Size: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, res.IDs)
	assert.EqualValues(t, 2, res.Total)

	cluster.mu.Lock()
	body := cluster.lastSearch
	cluster.mu.Unlock()
	assert.EqualValues(t, 10, body["from"])
	assert.EqualValues(t, 5, body["size"])
	encoded, _ := json.Marshal(body)
	assert.Contains(t, string(encoded), `"user_id":"alice"`)
	assert.Contains(t, string(encoded), `"query":"paris"`)
}

func TestESIndexer_SearchMissingIndex(t *testing.T) {
	cluster := &fakeSearchCluster{searchCode: http.StatusNotFound, searchReply: `{"error":{"type":"index_not_found_exception"}}`}
	idx := newClusterIndexer(t, cluster)

	res, err := idx.Search(context.Background(), SearchRequest{Query: "x"})
	require.NoError(t, err)
	assert.Empty(t, res.IDs)
}

func TestESIndexer_SearchClusterError(t *testing.T) {
	cluster := &fakeSearchCluster{searchCode: http.StatusBadRequest, searchReply: `{"error":{"type":"parsing_exception"}}`}
	idx := newClusterIndexer(t, cluster)

	_, err := idx.Search(context.Background(), SearchRequest{Query: "x"})
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

func TestESIndexer_Reindex(t *testing.T) {
	cluster := &fakeSearchCluster{}
	idx := newClusterIndexer(t, cluster)

	source := func(fn func(*Itinerary) error) error {
		for _, id := range []string{"a", "b", "c"} {
			if err := fn(&Itinerary{ID: id, Title: "Trip " + id}); err != nil {
				return err
			}
		}
		return nil
	}
	stats, err := idx.Reindex(context.Background(), source)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Indexed)
	assert.Zero(t, stats.Failed)

	cluster.mu.Lock()
	defer cluster.mu.Unlock()
	assert.True(t, cluster.indexExists)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cluster.bulkIDs)
}
