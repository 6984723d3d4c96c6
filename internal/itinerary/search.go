// File: internal/itinerary/search.go
package itinerary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"

	"travel_agent_backend/internal/platform/elasticsearch"
)

// ErrSearchUnavailable is returned by a disabled indexer.
var ErrSearchUnavailable = errors.New("itinerary search is unavailable")

// SearchRequest is a full-text query over the itinerary index.
type SearchRequest struct {
	Query  string
	Status string
	// UserID restricts results to one owner. Empty searches every itinerary.
	UserID string
	From   int
	Size   int
}

// SearchResult lists matching itinerary ids, best match first.
type SearchResult struct {
	IDs   []string
	Total int64
}

// ReindexStats summarizes a bulk re-index.
type ReindexStats struct {
	Indexed uint64
	Failed  uint64
}

// Indexer keeps the search index in step with the document store.
type Indexer interface {
	Index(ctx context.Context, it *Itinerary) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
	// Reindex indexes every itinerary that source yields.
	Reindex(ctx context.Context, source func(func(*Itinerary) error) error) (*ReindexStats, error)
}

// NewIndexer returns an Elasticsearch-backed indexer, or a disabled one when no client is configured.
func NewIndexer(client *elasticsearch.ESClientWrapper, logger *zap.Logger) Indexer {
	if !client.Enabled() {
		return disabledIndexer{}
	}
	return &esIndexer{
		client: client,
		index:  elasticsearch.ItinerariesIndexName,
		logger: logger.Named("ItineraryIndexer"),
	}
}

// ToSearchDocument converts an itinerary to its search document.
func ToSearchDocument(it *Itinerary) map[string]interface{} {
	var activities, locations []string
	for _, d := range it.Days {
		for _, item := range d.Items {
			if item.Title != "" {
				activities = append(activities, item.Title)
			}
			if item.Location != "" {
				locations = append(locations, item.Location)
			}
		}
	}

	doc := map[string]interface{}{
		"user_id":     it.UserID,
		"title":       it.Title,
		"slug":        it.Slug,
		"destination": it.Destination,
		"status":      string(it.Status),
		"travelers":   it.Travelers,
		"budget":      it.Budget,
		"currency":    it.Currency,
		"notes":       it.Notes,
		"activities":  activities,
		"locations":   locations,
		"created_at":  it.CreatedAt,
		"updated_at":  it.UpdatedAt,
	}
	// Empty strings are not valid dates in the mapping.
	if it.StartDate != "" {
		doc["start_date"] = it.StartDate
	}
	if it.EndDate != "" {
		doc["end_date"] = it.EndDate
	}
	return doc
}

type esIndexer struct {
	client *elasticsearch.ESClientWrapper
	index  string
	logger *zap.Logger
}

func (x *esIndexer) Index(ctx context.Context, it *Itinerary) error {
	body, err := json.Marshal(ToSearchDocument(it))
	if err != nil {
		return fmt.Errorf("error marshalling itinerary to JSON for ES: %w", err)
	}
	res, err := x.client.Index(x.index, bytes.NewReader(body),
		x.client.Index.WithContext(ctx),
		x.client.Index.WithDocumentID(it.ID),
	)
	if err != nil {
		return fmt.Errorf("indexing itinerary %s: %w", it.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("indexing itinerary %s: %s", it.ID, res.Status())
	}
	return nil
}

func (x *esIndexer) Remove(ctx context.Context, id string) error {
	res, err := x.client.Delete(x.index, id, x.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("removing itinerary %s from index: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("removing itinerary %s from index: %s", id, res.Status())
	}
	return nil
}

func buildSearchBody(req SearchRequest) map[string]interface{} {
	filters := []interface{}{}
	if req.UserID != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"user_id": req.UserID}})
	}
	if req.Status != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"status": req.Status}})
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"multi_match": map[string]interface{}{
							"query":     strings.TrimSpace(req.Query),
							"fields":    []string{"title^3", "destination^2", "activities", "locations", "notes"},
							"fuzziness": "AUTO",
						},
					},
				},
				"filter": filters,
			},
		},
		"from":    req.From,
		"size":    req.Size,
		"_source": false,
	}
}

func (x *esIndexer) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	body, err := json.Marshal(buildSearchBody(req))
	if err != nil {
		return nil, fmt.Errorf("encoding search body: %w", err)
	}
	res, err := x.client.Search(
		x.client.Search.WithContext(ctx),
		x.client.Search.WithIndex(x.index),
		x.client.Search.WithBody(bytes.NewReader(body)),
		x.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		x.logger.Error("Itinerary search request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		// Index not created yet.
		return &SearchResult{IDs: []string{}}, nil
	}
	if res.IsError() {
		x.logger.Error("Itinerary search returned an error", zap.String("status", res.Status()))
		return nil, fmt.Errorf("%w: %s", ErrSearchUnavailable, res.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	out := &SearchResult{IDs: make([]string, 0, len(parsed.Hits.Hits)), Total: parsed.Hits.Total.Value}
	for _, h := range parsed.Hits.Hits {
		out.IDs = append(out.IDs, h.ID)
	}
	return out, nil
}

func (x *esIndexer) Reindex(ctx context.Context, source func(func(*Itinerary) error) error) (*ReindexStats, error) {
	if err := elasticsearch.EnsureIndex(ctx, x.client, x.index, elasticsearch.ItinerariesMapping(), x.logger); err != nil {
		return nil, err
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     x.client.Client,
		Index:      x.index,
		NumWorkers: 2,
	})
	if err != nil {
		return nil, fmt.Errorf("creating bulk indexer: %w", err)
	}

	srcErr := source(func(it *Itinerary) error {
		body, err := json.Marshal(ToSearchDocument(it))
		if err != nil {
			return fmt.Errorf("encoding itinerary %s: %w", it.ID, err)
		}
		return bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: it.ID,
			Body:       bytes.NewReader(body),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					x.logger.Warn("Bulk index item failed", zap.String("id", item.DocumentID), zap.Error(err))
					return
				}
				x.logger.Warn("Bulk index item rejected",
					zap.String("id", item.DocumentID),
					zap.String("type", res.Error.Type),
					zap.String("reason", res.Error.Reason),
				)
			},
		})
	})
	closeErr := bi.Close(ctx)
	if srcErr != nil {
		return nil, srcErr
	}
	if closeErr != nil {
		return nil, fmt.Errorf("flushing bulk indexer: %w", closeErr)
	}

	stats := bi.Stats()
	return &ReindexStats{Indexed: stats.NumIndexed, Failed: stats.NumFailed}, nil
}

type disabledIndexer struct{}

func (disabledIndexer) Index(context.Context, *Itinerary) error { return nil }
func (disabledIndexer) Remove(context.Context, string) error { return nil }

func (disabledIndexer) Search(context.Context, SearchRequest) (*SearchResult, error) {
	return nil, ErrSearchUnavailable
}

func (disabledIndexer) Reindex(context.Context, func(func(*Itinerary) error) error) (*ReindexStats, error) {
	return nil, ErrSearchUnavailable
}
