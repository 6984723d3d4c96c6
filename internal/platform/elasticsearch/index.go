// File: internal/platform/elasticsearch/index.go
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const ItinerariesIndexName = "itineraries"

func keywordSubfield() map[string]interface{} {
	return map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}
}

// ItinerariesMapping returns the mapping for the itineraries index.
func ItinerariesMapping() map[string]interface{} {
	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"user_id":     map[string]interface{}{"type": "keyword"},
				"title":       map[string]interface{}{"type": "text", "fields": keywordSubfield()},
				"slug":        map[string]interface{}{"type": "keyword"},
				"destination": map[string]interface{}{"type": "text", "fields": keywordSubfield()},
				"status":      map[string]interface{}{"type": "keyword"},
				"start_date":  map[string]interface{}{"type": "date", "format": "yyyy-MM-dd"},
				"end_date":    map[string]interface{}{"type": "date", "format": "yyyy-MM-dd"},
				"travelers":   map[string]interface{}{"type": "integer"},
				"budget":      map[string]interface{}{"type": "double"},
				"currency":    map[string]interface{}{"type": "keyword"},
				"notes":       map[string]interface{}{"type": "text"},
				"activities":  map[string]interface{}{"type": "text"},
				"locations":   map[string]interface{}{"type": "text"},
				"created_at":  map[string]interface{}{"type": "date"},
				"updated_at":  map[string]interface{}{"type": "date"},
			},
		},
	}
}

// EnsureIndex creates the index with the given mapping if it does not already exist.
func EnsureIndex(ctx context.Context, client *ESClientWrapper, name string, mapping map[string]interface{}, logger *zap.Logger) error {
	if !client.Enabled() {
		return ErrDisabled
	}
	log := logger.Named("elasticsearch_index_setup")

	res, err := esapi.IndicesExistsRequest{Index: []string{name}}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error checking if index %s exists: %w", name, err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Debug("Index already exists", zap.String("index_name", name))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error checking if index %s exists: status %s", name, res.Status())
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("error marshalling mapping for %s: %w", name, err)
	}
	createRes, err := esapi.IndicesCreateRequest{Index: name, Body: bytes.NewReader(body)}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error creating index %s: %w", name, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		var errorBody map[string]interface{}
		if err := json.NewDecoder(createRes.Body).Decode(&errorBody); err == nil {
			log.Error("Failed to create index",
				zap.String("status", createRes.Status()),
				zap.Any("error_details", errorBody),
				zap.String("index_name", name),
			)
		}
		return fmt.Errorf("failed to create index %s: status %s", name, createRes.Status())
	}

	log.Info("Index created", zap.String("index_name", name))
	return nil
}
