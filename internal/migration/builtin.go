// File: internal/migration/builtin.go
package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"travel_agent_backend/internal/chat"
	"travel_agent_backend/internal/docstore"
	"travel_agent_backend/internal/itinerary"
	"travel_agent_backend/internal/rbac"
	"travel_agent_backend/internal/user"
)

// Builtin returns the migrations that bring older documents up to the current shape.
// batchSize bounds how many documents are read and written per round trip.
func Builtin(batchSize int) []Migration {
	if batchSize <= 0 || batchSize > docstore.MaxBatchWrites {
		batchSize = docstore.MaxBatchWrites
	}
	return []Migration{
		{
			Version: 1,
			Name:    "users_default_role",
			Up: func(ctx context.Context, store docstore.Store) error {
				return backfill(ctx, store, user.CollectionName, batchSize, usersDefaultRole)
			},
		},
		{
			Version: 2,
			Name:    "users_default_preferences",
			Up: func(ctx context.Context, store docstore.Store) error {
				return backfill(ctx, store, user.CollectionName, batchSize, usersDefaultPreferences)
			},
		},
		{
			Version: 3,
			Name:    "itineraries_status_and_slug",
			Up: func(ctx context.Context, store docstore.Store) error {
				return backfill(ctx, store, itinerary.CollectionName, batchSize, itinerariesStatusAndSlug)
			},
		},
		{
			Version: 4,
			Name:    "chat_sessions_message_count",
			Up: func(ctx context.Context, store docstore.Store) error {
				return backfill(ctx, store, chat.CollectionName, batchSize, chatSessionsMessageCount)
			},
			Down: func(ctx context.Context, store docstore.Store) error {
				return backfill(ctx, store, chat.CollectionName, batchSize, func(doc *docstore.Document) map[string]interface{} {
					return map[string]interface{}{
						"message_count":   docstore.DeleteField,
						"last_message_at": docstore.DeleteField,
					}
				})
			},
		},
	}
}

// patchFunc returns the fields to update on doc, or nil to leave it alone.
type patchFunc func(doc *docstore.Document) map[string]interface{}

// backfill pages through a collection in id order and commits one batch per page.
func backfill(ctx context.Context, store docstore.Store, collection string, batchSize int, patch patchFunc) error {
	for offset := 0; ; offset += batchSize {
		docs, err := store.List(ctx, collection, docstore.Query{}.Page(offset, batchSize))
		if err != nil {
			return fmt.Errorf("reading %s at offset %d: %w", collection, offset, err)
		}
		batch := store.Batch()
		for _, doc := range docs {
			if fields := patch(doc); len(fields) > 0 {
				batch.Update(collection, doc.ID, fields)
			}
		}
		if batch.Len() > 0 {
			if err := batch.Commit(ctx); err != nil {
				return fmt.Errorf("updating %s at offset %d: %w", collection, offset, err)
			}
		}
		if len(docs) < batchSize {
			return nil
		}
	}
}

func usersDefaultRole(doc *docstore.Document) map[string]interface{} {
	raw, _ := doc.Data["role"].(string)
	role, err := rbac.ParseRole(raw)
	if err != nil {
		return map[string]interface{}{"role": string(rbac.DefaultRole)}
	}
	if string(role) != raw {
		return map[string]interface{}{"role": string(role)}
	}
	return nil
}

func usersDefaultPreferences(doc *docstore.Document) map[string]interface{} {
	fields := map[string]interface{}{}
	prefs, ok := doc.Data["preferences"].(map[string]interface{})
	if !ok {
		fields["preferences"] = map[string]interface{}{
			"currency":     user.DefaultCurrency,
			"language":     user.DefaultLanguage,
			"home_airport": "",
		}
	} else {
		if _, ok := prefs["currency"]; !ok {
			fields["preferences.currency"] = user.DefaultCurrency
		}
		if _, ok := prefs["language"]; !ok {
			fields["preferences.language"] = user.DefaultLanguage
		}
		if _, ok := prefs["home_airport"]; !ok {
			fields["preferences.home_airport"] = ""
		}
	}
	if _, ok := doc.Data["disabled"].(bool); !ok {
		fields["disabled"] = false
	}
	return fields
}

func itinerariesStatusAndSlug(doc *docstore.Document) map[string]interface{} {
	fields := map[string]interface{}{}
	status, _ := doc.Data["status"].(string)
	if !itinerary.Status(status).Valid() {
		fields["status"] = string(itinerary.StatusDraft)
	}
	if s, _ := doc.Data["slug"].(string); strings.TrimSpace(s) == "" {
		title, _ := doc.Data["title"].(string)
		fields["slug"] = itinerary.MakeSlug(title, doc.ID)
	}
	return fields
}

func chatSessionsMessageCount(doc *docstore.Document) map[string]interface{} {
	messages, _ := doc.Data["messages"].([]interface{})
	fields := map[string]interface{}{}
	if count, ok := doc.Data["message_count"].(int64); !ok || count != int64(len(messages)) {
		fields["message_count"] = int64(len(messages))
	}

	var last time.Time
	for _, m := range messages {
		msg, ok := m.(map[string]interface{})
		if !ok {
			continue
		}
		if at, ok := msg["created_at"].(time.Time); ok && at.After(last) {
			last = at
		}
	}
	if _, ok := doc.Data["last_message_at"]; !ok && !last.IsZero() {
		fields["last_message_at"] = last
	}
	return fields
}
