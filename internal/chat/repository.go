// File: internal/chat/repository.go
package chat

import (
	"context"
	"errors"
	"fmt"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/docstore"
)

// Filter narrows a session listing. Empty fields match everything.
type Filter struct {
	UserID      string
	ItineraryID string
}

// Repository defines the interface for chat session data operations.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	// Mutate runs fn against the stored session and merges the fields it returns atomically.
	Mutate(ctx context.Context, id string, fn func(*Session) (map[string]interface{}, error)) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter, page common.PaginationQuery) ([]*Session, int64, error)
}

type docRepository struct {
	store docstore.Store
}

// NewDocRepository creates a chat session repository over the document store.
func NewDocRepository(store docstore.Store) Repository {
	return &docRepository{store: store}
}

func (r *docRepository) Create(ctx context.Context, s *Session) error {
	if err := r.store.Set(ctx, CollectionName, s.ID, s.toFields()); err != nil {
		return fmt.Errorf("creating chat session %s: %w", s.ID, err)
	}
	return nil
}

func (r *docRepository) FindByID(ctx context.Context, id string) (*Session, error) {
	doc, err := r.store.Get(ctx, CollectionName, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, common.ErrNotFound.WithDetails("Chat session not found.")
		}
		return nil, err
	}
	return fromDocument(doc)
}

func (r *docRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := r.store.Update(ctx, CollectionName, id, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return common.ErrNotFound.WithDetails("Chat session not found.")
		}
		return err
	}
	return nil
}

func (r *docRepository) Mutate(ctx context.Context, id string, fn func(*Session) (map[string]interface{}, error)) error {
	err := r.store.UpdateFunc(ctx, CollectionName, id, func(doc *docstore.Document) (map[string]interface{}, error) {
		session, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		return fn(session)
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return common.ErrNotFound.WithDetails("Chat session not found.")
	}
	return err
}

func (r *docRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionName, id)
}

func (r *docRepository) List(ctx context.Context, filter Filter, page common.PaginationQuery) ([]*Session, int64, error) {
	q := docstore.Query{}
	if filter.UserID != "" {
		q = q.Where("user_id", filter.UserID)
	}
	if filter.ItineraryID != "" {
		q = q.Where("itinerary_id", filter.ItineraryID)
	}
	total, err := r.store.Count(ctx, CollectionName, q)
	if err != nil {
		return nil, 0, fmt.Errorf("counting chat sessions: %w", err)
	}
	docs, err := r.store.List(ctx, CollectionName, q.Order("updated_at", docstore.Desc).Page(page.Offset(), page.Limit()))
	if err != nil {
		return nil, 0, fmt.Errorf("listing chat sessions: %w", err)
	}
	sessions := make([]*Session, 0, len(docs))
	for _, doc := range docs {
		s, err := fromDocument(doc)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}
	return sessions, total, nil
}

func fromDocument(doc *docstore.Document) (*Session, error) {
	var s Session
	if err := docstore.Decode(doc.Data, &s); err != nil {
		return nil, err
	}
	s.ID = doc.ID
	return &s, nil
}
