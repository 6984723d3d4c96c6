// File: internal/itinerary/repository.go
package itinerary

import (
	"context"
	"errors"
	"fmt"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/docstore"
)

// Filter narrows a repository listing. Empty fields match everything.
type Filter struct {
	UserID string
	Status string
}

// Repository defines the interface for itinerary data operations.
type Repository interface {
	Create(ctx context.Context, it *Itinerary) error
	FindByID(ctx context.Context, id string) (*Itinerary, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter, page common.PaginationQuery) ([]*Itinerary, int64, error)
	// Each calls fn for every stored itinerary in id order, reading pageSize documents at a time.
	Each(ctx context.Context, pageSize int, fn func(*Itinerary) error) error
}

type docRepository struct {
	store docstore.Store
}

// NewDocRepository creates an itinerary repository over the document store.
func NewDocRepository(store docstore.Store) Repository {
	return &docRepository{store: store}
}

func (r *docRepository) Create(ctx context.Context, it *Itinerary) error {
	if err := r.store.Set(ctx, CollectionName, it.ID, it.toFields()); err != nil {
		return fmt.Errorf("creating itinerary %s: %w", it.ID, err)
	}
	return nil
}

func (r *docRepository) FindByID(ctx context.Context, id string) (*Itinerary, error) {
	doc, err := r.store.Get(ctx, CollectionName, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, common.ErrNotFound.WithDetails("Itinerary not found.")
		}
		return nil, err
	}
	return fromDocument(doc)
}

func (r *docRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := r.store.Update(ctx, CollectionName, id, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return common.ErrNotFound.WithDetails("Itinerary not found.")
		}
		return err
	}
	return nil
}

func (r *docRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionName, id)
}

func (r *docRepository) query(filter Filter) docstore.Query {
	q := docstore.Query{}
	if filter.UserID != "" {
		q = q.Where("user_id", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status", filter.Status)
	}
	return q
}

func (r *docRepository) List(ctx context.Context, filter Filter, page common.PaginationQuery) ([]*Itinerary, int64, error) {
	q := r.query(filter)
	total, err := r.store.Count(ctx, CollectionName, q)
	if err != nil {
		return nil, 0, fmt.Errorf("counting itineraries: %w", err)
	}
	docs, err := r.store.List(ctx, CollectionName, q.Order("updated_at", docstore.Desc).Page(page.Offset(), page.Limit()))
	if err != nil {
		return nil, 0, fmt.Errorf("listing itineraries: %w", err)
	}
	items, err := fromDocuments(docs)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *docRepository) Each(ctx context.Context, pageSize int, fn func(*Itinerary) error) error {
	if pageSize <= 0 {
		pageSize = docstore.MaxBatchWrites
	}
	for offset := 0; ; offset += pageSize {
		docs, err := r.store.List(ctx, CollectionName, docstore.Query{}.Page(offset, pageSize))
		if err != nil {
			return fmt.Errorf("listing itineraries at offset %d: %w", offset, err)
		}
		items, err := fromDocuments(docs)
		if err != nil {
			return err
		}
		for _, it := range items {
			if err := fn(it); err != nil {
				return err
			}
		}
		if len(docs) < pageSize {
			return nil
		}
	}
}

func fromDocuments(docs []*docstore.Document) ([]*Itinerary, error) {
	items := make([]*Itinerary, 0, len(docs))
	for _, doc := range docs {
		it, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func fromDocument(doc *docstore.Document) (*Itinerary, error) {
	var it Itinerary
	if err := docstore.Decode(doc.Data, &it); err != nil {
		return nil, err
	}
	it.ID = doc.ID
	return &it, nil
}
