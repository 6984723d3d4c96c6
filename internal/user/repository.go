// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"

	"travel_agent_backend/internal/common"
	"travel_agent_backend/internal/docstore"
)

// Repository defines the interface for user data operations.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter, page common.PaginationQuery) ([]*User, int64, error)
}

type docRepository struct {
	store docstore.Store
}

// NewDocRepository creates a user repository over the document store.
func NewDocRepository(store docstore.Store) Repository {
	return &docRepository{store: store}
}

func (r *docRepository) Create(ctx context.Context, user *User) error {
	if err := r.store.Set(ctx, CollectionName, user.ID, user.toFields()); err != nil {
		return fmt.Errorf("creating user %s: %w", user.ID, err)
	}
	return nil
}

func (r *docRepository) FindByID(ctx context.Context, id string) (*User, error) {
	doc, err := r.store.Get(ctx, CollectionName, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found.")
		}
		return nil, err
	}
	return fromDocument(doc)
}

func (r *docRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := r.store.Update(ctx, CollectionName, id, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return common.ErrNotFound.WithDetails("User not found.")
		}
		return err
	}
	return nil
}

func (r *docRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionName, id)
}

func (r *docRepository) List(ctx context.Context, filter ListFilter, page common.PaginationQuery) ([]*User, int64, error) {
	q := docstore.Query{}
	if filter.Role != "" {
		q = q.Where("role", filter.Role)
	}

	total, err := r.store.Count(ctx, CollectionName, q)
	if err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	docs, err := r.store.List(ctx, CollectionName, q.Order("created_at", docstore.Desc).Page(page.Offset(), page.Limit()))
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}

	users := make([]*User, 0, len(docs))
	for _, doc := range docs {
		u, err := fromDocument(doc)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, nil
}

func fromDocument(doc *docstore.Document) (*User, error) {
	var u User
	if err := docstore.Decode(doc.Data, &u); err != nil {
		return nil, err
	}
	u.ID = doc.ID
	return &u, nil
}
