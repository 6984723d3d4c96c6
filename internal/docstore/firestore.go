// File: internal/docstore/firestore.go
package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is the production Store backed by Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

var _ Store = (*FirestoreStore)(nil)

// NewFirestoreStore wraps a Firestore client obtained from the Firebase app.
func NewFirestoreStore(client *firestore.Client, logger *zap.Logger) *FirestoreStore {
	return &FirestoreStore{client: client, logger: logger.Named("FirestoreStore")}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting %s/%s: %w", collection, id, err)
	}
	return snapshotToDocument(snap), nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("setting %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if _, err := s.client.Collection(collection).Doc(id).Update(ctx, toUpdates(fields)); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) UpdateFunc(ctx context.Context, collection, id string, fn Mutator) error {
	ref := s.client.Collection(collection).Doc(id)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		fields, err := fn(snapshotToDocument(snap))
		if err != nil || len(fields) == 0 {
			return err
		}
		return tx.Update(ref, toUpdates(fields))
	})
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) buildQuery(collection string, q Query) firestore.Query {
	fq := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, "==", f.Value)
	}
	return fq
}

func (s *FirestoreStore) List(ctx context.Context, collection string, q Query) ([]*Document, error) {
	fq := s.buildQuery(collection, q)
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Direction == Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	if q.Offset > 0 {
		fq = fq.Offset(q.Offset)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	iter := fq.Documents(ctx)
	defer iter.Stop()

	docs := []*Document{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", collection, err)
		}
		docs = append(docs, snapshotToDocument(snap))
	}
	return docs, nil
}

func (s *FirestoreStore) Count(ctx context.Context, collection string, q Query) (int64, error) {
	fq := s.buildQuery(collection, q)
	res, err := fq.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", collection, err)
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("counting %s: unexpected aggregation result %T", collection, res["all"])
	}
	return v.GetIntegerValue(), nil
}

func (s *FirestoreStore) Batch() Batch {
	return &firestoreBatch{client: s.client}
}

func (s *FirestoreStore) Collections(ctx context.Context) ([]string, error) {
	iter := s.client.Collections(ctx)
	var names []string
	for {
		ref, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing collections: %w", err)
		}
		names = append(names, ref.ID)
	}
	return names, nil
}

// Ping reads one collection id, which needs a working connection and credentials.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	_, err := s.client.Collections(ctx).Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

type firestoreBatch struct {
	opQueue
	client *firestore.Client
}

func (b *firestoreBatch) Commit(ctx context.Context) error {
	for i, chunk := range b.chunks() {
		wb := b.client.Batch()
		for _, op := range chunk {
			ref := b.client.Collection(op.collection).Doc(op.id)
			switch op.kind {
			case opSet:
				wb.Set(ref, op.data)
			case opUpdate:
				wb.Update(ref, toUpdates(op.data))
			case opDelete:
				wb.Delete(ref)
			}
		}
		if _, err := wb.Commit(ctx); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("committing batch chunk %d: %w", i, ErrNotFound)
			}
			return fmt.Errorf("committing batch chunk %d: %w", i, err)
		}
	}
	return nil
}

func toUpdates(fields map[string]interface{}) []firestore.Update {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		if value == DeleteField {
			value = firestore.Delete
		}
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	return updates
}

func snapshotToDocument(snap *firestore.DocumentSnapshot) *Document {
	return &Document{
		ID:         snap.Ref.ID,
		Data:       snap.Data(),
		CreateTime: snap.CreateTime,
		UpdateTime: snap.UpdateTime,
	}
}
