// File: internal/docstore/store.go
package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("docstore: document not found")

// MaxBatchWrites is the largest number of writes committed in one round trip.
const MaxBatchWrites = 500

type deleteField struct{}

// DeleteField removes a field when used as a value in Update.
var DeleteField interface{} = deleteField{}

// Mutator computes the fields to merge into doc. It may run more than once
// when the backend retries on contention, and must not call the Store.
// Returning no fields leaves the document unchanged.
type Mutator func(doc *Document) (map[string]interface{}, error)

// Document is a single stored record.
type Document struct {
	ID         string
	Data       map[string]interface{}
	CreateTime time.Time
	UpdateTime time.Time
}

// Store is the document database used by the repositories, the migration
// runner and the backup service. Field values are plain Go values: string,
// bool, int64, float64, time.Time, []interface{} and map[string]interface{}.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Set creates or replaces the whole document.
	Set(ctx context.Context, collection, id string, data map[string]interface{}) error
	// Update merges fields into an existing document. Keys may be dotted paths
	// into nested maps. Returns ErrNotFound when the document is missing.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	// UpdateFunc reads the document and merges the fields fn returns in one
	// transaction, so concurrent read-modify-write cycles never lose updates.
	// Errors from fn are returned unchanged. Returns ErrNotFound when the document is missing.
	UpdateFunc(ctx context.Context, collection, id string, fn Mutator) error
	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string, q Query) ([]*Document, error)
	// Count returns how many documents match q's filters. Order, offset and limit are ignored.
	Count(ctx context.Context, collection string, q Query) (int64, error)
	Batch() Batch
	Collections(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Batch queues writes and commits them in chunks of at most MaxBatchWrites.
// Chunks are committed in order; a failed chunk stops the commit and earlier
// chunks stay applied.
type Batch interface {
	Set(collection, id string, data map[string]interface{})
	Update(collection, id string, fields map[string]interface{})
	Delete(collection, id string)
	Len() int
	Commit(ctx context.Context) error
}

type opKind int

const (
	opSet opKind = iota
	opUpdate
	opDelete
)

type writeOp struct {
	kind       opKind
	collection string
	id         string
	data       map[string]interface{}
}

// opQueue is the shared Batch bookkeeping for both backends.
type opQueue struct {
	ops []writeOp
}

func (q *opQueue) Set(collection, id string, data map[string]interface{}) {
	q.ops = append(q.ops, writeOp{kind: opSet, collection: collection, id: id, data: data})
}

func (q *opQueue) Update(collection, id string, fields map[string]interface{}) {
	q.ops = append(q.ops, writeOp{kind: opUpdate, collection: collection, id: id, data: fields})
}

func (q *opQueue) Delete(collection, id string) {
	q.ops = append(q.ops, writeOp{kind: opDelete, collection: collection, id: id})
}

func (q *opQueue) Len() int { return len(q.ops) }

// chunks splits the queued writes into groups of at most MaxBatchWrites.
func (q *opQueue) chunks() [][]writeOp {
	var out [][]writeOp
	for start := 0; start < len(q.ops); start += MaxBatchWrites {
		end := start + MaxBatchWrites
		if end > len(q.ops) {
			end = len(q.ops)
		}
		out = append(out, q.ops[start:end])
	}
	return out
}
