// File: internal/docstore/testing.go
package docstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewMemoryStore returns a SQLStore over a private in-memory SQLite database.
// Used by tests across packages.
func NewMemoryStore(ctx context.Context) (*SQLStore, error) {
	path := fmt.Sprintf("file:mem-%s?mode=memory&cache=shared", uuid.NewString())
	return OpenSQLite(ctx, path, zap.NewNop())
}
