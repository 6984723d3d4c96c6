// File: internal/filestorage/gcs.go
package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// GCSStorage stores objects in a Cloud Storage bucket under a fixed prefix.
type GCSStorage struct {
	bucket *gcs.BucketHandle
	prefix string
	logger *zap.Logger
}

var _ Storage = (*GCSStorage)(nil)

// NewGCSStorage wraps bucket. prefix is prepended to every object name, e.g. "backups/".
func NewGCSStorage(bucket *gcs.BucketHandle, prefix string, logger *zap.Logger) *GCSStorage {
	return &GCSStorage{bucket: bucket, prefix: prefix, logger: logger.Named("GCSStorage")}
}

func (s *GCSStorage) object(name string) (*gcs.ObjectHandle, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return s.bucket.Object(s.prefix + clean), nil
}

func (s *GCSStorage) Save(ctx context.Context, name string, r io.Reader) error {
	obj, err := s.object(name)
	if err != nil {
		return err
	}
	w := obj.NewWriter(ctx)
	w.ContentType = "application/gzip"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing upload of %s: %w", name, err)
	}
	s.logger.Info("Object uploaded", zap.String("object", obj.ObjectName()))
	return nil
}

func (s *GCSStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := s.object(name)
	if err != nil {
		return nil, err
	}
	rc, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotExist)
		}
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return rc, nil
}

func (s *GCSStorage) List(ctx context.Context, prefix string) ([]Object, error) {
	it := s.bucket.Objects(ctx, &gcs.Query{Prefix: s.prefix + prefix})
	var out []Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		out = append(out, Object{
			Name:    attrs.Name[len(s.prefix):],
			Size:    attrs.Size,
			ModTime: attrs.Updated.UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *GCSStorage) Delete(ctx context.Context, name string) error {
	obj, err := s.object(name)
	if err != nil {
		return err
	}
	if err := obj.Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	s.logger.Info("Object deleted", zap.String("object", obj.ObjectName()))
	return nil
}
