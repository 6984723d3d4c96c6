// File: internal/filestorage/local.go
package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// LocalStorage stores objects as files under a base directory.
type LocalStorage struct {
	basePath string
	logger   *zap.Logger
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage creates the base directory if needed.
func NewLocalStorage(basePath string, logger *zap.Logger) (*LocalStorage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		logger.Error("Failed to create storage path directory", zap.String("path", basePath), zap.Error(err))
		return nil, fmt.Errorf("failed to create storage path %s: %w", basePath, err)
	}
	logger.Info("Local file storage initialized", zap.String("storagePath", basePath))
	return &LocalStorage{basePath: basePath, logger: logger.Named("LocalStorage")}, nil
}

func (s *LocalStorage) fullPath(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		s.logger.Warn("Rejected object name", zap.String("name", name))
		return "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(clean)), nil
}

// Save writes r to a temporary file and renames it into place, so readers never see a partial object.
func (s *LocalStorage) Save(_ context.Context, name string, r io.Reader) error {
	dest, err := s.fullPath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create file for %s: %w", name, err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		s.logger.Error("Failed to write file", zap.String("path", dest), zap.Error(err))
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	s.logger.Info("File saved successfully", zap.String("path", dest))
	return nil
}

func (s *LocalStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := s.fullPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotExist)
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}

// List walks the base directory. Results are sorted by name.
func (s *LocalStorage) List(_ context.Context, prefix string) ([]Object, error) {
	var out []Object
	err := filepath.WalkDir(s.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, Object{Name: name, Size: info.Size(), ModTime: info.ModTime().UTC()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.basePath, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *LocalStorage) Delete(_ context.Context, name string) error {
	p, err := s.fullPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Attempt to delete non-existent file", zap.String("path", p))
			return nil
		}
		s.logger.Error("Failed to delete file", zap.String("path", p), zap.Error(err))
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	s.logger.Info("File deleted successfully", zap.String("path", p))
	return nil
}
