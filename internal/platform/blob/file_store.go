package blob

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore implements Store on the local filesystem.
// Key "bhavcopy_stock_data/complete_data1.csv" maps to
// "{basePath}/bhavcopy_stock_data/complete_data1.csv".
type FileStore struct {
	basePath string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the base directory if needed.
func NewFileStore(basePath string) (*FileStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("file blob store base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create base directory %s: %w", basePath, err)
	}
	return &FileStore{basePath: basePath}, nil
}

// sanitizeKey keeps keys inside basePath while allowing "/" for folders.
func sanitizeKey(key string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	return strings.TrimPrefix(clean, string(filepath.Separator))
}

func (s *FileStore) keyToPath(key string) string {
	return filepath.Join(s.basePath, sanitizeKey(key))
}

// EnsureFolder creates the folder directory.
func (s *FileStore) EnsureFolder(ctx context.Context, name string) error {
	dir := s.keyToPath(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create folder %s: %w", name, err)
	}
	return nil
}

// Get reads a blob.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, nil
}

// Put writes a blob atomically using a temp file and rename, so readers
// never observe a partially written object.
func (s *FileStore) Put(ctx context.Context, key string, data []byte) error {
	p := s.keyToPath(key)
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Delete removes a blob. No error if not found.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.keyToPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// Exists checks if a blob exists.
func (s *FileStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.keyToPath(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat blob %s: %w", key, err)
}

// List walks the directory tree and returns blobs whose key has prefix,
// ordered by key. Temp files are skipped.
func (s *FileStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	root := s.basePath
	if dir := filepath.Dir(filepath.FromSlash(prefix)); dir != "." {
		root = filepath.Join(s.basePath, sanitizeKey(dir))
	}

	var out []ObjectInfo
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, ObjectInfo{Key: key, Size: info.Size(), LastModified: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list blobs %s: %w", prefix, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
