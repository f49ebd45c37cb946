// Package blob provides the key-value blob persistence used for series,
// reference files and screener snapshots. Keys are "folder/file".
package blob

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("blob not found")

// ObjectInfo describes one stored blob.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is a provider-agnostic blob store. Put replaces the whole object.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// folderCreator is implemented by backends that need folders materialised.
type folderCreator interface {
	EnsureFolder(ctx context.Context, name string) error
}

// Folder is a handle on a named folder of a Store.
type Folder struct {
	store Store
	name  string
}

// GetOrCreateFolder returns a handle on name, creating it when the backend
// has real directories.
func GetOrCreateFolder(ctx context.Context, store Store, name string) (Folder, error) {
	name = strings.Trim(name, "/")
	if fc, ok := store.(folderCreator); ok {
		if err := fc.EnsureFolder(ctx, name); err != nil {
			return Folder{}, err
		}
	}
	return Folder{store: store, name: name}, nil
}

// Name returns the folder name.
func (f Folder) Name() string { return f.name }

// Key joins the folder name and a file name.
func (f Folder) Key(file string) string {
	return path.Join(f.name, file)
}

// Read returns the file contents, or ErrNotFound.
func (f Folder) Read(ctx context.Context, file string) ([]byte, error) {
	return f.store.Get(ctx, f.Key(file))
}

// Write replaces the file with data.
func (f Folder) Write(ctx context.Context, file string, data []byte) error {
	return f.store.Put(ctx, f.Key(file), data)
}

// Delete removes the file. Missing files are not an error.
func (f Folder) Delete(ctx context.Context, file string) error {
	return f.store.Delete(ctx, f.Key(file))
}

// List returns the files directly or indirectly under the folder.
func (f Folder) List(ctx context.Context) ([]ObjectInfo, error) {
	return f.store.List(ctx, f.name+"/")
}
