// Package storage provides uniform byte-level read/write of metadata
// documents at a path, routing between an S3-compatible object store and
// local disk. The catalog persistence layer always calls this one interface
// and never special-cases backends; the adapter is passed in explicitly
// rather than installed as process-wide default I/O.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// S3Scheme prefixes paths that route to the object store.
const S3Scheme = "s3://"

// Store reads and writes byte content at a path.
type Store interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
}

// Router routes s3:// paths to the object store and everything else to the
// local filesystem. The object client is constructed lazily so purely local
// runs never touch credentials.
type Router struct {
	opts   S3Options
	object *ObjectStore
	local  localStore
}

// NewRouter creates a Router with the given object-store options.
func NewRouter(opts S3Options) *Router {
	return &Router{opts: opts}
}

func (r *Router) Read(ctx context.Context, path string) ([]byte, error) {
	if strings.HasPrefix(path, S3Scheme) {
		obj, err := r.objectStore()
		if err != nil {
			return nil, err
		}
		return obj.Read(ctx, path)
	}
	return r.local.Read(ctx, path)
}

func (r *Router) Write(ctx context.Context, path string, data []byte) error {
	if strings.HasPrefix(path, S3Scheme) {
		obj, err := r.objectStore()
		if err != nil {
			return err
		}
		return obj.Write(ctx, path, data)
	}
	return r.local.Write(ctx, path, data)
}

func (r *Router) objectStore() (*ObjectStore, error) {
	if r.object == nil {
		obj, err := NewObjectStore(r.opts)
		if err != nil {
			return nil, fmt.Errorf("object store: %w", err)
		}
		r.object = obj
	}
	return r.object, nil
}

// localStore is plain filesystem I/O, creating parent directories on write.
type localStore struct{}

func (localStore) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (localStore) Write(_ context.Context, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
