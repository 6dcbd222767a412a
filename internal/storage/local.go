package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/groupo-app/backend/internal/apperrors"
)

// RoutePrefix is the fixed route under which local uploads are served back
// by filename.
const RoutePrefix = "/uploads"

// Local writes media bytes under a configured directory and hands out
// references served by the static upload route.
type Local struct {
	dir string
}

// NewLocal creates a Local backend, creating the upload directory if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &apperrors.StorageError{Op: "mkdir", Err: err}
	}
	return &Local{dir: dir}, nil
}

// Dir returns the directory uploads are written to.
func (l *Local) Dir() string { return l.dir }

// Put writes the bytes under the upload directory. The name has already been
// sanitized and made collision-proof by media ingestion.
func (l *Local) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	path := filepath.Join(l.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &apperrors.StorageError{Op: "write", Err: err}
	}
	return RoutePrefix + "/" + name, nil
}

// URL is the identity for local references; they are already servable paths.
func (l *Local) URL(_ context.Context, ref string) (string, error) {
	return ref, nil
}

func (l *Local) Kind() Kind { return KindLocal }
