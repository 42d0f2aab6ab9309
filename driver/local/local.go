// Package local implements a debom storage engine for the local
// filesystem via afero.
package local

import (
	"context"
	"crypto/md5" //nolint:gosec // md5 is intentionally supported
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nuln/debom"
)

// Auto-register local storage driver.
func init() {
	debom.Register("local", func(cfg *debom.Config) (debom.StorageEngine, error) {
		return New(cfg.BasePath)
	})
}

// Engine implements debom.StorageEngine for the local filesystem.
type Engine struct {
	fs   afero.Fs
	root string
}

// New creates a new local Engine rooted at the given directory. All paths
// passed to the engine are interpreted relative to root.
func New(root string) (*Engine, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Engine{
		fs:   afero.NewBasePathFs(afero.NewOsFs(), absRoot),
		root: absRoot,
	}, nil
}

// NewWithFs creates a local Engine backed by a custom afero.Fs.
// This is useful for testing with afero.MemMapFs.
func NewWithFs(fs afero.Fs) *Engine {
	return &Engine{fs: fs, root: "."}
}

func (e *Engine) Stat(ctx context.Context, path string) (*debom.EntryInfo, error) {
	info, err := e.fs.Stat(path)
	if err != nil {
		return nil, err
	}
	return entryInfo(path, info), nil
}

func (e *Engine) ReadDir(ctx context.Context, path string) ([]*debom.EntryInfo, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	infos, err := f.Readdir(-1)
	if err != nil {
		return nil, err
	}

	result := make([]*debom.EntryInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, entryInfo(filepath.Join(path, info.Name()), info))
	}
	return result, nil
}

func (e *Engine) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return afero.ReadFile(e.fs, path)
}

func (e *Engine) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := e.fs.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	return afero.WriteFile(e.fs, path, data, 0644)
}

func (e *Engine) Rename(ctx context.Context, oldPath, newPath string) error {
	if err := e.fs.MkdirAll(filepath.Dir(newPath), 0750); err != nil {
		return err
	}
	return e.fs.Rename(oldPath, newPath)
}

func (e *Engine) MkdirAll(ctx context.Context, path string) error {
	return e.fs.MkdirAll(path, 0750)
}

// === Extension: AtomicWriter ===

// WriteFileAtomic replaces path by writing to a temporary file in the same
// directory and renaming it over the target, preserving the original's
// permissions when it already exists. An interruption leaves either the
// old content or the new content, never a truncated file.
func (e *Engine) WriteFileAtomic(ctx context.Context, path string, data []byte) error {
	perm := os.FileMode(0644)
	if info, err := e.fs.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	if err := e.fs.MkdirAll(dir, 0750); err != nil {
		return err
	}

	tmp, err := afero.TempFile(e.fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = e.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = e.fs.Remove(tmpName)
		return err
	}
	if err := e.fs.Chmod(tmpName, perm); err != nil {
		_ = e.fs.Remove(tmpName)
		return err
	}
	if err := e.fs.Rename(tmpName, path); err != nil {
		// Some afero backends (MemMapFs) refuse to rename over an existing
		// file. Fall back to remove-then-rename for those.
		if removeErr := e.fs.Remove(path); removeErr == nil {
			if retryErr := e.fs.Rename(tmpName, path); retryErr == nil {
				return nil
			}
		}
		_ = e.fs.Remove(tmpName)
		return err
	}
	return nil
}

// === Extension: Hasher ===

func (e *Engine) Hash(ctx context.Context, path string, algorithm string) (string, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	var h interface {
		io.Writer
		Sum([]byte) []byte
	}

	switch algorithm {
	case "md5":
		h = md5.New() //nolint:gosec // md5 intentionally supported
	case "sha256":
		h = sha256.New()
	default:
		return "", fmt.Errorf("debom/local: unsupported hash algorithm: %s", algorithm)
	}

	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func entryInfo(path string, info os.FileInfo) *debom.EntryInfo {
	return &debom.EntryInfo{
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
		IsDir:   info.IsDir(),
		Path:    path,
	}
}

// Compile-time interface checks.
var (
	_ debom.StorageEngine = (*Engine)(nil)
	_ debom.AtomicWriter  = (*Engine)(nil)
	_ debom.Hasher        = (*Engine)(nil)
)
