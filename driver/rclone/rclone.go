// Package rclone implements a debom storage engine on top of rclone,
// allowing BOM removal on any rclone-supported remote.
package rclone

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/rclone/rclone/fs"
	"github.com/rclone/rclone/fs/hash"
	"github.com/rclone/rclone/fs/operations"

	"github.com/nuln/debom"
)

// Auto-register rclone storage driver.
func init() {
	debom.Register("rclone", func(cfg *debom.Config) (debom.StorageEngine, error) {
		remote := ""
		if v, ok := cfg.Options["remote"]; ok {
			remote, _ = v.(string)
		}
		if remote == "" {
			remote = cfg.BasePath
		}
		if remote == "" {
			return nil, fmt.Errorf("debom/rclone: remote path is required (set Options[\"remote\"] or BasePath)")
		}
		return New(remote)
	})
}

// Engine implements debom.StorageEngine using rclone's fs.Fs.
type Engine struct {
	remote fs.Fs
}

// New creates a new rclone Engine from a remote path (e.g., "gdrive:docs").
func New(remotePath string) (*Engine, error) {
	remote, err := fs.NewFs(context.Background(), remotePath)
	if err != nil {
		return nil, err
	}
	return &Engine{remote: remote}, nil
}

func (e *Engine) Stat(ctx context.Context, p string) (*debom.EntryInfo, error) {
	p = normalize(p)
	obj, err := e.remote.NewObject(ctx, p)
	if err != nil {
		// Might be a directory
		if _, errDir := e.remote.List(ctx, p); errDir == nil {
			return &debom.EntryInfo{
				Name:  path.Base(p),
				Path:  p,
				IsDir: true,
			}, nil
		}
		return nil, convertError(err)
	}

	return &debom.EntryInfo{
		Name:    path.Base(obj.Remote()),
		Path:    p,
		Size:    obj.Size(),
		ModTime: obj.ModTime(ctx),
		IsDir:   false,
	}, nil
}

func (e *Engine) ReadDir(ctx context.Context, dirPath string) ([]*debom.EntryInfo, error) {
	dirPath = normalize(dirPath)
	entries, err := e.remote.List(ctx, dirPath)
	if err != nil {
		return nil, convertError(err)
	}

	result := make([]*debom.EntryInfo, 0, len(entries))
	for _, entry := range entries {
		info := &debom.EntryInfo{
			Name: path.Base(entry.Remote()),
			Path: entry.Remote(),
		}
		if obj, ok := entry.(fs.Object); ok {
			info.Size = obj.Size()
			info.ModTime = obj.ModTime(ctx)
			info.IsDir = false
		} else {
			info.IsDir = true
		}
		result = append(result, info)
	}
	return result, nil
}

func (e *Engine) ReadFile(ctx context.Context, p string) ([]byte, error) {
	obj, err := e.remote.NewObject(ctx, normalize(p))
	if err != nil {
		return nil, convertError(err)
	}
	rc, err := obj.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

func (e *Engine) WriteFile(ctx context.Context, p string, data []byte) error {
	rc := io.NopCloser(bytes.NewReader(data))
	_, err := operations.Rcat(ctx, e.remote, normalize(p), rc, time.Now(), nil)
	return err
}

func (e *Engine) Rename(ctx context.Context, oldPath, newPath string) error {
	return operations.MoveFile(ctx, e.remote, e.remote, normalize(newPath), normalize(oldPath))
}

func (e *Engine) MkdirAll(ctx context.Context, p string) error {
	p = normalize(p)
	if p == "" {
		return nil
	}
	// Mkdir is single-level on some backends; create each ancestor in turn.
	cur := ""
	for _, part := range strings.Split(p, "/") {
		cur = path.Join(cur, part)
		if err := e.remote.Mkdir(ctx, cur); err != nil {
			return err
		}
	}
	return nil
}

// === Extension: Hasher ===

func (e *Engine) Hash(ctx context.Context, p string, algorithm string) (string, error) {
	obj, err := e.remote.NewObject(ctx, normalize(p))
	if err != nil {
		return "", convertError(err)
	}

	var ht hash.Type
	switch algorithm {
	case "md5":
		ht = hash.MD5
	case "sha1":
		ht = hash.SHA1
	case "sha256":
		ht = hash.SHA256
	default:
		return "", fmt.Errorf("debom/rclone: unsupported hash algorithm: %s", algorithm)
	}

	h, err := obj.Hash(ctx, ht)
	if err != nil {
		if err == hash.ErrUnsupported {
			return "", debom.ErrNotSupported
		}
		return "", err
	}
	if h == "" {
		return "", debom.ErrNotSupported
	}
	return h, nil
}

// Helpers

// normalize maps the walker's "." root and leading slashes onto rclone's
// convention, where "" names the root of the remote.
func normalize(p string) string {
	switch p {
	case "", ".", "/":
		return ""
	}
	return p
}

func convertError(err error) error {
	if err == nil {
		return nil
	}
	if err == fs.ErrorObjectNotFound || err == fs.ErrorDirNotFound {
		return os.ErrNotExist
	}
	return err
}

// Compile-time interface checks. The rclone engine deliberately does not
// implement debom.AtomicWriter: remote object stores replace objects
// wholesale on upload, so the temp-then-rename dance buys nothing there.
var (
	_ debom.StorageEngine = (*Engine)(nil)
	_ debom.Hasher        = (*Engine)(nil)
)
