package debom

import "context"

// StorageEngine defines the storage contract required by the BOM removal
// pipeline. All driver implementations must satisfy this interface.
//
// Files are read and written whole: the pipeline never streams, so the
// interface works equally well for backends without seekable handles.
type StorageEngine interface {
	// Stat returns metadata about a file or directory.
	Stat(ctx context.Context, path string) (*EntryInfo, error)

	// ReadDir returns the immediate contents of a directory, in whatever
	// order the backend reports them.
	ReadDir(ctx context.Context, path string) ([]*EntryInfo, error)

	// ReadFile reads the full content of a file.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile creates or overwrites a file with the given content.
	WriteFile(ctx context.Context, path string, data []byte) error

	// Rename moves or renames a file.
	Rename(ctx context.Context, oldPath, newPath string) error

	// MkdirAll creates a directory and all necessary parents.
	MkdirAll(ctx context.Context, path string) error
}
