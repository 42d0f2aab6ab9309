package debom

import "context"

// AtomicWriter is an optional capability: the engine can replace a file's
// content atomically (write to a temporary sibling, then rename over the
// target), so an interrupted rewrite never leaves a truncated file.
// Use type assertion to check: if aw, ok := engine.(debom.AtomicWriter); ok { ... }
//
// The pipeline prefers WriteFileAtomic when available and falls back to
// plain WriteFile otherwise.
type AtomicWriter interface {
	WriteFileAtomic(ctx context.Context, path string, data []byte) error
}

// Hasher supports calculating file hashes. Used by the backup store to
// verify archived content when the backend can hash natively.
type Hasher interface {
	Hash(ctx context.Context, path string, algorithm string) (string, error)
}
