package debom

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// HashPath generates a multi-level directory path from a hash string,
// distributing archived blobs across 256^3 = 16M directories.
//
// Example: HashPath("abc123def456") → "ab/c1/23/abc123def456"
func HashPath(hash string) string {
	if len(hash) < 6 {
		return hash
	}
	return filepath.Join(hash[0:2], hash[2:4], hash[4:6], hash)
}

// HashPathWithExt generates a multi-level directory path with a file extension.
//
// Example: HashPathWithExt("abc123def456", ".json") → "ab/c1/23/abc123def456.json"
func HashPathWithExt(hash, ext string) string {
	if len(hash) < 6 {
		return hash + ext
	}
	return filepath.Join(hash[0:2], hash[2:4], hash[4:6], hash+ext)
}

// BackupStore archives original file contents before they are rewritten.
// Blobs are content-addressed by SHA-256, so identical originals are
// stored once; a JSON manifest next to each blob records where the bytes
// came from.
type BackupStore struct {
	engine StorageEngine
}

// NewBackupStore creates a store on top of any engine, typically a local
// engine rooted at a dedicated backup directory.
func NewBackupStore(engine StorageEngine) *BackupStore {
	return &BackupStore{engine: engine}
}

type backupManifest struct {
	Source  string    `json:"source"`
	Size    int64     `json:"size"`
	SavedAt time.Time `json:"savedAt"`
}

// Save archives data under its content hash and returns the blob path
// within the store. Saving the same content twice writes the blob once;
// the manifest is refreshed to point at the most recent source.
func (s *BackupStore) Save(ctx context.Context, source string, data []byte) (string, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	blobPath := HashPath(hash)

	if _, err := s.engine.Stat(ctx, blobPath); err != nil {
		if err := s.engine.WriteFile(ctx, blobPath, data); err != nil {
			return "", fmt.Errorf("debom: writing backup blob: %w", err)
		}
	}

	manifest, err := json.Marshal(backupManifest{
		Source:  source,
		Size:    int64(len(data)),
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}
	if err := s.engine.WriteFile(ctx, HashPathWithExt(hash, ".json"), manifest); err != nil {
		return "", fmt.Errorf("debom: writing backup manifest: %w", err)
	}

	return blobPath, nil
}
