package debom

import (
	"os"
	"time"
)

// EntryInfo describes a file or directory reported by a storage engine.
type EntryInfo struct {
	Name    string      `json:"name"`
	Size    int64       `json:"size"`
	ModTime time.Time   `json:"modTime"`
	Mode    os.FileMode `json:"mode"`
	IsDir   bool        `json:"isDir"`
	Path    string      `json:"path"`
}

// IsRegular reports whether the entry is a regular file. Entries that are
// neither regular files nor directories (symlinks, devices, sockets) are
// skipped by the walker.
func (e *EntryInfo) IsRegular() bool {
	return !e.IsDir && e.Mode&os.ModeType == 0
}
