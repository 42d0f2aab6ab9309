package debom

import (
	"context"
	"path/filepath"
)

// WalkFunc is the callback for Walk. It is called once per directory entry.
// If a directory could not be listed, the callback receives the directory
// path with a nil info and the listing error; the walk then continues with
// the remaining directories, so one unreadable subtree never aborts its
// siblings.
//
// Returning filepath.SkipDir for a directory entry prevents descent into
// it; for any other entry it skips the rest of the containing directory.
// Any other non-nil return aborts the walk.
type WalkFunc func(path string, info *EntryInfo, err error) error

// Walk enumerates the tree rooted at root on the given engine. root itself
// must be a directory and is always listed; recursive controls whether the
// walk descends into subdirectories below it.
//
// Directories are traversed depth-first with an explicit stack rather than
// call recursion, so traversal depth is bounded by memory, not by the
// goroutine stack. Entries within a directory are visited in whatever
// order the engine reports them.
func Walk(ctx context.Context, engine StorageEngine, root string, recursive bool, fn WalkFunc) error {
	stack := []string{root}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := engine.ReadDir(ctx, dir)
		if err != nil {
			if err := fn(dir, nil, err); err != nil && err != filepath.SkipDir {
				return err
			}
			continue
		}

		for _, entry := range entries {
			err := fn(entry.Path, entry, nil)
			if err == filepath.SkipDir {
				if !entry.IsDir {
					break
				}
				continue
			}
			if err != nil {
				return err
			}
			if entry.IsDir && recursive {
				stack = append(stack, entry.Path)
			}
		}
	}
	return nil
}
