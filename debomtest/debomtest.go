// Package debomtest provides a reusable conformance suite for storage
// engine implementations.
package debomtest

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nuln/debom"
)

// EngineTestSuite runs a set of tests against a StorageEngine
// implementation, covering the storage contract and the full BOM removal
// pipeline on top of it. Call this in your driver tests:
//
//	func TestLocalEngine(t *testing.T) {
//	    engine := setupEngine(t)
//	    debomtest.EngineTestSuite(t, engine)
//	}
func EngineTestSuite(t *testing.T, engine debom.StorageEngine) { //nolint:gocyclo
	t.Helper()
	ctx := context.Background()

	t.Run("WriteFile_Stat_ReadFile", func(t *testing.T) {
		path := "suite/hello.txt"
		content := []byte("hello world")

		if err := engine.WriteFile(ctx, path, content); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		info, err := engine.Stat(ctx, path)
		if err != nil {
			t.Fatalf("Stat: %v", err)
		}
		if info.Name != "hello.txt" {
			t.Errorf("Name = %q, want %q", info.Name, "hello.txt")
		}
		if info.Size != int64(len(content)) {
			t.Errorf("Size = %d, want %d", info.Size, len(content))
		}
		if info.IsDir {
			t.Error("IsDir = true, want false")
		}

		data, err := engine.ReadFile(ctx, path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("content = %q, want %q", data, content)
		}

		// Overwrite
		if err := engine.WriteFile(ctx, path, []byte("shorter")); err != nil {
			t.Fatalf("WriteFile overwrite: %v", err)
		}
		data, _ = engine.ReadFile(ctx, path)
		if string(data) != "shorter" {
			t.Errorf("after overwrite = %q, want %q", data, "shorter")
		}
	})

	t.Run("MkdirAll_ReadDir", func(t *testing.T) {
		dir := "suite/dirops"
		if err := engine.MkdirAll(ctx, dir); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}

		for _, name := range []string{"a.txt", "b.txt"} {
			if err := engine.WriteFile(ctx, dir+"/"+name, []byte(name)); err != nil {
				t.Fatalf("WriteFile %s: %v", name, err)
			}
		}

		entries, err := engine.ReadDir(ctx, dir)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("ReadDir: got %d entries, want 2", len(entries))
		}
		for _, entry := range entries {
			if entry.Path == "" {
				t.Errorf("entry %q has empty Path", entry.Name)
			}
			if entry.IsDir {
				t.Errorf("entry %q reported as directory", entry.Name)
			}
		}
	})

	t.Run("Rename", func(t *testing.T) {
		src := "rename_src.txt"
		dst := "rename_dst.txt"

		if err := engine.WriteFile(ctx, src, []byte("data")); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := engine.Rename(ctx, src, dst); err != nil {
			t.Fatalf("Rename: %v", err)
		}

		if _, err := engine.Stat(ctx, src); err == nil {
			t.Error("Stat src after Rename: expected error")
		}
		info, err := engine.Stat(ctx, dst)
		if err != nil {
			t.Fatalf("Stat dst: %v", err)
		}
		if info.Size != 4 {
			t.Errorf("dst size = %d, want 4", info.Size)
		}
	})

	t.Run("Walk_RecursionBoundary", func(t *testing.T) {
		if err := engine.MkdirAll(ctx, "walk/sub"); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		_ = engine.WriteFile(ctx, "walk/f1.txt", []byte("1"))
		_ = engine.WriteFile(ctx, "walk/sub/f2.txt", []byte("2"))

		collect := func(recursive bool) []string {
			var files []string
			err := debom.Walk(ctx, engine, "walk", recursive, func(path string, info *debom.EntryInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir {
					files = append(files, info.Name)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("Walk(recursive=%v): %v", recursive, err)
			}
			return files
		}

		if files := collect(false); len(files) != 1 {
			t.Errorf("non-recursive walk found %d files, want 1: %v", len(files), files)
		}
		if files := collect(true); len(files) != 2 {
			t.Errorf("recursive walk found %d files, want 2: %v", len(files), files)
		}
	})

	t.Run("StripPipeline", func(t *testing.T) {
		path := "strip/bom.txt"
		if err := engine.WriteFile(ctx, path, []byte{0xEF, 0xBB, 0xBF, 'H', 'e', 'l', 'l', 'o'}); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		proc := debom.NewProcessor(engine, debom.UTF8, zerolog.Nop())

		res := proc.File(ctx, path)
		if res.Outcome != debom.OutcomeStripped {
			t.Fatalf("first pass outcome = %v, want Stripped (err=%v)", res.Outcome, res.Err)
		}
		data, err := engine.ReadFile(ctx, path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if string(data) != "Hello" {
			t.Errorf("content after strip = %q, want %q", data, "Hello")
		}

		// Second pass must be a no-op.
		res = proc.File(ctx, path)
		if res.Outcome != debom.OutcomeNoBOM {
			t.Errorf("second pass outcome = %v, want NoBOMFound", res.Outcome)
		}
		data, _ = engine.ReadFile(ctx, path)
		if string(data) != "Hello" {
			t.Errorf("content after second pass = %q, want %q", data, "Hello")
		}
	})

	// Test extensions if supported
	if aw, ok := engine.(debom.AtomicWriter); ok {
		t.Run("AtomicWriter", func(t *testing.T) {
			path := "atomic/target.txt"
			if err := engine.WriteFile(ctx, path, []byte("old")); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if err := aw.WriteFileAtomic(ctx, path, []byte("new")); err != nil {
				t.Fatalf("WriteFileAtomic: %v", err)
			}
			data, err := engine.ReadFile(ctx, path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if string(data) != "new" {
				t.Errorf("content = %q, want %q", data, "new")
			}

			// No temp files left behind.
			entries, err := engine.ReadDir(ctx, "atomic")
			if err != nil {
				t.Fatalf("ReadDir: %v", err)
			}
			if len(entries) != 1 {
				t.Errorf("leftover entries after atomic write: %d, want 1", len(entries))
			}
		})
	}

	if hasher, ok := engine.(debom.Hasher); ok {
		t.Run("Hasher", func(t *testing.T) {
			path := "hash_test.txt"
			if err := engine.WriteFile(ctx, path, []byte("hash me")); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}

			h, err := hasher.Hash(ctx, path, "sha256")
			if err == debom.ErrNotSupported {
				t.Skip("Hash not supported by this backend")
			}
			if err != nil {
				t.Fatalf("Hash: %v", err)
			}
			if h == "" {
				t.Error("Hash returned empty string")
			}

			h2, _ := hasher.Hash(ctx, path, "sha256")
			if h != h2 {
				t.Errorf("Hash not deterministic: %q != %q", h, h2)
			}
		})
	}
}
