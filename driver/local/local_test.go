package local_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/nuln/debom/debomtest"
	"github.com/nuln/debom/driver/local"
)

func TestLocalEngine(t *testing.T) {
	engine := local.NewWithFs(afero.NewMemMapFs())
	debomtest.EngineTestSuite(t, engine)
}

func TestLocalEngine_RootedOnDisk(t *testing.T) {
	engine, err := local.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	debomtest.EngineTestSuite(t, engine)
}

func TestWriteFileAtomic_PreservesPermissions(t *testing.T) {
	root := t.TempDir()
	engine, err := local.New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := engine.WriteFile(ctx, "f.txt", []byte("old")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	realPath := filepath.Join(root, "f.txt")
	if err := os.Chmod(realPath, 0600); err != nil {
		t.Fatalf("Chmod: %v", err)
	}

	if err := engine.WriteFileAtomic(ctx, "f.txt", []byte("new")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	info, err := os.Stat(realPath)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %o, want 0600", perm)
	}
	data, _ := os.ReadFile(realPath)
	if string(data) != "new" {
		t.Errorf("content = %q, want %q", data, "new")
	}
}
