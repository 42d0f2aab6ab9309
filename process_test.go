package debom_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/nuln/debom"
	"github.com/nuln/debom/driver/local"
)

var bomHello = []byte{0xEF, 0xBB, 0xBF, 'H', 'e', 'l', 'l', 'o'}

func TestProcessor_File_StripsAndRewrites(t *testing.T) {
	engine := newMemEngine(t, map[string][]byte{"docs/hello.txt": bomHello})
	proc := debom.NewProcessor(engine, debom.UTF8, zerolog.Nop())

	res := proc.File(context.Background(), "docs/hello.txt")
	if res.Outcome != debom.OutcomeStripped {
		t.Fatalf("Outcome = %v, want Stripped (err=%v)", res.Outcome, res.Err)
	}

	data, err := engine.ReadFile(context.Background(), "docs/hello.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "Hello" {
		t.Errorf("content = %q, want %q", data, "Hello")
	}
}

func TestProcessor_File_NoBOMLeavesFileUntouched(t *testing.T) {
	ctx := context.Background()
	engine := newMemEngine(t, map[string][]byte{"plain.txt": []byte("no bom here")})
	before, err := engine.Stat(ctx, "plain.txt")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	proc := debom.NewProcessor(engine, debom.UTF8, zerolog.Nop())
	res := proc.File(ctx, "plain.txt")
	if res.Outcome != debom.OutcomeNoBOM {
		t.Fatalf("Outcome = %v, want NoBOMFound", res.Outcome)
	}

	after, err := engine.Stat(ctx, "plain.txt")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !after.ModTime.Equal(before.ModTime) {
		t.Error("modification time changed on a file without a BOM")
	}
	data, _ := engine.ReadFile(ctx, "plain.txt")
	if string(data) != "no bom here" {
		t.Errorf("content = %q, changed without a BOM", data)
	}
}

func TestProcessor_File_MissingFile(t *testing.T) {
	engine := local.NewWithFs(afero.NewMemMapFs())
	proc := debom.NewProcessor(engine, debom.UTF8, zerolog.Nop())

	res := proc.File(context.Background(), "nope.txt")
	if res.Outcome != debom.OutcomeIOError {
		t.Errorf("Outcome = %v, want IOError", res.Outcome)
	}
	if res.Err == nil {
		t.Error("Err = nil, want read error")
	}
}

func TestProcessor_File_UnsupportedEncoding(t *testing.T) {
	engine := newMemEngine(t, map[string][]byte{"a.txt": []byte("data")})
	proc := debom.NewProcessor(engine, debom.Encoding("latin-1"), zerolog.Nop())

	res := proc.File(context.Background(), "a.txt")
	if res.Outcome != debom.OutcomeUnsupportedEncoding {
		t.Fatalf("Outcome = %v, want UnsupportedEncoding", res.Outcome)
	}
	if !errors.Is(res.Err, debom.ErrUnsupportedEncoding) {
		t.Errorf("Err = %v, want ErrUnsupportedEncoding", res.Err)
	}

	// The guard must not silently touch the file either.
	data, _ := engine.ReadFile(context.Background(), "a.txt")
	if string(data) != "data" {
		t.Errorf("content = %q, modified despite unsupported encoding", data)
	}
}

func TestProcessor_Dir_RecursionBoundary(t *testing.T) {
	ctx := context.Background()
	files := map[string][]byte{
		"root/f1.txt":     bomHello,
		"root/sub/f2.txt": bomHello,
	}

	t.Run("non-recursive", func(t *testing.T) {
		engine := newMemEngine(t, files)
		proc := debom.NewProcessor(engine, debom.UTF8, zerolog.Nop())

		sum, err := proc.Dir(ctx, "root", false)
		if err != nil {
			t.Fatalf("Dir: %v", err)
		}
		if sum.Files != 1 || sum.Stripped != 1 || sum.SkippedDirs != 1 || sum.Errors != 0 {
			t.Errorf("summary = %+v, want 1 file, 1 stripped, 1 skipped dir", sum)
		}

		f1, _ := engine.ReadFile(ctx, "root/f1.txt")
		if string(f1) != "Hello" {
			t.Errorf("f1 = %q, want stripped", f1)
		}
		f2, _ := engine.ReadFile(ctx, "root/sub/f2.txt")
		if !bytes.Equal(f2, bomHello) {
			t.Errorf("f2 = %v, want byte-for-byte unchanged", f2)
		}
	})

	t.Run("recursive", func(t *testing.T) {
		engine := newMemEngine(t, files)
		proc := debom.NewProcessor(engine, debom.UTF8, zerolog.Nop())

		sum, err := proc.Dir(ctx, "root", true)
		if err != nil {
			t.Fatalf("Dir: %v", err)
		}
		if sum.Files != 2 || sum.Stripped != 2 || sum.SkippedDirs != 0 {
			t.Errorf("summary = %+v, want 2 files stripped", sum)
		}

		for _, path := range []string{"root/f1.txt", "root/sub/f2.txt"} {
			data, _ := engine.ReadFile(ctx, path)
			if string(data) != "Hello" {
				t.Errorf("%s = %q, want stripped", path, data)
			}
		}
	})
}

func TestProcessor_Dir_ListingErrorIsContained(t *testing.T) {
	ctx := context.Background()
	base := newMemEngine(t, map[string][]byte{
		"root/f1.txt":        bomHello,
		"root/broken/f2.txt": bomHello,
	})
	engine := &flakyEngine{StorageEngine: base, failPath: "root/broken"}
	proc := debom.NewProcessor(engine, debom.UTF8, zerolog.Nop())

	sum, err := proc.Dir(ctx, "root", true)
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if sum.Errors != 1 {
		t.Errorf("Errors = %d, want 1 (the unlistable directory)", sum.Errors)
	}
	if sum.Stripped != 1 {
		t.Errorf("Stripped = %d, want 1 (sibling file still processed)", sum.Stripped)
	}
}

func TestProcessor_Dir_Idempotent(t *testing.T) {
	ctx := context.Background()
	engine := newMemEngine(t, map[string][]byte{"root/f.txt": bomHello})
	proc := debom.NewProcessor(engine, debom.UTF8, zerolog.Nop())

	if _, err := proc.Dir(ctx, "root", true); err != nil {
		t.Fatalf("first Dir: %v", err)
	}
	sum, err := proc.Dir(ctx, "root", true)
	if err != nil {
		t.Fatalf("second Dir: %v", err)
	}
	if sum.Stripped != 0 {
		t.Errorf("second pass Stripped = %d, want 0", sum.Stripped)
	}
	data, _ := engine.ReadFile(ctx, "root/f.txt")
	if string(data) != "Hello" {
		t.Errorf("content = %q after second pass, want %q", data, "Hello")
	}
}

func TestProcessor_WithBackup(t *testing.T) {
	ctx := context.Background()
	engine := newMemEngine(t, map[string][]byte{"docs/hello.txt": bomHello})
	backupEngine := local.NewWithFs(afero.NewMemMapFs())
	store := debom.NewBackupStore(backupEngine)

	proc := debom.NewProcessor(engine, debom.UTF8, zerolog.Nop(), debom.WithBackup(store))
	res := proc.File(ctx, "docs/hello.txt")
	if res.Outcome != debom.OutcomeStripped {
		t.Fatalf("Outcome = %v, want Stripped (err=%v)", res.Outcome, res.Err)
	}

	sum := sha256.Sum256(bomHello)
	blobPath := debom.HashPath(hex.EncodeToString(sum[:]))

	blob, err := backupEngine.ReadFile(ctx, blobPath)
	if err != nil {
		t.Fatalf("ReadFile(backup blob): %v", err)
	}
	if !bytes.Equal(blob, bomHello) {
		t.Errorf("backup blob = %v, want original bytes %v", blob, bomHello)
	}

	manifestData, err := backupEngine.ReadFile(ctx, blobPath+".json")
	if err != nil {
		t.Fatalf("ReadFile(backup manifest): %v", err)
	}
	var manifest struct {
		Source string `json:"source"`
		Size   int64  `json:"size"`
	}
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if manifest.Source != "docs/hello.txt" {
		t.Errorf("manifest source = %q, want %q", manifest.Source, "docs/hello.txt")
	}
	if manifest.Size != int64(len(bomHello)) {
		t.Errorf("manifest size = %d, want %d", manifest.Size, len(bomHello))
	}
}

func TestProcessor_BackupFailureBlocksRewrite(t *testing.T) {
	ctx := context.Background()
	engine := newMemEngine(t, map[string][]byte{"a.txt": bomHello})

	roFs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	store := debom.NewBackupStore(local.NewWithFs(roFs))

	proc := debom.NewProcessor(engine, debom.UTF8, zerolog.Nop(), debom.WithBackup(store))
	res := proc.File(ctx, "a.txt")
	if res.Outcome != debom.OutcomeIOError {
		t.Fatalf("Outcome = %v, want IOError when backup fails", res.Outcome)
	}

	data, _ := engine.ReadFile(ctx, "a.txt")
	if !bytes.Equal(data, bomHello) {
		t.Errorf("file was rewritten despite failed backup: %v", data)
	}
}
