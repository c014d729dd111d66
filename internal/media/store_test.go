package media

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiskStoreSaveAndRemove(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	rel, err := store.Save("photo.jpg", bytes.NewReader([]byte("payload")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(rel, URLPrefix) {
		t.Fatalf("expected path under %s got %q", URLPrefix, rel)
	}
	if !strings.HasSuffix(rel, "_photo.jpg") {
		t.Fatalf("expected original filename suffix got %q", rel)
	}

	onDisk := filepath.Join(store.BaseDir(), strings.TrimPrefix(rel, URLPrefix))
	content, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(content) != "payload" {
		t.Fatalf("unexpected content %q", content)
	}

	if err := store.Remove(rel); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Fatalf("expected file to be gone, stat err=%v", err)
	}
}

func TestDiskStoreSaveUniquePrefixes(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	first, err := store.Save("photo.jpg", bytes.NewReader([]byte("a")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := store.Save("photo.jpg", bytes.NewReader([]byte("b")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first == second {
		t.Fatal("expected same filename to store under distinct paths")
	}
}

func TestDiskStoreRemoveMissingFileIsNoop(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Remove(URLPrefix + "gone.jpg"); err != nil {
		t.Fatalf("expected missing file removal to succeed: %v", err)
	}
}

func TestDiskStoreRemoveRejectsForeignPath(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Remove("/etc/passwd"); err == nil {
		t.Fatal("expected error for path outside the upload prefix")
	}
}

func TestDiskStoreSanitizesTraversalFilenames(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	rel, err := store.Save("../../evil.jpg", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.Contains(rel, "..") {
		t.Fatalf("expected sanitized path got %q", rel)
	}

	entries, err := os.ReadDir(store.BaseDir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected single file inside base dir, got %d", len(entries))
	}
}
