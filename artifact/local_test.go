package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "output"))
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}

	if err := store.Save("run-1", "CallPrep_Acme.md", []byte("# brief")); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := store.Get("run-1", "CallPrep_Acme.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "# brief" {
		t.Fatalf("expected '# brief', got %q", string(data))
	}

	// File shows up where operators expect it.
	path := filepath.Join(store.Dir(), "run-1", "CallPrep_Acme.md")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected artifact file at %s: %v", path, err)
	}
}

func TestLocalStore_ListAndDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Save("run-1", "a.md", []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := store.Save("run-1", "b.md", []byte("b")); err != nil {
		t.Fatal(err)
	}

	names, err := store.List("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}

	if err := store.Delete("run-1", "a.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get("run-1", "a.md"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	names, err = store.List("unknown-run")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty list, got %d", len(names))
	}
}

func TestLocalStore_SanitizesNames(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStore(filepath.Join(base, "output"))
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Save("run-1", "../../escape.md", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Nothing may be written outside the store directory.
	if _, err := os.Stat(filepath.Join(base, "escape.md")); !os.IsNotExist(err) {
		t.Fatal("artifact escaped the store directory")
	}

	data, err := store.Get("run-1", "../../escape.md")
	if err != nil {
		t.Fatalf("get sanitized name: %v", err)
	}
	if string(data) != "x" {
		t.Fatalf("expected 'x', got %q", string(data))
	}
}
