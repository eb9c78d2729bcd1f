// internal/storage/pricecache/localfs_test.go
package pricecache

import (
	"context"
	"errors"
	"sort"
	"testing"
)

func TestLocalFS_ImplementsBackend(t *testing.T) {
	var _ Backend = (*LocalFS)(nil)
}

func TestLocalFS_WriteRead(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	ctx := context.Background()

	if err := fs.Write(ctx, "history/yahoo/KO/1d/open_latest.json", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := fs.Read(ctx, "history/yahoo/KO/1d/open_latest.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("got %q", got)
	}

	// Overwrite replaces the value
	fs.Write(ctx, "history/yahoo/KO/1d/open_latest.json", []byte(`{"a":2}`))
	got, _ = fs.Read(ctx, "history/yahoo/KO/1d/open_latest.json")
	if string(got) != `{"a":2}` {
		t.Errorf("expected overwritten value, got %q", got)
	}
}

func TestLocalFS_ReadMissing(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	_, err := fs.Read(context.Background(), "nope.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalFS_RejectsEscape(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	if err := fs.Write(context.Background(), "../outside.json", []byte("x")); err == nil {
		t.Error("expected error for key escaping the root")
	}
}

func TestLocalFS_ListDelete(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	fs.Write(ctx, "history/yahoo/KO/1d/a.json", []byte("a"))
	fs.Write(ctx, "history/yahoo/PEP/1d/b.json", []byte("b"))
	fs.Write(ctx, "history/csv/SPY/1d/c.json", []byte("c"))

	keys, err := fs.List(ctx, "history/yahoo")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "history/yahoo/KO/1d/a.json" {
		t.Errorf("unexpected keys %v", keys)
	}

	if err := fs.Delete(ctx, keys[0]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Deleting twice is not an error
	if err := fs.Delete(ctx, keys[0]); err != nil {
		t.Errorf("second Delete: %v", err)
	}

	keys, _ = fs.List(ctx, "history/yahoo")
	if len(keys) != 1 {
		t.Errorf("expected 1 key after delete, got %v", keys)
	}

	keys, err = fs.List(ctx, "history/none")
	if err != nil || len(keys) != 0 {
		t.Errorf("expected empty list for missing prefix, got %v, %v", keys, err)
	}
}
