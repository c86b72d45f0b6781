package local

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveOpenRemove(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	key, size, mimeType, err := store.Save(ctx, "PATTA-20260110-0001", "saleDeed_deed.pdf", strings.NewReader("%PDF-1.4 test"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if key != "PATTA-20260110-0001/saleDeed_deed.pdf" {
		t.Fatalf("unexpected storage key %q", key)
	}
	if size != int64(len("%PDF-1.4 test")) {
		t.Fatalf("expected size %d, got %d", len("%PDF-1.4 test"), size)
	}
	if mimeType == "" {
		t.Fatalf("expected detected mime type")
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.4 test" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Remove(ctx, key); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Open(ctx, key); err == nil {
		t.Fatalf("expected open to fail after remove")
	}

	// Removing again is not an error.
	if err := store.Remove(ctx, key); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestSaveRejectsBadInput(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, _, _, err := store.Save(ctx, "../escape", "a.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for traversal namespace")
	}
	if _, _, _, err := store.Save(ctx, "ns/sub", "a.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for namespace with separator")
	}
	if _, _, _, err := store.Save(ctx, "ns", "../a.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for traversal file name")
	}
}

func TestOpenRejectsTraversalKeys(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"../outside", "/etc/passwd", "a/../../b"} {
		if _, err := store.Open(ctx, key); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}
