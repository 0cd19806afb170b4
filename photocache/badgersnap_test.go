package photocache

import (
	"bytes"
	"context"
	"testing"

	"github.com/dgraph-io/badger"
)

func openTestBadger(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("Opening badger: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBadgerSnapshotStore(t *testing.T) {
	ctx := context.Background()
	s := NewBadgerSnapshotStore(openTestBadger(t))

	_, ok, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read of empty store: %v", err)
	}
	if ok {
		t.Fatalf("Empty store should report no snapshot")
	}

	want := []byte(`{"remote://members/1_1.jpg":{"url":"u","timestamp":1}}`)
	if err := s.Write(ctx, want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, ok, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !ok {
		t.Fatalf("Snapshot should exist after write")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Bad snapshot round trip; got %q, want %q", got, want)
	}

	if err := s.Remove(ctx); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	_, ok, err = s.Read(ctx)
	if err != nil {
		t.Fatalf("Read after remove: %v", err)
	}
	if ok {
		t.Errorf("Snapshot should be gone after remove")
	}
}

func TestBadgerSnapshotStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewBadgerSnapshotStore(openTestBadger(t))

	if err := s.Write(ctx, []byte("one")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write(ctx, []byte("two")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, ok, err := s.Read(ctx)
	if err != nil || !ok {
		t.Fatalf("Read: (%v, %v)", ok, err)
	}
	if string(got) != "two" {
		t.Errorf("Overwrite lost; got %q, want %q", got, "two")
	}
}
