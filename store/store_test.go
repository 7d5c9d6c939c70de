package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestPragmas(t *testing.T) {
	s := OpenMemory(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatal(err)
	}
	// :memory: may report "memory" instead of "wal"
	if journalMode != "wal" && journalMode != "memory" {
		t.Fatalf("journal_mode = %q, want wal or memory", journalMode)
	}
	var busyTimeout int
	if err := s.db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
		t.Fatal(err)
	}
	if busyTimeout != 10_000 {
		t.Fatalf("busy_timeout = %d, want 10000", busyTimeout)
	}
}

func TestGetPut(t *testing.T) {
	ctx := context.Background()
	s := OpenMemory(t)

	if _, ok, err := s.Get(ctx, "123"); err != nil || ok {
		t.Fatalf("unexpected entry: %v %v", ok, err)
	}
	if err := s.Put(ctx, "123", "icon", "<svg/>"); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Get(ctx, "123")
	if err != nil || !ok || got != "<svg/>" {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}

	// last write wins
	if err := s.Put(ctx, "123", "illustration", "<svg></svg>"); err != nil {
		t.Fatal(err)
	}
	got, _, _ = s.Get(ctx, "123")
	if got != "<svg></svg>" {
		t.Errorf("expected replaced content, got %q", got)
	}
	if n, _ := s.Count(ctx, "icon"); n != 0 {
		t.Errorf("expected scene to be replaced, got %d icons", n)
	}
	if n, _ := s.Count(ctx, ""); n != 1 {
		t.Errorf("expected 1 resource, got %d", n)
	}
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "resources.db")
	s, err := Open(path, WithMkdirAll())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "1", "icon", "<svg/>"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok, _ := s.Get(ctx, "1"); !ok {
		t.Error("content should survive reopening")
	}
}
