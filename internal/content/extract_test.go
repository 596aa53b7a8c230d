package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docvault/docvault/internal/logger"
	"github.com/docvault/docvault/internal/storage"
)

type mapCache struct {
	m map[string]string
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.m[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, val string, _ time.Duration) error {
	c.m[key] = val
	return nil
}

func TestTextPlainFile(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	path := filepath.Join(dir, "notes_v1_1.txt")
	if err := os.WriteFile(path, []byte("quarterly invoice summary"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ex := NewExtractor(store, nil, logger.New("error"))
	if got := ex.Text(context.Background(), path); got != "quarterly invoice summary" {
		t.Fatalf("Text = %q", got)
	}
}

func TestTextUnsupportedAndMissing(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	bin := filepath.Join(dir, "photo_v1_1.png")
	if err := os.WriteFile(bin, []byte{0x89, 0x50}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ex := NewExtractor(store, nil, logger.New("error"))
	if got := ex.Text(context.Background(), bin); got != "" {
		t.Fatalf("unsupported type should yield empty text, got %q", got)
	}
	if got := ex.Text(context.Background(), filepath.Join(dir, "missing.txt")); got != "" {
		t.Fatalf("missing file should yield empty text, got %q", got)
	}
	if got := ex.Text(context.Background(), "/etc/passwd"); got != "" {
		t.Fatalf("path outside the store should yield empty text, got %q", got)
	}
}

func TestTextCorruptPDF(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	path := filepath.Join(dir, "broken_v1_1.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 not really"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ex := NewExtractor(store, nil, logger.New("error"))
	if got := ex.Text(context.Background(), path); got != "" {
		t.Fatalf("corrupt pdf should yield empty text, got %q", got)
	}
}

func TestTextUsesCache(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	path := filepath.Join(dir, "notes_v1_1.txt")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c := &mapCache{m: map[string]string{}}
	ex := NewExtractor(store, c, logger.New("error"))

	if got := ex.Text(context.Background(), path); got != "original" {
		t.Fatalf("Text = %q", got)
	}
	// Second read must come from the cache.
	if err := os.WriteFile(path, []byte("changed on disk"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if got := ex.Text(context.Background(), path); got != "original" {
		t.Fatalf("expected cached text, got %q", got)
	}
}
