package detect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/textsense/internal/backend"
	"github.com/ppiankov/textsense/internal/source"
)

type fakeFetcher struct {
	docs map[string]string
}

func (f *fakeFetcher) FromURL(_ context.Context, rawURL string) (*source.Document, error) {
	text, ok := f.docs[rawURL]
	if !ok {
		return nil, errors.New("not found")
	}
	return &source.Document{Text: text, Source: rawURL, ContentType: "text/html"}, nil
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadList(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "list.txt", `
# inputs
a.txt
https://example.com/post

a.txt
  b.md
`)

	got, err := ReadList(path)
	if err != nil {
		t.Fatalf("ReadList failed: %v", err)
	}
	want := []string{"a.txt", "https://example.com/post", "b.md"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadList() = %v, want %v", got, want)
	}

	if _, err := ReadList(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing list")
	}
}

func TestBatchProcessor_Process(t *testing.T) {
	dir := t.TempDir()
	good := writeTemp(t, dir, "good.txt", sampleText)
	short := writeTemp(t, dir, "short.txt", "tiny")
	bad := writeTemp(t, dir, "image.png", "not text")

	fetcher := &fakeFetcher{docs: map[string]string{
		"https://example.com/post": "A fetched article with plenty of words in it.",
	}}
	d := newDetector(t, backend.NewStub(backend.FixedLogits(0, 1)), Config{})
	bp := NewBatchProcessor(d, fetcher, 3, 0)

	entries := []string{good, "https://example.com/post", short, bad, "https://example.com/missing"}
	results := bp.Process(context.Background(), entries, Request{})

	if len(results) != len(entries) {
		t.Fatalf("expected %d results, got %d", len(entries), len(results))
	}
	for i, r := range results {
		if r.Input != entries[i] {
			t.Errorf("result %d is for %s, want %s", i, r.Input, entries[i])
		}
	}

	if results[0].Err != nil || results[0].Report == nil {
		t.Errorf("file entry failed: %v", results[0].Err)
	}
	if results[1].Err != nil || results[1].Document.ContentType != "text/html" {
		t.Errorf("URL entry failed: %v", results[1].Err)
	}
	if results[2].Err == nil {
		t.Error("expected short input to fail")
	}
	if !errors.Is(results[3].Err, source.ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", results[3].Err)
	}
	if results[4].Err == nil {
		t.Error("expected missing URL to fail")
	}
}

func TestBatchProcessor_NoFetcher(t *testing.T) {
	d := newDetector(t, backend.NewStub(nil), Config{})
	results := NewBatchProcessor(d, nil, 0, 0).Process(context.Background(), []string{"https://example.com"}, Request{})

	if results[0].Err == nil || !strings.Contains(results[0].Err.Error(), "no URL fetcher") {
		t.Errorf("expected missing fetcher error, got %v", results[0].Err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://example.com/blog/post/", "example.com_blog_post"},
		{"notes/my essay.txt", "notes_my-essay.txt"},
		{`C:\docs\a?b.md`, "C__docs_a_b.md"},
		{"///", "report"},
		{strings.Repeat("x", 150), strings.Repeat("x", 100)},
		{strings.Repeat("é", 60), strings.Repeat("é", 50)},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
