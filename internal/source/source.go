// Package source reads detection input from stdin, files and URLs.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultMaxBytes caps input size when no limit is configured
const DefaultMaxBytes = 2_000_000

var (
	// ErrNotUTF8 is returned for text input that is not valid UTF-8
	ErrNotUTF8 = errors.New("input is not valid UTF-8")

	// ErrTooLarge is returned when input exceeds the byte limit
	ErrTooLarge = errors.New("input exceeds size limit")

	// ErrUnsupportedType is returned for files that are neither text nor HTML
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrDisallowed is returned when robots.txt forbids fetching a URL
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// Document is text ready for detection together with where it came from
type Document struct {
	Text        string `json:"-"`
	Title       string `json:"title,omitempty"`
	Source      string `json:"source"`
	ContentType string `json:"content_type,omitempty"`
}

// FromReader reads plain UTF-8 text, e.g. stdin
func FromReader(r io.Reader, maxBytes int64) (*Document, error) {
	data, err := readLimited(r, maxBytes)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, ErrNotUTF8
	}
	return &Document{Text: string(data), Source: "stdin", ContentType: "text/plain"}, nil
}

// FromFile reads a .txt file as UTF-8 or extracts the visible text of an
// .html/.htm file
func FromFile(path string, maxBytes int64) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".html", ".htm":
	default:
		return nil, fmt.Errorf("%w: %s (supported: .txt, .html, .htm)", ErrUnsupportedType, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := readLimited(f, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc := &Document{Source: path}
	if ext == ".html" || ext == ".htm" {
		text, title, err := ExtractVisibleText(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		doc.Text, doc.Title, doc.ContentType = text, title, "text/html"
		return doc, nil
	}

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotUTF8)
	}
	doc.Text, doc.ContentType = string(data), "text/plain"
	return doc, nil
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, maxBytes)
	}
	return data, nil
}
