package detect

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/textsense/internal/model"
	"github.com/ppiankov/textsense/internal/source"
	"github.com/ppiankov/textsense/internal/worker"
)

// URLFetcher loads a document from a URL
type URLFetcher interface {
	FromURL(ctx context.Context, rawURL string) (*source.Document, error)
}

// BatchResult is the outcome for one entry of a batch
type BatchResult struct {
	Input    string
	Document *source.Document
	Report   *model.Report
	Err      error
}

// BatchProcessor runs detections over many files and URLs concurrently
type BatchProcessor struct {
	detector *Detector
	fetcher  URLFetcher // Optional; URL entries fail without one
	workers  int
	maxBytes int64
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(detector *Detector, fetcher URLFetcher, workers int, maxBytes int64) *BatchProcessor {
	if workers <= 0 {
		workers = 1
	}
	return &BatchProcessor{
		detector: detector,
		fetcher:  fetcher,
		workers:  workers,
		maxBytes: maxBytes,
	}
}

// Process detects every entry, returning results in entry order. Each
// entry is a file path or an http(s) URL.
func (b *BatchProcessor) Process(ctx context.Context, entries []string, req Request) []BatchResult {
	outcomes := worker.RunOrdered(ctx, b.workers, entries, func(ctx context.Context, entry string) (BatchResult, error) {
		return b.processOne(ctx, entry, req), nil
	})

	results := make([]BatchResult, len(entries))
	for i, o := range outcomes {
		results[i] = o.Value
		results[i].Input = entries[i]
		if o.Err != nil && results[i].Err == nil {
			results[i].Err = o.Err
		}
	}
	return results
}

// ProcessFile reads entries from a list file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string, req Request) ([]BatchResult, error) {
	entries, err := ReadList(listPath)
	if err != nil {
		return nil, fmt.Errorf("read list: %w", err)
	}
	return b.Process(ctx, entries, req), nil
}

func (b *BatchProcessor) processOne(ctx context.Context, entry string, req Request) BatchResult {
	res := BatchResult{Input: entry}

	doc, err := b.load(ctx, entry)
	if err != nil {
		res.Err = err
		return res
	}
	res.Document = doc

	req.Text = doc.Text
	res.Report, res.Err = b.detector.Detect(ctx, req)
	return res
}

func (b *BatchProcessor) load(ctx context.Context, entry string) (*source.Document, error) {
	if !IsURL(entry) {
		return source.FromFile(entry, b.maxBytes)
	}
	if b.fetcher == nil {
		return nil, fmt.Errorf("no URL fetcher configured for %s", entry)
	}
	return b.fetcher.FromURL(ctx, entry)
}

// IsURL reports whether an entry names an http(s) resource
func IsURL(entry string) bool {
	return strings.HasPrefix(entry, "http://") || strings.HasPrefix(entry, "https://")
}

// ReadList reads entries from a file (one per line). Blank lines and
// lines starting with # are skipped; duplicates keep their first position.
func ReadList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			entries = append(entries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return entries, nil
}

const maxFilenameLen = 100

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// SanitizeFilename turns a path or URL into a safe report file stem
func SanitizeFilename(s string) string {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, "/")
	s = filenameReplacer.Replace(s)
	s = strings.Trim(s, "._-")

	if len(s) > maxFilenameLen {
		cut := maxFilenameLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	if s == "" {
		s = "report"
	}
	return s
}
