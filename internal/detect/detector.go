// Package detect runs the end-to-end detection flow: input validation,
// courtesy truncation, model verdict and, in detailed mode, text statistics.
package detect

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ppiankov/textsense/internal/chunk"
	"github.com/ppiankov/textsense/internal/history"
	"github.com/ppiankov/textsense/internal/logging"
	"github.com/ppiankov/textsense/internal/model"
	"github.com/ppiankov/textsense/internal/telemetry"
	"github.com/ppiankov/textsense/internal/textstats"
)

// Classifier is the model gateway as seen by the detector
type Classifier interface {
	Ready() bool
	Classify(ctx context.Context, text string, maxTokens int) (*model.ClassificationResult, error)
	BatchClassify(ctx context.Context, chunks []string) []*model.ClassificationResult
}

// Recorder persists completed detections
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Request is one detection request
type Request struct {
	Text     string
	MaxWords int        // 0 uses the configured default
	Mode     model.Mode // "" uses the configured default
}

// Config holds detector defaults and collaborators
type Config struct {
	MinChars  int
	MaxWords  int
	Mode      model.Mode
	MaxTokens int
	ModelInfo model.ModelInfo

	History Recorder // Optional
	Metrics *telemetry.Metrics
	Logger  logging.Logger
}

// Detector runs detections. It is safe for concurrent use.
type Detector struct {
	gw       Classifier
	analyzer *textstats.Analyzer
	cfg      Config
}

// NewDetector creates a detector over a gateway and a text analyzer
func NewDetector(gw Classifier, analyzer *textstats.Analyzer, cfg Config) *Detector {
	if cfg.MinChars <= 0 {
		cfg.MinChars = model.DefaultMinChars
	}
	if cfg.MaxWords == 0 {
		cfg.MaxWords = model.DefaultMaxWords
	}
	if cfg.Mode == "" {
		cfg.Mode = model.ModeFast
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = model.DefaultMaxTokens
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if analyzer == nil {
		analyzer = textstats.NewAnalyzer(model.DefaultThresholds(), nil, 0, cfg.Metrics)
	}
	return &Detector{gw: gw, analyzer: analyzer, cfg: cfg}
}

// Detect classifies req.Text and, in detailed mode, attaches text statistics
func (d *Detector) Detect(ctx context.Context, req Request) (*model.Report, error) {
	start := time.Now()

	report, err := d.detect(ctx, req, start)
	if err != nil {
		d.cfg.Metrics.RecordDetectionFailure(model.ErrorCode(err))
		return nil, err
	}

	d.cfg.Metrics.RecordDetection(report.Result.IsAI, string(report.Mode), report.Elapsed)
	if d.cfg.History != nil {
		if err := d.cfg.History.Record(ctx, history.EntryFromReport(report, req.Text)); err != nil {
			d.cfg.Logger.Warn("Failed to record detection", logging.String("id", report.ID), logging.Error(err))
		}
	}

	d.cfg.Logger.Info("Detection complete",
		logging.String("id", report.ID),
		logging.String("mode", string(report.Mode)),
		logging.Bool("is_ai", report.Result.IsAI),
		logging.Float64("ai_probability", report.Result.AIProbability),
		logging.Duration("took", report.Elapsed),
	)
	return report, nil
}

func (d *Detector) detect(ctx context.Context, req Request, start time.Time) (*model.Report, error) {
	mode, err := d.mode(req.Mode)
	if err != nil {
		return nil, err
	}
	if err := d.checkLength(req.Text); err != nil {
		return nil, err
	}
	maxWords, err := d.maxWords(req.MaxWords)
	if err != nil {
		return nil, err
	}

	words := strings.Fields(req.Text)
	input := req.Text
	if len(words) > maxWords {
		input = strings.Join(words[:maxWords], " ")
	}

	result, err := d.gw.Classify(ctx, input, d.cfg.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	report := &model.Report{
		ID:         uuid.New().String(),
		CreatedAt:  start.UTC(),
		Mode:       mode,
		MaxWords:   maxWords,
		InputWords: len(words),
		InputChars: utf8.RuneCountInString(req.Text),
		Result:     result,
		Model:      d.cfg.ModelInfo,
	}

	if mode == model.ModeDetailed {
		f := d.analyzer.Analyze(input)
		report.Features = &f
		report.FeatureIndicators = d.analyzer.Indicators(f)
	}

	report.Elapsed = time.Since(start)
	if secs := report.Elapsed.Seconds(); secs > 0 {
		report.WordsPerSecond = float64(min(len(words), maxWords)) / secs
	}
	return report, nil
}

// DetectChunks classifies text in chunks of wordsPerChunk words and
// summarizes the per-chunk verdicts
func (d *Detector) DetectChunks(ctx context.Context, text string, wordsPerChunk int) (*model.ChunkReport, error) {
	if err := d.checkLength(text); err != nil {
		return nil, err
	}
	if !d.gw.Ready() {
		return nil, model.ErrModelUnavailable
	}
	if wordsPerChunk <= 0 {
		wordsPerChunk = chunk.DefaultWordsPerChunk
	}

	chunks := chunk.Text(text, wordsPerChunk)
	results := d.gw.BatchClassify(ctx, chunks)
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: none of %d chunks could be classified", model.ErrClassificationFailed, len(chunks))
	}

	return &model.ChunkReport{
		WordsPerChunk: wordsPerChunk,
		Chunks:        len(chunks),
		Results:       results,
		Summary:       chunk.Summarize(results),
	}, nil
}

// Features returns the text statistics and indicators without consulting
// the model
func (d *Detector) Features(text string) (model.TextFeatures, []string) {
	f := d.analyzer.Analyze(text)
	return f, d.analyzer.Indicators(f)
}

func (d *Detector) checkLength(text string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < d.cfg.MinChars {
		return fmt.Errorf("%w: %d characters, need at least %d", model.ErrInputTooShort, n, d.cfg.MinChars)
	}
	return nil
}

func (d *Detector) maxWords(n int) (int, error) {
	if n == 0 {
		n = d.cfg.MaxWords
	}
	if n < model.MinMaxWords || n > model.MaxMaxWords {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", model.ErrInvalidMaxWords, n, model.MinMaxWords, model.MaxMaxWords)
	}
	return n, nil
}

func (d *Detector) mode(m model.Mode) (model.Mode, error) {
	if m == "" {
		return d.cfg.Mode, nil
	}
	parsed, ok := model.ParseMode(string(m))
	if !ok {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidMode, m)
	}
	return parsed, nil
}
