// Package detector estimates, for each sheet of a spreadsheet, the probability that the
// sheet holds data. Sheets are parsed into grids, reduced to feature vectors and scored
// by an injected Scorer.
package detector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/datadetector/internal/config"
	"github.com/hyperjump/datadetector/internal/extract"
	"github.com/hyperjump/datadetector/internal/features"
	"github.com/hyperjump/datadetector/internal/grid"
	"github.com/hyperjump/datadetector/internal/model"
	"github.com/hyperjump/datadetector/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrContentTypeRequired is returned when a stream is given without a content type.
	ErrContentTypeRequired = errors.New("content_type must be specified if the input is not a file path")
	// ErrNoScorer is returned by detection on a Detector built without a Scorer.
	ErrNoScorer = errors.New("detector has no scorer")

	// ErrInvalidContentType is returned for a content type other than xls, xlsx or csv.
	ErrInvalidContentType = extract.ErrInvalidContentType
	// ErrUnreadableInput matches every parse failure; see extract.UnreadableError.
	ErrUnreadableInput = extract.ErrUnreadableInput
)

// DefaultThreshold is the probability at or above which a sheet counts as data.
const DefaultThreshold = 0.5

// Scorer turns feature vectors into P(data), one probability per vector, in order.
type Scorer interface {
	Score(ctx context.Context, vecs []features.Vector) ([]float64, error)
}

// Detector runs detection. It is safe for concurrent use when its Scorer is.
type Detector struct {
	scorer    Scorer
	parser    *extract.Parser
	logger    *zap.Logger
	threshold float64
	cache     *resultCache
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Detector) { d.logger = l }
}

// WithThreshold sets the probability at or above which SheetResult.IsData is true.
func WithThreshold(t float64) Option {
	return func(d *Detector) { d.threshold = t }
}

// WithCache keeps the results of the last size inputs. Zero disables caching.
func WithCache(size int) Option {
	return func(d *Detector) { d.cache = newResultCache(size) }
}

// New returns a Detector scoring with scorer. A nil scorer gives a Detector that can only
// extract features.
func New(scorer Scorer, opts ...Option) *Detector {
	d := &Detector{
		scorer:    scorer,
		logger:    zap.NewNop(),
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.parser = extract.NewParser(extract.WithLogger(d.logger))
	return d
}

// NewFromArtifacts loads the vectorizer, scaler and classifier named by cfg. It fails if
// the three disagree on dimensionality.
func NewFromArtifacts(cfg config.ModelConfig, opts ...Option) (*Detector, error) {
	p, err := model.Load(cfg)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return New(p, opts...), nil
}

// Close releases the scorer if it holds resources.
func (d *Detector) Close() error {
	if c, ok := d.scorer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// DetectOption configures a single detection call.
type DetectOption func(*detectOptions)

type detectOptions struct {
	contentType  string
	truncateRows int
	name         string
}

// WithContentType declares the input format: "xls", "xlsx" or "csv".
func WithContentType(ct string) DetectOption {
	return func(o *detectOptions) { o.contentType = ct }
}

// WithTruncateRows stops reading every sheet after n rows. Zero reads all rows.
func WithTruncateRows(n int) DetectOption {
	return func(o *detectOptions) { o.truncateRows = n }
}

// WithName names the single sheet of CSV input.
func WithName(name string) DetectOption {
	return func(o *detectOptions) { o.name = name }
}

func buildOptions(opts []DetectOption) detectOptions {
	var o detectOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// DetectPath returns P(data) for each sheet of the file at path, in sheet order. The
// format comes from WithContentType or, when absent, the file name.
func (d *Detector) DetectPath(ctx context.Context, path string, opts ...DetectOption) ([]float64, error) {
	results, err := d.DetectSheetsPath(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	return probabilities(results), nil
}

// DetectReader returns P(data) for each sheet read from r. WithContentType is required.
func (d *Detector) DetectReader(ctx context.Context, r io.Reader, opts ...DetectOption) ([]float64, error) {
	results, err := d.DetectSheetsReader(ctx, r, opts...)
	if err != nil {
		return nil, err
	}
	return probabilities(results), nil
}

// DetectSheetsPath is DetectPath with per-sheet names, features and verdicts.
func (d *Detector) DetectSheetsPath(ctx context.Context, path string, opts ...DetectOption) ([]models.SheetResult, error) {
	content, ct, o, err := d.readPath(path, opts)
	if err != nil {
		return nil, err
	}
	return d.detect(ctx, content, ct, o)
}

// DetectSheetsReader is DetectReader with per-sheet names, features and verdicts.
func (d *Detector) DetectSheetsReader(ctx context.Context, r io.Reader, opts ...DetectOption) ([]models.SheetResult, error) {
	content, ct, o, err := d.readStream(r, opts)
	if err != nil {
		return nil, err
	}
	return d.detect(ctx, content, ct, o)
}

// detect scores content already in memory.
func (d *Detector) detect(ctx context.Context, content []byte, ct extract.ContentType, o detectOptions) ([]models.SheetResult, error) {
	if d.scorer == nil {
		return nil, ErrNoScorer
	}
	key := cacheKey(content, ct, o)
	if cached, ok := d.cache.Get(key); ok {
		d.logger.Debug("detection cache hit", zap.String("content_type", string(ct)))
		return cached, nil
	}

	results, err := d.extract(ctx, content, ct, o)
	if err != nil {
		return nil, err
	}
	vecs := make([]features.Vector, len(results))
	for i, r := range results {
		vecs[i] = r.Features
	}
	probs, err := d.scorer.Score(ctx, vecs)
	if err != nil {
		return nil, fmt.Errorf("score sheets: %w", err)
	}
	if len(probs) != len(vecs) {
		return nil, fmt.Errorf("score sheets: scorer returned %d probabilities for %d sheets", len(probs), len(vecs))
	}
	for i, p := range probs {
		results[i].Probability = p
		results[i].IsData = p >= d.threshold
	}

	d.cache.Set(key, results)
	d.logger.Debug("sheets detected",
		zap.String("content_type", string(ct)),
		zap.Int("sheets", len(results)),
		zap.Float64s("probabilities", probs),
	)
	return results, nil
}

// FeaturesPath returns the feature vector of each sheet of the file at path without
// scoring it. Probability and IsData are left zero.
func (d *Detector) FeaturesPath(ctx context.Context, path string, opts ...DetectOption) ([]models.SheetResult, error) {
	content, ct, o, err := d.readPath(path, opts)
	if err != nil {
		return nil, err
	}
	return d.extract(ctx, content, ct, o)
}

// FeaturesReader is FeaturesPath for a stream. WithContentType is required.
func (d *Detector) FeaturesReader(ctx context.Context, r io.Reader, opts ...DetectOption) ([]models.SheetResult, error) {
	content, ct, o, err := d.readStream(r, opts)
	if err != nil {
		return nil, err
	}
	return d.extract(ctx, content, ct, o)
}

// ResolveContentType validates an explicit content type, or derives one from path when
// ct is empty. With neither it returns ErrContentTypeRequired.
func ResolveContentType(ct, path string) (extract.ContentType, error) {
	if ct != "" {
		return extract.ParseContentType(ct)
	}
	if path == "" {
		return "", ErrContentTypeRequired
	}
	return extract.ContentTypeFromPath(path), nil
}

func (d *Detector) readPath(path string, opts []DetectOption) ([]byte, extract.ContentType, detectOptions, error) {
	o := buildOptions(opts)
	ct, err := ResolveContentType(o.contentType, path)
	if err != nil {
		return nil, "", o, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", o, fmt.Errorf("read file: %w", err)
	}
	if o.name == "" {
		o.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return content, ct, o, nil
}

// readStream validates the content type before touching r.
func (d *Detector) readStream(r io.Reader, opts []DetectOption) ([]byte, extract.ContentType, detectOptions, error) {
	o := buildOptions(opts)
	ct, err := ResolveContentType(o.contentType, "")
	if err != nil {
		return nil, "", o, err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, "", o, fmt.Errorf("read input: %w", err)
	}
	if o.name == "" {
		o.name = string(ct)
	}
	return buf.Bytes(), ct, o, nil
}

func (d *Detector) extract(ctx context.Context, content []byte, ct extract.ContentType, o detectOptions) ([]models.SheetResult, error) {
	sheets, err := d.parser.ParseBytes(content, ct, extract.Options{TruncateRows: o.truncateRows, Name: o.name})
	if err != nil {
		return nil, err
	}
	results := make([]models.SheetResult, len(sheets))
	for i, sh := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results[i] = sheetFeatures(sh)
	}
	return results, nil
}

func sheetFeatures(sh grid.Sheet) models.SheetResult {
	return models.SheetResult{
		Index:    sh.Index,
		Name:     sh.Name,
		Features: features.Extract(sh.Grid),
	}
}

func probabilities(results []models.SheetResult) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.Probability
	}
	return out
}
