// Package scanner runs detection over spreadsheets on disk and stores the results.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/datadetector/internal/detector"
	"github.com/hyperjump/datadetector/internal/extract"
	"github.com/hyperjump/datadetector/internal/fileid"
	"github.com/hyperjump/datadetector/internal/models"
	"github.com/hyperjump/datadetector/internal/storage"
	"go.uber.org/zap"
)

// SheetDetector is the part of *detector.Detector the scanner needs.
type SheetDetector interface {
	DetectSheetsPath(ctx context.Context, path string, opts ...detector.DetectOption) ([]models.SheetResult, error)
}

// Scanner detects files and stores one FileResult per file, keyed by its absolute path.
type Scanner struct {
	detector     SheetDetector
	storage      storage.Storage
	truncateRows int
	logger       *zap.Logger // optional; when set, logs debug events
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets a logger for debug output (file detected, file skipped, etc.).
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// WithTruncateRows limits how many rows of each sheet are read.
func WithTruncateRows(n int) Option {
	return func(s *Scanner) { s.truncateRows = n }
}

// New creates a scanner.
func New(d SheetDetector, store storage.Storage, opts ...Option) *Scanner {
	s := &Scanner{detector: d, storage: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summary counts the outcome of a directory scan.
type Summary struct {
	Detected  int `json:"detected"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// ScanFile detects the file at path and stores the result. If allowedExts is non-empty
// the file's extension must be in it (case-insensitive). A file already stored with the
// same size and mtime is not detected again; its stored result is returned with
// fresh == false.
func (s *Scanner) ScanFile(ctx context.Context, path string, allowedExts []string) (result *models.FileResult, fresh bool, err error) {
	s.debug("scanner scanning file", zap.String("path", path))
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !ExtensionAllowed(ext, allowedExts) {
		return nil, false, fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, false, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, false, fmt.Errorf("not a regular file: %s", absPath)
	}

	id := fileid.FileID(absPath)
	if prev, err := s.storage.GetFileResult(ctx, id); err == nil && s.unchanged(prev, absPath, info) {
		s.debug("scanner skipping unchanged file", zap.String("path", absPath))
		return prev, false, nil
	}

	sheets, err := s.detector.DetectSheetsPath(ctx, absPath, detector.WithTruncateRows(s.truncateRows))
	if err != nil {
		return nil, false, fmt.Errorf("detect %s: %w", absPath, err)
	}
	result = &models.FileResult{
		ID:           id,
		Path:         absPath,
		ContentType:  string(extract.ContentTypeFromPath(absPath)),
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		TruncateRows: s.truncateRows,
		Sheets:       sheets,
		DetectedAt:   time.Now().UTC(),
	}
	if err := s.storage.SaveFileResult(ctx, result); err != nil {
		return nil, false, fmt.Errorf("failed to store result: %w", err)
	}
	s.debug("scanner file detected", zap.String("path", absPath), zap.String("id", id), zap.Int("sheets", len(sheets)))
	return result, true, nil
}

func (s *Scanner) unchanged(prev *models.FileResult, absPath string, info os.FileInfo) bool {
	return prev.Path == absPath &&
		prev.Size == info.Size() &&
		prev.ModTime.Equal(info.ModTime()) &&
		prev.TruncateRows == s.truncateRows
}

// ScanDirectory walks dir recursively and scans each regular file whose extension is in
// allowedExts (all files when empty). A file that fails detection is logged and counted
// rather than stopping the walk; walk errors and context cancellation stop it.
func (s *Scanner) ScanDirectory(ctx context.Context, dir string, allowedExts []string) (Summary, error) {
	var sum Summary
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return sum, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return sum, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return sum, fmt.Errorf("not a directory: %s", absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !ExtensionAllowed(ext, allowedExts) {
			return nil
		}
		// Resolve symlinks so we only scan regular files
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		_, fresh, scanErr := s.ScanFile(ctx, path, allowedExts)
		switch {
		case errors.Is(scanErr, context.Canceled), errors.Is(scanErr, context.DeadlineExceeded):
			return scanErr
		case scanErr != nil:
			sum.Failed++
			if s.logger != nil {
				s.logger.Warn("scanner detection failed", zap.String("path", path), zap.Error(scanErr))
			}
		case fresh:
			sum.Detected++
		default:
			sum.Unchanged++
		}
		return nil
	})
	return sum, err
}

// Delete removes the stored result for path. A path with no stored result is not an error.
func (s *Scanner) Delete(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	id := fileid.FileID(absPath)
	if err := s.storage.DeleteFileResult(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	s.debug("scanner result deleted", zap.String("path", absPath), zap.String("id", id))
	return nil
}

// ExtensionAllowed reports whether ext is in allowed. Both sides are compared without
// case or leading dot.
func ExtensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}

func (s *Scanner) debug(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Debug(msg, fields...)
	}
}
