// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/datadetector/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		path TEXT,
		content_type TEXT NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		mod_time TIMESTAMP,
		truncate_rows INTEGER NOT NULL DEFAULT 0,
		detected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_files_detected_at ON files(detected_at);
	CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);

	CREATE TABLE IF NOT EXISTS sheets (
		file_id TEXT NOT NULL,
		sheet_index INTEGER NOT NULL,
		name TEXT,
		probability REAL NOT NULL,
		is_data INTEGER NOT NULL,
		features TEXT,
		PRIMARY KEY (file_id, sheet_index),
		FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// SaveFileResult writes r and its sheets in one transaction.
func (s *SQLiteStorage) SaveFileResult(ctx context.Context, r *models.FileResult) error {
	if r.ID == "" {
		return errors.New("file result has no id")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheets WHERE file_id = ?`, r.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO files (id, path, content_type, size, mod_time, truncate_rows, detected_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Path, r.ContentType, r.Size, r.ModTime, r.TruncateRows, r.DetectedAt,
	); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sheets (file_id, sheet_index, name, probability, is_data, features)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sh := range r.Sheets {
		featuresJSON, err := json.Marshal(sh.Features)
		if err != nil {
			return fmt.Errorf("failed to marshal features: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, r.ID, sh.Index, sh.Name, sh.Probability, sh.IsData, string(featuresJSON)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetFileResult returns a result by ID.
func (s *SQLiteStorage) GetFileResult(ctx context.Context, id string) (*models.FileResult, error) {
	var r models.FileResult
	var path sql.NullString
	var modTime sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT id, path, content_type, size, mod_time, truncate_rows, detected_at
		 FROM files WHERE id = ?`, id,
	).Scan(&r.ID, &path, &r.ContentType, &r.Size, &modTime, &r.TruncateRows, &r.DetectedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	r.Path = path.String
	r.ModTime = modTime.Time

	if r.Sheets, err = s.sheets(ctx, r.ID); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStorage) sheets(ctx context.Context, fileID string) ([]models.SheetResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sheet_index, name, probability, is_data, features
		 FROM sheets WHERE file_id = ? ORDER BY sheet_index`,
		fileID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sheets := []models.SheetResult{}
	for rows.Next() {
		var sh models.SheetResult
		var name, featuresJSON sql.NullString
		if err := rows.Scan(&sh.Index, &name, &sh.Probability, &sh.IsData, &featuresJSON); err != nil {
			return nil, err
		}
		sh.Name = name.String
		if featuresJSON.String != "" {
			if err := json.Unmarshal([]byte(featuresJSON.String), &sh.Features); err != nil {
				return nil, fmt.Errorf("failed to unmarshal features: %w", err)
			}
		}
		sheets = append(sheets, sh)
	}
	return sheets, rows.Err()
}

// ListFileResults returns results with offset and limit, newest first.
func (s *SQLiteStorage) ListFileResults(ctx context.Context, offset, limit int) ([]*models.FileResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, content_type, size, mod_time, truncate_rows, detected_at
		 FROM files ORDER BY detected_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}

	var results []*models.FileResult
	for rows.Next() {
		var r models.FileResult
		var path sql.NullString
		var modTime sql.NullTime
		if err := rows.Scan(&r.ID, &path, &r.ContentType, &r.Size, &modTime, &r.TruncateRows, &r.DetectedAt); err != nil {
			rows.Close()
			return nil, err
		}
		r.Path = path.String
		r.ModTime = modTime.Time
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, r := range results {
		if r.Sheets, err = s.sheets(ctx, r.ID); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// DeleteFileResult removes a result and its sheets.
func (s *SQLiteStorage) DeleteFileResult(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheets WHERE file_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tx.Commit()
}

// CountFiles returns the total number of stored results.
func (s *SQLiteStorage) CountFiles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&count)
	return count, err
}

// CountSheets returns the total number of stored sheets.
func (s *SQLiteStorage) CountSheets(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheets`).Scan(&count)
	return count, err
}

// CountDataSheets returns the number of stored sheets judged to hold data.
func (s *SQLiteStorage) CountDataSheets(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheets WHERE is_data = 1`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
