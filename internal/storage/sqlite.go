package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/romangod6/site-devserver/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sitemap_runs (
            id TEXT PRIMARY KEY,
            root TEXT NOT NULL,
            host TEXT NOT NULL,
            output_path TEXT NOT NULL,
            file_count INTEGER NOT NULL DEFAULT 0,
            url_count INTEGER NOT NULL DEFAULT 0,
            status TEXT NOT NULL,
            error TEXT,
            started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            finished_at DATETIME
        )`,
		`CREATE TABLE IF NOT EXISTS sitemap_entries (
            run_id TEXT NOT NULL,
            path TEXT NOT NULL,
            url TEXT NOT NULL,
            content_hash TEXT NOT NULL,
            last_modified TEXT NOT NULL,
            PRIMARY KEY (run_id, path),
            FOREIGN KEY(run_id) REFERENCES sitemap_runs(id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_sitemap_runs_started_at ON sitemap_runs(started_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *models.SitemapRun) error {
	query := `
        INSERT INTO sitemap_runs (id, root, host, output_path, file_count, url_count, status, error, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := s.db.ExecContext(ctx, query,
		run.ID.String(),
		run.Root,
		run.Host,
		run.OutputPath,
		run.FileCount,
		run.URLCount,
		run.Status,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
	)

	return err
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *models.SitemapRun) error {
	query := `
        UPDATE sitemap_runs
        SET file_count = ?, url_count = ?, status = ?, error = ?, finished_at = ?
        WHERE id = ?
    `

	res, err := s.db.ExecContext(ctx, query,
		run.FileCount,
		run.URLCount,
		run.Status,
		run.Error,
		run.FinishedAt,
		run.ID.String(),
	)
	if err != nil {
		return err
	}

	return checkAffected(res, run.ID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, id uuid.UUID) (*models.SitemapRun, error) {
	query := `
        SELECT id, root, host, output_path, file_count, url_count, status, error, started_at, finished_at
        FROM sitemap_runs
        WHERE id = ?
    `

	run, err := scanRun(s.db.QueryRowContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit, offset int) ([]*models.SitemapRun, error) {
	query := `
        SELECT id, root, host, output_path, file_count, url_count, status, error, started_at, finished_at
        FROM sitemap_runs
        ORDER BY started_at DESC
        LIMIT ? OFFSET ?
    `

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.SitemapRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (s *SQLiteStore) SaveRunEntries(ctx context.Context, runID uuid.UUID, entries []models.SitemapEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO sitemap_entries (run_id, path, url, content_hash, last_modified)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(run_id, path) DO UPDATE SET
            url = excluded.url,
            content_hash = excluded.content_hash,
            last_modified = excluded.last_modified
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, runID.String(), e.Path, e.URL, e.ContentHash, e.LastModified); err != nil {
			return fmt.Errorf("error saving entry %s: %w", e.Path, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListRunEntries(ctx context.Context, runID uuid.UUID) ([]models.SitemapEntry, error) {
	query := `
        SELECT path, url, content_hash, last_modified
        FROM sitemap_entries
        WHERE run_id = ?
        ORDER BY path DESC
    `

	return queryEntries(ctx, s.db, query, runID.String())
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
