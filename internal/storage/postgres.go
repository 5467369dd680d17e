package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/romangod6/site-devserver/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sitemap_runs (
            id UUID PRIMARY KEY,
            root TEXT NOT NULL,
            host VARCHAR(2048) NOT NULL,
            output_path TEXT NOT NULL,
            file_count INTEGER NOT NULL DEFAULT 0,
            url_count INTEGER NOT NULL DEFAULT 0,
            status VARCHAR(32) NOT NULL,
            error TEXT,
            started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            finished_at TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS sitemap_entries (
            run_id UUID NOT NULL REFERENCES sitemap_runs(id) ON DELETE CASCADE,
            path TEXT NOT NULL,
            url VARCHAR(2048) NOT NULL,
            content_hash CHAR(64) NOT NULL,
            last_modified DATE NOT NULL,
            PRIMARY KEY (run_id, path)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_sitemap_runs_started_at ON sitemap_runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sitemap_entries_hash ON sitemap_entries(content_hash)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *models.SitemapRun) error {
	query := `
        INSERT INTO sitemap_runs (id, root, host, output_path, file_count, url_count, status, error, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
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

func (s *PostgresStore) UpdateRun(ctx context.Context, run *models.SitemapRun) error {
	query := `
        UPDATE sitemap_runs
        SET file_count = $1, url_count = $2, status = $3, error = $4, finished_at = $5
        WHERE id = $6
    `

	res, err := s.db.ExecContext(ctx, query,
		run.FileCount,
		run.URLCount,
		run.Status,
		run.Error,
		run.FinishedAt,
		run.ID,
	)
	if err != nil {
		return err
	}

	return checkAffected(res, run.ID)
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*models.SitemapRun, error) {
	query := `
        SELECT id, root, host, output_path, file_count, url_count, status, error, started_at, finished_at
        FROM sitemap_runs
        WHERE id = $1
    `

	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit, offset int) ([]*models.SitemapRun, error) {
	query := `
        SELECT id, root, host, output_path, file_count, url_count, status, error, started_at, finished_at
        FROM sitemap_runs
        ORDER BY started_at DESC
        LIMIT $1 OFFSET $2
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

// SaveRunEntries inserts all entries with a single COPY.
func (s *PostgresStore) SaveRunEntries(ctx context.Context, runID uuid.UUID, entries []models.SitemapEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("sitemap_entries", "run_id", "path", "url", "content_hash", "last_modified"))
	if err != nil {
		return err
	}

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, runID.String(), e.Path, e.URL, e.ContentHash, e.LastModified); err != nil {
			stmt.Close()
			return fmt.Errorf("error saving entry %s: %w", e.Path, err)
		}
	}

	// flush buffered COPY data
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *PostgresStore) ListRunEntries(ctx context.Context, runID uuid.UUID) ([]models.SitemapEntry, error) {
	query := `
        SELECT path, url, content_hash, to_char(last_modified, 'YYYY-MM-DD')
        FROM sitemap_entries
        WHERE run_id = $1
        ORDER BY path DESC
    `

	return queryEntries(ctx, s.db, query, runID)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
