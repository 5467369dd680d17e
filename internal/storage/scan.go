package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/romangod6/site-devserver/internal/models"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.SitemapRun, error) {
	var (
		run        models.SitemapRun
		idStr      string
		errStr     sql.NullString
		finishedAt sql.NullTime
	)

	err := row.Scan(
		&idStr,
		&run.Root,
		&run.Host,
		&run.OutputPath,
		&run.FileCount,
		&run.URLCount,
		&run.Status,
		&errStr,
		&run.StartedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", idStr, err)
	}
	run.Error = errStr.String
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}

	return &run, nil
}

func queryEntries(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]models.SitemapEntry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.SitemapEntry
	for rows.Next() {
		var e models.SitemapEntry
		if err := rows.Scan(&e.Path, &e.URL, &e.ContentHash, &e.LastModified); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func checkAffected(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("sitemap run %s not found", id)
	}
	return nil
}
