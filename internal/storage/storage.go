package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/romangod6/site-devserver/internal/models"
)

type Store interface {
	Initialize() error
	Close() error

	// Sitemap run operations
	CreateRun(ctx context.Context, run *models.SitemapRun) error
	UpdateRun(ctx context.Context, run *models.SitemapRun) error
	GetRun(ctx context.Context, id uuid.UUID) (*models.SitemapRun, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*models.SitemapRun, error)

	// Sitemap entry operations
	SaveRunEntries(ctx context.Context, runID uuid.UUID, entries []models.SitemapEntry) error
	ListRunEntries(ctx context.Context, runID uuid.UUID) ([]models.SitemapEntry, error)
}

// Open connects to the configured database and creates its tables. An
// empty driver means run history is disabled and returns a nil Store.
func Open(driver, url string) (Store, error) {
	var (
		store Store
		err   error
	)

	switch driver {
	case "":
		return nil, nil
	case "sqlite3", "sqlite":
		store, err = NewSQLiteStore(url)
	case "postgres", "postgresql":
		store, err = NewPostgresStore(url)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", driver, err)
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize %s store: %w", driver, err)
	}
	return store, nil
}
