package sitemap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/romangod6/site-devserver/internal/models"
	"github.com/romangod6/site-devserver/internal/scanner"
	"github.com/romangod6/site-devserver/internal/storage"
)

var (
	// ErrScanFailed means the tree could not be fully read; nothing was written.
	ErrScanFailed = errors.New("scan failed")
	// ErrWriteFailed means the document could not be written to disk.
	ErrWriteFailed = errors.New("write failed")
)

// Logger is the subset of utils.RunLogger the generator needs.
type Logger interface {
	LogInfo(format string, v ...interface{})
	LogError(format string, v ...interface{})
}

type Options struct {
	Root   string
	Host   string
	Output string
	Ignore IgnoreRules
}

// OutputPath is where the sitemap is written: Output inside Root unless
// Output is already absolute.
func (o Options) OutputPath() string {
	if filepath.IsAbs(o.Output) {
		return o.Output
	}
	return filepath.Join(o.Root, o.Output)
}

type Generator struct {
	opts   Options
	store  storage.Store
	logger Logger
}

// NewGenerator builds a generator. store may be nil, in which case runs are
// not recorded.
func NewGenerator(opts Options, store storage.Store, logger Logger) *Generator {
	if opts.Output == "" {
		opts.Output = "sitemap.xml"
	}
	return &Generator{
		opts:   opts,
		store:  store,
		logger: logger,
	}
}

// Run scans the root, builds the sitemap and writes it. The returned run
// describes the outcome either way.
func (g *Generator) Run(ctx context.Context) (*models.SitemapRun, error) {
	outputPath := g.opts.OutputPath()
	run := models.NewSitemapRun(g.opts.Root, g.opts.Host, outputPath)
	g.record(ctx, run, true)

	mapping, err := g.generate(run, outputPath)
	run.Finish(err)
	if mapping != nil {
		run.Entries = mapping.Entries()
	}
	g.record(ctx, run, false)

	if err != nil {
		g.logger.LogError("Sitemap generation failed: %v", err)
		return run, err
	}

	g.logger.LogInfo("Sitemap written to %s (%d of %d files listed)", outputPath, run.URLCount, run.FileCount)
	return run, nil
}

func (g *Generator) generate(run *models.SitemapRun, outputPath string) (*Mapping, error) {
	g.logger.LogInfo("Scanning %s", g.opts.Root)
	files, err := scanner.Scan(g.opts.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}
	run.FileCount = len(files)

	mapping := Build(files, g.opts.Host, g.opts.Ignore)
	run.URLCount = mapping.Len()
	g.logger.LogInfo("Scanned %d files, %d listed after ignore rules", run.FileCount, run.URLCount)

	doc, err := Serialize(mapping)
	if err != nil {
		return mapping, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	if err := Write(doc, outputPath); err != nil {
		return mapping, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	return mapping, nil
}

// record persists the run. History is best effort and never fails the build.
func (g *Generator) record(ctx context.Context, run *models.SitemapRun, create bool) {
	if g.store == nil {
		return
	}

	if create {
		if err := g.store.CreateRun(ctx, run); err != nil {
			g.logger.LogError("Failed to record sitemap run: %v", err)
		}
		return
	}

	if err := g.store.UpdateRun(ctx, run); err != nil {
		g.logger.LogError("Failed to update sitemap run %s: %v", run.ID, err)
		return
	}
	if run.Status != models.RunStatusCompleted || len(run.Entries) == 0 {
		return
	}
	if err := g.store.SaveRunEntries(ctx, run.ID, run.Entries); err != nil {
		g.logger.LogError("Failed to save sitemap entries for run %s: %v", run.ID, err)
	}
}
