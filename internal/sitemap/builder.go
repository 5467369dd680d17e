// Package sitemap turns a scanned file tree into a sitemaps.org document.
package sitemap

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/romangod6/site-devserver/internal/models"
	"github.com/romangod6/site-devserver/internal/scanner"
)

// DateLayout is the lastmod format, calendar day in local time.
const DateLayout = "2006-01-02"

// IgnoreRules excludes relative paths from the sitemap. A path is
// excluded when any rule matches.
type IgnoreRules []*regexp.Regexp

// CompileIgnoreRules compiles patterns in order.
func CompileIgnoreRules(patterns []string) (IgnoreRules, error) {
	rules := make(IgnoreRules, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		rules = append(rules, re)
	}
	return rules, nil
}

// Match reports whether relPath is excluded by any rule.
func (r IgnoreRules) Match(relPath string) bool {
	for _, re := range r {
		if re.MatchString(relPath) {
			return true
		}
	}
	return false
}

// Mapping holds sitemap entries keyed by absolute path, in insertion order.
type Mapping struct {
	order   []string
	entries map[string]models.SitemapEntry
}

func newMapping(capacity int) *Mapping {
	return &Mapping{
		order:   make([]string, 0, capacity),
		entries: make(map[string]models.SitemapEntry, capacity),
	}
}

func (m *Mapping) add(e models.SitemapEntry) {
	if _, exists := m.entries[e.Path]; !exists {
		m.order = append(m.order, e.Path)
	}
	m.entries[e.Path] = e
}

// Get returns the entry for an absolute path.
func (m *Mapping) Get(absPath string) (models.SitemapEntry, bool) {
	e, ok := m.entries[absPath]
	return e, ok
}

func (m *Mapping) Len() int {
	return len(m.order)
}

// Entries returns the entries in mapping order.
func (m *Mapping) Entries() []models.SitemapEntry {
	out := make([]models.SitemapEntry, 0, len(m.order))
	for _, p := range m.order {
		out = append(out, m.entries[p])
	}
	return out
}

// Build maps every non-ignored descriptor to a sitemap entry. Entries are
// ordered by absolute path, descending. The input slice is not modified.
func Build(files []models.FileDescriptor, host string, ignore IgnoreRules) *Mapping {
	sorted := make([]models.FileDescriptor, len(files))
	copy(sorted, files)
	scanner.SortDescending(sorted)

	m := newMapping(len(sorted))
	for _, f := range sorted {
		if ignore.Match(f.RelativePath) {
			continue
		}
		m.add(models.SitemapEntry{
			Path:         f.AbsolutePath,
			URL:          JoinURL(host, f.RelativePath),
			ContentHash:  f.ContentHash,
			LastModified: f.ModTime.Local().Format(DateLayout),
		})
	}
	return m
}

// JoinURL concatenates host and a root-relative path with exactly one
// slash between them.
func JoinURL(host, relPath string) string {
	return strings.TrimRight(host, "/") + "/" + strings.TrimLeft(relPath, "/")
}
