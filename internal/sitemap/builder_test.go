package sitemap

import (
	"testing"
	"time"

	"github.com/romangod6/site-devserver/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(abs, rel string, mtime time.Time) models.FileDescriptor {
	return models.FileDescriptor{
		AbsolutePath: abs,
		RelativePath: rel,
		ContentHash:  "hash-of-" + rel,
		ModTime:      mtime,
	}
}

func mustRules(t *testing.T, patterns ...string) IgnoreRules {
	t.Helper()
	rules, err := CompileIgnoreRules(patterns)
	require.NoError(t, err)
	return rules
}

func TestCompileIgnoreRules_Invalid(t *testing.T) {
	_, err := CompileIgnoreRules([]string{`^/ok$`, `([`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ignore pattern")
}

func TestIgnoreRules_MatchAny(t *testing.T) {
	rules := mustRules(t, `(?i)\.DS_Store$`, `^/sitemap\.xml$`)

	tests := []struct {
		path string
		want bool
	}{
		{"/.DS_Store", true},
		{"/deep/dir/.ds_store", true},
		{"/sitemap.xml", true},
		{"/docs/sitemap.xml", false},
		{"/index.html", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Match(tt.path))
		})
	}

	assert.False(t, IgnoreRules(nil).Match("/anything"))
}

func TestBuild_ExcludesIgnoredFiles(t *testing.T) {
	now := time.Now()
	files := []models.FileDescriptor{
		descriptor("/srv/index.html", "/index.html", now),
		descriptor("/srv/.DS_Store", "/.DS_Store", now),
		descriptor("/srv/img/.DS_Store", "/img/.DS_Store", now),
	}

	m := Build(files, "https://example.com", mustRules(t, `\.DS_Store$`))

	require.Equal(t, 1, m.Len())
	_, ok := m.Get("/srv/.DS_Store")
	assert.False(t, ok)
	_, ok = m.Get("/srv/img/.DS_Store")
	assert.False(t, ok)
	e, ok := m.Get("/srv/index.html")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/index.html", e.URL)
	assert.Equal(t, "hash-of-/index.html", e.ContentHash)
}

func TestBuild_DescendingPathOrder(t *testing.T) {
	now := time.Now()
	files := []models.FileDescriptor{
		descriptor("/srv/a.txt", "/a.txt", now),
		descriptor("/srv/b.txt", "/b.txt", now),
		descriptor("/srv/a/z.txt", "/a/z.txt", now),
	}

	m := Build(files, "https://example.com", nil)
	entries := m.Entries()

	require.Len(t, entries, 3)
	assert.Equal(t, "https://example.com/b.txt", entries[0].URL)
	assert.Equal(t, "https://example.com/a/z.txt", entries[1].URL)
	assert.Equal(t, "https://example.com/a.txt", entries[2].URL)
	// input untouched
	assert.Equal(t, "/srv/a.txt", files[0].AbsolutePath)
}

func TestBuild_FormatsDateAtDayGranularity(t *testing.T) {
	mtime := time.Date(2024, 1, 5, 23, 59, 59, 999, time.Local)
	m := Build([]models.FileDescriptor{descriptor("/srv/index.html", "/index.html", mtime)}, "https://example.com", nil)

	e, ok := m.Get("/srv/index.html")
	require.True(t, ok)
	assert.Equal(t, "2024-01-05", e.LastModified)
}

func TestBuild_Empty(t *testing.T) {
	m := Build(nil, "https://example.com", nil)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Entries())
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		host, rel, want string
	}{
		{"https://example.com", "/index.html", "https://example.com/index.html"},
		{"https://example.com/", "/index.html", "https://example.com/index.html"},
		{"https://example.com//", "/a/b.html", "https://example.com/a/b.html"},
		{"https://example.com", "index.html", "https://example.com/index.html"},
		{"https://example.com/base", "/x.html", "https://example.com/base/x.html"},
	}

	for _, tt := range tests {
		t.Run(tt.host+tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinURL(tt.host, tt.rel))
		})
	}
}
