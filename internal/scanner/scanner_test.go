package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/romangod6/site-devserver/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func byRelative(files []models.FileDescriptor) map[string]models.FileDescriptor {
	out := make(map[string]models.FileDescriptor, len(files))
	for _, f := range files {
		out[f.RelativePath] = f
	}
	return out
}

func TestScan_OneDescriptorPerRegularFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", "<html></html>")
	writeFile(t, root, "css/site.css", "body{}")
	writeFile(t, root, "a/b/c.txt", "deep")
	writeFile(t, root, "a/b/d/e/f.txt", "deeper")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty", "nested"), 0o755))

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 4)

	got := byRelative(files)
	for _, rel := range []string{"/index.html", "/css/site.css", "/a/b/c.txt", "/a/b/d/e/f.txt"} {
		assert.Contains(t, got, rel)
	}
}

func TestScan_EmptyDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "x", "y"), 0o755))

	files, err := Scan(root)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScan_RelativeAndAbsolutePaths(t *testing.T) {
	root := t.TempDir()
	abs := writeFile(t, root, "a/b/c.txt", "hello")

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 1)

	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, "/a/b/c.txt", files[0].RelativePath)
	assert.Equal(t, filepath.Join(absRoot, "a", "b", "c.txt"), files[0].AbsolutePath)
	assert.Equal(t, abs, files[0].AbsolutePath)
}

func TestScan_HashIsDeterministic(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "page.html", "same content")

	first, err := Scan(root)
	require.NoError(t, err)
	second, err := Scan(root)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ContentHash, second[0].ContentHash)
	assert.Len(t, first[0].ContentHash, 64)

	require.NoError(t, os.WriteFile(p, []byte("same contenT"), 0o644))
	third, err := Scan(root)
	require.NoError(t, err)
	assert.NotEqual(t, first[0].ContentHash, third[0].ContentHash)
}

func TestScan_KnownDigest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "abc.txt", "abc")

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", files[0].ContentHash)
}

func TestScan_CarriesRawModTime(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "index.html", "x")
	mtime := time.Date(2024, 1, 5, 13, 45, 10, 0, time.Local)
	require.NoError(t, os.Chtimes(p, mtime, mtime))

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, files[0].ModTime.Equal(mtime), "got %v", files[0].ModTime)
}

func TestScan_SkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	target := writeFile(t, root, "real.txt", "data")
	if err := os.Symlink(target, filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "/real.txt", files[0].RelativePath)
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestScan_RootIsFile(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "file.txt", "x")

	_, err := Scan(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestScan_UnreadableFileFailsWholeScan(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	writeFile(t, root, "ok.txt", "fine")
	p := writeFile(t, root, "secret.txt", "nope")
	require.NoError(t, os.Chmod(p, 0o000))
	t.Cleanup(func() { _ = os.Chmod(p, 0o644) })

	files, err := Scan(root)
	assert.Error(t, err)
	assert.Nil(t, files)
}

func TestScanFS_InMemoryTree(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/index.html", []byte("home"), 0o644))
	require.NoError(t, util.WriteFile(fs, "/docs/guide/intro.html", []byte("intro"), 0o644))
	require.NoError(t, util.WriteFile(fs, "/.DS_Store", []byte("junk"), 0o644))
	require.NoError(t, fs.MkdirAll("/assets/empty", 0o755))

	files, err := ScanFS(fs, "/srv/site")
	require.NoError(t, err)
	require.Len(t, files, 3)

	got := byRelative(files)
	assert.Equal(t, filepath.Join("/srv/site", "docs", "guide", "intro.html"), got["/docs/guide/intro.html"].AbsolutePath)
	assert.Contains(t, got, "/.DS_Store")
}

func TestSortDescending(t *testing.T) {
	files := []models.FileDescriptor{
		{AbsolutePath: "/root/a.txt"},
		{AbsolutePath: "/root/c/d.txt"},
		{AbsolutePath: "/root/b.txt"},
	}

	SortDescending(files)

	assert.Equal(t, "/root/c/d.txt", files[0].AbsolutePath)
	assert.Equal(t, "/root/b.txt", files[1].AbsolutePath)
	assert.Equal(t, "/root/a.txt", files[2].AbsolutePath)
}
