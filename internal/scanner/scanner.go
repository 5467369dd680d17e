// Package scanner walks a served directory and fingerprints every regular file.
package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/romangod6/site-devserver/internal/models"
)

// Scan walks root on the local filesystem. Any unreadable file or directory
// fails the whole scan.
func Scan(root string) ([]models.FileDescriptor, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %q: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root %q: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory", absRoot)
	}

	return ScanFS(osfs.New(absRoot), absRoot)
}

// ScanFS walks fsys from its root. absRoot is joined with each file's
// relative path to build the descriptor's AbsolutePath.
func ScanFS(fsys billy.Filesystem, absRoot string) ([]models.FileDescriptor, error) {
	return walk(fsys, absRoot, "/")
}

func walk(fsys billy.Filesystem, absRoot, dir string) ([]models.FileDescriptor, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %q: %w", dir, err)
	}

	var files []models.FileDescriptor
	for _, entry := range entries {
		rel := path.Join(dir, entry.Name())
		mode := entry.Mode()

		switch {
		case mode.IsDir():
			sub, err := walk(fsys, absRoot, rel)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
		case mode.IsRegular():
			hash, err := hashFile(fsys, rel)
			if err != nil {
				return nil, err
			}
			files = append(files, models.FileDescriptor{
				AbsolutePath: filepath.Join(absRoot, filepath.FromSlash(rel)),
				RelativePath: rel,
				ContentHash:  hash,
				ModTime:      entry.ModTime(),
			})
		default:
			// symlinks, devices, sockets and pipes are not indexed
		}
	}

	return files, nil
}

func hashFile(fsys billy.Filesystem, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", fmt.Errorf("failed to open %q: %w", name, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read %q: %w", name, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SortDescending orders descriptors by absolute path, highest first.
func SortDescending(files []models.FileDescriptor) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].AbsolutePath > files[j].AbsolutePath
	})
}
