package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/romangod6/site-devserver/internal/models"
)

// Document converts a mapping into the XML model.
func Document(m *Mapping) *models.Sitemap {
	doc := &models.Sitemap{
		Xmlns: models.SitemapNamespace,
		URLs:  make([]models.URL, 0, m.Len()),
	}
	for _, e := range m.Entries() {
		doc.URLs = append(doc.URLs, models.URL{
			Loc:     e.URL,
			LastMod: e.LastModified,
		})
	}
	return doc
}

// Serialize renders the mapping as a tab-indented sitemap document.
func Serialize(m *Mapping) ([]byte, error) {
	body, err := xml.MarshalIndent(Document(m), "", "\t")
	if err != nil {
		return nil, fmt.Errorf("error encoding sitemap: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(body))
	buf.WriteString(xml.Header)
	buf.Write(body)
	return buf.Bytes(), nil
}

// Write replaces outputPath with doc. The bytes go to a temporary file in
// the same directory first, so a failed write leaves the old file intact.
func Write(doc []byte, outputPath string) error {
	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outputPath)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, outputPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", outputPath, err)
	}
	return nil
}

// Parse decodes a sitemap document.
func Parse(r io.Reader) (*models.Sitemap, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var sitemap models.Sitemap
	if err := xml.Unmarshal(body, &sitemap); err != nil {
		return nil, fmt.Errorf("error decoding sitemap: %w", err)
	}
	return &sitemap, nil
}

func ParseFile(path string) (*models.Sitemap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}
