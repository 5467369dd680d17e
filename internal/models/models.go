package models

import (
	"time"

	"github.com/google/uuid"
)

// FileDescriptor describes one regular file found by a scan.
type FileDescriptor struct {
	AbsolutePath string    `json:"absolute_path"`
	RelativePath string    `json:"relative_path"`
	ContentHash  string    `json:"content_hash"`
	ModTime      time.Time `json:"mod_time"`
}

// SitemapEntry is a descriptor mapped to its public URL.
type SitemapEntry struct {
	Path         string `json:"path"`
	URL          string `json:"url"`
	ContentHash  string `json:"content_hash"`
	LastModified string `json:"last_modified"`
}

type SitemapRun struct {
	ID         uuid.UUID      `json:"id"`
	Root       string         `json:"root"`
	Host       string         `json:"host"`
	OutputPath string         `json:"output_path"`
	FileCount  int            `json:"file_count"`
	URLCount   int            `json:"url_count"`
	Status     string         `json:"status"`
	Error      string         `json:"error,omitempty"`
	Entries    []SitemapEntry `json:"entries,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}
