package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusRunning   = "Running"
	RunStatusCompleted = "Completed"
	RunStatusError     = "Error"
)

// NewSitemapRun creates a run record with a generated UUID in the Running state
func NewSitemapRun(root, host, outputPath string) *SitemapRun {
	return &SitemapRun{
		ID:         uuid.New(),
		Root:       root,
		Host:       host,
		OutputPath: outputPath,
		Status:     RunStatusRunning,
		StartedAt:  time.Now(),
	}
}

// Finish stamps the run as completed, or as failed when err is non-nil
func (r *SitemapRun) Finish(err error) {
	now := time.Now()
	r.FinishedAt = &now
	if err != nil {
		r.Status = RunStatusError
		r.Error = err.Error()
		return
	}
	r.Status = RunStatusCompleted
}

// IsDone returns true once the run has left the Running state
func (r *SitemapRun) IsDone() bool {
	return r.Status != RunStatusRunning
}
