package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunLogger writes leveled lines to stdout and to a per-run log file.
type RunLogger struct {
	file       *os.File
	path       string
	logger     *log.Logger
	multiWrite io.Writer
}

// NewRunLogger creates <logsDir>/<name>/<name>_<timestamp>.log.
func NewRunLogger(logsDir, name string) (*RunLogger, error) {
	return newRunLogger(logsDir, name, os.Stdout)
}

func newRunLogger(logsDir, name string, console io.Writer) (*RunLogger, error) {
	// Sanitize run name for file system
	sanitized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	if sanitized == "" {
		sanitized = "run"
	}

	runDir := filepath.Join(logsDir, sanitized)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(runDir, fmt.Sprintf("%s_%s.log", sanitized, timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	multiWrite := io.MultiWriter(console, file)
	logger := log.New(multiWrite, "", log.Ldate|log.Ltime|log.Lmicroseconds)

	return &RunLogger{
		file:       file,
		path:       logPath,
		logger:     logger,
		multiWrite: multiWrite,
	}, nil
}

func (rl *RunLogger) LogInfo(format string, v ...interface{}) {
	rl.log("INFO", format, v...)
}

func (rl *RunLogger) LogError(format string, v ...interface{}) {
	rl.log("ERROR", format, v...)
}

func (rl *RunLogger) LogDebug(format string, v ...interface{}) {
	rl.log("DEBUG", format, v...)
}

func (rl *RunLogger) log(level string, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	rl.logger.Printf("[%s] %s", level, message)
}

// Path returns the log file location.
func (rl *RunLogger) Path() string {
	return rl.path
}

func (rl *RunLogger) Close() error {
	return rl.file.Close()
}
