// Package audit persists promotion decisions. Every orchestrator run
// writes one record before any registry mutation, so the trail explains
// the registry state even after a crash mid-promotion.
package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/champlabs/champ/internal/models"
)

// Recorder appends promotion decisions to durable storage.
type Recorder interface {
	Record(rec models.AuditRecord) error
}

// FileRecorder appends records as JSON lines to a single file. Each append
// is fsynced before returning so a record reported as written survives a
// crash.
type FileRecorder struct {
	path string
	mu   sync.Mutex
}

var _ Recorder = (*FileRecorder)(nil)

// NewFileRecorder creates the audit file's directory if needed.
func NewFileRecorder(path string) (*FileRecorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("audit: creating %s: %w", dir, err)
		}
	}
	return &FileRecorder{path: path}, nil
}

// Record implements Recorder.
func (r *FileRecorder) Record(rec models.AuditRecord) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("audit: encoding record: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("audit: opening %s: %w", r.path, err)
	}
	defer f.Close() //nolint:errcheck

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("audit: writing %s: %w", r.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("audit: syncing %s: %w", r.path, err)
	}
	return f.Close()
}

// Query returns records matching the filters, oldest first. Empty model or
// outcome match everything.
func (r *FileRecorder) Query(model string, outcome models.Outcome) ([]models.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("audit: reading %s: %w", r.path, err)
	}

	var out []models.AuditRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var rec models.AuditRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("audit: parsing %s: %w", r.path, err)
		}
		if model != "" && rec.ModelName != model {
			continue
		}
		if outcome != "" && rec.Decision.Outcome != outcome {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// MemoryRecorder collects records in memory for tests.
type MemoryRecorder struct {
	mu      sync.Mutex
	Records []models.AuditRecord
}

var _ Recorder = (*MemoryRecorder)(nil)

// Record implements Recorder.
func (r *MemoryRecorder) Record(rec models.AuditRecord) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Records = append(r.Records, rec)
	return nil
}
