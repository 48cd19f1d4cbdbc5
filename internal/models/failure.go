package models

import "sync"

// FailureRecord describes a request that failed after exhausting its retries
type FailureRecord struct {
	URL         string  `json:"url"`
	ProjectName *string `json:"project_name,omitempty"`
	Author      *string `json:"author,omitempty"`
	Operation   string  `json:"operation"`
	Error       string  `json:"error"`
}

// FailureLog is an append-only list of failure records shared by all
// in-flight requests of a run
type FailureLog struct {
	mu      sync.Mutex
	records []FailureRecord
}

// NewFailureLog creates an empty failure log
func NewFailureLog() *FailureLog {
	return &FailureLog{}
}

// Append adds a record to the log
func (l *FailureLog) Append(record FailureRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
}

// Snapshot returns a copy of the records appended so far
func (l *FailureLog) Snapshot() []FailureRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]FailureRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records
func (l *FailureLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
