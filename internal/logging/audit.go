// Audit trail: append-only JSONL record of batch-run lifecycle events.
// One line per event, safe for concurrent writers, parseable after a crash
// to see how far a run progressed.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// AuditEventType identifies a run lifecycle event.
type AuditEventType string

const (
	AuditRunStart    AuditEventType = "run_start"
	AuditRecordError AuditEventType = "record_error"
	AuditCheckpoint  AuditEventType = "checkpoint"
	AuditRunComplete AuditEventType = "run_complete"
)

// AuditEvent is one JSONL line in the trail.
type AuditEvent struct {
	Timestamp int64                  `json:"ts"` // Unix milliseconds
	Type      AuditEventType         `json:"type"`
	RunID     string                 `json:"run_id"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// AuditTrail appends events to a JSONL file. A nil trail is a no-op, so
// callers need no conditionals when auditing is disabled.
type AuditTrail struct {
	mu    sync.Mutex
	file  *os.File
	runID string
}

// OpenAuditTrail opens (or creates) the trail file for appending.
func OpenAuditTrail(path, runID string) (*AuditTrail, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit trail: %w", err)
	}
	return &AuditTrail{file: file, runID: runID}, nil
}

// Record appends one event. Marshal or write failures are reported to
// stderr rather than failing the run.
func (a *AuditTrail) Record(eventType AuditEventType, fields map[string]interface{}) {
	if a == nil {
		return
	}
	event := AuditEvent{
		Timestamp: time.Now().UnixMilli(),
		Type:      eventType,
		RunID:     a.runID,
		Fields:    fields,
	}
	data, err := json.Marshal(event)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[audit] Warning: could not marshal event: %v\n", err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.file.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "[audit] Warning: could not write event: %v\n", err)
	}
}

// Close flushes and closes the trail file.
func (a *AuditTrail) Close() error {
	if a == nil || a.file == nil {
		return nil
	}
	return a.file.Close()
}
