// Package usage records classifier token consumption per provider, model,
// operation, and run, persisted as a JSON aggregate file. Clients pick the
// tracker up from the request context so the transport layer stays free of
// accounting arguments.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

type trackerKey struct{}
type runKey struct{}
type operationKey struct{}

const autoSaveDebounce = 5 * time.Second

// Tracker manages token usage recording and persistence.
type Tracker struct {
	mu            sync.Mutex
	data          UsageData
	filePath      string
	dirty         bool
	autoSaveTimer *time.Timer
}

// NewRunID returns a fresh identifier correlating one batch invocation
// across logs, the audit trail, and usage records.
func NewRunID() string {
	return uuid.NewString()
}

// NewTracker creates a tracker persisting to the given JSON path, loading
// any existing aggregates first.
func NewTracker(path string) (*Tracker, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create usage dir: %w", err)
	}

	t := &Tracker{
		filePath: path,
		data: UsageData{
			Version: "1.0",
			Aggregate: AggregatedStats{
				ByProvider:  make(map[string]TokenCounts),
				ByModel:     make(map[string]TokenCounts),
				ByOperation: make(map[string]TokenCounts),
				ByRun:       make(map[string]TokenCounts),
			},
		},
	}

	if err := t.Load(); err != nil {
		// Corrupt or unreadable history should not block a run; start from
		// empty aggregates.
		fmt.Fprintf(os.Stderr, "[usage] Warning: could not load %s: %v\n", path, err)
	}

	return t, nil
}

// Load reads persisted aggregates from disk.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &t.data); err != nil {
		return err
	}

	if t.data.Aggregate.ByProvider == nil {
		t.data.Aggregate.ByProvider = make(map[string]TokenCounts)
	}
	if t.data.Aggregate.ByModel == nil {
		t.data.Aggregate.ByModel = make(map[string]TokenCounts)
	}
	if t.data.Aggregate.ByOperation == nil {
		t.data.Aggregate.ByOperation = make(map[string]TokenCounts)
	}
	if t.data.Aggregate.ByRun == nil {
		t.data.Aggregate.ByRun = make(map[string]TokenCounts)
	}

	return nil
}

// Save writes the aggregates to disk.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked()
}

func (t *Tracker) saveLocked() error {
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(t.filePath, data, 0644)
}

// Track records one classifier transaction. Run ID and operation are read
// from the context when present.
func (t *Tracker) Track(ctx context.Context, model, provider string, input, output int) {
	runID := "unknown"
	if val, ok := ctx.Value(runKey{}).(string); ok && val != "" {
		runID = val
	}
	operation := "classify"
	if val, ok := ctx.Value(operationKey{}).(string); ok && val != "" {
		operation = val
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.Aggregate.Total.Add(input, output)
	addToMap(t.data.Aggregate.ByProvider, provider, input, output)
	addToMap(t.data.Aggregate.ByModel, model, input, output)
	addToMap(t.data.Aggregate.ByOperation, operation, input, output)
	addToMap(t.data.Aggregate.ByRun, runID, input, output)

	// Debounced auto-save keeps long batches from writing on every call.
	if !t.dirty {
		t.dirty = true
		t.autoSaveTimer = time.AfterFunc(autoSaveDebounce, func() {
			t.Save()
			t.mu.Lock()
			t.dirty = false
			t.mu.Unlock()
		})
	}
}

// Close stops any pending auto-save and writes the final state.
func (t *Tracker) Close() error {
	t.mu.Lock()
	if t.autoSaveTimer != nil {
		t.autoSaveTimer.Stop()
		t.autoSaveTimer = nil
	}
	t.dirty = false
	err := t.saveLocked()
	t.mu.Unlock()
	return err
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByProvider = copyTokenCountsMap(stats.ByProvider)
	stats.ByModel = copyTokenCountsMap(stats.ByModel)
	stats.ByOperation = copyTokenCountsMap(stats.ByOperation)
	stats.ByRun = copyTokenCountsMap(stats.ByRun)
	return stats
}

func copyTokenCountsMap(src map[string]TokenCounts) map[string]TokenCounts {
	if src == nil {
		return nil
	}
	dst := make(map[string]TokenCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]TokenCounts, key string, input, output int) {
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}

// NewContext returns a context carrying the tracker.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// FromContext retrieves the tracker, or nil when none is attached.
func FromContext(ctx context.Context) *Tracker {
	val := ctx.Value(trackerKey{})
	if val == nil {
		return nil
	}
	return val.(*Tracker)
}

// WithRun attaches run correlation metadata to the context.
func WithRun(ctx context.Context, runID, operation string) context.Context {
	ctx = context.WithValue(ctx, runKey{}, runID)
	return context.WithValue(ctx, operationKey{}, operation)
}
