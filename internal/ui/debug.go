package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/javiermolinar/calgrid/internal/layout"
)

// DebugLogPath is the fixed path for debug logs.
const DebugLogPath = "calgrid-debug.log"

// DebugLogger writes one JSON object per line describing preparation events.
// A nil or disabled logger discards everything.
type DebugLogger struct {
	mu  sync.Mutex
	w   io.Writer
	c   io.Closer
	seq int
}

// NewDebugLogger logs to w.
func NewDebugLogger(w io.Writer) *DebugLogger {
	return &DebugLogger{w: w}
}

// OpenDebugLog creates the log file at path.
func OpenDebugLog(path string) (*DebugLogger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating debug log: %w", err)
	}
	d := &DebugLogger{w: f, c: f}
	d.Log("DEBUG_START", map[string]any{
		"log_file": path,
		"time":     time.Now().Format(time.RFC3339),
	})
	return d, nil
}

// Close closes the underlying file, if any.
func (d *DebugLogger) Close() error {
	if d == nil || d.c == nil {
		return nil
	}
	d.Log("DEBUG_END", map[string]any{
		"time": time.Now().Format(time.RFC3339),
	})
	return d.c.Close()
}

// Log writes a structured log entry.
func (d *DebugLogger) Log(event string, data map[string]any) {
	if d == nil || d.w == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	entry := map[string]any{
		"seq":   d.seq,
		"ts":    time.Now().Format("15:04:05.000"),
		"event": event,
	}
	for k, v := range data {
		entry[k] = v
	}

	b, _ := json.Marshal(entry)
	_, _ = fmt.Fprintf(d.w, "%s\n", b)
}

// LogPrepare logs the outcome of one preparation pass.
func (d *DebugLogger) LogPrepare(l layout.Layout, items int, hit bool) {
	d.Log("PREPARE", map[string]any{
		"view":      l.View.String(),
		"items":     items,
		"buckets":   len(l.Buckets),
		"header":    len(l.Header),
		"skipped":   len(l.Skipped),
		"warnings":  len(l.Warnings),
		"cache_hit": hit,
	})
	for _, s := range l.Skipped {
		d.Log("ITEM_SKIPPED", map[string]any{"index": s.Index, "reason": s.Reason()})
	}
	for _, w := range l.Warnings {
		d.Log("ITEM_WARNING", map[string]any{"index": w.Index, "reason": w.Reason()})
	}
}

// LogError logs an error with context.
func (d *DebugLogger) LogError(context string, err error) {
	if err == nil {
		return
	}
	d.Log("ERROR", map[string]any{
		"context": context,
		"error":   err.Error(),
	})
}
