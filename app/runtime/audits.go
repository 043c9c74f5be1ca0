package runtime

import (
	"bytes"
	"strings"
	"sync"
)

// AuditLogger is an io.Writer that keeps the last complete lines written to it, so a failed run can
// report what led up to the failure.
type AuditLogger struct {
	mu      sync.RWMutex
	lines   []string
	next    int
	full    bool
	pending bytes.Buffer
}

func NewAuditLogger(capacity int) *AuditLogger {
	if capacity <= 0 {
		capacity = 1
	}
	return &AuditLogger{lines: make([]string, capacity)}
}

func (a *AuditLogger) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, _ := a.pending.Write(p)
	for {
		idx := bytes.IndexByte(a.pending.Bytes(), '\n')
		if idx < 0 {
			break
		}
		a.push(string(a.pending.Next(idx + 1)[:idx]))
	}
	return n, nil
}

func (a *AuditLogger) push(line string) {
	a.lines[a.next] = line
	a.next = (a.next + 1) % len(a.lines)
	if a.next == 0 {
		a.full = true
	}
}

// Last returns up to n of the most recent lines, oldest first. When levels are given, only lines
// carrying one of those slog levels (e.g. "WARN", "ERROR") are considered.
func (a *AuditLogger) Last(n int, levels ...string) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ordered := a.lines[:a.next]
	if a.full {
		ordered = append(append([]string{}, a.lines[a.next:]...), a.lines[:a.next]...)
	}

	var out []string
	for i := len(ordered) - 1; i >= 0 && len(out) < n; i-- {
		if matchesLevel(ordered[i], levels) {
			out = append(out, ordered[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func matchesLevel(line string, levels []string) bool {
	if len(levels) == 0 {
		return true
	}
	for _, lvl := range levels {
		if strings.Contains(line, "level="+lvl) {
			return true
		}
	}
	return false
}
