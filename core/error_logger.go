package core

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"taskmind/config"
	"taskmind/models"
	"time"
)

const stackDepth = 10

// ErrorLogger is a fixed-size ring of recent errors served by /api/error-logs.
type ErrorLogger struct {
	mu     sync.Mutex
	ring   []models.ErrorLog
	next   int // slot the next new entry is written to
	size   int
	lastID int
}

var ErrorLoggerInstance *ErrorLogger

func init() {
	ErrorLoggerInstance = NewErrorLogger(config.Settings.ErrorLogCapacity)
}

// NewErrorLogger allocates a ring of capacity entries (100 when <= 0).
func NewErrorLogger(capacity int) *ErrorLogger {
	if capacity <= 0 {
		capacity = 100
	}
	return &ErrorLogger{ring: make([]models.ErrorLog, capacity)}
}

// LogError records an entry, overwriting the oldest once the ring is full.
// A repeat of the newest entry only updates its count, detail and timestamp.
func (e *ErrorLogger) LogError(level, source, message, detail string, contextData map[string]interface{}) {
	var ctxJSON string
	if len(contextData) > 0 {
		if data, err := json.Marshal(contextData); err == nil {
			ctxJSON = string(data)
		}
	}
	now := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if newest := e.newest(); newest != nil &&
		newest.Level == level && newest.Source == source && newest.Message == message {
		newest.Count++
		newest.Detail = detail
		newest.Context = ctxJSON
		newest.Timestamp = now
		return
	}

	e.lastID++
	e.ring[e.next] = models.ErrorLog{
		ID:        e.lastID,
		Level:     level,
		Source:    source,
		Message:   message,
		Detail:    detail,
		Context:   ctxJSON,
		Stack:     callerStack(3),
		Count:     1,
		FirstSeen: now,
		Timestamp: now,
	}
	e.next = (e.next + 1) % len(e.ring)
	if e.size < len(e.ring) {
		e.size++
	}
}

func (e *ErrorLogger) newest() *models.ErrorLog {
	if e.size == 0 {
		return nil
	}
	return &e.ring[(e.next-1+len(e.ring))%len(e.ring)]
}

// GetErrorLogs returns copies of the entries, newest first.
func (e *ErrorLogger) GetErrorLogs() []models.ErrorLog {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.ErrorLog, 0, e.size)
	for i := 1; i <= e.size; i++ {
		out = append(out, e.ring[(e.next-i+len(e.ring))%len(e.ring)])
	}
	return out
}

// ClearErrorLogs empties the ring and restarts IDs at 1.
func (e *ErrorLogger) ClearErrorLogs() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.ring)
	e.next, e.size, e.lastID = 0, 0, 0
}

func callerStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+1, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", f.File, f.Line, f.Function)
		if !more {
			break
		}
	}
	return b.String()
}

func LogErrorWithDetail(source, message, detail string) {
	ErrorLoggerInstance.LogError("ERROR", source, message, detail, nil)
}

func LogErrorWithContext(source, message, detail string, context map[string]interface{}) {
	ErrorLoggerInstance.LogError("ERROR", source, message, detail, context)
}

func LogWarn(source, message, detail string) {
	ErrorLoggerInstance.LogError("WARN", source, message, detail, nil)
}
