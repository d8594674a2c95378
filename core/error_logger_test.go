package core

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorLogger_EvictsOldest(t *testing.T) {
	l := NewErrorLogger(2)
	l.LogError("ERROR", "llm", "first", "", nil)
	l.LogError("ERROR", "llm", "second", "", nil)
	l.LogError("WARN", "vector", "third", "", map[string]interface{}{"op": "near"})

	logs := l.GetErrorLogs()
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].Message != "third" || logs[1].Message != "second" {
		t.Fatalf("expected newest first, got %q then %q", logs[0].Message, logs[1].Message)
	}
	if logs[0].Context != `{"op":"near"}` {
		t.Fatalf("unexpected context %q", logs[0].Context)
	}
	if logs[0].ID != 3 {
		t.Fatalf("expected id 3, got %d", logs[0].ID)
	}
}

func TestErrorLogger_FoldsRepeats(t *testing.T) {
	l := NewErrorLogger(3)
	l.LogError("WARN", "vector", "near failed", "timeout", nil)
	l.LogError("WARN", "vector", "near failed", "refused", nil)
	l.LogError("ERROR", "llm", "generate failed", "", nil)
	l.LogError("WARN", "vector", "near failed", "timeout", nil)

	logs := l.GetErrorLogs()
	if len(logs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(logs))
	}
	folded := logs[2]
	if folded.Count != 2 || folded.Detail != "refused" {
		t.Fatalf("expected folded entry with count 2 and latest detail, got %+v", folded)
	}
	if folded.Timestamp.Before(folded.FirstSeen) {
		t.Fatalf("timestamp must not precede first_seen")
	}
	if logs[0].Count != 1 || logs[0].ID != 3 {
		t.Fatalf("non-adjacent repeat must start a new entry, got %+v", logs[0])
	}
	if logs[0].Stack == "" {
		t.Fatalf("expected a captured stack")
	}
}

func TestErrorLogger_Clear(t *testing.T) {
	l := NewErrorLogger(0)
	l.LogError("ERROR", "db", "boom", "detail", nil)
	l.ClearErrorLogs()
	if got := len(l.GetErrorLogs()); got != 0 {
		t.Fatalf("expected empty ring after clear, got %d", got)
	}
	l.LogError("ERROR", "db", "again", "", nil)
	if id := l.GetErrorLogs()[0].ID; id != 1 {
		t.Fatalf("expected ids to restart at 1, got %d", id)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := NewUpstreamError("llm call failed", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected AppError to unwrap to its cause")
	}
	if err.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", err.Code)
	}
	if err.Error() != "llm call failed: timeout" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
