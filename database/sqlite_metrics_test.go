package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestClassifySQLiteError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want contention
	}{
		{"nil", nil, contentionNone},
		{"busy", errors.New("SQLITE_BUSY: database is locked"), contentionBusy},
		{"busy timeout", errors.New("busy timeout expired"), contentionBusy},
		{"locked", errors.New("SQLITE_LOCKED: database table is locked"), contentionLocked},
		{"not found", gorm.ErrRecordNotFound, contentionNone},
		{"wrapped cancel", fmt.Errorf("query: %w", context.Canceled), contentionNone},
		{"other", errors.New("no such table: feedback"), contentionNone},
	}
	for _, tc := range cases {
		if got := classifySQLiteError(tc.err); got != tc.want {
			t.Errorf("%s: classifySQLiteError = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestRecordSQLiteError_CountsBusy(t *testing.T) {
	before := SQLiteBusyErrorsTotal()
	recordSQLiteError(errors.New("database is locked (5) (SQLITE_BUSY)"))
	if got := SQLiteBusyErrorsTotal(); got != before+1 {
		t.Fatalf("expected busy total %d, got %d", before+1, got)
	}
}

func TestTracingLogger_CountsSlowStatements(t *testing.T) {
	l := newTracingLogger(logger.Discard, 10*time.Millisecond)
	before := SQLiteSlowQueriesTotal()

	sql := func() (string, int64) { return "SELECT 1", 1 }
	l.Trace(context.Background(), time.Now(), sql, nil)
	if got := SQLiteSlowQueriesTotal(); got != before {
		t.Fatalf("fast statement counted as slow")
	}

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	if got := SQLiteSlowQueriesTotal(); got != before+1 {
		t.Fatalf("expected slow total %d, got %d", before+1, got)
	}

	off := newTracingLogger(logger.Discard, 0).LogMode(logger.Info)
	off.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	if got := SQLiteSlowQueriesTotal(); got != before+1 {
		t.Fatalf("zero threshold must disable slow tracking")
	}
}

func TestSQLiteUp(t *testing.T) {
	if SQLiteUp(context.Background(), nil) {
		t.Fatalf("nil db must report down")
	}

	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	if !SQLiteUp(context.Background(), db) {
		t.Fatalf("expected in-memory db to be up")
	}
}
