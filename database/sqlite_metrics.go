package database

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"taskmind/metrics"
	"time"

	"gorm.io/gorm"
)

// contention is the kind of lock conflict an SQLite error reports.
type contention uint8

const (
	contentionNone contention = iota
	contentionBusy
	contentionLocked
)

// sqliteCounters mirrors the Prometheus counters so /api/metrics can
// report plain numbers without scraping the registry.
var sqliteCounters struct {
	busy   atomic.Uint64
	locked atomic.Uint64
	slow   atomic.Uint64
}

var (
	busyMarkers   = []string{"sqlite_busy", "database is locked", "busy timeout"}
	lockedMarkers = []string{"sqlite_locked", "database table is locked"}
)

func classifySQLiteError(err error) contention {
	switch {
	case err == nil,
		errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return contentionNone
	}

	msg := strings.ToLower(err.Error())
	// SQLITE_LOCKED wins when a driver message carries both markers.
	if containsAny(msg, lockedMarkers) {
		return contentionLocked
	}
	if containsAny(msg, busyMarkers) {
		return contentionBusy
	}
	return contentionNone
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func recordSQLiteError(err error) {
	switch classifySQLiteError(err) {
	case contentionBusy:
		sqliteCounters.busy.Add(1)
		metrics.Get().SQLiteBusyErrors.Inc()
	case contentionLocked:
		sqliteCounters.locked.Add(1)
		metrics.Get().SQLiteLockedErrors.Inc()
	}
}

func recordSlowQuery() {
	sqliteCounters.slow.Add(1)
	metrics.Get().SQLiteSlowQueries.Inc()
}

func SQLiteBusyErrorsTotal() uint64 { return sqliteCounters.busy.Load() }
func SQLiteLockedErrorsTotal() uint64 { return sqliteCounters.locked.Load() }
func SQLiteSlowQueriesTotal() uint64 { return sqliteCounters.slow.Load() }

// SQLiteUp reports whether db answers a ping. Without a caller deadline the
// ping is bounded to 200ms so health checks never hang on a locked file.
func SQLiteUp(ctx context.Context, db *gorm.DB) bool {
	if db == nil {
		return false
	}
	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
	}
	return sqlDB.PingContext(ctx) == nil
}
