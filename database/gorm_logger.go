package database

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm/logger"
)

// tracingLogger wraps a gorm logger. Every traced statement feeds the
// contention counters, and statements slower than slow are logged and
// counted regardless of the inner log level.
type tracingLogger struct {
	logger.Interface
	slow time.Duration
}

func newTracingLogger(inner logger.Interface, slow time.Duration) tracingLogger {
	return tracingLogger{Interface: inner, slow: slow}
}

func (l tracingLogger) LogMode(level logger.LogLevel) logger.Interface {
	return tracingLogger{Interface: l.Interface.LogMode(level), slow: l.slow}
}

func (l tracingLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err != nil {
		recordSQLiteError(err)
	}
	if l.slow > 0 {
		if elapsed := time.Since(begin); elapsed >= l.slow {
			recordSlowQuery()
			sql, rows := fc()
			log.Printf("[sqlite] slow query %s (rows=%d): %s", elapsed.Round(time.Millisecond), rows, sql)
		}
	}
	l.Interface.Trace(ctx, begin, fc, err)
}
