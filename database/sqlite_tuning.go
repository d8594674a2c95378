package database

import (
	"database/sql"
	"net/url"
	"strconv"
	"strings"
	"taskmind/config"
	"time"
)

var (
	journalModes = map[string]bool{"WAL": true, "DELETE": true, "TRUNCATE": true, "PERSIST": true, "MEMORY": true, "OFF": true}
	syncLevels   = map[string]bool{"OFF": true, "NORMAL": true, "FULL": true, "EXTRA": true, "0": true, "1": true, "2": true, "3": true}
)

type pragma struct {
	name  string
	value string
}

// sqlitePragmas lists the PRAGMAs to apply, in order. Unknown journal or
// synchronous values are dropped rather than passed to SQLite.
func sqlitePragmas(settings *config.Config) []pragma {
	if !settings.SQLitePragmasEnabled {
		return nil
	}

	var out []pragma
	if settings.SQLiteBusyTimeoutMS > 0 {
		out = append(out, pragma{"busy_timeout", strconv.Itoa(settings.SQLiteBusyTimeoutMS)})
	}
	if mode := upper(settings.SQLiteJournalMode); journalModes[mode] {
		out = append(out, pragma{"journal_mode", mode})
	}
	if level := upper(settings.SQLiteSynchronous); syncLevels[level] {
		out = append(out, pragma{"synchronous", level})
	}
	return out
}

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// buildSQLiteDSN adds one `_pragma=name(value)` parameter per pragma to path,
// keeping any query it already carries.
func buildSQLiteDSN(path string, pragmas []pragma) string {
	base, rawQuery, _ := strings.Cut(path, "?")
	query, _ := url.ParseQuery(rawQuery)
	for _, p := range pragmas {
		query.Add("_pragma", p.name+"("+p.value+")")
	}
	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}

// poolLimits are the database/sql pool settings. SQLite allows one writer,
// so the defaults keep a single connection.
type poolLimits struct {
	maxOpen     int
	maxIdle     int
	idleTimeout time.Duration
	lifetime    time.Duration
}

// poolLimitsFrom clamps maxOpen to >= 1, maxIdle to [0, maxOpen] and
// negative durations to 0 (no limit).
func poolLimitsFrom(settings *config.Config) poolLimits {
	l := poolLimits{
		maxOpen:     max(settings.SQLiteMaxOpenConns, 1),
		idleTimeout: time.Duration(max(settings.SQLiteConnMaxIdleSec, 0)) * time.Second,
		lifetime:    time.Duration(max(settings.SQLiteConnMaxLifeSec, 0)) * time.Second,
	}
	l.maxIdle = min(max(settings.SQLiteMaxIdleConns, 0), l.maxOpen)
	return l
}

func (l poolLimits) apply(db *sql.DB) {
	db.SetMaxOpenConns(l.maxOpen)
	db.SetMaxIdleConns(l.maxIdle)
	db.SetConnMaxIdleTime(l.idleTimeout)
	db.SetConnMaxLifetime(l.lifetime)
}
