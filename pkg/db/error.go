package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation   = "23505"
	mysqlDuplicateEntry = 1062

	pgDuplicateMessage  = "duplicate key value violates unique constraint"
	sqliteUniqueMessage = "UNIQUE constraint failed:"
	mysqlKeyMarker      = "for key '"
)

// UniqueViolation reports whether err is a unique constraint violation. The
// returned key names the constraint, index or table.column that fired when
// the driver exposes it, and is empty otherwise.
func UniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	// PostgreSQL (error code 23505)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return pgErr.ConstraintName, true
	}

	// MySQL (error code 1062)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number != mysqlDuplicateEntry {
			return "", false
		}
		return mysqlKey(myErr.Message), true
	}

	msg := err.Error()

	// SQLite (error code 2067)
	if idx := strings.Index(msg, sqliteUniqueMessage); idx >= 0 {
		rest := strings.TrimSpace(msg[idx+len(sqliteUniqueMessage):])
		if end := strings.IndexAny(rest, " ,"); end >= 0 {
			rest = rest[:end]
		}
		return rest, true
	}

	if idx := strings.Index(msg, pgDuplicateMessage); idx >= 0 {
		return quoted(msg[idx+len(pgDuplicateMessage):]), true
	}
	if strings.Contains(msg, "Error 1062") {
		return mysqlKey(msg), true
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	return "", false
}

// mysqlKey extracts the key from "Duplicate entry 'x' for key 'tbl.key'".
func mysqlKey(msg string) string {
	idx := strings.LastIndex(msg, mysqlKeyMarker)
	if idx < 0 {
		return ""
	}
	key := strings.TrimSuffix(msg[idx+len(mysqlKeyMarker):], "'")
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		key = key[dot+1:]
	}
	return key
}

func quoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}
