package sqlstore

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// Constraint violations arrive as driver-specific errors; these helpers
// recognize them for both lib/pq (SQLSTATE codes) and modernc sqlite
// (message text).

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isNotNullViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23502"
	}
	return strings.Contains(err.Error(), "NOT NULL constraint failed")
}

// notNullColumn extracts the offending column name where the driver reports
// it ("NOT NULL constraint failed: table.column", or the pq Column field).
func notNullColumn(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Column
	}
	msg := err.Error()
	marker := "NOT NULL constraint failed: "
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return ""
	}
	rest := msg[idx+len(marker):]
	if end := strings.IndexAny(rest, " ("); end >= 0 {
		rest = rest[:end]
	}
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		rest = rest[dot+1:]
	}
	return rest
}
