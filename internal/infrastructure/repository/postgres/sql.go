package postgres

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

const (
	pqCodeProtocolViolation       pq.ErrorCode = "08P01"
	pqCodeInvalidSQLStatementName pq.ErrorCode = "26000"
)

// Transaction poolers (pgbouncer, Supabase pooler) can drop or mix up the unnamed
// prepared statement lib/pq relies on. Both failures are safe to retry on a fresh tx.
func isPreparedStatementConflict(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqCodeInvalidSQLStatementName:
			return true
		case pqCodeProtocolViolation:
			return strings.Contains(strings.ToLower(pqErr.Message), "bind message supplies")
		}
	}
	// Poolers sometimes relay the failure as plain text.
	return isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err)
}

func isBindParameterMismatch(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bind message supplies") && strings.Contains(msg, "prepared statement")
}

func isUnnamedPreparedStatementMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unnamed prepared statement does not exist") {
		return true
	}
	return strings.Contains(msg, "prepared statement") && strings.Contains(msg, "(26000)")
}
