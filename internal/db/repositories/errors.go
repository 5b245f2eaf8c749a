// Package repositories implements the database query layer for license keys
// and their audit events. The key repository is the sole owner of key
// persistence: every mutation of claim state goes through a single atomic
// statement here, and all other packages treat returned records as read-only
// snapshots.
package repositories

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicateToken is returned by Insert when the candidate token collides
// with an existing (or tombstoned) key. Callers recover by retrying with a
// fresh candidate; see keygen.Generator.
var ErrDuplicateToken = errors.New("duplicate key token")

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
