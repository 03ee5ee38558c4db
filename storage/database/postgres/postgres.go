// Package postgresdb implements the core repositories over PostgreSQL
// with hand-written SQL.
package postgresdb

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/campusconnect/hub/core"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// executor picks the transaction passed down by the service, if any,
// over the repository's own handle.
func executor(db core.DB, exec []core.DBExecutor) core.DBExecutor {
	if len(exec) > 0 && exec[0] != nil {
		return exec[0]
	}
	return db
}

func isPqError(err error, code pq.ErrorCode) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == code
}
