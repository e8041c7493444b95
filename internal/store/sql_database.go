package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
)

// ErrorClassificator decides whether a failed database operation is worth
// retrying. The zero-value store uses the PostgreSQL classifier; SQLite runs
// use the pass-through classifier because the embedded driver has no
// transient failure class worth retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// DB wraps the raw *sql.DB with the dialect-specific pieces the repositories
// need: squirrel's placeholder format ($N for PostgreSQL, ? for SQLite),
// an error classifier, and the shared logger.
type DB struct {
	*sql.DB

	placeholder        sq.PlaceholderFormat
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// builder returns a squirrel statement builder bound to the connection's
// placeholder format.
func (db *DB) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(db.placeholder)
}
