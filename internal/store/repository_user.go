package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/models"
)

// credentialRepository is the SQL-backed implementation of
// [CredentialRepository]. Digest authentication needs the stored password in
// recoverable form, so the users table keeps it verbatim and access to the
// table is the trust boundary.
type credentialRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewCredentialRepository constructs a [CredentialRepository] backed by the
// provided database connection and logger.
func NewCredentialRepository(db *DB, logger *logger.Logger) CredentialRepository {
	logger.Debug().Msg("creating credential repository")
	return &credentialRepository{
		db:     db,
		logger: logger,
	}
}

// FindByUsername implements CredentialRepository.
func (r *credentialRepository) FindByUsername(ctx context.Context, username string) (models.Credential, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.buildFindCredential(username)
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		credential models.Credential
		roles      string
	)
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&credential.Username, &credential.Password, &roles); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Credential{}, ErrNoCredentialFound
		}
		log.Err(err).Str("func", "*credentialRepository.FindByUsername").Msg("error loading credential")
		return models.Credential{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if roles != "" {
		credential.Roles = strings.Split(roles, ",")
	}

	return credential, nil
}
