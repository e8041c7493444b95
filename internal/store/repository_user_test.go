package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-dav-sync/internal/logger"
)

func newTestCredentialRepo(t *testing.T) (*credentialRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.NewLogger("test")
	repo := &credentialRepository{
		db:     &DB{DB: db, placeholder: sq.Question, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func TestFindByUsername_Success(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	rows := sqlmock.
		NewRows([]string{"username", "password", "roles"}).
		AddRow("User1", "pwd", "admin,sync")

	mock.ExpectQuery("SELECT username, password, roles FROM users").
		WithArgs("User1").
		WillReturnRows(rows)

	credential, err := repo.FindByUsername(context.Background(), "User1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credential.Username != "User1" || credential.Password != "pwd" {
		t.Errorf("unexpected credential: %+v", credential)
	}
	if len(credential.Roles) != 2 || credential.Roles[0] != "admin" {
		t.Errorf("unexpected roles: %v", credential.Roles)
	}
}

func TestFindByUsername_NoRoles(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	rows := sqlmock.
		NewRows([]string{"username", "password", "roles"}).
		AddRow("User1", "pwd", "")

	mock.ExpectQuery("SELECT username, password, roles FROM users").
		WithArgs("User1").
		WillReturnRows(rows)

	credential, err := repo.FindByUsername(context.Background(), "User1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credential.Roles != nil {
		t.Errorf("expected nil roles, got %v", credential.Roles)
	}
}

func TestFindByUsername_NotFound(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT username, password, roles FROM users").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	if !errors.Is(err, ErrNoCredentialFound) {
		t.Fatalf("expected ErrNoCredentialFound, got %v", err)
	}
}

func TestFindByUsername_DBError(t *testing.T) {
	repo, mock, db := newTestCredentialRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT username, password, roles FROM users").
		WithArgs("User1").
		WillReturnError(errors.New("db network error"))

	_, err := repo.FindByUsername(context.Background(), "User1")
	if !errors.Is(err, ErrScanningRow) {
		t.Fatalf("expected ErrScanningRow, got %v", err)
	}
}
