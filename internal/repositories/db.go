package repositories

import (
	"context"
	"errors"

	"vetdesk/internal/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of pgxpool.Pool the repositories use. Satisfied
// by both *pgxpool.Pool and pgxmock.PgxPoolIface.
type Database interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const uniqueViolationCode = "23505"

// mapUniqueViolation translates a Postgres unique-constraint violation
// into the same Conflict error the pre-checks produce, so a write that
// loses a race surfaces identically to a failed pre-check.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_email_key":
		return apperrors.ErrEmailExists
	case "users_username_key":
		return apperrors.ErrUsernameExists
	case "clinic_staff_license_number_key":
		return apperrors.ErrLicenseNumberExists
	case "clinic_staff_public_key_fingerprint_key":
		return apperrors.ErrPublicKeyExists
	}
	return err
}
