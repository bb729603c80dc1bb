package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
)

const pgUniqueViolation = "23505"

// uniqueViolation returns the offending constraint or column hint when err is a
// unique-key violation on either supported database.
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName + " " + pgErr.Detail, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return err.Error(), true
	}
	// modernc.org/sqlite: "constraint failed: UNIQUE constraint failed: users.email (2067)"
	if msg := err.Error(); strings.Contains(msg, "UNIQUE constraint failed") {
		return msg, true
	}
	return "", false
}

func translateUserError(err error) error {
	hint, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	switch {
	case strings.Contains(hint, "email"):
		return ErrDuplicateEmail
	case strings.Contains(hint, "username"):
		return ErrDuplicateUsername
	}
	return err
}
