package repo

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// EmailTakenError reports that another user already owns the email.
type EmailTakenError struct {
	Email    string
	Existing *entity.Profile
}

func (e *EmailTakenError) Error() string {
	return fmt.Sprintf("email %s already in use", e.Email)
}

// ConflictError wraps a uniqueness violation raised by the database engine.
// Detail keeps the engine message for diagnostics.
type ConflictError struct {
	Detail string
	Err    error
}

func (e *ConflictError) Error() string { return "unique constraint violated: " + e.Detail }
func (e *ConflictError) Unwrap() error { return e.Err }

// asConflict converts driver unique violations into *ConflictError and
// returns other errors unchanged.
func asConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		detail := pqErr.Detail
		if detail == "" {
			detail = pqErr.Message
		}
		return &ConflictError{Detail: detail, Err: err}
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return &ConflictError{Detail: sqliteErr.Error(), Err: err}
		}
	}
	return err
}
