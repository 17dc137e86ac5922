package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
)

const profileColumns = `id, name, last_name, photo, email, phone, business_name, fiscal_name,
	fiscal_address, ruc, dni, points, provider, provider_id, onboard_finished,
	access_token, refresh_token, is_admin, is_active, is_email_verified, is_archived,
	created_at, updated_at, archived_at`

const userColumns = `row_id, ` + profileColumns + `,
	password_salt, secure_password, token_email_verification`

// UserRepo provides data access for the users table using sqlx. It works on
// Postgres (lib/pq) and SQLite (modernc); queries use ? and are rebound.
type UserRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db, now: time.Now} }

var postgresDDL = []string{`
CREATE TABLE IF NOT EXISTS users (
  row_id BIGSERIAL PRIMARY KEY,
  id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  photo TEXT NOT NULL DEFAULT '',
  phone TEXT,
  business_name TEXT,
  fiscal_name TEXT,
  fiscal_address TEXT,
  ruc TEXT,
  dni TEXT,
  points BIGINT NOT NULL DEFAULT 0,
  provider TEXT NOT NULL DEFAULT 'local',
  provider_id TEXT,
  password_salt TEXT NOT NULL,
  secure_password TEXT NOT NULL,
  token_email_verification TEXT NOT NULL DEFAULT '',
  access_token TEXT NOT NULL DEFAULT '',
  refresh_token TEXT NOT NULL DEFAULT '',
  onboard_finished BOOLEAN NOT NULL DEFAULT false,
  is_admin BOOLEAN NOT NULL DEFAULT false,
  is_active BOOLEAN NOT NULL DEFAULT true,
  is_email_verified BOOLEAN NOT NULL DEFAULT false,
  is_archived BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  archived_at TIMESTAMPTZ
)`,
}

var sqliteDDL = []string{`
CREATE TABLE IF NOT EXISTS users (
  row_id INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  photo TEXT NOT NULL DEFAULT '',
  phone TEXT,
  business_name TEXT,
  fiscal_name TEXT,
  fiscal_address TEXT,
  ruc TEXT,
  dni TEXT,
  points INTEGER NOT NULL DEFAULT 0,
  provider TEXT NOT NULL DEFAULT 'local',
  provider_id TEXT,
  password_salt TEXT NOT NULL,
  secure_password TEXT NOT NULL,
  token_email_verification TEXT NOT NULL DEFAULT '',
  access_token TEXT NOT NULL DEFAULT '',
  refresh_token TEXT NOT NULL DEFAULT '',
  onboard_finished BOOLEAN NOT NULL DEFAULT 0,
  is_admin BOOLEAN NOT NULL DEFAULT 0,
  is_active BOOLEAN NOT NULL DEFAULT 1,
  is_email_verified BOOLEAN NOT NULL DEFAULT 0,
  is_archived BOOLEAN NOT NULL DEFAULT 0,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  archived_at TIMESTAMP
)`,
}

// EnsureTable creates the users table if not exists (idempotent).
// The UNIQUE constraint on email is what actually guarantees one account per
// email; CheckEmailAvailable is only an early exit.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	ddl := postgresDDL
	if r.db.DriverName() == "sqlite" {
		ddl = sqliteDDL
	}
	for _, stmt := range ddl {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure users table: %w", err)
		}
	}
	return nil
}

// FindByEmail returns the full row, credentials included, for login.
// Emails are matched exactly (case-sensitive).
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	q := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return &u, nil
}

// CheckEmailAvailable returns nil when no user owns email, or an
// *EmailTakenError describing the current owner.
func (r *UserRepo) CheckEmailAvailable(ctx context.Context, email string) error {
	q := r.db.Rebind(`SELECT ` + profileColumns + ` FROM users WHERE email = ? LIMIT 1`)
	var p entity.Profile
	if err := r.db.GetContext(ctx, &p, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("check email availability: %w", err)
	}
	return &EmailTakenError{Email: email, Existing: &p}
}

// Insert persists a new user and sets u.RowID. Unique violations come back
// as *ConflictError.
func (r *UserRepo) Insert(ctx context.Context, u *entity.User) (int64, error) {
	const q = `INSERT INTO users (id, name, last_name, email, photo, phone, business_name, fiscal_name,
		fiscal_address, ruc, dni, points, provider, provider_id, password_salt, secure_password,
		token_email_verification, access_token, refresh_token, onboard_finished, is_admin, is_active,
		is_email_verified, is_archived, created_at, updated_at, archived_at)
	VALUES (:id, :name, :last_name, :email, :photo, :phone, :business_name, :fiscal_name,
		:fiscal_address, :ruc, :dni, :points, :provider, :provider_id, :password_salt, :secure_password,
		:token_email_verification, :access_token, :refresh_token, :onboard_finished, :is_admin, :is_active,
		:is_email_verified, :is_archived, :created_at, :updated_at, :archived_at)
	RETURNING row_id`
	rows, err := r.db.NamedQueryContext(ctx, q, u)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", asConflict(err))
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&u.RowID); err != nil {
			return 0, fmt.Errorf("scan user row id: %w", err)
		}
		return u.RowID, nil
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("insert user: %w", asConflict(err))
	}
	return 0, errors.New("insert user: no row id returned")
}

// FindByID fetches the profile for a public id.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	q := r.db.Rebind(`SELECT ` + profileColumns + ` FROM users WHERE id = ?`)
	var p entity.Profile
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return &p, nil
}

// List returns every profile in creation order. An empty slice is not an error.
func (r *UserRepo) List(ctx context.Context) ([]entity.Profile, error) {
	q := `SELECT ` + profileColumns + ` FROM users ORDER BY row_id`
	items := []entity.Profile{}
	if err := r.db.SelectContext(ctx, &items, q); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return items, nil
}

// Update writes only the non-nil fields of c, bumps updated_at and returns
// the stored profile. The public id is never part of the SET list.
func (r *UserRepo) Update(ctx context.Context, id string, c entity.Changes) (*entity.Profile, error) {
	sets := make([]string, 0, 12)
	args := map[string]any{"id": id, "updated_at": r.now().UTC()}
	set := func(col string, v any) {
		sets = append(sets, col+" = :"+col)
		args[col] = v
	}
	setString := func(col string, v *string) {
		if v != nil {
			set(col, *v)
		}
	}
	setString("name", c.Name)
	setString("last_name", c.LastName)
	setString("email", c.Email)
	setString("photo", c.Photo)
	setString("phone", c.Phone)
	setString("business_name", c.BusinessName)
	setString("fiscal_name", c.FiscalName)
	setString("fiscal_address", c.FiscalAddress)
	setString("ruc", c.RUC)
	setString("dni", c.DNI)
	if c.Points != nil {
		set("points", *c.Points)
	}
	sets = append(sets, "updated_at = :updated_at")

	q := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", asConflict(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update user rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// DeleteByID removes the user in a single statement.
func (r *UserRepo) DeleteByID(ctx context.Context, id string) error {
	q := r.db.Rebind(`DELETE FROM users WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
