package entity

import "time"

// ProviderLocal marks accounts that sign in with email and password.
const ProviderLocal = "local"

// User represents a row in the `users` table, credential material included.
// It never leaves the service layer; callers get a Profile.
type User struct {
	RowID int64  `db:"row_id"`
	ID    string `db:"id"`

	Name          string  `db:"name"`
	LastName      string  `db:"last_name"`
	Email         string  `db:"email"`
	Photo         string  `db:"photo"`
	Phone         *string `db:"phone"`
	BusinessName  *string `db:"business_name"`
	FiscalName    *string `db:"fiscal_name"`
	FiscalAddress *string `db:"fiscal_address"`
	RUC           *string `db:"ruc"`
	DNI           *string `db:"dni"`
	Points        int64   `db:"points"`

	Provider   string  `db:"provider"`
	ProviderID *string `db:"provider_id"`

	PasswordSalt           string `db:"password_salt"`
	SecurePassword         string `db:"secure_password"`
	TokenEmailVerification string `db:"token_email_verification"`
	AccessToken            string `db:"access_token"`
	RefreshToken           string `db:"refresh_token"`

	OnboardFinished bool `db:"onboard_finished"`
	IsAdmin         bool `db:"is_admin"`
	IsActive        bool `db:"is_active"`
	IsEmailVerified bool `db:"is_email_verified"`
	IsArchived      bool `db:"is_archived"`

	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	ArchivedAt *time.Time `db:"archived_at"`
}

// Profile is the externally safe projection of a user: no row key, salt,
// hash or email verification token.
type Profile struct {
	ID            string  `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	LastName      string  `db:"last_name" json:"last_name"`
	Photo         string  `db:"photo" json:"photo"`
	Email         string  `db:"email" json:"email"`
	Phone         *string `db:"phone" json:"phone"`
	BusinessName  *string `db:"business_name" json:"business_name"`
	FiscalName    *string `db:"fiscal_name" json:"fiscal_name"`
	FiscalAddress *string `db:"fiscal_address" json:"fiscal_address"`
	RUC           *string `db:"ruc" json:"ruc"`
	DNI           *string `db:"dni" json:"dni"`
	Points        int64   `db:"points" json:"points"`
	Provider      string  `db:"provider" json:"provider"`
	ProviderID    *string `db:"provider_id" json:"provider_id"`

	OnboardFinished bool   `db:"onboard_finished" json:"onboard_finished"`
	AccessToken     string `db:"access_token" json:"access_token"`
	RefreshToken    string `db:"refresh_token" json:"refresh_token"`

	IsAdmin         bool `db:"is_admin" json:"is_admin"`
	IsActive        bool `db:"is_active" json:"is_active"`
	IsEmailVerified bool `db:"is_email_verified" json:"is_email_verified"`
	IsArchived      bool `db:"is_archived" json:"is_archived"`

	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	ArchivedAt *time.Time `db:"archived_at" json:"archived_at"`
}

// Changes is a partial update. A nil field is left untouched by the store.
type Changes struct {
	Name          *string
	LastName      *string
	Email         *string
	Photo         *string
	Phone         *string
	BusinessName  *string
	FiscalName    *string
	FiscalAddress *string
	RUC           *string
	DNI           *string
	Points        *int64
}
