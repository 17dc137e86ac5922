package user

import "net/http"

// Kind classifies a failed operation. The zero value means no failure.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindAuthentication
	KindThrottled
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuthentication:
		return "authentication"
	case KindThrottled:
		return "throttled"
	case KindInternal:
		return "internal"
	default:
		return "none"
	}
}

// Status maps a kind onto the HTTP status carried by Result. Unknown email
// and wrong password share 400 with validation failures.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict, KindAuthentication:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindThrottled:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is an expected domain failure. Message is safe to show to clients;
// Err is for logs only.
type Error struct {
	Kind    Kind
	Message string
	Data    any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

const (
	msgMissingFields    = "missing required fields"
	msgFieldsError      = "error in fields"
	msgEmailNotValid    = "the email field is not valid"
	msgPasswordNotValid = "the password field is not valid"
	msgNotFound         = "items not found"
	msgNotUpdated       = "item could not be updated"
	msgThrottled        = "too many login attempts"
	msgInternal         = "internal server error"

	msgCreated       = "user created"
	msgFound         = "users found"
	msgUpdated       = "user updated"
	msgDeleted       = "user deleted"
	msgAuthenticated = "user authenticated"
)

func emailTakenMessage(email string) string {
	return "a user with email " + email + " already exists"
}
