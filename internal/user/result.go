package user

import "github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"

// Result is the envelope every Service operation returns. Kind is zero on
// success and names the failure class otherwise.
type Result struct {
	Status  int
	Data    any
	Message string
	Kind    Kind
}

func (r Result) OK() bool { return r.Kind == 0 }

// Success payloads.
type (
	ItemPayload struct {
		Item *entity.Profile `json:"item"`
	}
	ListPayload struct {
		Items []entity.Profile `json:"items"`
	}
	TokensPayload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	DeletedPayload struct {
		ID string `json:"id"`
	}
)

// FailurePayload is the data sent with failures that carry no detail.
type FailurePayload struct {
	Success bool `json:"success"`
}

// ConflictPayload exposes the store detail of a unique violation.
type ConflictPayload struct {
	Error string `json:"error"`
}
