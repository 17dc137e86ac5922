package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-user-go/internal/events"
	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-user-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-user-go/pkg/utilities"
)

// DefaultAccessTTL is the lifetime of access tokens minted at signup.
const DefaultAccessTTL = 15 * 24 * time.Hour

// Store is the persistence the service needs. *repo.UserRepo satisfies it.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	CheckEmailAvailable(ctx context.Context, email string) error
	Insert(ctx context.Context, u *entity.User) (int64, error)
	FindByID(ctx context.Context, id string) (*entity.Profile, error)
	List(ctx context.Context) ([]entity.Profile, error)
	Update(ctx context.Context, id string, c entity.Changes) (*entity.Profile, error)
	DeleteByID(ctx context.Context, id string) error
}

type CredentialCodec interface {
	Derive(plaintext string) (salt, hash string, err error)
	Verify(plaintext, salt, hash string) bool
}

type TokenIssuer interface {
	IssueAccess(claims map[string]any, ttl time.Duration) (string, error)
	IssueOpaque() (string, error)
}

type IDGenerator interface {
	NewID() string
}

// LoginLimiter throttles repeated failed logins per email.
type LoginLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Service orchestrates signup, login and the profile lifecycle. It keeps no
// per-request state and is safe for concurrent use.
type Service struct {
	store        Store
	codec        CredentialCodec
	issuer       TokenIssuer
	ids          IDGenerator
	limiter      LoginLimiter
	publisher    EventPublisher
	logger       *zap.SugaredLogger
	defaultPhoto string
	accessTTL    time.Duration
	now          func() time.Time
}

type Option func(*Service)

func WithLogger(l *zap.SugaredLogger) Option { return func(s *Service) { s.logger = l } }

func WithDefaultPhoto(url string) Option { return func(s *Service) { s.defaultPhoto = url } }

func WithAccessTTL(ttl time.Duration) Option { return func(s *Service) { s.accessTTL = ttl } }

func WithIDGenerator(g IDGenerator) Option { return func(s *Service) { s.ids = g } }

// WithLoginLimiter enables login throttling. Without it every attempt proceeds.
func WithLoginLimiter(l LoginLimiter) Option { return func(s *Service) { s.limiter = l } }

func WithPublisher(p EventPublisher) Option { return func(s *Service) { s.publisher = p } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(store Store, codec CredentialCodec, issuer TokenIssuer, opts ...Option) *Service {
	s := &Service{
		store:        store,
		codec:        codec,
		issuer:       issuer,
		ids:          new(utilities.IDGenerator),
		publisher:    events.NopPublisher{},
		logger:       zap.NewNop().Sugar(),
		defaultPhoto: config.DefaultPhotoURL,
		accessTTL:    DefaultAccessTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignupInput is the signup request. Password is cleared once the
// credential has been derived.
type SignupInput struct {
	Name       string `json:"name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Photo      string `json:"photo"`
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateInput requires every field but Points. BusinessTypeID and Password
// are checked for presence but never stored.
type UpdateInput struct {
	BusinessTypeID Text   `json:"business_type_id"`
	Name           string `json:"name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          Text   `json:"phone"`
	BusinessName   string `json:"business_name"`
	FiscalName     string `json:"fiscal_name"`
	FiscalAddress  string `json:"fiscal_address"`
	RUC            Text   `json:"ruc"`
	DNI            Text   `json:"dni"`
	Photo          string `json:"photo"`
	Password       string `json:"password"`
	Points         int64  `json:"points"`
}

// Create registers a local account and returns 201 with the sanitized profile.
func (s *Service) Create(ctx context.Context, in *SignupInput) Result {
	return s.run("create", http.StatusCreated, msgCreated, func() (any, error) {
		return s.create(ctx, in)
	})
}

// Authenticate checks email and password and returns the stored tokens.
func (s *Service) Authenticate(ctx context.Context, in *LoginInput) Result {
	return s.run("authenticate", http.StatusOK, msgAuthenticated, func() (any, error) {
		return s.authenticate(ctx, in)
	})
}

func (s *Service) GetByID(ctx context.Context, id string) Result {
	return s.run("get_by_id", http.StatusOK, msgFound, func() (any, error) {
		p, err := s.store.FindByID(ctx, id)
		if err != nil {
			return nil, notFoundOr(err)
		}
		return ItemPayload{Item: p}, nil
	})
}

// GetList answers 404 when there are no users at all.
func (s *Service) GetList(ctx context.Context) Result {
	return s.run("get_list", http.StatusOK, msgFound, func() (any, error) {
		items, err := s.store.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, &Error{Kind: KindNotFound, Message: msgNotFound}
		}
		return ListPayload{Items: items}, nil
	})
}

func (s *Service) UpdateByID(ctx context.Context, id string, in *UpdateInput) Result {
	return s.run("update_by_id", http.StatusOK, msgUpdated, func() (any, error) {
		return s.update(ctx, id, in)
	})
}

func (s *Service) DeleteByID(ctx context.Context, id string) Result {
	return s.run("delete_by_id", http.StatusOK, msgDeleted, func() (any, error) {
		if err := s.store.DeleteByID(ctx, id); err != nil {
			return nil, notFoundOr(err)
		}
		s.publish(ctx, events.UserDeleted, id, "")
		return DeletedPayload{ID: id}, nil
	})
}

func (s *Service) create(ctx context.Context, in *SignupInput) (any, error) {
	if in == nil || in.Name == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return nil, &Error{Kind: KindValidation, Message: msgMissingFields}
	}

	if err := s.checkEmail(ctx, in.Email); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	u := &entity.User{
		ID:        s.ids.NewID(),
		Name:      in.Name,
		LastName:  in.LastName,
		Email:     in.Email,
		Photo:     in.Photo,
		Provider:  in.Provider,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if u.Photo == "" {
		u.Photo = s.defaultPhoto
	}
	if u.Provider == "" {
		u.Provider = entity.ProviderLocal
	}
	if in.ProviderID != "" {
		pid := in.ProviderID
		u.ProviderID = &pid
	}

	verification, err := s.issuer.IssueOpaque()
	if err != nil {
		return nil, err
	}
	u.TokenEmailVerification = verification

	salt, hash, err := s.codec.Derive(in.Password)
	in.Password = ""
	if err != nil {
		return nil, err
	}
	u.PasswordSalt, u.SecurePassword = salt, hash

	if u.AccessToken, err = s.issuer.IssueAccess(accessClaims(u), s.accessTTL); err != nil {
		return nil, err
	}
	if u.RefreshToken, err = s.issuer.IssueOpaque(); err != nil {
		return nil, err
	}

	if _, err := s.store.Insert(ctx, u); err != nil {
		var conflict *userrepo.ConflictError
		if errors.As(err, &conflict) {
			return nil, &Error{Kind: KindConflict, Message: msgFieldsError, Data: ConflictPayload{Error: conflict.Detail}, Err: err}
		}
		return nil, err
	}

	p, err := s.store.FindByID(ctx, u.ID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	s.logger.Infow("user created", "id", p.ID)
	s.publish(ctx, events.UserCreated, p.ID, p.Email)
	return ItemPayload{Item: p}, nil
}

func (s *Service) authenticate(ctx context.Context, in *LoginInput) (any, error) {
	if in == nil || in.Email == "" || in.Password == "" {
		return nil, &Error{Kind: KindValidation, Message: msgMissingFields}
	}
	password := in.Password
	in.Password = ""

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, in.Email)
		if err != nil {
			s.logger.Warnw("login limiter unavailable", "err", err)
		}
		if !ok {
			return nil, &Error{Kind: KindThrottled, Message: msgThrottled}
		}
	}

	u, err := s.store.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			s.recordFailure(ctx, in.Email)
			return nil, &Error{Kind: KindAuthentication, Message: msgEmailNotValid}
		}
		return nil, err
	}

	if !s.codec.Verify(password, u.PasswordSalt, u.SecurePassword) {
		s.recordFailure(ctx, in.Email)
		return nil, &Error{Kind: KindAuthentication, Message: msgPasswordNotValid}
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, in.Email); err != nil {
			s.logger.Warnw("login limiter reset failed", "err", err)
		}
	}
	return TokensPayload{AccessToken: u.AccessToken, RefreshToken: u.RefreshToken}, nil
}

func (s *Service) update(ctx context.Context, id string, in *UpdateInput) (any, error) {
	if in == nil || !in.complete() {
		return nil, &Error{Kind: KindValidation, Message: msgMissingFields}
	}
	in.Password = ""

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}

	if in.Email != current.Email {
		if err := s.checkEmail(ctx, in.Email); err != nil {
			return nil, err
		}
	}

	p, err := s.store.Update(ctx, id, mergeByTruthiness(current, in))
	if err != nil {
		var conflict *userrepo.ConflictError
		switch {
		case errors.As(err, &conflict):
			return nil, &Error{Kind: KindConflict, Message: msgFieldsError, Data: ConflictPayload{Error: conflict.Detail}, Err: err}
		case errors.Is(err, userrepo.ErrNotFound):
			// removed between the read and the write
			return nil, &Error{Kind: KindConflict, Message: msgNotUpdated, Err: err}
		}
		return nil, err
	}
	s.publish(ctx, events.UserUpdated, p.ID, p.Email)
	return ItemPayload{Item: p}, nil
}

func (in *UpdateInput) complete() bool {
	for _, v := range []string{
		in.BusinessTypeID.String(), in.Name, in.LastName, in.Email, in.Phone.String(),
		in.BusinessName, in.FiscalName, in.FiscalAddress, in.RUC.String(), in.DNI.String(),
		in.Photo, in.Password,
	} {
		if v == "" {
			return false
		}
	}
	return true
}

func (s *Service) checkEmail(ctx context.Context, email string) error {
	err := s.store.CheckEmailAvailable(ctx, email)
	var taken *userrepo.EmailTakenError
	if errors.As(err, &taken) {
		return &Error{Kind: KindConflict, Message: emailTakenMessage(email), Err: err}
	}
	return err
}

func (s *Service) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.logger.Warnw("login limiter record failed", "err", err)
	}
}

func (s *Service) publish(ctx context.Context, typ, id, email string) {
	e := events.Event{Type: typ, UserID: id, Email: email, OccurredAt: s.now().UTC()}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warnw("publish user event failed", "type", typ, "id", id, "err", err)
	}
}

// run converts the outcome of fn into a Result. Panics and unexpected errors
// become a 500 and are logged; their text never reaches the caller.
func (s *Service) run(op string, status int, message string, fn func() (any, error)) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Errorw("user operation panicked", "op", op, "panic", p)
			res = failure(KindInternal, msgInternal, nil)
		}
	}()

	data, err := fn()
	if err == nil {
		return Result{Status: status, Data: data, Message: message}
	}

	var de *Error
	if errors.As(err, &de) {
		s.logger.Debugw("user operation failed", "op", op, "kind", de.Kind.String(), "err", de)
		return failure(de.Kind, de.Message, de.Data)
	}
	s.logger.Errorw("user operation error", "op", op, "err", err)
	return failure(KindInternal, msgInternal, nil)
}

func failure(kind Kind, message string, data any) Result {
	if data == nil {
		data = FailurePayload{Success: false}
	}
	return Result{Status: kind.Status(), Data: data, Message: message, Kind: kind}
}

func notFoundOr(err error) error {
	if errors.Is(err, userrepo.ErrNotFound) {
		return &Error{Kind: KindNotFound, Message: msgNotFound, Err: err}
	}
	return err
}

// accessClaims carries the sanitized attributes of u, never credential
// material or other tokens.
func accessClaims(u *entity.User) map[string]any {
	c := map[string]any{
		"sub":               u.ID,
		"id":                u.ID,
		"name":              u.Name,
		"last_name":         u.LastName,
		"email":             u.Email,
		"photo":             u.Photo,
		"provider":          u.Provider,
		"is_admin":          u.IsAdmin,
		"is_active":         u.IsActive,
		"is_email_verified": u.IsEmailVerified,
	}
	if u.ProviderID != nil {
		c["provider_id"] = *u.ProviderID
	}
	return c
}
