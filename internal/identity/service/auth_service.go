// Package service implements password-based register and login. Sessions are
// stateless: login issues a signed access token and nothing is stored beyond
// the user row.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"workspace-control-plane/backend/internal/audit"
	auditdomain "workspace-control-plane/backend/internal/audit/domain"
	"workspace-control-plane/backend/internal/event"
	"workspace-control-plane/backend/internal/security"
	userdomain "workspace-control-plane/backend/internal/user/domain"
)

// Sentinel errors for the auth service; handlers map them to HTTP statuses.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

// AuthResult holds the outcome of Register (user id only) or Login (token + user id).
type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	UserID      string
	Email       string
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// AuthService implements password-only register and login.
type AuthService struct {
	users       UserRepo
	hasher      *security.Hasher
	tokens      *security.TokenProvider
	auditLogger audit.AuditLogger
	emitter     event.Emitter
}

// NewAuthService returns an AuthService with the given dependencies.
// auditLogger and emitter may be nil.
func NewAuthService(
	users UserRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	auditLogger audit.AuditLogger,
	emitter event.Emitter,
) *AuthService {
	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		auditLogger: auditLogger,
		emitter:     emitter,
	}
}

// Register creates a user with the given email and password. Returns
// AuthResult with UserID only; caller must Login to get a token.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hashed,
		Status:       userdomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.auditLogger != nil {
		s.auditLogger.LogEvent(ctx, "", user.ID, auditdomain.ActionUserRegistered, user.ID, "email="+email)
	}
	event.EmitAsync(s.emitter, event.Event{
		Type:      event.TypeUserRegistered,
		UserID:    user.ID,
		CreatedAt: now,
	})
	return &AuthResult{UserID: user.ID, Email: email}, nil
}

// Login authenticates with email/password and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive || user.PasswordHash == "" {
		s.logLoginFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		s.logLoginFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.IssueAccess(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if s.auditLogger != nil {
		s.auditLogger.LogEvent(ctx, "", user.ID, auditdomain.ActionLoginSuccess, user.ID, "")
	}
	return &AuthResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
		Email:       user.Email,
	}, nil
}

func (s *AuthService) logLoginFailure(ctx context.Context, email string) {
	if s.auditLogger != nil {
		s.auditLogger.LogEvent(ctx, "", "", auditdomain.ActionLoginFailure, email, "")
	}
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		default:
			hasSymbol = true
		}
	}
	if !hasUpper || !hasLower || !hasNumber || !hasSymbol {
		return errors.New("password must contain upper, lower, number, and symbol characters")
	}
	return nil
}
