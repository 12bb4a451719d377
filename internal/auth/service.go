package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/supportline/supportline-server/internal/core"
	"github.com/supportline/supportline-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering with an existing email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidName is returned when the name doesn't meet constraints.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidEmail is returned when the email is malformed.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidPassword is returned when the password is too short.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidRole is returned when the role is not a known role.
	ErrInvalidRole = errors.New("invalid role")
	// ErrUnknownIdentity is returned when a valid token no longer
	// resolves to a stored user.
	ErrUnknownIdentity = errors.New("unknown identity")
)

// Service issues and verifies credentials and resolves them to
// identities. It is the only component that touches passwords.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// Register creates a new user and returns a JWT token plus the record.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (string, *store.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(name) < 2 || len(name) > 64 {
		return "", nil, ErrInvalidName
	}
	if !strings.Contains(email, "@") {
		return "", nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return "", nil, ErrInvalidPassword
	}
	parsedRole, err := core.ParseRole(role)
	if err != nil {
		return "", nil, ErrInvalidRole
	}

	if existing, err := s.store.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return "", nil, ErrUserExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, name, email, hashedPassword, string(parsedRole))
	if err != nil {
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// Login validates credentials and returns a JWT token plus the record.
func (s *Service) Login(ctx context.Context, email, password string) (string, *store.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}

// Identify validates a token and resolves it to a live identity. Used
// at websocket connect time, where a stale token for a deleted user
// must be rejected before any room registration happens.
func (s *Service) Identify(ctx context.Context, tokenString string) (core.Identity, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return core.Identity{}, fmt.Errorf("validate token: %w", err)
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return core.Identity{}, ErrUnknownIdentity
	}

	role, err := core.ParseRole(user.Role)
	if err != nil {
		return core.Identity{}, fmt.Errorf("stored role: %w", err)
	}

	return core.Identity{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  role,
	}, nil
}
