package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielsaucedo/partstracker-backend/pkg/config"
	"github.com/danielsaucedo/partstracker-backend/pkg/db/models"
	"github.com/danielsaucedo/partstracker-backend/pkg/enums"
	pkgerrors "github.com/danielsaucedo/partstracker-backend/pkg/errors"
	"github.com/danielsaucedo/partstracker-backend/pkg/security"
)

type auditLogger interface {
	Event(ctx context.Context, level, message string, fields map[string]any)
}

// Service authenticates operators against opaque bearer tokens stored in the
// auth_tokens table.
type Service interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	ResolveToken(ctx context.Context, token string) (*UserDTO, error)
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// UserDTO is the authenticated user payload.
type UserDTO struct {
	ID       uuid.UUID      `json:"id"`
	Username string         `json:"username"`
	Role     enums.UserRole `json:"role"`
}

// LoginResult carries the fresh token and its owner.
type LoginResult struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type service struct {
	repo  *Repository
	cfg   config.AuthConfig
	audit auditLogger
	now   func() time.Time
}

// NewService constructs an auth service instance.
func NewService(repo *Repository, cfg config.AuthConfig, audit auditLogger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	return &service{repo: repo, cfg: cfg, audit: audit, now: time.Now}, nil
}

// Login verifies the credentials and issues a random hex token. Unknown users
// and bad passwords are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	if !security.VerifyPassword(password, user.PasswordHash) {
		s.auditEvent(ctx, "warn", "login_failed", map[string]any{"user": username})
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := security.RandomToken(s.cfg.TokenBytes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate token")
	}
	row := &models.AuthToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: s.now().Add(s.cfg.TokenTTL),
	}
	if err := s.repo.CreateToken(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert token")
	}

	s.auditEvent(ctx, "info", "login", map[string]any{"user": user.Username})
	return &LoginResult{
		Token: token,
		User:  UserDTO{ID: user.ID, Username: user.Username, Role: user.Role},
	}, nil
}

// Logout discards the presented token. Unknown tokens are ignored so logout
// is idempotent.
func (s *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.DeleteToken(ctx, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete token")
	}
	return nil
}

// ResolveToken maps a bearer token to its user. Expired and unknown tokens
// both yield an unauthorized error.
func (s *service) ResolveToken(ctx context.Context, token string) (*UserDTO, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token")
	}

	row, err := s.repo.FindToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load token")
	}
	if row.Expired(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token expired")
	}

	user, err := s.repo.FindUserByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return &UserDTO{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// PurgeExpiredTokens removes stale token rows.
func (s *service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpiredTokens(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: purge tokens")
	}
	return removed, nil
}

func (s *service) auditEvent(ctx context.Context, level, message string, fields map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Event(ctx, level, message, fields)
}
