package services

import (
	"context"
	"errors"
	"time"

	pgrepo "github.com/stratus-tools/bug-advisor/internal/repositories/postgres"
	"github.com/stratus-tools/bug-advisor/internal/sessions"
	"github.com/stratus-tools/bug-advisor/internal/utils"
)

const (
	DefaultLockoutThreshold = 5
	DefaultLockoutDuration  = 30 * time.Minute
	DefaultSessionTTL       = 24 * time.Hour
)

// AuthService is the admin auth gate: bcrypt verification, failed-attempt
// lockout, and opaque session issuance.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*sessions.Session, error)
	Logout(ctx context.Context, token string) error
	// Validate resolves a session token; unknown or expired tokens fail
	// with UNAUTHORIZED.
	Validate(ctx context.Context, token string) (*sessions.Session, error)
}

type authService struct {
	users pgrepo.AdminUserRepo
	store sessions.Store

	LockoutThreshold int
	LockoutDuration  time.Duration
	SessionTTL       time.Duration

	now func() time.Time
}

func NewAuthService(users pgrepo.AdminUserRepo, store sessions.Store) AuthService {
	return &authService{
		users:            users,
		store:            store,
		LockoutThreshold: DefaultLockoutThreshold,
		LockoutDuration:  DefaultLockoutDuration,
		SessionTTL:       DefaultSessionTTL,
		now:              time.Now,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*sessions.Session, error) {
	const op = "AuthService.Login"

	if username == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "username and password are required", nil)
	}

	now := s.now().UTC()

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			// Same message as a wrong password; do not reveal which.
			return nil, utils.E(utils.CodeUnauthorized, op, "username or password incorrect", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load admin user", err)
	}

	if user.Locked(now) {
		// Password is deliberately not checked while locked.
		return nil, utils.E(utils.CodeLocked, op, "account temporarily locked due to repeated failed logins", nil)
	}
	if user.LockedUntil != nil {
		// Lock elapsed: counter resets, this attempt is fresh.
		if err := s.users.ResetLock(ctx, user.ID); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to reset lockout", err)
		}
		user.LoginAttempts = 0
		user.LockedUntil = nil
	}

	if !user.IsActive {
		return nil, utils.E(utils.CodeForbidden, op, "account is disabled", nil)
	}

	if utils.CheckPassword(user.PasswordHash, password) != nil {
		if err := s.users.RecordFailure(ctx, user.ID, s.LockoutThreshold, now.Add(s.LockoutDuration)); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to record login failure", err)
		}
		return nil, utils.E(utils.CodeUnauthorized, op, "username or password incorrect", nil)
	}

	if err := s.users.RecordSuccess(ctx, user.ID, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record login", err)
	}

	sess, err := s.store.Create(ctx, user.Username, s.SessionTTL)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	return sess, nil
}

// Logout is idempotent: dropping an already-absent token is a no-op.
func (s *authService) Logout(ctx context.Context, token string) error {
	const op = "AuthService.Logout"

	if token == "" {
		return nil
	}
	if err := s.store.Delete(ctx, token); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete session", err)
	}
	return nil
}

func (s *authService) Validate(ctx context.Context, token string) (*sessions.Session, error) {
	const op = "AuthService.Validate"

	if token == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "missing session token", nil)
	}
	sess, err := s.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "invalid or expired session", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to resolve session", err)
	}
	return sess, nil
}
