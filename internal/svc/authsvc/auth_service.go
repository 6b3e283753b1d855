package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rglek0/Metadata-Editor/internal/domain"
	"github.com/rglek0/Metadata-Editor/internal/infra/logging"
	"github.com/rglek0/Metadata-Editor/internal/repo/session"
	"github.com/rglek0/Metadata-Editor/internal/repo/user"
)

// bcryptCost matches the cost the credential store has always used.
const bcryptCost = 10

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// SessionSecret is the cookie-signing secret. When empty, a secret is
	// loaded from (or generated into) SessionSecretFile instead.
	SessionSecret string `env:"SESSION_SECRET" default:""`

	// SessionSecretFile is the fallback location of the signing secret.
	SessionSecretFile string `env:"SESSION_SECRET_FILE" default:"var/storage/metasvc.secret"`

	// SessionTTL is the session lifetime in seconds.
	SessionTTL int64 `env:"SESSION_TTL" default:"86400"` // 24h

	// LoginWindow is the sliding window observed by the login throttle.
	LoginWindow time.Duration `env:"LOGIN_WINDOW" default:"15m"`

	// LoginMaxAttempts is the number of failed logins tolerated per key
	// within LoginWindow before further attempts are rejected.
	LoginMaxAttempts int `env:"LOGIN_MAX_ATTEMPTS" default:"10"`

	// LoginSkipSuccessful controls whether successful logins are exempt
	// from the throttle count.
	LoginSkipSuccessful bool `env:"LOGIN_SKIP_SUCCESSFUL" default:"true"`
}

// AuthService provides user management, credential verification and
// server-side sessions.
type AuthService struct {
	Config      AuthConfig
	UserRepo    user.Repository
	SessionRepo session.Repository
	Log         logging.Logger

	secret []byte
	// dummyHash receives a comparison whenever the username is unknown, so
	// a lookup miss costs the same as a mismatch.
	dummyHash []byte
}

// NewAuthService creates a new AuthService with the given repository
// factories and configuration. Returns an error if the signing secret cannot
// be established or a repository cannot be created.
func NewAuthService(
	userRepoFactory user.RepositoryFactory,
	sessionRepoFactory session.RepositoryFactory,
	cfg AuthConfig,
) (*AuthService, error) {
	log := logging.GetLogger("svc.authsvc.auth_service")

	secret, err := GetSessionSecret(cfg.SessionSecret, cfg.SessionSecretFile)
	if err != nil {
		return nil, fmt.Errorf("get session secret: %w", err)
	}

	userRepo, err := userRepoFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	sessionRepo, err := sessionRepoFactory()
	if err != nil {
		return nil, fmt.Errorf("new session repo: %w", err)
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte("metasvc.dummy"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}

	return &AuthService{
		Config:      cfg,
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Log:         log,
		secret:      secret,
		dummyHash:   dummyHash,
	}, nil
}

// CreateUser provisions a new account. The password is hashed before it is
// persisted; the plaintext never reaches storage or logs. An empty role
// defaults to "user".
// Returns domain.ErrValidation on missing input and
// domain.ErrUserAlreadyExists when the username is taken.
func (s *AuthService) CreateUser(
	ctx context.Context,
	username, password, role string,
) (created *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "create user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user created")
		}
	}()

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", domain.ErrValidation)
	}

	if role == "" {
		role = domain.RoleUser
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err = s.UserRepo.CreateUser(ctx, username, passwordHash, role)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

// Verify checks a username/password pair. On success the user's last-login
// timestamp is touched and the principal projection is returned. On mismatch
// or unknown username the result is domain.ErrInvalidCredentials either way,
// with a hash comparison performed in both branches; there are no side
// effects on failure.
func (s *AuthService) Verify(
	ctx context.Context,
	username, password string,
) (principal domain.Principal, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "verify failed", "error", err)
		} else {
			log.DebugContext(ctx, "verify successful")
		}
	}()

	account, found, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return domain.Principal{}, fmt.Errorf("get user: %w", err)
	}

	if !found {
		// Unknown username still pays for a comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))

		return domain.Principal{}, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return domain.Principal{}, domain.ErrInvalidCredentials
	}

	if err := s.UserRepo.TouchLastLogin(ctx, account.ID); err != nil {
		return domain.Principal{}, fmt.Errorf("touch last login: %w", err)
	}

	return account.Principal(), nil
}

// UpdatePassword re-hashes and overwrites the password for an existing user.
// Returns domain.ErrValidation on missing input and domain.ErrUserNotFound
// when the username does not exist.
func (s *AuthService) UpdatePassword(ctx context.Context, username, newPassword string) (err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update password failed", "error", err)
		} else {
			log.DebugContext(ctx, "password updated")
		}
	}()

	if username == "" || newPassword == "" {
		return fmt.Errorf("%w: username and new password required", domain.ErrValidation)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.UserRepo.UpdatePassword(ctx, username, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

// Close releases resources held by the service, such as database connections.
// Returns an error if cleanup fails.
func (s *AuthService) Close() error {
	return errors.Join(
		s.UserRepo.Close(),
		s.SessionRepo.Close(),
	)
}
