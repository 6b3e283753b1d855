package authsvc

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rglek0/Metadata-Editor/internal/domain"
	"github.com/rglek0/Metadata-Editor/internal/util/encoding"
)

// CreateSession opens a new session for the given principal and returns the
// signed cookie value that references it. Sessions are persisted so logins
// survive restarts. Expired sessions are reaped opportunistically on each
// create.
func (s *AuthService) CreateSession(ctx context.Context, principal domain.Principal) (cookieValue string, err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "create session failed", "error", err)
		} else {
			s.Log.DebugContext(ctx, "session created", "username", principal.Username)
		}
	}()

	if reaped, err := s.SessionRepo.DeleteExpired(ctx, time.Now().Unix()); err != nil {
		s.Log.WarnContext(ctx, "reap expired sessions failed", "error", err)
	} else if reaped > 0 {
		s.Log.DebugContext(ctx, "reaped expired sessions", "count", reaped)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("new session id: %w", err)
	}

	now := time.Now().Unix()
	sess := &domain.Session{
		ID:        encoding.EncodeCrockfordB32LC(id[:]),
		UserID:    principal.ID,
		Username:  principal.Username,
		Role:      principal.Role,
		CreatedAt: now,
		ExpiresAt: now + s.Config.SessionTTL,
	}

	if err := s.SessionRepo.Put(ctx, sess); err != nil {
		return "", fmt.Errorf("put session: %w", err)
	}

	return s.signSessionID(sess.ID), nil
}

// Authorize verifies a signed session cookie value and resolves it to the
// authenticated principal. Expired sessions are deleted on sight.
// Returns domain.ErrNoSession when the value is tampered, unknown or expired.
func (s *AuthService) Authorize(ctx context.Context, cookieValue string) (domain.Principal, error) {
	id, err := s.verifySessionCookie(cookieValue)
	if err != nil {
		return domain.Principal{}, err
	}

	sess, found, err := s.SessionRepo.Get(ctx, id)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("get session: %w", err)
	}

	if !found {
		return domain.Principal{}, domain.ErrNoSession
	}

	if sess.Expired(time.Now()) {
		if err := s.SessionRepo.Delete(ctx, id); err != nil {
			s.Log.WarnContext(ctx, "delete expired session failed", "error", err)
		}

		return domain.Principal{}, domain.ErrNoSession
	}

	return sess.Principal(), nil
}

// DeleteSession terminates the session referenced by the signed cookie value.
// An invalid or already-deleted session is not an error.
func (s *AuthService) DeleteSession(ctx context.Context, cookieValue string) error {
	id, err := s.verifySessionCookie(cookieValue)
	if err != nil {
		return nil
	}

	if err := s.SessionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// signSessionID appends an HMAC-SHA256 tag so the cookie value is tamper
// evident. Format: "<id>.<base64url mac>".
func (s *AuthService) signSessionID(id string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(id))

	return id + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *AuthService) verifySessionCookie(cookieValue string) (string, error) {
	id, tag, ok := strings.Cut(cookieValue, ".")
	if !ok || id == "" {
		return "", fmt.Errorf("%w: malformed cookie", domain.ErrNoSession)
	}

	got, err := base64.RawURLEncoding.DecodeString(tag)
	if err != nil {
		return "", errors.Join(domain.ErrNoSession, err)
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(id))

	if !hmac.Equal(got, mac.Sum(nil)) {
		return "", fmt.Errorf("%w: bad signature", domain.ErrNoSession)
	}

	return id, nil
}
