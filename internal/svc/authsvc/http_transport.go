package authsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rglek0/Metadata-Editor/internal/domain"
	"github.com/rglek0/Metadata-Editor/internal/infra/logging"
	http_ "github.com/rglek0/Metadata-Editor/internal/infra/transport/http"
)

var (
	// ErrNoUsername is returned when the username is missing from the request.
	ErrNoUsername = errors.New("no username")
	// ErrNoPassword is returned when the password is missing from the request.
	ErrNoPassword = errors.New("no password")
)

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig

	// CookieName is the name of the session cookie.
	CookieName string `env:"COOKIE_NAME" default:"metasvc_session"`

	// CookieSecure marks the session cookie Secure; enable behind TLS.
	CookieSecure bool `env:"COOKIE_SECURE" default:"false"`
}

// HTTPTransport handles HTTP requests for the authentication service.
// It provides endpoints for login, logout and session introspection.
type HTTPTransport struct {
	authSvc  *AuthService
	throttle *LoginThrottle
	log      logging.Logger
	cfg      HTTPTransportConfig
}

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
// It requires an AuthService for credential checks and a LoginThrottle for
// rate limiting login attempts.
func NewHTTPTransport(
	authSvc *AuthService,
	throttle *LoginThrottle,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		authSvc:  authSvc,
		throttle: throttle,
		log:      logging.GetLogger("svc.authsvc.http_transport"),
		cfg:      cfg,
	}
}

// ServeHTTP implements http.Handler and sets up routes for the auth service endpoints:
// - POST /auth/login: Verify credentials and open a session
// - POST /auth/logout: Terminate the current session
// - GET /auth/whoami: Return the principal of the current session.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", ht.HandleLogin)
	mux.HandleFunc("POST /auth/logout", ht.HandleLogout)
	mux.HandleFunc("GET /auth/whoami", ht.HandleWhoami)
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// HandleLogin processes login requests.
// Expects form parameters: username, password.
// Sets the session cookie and returns the principal on success.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	// Parse form
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}

	username := r.FormValue("username")
	if username == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return ErrNoUsername
	}

	log = log.With(logging.Group("user", "username", username))

	password := r.FormValue("password")
	if password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return ErrNoPassword
	}

	// Throttle before touching credentials
	key := ht.throttle.Key(username, http_.ClientAddr(r, ht.cfg.TrustProxy))
	if blocked, retryAt := ht.throttle.IsBlocked(key); blocked {
		retryAfter := int64(time.Until(retryAt).Seconds()) + 1
		w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)

		return fmt.Errorf("login throttled: %w", domain.ErrRateLimited)
	}

	// Verify credentials
	principal, err := ht.authSvc.Verify(r.Context(), username, password)
	ht.throttle.RecordAttempt(key, err == nil)

	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		} else {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return fmt.Errorf("verify: %w", err)
	}

	// Open session
	cookieValue, err := ht.authSvc.CreateSession(r.Context(), principal)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return fmt.Errorf("create session: %w", err)
	}

	http.SetCookie(w, ht.sessionCookie(cookieValue, int(ht.authSvc.Config.SessionTTL)))

	// Return principal
	if err := json.NewEncoder(w).Encode(principal); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// HandleLogout terminates the session referenced by the session cookie and
// clears the cookie. Logging out without a session is not an error.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogout(w, r)
}

func (ht *HTTPTransport) handleLogout(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user logout failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged out")
		}
	}(r.Context())

	if cookie, err := r.Cookie(ht.cfg.CookieName); err == nil {
		if err := ht.authSvc.DeleteSession(r.Context(), cookie.Value); err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

			return fmt.Errorf("delete session: %w", err)
		}
	}

	http.SetCookie(w, ht.sessionCookie("", -1))
	w.WriteHeader(http.StatusNoContent)

	return nil
}

// HandleWhoami returns the principal of the current session, or 401 when the
// session cookie is missing or invalid.
func (ht *HTTPTransport) HandleWhoami(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleWhoami(w, r)
}

func (ht *HTTPTransport) handleWhoami(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "whoami rejected", "error", err)
		} else {
			log.DebugContext(ctx, "whoami resolved")
		}
	}(r.Context())

	cookie, err := r.Cookie(ht.cfg.CookieName)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

		return domain.ErrNoSession
	}

	principal, err := ht.authSvc.Authorize(r.Context(), cookie.Value)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

		return fmt.Errorf("authorize: %w", err)
	}

	if err := json.NewEncoder(w).Encode(principal); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

func (ht *HTTPTransport) sessionCookie(value string, maxAge int) *http.Cookie {
	//nolint:exhaustruct
	return &http.Cookie{
		Name:     ht.cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   ht.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
