package http

import (
	"context"
	"net/http"

	"github.com/rglek0/Metadata-Editor/internal/domain"
	context_ "github.com/rglek0/Metadata-Editor/internal/infra/context"
	"github.com/rglek0/Metadata-Editor/internal/infra/logging"
)

// SessionAuthorizer resolves a session cookie value to an authenticated principal.
type SessionAuthorizer interface {
	// Authorize verifies the signed cookie value and loads the session principal.
	// Returns domain.ErrNoSession when the cookie is missing, tampered or expired.
	Authorize(ctx context.Context, cookieValue string) (domain.Principal, error)
}

// SessionMiddleware creates middleware that requires a valid session cookie.
// Requests without one are rejected with 401. On success the session principal
// is attached to the request context.
func SessionMiddleware(
	next http.Handler,
	authorizer SessionAuthorizer,
	cookieName string,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(cookieName)
		if err != nil {
			log.DebugContext(r.Context(), "no session cookie")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

			return
		}

		principal, err := authorizer.Authorize(r.Context(), cookie.Value)
		if err != nil {
			log.WarnContext(r.Context(), "session rejected", "error", err)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithPrincipal(r.Context(), principal)))
	})
}
