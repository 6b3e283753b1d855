package authsvc_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rglek0/Metadata-Editor/internal/svc/authsvc"
)

const testCookieName = "metasvc_session"

func newTestTransport(t *testing.T, maxAttempts int) *authsvc.HTTPTransport {
	t.Helper()

	svc := newTestAuthService(t, 3600)

	if _, err := svc.CreateUser(context.Background(), "alice", "hunter2!", ""); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	throttle := authsvc.NewLoginThrottle(authsvc.LoginThrottleConfig{
		WindowDuration: time.Minute,
		MaxAttempts:    maxAttempts,
		SkipSuccessful: true,
	})

	//nolint:exhaustruct
	return authsvc.NewHTTPTransport(svc, throttle, authsvc.HTTPTransportConfig{
		CookieName: testCookieName,
	})
}

func postLogin(ht *authsvc.HTTPTransport, username, password string) *httptest.ResponseRecorder {
	form := url.Values{}
	if username != "" {
		form.Set("username", username)
	}

	if password != "" {
		form.Set("password", password)
	}

	r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	ht.ServeHTTP(w, r)

	return w
}

func TestHTTPTransport_Login(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		username   string
		password   string
		wantStatus int
	}{
		{"valid credentials", "alice", "hunter2!", http.StatusOK},
		{"missing username", "", "hunter2!", http.StatusBadRequest},
		{"missing password", "alice", "", http.StatusBadRequest},
		{"wrong password", "alice", "wrong", http.StatusUnauthorized},
		{"unknown username", "mallory", "hunter2!", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ht := newTestTransport(t, 10)

			w := postLogin(ht, tt.username, tt.password)
			if w.Code != tt.wantStatus {
				t.Fatalf("login status = %d, want %d", w.Code, tt.wantStatus)
			}

			if tt.wantStatus != http.StatusOK {
				return
			}

			if !strings.Contains(w.Body.String(), `"username":"alice"`) {
				t.Errorf("login body = %q, want principal json", w.Body.String())
			}

			cookie := sessionCookie(t, w)
			if cookie.Value == "" || !cookie.HttpOnly {
				t.Errorf("session cookie = %+v, want non-empty HttpOnly", cookie)
			}
		})
	}
}

func TestHTTPTransport_Login_ThrottleBlocksCorrectCredentials(t *testing.T) {
	t.Parallel()

	ht := newTestTransport(t, 2)

	for range 2 {
		if w := postLogin(ht, "alice", "wrong"); w.Code != http.StatusUnauthorized {
			t.Fatalf("failed login status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	}

	// The budget is spent, so even the right password is turned away, and
	// the response is distinguishable from a credential failure.
	w := postLogin(ht, "alice", "hunter2!")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("throttled login status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Error("throttled login missing Retry-After header")
	}
}

func TestHTTPTransport_Login_ThrottleIsPerIdentity(t *testing.T) {
	t.Parallel()

	ht := newTestTransport(t, 2)

	for range 2 {
		postLogin(ht, "mallory", "wrong")
	}

	// Another identity still gets through.
	if w := postLogin(ht, "alice", "hunter2!"); w.Code != http.StatusOK {
		t.Fatalf("unrelated login status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestHTTPTransport_WhoamiAndLogout(t *testing.T) {
	t.Parallel()

	ht := newTestTransport(t, 10)

	login := postLogin(ht, "alice", "hunter2!")
	if login.Code != http.StatusOK {
		t.Fatalf("login status = %d, want %d", login.Code, http.StatusOK)
	}

	cookie := sessionCookie(t, login)

	whoami := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/auth/whoami", nil)
		r.AddCookie(cookie)

		w := httptest.NewRecorder()
		ht.ServeHTTP(w, r)

		return w
	}

	if w := whoami(); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"username":"alice"`) {
		t.Fatalf("whoami = %d %q, want principal json", w.Code, w.Body.String())
	}

	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	r.AddCookie(cookie)

	w := httptest.NewRecorder()
	ht.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d, want %d", w.Code, http.StatusNoContent)
	}

	if w := whoami(); w.Code != http.StatusUnauthorized {
		t.Fatalf("whoami after logout = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestHTTPTransport_Whoami_NoCookie(t *testing.T) {
	t.Parallel()

	ht := newTestTransport(t, 10)

	r := httptest.NewRequest(http.MethodGet, "/auth/whoami", nil)
	w := httptest.NewRecorder()
	ht.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("whoami status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == testCookieName {
			return cookie
		}
	}

	t.Fatal("no session cookie in response")

	return nil
}
