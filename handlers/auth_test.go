// ABOUTME: Tests for the BFF auth endpoints
// ABOUTME: Verifies login sets a session cookie and tokens stay server-side

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/calvora/ops-console/backend/middleware"
	"github.com/calvora/ops-console/backend/models"
)

func loginUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("path = %s, want /auth/login", r.URL.Path)
		}
		var req models.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"accessToken":          "upstream-access",
			"refreshToken":         "upstream-refresh",
			"accessTokenExpiresAt": time.Now().Add(time.Hour).Format(time.RFC3339),
			"user":                 models.Identity{Username: req.Username, UserID: "u-1"},
		})
	}))
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLogin_SetsHttpOnlySessionCookie(t *testing.T) {
	upstream := loginUpstream(t)
	defer upstream.Close()

	mux, _ := newTestServer(t, upstream)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username": "ada", "password": "secret"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be httpOnly")
	}

	// Tokens never appear in the login response body
	if strings.Contains(rec.Body.String(), "upstream-access") {
		t.Error("access token leaked to the client")
	}

	var resp models.LoginResponse
	decodeBody(t, rec, &resp)
	if !resp.Success || resp.Username != "ada" || resp.UserID != "u-1" {
		t.Errorf("response = %+v, want success with identity", resp)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	upstream := loginUpstream(t)
	defer upstream.Close()

	mux, _ := newTestServer(t, upstream)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username": "ada", "password": "wrong"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if sessionCookie(rec) != nil {
		t.Error("no session cookie should be set on failed login")
	}
}

func TestLogin_MissingFields(t *testing.T) {
	upstream := loginUpstream(t)
	defer upstream.Close()

	mux, _ := newTestServer(t, upstream)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username": "ada"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMe_ReflectsSessionState(t *testing.T) {
	upstream := loginUpstream(t)
	defer upstream.Close()

	mux, _ := newTestServer(t, upstream)

	// Anonymous first
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	var anon models.UserInfoResponse
	decodeBody(t, rec, &anon)
	if anon.Authenticated {
		t.Error("anonymous request reported as authenticated")
	}

	// Log in, then replay the cookie
	loginRec := httptest.NewRecorder()
	mux.ServeHTTP(loginRec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username": "ada", "password": "secret"}`)))
	cookie := sessionCookie(loginRec)
	if cookie == nil {
		t.Fatal("login did not set a session cookie")
	}

	meReq := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	meReq.AddCookie(cookie)
	meRec := httptest.NewRecorder()
	mux.ServeHTTP(meRec, meReq)

	var me models.UserInfoResponse
	decodeBody(t, meRec, &me)
	if !me.Authenticated || me.Username != "ada" {
		t.Errorf("me = %+v, want authenticated ada", me)
	}
}

func TestLogout_ClearsSessionAndCookie(t *testing.T) {
	upstream := loginUpstream(t)
	defer upstream.Close()

	mux, _ := newTestServer(t, upstream)

	loginRec := httptest.NewRecorder()
	mux.ServeHTTP(loginRec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username": "ada", "password": "secret"}`)))
	cookie := sessionCookie(loginRec)
	if cookie == nil {
		t.Fatal("login did not set a session cookie")
	}

	logoutReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	logoutReq.AddCookie(cookie)
	logoutRec := httptest.NewRecorder()
	mux.ServeHTTP(logoutRec, logoutReq)

	if logoutRec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", logoutRec.Code)
	}
	cleared := sessionCookie(logoutRec)
	if cleared == nil || cleared.MaxAge != -1 {
		t.Error("logout should expire the session cookie")
	}

	// Session is gone, so /me reports anonymous
	meReq := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	meReq.AddCookie(cookie)
	meRec := httptest.NewRecorder()
	mux.ServeHTTP(meRec, meReq)

	var me models.UserInfoResponse
	decodeBody(t, meRec, &me)
	if me.Authenticated {
		t.Error("session should be invalid after logout")
	}
}
