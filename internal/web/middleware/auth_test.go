package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewSessionManager(t *testing.T) {
	sm := NewSessionManager("test-secret")
	if sm == nil {
		t.Fatal("NewSessionManager returned nil")
		return
	}
	if sm.sessions == nil {
		t.Error("sessions map is nil")
	}
}

func TestSessionManager_CreateSession(t *testing.T) {
	sm := NewSessionManager("test-secret")

	session := sm.CreateSession("admin")

	if session.ID == "" {
		t.Error("session ID is empty")
	}
	if session.Username != "admin" {
		t.Errorf("Username = %s, want admin", session.Username)
	}
	if session.ExpiresAt.Before(time.Now()) {
		t.Error("session expires in the past")
	}
}

func TestSessionManager_GetSession(t *testing.T) {
	sm := NewSessionManager("test-secret")

	session := sm.CreateSession("admin")

	// Get existing session.
	retrieved := sm.GetSession(session.ID)
	if retrieved == nil {
		t.Fatal("GetSession() returned nil for existing session")
		return
	}
	if retrieved.Username != "admin" {
		t.Errorf("Username = %s, want admin", retrieved.Username)
	}

	// Get non-existing session.
	if notFound := sm.GetSession("nonexistent-id"); notFound != nil {
		t.Error("GetSession() returned session for unknown ID")
	}
}

func TestSessionManager_ExpiredSession(t *testing.T) {
	sm := NewSessionManager("test-secret")

	session := sm.CreateSession("admin")
	session.ExpiresAt = time.Now().Add(-time.Minute)

	if got := sm.GetSession(session.ID); got != nil {
		t.Error("expired session should not be returned")
	}
}

func TestSessionManager_CookieRoundTrip(t *testing.T) {
	sm := NewSessionManager("test-secret")
	session := sm.CreateSession("admin")

	recorder := httptest.NewRecorder()
	sm.SetSessionCookie(recorder, session)

	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range recorder.Result().Cookies() {
		req.AddCookie(c)
	}

	got := sm.GetSessionFromRequest(req)
	if got == nil {
		t.Fatal("session not recovered from signed cookie")
	}
	if got.ID != session.ID {
		t.Errorf("session ID = %s, want %s", got.ID, session.ID)
	}
}

func TestSessionManager_TamperedCookieRejected(t *testing.T) {
	sm := NewSessionManager("test-secret")
	session := sm.CreateSession("admin")

	recorder := httptest.NewRecorder()
	sm.SetSessionCookie(recorder, session)
	cookie := recorder.Result().Cookies()[0]

	// Forge a different session ID with the original signature.
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  cookie.Name,
		Value: "forged-id." + cookie.Value[len(session.ID)+1:],
	})

	if got := sm.GetSessionFromRequest(req); got != nil {
		t.Error("tampered cookie must not authenticate")
	}
}

func TestSessionManager_BearerToken(t *testing.T) {
	sm := NewSessionManager("test-secret")
	session := sm.CreateSession("admin")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.ID)

	got := sm.GetSessionFromRequest(req)
	if got == nil || got.ID != session.ID {
		t.Error("bearer token should authenticate")
	}
}

func TestRequireAuth(t *testing.T) {
	sm := NewSessionManager("test-secret")
	session := sm.CreateSession("admin")

	var seen *Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := RequireAuth(sm)(next)

	// Without credentials.
	recorder := httptest.NewRecorder()
	protected.ServeHTTP(recorder, httptest.NewRequest("GET", "/", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", recorder.Code)
	}

	// With a valid bearer token.
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.ID)
	recorder = httptest.NewRecorder()
	protected.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", recorder.Code)
	}
	if seen == nil || seen.ID != session.ID {
		t.Error("handler did not receive the session from context")
	}
}
