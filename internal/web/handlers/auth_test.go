package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/satriadp/hadirku/internal/web/middleware"
)

func TestAuthHandler_Login_Success(t *testing.T) {
	cfg := testConfig()
	sm := middleware.NewSessionManager("test-secret")
	handler := NewAuthHandler(cfg, sm)

	body := bytes.NewBufferString(`{"username": "admin", "password": "hunter2"}`)
	req := httptest.NewRequest("POST", "/api/v1/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	handler.Login(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var response LoginResponse
	parseJSONResponse(t, recorder, &response)

	if !response.Success {
		t.Error("expected success to be true")
	}
	if response.SessionID == "" {
		t.Error("expected session_id to be set")
	}
	if response.ExpiresAt == "" {
		t.Error("expected expires_at to be set")
	}
	if sm.GetSession(response.SessionID) == nil {
		t.Error("expected session to be stored in the manager")
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrong password", `{"username": "admin", "password": "nope"}`},
		{"wrong username", `{"username": "intruder", "password": "hunter2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			sm := middleware.NewSessionManager("test-secret")
			handler := NewAuthHandler(cfg, sm)

			req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBufferString(tt.body))
			recorder := httptest.NewRecorder()

			handler.Login(recorder, req)

			assertStatusCode(t, recorder, http.StatusUnauthorized)
		})
	}
}

func TestAuthHandler_Login_MissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing username", `{"username": "", "password": "hunter2"}`},
		{"missing password", `{"username": "admin", "password": ""}`},
		{"missing both", `{"username": "", "password": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			sm := middleware.NewSessionManager("test-secret")
			handler := NewAuthHandler(cfg, sm)

			req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBufferString(tt.body))
			recorder := httptest.NewRecorder()

			handler.Login(recorder, req)

			assertStatusCode(t, recorder, http.StatusBadRequest)
			assertJSONError(t, recorder, "username and password are required")
		})
	}
}

func TestAuthHandler_Login_DisabledWithoutPassword(t *testing.T) {
	cfg := testConfig()
	cfg.Web.AdminPassword = ""
	sm := middleware.NewSessionManager("test-secret")
	handler := NewAuthHandler(cfg, sm)

	body := bytes.NewBufferString(`{"username": "admin", "password": ""}`)
	req := httptest.NewRequest("POST", "/api/v1/auth/login", body)
	recorder := httptest.NewRecorder()

	handler.Login(recorder, req)

	if recorder.Code == http.StatusOK {
		t.Error("login must be disabled when no admin password is configured")
	}
}

func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	cfg := testConfig()
	sm := middleware.NewSessionManager("test-secret")
	handler := NewAuthHandler(cfg, sm)

	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewBufferString(`{invalid json}`))
	recorder := httptest.NewRecorder()

	handler.Login(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "invalid request body")
}

func TestAuthHandler_LogoutAndStatus(t *testing.T) {
	cfg := testConfig()
	sm := middleware.NewSessionManager("test-secret")
	handler := NewAuthHandler(cfg, sm)

	session := sm.CreateSession("admin")

	// Status with a valid bearer token.
	req := httptest.NewRequest("GET", "/api/v1/auth/status", nil)
	req.Header.Set("Authorization", "Bearer "+session.ID)
	recorder := httptest.NewRecorder()
	handler.Status(recorder, req)

	var status StatusResponse
	parseJSONResponse(t, recorder, &status)
	if !status.Authenticated {
		t.Error("expected authenticated status")
	}
	if status.Username != "admin" {
		t.Errorf("username = %q; want admin", status.Username)
	}

	// Logout invalidates the session.
	req = httptest.NewRequest("POST", "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+session.ID)
	recorder = httptest.NewRecorder()
	handler.Logout(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	if sm.GetSession(session.ID) != nil {
		t.Error("session should be deleted after logout")
	}

	// Status is now unauthenticated.
	req = httptest.NewRequest("GET", "/api/v1/auth/status", nil)
	req.Header.Set("Authorization", "Bearer "+session.ID)
	recorder = httptest.NewRecorder()
	handler.Status(recorder, req)

	parseJSONResponse(t, recorder, &status)
	if status.Authenticated {
		t.Error("expected unauthenticated status after logout")
	}
}
