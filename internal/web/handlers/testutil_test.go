package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/satriadp/hadirku/internal/config"
	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/engine"
	"github.com/satriadp/hadirku/internal/store"
	"github.com/satriadp/hadirku/internal/store/mock"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Web: config.WebConfig{
			AdminUsername: "admin",
			AdminPassword: "hunter2",
			SessionSecret: "test-secret",
		},
		Recognition: config.RecognitionConfig{
			Dim:                  2,
			RecognitionThreshold: 0.4,
			DedupThreshold:       8.0,
		},
	}
}

// stubExtractor returns a fixed embedding or error without a model server.
type stubExtractor struct {
	emb embedding.Vector
	err error
}

func (s *stubExtractor) ExtractFace(ctx context.Context, imageData []byte) (embedding.Vector, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.emb, nil
}

// newTestLedger wires a ledger and matcher over a mock store.
func newTestLedger(st *mock.Store) *engine.Ledger {
	matcher := engine.NewLinearMatcher(engine.GalleryFunc(st.ListAll), 0.4)
	return engine.NewLedger(st, st, matcher)
}

// seedIdentity enrolls one identity directly into the mock store.
func seedIdentity(st *mock.Store, name, ref string, emb embedding.Vector) store.Identity {
	return st.AddIdentity(store.Identity{
		DisplayName: name,
		ExternalRef: ref,
		Embedding:   emb,
	})
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
