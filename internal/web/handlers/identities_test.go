package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/store"
	"github.com/satriadp/hadirku/internal/store/mock"
)

func TestIdentitiesHandler_List(t *testing.T) {
	st := mock.New()
	seedIdentity(st, "Budi Santoso", "2110501001", embedding.Vector{1, 0})
	st.AddIdentity(store.Identity{DisplayName: "Broken Row", Corrupt: true})
	handler := NewIdentitiesHandler(st)

	req := httptest.NewRequest("GET", "/api/v1/identities", nil)
	recorder := httptest.NewRecorder()

	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp struct {
		Count      int            `json:"count"`
		Corrupt    int            `json:"corrupt"`
		Identities []identityView `json:"identities"`
	}
	parseJSONResponse(t, recorder, &resp)

	if resp.Count != 2 {
		t.Errorf("count = %d; want 2", resp.Count)
	}
	if resp.Corrupt != 1 {
		t.Errorf("corrupt = %d; want 1", resp.Corrupt)
	}
	// Embeddings must never leak through the API.
	if body := recorder.Body.String(); strings.Contains(strings.ToLower(body), "embedding") {
		t.Errorf("response leaks embeddings: %s", body)
	}
}

func TestIdentitiesHandler_StoreError(t *testing.T) {
	st := mock.New()
	st.ListError = errors.New("disk on fire")
	handler := NewIdentitiesHandler(st)

	req := httptest.NewRequest("GET", "/api/v1/identities", nil)
	recorder := httptest.NewRecorder()

	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
}
