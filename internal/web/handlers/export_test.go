package handlers

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/store/mock"
)

func TestExportHandler_CSV(t *testing.T) {
	st := mock.New()
	ident := seedIdentity(st, "Budi Santoso", "2110501001", embedding.Vector{1, 0})
	ts := time.Date(2026, 3, 10, 8, 15, 0, 0, time.UTC)
	if _, err := st.Append(t.Context(), ident.ID, ts); err != nil {
		t.Fatalf("append event: %v", err)
	}

	handler := NewExportHandler(st)
	req := httptest.NewRequest("GET", "/api/v1/export/csv", nil)
	recorder := httptest.NewRecorder()

	handler.CSV(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if ct := recorder.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := recorder.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q; want attachment", cd)
	}

	rows, err := csv.NewReader(recorder.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows; want header + 1 record", len(rows))
	}
	if rows[1][1] != "Budi Santoso" {
		t.Errorf("name column = %q", rows[1][1])
	}
}
