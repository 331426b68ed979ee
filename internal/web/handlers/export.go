package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/satriadp/hadirku/internal/export"
	"github.com/satriadp/hadirku/internal/store"
)

// ExportHandler serves attendance exports.
type ExportHandler struct {
	events store.EventReader
}

// NewExportHandler creates a new export handler.
func NewExportHandler(events store.EventReader) *ExportHandler {
	return &ExportHandler{events: events}
}

// CSV handles GET /export/csv and streams the full attendance log as a CSV
// attachment.
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("attendance-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.ExportCSV(r.Context(), h.events, w); err != nil {
		// Headers may already be out; log and abort the stream.
		log.Printf("export: csv failed: %v", err)
	}
}
