package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/satriadp/hadirku/internal/capture"
	"github.com/satriadp/hadirku/internal/engine"
	"github.com/satriadp/hadirku/internal/store"
)

// AttendanceHandler handles attendance recording and listing.
type AttendanceHandler struct {
	ledger    *engine.Ledger
	events    store.EventReader
	extractor FaceExtractor
}

// NewAttendanceHandler creates a new attendance handler. extractor may be
// nil when only direct mode is served.
func NewAttendanceHandler(ledger *engine.Ledger, events store.EventReader, extractor FaceExtractor) *AttendanceHandler {
	return &AttendanceHandler{
		ledger:    ledger,
		events:    events,
		extractor: extractor,
	}
}

// attendanceRequest carries either a known identity ID (direct mode) or a
// camera frame as a base64 data URL (recognition mode).
type attendanceRequest struct {
	IdentityID int64  `json:"identity_id,omitempty"`
	Image      string `json:"image,omitempty"`
}

// identityView is the identity shape returned by the API. Embeddings stay
// server-side.
type identityView struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	ExternalRef string `json:"external_ref,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	Corrupt     bool   `json:"corrupt,omitempty"`
}

func toIdentityView(ident *store.Identity) identityView {
	return identityView{
		ID:          ident.ID,
		DisplayName: ident.DisplayName,
		ExternalRef: ident.ExternalRef,
		CreatedAt:   ident.CreatedAt.Format(time.RFC3339),
		Corrupt:     ident.Corrupt,
	}
}

// attendanceResponse is returned for both modes. Recognized is false only
// for an unrecognized recognition attempt.
type attendanceResponse struct {
	Recognized bool          `json:"recognized"`
	Message    string        `json:"message,omitempty"`
	Identity   *identityView `json:"identity,omitempty"`
	Distance   float64       `json:"distance,omitempty"`
	EventID    int64         `json:"event_id,omitempty"`
	Timestamp  string        `json:"timestamp,omitempty"`
}

// Record handles POST /attendance in both direct and recognition mode.
func (h *AttendanceHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	switch {
	case req.IdentityID > 0:
		h.recordDirect(w, r, req.IdentityID)
	case req.Image != "":
		h.recordRecognition(w, r, req.Image)
	default:
		respondError(w, http.StatusBadRequest, "identity_id or image is required")
	}
}

func (h *AttendanceHandler) recordDirect(w http.ResponseWriter, r *http.Request, identityID int64) {
	event, identity, err := h.ledger.Record(r.Context(), identityID)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownIdentity) {
			respondError(w, http.StatusNotFound, "unknown identity")
			return
		}
		log.Printf("attendance: direct record failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to record attendance")
		return
	}

	view := toIdentityView(identity)
	respondJSON(w, http.StatusOK, attendanceResponse{
		Recognized: true,
		Identity:   &view,
		EventID:    event.ID,
		Timestamp:  event.Timestamp.Format(time.RFC3339),
	})
}

func (h *AttendanceHandler) recordRecognition(w http.ResponseWriter, r *http.Request, image string) {
	if h.extractor == nil {
		respondError(w, http.StatusServiceUnavailable, "recognition is not configured")
		return
	}

	frame, err := capture.DecodeDataURL(image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid image data")
		return
	}
	// Shrink oversized camera frames; pass the original through when the
	// bytes are not decodable locally and let the extractor decide.
	if prepared, err := capture.PrepareFrame(frame); err == nil {
		frame = prepared
	}

	probe, err := h.extractor.ExtractFace(r.Context(), frame)
	if err != nil {
		switch {
		case errors.Is(err, capture.ErrNoFace):
			respondError(w, http.StatusUnprocessableEntity, "no face detected")
		case errors.Is(err, capture.ErrExtractionTimeout):
			respondError(w, http.StatusGatewayTimeout, "embedding extraction timed out")
		default:
			log.Printf("attendance: extraction failed: %v", err)
			respondError(w, http.StatusBadGateway, "embedding extraction failed")
		}
		return
	}

	result, err := h.ledger.Recognize(r.Context(), probe)
	if err != nil {
		log.Printf("attendance: recognition failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to record attendance")
		return
	}

	if !result.Recognized {
		respondJSON(w, http.StatusOK, attendanceResponse{
			Recognized: false,
			Message:    "face not recognized",
		})
		return
	}

	view := toIdentityView(&result.Identity)
	respondJSON(w, http.StatusOK, attendanceResponse{
		Recognized: true,
		Identity:   &view,
		Distance:   result.Distance,
		EventID:    result.Event.ID,
		Timestamp:  result.Event.Timestamp.Format(time.RFC3339),
	})
}

// recordView is one row in the attendance listing.
type recordView struct {
	EventID     int64  `json:"event_id"`
	IdentityID  int64  `json:"identity_id"`
	DisplayName string `json:"display_name"`
	ExternalRef string `json:"external_ref,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// List handles GET /attendance, newest first.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.events.ListRecords(r.Context())
	if err != nil {
		log.Printf("attendance: list failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load attendance records")
		return
	}

	views := make([]recordView, 0, len(records))
	for _, rec := range records {
		views = append(views, recordView{
			EventID:     rec.EventID,
			IdentityID:  rec.IdentityID,
			DisplayName: rec.DisplayName,
			ExternalRef: rec.ExternalRef,
			Timestamp:   rec.Timestamp.Format(time.RFC3339),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count":   len(views),
		"records": views,
	})
}
