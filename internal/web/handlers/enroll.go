package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/satriadp/hadirku/internal/capture"
	"github.com/satriadp/hadirku/internal/embedding"
	"github.com/satriadp/hadirku/internal/engine"
	"github.com/satriadp/hadirku/internal/names"
)

// maxEnrollUpload bounds the multipart form size for enrollment photos.
const maxEnrollUpload = 20 << 20 // 20 MB

// EnrollHandler handles identity enrollment.
type EnrollHandler struct {
	service   *engine.EnrollmentService
	extractor FaceExtractor
}

// NewEnrollHandler creates a new enrollment handler.
func NewEnrollHandler(service *engine.EnrollmentService, extractor FaceExtractor) *EnrollHandler {
	return &EnrollHandler{
		service:   service,
		extractor: extractor,
	}
}

// Enroll handles POST /enroll. The request is a multipart form with a name,
// an optional external_ref, and the face image either as a "file" part or as
// an "image" field holding a base64 data URL from a camera capture.
func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxEnrollUpload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	name := names.Clean(r.FormValue("name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	externalRef := names.Clean(r.FormValue("external_ref"))

	frame, err := h.readImage(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if prepared, err := capture.PrepareFrame(frame); err == nil {
		frame = prepared
	}

	emb, err := h.extractor.ExtractFace(r.Context(), frame)
	if err != nil {
		switch {
		case errors.Is(err, capture.ErrNoFace):
			respondError(w, http.StatusUnprocessableEntity, "no face detected")
		case errors.Is(err, capture.ErrExtractionTimeout):
			respondError(w, http.StatusGatewayTimeout, "embedding extraction timed out")
		default:
			log.Printf("enroll: extraction failed for %s: %v", sanitizeForLog(name), err)
			respondError(w, http.StatusBadGateway, "embedding extraction failed")
		}
		return
	}

	identity, err := h.service.Enroll(r.Context(), name, externalRef, emb)
	if err != nil {
		var dup *engine.DuplicateError
		if errors.As(err, &dup) {
			respondJSON(w, http.StatusConflict, map[string]any{
				"error":    "face already enrolled",
				"existing": identityView{ID: dup.ExistingID, DisplayName: dup.ExistingName, ExternalRef: dup.ExistingRef},
				"distance": dup.Distance,
			})
			return
		}
		if errors.Is(err, embedding.ErrDimensionMismatch) {
			respondError(w, http.StatusUnprocessableEntity, "embedding dimension mismatch")
			return
		}
		log.Printf("enroll: failed for %s: %v", sanitizeForLog(name), err)
		respondError(w, http.StatusInternalServerError, "failed to enroll identity")
		return
	}

	log.Printf("enroll: registered %s as identity %d", sanitizeForLog(name), identity.ID)
	respondJSON(w, http.StatusCreated, toIdentityView(identity))
}

// readImage pulls the face image out of the form, preferring the file part.
func (h *EnrollHandler) readImage(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxEnrollUpload))
		if err != nil {
			return nil, errors.New("failed to read uploaded file")
		}
		if len(data) == 0 {
			return nil, errors.New("uploaded file is empty")
		}
		return data, nil
	}

	if img := r.FormValue("image"); img != "" {
		data, err := capture.DecodeDataURL(img)
		if err != nil {
			return nil, errors.New("invalid image data")
		}
		return data, nil
	}

	return nil, errors.New("file or image is required")
}
