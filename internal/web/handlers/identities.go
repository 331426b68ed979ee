package handlers

import (
	"log"
	"net/http"

	"github.com/satriadp/hadirku/internal/store"
)

// IdentitiesHandler serves the enrolled identity listing.
type IdentitiesHandler struct {
	identities store.IdentityReader
}

// NewIdentitiesHandler creates a new identities handler.
func NewIdentitiesHandler(identities store.IdentityReader) *IdentitiesHandler {
	return &IdentitiesHandler{identities: identities}
}

// List handles GET /identities. Embeddings are never returned; rows whose
// stored embedding failed to decode are flagged so operators can re-enroll.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	identities, err := h.identities.ListAll(r.Context())
	if err != nil {
		log.Printf("identities: list failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load identities")
		return
	}

	views := make([]identityView, 0, len(identities))
	corrupt := 0
	for i := range identities {
		if identities[i].Corrupt {
			corrupt++
		}
		views = append(views, toIdentityView(&identities[i]))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":      len(views),
		"corrupt":    corrupt,
		"identities": views,
	})
}
