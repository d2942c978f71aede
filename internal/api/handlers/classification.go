package handlers

import (
	"net/http"

	"github.com/nattapongd/Fund-Compare-Backend/internal/service"
)

// ClassificationHandler handles HTTP requests for the peer classification
// batch pass.
type ClassificationHandler struct {
	classificationService *service.ClassificationService
}

// NewClassificationHandler creates a new ClassificationHandler.
func NewClassificationHandler(classificationService *service.ClassificationService) *ClassificationHandler {
	return &ClassificationHandler{
		classificationService: classificationService,
	}
}

// Run handles POST requests to reclassify all active funds.
//
// Endpoint: POST /api/peer-classification/run
// Response: 200 OK with a classification summary
// Error: 500 Internal Server Error if the pass could not run
func (h *ClassificationHandler) Run(w http.ResponseWriter, r *http.Request) {
	summary, err := h.classificationService.ClassifyAllFunds(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to run peer classification", err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
