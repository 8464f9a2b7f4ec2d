package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"morak/internal/models"
)

// MogacoHandler serves the /api/mogaco routes
type MogacoHandler struct {
	mogacos MogacoService
	logger  *zap.Logger
}

// NewMogacoHandler creates a new mogaco handler
func NewMogacoHandler(mogacos MogacoService, logger *zap.Logger) *MogacoHandler {
	return &MogacoHandler{mogacos: mogacos, logger: logger}
}

// ListByMonth lists the mogacos of ?date=YYYY-MM for the calendar
func (h *MogacoHandler) ListByMonth(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.mogacos.ListByMonth(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Get returns a single mogaco
func (h *MogacoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidID, "", nil)
		return
	}

	mogaco, err := h.mogacos.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mogaco)
}

// Create posts a mogaco as the caller
func (h *MogacoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMogacoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	mogaco, err := h.mogacos.Create(r.Context(), req, GetMemberFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, mogaco)
}

// Delete removes one of the caller's mogacos
func (h *MogacoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidID, "", nil)
		return
	}

	if err := h.mogacos.Delete(r.Context(), id, GetMemberFromContext(r.Context())); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
