package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"morak/internal/service"
	"morak/internal/validation"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode JSON response", http.StatusInternalServerError)
	}
}

// respondWithError writes a JSON error body. err, when set, is logged with logMsg.
func respondWithError(w http.ResponseWriter, logger *zap.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		logger.Error(logMsg, zap.Int("status", status), zap.Error(err))
	}

	writeJSON(w, status, errorResponse{Status: "error", Message: userMsg})
}

var serviceErrors = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrUnauthorized, http.StatusUnauthorized, ErrUnauthorized},
	{service.ErrAccessCodeNotFound, http.StatusNotFound, "Group not found for the provided access code"},
	{service.ErrGroupNotFound, http.StatusNotFound, "Group not found"},
	{service.ErrNotGroupMember, http.StatusNotFound, "Member is not in this group"},
	{service.ErrMogacoNotFound, http.StatusNotFound, "Mogaco not found"},
	{service.ErrAlreadyMember, http.StatusForbidden, "Member already belongs to this group"},
	{service.ErrNotGroupOwner, http.StatusForbidden, "Only the group owner can do this"},
	{service.ErrCannotKickOwner, http.StatusForbidden, "The group owner cannot be kicked"},
	{service.ErrMogacoForbidden, http.StatusForbidden, "Only group members can post a mogaco"},
	{service.ErrNotMogacoAuthor, http.StatusForbidden, "Only the author can delete this mogaco"},
}

// respondWithServiceError maps a service error to its HTTP status
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr validation.ValidationError
	if errors.As(err, &verr) {
		respondWithError(w, logger, http.StatusBadRequest, verr.Error(), "", nil)
		return
	}

	for _, e := range serviceErrors {
		if errors.Is(err, e.err) {
			respondWithError(w, logger, e.status, e.message, "", nil)
			return
		}
	}

	respondWithError(w, logger, http.StatusInternalServerError, ErrInternalServerError, "request failed", err)
}

// decodeJSON reads a size-limited JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
