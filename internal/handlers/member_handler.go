package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// MemberHandler serves /api/member
type MemberHandler struct {
	members MemberService
	logger  *zap.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(members MemberService, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{members: members, logger: logger}
}

// GetMe returns the member behind the request's access token
func (h *MemberHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	info, err := h.members.GetUserData(r.Context(), accessTokenFromRequest(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
