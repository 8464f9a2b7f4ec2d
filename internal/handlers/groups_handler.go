package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"morak/internal/models"
)

// GroupsHandler serves the /api/groups routes
type GroupsHandler struct {
	groups GroupsService
	logger *zap.Logger
}

// NewGroupsHandler creates a new groups handler
func NewGroupsHandler(groups GroupsService, logger *zap.Logger) *GroupsHandler {
	return &GroupsHandler{groups: groups, logger: logger}
}

// GetAllGroups lists every group
func (h *GroupsHandler) GetAllGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.GetAllGroups(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// GetMyGroups lists the caller's groups with their access codes
func (h *GroupsHandler) GetMyGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.GetMyGroups(r.Context(), GetMemberFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// GetGroupByAccessCode resolves an access code
func (h *GroupsHandler) GetGroupByAccessCode(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.GetGroupByAccessCode(r.Context(), chi.URLParam(r, "accessCode"))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// GetGroup returns a single group
func (h *GroupsHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidID, "", nil)
		return
	}

	group, err := h.groups.GetGroup(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// GetAllMembersOfGroup lists a group's members
func (h *GroupsHandler) GetAllMembersOfGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidID, "", nil)
		return
	}

	members, err := h.groups.GetAllMembersOfGroup(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// CreateGroup creates a group owned by the caller
func (h *GroupsHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), req, GetMemberFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// JoinGroup adds the caller to a group
func (h *GroupsHandler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidID, "", nil)
		return
	}

	if err := h.groups.JoinGroup(r.Context(), id, GetMemberFromContext(r.Context())); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// JoinGroupByAccessCode adds the caller to the group behind an access code
func (h *GroupsHandler) JoinGroupByAccessCode(w http.ResponseWriter, r *http.Request) {
	_, err := h.groups.JoinGroupByAccessCode(r.Context(), chi.URLParam(r, "accessCode"), GetMemberFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LeaveGroup removes the caller from a group
func (h *GroupsHandler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidID, "", nil)
		return
	}

	if err := h.groups.LeaveGroup(r.Context(), id, GetMemberFromContext(r.Context())); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// KickOutMember lets the owner remove another member
func (h *GroupsHandler) KickOutMember(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidID, "", nil)
		return
	}
	memberID, ok := pathID(r, "memberId")
	if !ok {
		respondWithError(w, h.logger, http.StatusBadRequest, ErrInvalidID, "", nil)
		return
	}

	if err := h.groups.KickOutMember(r.Context(), groupID, memberID, GetMemberFromContext(r.Context())); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
