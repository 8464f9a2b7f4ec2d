package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"morak/internal/models"
	"morak/internal/service"
)

func TestGroupsRoutes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		authed     bool
		serviceErr error
		wantStatus int
		wantCall   string
	}{
		{name: "list groups", method: http.MethodGet, target: "/api/groups", wantStatus: http.StatusOK, wantCall: "GetAllGroups"},
		{name: "get group", method: http.MethodGet, target: "/api/groups/1", wantStatus: http.StatusOK, wantCall: "GetGroup"},
		{name: "get missing group", method: http.MethodGet, target: "/api/groups/9", serviceErr: service.ErrGroupNotFound, wantStatus: http.StatusNotFound, wantCall: "GetGroup"},
		{name: "non numeric id", method: http.MethodGet, target: "/api/groups/abc", wantStatus: http.StatusBadRequest},
		{name: "group members", method: http.MethodGet, target: "/api/groups/1/members", wantStatus: http.StatusOK, wantCall: "GetAllMembersOfGroup"},
		{name: "my groups needs auth", method: http.MethodGet, target: "/api/groups/my-groups", wantStatus: http.StatusUnauthorized},
		{name: "my groups", method: http.MethodGet, target: "/api/groups/my-groups", authed: true, wantStatus: http.StatusOK, wantCall: "GetMyGroups"},
		{name: "by access code", method: http.MethodGet, target: "/api/groups/access-code/abc-123", authed: true, wantStatus: http.StatusOK, wantCall: "GetGroupByAccessCode:abc-123"},
		{name: "unknown access code", method: http.MethodGet, target: "/api/groups/access-code/nope", authed: true, serviceErr: service.ErrAccessCodeNotFound, wantStatus: http.StatusNotFound, wantCall: "GetGroupByAccessCode:nope"},
		{name: "create", method: http.MethodPost, target: "/api/groups", body: `{"title":"algo","groupTypeId":2}`, authed: true, wantStatus: http.StatusCreated, wantCall: "CreateGroup"},
		{name: "create bad json", method: http.MethodPost, target: "/api/groups", body: `{"title":`, authed: true, wantStatus: http.StatusBadRequest},
		{name: "create needs auth", method: http.MethodPost, target: "/api/groups", body: `{"title":"algo","groupTypeId":2}`, wantStatus: http.StatusUnauthorized},
		{name: "join", method: http.MethodPost, target: "/api/groups/1/join", authed: true, wantStatus: http.StatusNoContent, wantCall: "JoinGroup"},
		{name: "join twice", method: http.MethodPost, target: "/api/groups/1/join", authed: true, serviceErr: service.ErrAlreadyMember, wantStatus: http.StatusForbidden, wantCall: "JoinGroup"},
		{name: "join by code", method: http.MethodPost, target: "/api/groups/access-code/abc-123/join", authed: true, wantStatus: http.StatusNoContent, wantCall: "JoinGroupByAccessCode:abc-123"},
		{name: "leave", method: http.MethodDelete, target: "/api/groups/1/leave", authed: true, wantStatus: http.StatusNoContent, wantCall: "LeaveGroup"},
		{name: "leave when not member", method: http.MethodDelete, target: "/api/groups/1/leave", authed: true, serviceErr: service.ErrNotGroupMember, wantStatus: http.StatusNotFound, wantCall: "LeaveGroup"},
		{name: "kick", method: http.MethodDelete, target: "/api/groups/1/kick/8", authed: true, wantStatus: http.StatusNoContent, wantCall: "KickOutMember"},
		{name: "kick as non owner", method: http.MethodDelete, target: "/api/groups/1/kick/8", authed: true, serviceErr: service.ErrNotGroupOwner, wantStatus: http.StatusForbidden, wantCall: "KickOutMember"},
		{name: "kick bad member id", method: http.MethodDelete, target: "/api/groups/1/kick/x", authed: true, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.groups.err = tt.serviceErr

			rec := ts.do(tt.method, tt.target, tt.body, tt.authed)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCall == "" {
				if len(ts.groups.calls) != 0 {
					t.Errorf("service should not be called, got %v", ts.groups.calls)
				}
				return
			}
			if len(ts.groups.calls) != 1 || ts.groups.calls[0] != tt.wantCall {
				t.Errorf("calls = %v, want [%s]", ts.groups.calls, tt.wantCall)
			}
		})
	}
}

func TestCreateGroupResponse(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/groups", `{"title":"algo","groupTypeId":2}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if ts.groups.created != (models.CreateGroupRequest{Title: "algo", GroupTypeID: 2}) {
		t.Errorf("request passed to service = %+v", ts.groups.created)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"id", "title", "groupTypeId", "groupOwnerId", "membersCount", "accessCode"} {
		if _, ok := body[key]; !ok {
			t.Errorf("response is missing %q: %v", key, body)
		}
	}
	if body["groupOwnerId"] != float64(testMember.ID) {
		t.Errorf("groupOwnerId = %v, want %d", body["groupOwnerId"], testMember.ID)
	}
}

func TestKickPassesPathIDs(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodDelete, "/api/groups/4/kick/11", "", true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if ts.groups.kicked != [2]int64{4, 11} {
		t.Errorf("kicked = %v, want [4 11]", ts.groups.kicked)
	}
}

func TestListGroupsJSON(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/groups", "", false)
	var groups []models.Group
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(groups) != 1 || groups[0].MembersCount != 3 {
		t.Errorf("groups = %+v", groups)
	}
}
