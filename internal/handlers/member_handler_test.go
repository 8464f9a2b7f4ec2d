package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"morak/internal/models"
)

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)

	t.Run("returns the member information", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/member/me", "", true)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
		}

		var info models.MemberInformation
		if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if info != testMember.Information() {
			t.Errorf("body = %+v, want %+v", info, testMember.Information())
		}
	})

	t.Run("rejects a missing token", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/member/me", "", false)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if body := decodeError(t, rec); body.Status != "error" {
			t.Errorf("unexpected body %+v", body)
		}
	})
}
