package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"morak/internal/models"
	"morak/internal/security"
	"morak/internal/service"
)

const validToken = "valid-token"

var testMember = &models.Member{ID: 7, ProviderID: "583231", Email: "octocat@github.com", Nickname: "octocat"}

type fakeAuthenticator struct{}

func (fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.Member, error) {
	if token != validToken {
		return nil, service.ErrUnauthorized
	}
	return testMember, nil
}

type fakeGroups struct {
	groups  []models.Group
	err     error
	calls   []string
	created models.CreateGroupRequest
	kicked  [2]int64
}

func (f *fakeGroups) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeGroups) GetAllGroups(context.Context) ([]models.Group, error) {
	f.record("GetAllGroups")
	return f.groups, f.err
}

func (f *fakeGroups) GetMyGroups(_ context.Context, m *models.Member) ([]models.Group, error) {
	f.record("GetMyGroups")
	return f.groups, f.err
}

func (f *fakeGroups) GetGroupByAccessCode(_ context.Context, code string) (*models.Group, error) {
	f.record("GetGroupByAccessCode:" + code)
	if f.err != nil {
		return nil, f.err
	}
	return &f.groups[0], nil
}

func (f *fakeGroups) GetGroup(context.Context, int64) (*models.Group, error) {
	f.record("GetGroup")
	if f.err != nil {
		return nil, f.err
	}
	return &f.groups[0], nil
}

func (f *fakeGroups) GetAllMembersOfGroup(context.Context, int64) ([]models.MemberInformation, error) {
	f.record("GetAllMembersOfGroup")
	if f.err != nil {
		return nil, f.err
	}
	return []models.MemberInformation{testMember.Information()}, nil
}

func (f *fakeGroups) CreateGroup(_ context.Context, req models.CreateGroupRequest, m *models.Member) (*models.Group, error) {
	f.record("CreateGroup")
	f.created = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Group{ID: 1, Title: req.Title, GroupTypeID: req.GroupTypeID, GroupOwnerID: m.ID, MembersCount: 1, AccessCode: "code"}, nil
}

func (f *fakeGroups) JoinGroup(context.Context, int64, *models.Member) error {
	f.record("JoinGroup")
	return f.err
}

func (f *fakeGroups) JoinGroupByAccessCode(_ context.Context, code string, _ *models.Member) (*models.Group, error) {
	f.record("JoinGroupByAccessCode:" + code)
	if f.err != nil {
		return nil, f.err
	}
	return &f.groups[0], nil
}

func (f *fakeGroups) LeaveGroup(context.Context, int64, *models.Member) error {
	f.record("LeaveGroup")
	return f.err
}

func (f *fakeGroups) KickOutMember(_ context.Context, groupID, memberID int64, _ *models.Member) error {
	f.record("KickOutMember")
	f.kicked = [2]int64{groupID, memberID}
	return f.err
}

type fakeMembers struct{}

func (fakeMembers) GetUserData(ctx context.Context, token string) (*models.MemberInformation, error) {
	m, err := fakeAuthenticator{}.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	info := m.Information()
	return &info, nil
}

type fakeAuth struct {
	pair      *models.TokenPair
	err       error
	profile   service.OAuthProfile
	loggedOut string
	refreshed string
}

func (f *fakeAuth) OAuthLogin(_ context.Context, p service.OAuthProfile) (*models.TokenPair, *models.Member, error) {
	f.profile = p
	return f.pair, testMember, f.err
}

func (f *fakeAuth) Refresh(_ context.Context, token string) (*models.TokenPair, error) {
	f.refreshed = token
	if f.err != nil {
		return nil, f.err
	}
	return f.pair, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.loggedOut = token
	return f.err
}

type fakeMogacos struct {
	month   string
	err     error
	deleted int64
}

func (f *fakeMogacos) ListByMonth(_ context.Context, month string) ([]models.MogacoSummary, error) {
	f.month = month
	if f.err != nil {
		return nil, f.err
	}
	return []models.MogacoSummary{{ID: 1, Title: "weekly", Date: time.Date(2023, 11, 20, 10, 0, 0, 0, time.UTC)}}, nil
}

func (f *fakeMogacos) Get(_ context.Context, id int64) (*models.Mogaco, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Mogaco{ID: id, Title: "weekly"}, nil
}

func (f *fakeMogacos) Create(_ context.Context, req models.CreateMogacoRequest, m *models.Member) (*models.Mogaco, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Mogaco{ID: 3, GroupID: req.GroupID, MemberID: m.ID, Title: req.Title}, nil
}

func (f *fakeMogacos) Delete(_ context.Context, id int64, _ *models.Member) error {
	f.deleted = id
	return f.err
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type testServer struct {
	handler http.Handler
	groups  *fakeGroups
	auth    *fakeAuth
	mogacos *fakeMogacos
	startup *StartupStatus
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		groups:  &fakeGroups{groups: []models.Group{{ID: 1, Title: "algo", GroupTypeID: 1, GroupOwnerID: 7, MembersCount: 3}}},
		auth:    &fakeAuth{pair: &models.TokenPair{AccessToken: "new-access", AccessExpiresAt: time.Now().Add(time.Hour), RefreshToken: "new-refresh", RefreshExpiresAt: time.Now().Add(24 * time.Hour)}},
		mogacos: &fakeMogacos{},
		startup: NewStartupStatus(StepDatabase),
	}
	ts.startup.MarkReady()

	ts.handler = ts.router(security.NewRateLimiter(100), false)
	return ts
}

func (ts *testServer) router(limiter *security.RateLimiter, trustProxy bool) http.Handler {
	logger := zap.NewNop()
	return NewRouter(RouterDeps{
		Groups:         NewGroupsHandler(ts.groups, logger),
		Members:        NewMemberHandler(fakeMembers{}, logger),
		Auth:           NewAuthHandler(ts.auth, nil, "", "http://localhost:5173", logger),
		Mogaco:         NewMogacoHandler(ts.mogacos, logger),
		Health:         NewHealthHandler(fakePinger{}, ts.startup, logger),
		Middleware:     NewMiddleware(fakeAuthenticator{}, logger),
		AuthLimiter:    limiter,
		AllowedOrigins: []string{"http://localhost:5173"},
		TrustProxy:     trustProxy,
		Logger:         logger,
	})
}

// do sends a request through the router. With authed set the request
// carries a valid access token cookie.
func (ts *testServer) do(method, target, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authed {
		req.AddCookie(&http.Cookie{Name: security.AccessTokenCookie, Value: validToken})
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}
