package authService

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/config"
	"github.com/KotFed0t/vc_portfolio_dashboard/data/repository"
	"github.com/KotFed0t/vc_portfolio_dashboard/data/session"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/externalApi"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model/supabaseModel"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockApi struct {
	mock.Mock
}

func (m *mockApi) SignUp(ctx context.Context, req supabaseModel.SignUpRequest) (supabaseModel.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(supabaseModel.User), args.Error(1)
}

func (m *mockApi) SignInWithPassword(ctx context.Context, creds supabaseModel.Credentials) (supabaseModel.AuthSession, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(supabaseModel.AuthSession), args.Error(1)
}

func (m *mockApi) SignOut(ctx context.Context, accessToken string) error {
	return m.Called(ctx, accessToken).Error(0)
}

func (m *mockApi) GetUser(ctx context.Context, accessToken string) (supabaseModel.User, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(supabaseModel.User), args.Error(1)
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func (m *memSessions) SetSession(_ context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memSessions) GetSession(_ context.Context, id string) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return model.Session{}, session.ErrNotFound
	}
	return s, nil
}

func (m *memSessions) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return session.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

type fakeRepo struct {
	profiles map[uuid.UUID]model.Profile
	funds    map[uuid.UUID]int
}

func (r *fakeRepo) UpsertProfile(_ context.Context, p model.Profile) (model.Profile, error) {
	if existing, ok := r.profiles[p.ID]; ok {
		existing.Email = p.Email
		r.profiles[p.ID] = existing
		return existing, nil
	}
	r.profiles[p.ID] = p
	return p, nil
}

func (r *fakeRepo) GetProfile(_ context.Context, userID uuid.UUID) (model.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return model.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) CountUserFunds(_ context.Context, userID uuid.UUID) (int, error) {
	return r.funds[userID], nil
}

func newTestService(t *testing.T) (*AuthService, *mockApi, *memSessions, *fakeRepo) {
	t.Helper()
	api := &mockApi{}
	sessions := &memSessions{sessions: map[string]model.Session{}}
	repo := &fakeRepo{profiles: map[uuid.UUID]model.Profile{}, funds: map[uuid.UUID]int{}}
	cfg := &config.Config{Session: config.Session{JWTSecret: "secret", TTL: time.Hour}}
	return New(cfg, api, sessions, repo), api, sessions, repo
}

func TestSignInLifecycle(t *testing.T) {
	srv, api, sessions, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	creds := supabaseModel.Credentials{Email: "ada@fund.vc", Password: "secret1"}
	api.On("SignInWithPassword", mock.Anything, creds).Return(supabaseModel.AuthSession{
		AccessToken: "access",
		User:        supabaseModel.User{ID: userID, Email: "ada@fund.vc"},
	}, nil)
	api.On("SignOut", mock.Anything, "access").Return(nil)

	var events []model.AuthEvent
	unsubscribe := srv.OnAuthStateChange(func(_ context.Context, event model.AuthEvent, _ model.Session) {
		events = append(events, event)
	})

	token, sess, err := srv.SignIn(ctx, creds.Email, creds.Password)
	require.NoError(t, err)
	require.Equal(t, model.RoleStaff, repo.profiles[userID].Role)
	require.Contains(t, sessions.sessions, sess.ID)

	got, err := srv.Authenticate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, userID, got.UserID)

	require.NoError(t, srv.SignOut(ctx, got))
	require.Equal(t, []model.AuthEvent{model.SignedIn, model.SignedOut}, events)

	_, err = srv.Authenticate(ctx, token)
	require.ErrorIs(t, err, service.ErrUnauthorized)

	unsubscribe()
	_, _, err = srv.SignIn(ctx, creds.Email, creds.Password)
	require.NoError(t, err)
	require.Len(t, events, 2)

	api.AssertExpectations(t)
}

func TestSignIn_Errors(t *testing.T) {
	srv, api, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := srv.SignIn(ctx, "not-an-email", "1")
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "email")
	require.Contains(t, verr.Fields, "password")

	api.On("SignInWithPassword", mock.Anything, mock.Anything).
		Return(supabaseModel.AuthSession{}, fmt.Errorf("%w: Invalid login credentials", externalApi.ErrBadRequest)).Once()
	_, _, err = srv.SignIn(ctx, "ada@fund.vc", "wrong-password")
	require.ErrorIs(t, err, service.ErrUnauthorized)

	api.On("SignInWithPassword", mock.Anything, mock.Anything).
		Return(supabaseModel.AuthSession{}, errors.New("connection refused")).Once()
	_, _, err = srv.SignIn(ctx, "ada@fund.vc", "secret1")
	require.ErrorIs(t, err, service.ErrUnavailable)
}

func TestSignOut_AuthServerDown(t *testing.T) {
	srv, api, sessions, _ := newTestService(t)
	sess := model.Session{ID: "s1", AccessToken: "access"}
	sessions.sessions[sess.ID] = sess
	api.On("SignOut", mock.Anything, "access").Return(errors.New("timeout"))

	require.NoError(t, srv.SignOut(context.Background(), sess))
	require.Empty(t, sessions.sessions)
}

func TestRoute(t *testing.T) {
	srv, _, _, repo := newTestService(t)
	ctx := context.Background()

	route, err := srv.Route(ctx)
	require.NoError(t, err)
	require.Equal(t, model.RouteLanding, route)

	userID := uuid.New()
	ctx = utils.WithSession(ctx, model.Session{ID: "s1", UserID: userID})
	route, err = srv.Route(ctx)
	require.NoError(t, err)
	require.Equal(t, model.RouteOnboarding, route)

	repo.funds[userID] = 1
	route, err = srv.Route(ctx)
	require.NoError(t, err)
	require.Equal(t, model.RouteDashboard, route)
}

func TestMe(t *testing.T) {
	srv, api, _, repo := newTestService(t)
	userID := uuid.New()

	_, err := srv.Me(context.Background())
	require.ErrorIs(t, err, service.ErrUnauthorized)

	ctx := utils.WithSession(context.Background(), model.Session{ID: "s1", UserID: userID, AccessToken: "access"})
	api.On("GetUser", mock.Anything, "access").Return(supabaseModel.User{
		ID:           userID,
		Email:        "ada@fund.vc",
		UserMetadata: map[string]any{"full_name": "Ada"},
	}, nil).Twice()

	profile, err := srv.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, model.RoleStaff, profile.Role)
	require.NotNil(t, profile.FullName)
	require.Equal(t, "Ada", *profile.FullName)
	require.Contains(t, repo.profiles, userID)

	repo.profiles[userID] = model.Profile{ID: userID, Email: "ada@fund.vc", Role: model.RoleVC}
	profile, err = srv.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, model.RoleVC, profile.Role)

	api.On("GetUser", mock.Anything, "access").
		Return(supabaseModel.User{}, fmt.Errorf("%w: token expired", externalApi.ErrUnauthorized)).Once()
	_, err = srv.Me(ctx)
	require.ErrorIs(t, err, service.ErrUnauthorized)

	api.AssertExpectations(t)
}
