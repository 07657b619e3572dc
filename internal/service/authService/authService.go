package authService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sync"
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
)

const minPasswordLength = 6

type AuthApi interface {
	SignUp(ctx context.Context, req supabaseModel.SignUpRequest) (supabaseModel.User, error)
	SignInWithPassword(ctx context.Context, creds supabaseModel.Credentials) (supabaseModel.AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (supabaseModel.User, error)
}

type SessionStore interface {
	SetSession(ctx context.Context, session model.Session) error
	GetSession(ctx context.Context, sessionID string) (model.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type Repository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	UpsertProfile(ctx context.Context, profile model.Profile) (model.Profile, error)
	CountUserFunds(ctx context.Context, userID uuid.UUID) (int, error)
}

// Listener is notified after a session is created or torn down.
type Listener func(ctx context.Context, event model.AuthEvent, session model.Session)

type AuthService struct {
	api      AuthApi
	sessions SessionStore
	repo     Repository
	tokens   JWT
	now      func() time.Time

	mu        sync.RWMutex
	listeners []registeredListener
	nextID    int
}

type registeredListener struct {
	id int
	fn Listener
}

func New(cfg *config.Config, api AuthApi, sessions SessionStore, repo Repository) *AuthService {
	return &AuthService{
		api:      api,
		sessions: sessions,
		repo:     repo,
		tokens:   JWT{Secret: []byte(cfg.Session.JWTSecret), TokenTTL: cfg.Session.TTL},
		now:      time.Now,
	}
}

// OnAuthStateChange registers fn and returns a function that removes it.
func (s *AuthService) OnAuthStateChange(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, registeredListener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *AuthService) emit(ctx context.Context, event model.AuthEvent, sess model.Session) {
	s.mu.RLock()
	listeners := make([]registeredListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l.fn(ctx, event, sess)
	}
}

func validateCredentials(email, password string) error {
	verr := &service.ValidationError{}
	if _, err := mail.ParseAddress(email); err != nil {
		verr.Add("email", "invalid email address")
	}
	if len(password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	return verr.Err()
}

func mapApiErr(err error) error {
	switch {
	case errors.Is(err, externalApi.ErrBadRequest), errors.Is(err, externalApi.ErrUnauthorized):
		return fmt.Errorf("%w: %s", service.ErrUnauthorized, err.Error())
	default:
		return fmt.Errorf("%w: %s", service.ErrUnavailable, err.Error())
	}
}

func (s *AuthService) SignUp(ctx context.Context, email, password, fullName string) (user supabaseModel.User, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AuthService.SignUp"

	slog.Debug("SignUp start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		if err != nil {
			slog.Error("SignUp failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("SignUp completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	if err = validateCredentials(email, password); err != nil {
		return supabaseModel.User{}, err
	}

	req := supabaseModel.SignUpRequest{Email: email, Password: password}
	if fullName != "" {
		req.Data = map[string]any{"full_name": fullName}
	}

	user, err = s.api.SignUp(ctx, req)
	if err != nil {
		if errors.Is(err, externalApi.ErrBadRequest) {
			verr := &service.ValidationError{}
			verr.Add("email", err.Error())
			return supabaseModel.User{}, verr
		}
		return supabaseModel.User{}, mapApiErr(err)
	}

	return user, nil
}

// SignIn authenticates against the auth server, makes sure a profile exists and opens a session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (token string, sess model.Session, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AuthService.SignIn"

	slog.Debug("SignIn start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		if err != nil {
			slog.Warn("SignIn failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("SignIn completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("sessionID", sess.ID))
		}
	}()

	if err = validateCredentials(email, password); err != nil {
		return "", model.Session{}, err
	}

	authSession, err := s.api.SignInWithPassword(ctx, supabaseModel.Credentials{Email: email, Password: password})
	if err != nil {
		return "", model.Session{}, mapApiErr(err)
	}

	_, err = s.repo.UpsertProfile(ctx, model.Profile{
		ID:       authSession.User.ID,
		Email:    authSession.User.Email,
		FullName: authSession.User.FullName(),
		Role:     model.RoleStaff,
	})
	if err != nil {
		return "", model.Session{}, fmt.Errorf("ensure profile: %w", err)
	}

	now := s.now()
	sess = model.Session{
		ID:           uuid.NewString(),
		UserID:       authSession.User.ID,
		Email:        authSession.User.Email,
		AccessToken:  authSession.AccessToken,
		RefreshToken: authSession.RefreshToken,
		CreatedAt:    now,
	}

	token, sess.ExpiresAt, err = s.tokens.Sign(Claims{SessionID: sess.ID}, now)
	if err != nil {
		return "", model.Session{}, fmt.Errorf("sign token: %w", err)
	}

	if err = s.sessions.SetSession(ctx, sess); err != nil {
		return "", model.Session{}, fmt.Errorf("store session: %w", err)
	}

	s.emit(ctx, model.SignedIn, sess)

	return token, sess, nil
}

// SignOut tears the session down even when the auth server cannot be reached.
func (s *AuthService) SignOut(ctx context.Context, sess model.Session) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AuthService.SignOut"

	slog.Debug("SignOut start", slog.String("rqID", rqID), slog.String("op", op), slog.String("sessionID", sess.ID))
	defer func() {
		if err != nil {
			slog.Error("SignOut failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("SignOut completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	if apiErr := s.api.SignOut(ctx, sess.AccessToken); apiErr != nil {
		slog.Warn("auth server sign out failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", apiErr.Error()))
	}

	err = s.sessions.DeleteSession(ctx, sess.ID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}

	s.emit(ctx, model.SignedOut, sess)

	return nil
}

// Authenticate resolves a bearer token to a live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Session, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	claims, err := s.tokens.Verify(token)
	if err != nil {
		slog.Debug("token rejected", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, service.ErrUnauthorized
	}

	sess, err := s.sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return model.Session{}, service.ErrUnauthorized
		}
		return model.Session{}, fmt.Errorf("%w: %s", service.ErrUnavailable, err.Error())
	}

	return sess, nil
}

// Route decides where a user lands: signed-out users go to the landing page, users without a
// fund go to onboarding, everyone else to the dashboard.
func (s *AuthService) Route(ctx context.Context) (model.Route, error) {
	sess, ok := utils.GetSessionFromCtx(ctx)
	if !ok {
		return model.RouteLanding, nil
	}

	funds, err := s.repo.CountUserFunds(ctx, sess.UserID)
	if err != nil {
		return "", fmt.Errorf("%w: %s", service.ErrUnavailable, err.Error())
	}
	if funds == 0 {
		return model.RouteOnboarding, nil
	}
	return model.RouteDashboard, nil
}

// Me returns the profile of the signed-in user. The auth server is asked first, so a user deleted
// upstream stops resolving even while the local session is alive.
func (s *AuthService) Me(ctx context.Context) (profile model.Profile, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AuthService.Me"

	sess, ok := utils.GetSessionFromCtx(ctx)
	if !ok {
		return model.Profile{}, service.ErrUnauthorized
	}

	defer func() {
		if err != nil {
			slog.Warn("Me failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	user, err := s.api.GetUser(ctx, sess.AccessToken)
	if err != nil {
		return model.Profile{}, mapApiErr(err)
	}

	profile, err = s.repo.GetProfile(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.repo.UpsertProfile(ctx, model.Profile{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName(),
			Role:     model.RoleStaff,
		})
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("%w: %s", service.ErrUnavailable, err.Error())
	}
	return profile, nil
}
