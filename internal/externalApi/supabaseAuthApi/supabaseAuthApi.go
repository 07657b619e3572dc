package supabaseAuthApi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KotFed0t/vc_portfolio_dashboard/config"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/externalApi"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model/supabaseModel"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/go-resty/resty/v2"
)

type SupabaseAuthApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *SupabaseAuthApi {
	client := resty.New().
		SetDebug(cfg.Supabase.Debug).
		SetTimeout(cfg.Supabase.Timeout).
		SetBaseURL(cfg.Supabase.Url).
		SetHeader("apikey", cfg.Supabase.AnonKey).
		SetHeader("Accept", "application/json")
	return &SupabaseAuthApi{client: client}
}

func (a *SupabaseAuthApi) SignUp(ctx context.Context, req supabaseModel.SignUpRequest) (supabaseModel.User, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SupabaseAuthApi.SignUp"

	slog.Debug("start SupabaseAuthApi.SignUp request", slog.String("rqID", rqID), slog.String("op", op))

	// with email confirmation enabled the server answers with the bare user
	var user supabaseModel.User
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&user).
		SetError(&supabaseModel.APIError{}).
		Post("/auth/v1/signup")
	if err != nil {
		slog.Error("error while dialing auth api", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return supabaseModel.User{}, err
	}
	if err = a.checkResponse(resp); err != nil {
		slog.Warn("auth api rejected sign up", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return supabaseModel.User{}, err
	}

	slog.Debug("SupabaseAuthApi.SignUp request complete", slog.String("rqID", rqID), slog.String("op", op))

	return user, nil
}

func (a *SupabaseAuthApi) SignInWithPassword(ctx context.Context, creds supabaseModel.Credentials) (supabaseModel.AuthSession, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SupabaseAuthApi.SignInWithPassword"

	slog.Debug("start SupabaseAuthApi.SignInWithPassword request", slog.String("rqID", rqID), slog.String("op", op))

	var session supabaseModel.AuthSession
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(creds).
		SetResult(&session).
		SetError(&supabaseModel.APIError{}).
		Post("/auth/v1/token")
	if err != nil {
		slog.Error("error while dialing auth api", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return supabaseModel.AuthSession{}, err
	}
	if err = a.checkResponse(resp); err != nil {
		slog.Warn("auth api rejected sign in", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return supabaseModel.AuthSession{}, err
	}

	slog.Debug("SupabaseAuthApi.SignInWithPassword request complete", slog.String("rqID", rqID), slog.String("op", op))

	return session, nil
}

func (a *SupabaseAuthApi) SignOut(ctx context.Context, accessToken string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SupabaseAuthApi.SignOut"

	slog.Debug("start SupabaseAuthApi.SignOut request", slog.String("rqID", rqID), slog.String("op", op))

	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetError(&supabaseModel.APIError{}).
		Post("/auth/v1/logout")
	if err != nil {
		slog.Error("error while dialing auth api", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return err
	}
	if err = a.checkResponse(resp); err != nil {
		slog.Warn("auth api rejected sign out", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return err
	}

	slog.Debug("SupabaseAuthApi.SignOut request complete", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

func (a *SupabaseAuthApi) GetUser(ctx context.Context, accessToken string) (supabaseModel.User, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "SupabaseAuthApi.GetUser"

	slog.Debug("start SupabaseAuthApi.GetUser request", slog.String("rqID", rqID), slog.String("op", op))

	var user supabaseModel.User
	resp, err := a.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&user).
		SetError(&supabaseModel.APIError{}).
		Get("/auth/v1/user")
	if err != nil {
		slog.Error("error while dialing auth api", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return supabaseModel.User{}, err
	}
	if err = a.checkResponse(resp); err != nil {
		return supabaseModel.User{}, err
	}

	slog.Debug("SupabaseAuthApi.GetUser request complete", slog.String("rqID", rqID), slog.String("op", op))

	return user, nil
}

func (a *SupabaseAuthApi) checkResponse(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}

	msg := resp.Status()
	if apiErr, ok := resp.Error().(*supabaseModel.APIError); ok && apiErr.Message() != "" {
		msg = apiErr.Message()
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", externalApi.ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", externalApi.ErrNotFound, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		// invalid credentials come back as 400 invalid_grant
		return fmt.Errorf("%w: %s", externalApi.ErrBadRequest, msg)
	default:
		return fmt.Errorf("auth api responded %d: %s", resp.StatusCode(), msg)
	}
}
