package supabaseAuthApi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/config"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/externalApi"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model/supabaseModel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const anonKey = "anon-key"

func newTestApi(t *testing.T, handler http.HandlerFunc) *SupabaseAuthApi {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{Supabase: config.Supabase{Url: srv.URL, AnonKey: anonKey, Timeout: 5 * time.Second}}
	return New(cfg)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestSignInWithPassword(t *testing.T) {
	userID := uuid.New()
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		require.Equal(t, anonKey, r.Header.Get("apikey"))

		var creds supabaseModel.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "invalid_grant",
				"error_description": "Invalid login credentials",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "access",
			"refresh_token": "refresh",
			"expires_in":    3600,
			"token_type":    "bearer",
			"user": map[string]any{
				"id":            userID.String(),
				"email":         creds.Email,
				"user_metadata": map[string]any{"full_name": "Ada Lovelace"},
			},
		})
	})

	session, err := api.SignInWithPassword(context.Background(), supabaseModel.Credentials{Email: "ada@fund.vc", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "access", session.AccessToken)
	require.Equal(t, userID, session.User.ID)
	require.Equal(t, "Ada Lovelace", *session.User.FullName())

	_, err = api.SignInWithPassword(context.Background(), supabaseModel.Credentials{Email: "ada@fund.vc", Password: "wrong"})
	require.ErrorIs(t, err, externalApi.ErrBadRequest)
	require.Contains(t, err.Error(), "Invalid login credentials")
}

func TestSignOutAndGetUser(t *testing.T) {
	api := newTestApi(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "msg": "invalid JWT"})
			return
		}
		switch r.URL.Path {
		case "/auth/v1/logout":
			require.Equal(t, http.MethodPost, r.Method)
			w.WriteHeader(http.StatusNoContent)
		case "/auth/v1/user":
			writeJSON(w, http.StatusOK, map[string]any{"id": uuid.NewString(), "email": "ada@fund.vc"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	require.NoError(t, api.SignOut(context.Background(), "access"))

	user, err := api.GetUser(context.Background(), "access")
	require.NoError(t, err)
	require.Equal(t, "ada@fund.vc", user.Email)
	require.Nil(t, user.FullName())

	_, err = api.GetUser(context.Background(), "expired")
	require.ErrorIs(t, err, externalApi.ErrUnauthorized)
}
