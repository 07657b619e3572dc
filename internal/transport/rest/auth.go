package rest

import (
	"context"
	"net/http"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model/supabaseModel"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Authenticator
	SignUp(ctx context.Context, email, password, fullName string) (supabaseModel.User, error)
	SignIn(ctx context.Context, email, password string) (token string, sess model.Session, err error)
	SignOut(ctx context.Context, sess model.Session) error
	Route(ctx context.Context) (model.Route, error)
	Me(ctx context.Context) (model.Profile, error)
}

type AuthHandler struct {
	Auth AuthService
}

// Register mounts sign-up and sign-in on the public group, the rest behind the session check.
func (h *AuthHandler) Register(public, protected *gin.RouterGroup) {
	public.POST("/auth/sign-up", h.signUp)
	public.POST("/auth/sign-in", h.signIn)
	protected.POST("/auth/sign-out", h.signOut)
	protected.GET("/auth/route", h.route)
	protected.GET("/me", h.me)
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name"`
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type signInResponse struct {
	Token     string        `json:"token"`
	Session   model.Session `json:"session"`
	ExpiresAt int64         `json:"expires_at"`
}

func (h *AuthHandler) signUp(c *gin.Context) {
	var req signUpRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Auth.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		respondErr(c, err)
		return
	}

	Created(c, gin.H{"id": user.ID, "email": user.Email})
}

func (h *AuthHandler) signIn(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	token, sess, err := h.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}

	// provider tokens stay server side
	sess.AccessToken, sess.RefreshToken = "", ""
	Ok(c, signInResponse{Token: token, Session: sess, ExpiresAt: sess.ExpiresAt.Unix()}, nil)
}

func (h *AuthHandler) signOut(c *gin.Context) {
	sess, ok := sessionFromCtx(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if err := h.Auth.SignOut(c.Request.Context(), sess); err != nil {
		respondErr(c, err)
		return
	}

	Ok(c, nil, nil)
}

func (h *AuthHandler) route(c *gin.Context) {
	route, err := h.Auth.Route(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, gin.H{"route": route}, nil)
}

func (h *AuthHandler) me(c *gin.Context) {
	profile, err := h.Auth.Me(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, profile, nil)
}
