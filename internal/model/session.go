package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session is a signed-in user session. It lives in redis until sign-out or TTL expiry.
type Session struct {
	ID           string    `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthEvent string

const (
	SignedIn  AuthEvent = "SIGNED_IN"
	SignedOut AuthEvent = "SIGNED_OUT"
)

type Route string

const (
	RouteLanding    Route = "landing"
	RouteOnboarding Route = "onboarding"
	RouteDashboard  Route = "dashboard"
)

type ChatAction int

const (
	DefaultAction ChatAction = iota
	EditingCompany
	EditingMetrics
)

// ChatSession is the per-chat state of the telegram bot.
type ChatSession struct {
	Action    ChatAction `json:"action"`
	CompanyID uuid.UUID  `json:"company_id"`
	// serialized editor.Editor of the draft being edited
	Editor json.RawMessage `json:"editor,omitempty"`
}

func (s *ChatSession) Reset() {
	s.Action = DefaultAction
	s.CompanyID = uuid.Nil
	s.Editor = nil
}
