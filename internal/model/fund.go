package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrganizationTypeVCFirm = "VC firm"
	OrganizationRoleAdmin  = "admin"
	FundStatusActive       = "active"
	FundRoleManager        = "manager"
)

type Organization struct {
	ID        uuid.UUID `json:"organization_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type OrganizationUser struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	UserID         uuid.UUID `json:"user_id"`
	Role           string    `json:"role"`
}

type Fund struct {
	ID             uuid.UUID           `json:"fund_id"`
	OrganizationID uuid.UUID           `json:"organization_id"`
	Name           string              `json:"name"`
	VintageYear    int                 `json:"vintage_year"`
	FundSize       decimal.NullDecimal `json:"fund_size"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
}

type FundUser struct {
	FundID uuid.UUID `json:"fund_id"`
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

type OnboardingRequest struct {
	OrganizationName string
	FundName         string
	VintageYear      int
	FundSize         decimal.NullDecimal
}

type OnboardingResult struct {
	Organization Organization `json:"organization"`
	Fund         Fund         `json:"fund"`
}
