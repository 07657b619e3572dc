package model

import (
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/calendar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const InvestmentStatusActive = "Active"

type Investment struct {
	ID                  uuid.UUID       `json:"id"`
	CompanyID           uuid.UUID       `json:"company_id"`
	InvestmentDate      calendar.Date   `json:"investment_date"`
	RoundName           string          `json:"round_name"`
	Stage               string          `json:"stage"`
	AmountInvested      decimal.Decimal `json:"amount_invested"`
	OwnershipPercentage decimal.Decimal `json:"ownership_percentage"`
	Valuation           decimal.Decimal `json:"valuation"`
	Status              string          `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
}

type CreateCompanyRequest struct {
	Name         string
	Industry     string
	FoundingDate calendar.Date
	TeamSize     *int
	Performance  *string
	Description  *string
}

// CreateInvestmentRequest is the combined company + first investment form.
type CreateInvestmentRequest struct {
	CompanyName         string
	Industry            string
	HQLocation          string
	FoundingDate        calendar.Date
	Description         *string
	InvestmentDate      calendar.Date
	Stage               string
	RoundName           string
	AmountInvested      decimal.Decimal
	OwnershipPercentage decimal.Decimal
	Valuation           decimal.Decimal
}

type CreateInvestmentResult struct {
	Company    Company       `json:"company"`
	Investment Investment    `json:"investment"`
	Metrics    MetricsRecord `json:"metrics"`
}
