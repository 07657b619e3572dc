package dbModel

import (
	"database/sql"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/calendar"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

type Company struct {
	CompanyID    uuid.UUID      `db:"company_id"`
	Name         string         `db:"name"`
	Industry     sql.NullString `db:"industry"`
	FoundingDate calendar.Date  `db:"founding_date"`
	Metadata     types.JSONText `db:"metadata"`
	Status       sql.NullString `db:"status"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type Investment struct {
	ID                  uuid.UUID       `db:"id"`
	CompanyID           uuid.UUID       `db:"company_id"`
	InvestmentDate      calendar.Date   `db:"investment_date"`
	RoundName           string          `db:"round_name"`
	Stage               string          `db:"stage"`
	AmountInvested      decimal.Decimal `db:"amount_invested"`
	OwnershipPercentage decimal.Decimal `db:"ownership_percentage"`
	Valuation           decimal.Decimal `db:"valuation"`
	Status              sql.NullString  `db:"status"`
	CreatedAt           time.Time       `db:"created_at"`
}
