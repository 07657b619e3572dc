package dbModel

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Organization struct {
	OrganizationID uuid.UUID `db:"organization_id"`
	Name           string    `db:"name"`
	Type           string    `db:"type"`
	CreatedAt      time.Time `db:"created_at"`
}

type Fund struct {
	FundID         uuid.UUID           `db:"fund_id"`
	OrganizationID uuid.UUID           `db:"organization_id"`
	Name           string              `db:"name"`
	VintageYear    int                 `db:"vintage_year"`
	FundSize       decimal.NullDecimal `db:"fund_size"`
	Status         sql.NullString      `db:"status"`
	CreatedAt      time.Time           `db:"created_at"`
}

type Profile struct {
	ID        uuid.UUID      `db:"id"`
	Email     string         `db:"email"`
	FullName  sql.NullString `db:"full_name"`
	Role      string         `db:"role"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}
