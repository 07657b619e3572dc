package dbModel

import (
	"database/sql"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/calendar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MetricsHistory struct {
	ID                 uuid.UUID           `db:"id"`
	CompanyID          uuid.UUID           `db:"company_id"`
	CompanyName        sql.NullString      `db:"company_name"`
	MetricDate         calendar.Date       `db:"metric_date"`
	PostMoneyValuation decimal.NullDecimal `db:"post_money_valuation"`
	SharesOwned        decimal.NullDecimal `db:"shares_owned"`
	ARR                decimal.NullDecimal `db:"arr"`
	MRR                decimal.NullDecimal `db:"mrr"`
	BurnRate           decimal.NullDecimal `db:"burn_rate"`
	RunwayMonths       decimal.NullDecimal `db:"runway_months"`
	CreatedAt          time.Time           `db:"created_at"`
}
