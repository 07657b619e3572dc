package model

import (
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/calendar"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MetricsRecord is one dated row of a company's metrics history. Rows are append-only.
type MetricsRecord struct {
	ID                 uuid.UUID           `json:"id"`
	CompanyID          uuid.UUID           `json:"company_id"`
	CompanyName        string              `json:"company_name,omitempty"`
	MetricDate         calendar.Date       `json:"metric_date"`
	PostMoneyValuation decimal.NullDecimal `json:"post_money_valuation"`
	SharesOwned        decimal.NullDecimal `json:"shares_owned"`
	ARR                decimal.NullDecimal `json:"arr"`
	MRR                decimal.NullDecimal `json:"mrr"`
	BurnRate           decimal.NullDecimal `json:"burn_rate"`
	RunwayMonths       decimal.NullDecimal `json:"runway_months"`
	CreatedAt          time.Time           `json:"created_at"`
}

// MetricsDraft holds edited metric values; absent values stay NULL in the new row.
type MetricsDraft struct {
	PostMoneyValuation decimal.NullDecimal `json:"post_money_valuation"`
	SharesOwned        decimal.NullDecimal `json:"shares_owned"`
	ARR                decimal.NullDecimal `json:"arr"`
	MRR                decimal.NullDecimal `json:"mrr"`
	BurnRate           decimal.NullDecimal `json:"burn_rate"`
	RunwayMonths       decimal.NullDecimal `json:"runway_months"`
}

func NewMetricsDraft(latest *MetricsRecord) MetricsDraft {
	if latest == nil {
		return MetricsDraft{}
	}
	return MetricsDraft{
		PostMoneyValuation: latest.PostMoneyValuation,
		SharesOwned:        latest.SharesOwned,
		ARR:                latest.ARR,
		MRR:                latest.MRR,
		BurnRate:           latest.BurnRate,
		RunwayMonths:       latest.RunwayMonths,
	}
}

func (d MetricsDraft) Record(companyID uuid.UUID, on calendar.Date) MetricsRecord {
	return MetricsRecord{
		CompanyID:          companyID,
		MetricDate:         on,
		PostMoneyValuation: d.PostMoneyValuation,
		SharesOwned:        d.SharesOwned,
		ARR:                d.ARR,
		MRR:                d.MRR,
		BurnRate:           d.BurnRate,
		RunwayMonths:       d.RunwayMonths,
	}
}
