// Package aggregator reduces dated company metrics into portfolio-wide figures.
//
// Records are bucketed by metric date, the last two distinct dates are compared and one series
// point is produced per date. Sums are computed with decimals so the result does not depend on
// the order of the input.
package aggregator

import (
	"slices"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/calendar"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const RunwayBenchmarkMonths = 24

var hundred = decimal.NewFromInt(100)

type options struct {
	carryForward bool
}

type Option func(*options)

// WithCarryForward makes every date use each company's latest record on or before that date
// instead of only the records dated exactly on it.
func WithCarryForward() Option {
	return func(o *options) { o.carryForward = true }
}

// Aggregate computes the summary and chart series for records.
// IRR and TVPI figures are always zero, the records carry no cash flows to derive them from.
func Aggregate(records []model.MetricsRecord, opts ...Option) model.PortfolioPerformance {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	res := model.PortfolioPerformance{Series: []model.SeriesPoint{}}
	if len(records) == 0 {
		return res
	}

	dates := distinctDates(records)

	var totals []decimal.Decimal
	if o.carryForward {
		totals = carryForwardTotals(records, dates)
	} else {
		totals = exactTotals(records, dates)
	}

	cur := totals[len(totals)-1]
	prev := cur
	if len(totals) > 1 {
		prev = totals[len(totals)-2]
	}

	res.Summary.TotalAUM = cur.InexactFloat64()
	res.Summary.AUMChange = PercentChange(prev, cur).InexactFloat64()

	res.Series = make([]model.SeriesPoint, 0, len(dates))
	for i, d := range dates {
		res.Series = append(res.Series, model.SeriesPoint{
			Label: d.MonthLabel(),
			Value: totals[i].InexactFloat64(),
		})
	}

	return res
}

// PercentChange returns (cur - prev) / prev * 100, or zero when prev is zero.
func PercentChange(prev, cur decimal.Decimal) decimal.Decimal {
	if prev.IsZero() {
		return decimal.Zero
	}
	return cur.Sub(prev).Div(prev).Mul(hundred)
}

// OwnedValue is valuation * shares / 100. Absent values count as zero.
func OwnedValue(valuation, sharesOwned decimal.NullDecimal) decimal.Decimal {
	if !valuation.Valid || !sharesOwned.Valid {
		return decimal.Zero
	}
	return valuation.Decimal.Mul(sharesOwned.Decimal).Div(hundred)
}

// RunwayProgress maps runway months onto a 0..100 scale against a 24 month benchmark.
func RunwayProgress(months decimal.NullDecimal) decimal.Decimal {
	if !months.Valid || months.Decimal.IsNegative() {
		return decimal.Zero
	}
	progress := months.Decimal.Div(decimal.NewFromInt(RunwayBenchmarkMonths)).Mul(hundred)
	return decimal.Min(progress, hundred)
}

// Ownership splits 100% into the fund's stake and the rest of the cap table.
func Ownership(sharesOwned decimal.NullDecimal) []model.OwnershipSlice {
	owned := decimal.Zero
	if sharesOwned.Valid {
		owned = decimal.Min(decimal.Max(sharesOwned.Decimal, decimal.Zero), hundred)
	}
	return []model.OwnershipSlice{
		{Name: "Owned", Value: owned},
		{Name: "Others", Value: hundred.Sub(owned)},
	}
}

func distinctDates(records []model.MetricsRecord) []calendar.Date {
	seen := make(map[calendar.Date]struct{}, len(records))
	dates := make([]calendar.Date, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.MetricDate]; ok {
			continue
		}
		seen[r.MetricDate] = struct{}{}
		dates = append(dates, r.MetricDate)
	}
	slices.SortFunc(dates, calendar.Date.Compare)
	return dates
}

func exactTotals(records []model.MetricsRecord, dates []calendar.Date) []decimal.Decimal {
	byDate := make(map[calendar.Date]decimal.Decimal, len(dates))
	for _, r := range records {
		byDate[r.MetricDate] = byDate[r.MetricDate].Add(OwnedValue(r.PostMoneyValuation, r.SharesOwned))
	}

	totals := make([]decimal.Decimal, len(dates))
	for i, d := range dates {
		totals[i] = byDate[d]
	}
	return totals
}

func carryForwardTotals(records []model.MetricsRecord, dates []calendar.Date) []decimal.Decimal {
	byCompany := make(map[uuid.UUID][]model.MetricsRecord)
	for _, r := range records {
		byCompany[r.CompanyID] = append(byCompany[r.CompanyID], r)
	}
	for _, history := range byCompany {
		slices.SortFunc(history, compareRecords)
	}

	totals := make([]decimal.Decimal, len(dates))
	for i, d := range dates {
		sum := decimal.Zero
		for _, history := range byCompany {
			// history is ascending, so the last record not after d is the one in effect on d
			idx := -1
			for j := range history {
				if history[j].MetricDate.After(d) {
					break
				}
				idx = j
			}
			if idx >= 0 {
				sum = sum.Add(OwnedValue(history[idx].PostMoneyValuation, history[idx].SharesOwned))
			}
		}
		totals[i] = sum
	}
	return totals
}

// compareRecords orders records by date, then creation time, then id.
func compareRecords(a, b model.MetricsRecord) int {
	if c := a.MetricDate.Compare(b.MetricDate); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return slices.Compare(a.ID[:], b.ID[:])
}

// Latest returns the most recent record by date, ties broken by creation time.
func Latest(records []model.MetricsRecord) (model.MetricsRecord, bool) {
	if len(records) == 0 {
		return model.MetricsRecord{}, false
	}
	return slices.MaxFunc(records, compareRecords), true
}
