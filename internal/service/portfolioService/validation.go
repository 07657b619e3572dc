package portfolioService

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service"
	"github.com/shopspring/decimal"
)

const (
	minVintageYear = 1900
	maxVintageYear = 2100
)

var hundred = decimal.NewFromInt(100)

func validateOnboarding(req model.OnboardingRequest) error {
	verr := &service.ValidationError{}
	if strings.TrimSpace(req.OrganizationName) == "" {
		verr.Add("organization_name", "is required")
	}
	if strings.TrimSpace(req.FundName) == "" {
		verr.Add("fund_name", "is required")
	}
	if req.VintageYear < minVintageYear || req.VintageYear > maxVintageYear {
		verr.Add("vintage_year", "must be a year between 1900 and 2100")
	}
	if req.FundSize.Valid && !req.FundSize.Decimal.IsPositive() {
		verr.Add("fund_size", "must be positive")
	}
	return verr.Err()
}

func validateCompany(req model.CreateCompanyRequest) error {
	verr := &service.ValidationError{}
	if strings.TrimSpace(req.Name) == "" {
		verr.Add("name", "is required")
	}
	if strings.TrimSpace(req.Industry) == "" {
		verr.Add("industry", "is required")
	}
	if req.TeamSize != nil && *req.TeamSize < 0 {
		verr.Add("team_size", "must not be negative")
	}
	return verr.Err()
}

func validateInvestment(req model.CreateInvestmentRequest) error {
	verr := &service.ValidationError{}
	if strings.TrimSpace(req.CompanyName) == "" {
		verr.Add("company_name", "is required")
	}
	if strings.TrimSpace(req.Industry) == "" {
		verr.Add("industry", "is required")
	}
	if strings.TrimSpace(req.HQLocation) == "" {
		verr.Add("hq_location", "is required")
	}
	if req.FoundingDate.IsZero() {
		verr.Add("founding_date", "is required")
	}
	if req.InvestmentDate.IsZero() {
		verr.Add("investment_date", "is required")
	} else if !req.FoundingDate.IsZero() && req.InvestmentDate.Before(req.FoundingDate) {
		verr.Add("investment_date", "must not precede the founding date")
	}
	if strings.TrimSpace(req.Stage) == "" {
		verr.Add("stage", "is required")
	}
	if strings.TrimSpace(req.RoundName) == "" {
		verr.Add("round_name", "is required")
	}
	if !req.AmountInvested.IsPositive() {
		verr.Add("amount_invested", "must be positive")
	}
	if req.OwnershipPercentage.IsNegative() || req.OwnershipPercentage.GreaterThan(hundred) {
		verr.Add("ownership_percentage", "must be between 0 and 100")
	}
	if !req.Valuation.IsPositive() {
		verr.Add("valuation", "must be positive")
	}
	return verr.Err()
}

func validatePatch(patch model.CompanyPatch) error {
	verr := &service.ValidationError{}
	if patch.IsEmpty() {
		verr.Add("patch", "nothing to update")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		verr.Add("name", "must not be empty")
	}
	if patch.Status != nil && strings.TrimSpace(*patch.Status) == "" {
		verr.Add("status", "must not be empty")
	}
	if patch.Metadata != nil && patch.Metadata.TeamSize != nil && *patch.Metadata.TeamSize < 0 {
		verr.Add("team_size", "must not be negative")
	}
	for _, field := range patch.Clear {
		if !model.IsClearable(field) {
			verr.Add("clear", fmt.Sprintf("%q can't be cleared", field))
		}
	}
	return verr.Err()
}

func validateMetrics(d model.MetricsDraft) error {
	verr := &service.ValidationError{}
	nonNegative := map[string]decimal.NullDecimal{
		"post_money_valuation": d.PostMoneyValuation,
		"arr":                  d.ARR,
		"mrr":                  d.MRR,
		"burn_rate":            d.BurnRate,
		"runway_months":        d.RunwayMonths,
	}
	for field, v := range nonNegative {
		if v.Valid && v.Decimal.IsNegative() {
			verr.Add(field, "must not be negative")
		}
	}
	if d.SharesOwned.Valid && (d.SharesOwned.Decimal.IsNegative() || d.SharesOwned.Decimal.GreaterThan(hundred)) {
		verr.Add("shares_owned", "must be between 0 and 100")
	}
	return verr.Err()
}
