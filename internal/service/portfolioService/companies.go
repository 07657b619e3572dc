package portfolioService

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/aggregator"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *PortfolioService) CreateCompany(ctx context.Context, req model.CreateCompanyRequest) (company model.Company, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreateCompany"

	slog.Debug("CreateCompany start", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", req.Name))
	defer func() {
		if err != nil {
			slog.Error("CreateCompany failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreateCompany completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("companyID", company.ID.String()))
		}
	}()

	if err = validateCompany(req); err != nil {
		return model.Company{}, err
	}

	company, err = s.repo.InsertCompany(ctx, model.Company{
		Name:         req.Name,
		Industry:     req.Industry,
		FoundingDate: req.FoundingDate,
		Status:       model.CompanyStatusActive,
		Metadata: model.CompanyMetadata{
			TeamSize:    req.TeamSize,
			Performance: req.Performance,
			Description: req.Description,
			Metrics:     map[string]float64{},
		},
	})
	if err != nil {
		return model.Company{}, mapRepoErr(err)
	}

	s.invalidate(ctx, keyCompanies)

	return company, nil
}

// CreateInvestment records a new portfolio company together with its first round and the
// opening metrics row dated at the investment date.
func (s *PortfolioService) CreateInvestment(ctx context.Context, req model.CreateInvestmentRequest) (res model.CreateInvestmentResult, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreateInvestment"

	slog.Debug("CreateInvestment start", slog.String("rqID", rqID), slog.String("op", op), slog.String("company", req.CompanyName))
	defer func() {
		if err != nil {
			slog.Error("CreateInvestment failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreateInvestment completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("companyID", res.Company.ID.String()))
		}
	}()

	if err = validateInvestment(req); err != nil {
		return model.CreateInvestmentResult{}, err
	}

	hq := req.HQLocation
	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		company, err := s.repo.InsertCompany(ctx, model.Company{
			Name:         req.CompanyName,
			Industry:     req.Industry,
			FoundingDate: req.FoundingDate,
			Status:       model.CompanyStatusActive,
			Metadata: model.CompanyMetadata{
				HQLocation:  &hq,
				Description: req.Description,
				Metrics:     map[string]float64{},
			},
		})
		if err != nil {
			return err
		}

		investment, err := s.repo.InsertInvestment(ctx, model.Investment{
			CompanyID:           company.ID,
			InvestmentDate:      req.InvestmentDate,
			RoundName:           req.RoundName,
			Stage:               req.Stage,
			AmountInvested:      req.AmountInvested,
			OwnershipPercentage: req.OwnershipPercentage,
			Valuation:           req.Valuation,
			Status:              model.InvestmentStatusActive,
		})
		if err != nil {
			return err
		}

		draft := model.MetricsDraft{
			PostMoneyValuation: decimal.NewNullDecimal(req.Valuation),
			SharesOwned:        decimal.NewNullDecimal(req.OwnershipPercentage),
		}
		metrics, err := s.repo.InsertMetrics(ctx, draft.Record(company.ID, req.InvestmentDate))
		if err != nil {
			return err
		}

		res = model.CreateInvestmentResult{Company: company, Investment: investment, Metrics: metrics}
		return nil
	})
	if err != nil {
		return model.CreateInvestmentResult{}, mapRepoErr(err)
	}

	s.invalidate(ctx, keyCompanies, allPortfolioSummaries)

	return res, nil
}

func (s *PortfolioService) GetCompany(ctx context.Context, companyID uuid.UUID) (model.Company, error) {
	return fetch(ctx, s, keyCompany(companyID), func(ctx context.Context) (model.Company, error) {
		return s.repo.GetCompany(ctx, companyID)
	})
}

func (s *PortfolioService) GetCompanies(ctx context.Context) ([]model.Company, error) {
	return fetch(ctx, s, keyCompanies, func(ctx context.Context) ([]model.Company, error) {
		return s.repo.GetCompanies(ctx)
	})
}

// UpdateCompany applies a partial update. Concurrent edits are last write wins.
func (s *PortfolioService) UpdateCompany(ctx context.Context, companyID uuid.UUID, patch model.CompanyPatch) (company model.Company, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UpdateCompany"

	slog.Debug("UpdateCompany start", slog.String("rqID", rqID), slog.String("op", op), slog.String("companyID", companyID.String()))
	defer func() {
		if err != nil {
			slog.Error("UpdateCompany failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateCompany completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	if err = validatePatch(patch); err != nil {
		return model.Company{}, err
	}

	company, err = s.repo.UpdateCompany(ctx, companyID, patch)
	if err != nil {
		return model.Company{}, mapRepoErr(err)
	}

	s.invalidate(ctx, keyCompany(companyID), keyCompanies)

	return company, nil
}

func (s *PortfolioService) GetCompanyOverview(ctx context.Context, companyID uuid.UUID) (model.CompanyOverview, error) {
	company, err := s.GetCompany(ctx, companyID)
	if err != nil {
		return model.CompanyOverview{}, err
	}

	latest, err := s.latestMetrics(ctx, companyID)
	if err != nil {
		return model.CompanyOverview{}, err
	}

	entries, err := fetch(ctx, s, keyMetricsCount(companyID), func(ctx context.Context) (int, error) {
		return s.repo.CountMetrics(ctx, companyID)
	})
	if err != nil {
		return model.CompanyOverview{}, err
	}

	overview := model.CompanyOverview{
		Company:        company,
		LatestMetrics:  latest,
		StakeValue:     decimal.Zero,
		Ownership:      aggregator.Ownership(decimal.NullDecimal{}),
		RunwayProgress: decimal.Zero,
		MetricsEntries: entries,
	}
	if latest != nil {
		overview.StakeValue = aggregator.OwnedValue(latest.PostMoneyValuation, latest.SharesOwned)
		overview.Ownership = aggregator.Ownership(latest.SharesOwned)
		overview.RunwayProgress = aggregator.RunwayProgress(latest.RunwayMonths)
	}

	return overview, nil
}

func (s *PortfolioService) GetInvestments(ctx context.Context, companyID uuid.UUID) ([]model.Investment, error) {
	return fetch(ctx, s, keyCompanyInvestments(companyID), func(ctx context.Context) ([]model.Investment, error) {
		return s.repo.GetInvestmentsByCompany(ctx, companyID)
	})
}
