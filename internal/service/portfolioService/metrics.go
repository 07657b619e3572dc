package portfolioService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/vc_portfolio_dashboard/data/repository"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/aggregator"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/calendar"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/google/uuid"
)

// GetMetricsHistory returns a company's metric rows oldest first, ready for charting.
func (s *PortfolioService) GetMetricsHistory(ctx context.Context, companyID uuid.UUID) ([]model.MetricsRecord, error) {
	return fetch(ctx, s, keyCompanyMetrics(companyID), func(ctx context.Context) ([]model.MetricsRecord, error) {
		return s.repo.GetMetricsHistory(ctx, companyID, true)
	})
}

func (s *PortfolioService) GetLatestMetrics(ctx context.Context, companyID uuid.UUID) (model.MetricsRecord, error) {
	latest, err := s.latestMetrics(ctx, companyID)
	if err != nil {
		return model.MetricsRecord{}, err
	}
	if latest == nil {
		return model.MetricsRecord{}, service.ErrNotFound
	}
	return *latest, nil
}

// latestMetrics returns nil for a company without metric rows.
func (s *PortfolioService) latestMetrics(ctx context.Context, companyID uuid.UUID) (*model.MetricsRecord, error) {
	return fetch(ctx, s, keyLatestMetrics(companyID), func(ctx context.Context) (*model.MetricsRecord, error) {
		record, err := s.repo.GetLatestMetrics(ctx, companyID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &record, nil
	})
}

// NewMetricsDraft seeds an edit draft with the company's latest values.
func (s *PortfolioService) NewMetricsDraft(ctx context.Context, companyID uuid.UUID) (model.MetricsDraft, error) {
	if _, err := s.GetCompany(ctx, companyID); err != nil {
		return model.MetricsDraft{}, err
	}
	latest, err := s.latestMetrics(ctx, companyID)
	if err != nil {
		return model.MetricsDraft{}, err
	}
	return model.NewMetricsDraft(latest), nil
}

// SaveMetrics appends a metrics row dated today. History rows are never updated in place.
func (s *PortfolioService) SaveMetrics(ctx context.Context, companyID uuid.UUID, draft model.MetricsDraft) (record model.MetricsRecord, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.SaveMetrics"

	slog.Debug("SaveMetrics start", slog.String("rqID", rqID), slog.String("op", op), slog.String("companyID", companyID.String()))
	defer func() {
		if err != nil {
			slog.Error("SaveMetrics failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("SaveMetrics completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("metricDate", record.MetricDate.String()))
		}
	}()

	if err = validateMetrics(draft); err != nil {
		return model.MetricsRecord{}, err
	}

	record, err = s.repo.InsertMetrics(ctx, draft.Record(companyID, calendar.Today(s.now)))
	if err != nil {
		return model.MetricsRecord{}, mapRepoErr(err)
	}

	s.invalidate(ctx, allCompanyMetrics(companyID), allPortfolioSummaries)

	return record, nil
}

// GetPortfolioSummary aggregates every metrics row into the dashboard headline figures and series.
func (s *PortfolioService) GetPortfolioSummary(ctx context.Context) (model.PortfolioSummary, error) {
	return fetch(ctx, s, keyPortfolioSummary(s.bucketingMode()), s.loadPortfolioSummary)
}

func (s *PortfolioService) loadPortfolioSummary(ctx context.Context) (model.PortfolioSummary, error) {
	records, err := s.repo.GetAllMetrics(ctx)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	funds, err := s.repo.GetFunds(ctx)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	companies, err := s.repo.GetCompanies(ctx)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	if funds == nil {
		funds = []model.Fund{}
	}

	return model.PortfolioSummary{
		Performance: aggregator.Aggregate(records, s.aggregateOptions()...),
		Funds:       funds,
		Companies:   len(companies),
	}, nil
}

func (s *PortfolioService) bucketingMode() string {
	if s.bucketing == BucketingCarryForward {
		return BucketingCarryForward
	}
	return BucketingExact
}
