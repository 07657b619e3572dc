package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/config"
	"github.com/KotFed0t/vc_portfolio_dashboard/data/repository"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/aggregator"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"golang.org/x/sync/singleflight"
)

const (
	BucketingExact        = "exact"
	BucketingCarryForward = "carry_forward"

	reportCurrency = "USD"
)

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error

	InsertOrganization(ctx context.Context, name, orgType string) (model.Organization, error)
	InsertOrganizationUser(ctx context.Context, orgUser model.OrganizationUser) error
	InsertFund(ctx context.Context, fund model.Fund) (model.Fund, error)
	InsertFundUser(ctx context.Context, fundUser model.FundUser) error
	GetFunds(ctx context.Context) ([]model.Fund, error)
	GetFund(ctx context.Context, fundID uuid.UUID) (model.Fund, error)

	GetProfiles(ctx context.Context) ([]model.Profile, error)
	UpdateProfileRole(ctx context.Context, userID uuid.UUID, role string) error

	InsertCompany(ctx context.Context, company model.Company) (model.Company, error)
	GetCompany(ctx context.Context, companyID uuid.UUID) (model.Company, error)
	GetCompanies(ctx context.Context) ([]model.Company, error)
	UpdateCompany(ctx context.Context, companyID uuid.UUID, patch model.CompanyPatch) (model.Company, error)

	InsertInvestment(ctx context.Context, investment model.Investment) (model.Investment, error)
	GetInvestmentsByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Investment, error)

	InsertMetrics(ctx context.Context, record model.MetricsRecord) (model.MetricsRecord, error)
	GetMetricsHistory(ctx context.Context, companyID uuid.UUID, ascending bool) ([]model.MetricsRecord, error)
	GetAllMetrics(ctx context.Context) ([]model.MetricsRecord, error)
	GetLatestMetrics(ctx context.Context, companyID uuid.UUID) (model.MetricsRecord, error)
	CountMetrics(ctx context.Context, companyID uuid.UUID) (int, error)

	InsertFile(ctx context.Context, file model.File) (model.File, error)
	GetFilesByFund(ctx context.Context, fundID uuid.UUID) ([]model.File, error)
	DeleteFilesCreatedBefore(ctx context.Context, fileType string, before time.Time) (int64, error)

	InsertInvestorUpdate(ctx context.Context, update model.InvestorUpdate) (model.InvestorUpdate, error)
	GetInvestorUpdates(ctx context.Context, companyID uuid.UUID) ([]model.InvestorUpdate, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

type FileStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename, kind string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context, kind string) (int, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.PortfolioReport) (fileBytes []byte, fileExtension string, err error)
}

type PortfolioService struct {
	cfg      *config.Config
	repo     Repository
	cache    Cache
	storage  FileStorage
	reports  ReportGenerator
	markdown goldmark.Markdown
	group    singleflight.Group
	// bumped by every invalidation
	epoch     atomic.Uint64
	bucketing string
	now       func() time.Time
}

type Option func(*PortfolioService)

// WithFileStorage enables document uploads and report export.
func WithFileStorage(storage FileStorage) Option {
	return func(s *PortfolioService) { s.storage = storage }
}

func WithClock(now func() time.Time) Option {
	return func(s *PortfolioService) { s.now = now }
}

func New(cfg *config.Config, repo Repository, cache Cache, reports ReportGenerator, opts ...Option) *PortfolioService {
	s := &PortfolioService{
		cfg:       cfg,
		repo:      repo,
		cache:     cache,
		reports:   reports,
		markdown:  goldmark.New(),
		bucketing: cfg.Metrics.Bucketing,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PortfolioService) aggregateOptions() []aggregator.Option {
	if s.bucketing == BucketingCarryForward {
		return []aggregator.Option{aggregator.WithCarryForward()}
	}
	return nil
}

// query keys
const (
	keyCompanies = "companies"
	keyFunds     = "funds"
	keyTeam      = "team"
)

func keyCompany(id uuid.UUID) string            { return "company:" + id.String() }
func keyCompanyMetrics(id uuid.UUID) string     { return "company-metrics:" + id.String() }
func keyLatestMetrics(id uuid.UUID) string      { return "company-metrics:" + id.String() + ":latest" }
func keyMetricsCount(id uuid.UUID) string       { return "company-metrics:" + id.String() + ":count" }
func keyCompanyInvestments(id uuid.UUID) string { return "company-investments:" + id.String() }
func keyInvestorUpdates(id uuid.UUID) string    { return "investor-updates:" + id.String() }
func keyFiles(fundID uuid.UUID) string          { return "files:" + fundID.String() }
func keyPortfolioSummary(mode string) string    { return "portfolio-summary:" + mode }

// patterns matching every variant of a key
func allCompanyMetrics(id uuid.UUID) string { return keyCompanyMetrics(id) + "*" }

const allPortfolioSummaries = "portfolio-summary:*"

// mapRepoErr turns storage errors into service errors.
func mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return service.ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %s", service.ErrNotFound, err.Error())
	case errors.Is(err, repository.ErrAlreadyExists):
		return fmt.Errorf("%w: %s", service.ErrAlreadyExists, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrUnauthorized):
		return err
	default:
		return fmt.Errorf("%w: %s", service.ErrUnavailable, err.Error())
	}
}
