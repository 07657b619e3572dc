package portfolioService

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/config"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/calendar"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	srv     *PortfolioService
	repo    *memRepo
	cache   *memCache
	storage *memStorage
	reports *stubGenerator
}

func newTestEnv(t *testing.T, opts ...Option) testEnv {
	t.Helper()
	env := testEnv{
		repo:    newMemRepo(),
		cache:   newMemCache(),
		storage: newMemStorage(),
		reports: &stubGenerator{},
	}
	cfg := &config.Config{
		Metrics:     config.Metrics{Bucketing: BucketingExact},
		GoogleDrive: config.GoogleDrive{FileTTL: 24 * time.Hour},
	}
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	env.srv = New(cfg, env.repo, env.cache, env.reports, opts...)
	return env
}

func nd(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func userCtx(userID uuid.UUID) context.Context {
	return utils.WithSession(context.Background(), model.Session{ID: "sess-" + userID.String(), UserID: userID})
}

func (e testEnv) mustCompany(t *testing.T, name string) model.Company {
	t.Helper()
	c, err := e.srv.CreateCompany(context.Background(), model.CreateCompanyRequest{Name: name, Industry: "Fintech"})
	require.NoError(t, err)
	return c
}

func TestCreateCompany_ThenGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teamSize := 12

	created, err := env.srv.CreateCompany(ctx, model.CreateCompanyRequest{
		Name:         "Acme",
		Industry:     "Fintech",
		FoundingDate: calendar.MustParse("2020-02-01"),
		TeamSize:     &teamSize,
	})
	require.NoError(t, err)
	require.Equal(t, model.CompanyStatusActive, created.Status)
	require.NotNil(t, created.Metadata.Metrics)
	require.Empty(t, created.Metadata.Metrics)

	for range 2 {
		got, err := env.srv.GetCompany(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, "Acme", got.Name)
		require.Equal(t, model.CompanyStatusActive, got.Status)
		require.Equal(t, 12, *got.Metadata.TeamSize)
		require.Equal(t, "2020-02-01", got.FoundingDate.String())
	}
	require.EqualValues(t, 1, env.repo.companyLoads.Load(), "second read is served from the cache")
}

func TestCreateCompany_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.srv.CreateCompany(context.Background(), model.CreateCompanyRequest{Name: "  "})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "name")
	require.Contains(t, verr.Fields, "industry")
	require.Empty(t, env.repo.companies)
}

func TestGetCompany_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.srv.GetCompany(context.Background(), uuid.New())
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateCompany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.mustCompany(t, "Acme")

	_, err := env.srv.GetCompany(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, env.cache.has(ctx, keyCompany(c.ID)))

	t.Run("failure keeps cache", func(t *testing.T) {
		env.repo.failOn = "UpdateCompany"
		name := "Acme 2"
		_, err := env.srv.UpdateCompany(ctx, c.ID, model.CompanyPatch{Name: &name})
		require.ErrorIs(t, err, service.ErrUnavailable)
		require.True(t, env.cache.has(ctx, keyCompany(c.ID)))
	})

	t.Run("success invalidates", func(t *testing.T) {
		hq := "Berlin"
		updated, err := env.srv.UpdateCompany(ctx, c.ID, model.CompanyPatch{Metadata: &model.MetadataPatch{HQLocation: &hq}})
		require.NoError(t, err)
		require.Equal(t, "Berlin", *updated.Metadata.HQLocation)
		require.Equal(t, "Acme", updated.Name)
		require.False(t, env.cache.has(ctx, keyCompany(c.ID)))

		got, err := env.srv.GetCompany(ctx, c.ID)
		require.NoError(t, err)
		require.Equal(t, "Berlin", *got.Metadata.HQLocation)
	})

	t.Run("cleared fields are emptied", func(t *testing.T) {
		updated, err := env.srv.UpdateCompany(ctx, c.ID, model.CompanyPatch{Clear: []string{model.FieldHQLocation}})
		require.NoError(t, err)
		require.Nil(t, updated.Metadata.HQLocation)

		got, err := env.srv.GetCompany(ctx, c.ID)
		require.NoError(t, err)
		require.Nil(t, got.Metadata.HQLocation)
		require.Equal(t, "Acme", got.Name)
	})

	t.Run("unknown cleared field", func(t *testing.T) {
		_, err := env.srv.UpdateCompany(ctx, c.ID, model.CompanyPatch{Clear: []string{"name"}})
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "clear")
	})

	t.Run("empty patch", func(t *testing.T) {
		_, err := env.srv.UpdateCompany(ctx, c.ID, model.CompanyPatch{})
		require.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("unknown company", func(t *testing.T) {
		name := "Nobody"
		_, err := env.srv.UpdateCompany(ctx, uuid.New(), model.CompanyPatch{Name: &name})
		require.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestSaveMetrics_AppendsRowDatedToday(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.mustCompany(t, "Acme")

	_, err := env.repo.InsertMetrics(ctx, model.MetricsRecord{
		CompanyID: c.ID, MetricDate: calendar.MustParse("2024-05-01"),
		PostMoneyValuation: nd(1_000_000), SharesOwned: nd(10),
	})
	require.NoError(t, err)

	draft, err := env.srv.NewMetricsDraft(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, draft.PostMoneyValuation.Decimal.Equal(decimal.NewFromInt(1_000_000)))

	_, err = env.srv.GetPortfolioSummary(ctx)
	require.NoError(t, err)
	require.True(t, env.cache.has(ctx, keyPortfolioSummary(BucketingExact)))

	before := env.repo.countMetrics(c.ID)
	draft.ARR = nd(500_000)
	record, err := env.srv.SaveMetrics(ctx, c.ID, draft)
	require.NoError(t, err)

	require.Equal(t, before+1, env.repo.countMetrics(c.ID))
	require.Equal(t, "2024-06-15", record.MetricDate.String())
	require.False(t, env.cache.has(ctx, keyPortfolioSummary(BucketingExact)))

	latest, err := env.srv.GetLatestMetrics(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, record.ID, latest.ID)
	require.True(t, latest.ARR.Decimal.Equal(decimal.NewFromInt(500_000)))

	history, err := env.srv.GetMetricsHistory(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "2024-05-01", history[0].MetricDate.String())
}

func TestSaveMetrics_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.mustCompany(t, "Acme")

	_, err := env.srv.SaveMetrics(ctx, c.ID, model.MetricsDraft{SharesOwned: nd(120), BurnRate: nd(-1)})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "shares_owned")
	require.Contains(t, verr.Fields, "burn_rate")

	invalidations := len(env.cache.invalidated)
	env.repo.failOn = "InsertMetrics"
	_, err = env.srv.SaveMetrics(ctx, c.ID, model.MetricsDraft{ARR: nd(1)})
	require.ErrorIs(t, err, service.ErrUnavailable)
	require.Len(t, env.cache.invalidated, invalidations, "failed writes do not invalidate")
	require.Zero(t, env.repo.countMetrics(c.ID))

	_, err = env.srv.SaveMetrics(ctx, uuid.New(), model.MetricsDraft{ARR: nd(1)})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetLatestMetrics_NoRows(t *testing.T) {
	env := newTestEnv(t)
	c := env.mustCompany(t, "Acme")

	_, err := env.srv.GetLatestMetrics(context.Background(), c.ID)
	require.ErrorIs(t, err, service.ErrNotFound)

	draft, err := env.srv.NewMetricsDraft(context.Background(), c.ID)
	require.NoError(t, err)
	require.Equal(t, model.MetricsDraft{}, draft)
}

func TestOnboard(t *testing.T) {
	userID := uuid.New()

	t.Run("creates organization and fund", func(t *testing.T) {
		env := newTestEnv(t)
		env.repo.profiles[userID] = model.Profile{ID: userID, Role: model.RoleStaff}
		ctx := userCtx(userID)

		res, err := env.srv.Onboard(ctx, model.OnboardingRequest{
			OrganizationName: "Ada Ventures", FundName: "Fund I", VintageYear: 2024,
		})
		require.NoError(t, err)
		require.Equal(t, model.OrganizationTypeVCFirm, res.Organization.Type)
		require.Equal(t, model.FundStatusActive, res.Fund.Status)
		require.Equal(t, res.Organization.ID, res.Fund.OrganizationID)
		require.Equal(t, []model.OrganizationUser{{OrganizationID: res.Organization.ID, UserID: userID, Role: model.OrganizationRoleAdmin}}, env.repo.orgUsers)
		require.Equal(t, []model.FundUser{{FundID: res.Fund.ID, UserID: userID, Role: model.FundRoleManager}}, env.repo.fundUsers)
		require.Equal(t, model.RoleVC, env.repo.profiles[userID].Role)

		funds, err := env.srv.GetFunds(ctx)
		require.NoError(t, err)
		require.Len(t, funds, 1)

		fund, err := env.srv.GetFund(ctx, res.Fund.ID)
		require.NoError(t, err)
		require.Equal(t, "Fund I", fund.Name)
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.repo.profiles[userID] = model.Profile{ID: userID, Role: model.RoleStaff}
		env.repo.failOn = "InsertFundUser"

		_, err := env.srv.Onboard(userCtx(userID), model.OnboardingRequest{
			OrganizationName: "Ada Ventures", FundName: "Fund I", VintageYear: 2024,
		})
		require.Error(t, err)
		require.Empty(t, env.repo.orgs)
		require.Empty(t, env.repo.funds)
		require.Equal(t, model.RoleStaff, env.repo.profiles[userID].Role)
	})

	t.Run("requires a session", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.srv.Onboard(context.Background(), model.OnboardingRequest{})
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("validates input", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.srv.Onboard(userCtx(userID), model.OnboardingRequest{VintageYear: 1800})
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 3)
	})
}

func TestCreateInvestment(t *testing.T) {
	req := model.CreateInvestmentRequest{
		CompanyName:         "Acme",
		Industry:            "Fintech",
		HQLocation:          "Lisbon",
		FoundingDate:        calendar.MustParse("2021-01-10"),
		InvestmentDate:      calendar.MustParse("2023-03-01"),
		Stage:               "Seed",
		RoundName:           "Seed",
		AmountInvested:      decimal.NewFromInt(500_000),
		OwnershipPercentage: decimal.NewFromInt(10),
		Valuation:           decimal.NewFromInt(5_000_000),
	}

	t.Run("writes company, investment and opening metrics", func(t *testing.T) {
		env := newTestEnv(t)
		res, err := env.srv.CreateInvestment(context.Background(), req)
		require.NoError(t, err)

		require.Equal(t, "Lisbon", *res.Company.Metadata.HQLocation)
		require.Equal(t, model.InvestmentStatusActive, res.Investment.Status)
		require.Equal(t, res.Company.ID, res.Investment.CompanyID)
		require.Equal(t, "2023-03-01", res.Metrics.MetricDate.String())
		require.True(t, res.Metrics.SharesOwned.Decimal.Equal(decimal.NewFromInt(10)))
		require.False(t, res.Metrics.ARR.Valid)

		summary, err := env.srv.GetPortfolioSummary(context.Background())
		require.NoError(t, err)
		require.InDelta(t, 500_000, summary.Performance.Summary.TotalAUM, 1e-9)
		require.Equal(t, 1, summary.Companies)
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.repo.failOn = "InsertInvestment"
		_, err := env.srv.CreateInvestment(context.Background(), req)
		require.Error(t, err)
		require.Empty(t, env.repo.companies)
		require.Empty(t, env.repo.metrics)
	})

	t.Run("validates amounts", func(t *testing.T) {
		env := newTestEnv(t)
		bad := req
		bad.AmountInvested = decimal.Zero
		bad.OwnershipPercentage = decimal.NewFromInt(101)
		bad.InvestmentDate = calendar.MustParse("2020-01-01")
		_, err := env.srv.CreateInvestment(context.Background(), bad)
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Fields, "amount_invested")
		require.Contains(t, verr.Fields, "ownership_percentage")
		require.Contains(t, verr.Fields, "investment_date")
	})
}

func TestGetInvestments(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.srv.CreateInvestment(context.Background(), model.CreateInvestmentRequest{
		CompanyName: "Acme", Industry: "AI", HQLocation: "Paris",
		FoundingDate: calendar.MustParse("2022-01-01"), InvestmentDate: calendar.MustParse("2023-01-01"),
		Stage: "Series A", RoundName: "A", AmountInvested: decimal.NewFromInt(1),
		OwnershipPercentage: decimal.NewFromInt(1), Valuation: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	investments, err := env.srv.GetInvestments(context.Background(), res.Company.ID)
	require.NoError(t, err)
	require.Len(t, investments, 1)
	require.Equal(t, "Series A", investments[0].Stage)
}

func TestGetCompanyOverview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.mustCompany(t, "Acme")

	overview, err := env.srv.GetCompanyOverview(ctx, c.ID)
	require.NoError(t, err)
	require.Nil(t, overview.LatestMetrics)
	require.Zero(t, overview.MetricsEntries)
	require.True(t, overview.StakeValue.IsZero())
	require.True(t, overview.Ownership[1].Value.Equal(decimal.NewFromInt(100)))

	_, err = env.srv.SaveMetrics(ctx, c.ID, model.MetricsDraft{
		PostMoneyValuation: nd(2_000_000), SharesOwned: nd(25), RunwayMonths: nd(12),
	})
	require.NoError(t, err)

	overview, err = env.srv.GetCompanyOverview(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, overview.LatestMetrics)
	require.Equal(t, 1, overview.MetricsEntries)
	require.True(t, overview.StakeValue.Equal(decimal.NewFromInt(500_000)))
	require.True(t, overview.Ownership[0].Value.Equal(decimal.NewFromInt(25)))
	require.True(t, overview.RunwayProgress.Equal(decimal.NewFromInt(50)))
}

func TestGetPortfolioSummary(t *testing.T) {
	ctx := context.Background()
	seed := func(t *testing.T, env testEnv) {
		a := env.mustCompany(t, "Acme")
		b := env.mustCompany(t, "Globex")
		rows := []model.MetricsRecord{
			{CompanyID: a.ID, MetricDate: calendar.MustParse("2024-01-15"), PostMoneyValuation: nd(1_000_000), SharesOwned: nd(10)},
			{CompanyID: b.ID, MetricDate: calendar.MustParse("2024-01-15"), PostMoneyValuation: nd(2_000_000), SharesOwned: nd(5)},
			{CompanyID: a.ID, MetricDate: calendar.MustParse("2024-02-15"), PostMoneyValuation: nd(1_500_000), SharesOwned: nd(10)},
		}
		for _, r := range rows {
			_, err := env.repo.InsertMetrics(ctx, r)
			require.NoError(t, err)
		}
	}

	t.Run("exact dates", func(t *testing.T) {
		env := newTestEnv(t)
		seed(t, env)
		summary, err := env.srv.GetPortfolioSummary(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, summary.Companies)
		require.NotNil(t, summary.Funds)
		require.InDelta(t, 150_000, summary.Performance.Summary.TotalAUM, 1e-9)
		require.InDelta(t, -25, summary.Performance.Summary.AUMChange, 1e-9)
		require.Equal(t, []model.SeriesPoint{{Label: "Jan 2024", Value: 200_000}, {Label: "Feb 2024", Value: 150_000}}, summary.Performance.Series)
	})

	t.Run("carry forward", func(t *testing.T) {
		env := newTestEnv(t)
		env.srv.bucketing = BucketingCarryForward
		seed(t, env)
		summary, err := env.srv.GetPortfolioSummary(ctx)
		require.NoError(t, err)
		require.InDelta(t, 250_000, summary.Performance.Summary.TotalAUM, 1e-9)
		require.InDelta(t, 25, summary.Performance.Summary.AUMChange, 1e-9)
		require.True(t, env.cache.has(ctx, keyPortfolioSummary(BucketingCarryForward)))
	})

	t.Run("empty", func(t *testing.T) {
		env := newTestEnv(t)
		summary, err := env.srv.GetPortfolioSummary(ctx)
		require.NoError(t, err)
		require.Zero(t, summary.Performance.Summary.TotalAUM)
		require.Empty(t, summary.Performance.Series)
	})
}

func TestFetch_DeduplicatesConcurrentLoads(t *testing.T) {
	env := newTestEnv(t)
	c := env.mustCompany(t, "Acme")
	env.repo.companyGate = make(chan struct{})

	const callers = 10
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := env.srv.GetCompany(context.Background(), c.ID)
			if err == nil && got.ID != c.ID {
				err = service.ErrNotFound
			}
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return env.repo.companyLoads.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(env.repo.companyGate)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, env.repo.companyLoads.Load())
}

// readThenWaitRepo hands out the row it read only after release is closed.
type readThenWaitRepo struct {
	*memRepo
	read    chan struct{}
	release chan struct{}
}

func (r *readThenWaitRepo) GetCompany(ctx context.Context, companyID uuid.UUID) (model.Company, error) {
	c, err := r.memRepo.GetCompany(ctx, companyID)
	if r.read != nil {
		close(r.read)
		r.read = nil
		<-r.release
	}
	return c, err
}

func TestFetch_LoadOverlappingUpdateIsNotCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.mustCompany(t, "Old")

	repo := &readThenWaitRepo{memRepo: env.repo, read: make(chan struct{}), release: make(chan struct{})}
	read := repo.read
	cfg := &config.Config{Metrics: config.Metrics{Bucketing: BucketingExact}}
	srv := New(cfg, repo, env.cache, env.reports, WithClock(func() time.Time { return testNow }))

	inFlight := make(chan model.Company, 1)
	go func() {
		got, err := srv.GetCompany(ctx, c.ID)
		if err != nil {
			t.Error(err)
		}
		inFlight <- got
	}()
	<-read

	name := "New"
	_, err := srv.UpdateCompany(ctx, c.ID, model.CompanyPatch{Name: &name})
	require.NoError(t, err)

	close(repo.release)
	require.Equal(t, "Old", (<-inFlight).Name)
	require.False(t, env.cache.has(ctx, keyCompany(c.ID)))

	got, err := srv.GetCompany(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "New", got.Name)
}

func TestFetch_ScopesBySession(t *testing.T) {
	env := newTestEnv(t)
	c := env.mustCompany(t, "Acme")

	_, err := env.srv.GetCompany(userCtx(uuid.New()), c.ID)
	require.NoError(t, err)
	_, err = env.srv.GetCompany(userCtx(uuid.New()), c.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, env.repo.companyLoads.Load())
}

func TestInvestorUpdates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.mustCompany(t, "Acme")

	_, err := env.srv.CreateInvestorUpdate(ctx, model.InvestorUpdate{CompanyID: c.ID})
	require.ErrorIs(t, err, service.ErrValidation)

	content := "# Q2\n\nRevenue is **up**."
	created, err := env.srv.CreateInvestorUpdate(ctx, model.InvestorUpdate{CompanyID: c.ID, Title: "Q2 update", Content: &content})
	require.NoError(t, err)
	require.Contains(t, created.ContentHTML, "<h1>Q2</h1>")

	updates, err := env.srv.GetInvestorUpdates(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Contains(t, updates[0].ContentHTML, "<strong>up</strong>")
}

func TestDocumentsAndReports(t *testing.T) {
	userID := uuid.New()
	ctx := userCtx(userID)

	t.Run("storage disabled", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.srv.UploadDocument(ctx, uuid.New(), "deck.pdf", 3, strings.NewReader("pdf"))
		require.ErrorIs(t, err, service.ErrStorageDisabled)
		_, err = env.srv.ExportReport(ctx, uuid.New())
		require.ErrorIs(t, err, service.ErrStorageDisabled)
		require.NoError(t, env.srv.CleanupReports(ctx))
	})

	env := newTestEnv(t)
	env.srv.storage = env.storage
	fund, err := env.repo.InsertFund(ctx, model.Fund{Name: "Fund I/II", VintageYear: 2024, Status: model.FundStatusActive})
	require.NoError(t, err)
	env.mustCompany(t, "Acme")

	doc, err := env.srv.UploadDocument(ctx, fund.ID, "deck.pdf", 3, strings.NewReader("pdf"))
	require.NoError(t, err)
	require.Equal(t, model.FileTypeDocument, doc.Type)
	require.Equal(t, userID, *doc.UploadedBy)
	require.Equal(t, "https://drive.example/deck.pdf", doc.Path)

	_, err = env.srv.UploadDocument(ctx, uuid.New(), "deck.pdf", 3, strings.NewReader("pdf"))
	require.ErrorIs(t, err, service.ErrNotFound)

	report, err := env.srv.ExportReport(ctx, fund.ID)
	require.NoError(t, err)
	require.Equal(t, model.FileTypeReport, report.Type)
	require.Equal(t, "Fund_I_II_2024-06-15.xlsx", report.Name)
	require.Equal(t, "Fund I/II", env.reports.last.Title)
	require.Len(t, env.reports.last.Companies, 1)
	require.Nil(t, env.reports.last.Companies[0].Latest)

	files, err := env.srv.GetFiles(ctx, fund.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)

	require.NoError(t, env.srv.CleanupReports(context.Background()))
	require.Equal(t, 1, env.storage.deleted)
	require.Len(t, env.repo.files, 1)
	require.Equal(t, model.FileTypeDocument, env.repo.files[0].Type)
}

func TestRefreshPortfolioSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.mustCompany(t, "Acme")

	_, err := env.srv.GetPortfolioSummary(ctx)
	require.NoError(t, err)

	_, err = env.repo.InsertMetrics(ctx, model.MetricsRecord{
		CompanyID: c.ID, MetricDate: calendar.MustParse("2024-06-01"), PostMoneyValuation: nd(100), SharesOwned: nd(50),
	})
	require.NoError(t, err)

	require.NoError(t, env.srv.RefreshPortfolioSummary(ctx))
	summary, err := env.srv.GetPortfolioSummary(ctx)
	require.NoError(t, err)
	require.InDelta(t, 50, summary.Performance.Summary.TotalAUM, 1e-9)

	require.Error(t, env.srv.RefreshPortfolioSummary(userCtx(uuid.New())))
}
