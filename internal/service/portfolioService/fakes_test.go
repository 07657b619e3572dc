package portfolioService

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/data/cache"
	"github.com/KotFed0t/vc_portfolio_dashboard/data/repository"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/aggregator"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/google/uuid"
)

type memRepo struct {
	mu sync.Mutex

	orgs      map[uuid.UUID]model.Organization
	orgUsers  []model.OrganizationUser
	funds     map[uuid.UUID]model.Fund
	fundUsers []model.FundUser
	profiles  map[uuid.UUID]model.Profile
	companies map[uuid.UUID]model.Company
	invs      map[uuid.UUID]model.Investment
	metrics   []model.MetricsRecord
	files     []model.File
	updates   []model.InvestorUpdate

	// failOn makes the named method fail once
	failOn string

	companyLoads atomic.Int32
	companyGate  chan struct{}
	clock        time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		orgs:      map[uuid.UUID]model.Organization{},
		funds:     map[uuid.UUID]model.Fund{},
		profiles:  map[uuid.UUID]model.Profile{},
		companies: map[uuid.UUID]model.Company{},
		invs:      map[uuid.UUID]model.Investment{},
		clock:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

var errInjected = errors.New("injected failure")

func (r *memRepo) fail(method string) error {
	if r.failOn == method {
		r.failOn = ""
		return errInjected
	}
	return nil
}

func (r *memRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

type memSnapshot struct {
	orgs      map[uuid.UUID]model.Organization
	orgUsers  []model.OrganizationUser
	funds     map[uuid.UUID]model.Fund
	fundUsers []model.FundUser
	profiles  map[uuid.UUID]model.Profile
	companies map[uuid.UUID]model.Company
	invs      map[uuid.UUID]model.Investment
	metrics   []model.MetricsRecord
}

func (r *memRepo) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	r.mu.Lock()
	snap := memSnapshot{
		orgs: maps.Clone(r.orgs), orgUsers: slices.Clone(r.orgUsers),
		funds: maps.Clone(r.funds), fundUsers: slices.Clone(r.fundUsers),
		profiles: maps.Clone(r.profiles), companies: maps.Clone(r.companies),
		invs: maps.Clone(r.invs), metrics: slices.Clone(r.metrics),
	}
	r.mu.Unlock()

	if err := tFunc(ctx); err != nil {
		r.mu.Lock()
		r.orgs, r.orgUsers, r.funds, r.fundUsers = snap.orgs, snap.orgUsers, snap.funds, snap.fundUsers
		r.profiles, r.companies, r.invs, r.metrics = snap.profiles, snap.companies, snap.invs, snap.metrics
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *memRepo) InsertOrganization(_ context.Context, name, orgType string) (model.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("InsertOrganization"); err != nil {
		return model.Organization{}, err
	}
	org := model.Organization{ID: uuid.New(), Name: name, Type: orgType, CreatedAt: r.tick()}
	r.orgs[org.ID] = org
	return org, nil
}

func (r *memRepo) InsertOrganizationUser(_ context.Context, orgUser model.OrganizationUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orgUsers = append(r.orgUsers, orgUser)
	return nil
}

func (r *memRepo) InsertFund(_ context.Context, fund model.Fund) (model.Fund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fund.ID = uuid.New()
	fund.CreatedAt = r.tick()
	r.funds[fund.ID] = fund
	return fund, nil
}

func (r *memRepo) InsertFundUser(_ context.Context, fundUser model.FundUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("InsertFundUser"); err != nil {
		return err
	}
	r.fundUsers = append(r.fundUsers, fundUser)
	return nil
}

func (r *memRepo) GetFunds(_ context.Context) ([]model.Fund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	funds := slices.Collect(maps.Values(r.funds))
	slices.SortFunc(funds, func(a, b model.Fund) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return funds, nil
}

func (r *memRepo) GetFund(_ context.Context, fundID uuid.UUID) (model.Fund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.funds[fundID]
	if !ok {
		return model.Fund{}, repository.ErrNotFound
	}
	return f, nil
}

func (r *memRepo) GetProfiles(_ context.Context) ([]model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Collect(maps.Values(r.profiles)), nil
}

func (r *memRepo) UpdateProfileRole(_ context.Context, userID uuid.UUID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Role = role
	r.profiles[userID] = p
	return nil
}

func (r *memRepo) InsertCompany(_ context.Context, company model.Company) (model.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("InsertCompany"); err != nil {
		return model.Company{}, err
	}
	company.ID = uuid.New()
	company.CreatedAt = r.tick()
	company.UpdatedAt = company.CreatedAt
	r.companies[company.ID] = company
	return company, nil
}

func (r *memRepo) GetCompany(_ context.Context, companyID uuid.UUID) (model.Company, error) {
	r.companyLoads.Add(1)
	if r.companyGate != nil {
		<-r.companyGate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[companyID]
	if !ok {
		return model.Company{}, repository.ErrNotFound
	}
	return c, nil
}

func (r *memRepo) GetCompanies(_ context.Context) ([]model.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	companies := slices.Collect(maps.Values(r.companies))
	slices.SortFunc(companies, func(a, b model.Company) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return companies, nil
}

func (r *memRepo) UpdateCompany(_ context.Context, companyID uuid.UUID, patch model.CompanyPatch) (model.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("UpdateCompany"); err != nil {
		return model.Company{}, err
	}
	c, ok := r.companies[companyID]
	if !ok {
		return model.Company{}, repository.ErrNotFound
	}
	c = patch.Apply(c)
	c.UpdatedAt = r.tick()
	r.companies[companyID] = c
	return c, nil
}

func (r *memRepo) InsertInvestment(_ context.Context, investment model.Investment) (model.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("InsertInvestment"); err != nil {
		return model.Investment{}, err
	}
	investment.ID = uuid.New()
	investment.CreatedAt = r.tick()
	r.invs[investment.ID] = investment
	return investment, nil
}

func (r *memRepo) GetInvestmentsByCompany(_ context.Context, companyID uuid.UUID) ([]model.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.Investment
	for _, inv := range r.invs {
		if inv.CompanyID == companyID {
			res = append(res, inv)
		}
	}
	return res, nil
}

func (r *memRepo) InsertMetrics(_ context.Context, record model.MetricsRecord) (model.MetricsRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("InsertMetrics"); err != nil {
		return model.MetricsRecord{}, err
	}
	c, ok := r.companies[record.CompanyID]
	if !ok {
		return model.MetricsRecord{}, repository.ErrConflict
	}
	record.ID = uuid.New()
	record.CompanyName = c.Name
	record.CreatedAt = r.tick()
	r.metrics = append(r.metrics, record)
	return record, nil
}

func (r *memRepo) GetMetricsHistory(_ context.Context, companyID uuid.UUID, ascending bool) ([]model.MetricsRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.MetricsRecord
	for _, m := range r.metrics {
		if m.CompanyID == companyID {
			res = append(res, m)
		}
	}
	slices.SortFunc(res, func(a, b model.MetricsRecord) int { return a.MetricDate.Compare(b.MetricDate) })
	if !ascending {
		slices.Reverse(res)
	}
	return res, nil
}

func (r *memRepo) GetAllMetrics(_ context.Context) ([]model.MetricsRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.metrics), nil
}

func (r *memRepo) GetLatestMetrics(ctx context.Context, companyID uuid.UUID) (model.MetricsRecord, error) {
	history, _ := r.GetMetricsHistory(ctx, companyID, true)
	latest, ok := aggregator.Latest(history)
	if !ok {
		return model.MetricsRecord{}, repository.ErrNotFound
	}
	return latest, nil
}

func (r *memRepo) CountMetrics(_ context.Context, companyID uuid.UUID) (int, error) {
	return r.countMetrics(companyID), nil
}

func (r *memRepo) countMetrics(companyID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.metrics {
		if m.CompanyID == companyID {
			n++
		}
	}
	return n
}

func (r *memRepo) InsertFile(_ context.Context, file model.File) (model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	file.ID = uuid.New()
	file.CreatedAt = r.tick()
	r.files = append(r.files, file)
	return file, nil
}

func (r *memRepo) GetFilesByFund(_ context.Context, fundID uuid.UUID) ([]model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.File
	for _, f := range r.files {
		if f.FundID == fundID {
			res = append(res, f)
		}
	}
	return res, nil
}

func (r *memRepo) DeleteFilesCreatedBefore(_ context.Context, fileType string, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	r.files = slices.DeleteFunc(r.files, func(f model.File) bool {
		if f.Type == fileType && f.CreatedAt.Before(before) {
			deleted++
			return true
		}
		return false
	})
	return deleted, nil
}

func (r *memRepo) InsertInvestorUpdate(_ context.Context, update model.InvestorUpdate) (model.InvestorUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	update.ID = uuid.New()
	update.CreatedAt = r.tick()
	r.updates = append(r.updates, update)
	return update, nil
}

func (r *memRepo) GetInvestorUpdates(_ context.Context, companyID uuid.UUID) ([]model.InvestorUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []model.InvestorUpdate
	for _, u := range r.updates {
		if u.CompanyID == companyID {
			res = append(res, u)
		}
	}
	slices.Reverse(res)
	return res, nil
}

// memCache mirrors the redis cache: JSON values, scoped keys, invalidation across scopes.
type memCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func memKey(ctx context.Context, key string) string {
	return utils.GetCacheScopeFromCtx(ctx) + "|" + key
}

func (c *memCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[memKey(ctx, key)]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[memKey(ctx, key)] = data
	return nil
}

func (c *memCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, pattern := range keys {
		c.invalidated = append(c.invalidated, pattern)
		for full := range c.entries {
			_, key, _ := strings.Cut(full, "|")
			if ok, _ := path.Match(pattern, key); ok {
				delete(c.entries, full)
			}
		}
	}
	return nil
}

func (c *memCache) has(ctx context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[memKey(ctx, key)]
	return ok
}

type memStorage struct {
	uploads map[string][]byte
	kinds   map[string]string
	deleted int
}

func newMemStorage() *memStorage {
	return &memStorage{uploads: map[string][]byte{}, kinds: map[string]string{}}
}

func (s *memStorage) UploadFile(_ context.Context, reader io.Reader, filename, kind string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.uploads[filename] = data
	s.kinds[filename] = kind
	return "https://drive.example/" + filename, nil
}

func (s *memStorage) DeleteOldFiles(_ context.Context, kind string) (int, error) {
	n := 0
	for name, k := range s.kinds {
		if k == kind {
			delete(s.uploads, name)
			delete(s.kinds, name)
			n++
		}
	}
	s.deleted += n
	return n, nil
}

type stubGenerator struct {
	last model.PortfolioReport
}

func (g *stubGenerator) Generate(_ context.Context, report model.PortfolioReport) ([]byte, string, error) {
	g.last = report
	return []byte("xlsx:" + report.Title), ".xlsx", nil
}
