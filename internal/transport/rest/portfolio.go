package rest

import (
	"context"
	"io"
	"net/http"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/calendar"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PortfolioService interface {
	Onboard(ctx context.Context, req model.OnboardingRequest) (model.OnboardingResult, error)
	GetFunds(ctx context.Context) ([]model.Fund, error)
	GetFund(ctx context.Context, fundID uuid.UUID) (model.Fund, error)
	GetTeam(ctx context.Context) ([]model.Profile, error)
	GetPortfolioSummary(ctx context.Context) (model.PortfolioSummary, error)

	CreateCompany(ctx context.Context, req model.CreateCompanyRequest) (model.Company, error)
	CreateInvestment(ctx context.Context, req model.CreateInvestmentRequest) (model.CreateInvestmentResult, error)
	GetCompany(ctx context.Context, companyID uuid.UUID) (model.Company, error)
	GetCompanies(ctx context.Context) ([]model.Company, error)
	UpdateCompany(ctx context.Context, companyID uuid.UUID, patch model.CompanyPatch) (model.Company, error)
	GetCompanyOverview(ctx context.Context, companyID uuid.UUID) (model.CompanyOverview, error)
	GetInvestments(ctx context.Context, companyID uuid.UUID) ([]model.Investment, error)

	GetMetricsHistory(ctx context.Context, companyID uuid.UUID) ([]model.MetricsRecord, error)
	GetLatestMetrics(ctx context.Context, companyID uuid.UUID) (model.MetricsRecord, error)
	SaveMetrics(ctx context.Context, companyID uuid.UUID, draft model.MetricsDraft) (model.MetricsRecord, error)

	CreateInvestorUpdate(ctx context.Context, update model.InvestorUpdate) (model.InvestorUpdate, error)
	GetInvestorUpdates(ctx context.Context, companyID uuid.UUID) ([]model.InvestorUpdate, error)

	GetFiles(ctx context.Context, fundID uuid.UUID) ([]model.File, error)
	UploadDocument(ctx context.Context, fundID uuid.UUID, name string, size int64, reader io.Reader) (model.File, error)
	ExportReport(ctx context.Context, fundID uuid.UUID) (model.File, error)
}

type FundHandler struct {
	Portfolio PortfolioService
}

func (h *FundHandler) Register(r *gin.RouterGroup) {
	r.POST("/onboarding", h.onboard)
	r.GET("/funds", h.listFunds)
	r.GET("/funds/:id", h.getFund)
	r.GET("/funds/:id/files", h.listFiles)
	r.POST("/funds/:id/files", h.uploadFile)
	r.POST("/funds/:id/reports", h.exportReport)
	r.GET("/portfolio/summary", h.summary)
	r.GET("/team", h.team)
}

type onboardingRequest struct {
	OrganizationName string           `json:"organization_name" binding:"required"`
	FundName         string           `json:"fund_name" binding:"required"`
	VintageYear      int              `json:"vintage_year" binding:"required,gte=1900,lte=2100"`
	FundSize         *decimal.Decimal `json:"fund_size"`
}

func (h *FundHandler) onboard(c *gin.Context) {
	var req onboardingRequest
	if !bindJSON(c, &req) {
		return
	}

	in := model.OnboardingRequest{
		OrganizationName: req.OrganizationName,
		FundName:         req.FundName,
		VintageYear:      req.VintageYear,
	}
	if req.FundSize != nil {
		in.FundSize = decimal.NewNullDecimal(*req.FundSize)
	}

	res, err := h.Portfolio.Onboard(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	Created(c, res)
}

func (h *FundHandler) listFunds(c *gin.Context) {
	funds, err := h.Portfolio.GetFunds(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, funds, map[string]any{"total": len(funds)})
}

func (h *FundHandler) getFund(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	fund, err := h.Portfolio.GetFund(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, fund, nil)
}

func (h *FundHandler) listFiles(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	files, err := h.Portfolio.GetFiles(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, files, map[string]any{"total": len(files)})
}

func (h *FundHandler) uploadFile(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		Error(c, http.StatusBadRequest, "multipart field \"file\" is required", nil)
		return
	}
	f, err := header.Open()
	if err != nil {
		Error(c, http.StatusBadRequest, "can't read uploaded file", nil)
		return
	}
	defer f.Close()

	file, err := h.Portfolio.UploadDocument(c.Request.Context(), id, header.Filename, header.Size, f)
	if err != nil {
		respondErr(c, err)
		return
	}
	Created(c, file)
}

func (h *FundHandler) exportReport(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	file, err := h.Portfolio.ExportReport(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	Created(c, file)
}

func (h *FundHandler) summary(c *gin.Context) {
	summary, err := h.Portfolio.GetPortfolioSummary(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, summary, nil)
}

func (h *FundHandler) team(c *gin.Context) {
	team, err := h.Portfolio.GetTeam(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, team, map[string]any{"total": len(team)})
}

type CompanyHandler struct {
	Portfolio PortfolioService
}

func (h *CompanyHandler) Register(r *gin.RouterGroup) {
	r.GET("/companies", h.list)
	r.POST("/companies", h.create)
	r.POST("/investments", h.createInvestment)

	company := r.Group("/companies/:id")
	company.GET("", h.get)
	company.PATCH("", h.update)
	company.GET("/overview", h.overview)
	company.GET("/investments", h.investments)
	company.GET("/metrics", h.metricsHistory)
	company.GET("/metrics/latest", h.latestMetrics)
	company.POST("/metrics", h.saveMetrics)
	company.GET("/updates", h.investorUpdates)
	company.POST("/updates", h.createInvestorUpdate)
}

type createCompanyRequest struct {
	Name         string        `json:"name" binding:"required"`
	Industry     string        `json:"industry" binding:"required"`
	FoundingDate calendar.Date `json:"founding_date"`
	TeamSize     *int          `json:"team_size" binding:"omitempty,gte=0"`
	Performance  *string       `json:"performance"`
	Description  *string       `json:"description"`
}

type createInvestmentRequest struct {
	CompanyName         string          `json:"company_name" binding:"required"`
	Industry            string          `json:"industry" binding:"required"`
	HQLocation          string          `json:"hq_location" binding:"required"`
	FoundingDate        calendar.Date   `json:"founding_date"`
	Description         *string         `json:"description"`
	InvestmentDate      calendar.Date   `json:"investment_date"`
	Stage               string          `json:"stage" binding:"required"`
	RoundName           string          `json:"round_name" binding:"required"`
	AmountInvested      decimal.Decimal `json:"amount_invested"`
	OwnershipPercentage decimal.Decimal `json:"ownership_percentage"`
	Valuation           decimal.Decimal `json:"valuation"`
}

type investorUpdateRequest struct {
	Title          string  `json:"title" binding:"required"`
	Content        *string `json:"content"`
	AttachmentPath *string `json:"attachment_path"`
}

func (h *CompanyHandler) list(c *gin.Context) {
	companies, err := h.Portfolio.GetCompanies(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, companies, map[string]any{"total": len(companies)})
}

func (h *CompanyHandler) create(c *gin.Context) {
	var req createCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.Portfolio.CreateCompany(c.Request.Context(), model.CreateCompanyRequest{
		Name:         req.Name,
		Industry:     req.Industry,
		FoundingDate: req.FoundingDate,
		TeamSize:     req.TeamSize,
		Performance:  req.Performance,
		Description:  req.Description,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	Created(c, company)
}

func (h *CompanyHandler) createInvestment(c *gin.Context) {
	var req createInvestmentRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.Portfolio.CreateInvestment(c.Request.Context(), model.CreateInvestmentRequest(req))
	if err != nil {
		respondErr(c, err)
		return
	}
	Created(c, res)
}

func (h *CompanyHandler) get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	company, err := h.Portfolio.GetCompany(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, company, nil)
}

// update takes a partial document: absent fields are left as they are.
func (h *CompanyHandler) update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var patch model.CompanyPatch
	if !bindJSON(c, &patch) {
		return
	}

	company, err := h.Portfolio.UpdateCompany(c.Request.Context(), id, patch)
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, company, nil)
}

func (h *CompanyHandler) overview(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	overview, err := h.Portfolio.GetCompanyOverview(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, overview, nil)
}

func (h *CompanyHandler) investments(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	investments, err := h.Portfolio.GetInvestments(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, investments, map[string]any{"total": len(investments)})
}

func (h *CompanyHandler) metricsHistory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	history, err := h.Portfolio.GetMetricsHistory(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, history, map[string]any{"total": len(history)})
}

func (h *CompanyHandler) latestMetrics(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	latest, err := h.Portfolio.GetLatestMetrics(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, latest, nil)
}

func (h *CompanyHandler) saveMetrics(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var draft model.MetricsDraft
	if !bindJSON(c, &draft) {
		return
	}

	record, err := h.Portfolio.SaveMetrics(c.Request.Context(), id, draft)
	if err != nil {
		respondErr(c, err)
		return
	}
	Created(c, record)
}

func (h *CompanyHandler) investorUpdates(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	updates, err := h.Portfolio.GetInvestorUpdates(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	Ok(c, updates, map[string]any{"total": len(updates)})
}

func (h *CompanyHandler) createInvestorUpdate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req investorUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	update, err := h.Portfolio.CreateInvestorUpdate(c.Request.Context(), model.InvestorUpdate{
		CompanyID:      id,
		Title:          req.Title,
		Content:        req.Content,
		AttachmentPath: req.AttachmentPath,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	Created(c, update)
}
