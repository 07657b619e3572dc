package rest

import (
	"github.com/KotFed0t/vc_portfolio_dashboard/config"
	"github.com/gin-gonic/gin"
)

const maxUploadMemory = 32 << 20

type Deps struct {
	Auth      AuthService
	Portfolio PortfolioService
	Health    map[string]Pinger
}

// NewRouter builds the gin engine: /healthz and /readyz are open, /api/v1 needs a session except
// for sign-up and sign-in.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.HTTP.GinMode)
	useJSONFieldNames()

	engine := gin.New()
	engine.MaxMultipartMemory = maxUploadMemory
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger())

	health := &HealthHandler{Deps: deps.Health}
	health.Register(engine)

	public := engine.Group("/api/v1")
	protected := public.Group("", RequireSession(deps.Auth))

	authHandler := &AuthHandler{Auth: deps.Auth}
	authHandler.Register(public, protected)

	fundHandler := &FundHandler{Portfolio: deps.Portfolio}
	fundHandler.Register(protected)

	companyHandler := &CompanyHandler{Portfolio: deps.Portfolio}
	companyHandler.Register(protected)

	return engine
}
