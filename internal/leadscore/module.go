package leadscore

import (
	"github.com/gin-gonic/gin"

	"leadscout_backend/internal/cache"
	apphttp "leadscout_backend/internal/http"
)

// Module is the lead scoring bounded context module implementing http.Module.
// The handler is built by the composition root and attached via Wire, which
// keeps the handler package free to import this one.
type Module struct {
	service *Service
	routes  RouteRegistrar
}

// RouteRegistrar mounts the context's routes on the leads group.
// Implemented by the handler package.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// NewModule wires the lead scorer. source may be nil when the deployment
// has no lead database; only inline scoring works then.
func NewModule(source LeadSource, resultCache *cache.Cache, defaults map[string]float64) *Module {
	return &Module{service: NewService(source, resultCache, defaults)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leadscore"
}

// Service returns the scoring service for the backfill command and tests.
func (m *Module) Service() *Service {
	return m.service
}

// Wire attaches the HTTP route registrar built by the composition root.
func (m *Module) Wire(routes RouteRegistrar) {
	m.routes = routes
}

// RegisterRoutes mounts lead scoring routes on /api/v1/leads.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if m.routes != nil {
		m.routes.RegisterRoutes(ctx.V1.Group("/leads"))
	}
}

var _ apphttp.Module = (*Module)(nil)
