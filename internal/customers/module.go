// Package customers provides the customer synchronization bounded context:
// canonical records in the CMS, resolution of partial identities, and the
// fan-out to the storefront sites.
package customers

import (
	"backoffice_backend/internal/cms"
	"backoffice_backend/internal/commerce"
	"backoffice_backend/internal/customers/handler"
	"backoffice_backend/internal/customers/resolver"
	"backoffice_backend/internal/customers/service"
	"backoffice_backend/internal/events"
	apphttp "backoffice_backend/internal/http"
	"backoffice_backend/platform/logger"
	"backoffice_backend/platform/validator"
)

// Module is the customers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the orchestrator and handler around the shared resolver.
func NewModule(cmsClient *cms.Client, res *resolver.Service, registry *commerce.Registry, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(cmsClient, res, gatewaySelector(registry), bus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "customers"
}

// Service exposes the upsert orchestrator for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts customer routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Sync endpoints trigger storefront writes; keep callers behind the
	// shared per-IP limiter.
	group := ctx.Protected.Group("/customers")
	group.Use(ctx.RateLimiter.RateLimit())
	m.handler.RegisterRoutes(group)
}

// gatewaySelector adapts the commerce registry to the fan-out interface.
func gatewaySelector(registry *commerce.Registry) service.GatewaySelector {
	return func(names []string) ([]service.PlatformGateway, error) {
		clients, err := registry.Select(names)
		if err != nil {
			return nil, err
		}
		gateways := make([]service.PlatformGateway, 0, len(clients))
		for _, client := range clients {
			gateways = append(gateways, client)
		}
		return gateways, nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
