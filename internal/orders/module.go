// Package orders provides the order intake bounded context: validation and
// canonicalization of incoming orders, the canonical CMS write and the
// storefront fan-out.
package orders

import (
	"backoffice_backend/internal/cms"
	"backoffice_backend/internal/commerce"
	"backoffice_backend/internal/customers/resolver"
	"backoffice_backend/internal/events"
	apphttp "backoffice_backend/internal/http"
	"backoffice_backend/internal/orders/handler"
	"backoffice_backend/internal/orders/service"
	"backoffice_backend/platform/logger"
	"backoffice_backend/platform/validator"
)

// Module is the orders bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the order service against the shared CMS client, the
// customer resolver and the storefront registry.
func NewModule(cmsClient *cms.Client, res *resolver.Service, registry *commerce.Registry, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(cmsClient, res, gatewaySelector(registry), bus, log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "orders"
}

// RegisterRoutes mounts order routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/orders")
	group.Use(ctx.RateLimiter.RateLimit())
	m.handler.RegisterRoutes(group)
}

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
