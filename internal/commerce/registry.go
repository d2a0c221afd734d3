package commerce

import (
	"encoding/json"
	"fmt"

	"backoffice_backend/platform/config"
	"backoffice_backend/platform/logger"
)

// Registry holds one client per configured storefront site and resolves
// platform tags to clients. Site order follows configuration order.
type Registry struct {
	clients map[string]*Client
	order   []string
}

// NewRegistry builds clients for every configured site.
func NewRegistry(cfg config.CommerceConfig, log *logger.Logger) *Registry {
	registry := &Registry{clients: make(map[string]*Client)}
	for _, site := range cfg.GetCommerceSites() {
		registry.clients[site.Name] = NewClient(site, cfg.GetCommerceTimeout(), log)
		registry.order = append(registry.order, site.Name)
	}
	return registry
}

// Names returns all configured site names in configuration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Get returns the client for one site.
func (r *Registry) Get(name string) (*Client, error) {
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("unknown commerce site %q", name)
	}
	return client, nil
}

// Select returns clients for the requested sites; an empty selection means
// every configured site.
func (r *Registry) Select(names []string) ([]*Client, error) {
	if len(names) == 0 {
		names = r.order
	}

	clients := make([]*Client, 0, len(names))
	for _, name := range names {
		client, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, nil
}

func decodeAPIError(body []byte, target *apiError) error {
	if len(body) == 0 {
		return fmt.Errorf("empty body")
	}
	return json.Unmarshal(body, target)
}
