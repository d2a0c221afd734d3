package service

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"backoffice_backend/internal/cms"
	"backoffice_backend/internal/commerce"
	"backoffice_backend/internal/orders/domain"
	"backoffice_backend/internal/orders/transport"
)

// PlatformGateway is one storefront site as the order fan-out sees it.
type PlatformGateway interface {
	Name() string
	CreateOrder(ctx context.Context, payload *commerce.OrderRequest) (*commerce.Order, error)
}

// GatewaySelector resolves the requested site names to gateways. An empty
// list selects every configured site.
type GatewaySelector func(names []string) ([]PlatformGateway, error)

// fanOut creates the order on each selected site concurrently. Same policy
// as the customer fan-out: one result slot per goroutine, failures never
// abort siblings. Each site's payload carries that site's customer id when
// a wo-clientes cross-reference exists, so the order lands on the customer
// instead of as a guest.
func (s *Service) fanOut(ctx context.Context, order *domain.Order, personDocumentID string, platforms []string) map[string]transport.PlatformResult {
	gateways, err := s.gateways(platforms)
	if err != nil {
		return map[string]transport.PlatformResult{"_selection": {Success: false, Error: err.Error()}}
	}
	if len(gateways) == 0 {
		return map[string]transport.PlatformResult{}
	}

	payload := buildOrderPayload(order)

	type slot struct {
		site   string
		result transport.PlatformResult
	}
	slots := make([]slot, len(gateways))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, gateway := range gateways {
		group.Go(func() error {
			sitePayload := *payload
			sitePayload.CustomerID = s.siteCustomerID(groupCtx, gateway.Name(), personDocumentID)
			created, err := gateway.CreateOrder(groupCtx, &sitePayload)
			if err != nil {
				s.log.UpstreamError(gateway.Name(), "create_order", err)
				slots[i] = slot{site: gateway.Name(), result: transport.PlatformResult{Success: false, Error: err.Error()}}
				return nil
			}
			slots[i] = slot{site: gateway.Name(), result: transport.PlatformResult{
				Success:    true,
				Data:       created,
				ExternalID: created.ID,
			}}
			return nil
		})
	}
	_ = group.Wait()

	results := make(map[string]transport.PlatformResult, len(slots))
	for _, filled := range slots {
		results[filled.site] = filled.result
	}
	return results
}

// siteCustomerID returns the storefront customer id recorded in the
// wo-clientes cross-reference for (person, site), or 0 when none exists.
// Lookup failures fall back to a guest order.
func (s *Service) siteCustomerID(ctx context.Context, site, personDocumentID string) int64 {
	if personDocumentID == "" {
		return 0
	}
	result, err := s.cms.List(ctx, cms.CollectionWoClients, cms.NewQuery().
		FilterEq("origen", site).
		Filter("persona.documentId", cms.OpEq, personDocumentID).
		Page(1, 1))
	if err != nil {
		s.log.SideEffectFailed("order_customer_lookup", err)
		return 0
	}
	if len(result.Entries) == 0 {
		return 0
	}
	return int64(result.Entries[0].Float("external_id"))
}

// writeExternalRefs patches the stored order with the external ids and raw
// payloads returned by the sites. Best-effort, same policy as the customer
// cross-reference writer.
func (s *Service) writeExternalRefs(ctx context.Context, documentID string, results map[string]transport.PlatformResult) {
	refs := map[string]interface{}{}
	for site, result := range results {
		if !result.Success {
			continue
		}
		refs[site] = map[string]interface{}{
			"external_id": result.ExternalID,
			"payload":     result.Data,
		}
	}
	if len(refs) == 0 {
		return
	}

	if _, err := s.cms.Update(ctx, cms.CollectionPedidos, documentID, map[string]interface{}{
		"referencias_externas": refs,
	}); err != nil {
		s.log.SideEffectFailed("order_external_refs", err)
	}
}

// buildOrderPayload maps the canonical order onto the storefront order
// shape. Monetary amounts become two-decimal strings on the wire.
func buildOrderPayload(order *domain.Order) *commerce.OrderRequest {
	items := make([]commerce.OrderLineItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, commerce.OrderLineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Total:     money(item.Total),
			Subtotal:  money(item.Total),
		})
	}

	payload := &commerce.OrderRequest{
		Status:        order.Status,
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod,
		LineItems:     items,
	}
	if order.Shipping > 0 {
		payload.ShippingLines = []commerce.ShippingLine{{MethodID: "flat_rate", Total: money(order.Shipping)}}
	}
	if order.CouponCode != "" {
		payload.CouponLines = []commerce.CouponLine{{Code: order.CouponCode}}
	}
	if order.Billing != nil {
		payload.Billing = toCommerceAddress(order.Billing)
	}
	if order.ShippingAddr != nil {
		payload.Shipping = toCommerceAddress(order.ShippingAddr)
	}
	return payload
}

func toCommerceAddress(block *domain.AddressBlock) *commerce.Address {
	return &commerce.Address{
		FirstName: block.FirstName,
		LastName:  block.LastName,
		Address1:  block.Address1,
		Address2:  block.Address2,
		City:      block.City,
		State:     block.State,
		Postcode:  block.Postcode,
		Country:   block.Country,
		Email:     block.Email,
		Phone:     block.Phone,
	}
}

func money(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
