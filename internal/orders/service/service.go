// Package service implements order creation: validation, vocabulary
// canonicalization, coupon application, the canonical CMS write and the
// storefront fan-out.
package service

import (
	"context"
	"time"

	"backoffice_backend/internal/cms"
	"backoffice_backend/internal/customers/resolver"
	"backoffice_backend/internal/events"
	"backoffice_backend/internal/orders/domain"
	"backoffice_backend/internal/orders/transport"
	"backoffice_backend/platform/apperr"
	"backoffice_backend/platform/logger"
)

// CMSClient is the slice of the CMS client the service needs.
type CMSClient interface {
	List(ctx context.Context, collection string, query *cms.Query) (*cms.ListResult, error)
	Get(ctx context.Context, collection, documentID string, query *cms.Query) (*cms.Entry, error)
	Create(ctx context.Context, collection string, data map[string]interface{}) (*cms.Entry, error)
	Update(ctx context.Context, collection, documentID string, data map[string]interface{}) (*cms.Entry, error)
}

// CustomerResolver locates the canonical customer an order belongs to.
type CustomerResolver interface {
	Resolve(ctx context.Context, keys resolver.Keys) (*resolver.Outcome, error)
}

type Service struct {
	cms      CMSClient
	resolver CustomerResolver
	gateways GatewaySelector
	bus      events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(cmsClient CMSClient, res CustomerResolver, gateways GatewaySelector, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		cms:      cmsClient,
		resolver: res,
		gateways: gateways,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}
}

// Create validates and canonicalizes the order, writes it to the CMS and
// fans it out to the selected sites. Validation failures abort before any
// write; per-site failures after the canonical write are reported, not
// raised.
func (s *Service) Create(ctx context.Context, req transport.CreateOrderRequest) (*transport.CreateOrderResponse, error) {
	order := fromRequest(req)
	order.Canonicalize()

	if err := order.Validate(); err != nil {
		return nil, err
	}

	outcome, err := s.resolver.Resolve(ctx, resolver.Keys{
		ID:         req.Customer.ID,
		DocumentID: req.Customer.DocumentID,
		RUT:        req.Customer.RUT,
		Email:      req.Customer.Email,
	})
	if err != nil {
		return nil, err
	}
	if !outcome.Found {
		return nil, apperr.NotFound("order customer could not be resolved")
	}
	personDocumentID := outcome.Entry.DocumentID

	if req.CouponCode != "" {
		if err := s.applyCoupon(ctx, order, req.CouponCode); err != nil {
			return nil, err
		}
		// The discount changed; re-check the breakdown against it.
		order.Total = 0
		if err := order.Validate(); err != nil {
			return nil, err
		}
	}

	entry, err := s.cms.Create(ctx, cms.CollectionPedidos, orderData(order, personDocumentID))
	if err != nil {
		return nil, err
	}

	results := s.fanOut(ctx, order, personDocumentID, req.Platforms)
	s.writeExternalRefs(ctx, entry.DocumentID, results)

	s.bus.Publish(ctx, events.OrderCreated{
		BaseEvent:        events.NewBaseEvent(),
		OrderDocumentID:  entry.DocumentID,
		PersonDocumentID: personDocumentID,
		Total:            order.Total,
		Currency:         order.Currency,
		Platforms:        toEventOutcomes(results),
	})

	return &transport.CreateOrderResponse{
		Success:    true,
		DocumentID: entry.DocumentID,
		Order:      order,
		Platforms:  results,
	}, nil
}

// Get returns one stored order by document id.
func (s *Service) Get(ctx context.Context, documentID string) (*transport.OrderResponse, error) {
	entry, err := s.cms.Get(ctx, cms.CollectionPedidos, documentID, cms.NewQuery().Populate("items"))
	if err != nil {
		return nil, err
	}
	return &transport.OrderResponse{DocumentID: entry.DocumentID, Order: orderFromEntry(entry)}, nil
}

// List returns a page of stored orders, newest first.
func (s *Service) List(ctx context.Context, page, pageSize int) (*transport.ListOrdersResponse, error) {
	result, err := s.cms.List(ctx, cms.CollectionPedidos, cms.NewQuery().
		Populate("items").
		Page(page, pageSize).
		Sort("createdAt:desc"))
	if err != nil {
		return nil, err
	}

	orders := make([]transport.OrderResponse, 0, len(result.Entries))
	for i := range result.Entries {
		entry := &result.Entries[i]
		orders = append(orders, transport.OrderResponse{
			DocumentID: entry.DocumentID,
			Order:      orderFromEntry(entry),
		})
	}

	return &transport.ListOrdersResponse{
		Orders:   orders,
		Page:     result.Pagination.Page,
		PageSize: result.Pagination.PageSize,
		Total:    result.Pagination.Total,
	}, nil
}

// applyCoupon loads the coupon, checks origin and expiry and replaces the
// order's discount with the computed, clamped amount.
func (s *Service) applyCoupon(ctx context.Context, order *domain.Order, code string) error {
	result, err := s.cms.List(ctx, cms.CollectionCupones, cms.NewQuery().FilterEq("codigo", code).Page(1, 1))
	if err != nil {
		return err
	}
	if len(result.Entries) == 0 {
		return apperr.Validation("coupon " + code + " does not exist")
	}

	coupon := couponFromEntry(&result.Entries[0])
	if err := coupon.ValidateFor(order.Origin, s.now()); err != nil {
		return err
	}

	order.CouponCode = coupon.Code
	order.Discount = coupon.Discount(order)
	return nil
}

func fromRequest(req transport.CreateOrderRequest) *domain.Order {
	order := &domain.Order{
		Number:        req.Number,
		Currency:      req.Currency,
		Origin:        req.Origin,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		Tax:           req.Tax,
		Shipping:      req.Shipping,
		Discount:      req.Discount,
		Total:         req.Total,
		CouponCode:    req.CouponCode,
		Billing:       req.Billing,
		ShippingAddr:  req.ShippingAddr,
	}
	if order.Currency == "" {
		order.Currency = "CLP"
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, domain.LineItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
			ProductID: item.ProductID,
		})
	}
	return order
}

func orderData(order *domain.Order, personDocumentID string) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]interface{}{
			"nombre":      item.Name,
			"cantidad":    item.Quantity,
			"precio":      item.UnitPrice,
			"total":       item.Total,
			"producto_id": item.ProductID,
		})
	}

	data := map[string]interface{}{
		"numero":      order.Number,
		"subtotal":    order.Subtotal,
		"impuesto":    order.Tax,
		"envio":       order.Shipping,
		"descuento":   order.Discount,
		"total":       order.Total,
		"moneda":      order.Currency,
		"origen":      order.Origin,
		"estado":      order.Status,
		"metodo_pago": order.PaymentMethod,
		"items":       items,
		"persona":     personDocumentID,
	}
	if order.CouponCode != "" {
		data["cupon"] = order.CouponCode
	}
	return data
}

func orderFromEntry(entry *cms.Entry) *domain.Order {
	order := &domain.Order{
		Number:        entry.String("numero"),
		Subtotal:      entry.Float("subtotal"),
		Tax:           entry.Float("impuesto"),
		Shipping:      entry.Float("envio"),
		Discount:      entry.Float("descuento"),
		Total:         entry.Float("total"),
		Currency:      entry.String("moneda"),
		Origin:        entry.String("origen"),
		Status:        entry.String("estado"),
		PaymentMethod: entry.String("metodo_pago"),
		CouponCode:    entry.String("cupon"),
	}
	for _, raw := range entry.Slice("items") {
		if obj, ok := raw.(map[string]interface{}); ok {
			item := domain.LineItem{}
			item.Name, _ = obj["nombre"].(string)
			if qty, ok := obj["cantidad"].(float64); ok {
				item.Quantity = int(qty)
			}
			item.UnitPrice, _ = obj["precio"].(float64)
			item.Total, _ = obj["total"].(float64)
			if id, ok := obj["producto_id"].(float64); ok {
				item.ProductID = int64(id)
			}
			order.Items = append(order.Items, item)
		}
	}
	return order
}

func couponFromEntry(entry *cms.Entry) *domain.Coupon {
	coupon := &domain.Coupon{
		Code:   entry.String("codigo"),
		Origin: entry.String("origen"),
		Type:   entry.String("tipo"),
		Scope:  entry.String("alcance"),
		Amount: entry.Float("monto"),
	}
	if raw := entry.String("expira"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			coupon.ExpiresAt = parsed
		}
	}
	return coupon
}

func toEventOutcomes(results map[string]transport.PlatformResult) map[string]events.PlatformOutcome {
	outcomes := make(map[string]events.PlatformOutcome, len(results))
	for site, r := range results {
		outcomes[site] = events.PlatformOutcome{
			Success:    r.Success,
			ExternalID: r.ExternalID,
			Error:      r.Error,
		}
	}
	return outcomes
}
