// Package commerce provides REST clients for the WooCommerce-shaped
// storefront platforms, one client per configured site.
package commerce

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"backoffice_backend/platform/apperr"
	"backoffice_backend/platform/config"
	"backoffice_backend/platform/logger"

	"github.com/go-resty/resty/v2"
)

const apiBasePath = "/wp-json/wc/v3"

// Client talks to one storefront site.
type Client struct {
	site config.CommerceSite
	rest *resty.Client
	log  *logger.Logger
}

// NewClient creates a client for one site using consumer key/secret basic auth.
func NewClient(site config.CommerceSite, timeout time.Duration, log *logger.Logger) *Client {
	rest := resty.New().
		SetBaseURL(site.BaseURL + apiBasePath).
		SetBasicAuth(site.ConsumerKey, site.ConsumerSecret).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{site: site, rest: rest, log: log}
}

// Name returns the configured site name, used as the platform tag.
func (c *Client) Name() string {
	return c.site.Name
}

// FindCustomerByEmail looks a customer up by exact email. A miss returns
// (nil, nil); only transport or auth problems are errors.
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	var customers []Customer
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("email", email).
		SetResult(&customers).
		Get("/customers")
	if err := c.checkResponse(resp, err, "find customer"); err != nil {
		return nil, err
	}

	if len(customers) == 0 {
		return nil, nil
	}
	return &customers[0], nil
}

// CreateCustomer creates a customer on the site.
func (c *Client) CreateCustomer(ctx context.Context, payload *CustomerRequest) (*Customer, error) {
	var customer Customer
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&customer).
		Post("/customers")
	if err := c.checkResponse(resp, err, "create customer"); err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpdateCustomer updates an existing customer by its platform id.
func (c *Client) UpdateCustomer(ctx context.Context, id int64, payload *CustomerRequest) (*Customer, error) {
	var customer Customer
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&customer).
		Put(fmt.Sprintf("/customers/%d", id))
	if err := c.checkResponse(resp, err, "update customer"); err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpsertCustomerByEmail creates the customer, or updates it when a record
// with the same email already exists on the site.
func (c *Client) UpsertCustomerByEmail(ctx context.Context, payload *CustomerRequest) (*Customer, error) {
	existing, err := c.FindCustomerByEmail(ctx, payload.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return c.UpdateCustomer(ctx, existing.ID, payload)
	}
	return c.CreateCustomer(ctx, payload)
}

// CreateOrder creates an order on the site.
func (c *Client) CreateOrder(ctx context.Context, payload *OrderRequest) (*Order, error) {
	var order Order
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&order).
		Post("/orders")
	if err := c.checkResponse(resp, err, "create order"); err != nil {
		return nil, err
	}
	return &order, nil
}

// checkResponse maps transport and status failures onto apperr kinds.
func (c *Client) checkResponse(resp *resty.Response, err error, operation string) error {
	if err != nil {
		c.log.UpstreamError(c.site.Name, operation, err)
		return apperr.Wrap(apperr.KindUnavailable, c.site.Name+" unreachable", err)
	}
	if resp == nil {
		return apperr.Unavailable(c.site.Name + " returned no response")
	}
	if !resp.IsError() {
		return nil
	}

	message := fmt.Sprintf("%s: %s returned %d", operation, c.site.Name, resp.StatusCode())
	var body apiError
	if decodeErr := decodeAPIError(resp.Body(), &body); decodeErr == nil && body.Message != "" {
		message = fmt.Sprintf("%s: %s", operation, body.Message)
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		c.log.UpstreamError(c.site.Name, operation, fmt.Errorf("status %d", resp.StatusCode()))
		return apperr.New(apperr.KindUnauthorized, message).WithStatus(resp.StatusCode())
	case http.StatusNotFound:
		return apperr.NotFound(message)
	case http.StatusBadRequest:
		return apperr.BadRequest(message)
	default:
		c.log.UpstreamError(c.site.Name, operation, fmt.Errorf("status %d", resp.StatusCode()))
		return apperr.Unavailable(message)
	}
}
