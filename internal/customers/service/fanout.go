package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"backoffice_backend/internal/commerce"
	"backoffice_backend/internal/customers/domain"
	"backoffice_backend/internal/customers/transport"
)

// PlatformGateway is one storefront site as the fan-out sees it.
type PlatformGateway interface {
	Name() string
	UpsertCustomerByEmail(ctx context.Context, payload *commerce.CustomerRequest) (*commerce.Customer, error)
}

// GatewaySelector resolves the requested site names to gateways. An empty
// list selects every configured site.
type GatewaySelector func(names []string) ([]PlatformGateway, error)

// fanOut pushes the customer to each selected site concurrently. Every
// goroutine writes its outcome to its own result slot and returns nil, so a
// failing site never cancels its siblings. An unknown site name in the
// request yields a single failed pseudo-result instead of an error: the
// canonical write has already happened.
func (s *Service) fanOut(ctx context.Context, person *domain.Person, req transport.UpsertCustomerRequest) map[string]transport.PlatformResult {
	email := person.PrimaryEmail()
	if email == "" {
		email = firstEmail(req.Emails)
	}
	if email == "" {
		return map[string]transport.PlatformResult{}
	}

	gateways, err := s.gateways(req.Platforms)
	if err != nil {
		return map[string]transport.PlatformResult{"_selection": {Success: false, Error: err.Error()}}
	}
	if len(gateways) == 0 {
		return map[string]transport.PlatformResult{}
	}

	payload := buildCustomerPayload(person, email, req)

	type slot struct {
		site   string
		result transport.PlatformResult
	}
	slots := make([]slot, len(gateways))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, gateway := range gateways {
		group.Go(func() error {
			customer, err := gateway.UpsertCustomerByEmail(groupCtx, payload)
			if err != nil {
				s.log.UpstreamError(gateway.Name(), "upsert_customer", err)
				slots[i] = slot{site: gateway.Name(), result: transport.PlatformResult{Success: false, Error: err.Error()}}
				return nil
			}
			slots[i] = slot{site: gateway.Name(), result: transport.PlatformResult{
				Success:    true,
				Data:       customer,
				ExternalID: customer.ID,
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

// buildCustomerPayload maps the canonical person onto the storefront
// customer shape. The display name split is lossy: first token becomes
// first_name, the remainder last_name.
func buildCustomerPayload(person *domain.Person, email string, req transport.UpsertCustomerRequest) *commerce.CustomerRequest {
	firstName, lastName := domain.SplitDisplayName(person.FullName)
	if firstName == "" {
		firstName = person.GivenNames
		lastName = person.PaternalName
	}

	billing := &commerce.Address{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Country:   "CL",
	}
	if len(person.Phones) > 0 {
		billing.Phone = person.Phones[0].Normalized
		if billing.Phone == "" {
			billing.Phone = person.Phones[0].Raw
		}
	}
	applyAddress(billing, req.Billing)

	payload := &commerce.CustomerRequest{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Billing:   billing,
		MetaData: []commerce.MetaData{
			{Key: "rut", Value: person.RUT},
			{Key: "persona_document_id", Value: person.DocumentID},
		},
	}

	if req.Shipping != nil {
		shipping := &commerce.Address{FirstName: firstName, LastName: lastName, Country: "CL"}
		applyAddress(shipping, req.Shipping)
		payload.Shipping = shipping
	}

	return payload
}

func applyAddress(dst *commerce.Address, src *transport.AddressInput) {
	if src == nil {
		return
	}
	dst.Address1 = src.Address1
	dst.Address2 = src.Address2
	dst.City = src.City
	dst.State = src.State
	dst.Postcode = src.Postcode
	if src.Country != "" {
		dst.Country = src.Country
	}
	if src.Phone != "" {
		dst.Phone = src.Phone
	}
}
