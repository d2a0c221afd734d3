// Package service implements the customer upsert orchestration: canonical
// writes against the CMS, concurrent storefront fan-out, and the shadow
// cross-reference records.
package service

import (
	"context"

	"backoffice_backend/internal/cms"
	"backoffice_backend/internal/customers/domain"
	"backoffice_backend/internal/customers/resolver"
	"backoffice_backend/internal/customers/transport"
	"backoffice_backend/internal/events"
	"backoffice_backend/platform/apperr"
	"backoffice_backend/platform/logger"
	"backoffice_backend/platform/rut"
)

// CMSClient is the slice of the CMS client the service needs.
type CMSClient interface {
	List(ctx context.Context, collection string, query *cms.Query) (*cms.ListResult, error)
	Get(ctx context.Context, collection, documentID string, query *cms.Query) (*cms.Entry, error)
	Create(ctx context.Context, collection string, data map[string]interface{}) (*cms.Entry, error)
	Update(ctx context.Context, collection, documentID string, data map[string]interface{}) (*cms.Entry, error)
	Delete(ctx context.Context, collection, documentID string) error
}

// Resolver locates existing canonical records.
type Resolver interface {
	Resolve(ctx context.Context, keys resolver.Keys) (*resolver.Outcome, error)
	ResolveByRUT(ctx context.Context, taxID string) (*resolver.Outcome, error)
}

type Service struct {
	cms      CMSClient
	resolver Resolver
	gateways GatewaySelector
	crossref *CrossRefWriter
	bus      events.Bus
	log      *logger.Logger
}

func New(cmsClient CMSClient, res Resolver, gateways GatewaySelector, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		cms:      cmsClient,
		resolver: res,
		gateways: gateways,
		crossref: NewCrossRefWriter(cmsClient, log),
		bus:      bus,
		log:      log,
	}
}

// Upsert creates the canonical record when the identity cannot be resolved,
// updates it otherwise, then fans the customer out to the selected sites.
// Validation and conflict failures abort before any write.
func (s *Service) Upsert(ctx context.Context, req transport.UpsertCustomerRequest) (*transport.UpsertCustomerResponse, error) {
	req.RUT = rut.Format(req.RUT)

	outcome, err := s.resolver.Resolve(ctx, resolver.Keys{
		RUT:   req.RUT,
		Email: firstEmail(req.Emails),
	})
	if err != nil {
		return nil, err
	}

	var person *domain.Person
	created := false

	if outcome.Found {
		person, err = s.applyUpdate(ctx, outcome.Entry.DocumentID, req)
	} else {
		person, err = s.createPerson(ctx, req)
		created = true
	}
	if err != nil {
		return nil, err
	}

	return s.finish(ctx, person, req, created), nil
}

// Update applies a partial update to an existing record addressed by
// document id, then fans out. The full name is never re-derived here.
func (s *Service) Update(ctx context.Context, documentID string, req transport.UpsertCustomerRequest) (*transport.UpsertCustomerResponse, error) {
	outcome, err := s.resolver.Resolve(ctx, resolver.Keys{DocumentID: documentID, RUT: req.RUT})
	if err != nil {
		return nil, err
	}
	if !outcome.Found {
		return nil, apperr.NotFound("customer not found")
	}

	person, err := s.applyUpdate(ctx, outcome.Entry.DocumentID, req)
	if err != nil {
		return nil, err
	}

	return s.finish(ctx, person, req, false), nil
}

// Get returns the canonical record for a document id.
func (s *Service) Get(ctx context.Context, documentID string) (*domain.Person, error) {
	entry, err := s.cms.Get(ctx, cms.CollectionPersonas, documentID, cms.NewQuery().Populate("correos", "telefonos"))
	if err != nil {
		return nil, err
	}
	return domain.FromEntry(entry), nil
}

// List returns a page of canonical records.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]*domain.Person, *cms.Pagination, error) {
	result, err := s.cms.List(ctx, cms.CollectionPersonas, cms.NewQuery().
		Populate("correos", "telefonos").
		Page(page, pageSize).
		Sort("nombre_completo:asc"))
	if err != nil {
		return nil, nil, err
	}

	people := make([]*domain.Person, 0, len(result.Entries))
	for i := range result.Entries {
		people = append(people, domain.FromEntry(&result.Entries[i]))
	}
	return people, &result.Pagination, nil
}

// Delete removes the canonical record. Storefront copies are left in place.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	return s.cms.Delete(ctx, cms.CollectionPersonas, documentID)
}

// createPerson validates the mandatory fields, re-checks RUT uniqueness and
// writes the record. Phones go in a follow-up update whose failure is logged
// but never surfaced: the parent record is the success boundary.
func (s *Service) createPerson(ctx context.Context, req transport.UpsertCustomerRequest) (*domain.Person, error) {
	if err := validateForCreate(req); err != nil {
		return nil, err
	}

	existing, err := s.resolver.ResolveByRUT(ctx, req.RUT)
	if err != nil {
		return nil, err
	}
	if existing.Found {
		return nil, apperr.Conflict("a customer with this RUT already exists").
			WithDetails(map[string]string{"documentId": existing.Entry.DocumentID})
	}

	fullName := req.FullName
	if fullName == "" {
		fullName = domain.DeriveFullName(req.GivenNames, req.PaternalName, req.MaternalName)
	}

	data := map[string]interface{}{
		"rut":              req.RUT,
		"nombres":          req.GivenNames,
		"apellido_paterno": req.PaternalName,
		"apellido_materno": req.MaternalName,
		"nombre_completo":  fullName,
		"correos":          emailRows(req.Emails),
	}

	entry, err := s.cms.Create(ctx, cms.CollectionPersonas, data)
	if err != nil {
		return nil, err
	}

	if len(req.Phones) > 0 {
		phoneUpdate := map[string]interface{}{"telefonos": phoneRows(req.Phones)}
		if updated, err := s.cms.Update(ctx, cms.CollectionPersonas, entry.DocumentID, phoneUpdate); err != nil {
			s.log.SideEffectFailed("person_phone_update", err)
		} else {
			entry = updated
		}
	}

	return domain.FromEntry(entry), nil
}

// applyUpdate patches only the fields present in the request. nombre_completo
// is passed through when given but never re-derived from the name parts.
func (s *Service) applyUpdate(ctx context.Context, documentID string, req transport.UpsertCustomerRequest) (*domain.Person, error) {
	data := map[string]interface{}{}
	if req.GivenNames != "" {
		data["nombres"] = req.GivenNames
	}
	if req.PaternalName != "" {
		data["apellido_paterno"] = req.PaternalName
	}
	if req.MaternalName != "" {
		data["apellido_materno"] = req.MaternalName
	}
	if req.FullName != "" {
		data["nombre_completo"] = req.FullName
	}
	if req.RUT != "" {
		data["rut"] = req.RUT
	}
	if len(req.Emails) > 0 {
		data["correos"] = emailRows(req.Emails)
	}
	if len(req.Phones) > 0 {
		data["telefonos"] = phoneRows(req.Phones)
	}

	if len(data) == 0 {
		entry, err := s.cms.Get(ctx, cms.CollectionPersonas, documentID, nil)
		if err != nil {
			return nil, err
		}
		return domain.FromEntry(entry), nil
	}

	entry, err := s.cms.Update(ctx, cms.CollectionPersonas, documentID, data)
	if err != nil {
		return nil, err
	}
	return domain.FromEntry(entry), nil
}

// finish runs the storefront fan-out and cross-reference writes and emits
// the sync event. The canonical write already succeeded at this point, so
// per-site failures are reported in the response, never as errors.
func (s *Service) finish(ctx context.Context, person *domain.Person, req transport.UpsertCustomerRequest, created bool) *transport.UpsertCustomerResponse {
	results := s.fanOut(ctx, person, req)

	for site, result := range results {
		if result.Success {
			s.crossref.Write(ctx, site, person, result)
		}
	}

	s.bus.Publish(ctx, events.CustomerSynced{
		BaseEvent:        events.NewBaseEvent(),
		PersonDocumentID: person.DocumentID,
		RUT:              person.RUT,
		Created:          created,
		Platforms:        toEventOutcomes(results),
	})

	return &transport.UpsertCustomerResponse{
		Success:   true,
		Created:   created,
		Person:    person,
		Platforms: results,
	}
}

func validateForCreate(req transport.UpsertCustomerRequest) error {
	if req.FullName == "" && req.GivenNames == "" {
		return apperr.Validation("a full name or given name is required")
	}
	if req.RUT == "" {
		return apperr.Validation("rut is required")
	}
	if firstEmail(req.Emails) == "" {
		return apperr.Validation("at least one valid email is required")
	}
	return nil
}

func firstEmail(emails []transport.EmailInput) string {
	for _, e := range emails {
		if domain.ValidEmail(e.Address) {
			return e.Address
		}
	}
	return ""
}

func emailRows(emails []transport.EmailInput) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(emails))
	for _, e := range emails {
		rows = append(rows, map[string]interface{}{
			"email":     e.Address,
			"categoria": e.Category,
		})
	}
	return rows
}

func phoneRows(phones []transport.PhoneInput) []map[string]interface{} {
	records := make([]domain.PhoneRecord, 0, len(phones))
	for _, p := range phones {
		records = append(records, domain.PhoneRecord{
			Raw:      p.Number,
			Category: p.Category,
			Primary:  p.Primary,
			Active:   true,
		})
	}
	records = domain.NormalizePhones(records)

	rows := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, map[string]interface{}{
			"telefono":             r.Raw,
			"telefono_normalizado": r.Normalized,
			"categoria":            r.Category,
			"principal":            r.Primary,
			"activo":               r.Active,
		})
	}
	return rows
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
