package service

import (
	"context"

	"backoffice_backend/internal/cms"
	"backoffice_backend/internal/customers/domain"
	"backoffice_backend/internal/customers/transport"
	"backoffice_backend/platform/logger"
)

// CrossRefWriter maintains the wo-clientes shadow records that tie a
// canonical person to its storefront copies. All writes are best-effort:
// failures are logged and the sync result is unaffected.
type CrossRefWriter struct {
	cms CMSClient
	log *logger.Logger
}

func NewCrossRefWriter(cmsClient CMSClient, log *logger.Logger) *CrossRefWriter {
	return &CrossRefWriter{cms: cmsClient, log: log}
}

// Write patches the existing shadow record for (person, site) or creates one.
func (w *CrossRefWriter) Write(ctx context.Context, site string, person *domain.Person, result transport.PlatformResult) {
	data := map[string]interface{}{
		"nombre":      person.FullName,
		"email":       person.PrimaryEmail(),
		"persona":     person.DocumentID,
		"origen":      site,
		"external_id": result.ExternalID,
		"payload":     result.Data,
	}

	existing, err := w.find(ctx, site, person)
	if err != nil {
		w.log.SideEffectFailed("crossref_lookup", err)
		return
	}

	if existing != "" {
		if _, err := w.cms.Update(ctx, cms.CollectionWoClients, existing, data); err != nil {
			w.log.SideEffectFailed("crossref_update", err)
		}
		return
	}

	if _, err := w.cms.Create(ctx, cms.CollectionWoClients, data); err != nil {
		w.log.SideEffectFailed("crossref_create", err)
	}
}

// find locates the shadow record for (person, site) by the persona relation,
// falling back to an email match for rows written before the relation
// existed.
func (w *CrossRefWriter) find(ctx context.Context, site string, person *domain.Person) (string, error) {
	result, err := w.cms.List(ctx, cms.CollectionWoClients, cms.NewQuery().
		FilterEq("origen", site).
		Filter("persona.documentId", cms.OpEq, person.DocumentID).
		Page(1, 1))
	if err != nil {
		return "", err
	}
	if len(result.Entries) > 0 {
		return result.Entries[0].DocumentID, nil
	}

	email := person.PrimaryEmail()
	if email == "" {
		return "", nil
	}
	result, err = w.cms.List(ctx, cms.CollectionWoClients, cms.NewQuery().
		FilterEq("origen", site).
		Filter("email", cms.OpEqi, email).
		Page(1, 1))
	if err != nil {
		return "", err
	}
	if len(result.Entries) == 0 {
		return "", nil
	}
	return result.Entries[0].DocumentID, nil
}
