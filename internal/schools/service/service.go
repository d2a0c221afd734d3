// Package service proxies school CRUD to the colegios collection and runs
// spreadsheet imports.
package service

import (
	"context"
	"io"

	"backoffice_backend/internal/cms"
	"backoffice_backend/internal/events"
	"backoffice_backend/internal/schools/domain"
	"backoffice_backend/internal/schools/importer"
	"backoffice_backend/internal/schools/transport"
	"backoffice_backend/platform/apperr"
	"backoffice_backend/platform/logger"
)

// CMSClient is the slice of the CMS client the service needs.
type CMSClient interface {
	List(ctx context.Context, collection string, query *cms.Query) (*cms.ListResult, error)
	Get(ctx context.Context, collection, documentID string, query *cms.Query) (*cms.Entry, error)
	Create(ctx context.Context, collection string, data map[string]interface{}) (*cms.Entry, error)
	Update(ctx context.Context, collection, documentID string, data map[string]interface{}) (*cms.Entry, error)
	Delete(ctx context.Context, collection, documentID string) error
}

type Service struct {
	cms      CMSClient
	importer *importer.Importer
	bus      events.Bus
	log      *logger.Logger
}

func New(cmsClient CMSClient, imp *importer.Importer, bus events.Bus, log *logger.Logger) *Service {
	return &Service{cms: cmsClient, importer: imp, bus: bus, log: log}
}

// List returns a filtered page of schools.
func (s *Service) List(ctx context.Context, filters transport.ListSchoolsFilters) (*transport.ListSchoolsResponse, error) {
	query := cms.NewQuery().Page(filters.Page, filters.PageSize).Sort("nombre:asc")
	if filters.Region != "" {
		query.FilterEq("region", filters.Region)
	}
	if filters.Comuna != "" {
		query.FilterEq("comuna", filters.Comuna)
	}
	if filters.Name != "" {
		query.Filter("nombre", cms.OpContainsi, filters.Name)
	}
	if filters.RBD != "" {
		query.FilterEq("rbd", filters.RBD)
	}

	result, err := s.cms.List(ctx, cms.CollectionColegios, query)
	if err != nil {
		return nil, err
	}

	schools := make([]*domain.School, 0, len(result.Entries))
	for i := range result.Entries {
		schools = append(schools, domain.FromEntry(&result.Entries[i]))
	}

	return &transport.ListSchoolsResponse{
		Schools:  schools,
		Page:     result.Pagination.Page,
		PageSize: result.Pagination.PageSize,
		Total:    result.Pagination.Total,
	}, nil
}

// Get returns one school by document id.
func (s *Service) Get(ctx context.Context, documentID string) (*domain.School, error) {
	entry, err := s.cms.Get(ctx, cms.CollectionColegios, documentID, nil)
	if err != nil {
		return nil, err
	}
	return domain.FromEntry(entry), nil
}

// Create writes a new school, enforcing RBD uniqueness.
func (s *Service) Create(ctx context.Context, input transport.SchoolInput) (*domain.School, error) {
	existing, err := s.cms.List(ctx, cms.CollectionColegios,
		cms.NewQuery().FilterEq("rbd", input.RBD).Page(1, 1))
	if err != nil {
		return nil, err
	}
	if len(existing.Entries) > 0 {
		return nil, apperr.Conflict("a school with RBD " + input.RBD + " already exists")
	}

	entry, err := s.cms.Create(ctx, cms.CollectionColegios, input.School().Data())
	if err != nil {
		return nil, err
	}
	return domain.FromEntry(entry), nil
}

// Update patches an existing school.
func (s *Service) Update(ctx context.Context, documentID string, input transport.SchoolInput) (*domain.School, error) {
	entry, err := s.cms.Update(ctx, cms.CollectionColegios, documentID, input.School().Data())
	if err != nil {
		return nil, err
	}
	return domain.FromEntry(entry), nil
}

// Delete removes a school by document id.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	return s.cms.Delete(ctx, cms.CollectionColegios, documentID)
}

// Import runs the spreadsheet importer and emits the run summary event.
func (s *Service) Import(ctx context.Context, fileName, contentType string, reader io.Reader) (*importer.Result, error) {
	result, err := s.importer.Run(ctx, fileName, contentType, reader)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.SchoolsImported{
		BaseEvent: events.NewBaseEvent(),
		RunID:     result.RunID,
		FileName:  result.FileName,
		Total:     result.Total,
		Created:   result.Created,
		Updated:   result.Updated,
		Failed:    result.Failed,
	})

	return result, nil
}
