package service

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"backoffice_backend/internal/cms"
	"backoffice_backend/internal/customers/domain"
	"backoffice_backend/internal/customers/transport"
	"backoffice_backend/platform/logger"
)

// crossrefCMS answers wo-clientes lookups keyed on decoded query substrings.
type crossrefCMS struct {
	fakeCMS
	rows map[string]cms.Entry
}

func (f *crossrefCMS) List(_ context.Context, collection string, query *cms.Query) (*cms.ListResult, error) {
	f.calls = append(f.calls, cmsCall{method: "list", collection: collection})
	decoded, _ := url.QueryUnescape(query.Values().Encode())
	for needle, entry := range f.rows {
		if strings.Contains(decoded, needle) {
			return &cms.ListResult{Entries: []cms.Entry{entry}}, nil
		}
	}
	return &cms.ListResult{}, nil
}

func crossrefPerson() *domain.Person {
	return &domain.Person{
		DocumentID: "doc-1",
		FullName:   "Ana Rojas",
		Emails:     []domain.EmailRecord{{Address: "ana@liceo.cl"}},
	}
}

func TestCrossRefUpdatesShadowLinkedToPerson(t *testing.T) {
	cmsClient := &crossrefCMS{rows: map[string]cms.Entry{
		"filters[persona][documentId][$eq]=doc-1": {DocumentID: "wo-1"},
	}}
	writer := NewCrossRefWriter(cmsClient, logger.New("development"))

	writer.Write(context.Background(), "tienda", crossrefPerson(), transport.PlatformResult{Success: true, ExternalID: 5})

	last := cmsClient.calls[len(cmsClient.calls)-1]
	if last.method != "update" || last.documentID != "wo-1" {
		t.Fatalf("expected update of wo-1, got %s %s", last.method, last.documentID)
	}
}

func TestCrossRefFallsBackToEmailMatchForUnlinkedShadow(t *testing.T) {
	// Legacy row: carries the email but no persona relation.
	cmsClient := &crossrefCMS{rows: map[string]cms.Entry{
		"filters[email][$eqi]=ana@liceo.cl": {DocumentID: "wo-legacy"},
	}}
	writer := NewCrossRefWriter(cmsClient, logger.New("development"))

	writer.Write(context.Background(), "tienda", crossrefPerson(), transport.PlatformResult{Success: true, ExternalID: 5})

	if n := cmsClient.writesTo(cms.CollectionWoClients); n != 1 {
		t.Fatalf("expected exactly one shadow write, got %d", n)
	}
	last := cmsClient.calls[len(cmsClient.calls)-1]
	if last.method != "update" || last.documentID != "wo-legacy" {
		t.Fatalf("expected the email-matched row to be updated, got %s %s", last.method, last.documentID)
	}
	if last.data["persona"] != "doc-1" {
		t.Fatalf("update should link the shadow back to the person, got %v", last.data["persona"])
	}
}

func TestCrossRefCreatesWhenNoShadowMatches(t *testing.T) {
	cmsClient := &crossrefCMS{rows: map[string]cms.Entry{}}
	writer := NewCrossRefWriter(cmsClient, logger.New("development"))

	writer.Write(context.Background(), "tienda", crossrefPerson(), transport.PlatformResult{Success: true, ExternalID: 5})

	last := cmsClient.calls[len(cmsClient.calls)-1]
	if last.method != "create" || last.collection != cms.CollectionWoClients {
		t.Fatalf("expected create on %s, got %s %s", cms.CollectionWoClients, last.method, last.collection)
	}
}
