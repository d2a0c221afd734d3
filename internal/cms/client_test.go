package cms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backoffice_backend/platform/apperr"
	"backoffice_backend/platform/config"
	"backoffice_backend/platform/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		CMSBaseURL:  server.URL,
		CMSAPIToken: "test-token",
		CMSTimeout:  2 * time.Second,
	}
	return NewClient(cfg, logger.New("development")), server
}

func TestDecodeEntryFlattensAttributes(t *testing.T) {
	nested := decodeEntry(map[string]interface{}{
		"id": float64(42),
		"attributes": map[string]interface{}{
			"documentId": "abc123",
			"nombre":     "Juan",
			"rut":        "12345678-9",
		},
	})
	if nested.ID != 42 || nested.DocumentID != "abc123" {
		t.Fatalf("nested shape not lifted: %+v", nested)
	}
	if nested.String("nombre") != "Juan" {
		t.Fatalf("nested attribute missing: %+v", nested.Attributes)
	}

	flat := decodeEntry(map[string]interface{}{
		"id":         float64(7),
		"documentId": "xyz789",
		"nombre":     "Ana",
	})
	if flat.ID != 7 || flat.DocumentID != "xyz789" || flat.String("nombre") != "Ana" {
		t.Fatalf("flat shape mishandled: %+v", flat)
	}
}

func TestQueryValues(t *testing.T) {
	values := NewQuery().
		FilterEq("rut", "123456789").
		Populate("persona").
		Page(2, 50).
		Values()

	if got := values.Get("filters[rut][$eq]"); got != "123456789" {
		t.Fatalf("filter encoding = %q", got)
	}
	if got := values.Get("populate[0]"); got != "persona" {
		t.Fatalf("populate encoding = %q", got)
	}
	if values.Get("pagination[page]") != "2" || values.Get("pagination[pageSize]") != "50" {
		t.Fatal("pagination encoding wrong")
	}

	nested := NewQuery().Filter("correos.email", OpEqi, "a@b.cl").Values()
	if got := nested.Get("filters[correos][email][$eqi]"); got != "a@b.cl" {
		t.Fatalf("nested filter encoding = %q", got)
	}
}

func TestListDecodesBothShapes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": 1, "attributes": {"documentId": "a1", "nombre": "Uno"}},
				{"id": 2, "documentId": "b2", "nombre": "Dos"}
			],
			"meta": {"pagination": {"page": 1, "pageSize": 25, "pageCount": 1, "total": 2}}
		}`))
	})

	result, err := client.List(context.Background(), CollectionPersonas, nil)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	if result.Entries[0].DocumentID != "a1" || result.Entries[1].DocumentID != "b2" {
		t.Fatalf("document ids not decoded: %+v", result.Entries)
	}
	if result.Pagination.Total != 2 {
		t.Fatalf("pagination not decoded: %+v", result.Pagination)
	}
}

func TestGetMapsNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"status": 404, "message": "Not Found"}}`))
	})

	_, err := client.Get(context.Background(), CollectionPersonas, "missing", nil)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestAuthFailureRelaysUpstreamStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"status": 403, "message": "Forbidden"}}`))
	})

	_, err := client.List(context.Background(), CollectionPersonas, nil)
	domainErr, ok := err.(*apperr.Error)
	if !ok {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if domainErr.HTTPStatus() != http.StatusForbidden {
		t.Fatalf("expected upstream 403 to be relayed, got %d", domainErr.HTTPStatus())
	}
}

func TestTransportErrorMapsToUnavailable(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.List(context.Background(), CollectionPersonas, nil)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected Unavailable, got %v", err)
	}
}

func TestCreateSendsDataEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data": {"id": 9, "documentId": "new9", "nombre": "Nueva"}}`))
	})

	entry, err := client.Create(context.Background(), CollectionColegios, map[string]interface{}{"nombre": "Nueva"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if entry.DocumentID != "new9" {
		t.Fatalf("created entry = %+v", entry)
	}
}
