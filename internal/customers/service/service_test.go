package service

import (
	"context"
	"strings"
	"testing"

	"backoffice_backend/internal/cms"
	"backoffice_backend/internal/commerce"
	"backoffice_backend/internal/customers/resolver"
	"backoffice_backend/internal/customers/transport"
	"backoffice_backend/internal/events"
	"backoffice_backend/platform/apperr"
	"backoffice_backend/platform/logger"
)

type cmsCall struct {
	method     string
	collection string
	documentID string
	data       map[string]interface{}
}

type fakeCMS struct {
	calls     []cmsCall
	updateErr error
	nextID    int64
}

func (f *fakeCMS) List(_ context.Context, collection string, _ *cms.Query) (*cms.ListResult, error) {
	f.calls = append(f.calls, cmsCall{method: "list", collection: collection})
	return &cms.ListResult{}, nil
}

func (f *fakeCMS) Get(_ context.Context, collection, documentID string, _ *cms.Query) (*cms.Entry, error) {
	f.calls = append(f.calls, cmsCall{method: "get", collection: collection, documentID: documentID})
	return &cms.Entry{DocumentID: documentID, Attributes: map[string]interface{}{}}, nil
}

func (f *fakeCMS) Create(_ context.Context, collection string, data map[string]interface{}) (*cms.Entry, error) {
	f.calls = append(f.calls, cmsCall{method: "create", collection: collection, data: data})
	f.nextID++
	attrs := map[string]interface{}{}
	for k, v := range data {
		attrs[k] = v
	}
	return &cms.Entry{ID: f.nextID, DocumentID: "doc-created", Attributes: attrs}, nil
}

func (f *fakeCMS) Update(_ context.Context, collection, documentID string, data map[string]interface{}) (*cms.Entry, error) {
	f.calls = append(f.calls, cmsCall{method: "update", collection: collection, documentID: documentID, data: data})
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	attrs := map[string]interface{}{}
	for k, v := range data {
		attrs[k] = v
	}
	return &cms.Entry{DocumentID: documentID, Attributes: attrs}, nil
}

func (f *fakeCMS) Delete(_ context.Context, collection, documentID string) error {
	f.calls = append(f.calls, cmsCall{method: "delete", collection: collection, documentID: documentID})
	return nil
}

func (f *fakeCMS) writesTo(collection string) int {
	n := 0
	for _, call := range f.calls {
		if call.collection == collection && (call.method == "create" || call.method == "update") {
			n++
		}
	}
	return n
}

type fakeResolver struct {
	outcome    *resolver.Outcome
	rutOutcome *resolver.Outcome
}

func (f *fakeResolver) Resolve(context.Context, resolver.Keys) (*resolver.Outcome, error) {
	if f.outcome == nil {
		return &resolver.Outcome{}, nil
	}
	return f.outcome, nil
}

func (f *fakeResolver) ResolveByRUT(context.Context, string) (*resolver.Outcome, error) {
	if f.rutOutcome == nil {
		return &resolver.Outcome{}, nil
	}
	return f.rutOutcome, nil
}

type fakeGateway struct {
	name string
	err  error
	got  *commerce.CustomerRequest
}

func (f *fakeGateway) Name() string { return f.name }

func (f *fakeGateway) UpsertCustomerByEmail(_ context.Context, payload *commerce.CustomerRequest) (*commerce.Customer, error) {
	f.got = payload
	if f.err != nil {
		return nil, f.err
	}
	return &commerce.Customer{ID: 77, Email: payload.Email}, nil
}

func selectorFor(gateways ...*fakeGateway) GatewaySelector {
	return func(names []string) ([]PlatformGateway, error) {
		out := make([]PlatformGateway, 0, len(gateways))
		for _, g := range gateways {
			if len(names) == 0 {
				out = append(out, g)
				continue
			}
			for _, n := range names {
				if n == g.name {
					out = append(out, g)
				}
			}
		}
		return out, nil
	}
}

func newTestService(cmsClient CMSClient, res Resolver, sel GatewaySelector) *Service {
	log := logger.New("development")
	return New(cmsClient, res, sel, events.NewInMemoryBus(log), log)
}

func validRequest() transport.UpsertCustomerRequest {
	return transport.UpsertCustomerRequest{
		RUT:          "11.111.111-1",
		GivenNames:   "Ana María",
		PaternalName: "Rojas",
		Emails:       []transport.EmailInput{{Address: "ana@liceo.cl"}},
		Phones:       []transport.PhoneInput{{Number: "+56 9 8765 4321"}},
	}
}

func TestUpsertCreatesWithDerivedFullName(t *testing.T) {
	cmsClient := &fakeCMS{}
	gateway := &fakeGateway{name: "tienda"}
	svc := newTestService(cmsClient, &fakeResolver{}, selectorFor(gateway))

	resp, err := svc.Upsert(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || !resp.Created {
		t.Fatalf("response = %+v", resp)
	}

	var created *cmsCall
	for i := range cmsClient.calls {
		if cmsClient.calls[i].method == "create" && cmsClient.calls[i].collection == cms.CollectionPersonas {
			created = &cmsClient.calls[i]
		}
	}
	if created == nil {
		t.Fatal("no persona create call recorded")
	}
	if got := created.data["nombre_completo"]; got != "Ana María Rojas" {
		t.Fatalf("derived full name = %v", got)
	}
	if _, hasPhones := created.data["telefonos"]; hasPhones {
		t.Fatal("phones must go in the follow-up update, not the create")
	}
}

func TestUpsertPhoneFollowUpFailureIsNotFatal(t *testing.T) {
	cmsClient := &fakeCMS{updateErr: apperr.Unavailable("cms down")}
	svc := newTestService(cmsClient, &fakeResolver{}, selectorFor())

	resp, err := svc.Upsert(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("phone follow-up failure surfaced: %v", err)
	}
	if !resp.Success {
		t.Fatal("creation succeeded, response must say so")
	}
}

func TestUpsertValidationAbortsBeforeAnyWrite(t *testing.T) {
	cmsClient := &fakeCMS{}
	svc := newTestService(cmsClient, &fakeResolver{}, selectorFor())

	req := validRequest()
	req.Emails = []transport.EmailInput{{Address: "not-an-email"}}

	_, err := svc.Upsert(context.Background(), req)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := cmsClient.writesTo(cms.CollectionPersonas); n != 0 {
		t.Fatalf("validation failure must not write, got %d writes", n)
	}
}

func TestUpsertConflictOnDuplicateRUT(t *testing.T) {
	cmsClient := &fakeCMS{}
	res := &fakeResolver{
		rutOutcome: &resolver.Outcome{Found: true, Entry: &cms.Entry{DocumentID: "doc-existing"}},
	}
	svc := newTestService(cmsClient, res, selectorFor())

	_, err := svc.Upsert(context.Background(), validRequest())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if n := cmsClient.writesTo(cms.CollectionPersonas); n != 0 {
		t.Fatalf("conflict must not write, got %d writes", n)
	}
}

func TestFanOutSiteFailureNeverAbortsSiblings(t *testing.T) {
	cmsClient := &fakeCMS{}
	healthy := &fakeGateway{name: "tienda"}
	broken := &fakeGateway{name: "mayorista", err: apperr.Unavailable("site down")}
	svc := newTestService(cmsClient, &fakeResolver{}, selectorFor(healthy, broken))

	resp, err := svc.Upsert(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success {
		t.Fatal("canonical write succeeded, response must be a success")
	}
	if len(resp.Platforms) != 2 {
		t.Fatalf("expected results for both sites, got %v", resp.Platforms)
	}
	if !resp.Platforms["tienda"].Success {
		t.Fatalf("healthy site dragged down: %+v", resp.Platforms["tienda"])
	}
	if resp.Platforms["mayorista"].Success || resp.Platforms["mayorista"].Error == "" {
		t.Fatalf("broken site must report its error: %+v", resp.Platforms["mayorista"])
	}
}

func TestFanOutSplitsDisplayNameLossily(t *testing.T) {
	cmsClient := &fakeCMS{}
	gateway := &fakeGateway{name: "tienda"}
	svc := newTestService(cmsClient, &fakeResolver{}, selectorFor(gateway))

	req := validRequest()
	req.FullName = "Ana María Rojas Fuentes"

	if _, err := svc.Upsert(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gateway.got == nil {
		t.Fatal("gateway never called")
	}
	if gateway.got.FirstName != "Ana" || gateway.got.LastName != "María Rojas Fuentes" {
		t.Fatalf("split = %q / %q", gateway.got.FirstName, gateway.got.LastName)
	}
}

func TestCrossRefWrittenOnlyForSuccessfulSites(t *testing.T) {
	cmsClient := &fakeCMS{}
	healthy := &fakeGateway{name: "tienda"}
	broken := &fakeGateway{name: "mayorista", err: apperr.Unavailable("site down")}
	svc := newTestService(cmsClient, &fakeResolver{}, selectorFor(healthy, broken))

	if _, err := svc.Upsert(context.Background(), validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := cmsClient.writesTo(cms.CollectionWoClients); n != 1 {
		t.Fatalf("expected one shadow write, got %d", n)
	}
}

func TestUpdateNeverRederivesFullName(t *testing.T) {
	cmsClient := &fakeCMS{}
	res := &fakeResolver{
		outcome: &resolver.Outcome{Found: true, Entry: &cms.Entry{DocumentID: "doc-1", Attributes: map[string]interface{}{}}},
	}
	svc := newTestService(cmsClient, res, selectorFor())

	req := transport.UpsertCustomerRequest{
		RUT:          "11.111.111-1",
		PaternalName: "Pérez",
		Emails:       []transport.EmailInput{{Address: "ana@liceo.cl"}},
	}
	if _, err := svc.Update(context.Background(), "doc-1", req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, call := range cmsClient.calls {
		if call.method == "update" && call.collection == cms.CollectionPersonas {
			if _, ok := call.data["nombre_completo"]; ok {
				t.Fatal("update must not re-derive nombre_completo")
			}
			return
		}
	}
	t.Fatal("no persona update recorded")
}

func TestUpdateUnresolvedIsNotFound(t *testing.T) {
	svc := newTestService(&fakeCMS{}, &fakeResolver{}, selectorFor())

	_, err := svc.Update(context.Background(), "missing", transport.UpsertCustomerRequest{})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpsertFormatsRUTForStorage(t *testing.T) {
	cmsClient := &fakeCMS{}
	svc := newTestService(cmsClient, &fakeResolver{}, selectorFor())

	req := validRequest()
	req.RUT = "111111111"

	if _, err := svc.Upsert(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, call := range cmsClient.calls {
		if call.method == "create" && call.collection == cms.CollectionPersonas {
			stored, _ := call.data["rut"].(string)
			if !strings.Contains(stored, "-") {
				t.Fatalf("stored rut not formatted: %q", stored)
			}
			return
		}
	}
	t.Fatal("no persona create recorded")
}
