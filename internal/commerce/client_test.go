package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backoffice_backend/platform/apperr"
	"backoffice_backend/platform/config"
	"backoffice_backend/platform/logger"
)

func newTestSite(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	site := config.CommerceSite{
		Name:           "tienda",
		BaseURL:        server.URL,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
	}
	return NewClient(site, 2*time.Second, logger.New("development"))
}

func TestFindCustomerByEmailMissReturnsNil(t *testing.T) {
	client := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("email"); got != "nadie@x.cl" {
			t.Errorf("email param = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	customer, err := client.FindCustomerByEmail(context.Background(), "nadie@x.cl")
	if err != nil {
		t.Fatalf("miss should not be an error: %v", err)
	}
	if customer != nil {
		t.Fatalf("expected nil customer, got %+v", customer)
	}
}

func TestUpsertCustomerUpdatesWhenEmailExists(t *testing.T) {
	var sawUpdate bool
	client := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`[{"id": 55, "email": "juan@x.cl", "first_name": "Juan"}]`))
		case r.Method == http.MethodPut && r.URL.Path == "/wp-json/wc/v3/customers/55":
			sawUpdate = true
			var payload CustomerRequest
			_ = json.NewDecoder(r.Body).Decode(&payload)
			_, _ = w.Write([]byte(`{"id": 55, "email": "juan@x.cl", "first_name": "` + payload.FirstName + `"}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	})

	customer, err := client.UpsertCustomerByEmail(context.Background(), &CustomerRequest{
		Email:     "juan@x.cl",
		FirstName: "Juan",
		LastName:  "Pérez Soto",
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if !sawUpdate {
		t.Fatal("expected existing customer to be updated, not created")
	}
	if customer.ID != 55 {
		t.Fatalf("customer id = %d", customer.ID)
	}
}

func TestUpsertCustomerCreatesOnMiss(t *testing.T) {
	client := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[]`))
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 77, "email": "ana@x.cl"}`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	customer, err := client.UpsertCustomerByEmail(context.Background(), &CustomerRequest{Email: "ana@x.cl"})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if customer.ID != 77 {
		t.Fatalf("customer id = %d", customer.ID)
	}
}

func TestCreateOrderErrorMapping(t *testing.T) {
	client := newTestSite(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code": "woocommerce_rest_error", "message": "boom"}`))
	})

	_, err := client.CreateOrder(context.Background(), &OrderRequest{})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected Unavailable, got %v", err)
	}
}

func TestRegistrySelect(t *testing.T) {
	cfg := &config.Config{
		CommerceSites: []config.CommerceSite{
			{Name: "tienda", BaseURL: "http://a", ConsumerKey: "k", ConsumerSecret: "s"},
			{Name: "escolar", BaseURL: "http://b", ConsumerKey: "k", ConsumerSecret: "s"},
		},
		CommerceTimeout: time.Second,
	}
	registry := NewRegistry(cfg, logger.New("development"))

	all, err := registry.Select(nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("Select(nil) = %d clients, err %v", len(all), err)
	}

	one, err := registry.Select([]string{"escolar"})
	if err != nil || len(one) != 1 || one[0].Name() != "escolar" {
		t.Fatalf("Select(escolar) wrong: %v %v", one, err)
	}

	if _, err := registry.Select([]string{"desconocida"}); err == nil {
		t.Fatal("unknown site should fail")
	}
}
