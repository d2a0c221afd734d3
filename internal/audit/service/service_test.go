package service

import (
	"context"
	"testing"

	"backoffice_backend/internal/audit/repository"
	"backoffice_backend/internal/events"
	"backoffice_backend/platform/logger"
)

type fakeRecorder struct {
	runs []repository.SyncRun
}

func (f *fakeRecorder) Insert(_ context.Context, run repository.SyncRun) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRecorder) List(context.Context, repository.ListFilters) ([]repository.SyncRun, int, error) {
	return f.runs, len(f.runs), nil
}

func publish(t *testing.T, recorder *fakeRecorder, event events.Event) {
	t.Helper()
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	New(recorder, log).Subscribe(bus)
	if err := bus.PublishSync(context.Background(), event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
}

func TestCustomerSyncedRecordsPartialStatus(t *testing.T) {
	recorder := &fakeRecorder{}
	publish(t, recorder, events.CustomerSynced{
		BaseEvent:        events.NewBaseEvent(),
		PersonDocumentID: "doc-1",
		RUT:              "11.111.111-1",
		Platforms: map[string]events.PlatformOutcome{
			"tienda":    {Success: true, ExternalID: 5},
			"mayorista": {Success: false, Error: "site down"},
		},
	})

	if len(recorder.runs) != 1 {
		t.Fatalf("runs = %d", len(recorder.runs))
	}
	run := recorder.runs[0]
	if run.EntityKind != "customer" || run.DocumentID != "doc-1" {
		t.Fatalf("run = %+v", run)
	}
	if run.Status != StatusPartial {
		t.Fatalf("status = %q, want partial", run.Status)
	}
}

func TestOrderCreatedAllSitesDownIsFailed(t *testing.T) {
	recorder := &fakeRecorder{}
	publish(t, recorder, events.OrderCreated{
		BaseEvent:       events.NewBaseEvent(),
		OrderDocumentID: "order-1",
		Platforms: map[string]events.PlatformOutcome{
			"tienda": {Success: false, Error: "down"},
		},
	})

	if recorder.runs[0].Status != StatusFailed {
		t.Fatalf("status = %q, want failed", recorder.runs[0].Status)
	}
}

func TestSchoolsImportedStatuses(t *testing.T) {
	cases := []struct {
		total, failed int
		want          string
	}{
		{10, 0, StatusSuccess},
		{10, 3, StatusPartial},
		{10, 10, StatusFailed},
	}
	for _, tc := range cases {
		recorder := &fakeRecorder{}
		publish(t, recorder, events.SchoolsImported{
			BaseEvent: events.NewBaseEvent(),
			RunID:     "run-1",
			Total:     tc.total,
			Failed:    tc.failed,
		})
		if got := recorder.runs[0].Status; got != tc.want {
			t.Errorf("total=%d failed=%d: status = %q, want %q", tc.total, tc.failed, got, tc.want)
		}
	}
}

func TestNoPlatformsCountsAsSuccess(t *testing.T) {
	recorder := &fakeRecorder{}
	publish(t, recorder, events.CustomerSynced{
		BaseEvent:        events.NewBaseEvent(),
		PersonDocumentID: "doc-2",
	})

	if recorder.runs[0].Status != StatusSuccess {
		t.Fatalf("status = %q, want success", recorder.runs[0].Status)
	}
}
