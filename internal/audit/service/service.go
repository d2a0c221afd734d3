// Package service turns domain events into persistent sync-run rows.
package service

import (
	"context"
	"encoding/json"

	"backoffice_backend/internal/audit/repository"
	"backoffice_backend/internal/events"
	"backoffice_backend/platform/logger"
)

// Sync-run statuses.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Recorder is the narrow repository surface the service needs.
type Recorder interface {
	Insert(ctx context.Context, run repository.SyncRun) error
	List(ctx context.Context, filters repository.ListFilters) ([]repository.SyncRun, int, error)
}

type Service struct {
	repo Recorder
	log  *logger.Logger
}

func New(repo Recorder, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Subscribe registers the event handlers that feed the trail. Recording is
// best-effort: a failed insert is logged and the triggering operation is
// unaffected.
func (s *Service) Subscribe(bus events.Bus) {
	bus.Subscribe(events.CustomerSynced{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.CustomerSynced)
		if !ok {
			return nil
		}
		s.record(ctx, repository.SyncRun{
			EntityKind: "customer",
			DocumentID: e.PersonDocumentID,
			Trigger:    e.EventName(),
			Status:     statusFromOutcomes(e.Platforms),
			Platforms:  marshal(e.Platforms),
			Detail:     marshal(map[string]interface{}{"rut": e.RUT, "created": e.Created}),
		})
		return nil
	}))

	bus.Subscribe(events.OrderCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.OrderCreated)
		if !ok {
			return nil
		}
		s.record(ctx, repository.SyncRun{
			EntityKind: "order",
			DocumentID: e.OrderDocumentID,
			Trigger:    e.EventName(),
			Status:     statusFromOutcomes(e.Platforms),
			Platforms:  marshal(e.Platforms),
			Detail:     marshal(map[string]interface{}{"total": e.Total, "currency": e.Currency}),
		})
		return nil
	}))

	bus.Subscribe(events.SchoolsImported{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.SchoolsImported)
		if !ok {
			return nil
		}
		status := StatusSuccess
		if e.Failed > 0 && e.Failed < e.Total {
			status = StatusPartial
		} else if e.Total > 0 && e.Failed == e.Total {
			status = StatusFailed
		}
		s.record(ctx, repository.SyncRun{
			EntityKind: "school_import",
			DocumentID: e.RunID,
			Trigger:    e.EventName(),
			Status:     status,
			Detail: marshal(map[string]interface{}{
				"file_name": e.FileName,
				"total":     e.Total,
				"created":   e.Created,
				"updated":   e.Updated,
				"failed":    e.Failed,
			}),
		})
		return nil
	}))
}

// List returns a filtered page of the trail.
func (s *Service) List(ctx context.Context, filters repository.ListFilters) ([]repository.SyncRun, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) record(ctx context.Context, run repository.SyncRun) {
	if err := s.repo.Insert(ctx, run); err != nil {
		s.log.SideEffectFailed("sync_run_insert", err)
	}
}

// statusFromOutcomes: every site succeeded = success, some = partial, none =
// failed. No selected sites counts as success since the canonical write is
// what triggered the event.
func statusFromOutcomes(outcomes map[string]events.PlatformOutcome) string {
	if len(outcomes) == 0 {
		return StatusSuccess
	}
	succeeded := 0
	for _, outcome := range outcomes {
		if outcome.Success {
			succeeded++
		}
	}
	switch succeeded {
	case len(outcomes):
		return StatusSuccess
	case 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

func marshal(value interface{}) json.RawMessage {
	raw, err := json.Marshal(value)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}
