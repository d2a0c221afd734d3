// Package repository persists sync-run rows in Postgres.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SyncRun is one recorded orchestration: a customer upsert, an order
// creation or a school import run.
type SyncRun struct {
	ID         uuid.UUID       `json:"id"`
	EntityKind string          `json:"entity_kind"`
	DocumentID string          `json:"document_id"`
	Trigger    string          `json:"trigger"`
	Status     string          `json:"status"`
	Platforms  json.RawMessage `json:"platforms"`
	Detail     json.RawMessage `json:"detail"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ListFilters narrow a sync-run listing.
type ListFilters struct {
	EntityKind string
	Status     string
	Page       int
	PageSize   int
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes one sync-run row.
func (r *Repository) Insert(ctx context.Context, run SyncRun) error {
	if run.Platforms == nil {
		run.Platforms = json.RawMessage(`{}`)
	}
	if run.Detail == nil {
		run.Detail = json.RawMessage(`{}`)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO sync_runs (entity_kind, document_id, trigger_name, status, platforms, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, run.EntityKind, run.DocumentID, run.Trigger, run.Status, run.Platforms, run.Detail)
	return err
}

// List returns a filtered page of sync runs, newest first, plus the total
// row count for the filter.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]SyncRun, int, error) {
	where := " WHERE ($1 = '' OR entity_kind = $1) AND ($2 = '' OR status = $2)"

	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM sync_runs"+where,
		filters.EntityKind, filters.Status).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (filters.Page - 1) * filters.PageSize
	rows, err := r.pool.Query(ctx, `
		SELECT id, entity_kind, document_id, trigger_name, status, platforms, detail, created_at
		FROM sync_runs`+where+`
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, filters.EntityKind, filters.Status, filters.PageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	runs := make([]SyncRun, 0)
	for rows.Next() {
		var run SyncRun
		if err := rows.Scan(&run.ID, &run.EntityKind, &run.DocumentID, &run.Trigger,
			&run.Status, &run.Platforms, &run.Detail, &run.CreatedAt); err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return runs, total, nil
}
