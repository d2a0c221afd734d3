// Package importer loads school spreadsheets into the colegios collection,
// upserting by RBD.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"backoffice_backend/internal/cms"
	"backoffice_backend/internal/schools/domain"
	"backoffice_backend/platform/apperr"
	"backoffice_backend/platform/logger"
)

// CMSClient is the slice of the CMS client the importer needs.
type CMSClient interface {
	List(ctx context.Context, collection string, query *cms.Query) (*cms.ListResult, error)
	Create(ctx context.Context, collection string, data map[string]interface{}) (*cms.Entry, error)
	Update(ctx context.Context, collection, documentID string, data map[string]interface{}) (*cms.Entry, error)
}

// Archiver stores the raw upload. nil disables archiving.
type Archiver interface {
	Store(ctx context.Context, runID, fileName, contentType string, reader io.Reader, size int64) (string, error)
}

// RowFailure records one row that could not be imported.
type RowFailure struct {
	Line   int    `json:"line"`
	RBD    string `json:"rbd,omitempty"`
	Reason string `json:"reason"`
}

// Result summarizes one import run.
type Result struct {
	RunID      string       `json:"run_id"`
	FileName   string       `json:"file_name"`
	Total      int          `json:"total"`
	Created    int          `json:"created"`
	Updated    int          `json:"updated"`
	Failed     int          `json:"failed"`
	Failures   []RowFailure `json:"failures,omitempty"`
	ArchiveKey string       `json:"archive_key,omitempty"`
}

type Importer struct {
	cms         CMSClient
	archive     Archiver
	readTimeout time.Duration
	log         *logger.Logger
}

func New(cmsClient CMSClient, archive Archiver, readTimeout time.Duration, log *logger.Logger) *Importer {
	return &Importer{cms: cmsClient, archive: archive, readTimeout: readTimeout, log: log}
}

// Run reads the upload, archives it, and upserts every row by RBD. Per-row
// failures are collected in the result, never returned as errors; only a
// malformed or unreadable file fails the run.
func (imp *Importer) Run(ctx context.Context, fileName, contentType string, reader io.Reader) (*Result, error) {
	content, err := imp.readBounded(ctx, reader)
	if err != nil {
		return nil, err
	}

	rows, err := Parse(fileName, content)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:    uuid.New().String(),
		FileName: fileName,
		Total:    len(rows),
	}

	if imp.archive != nil {
		key, err := imp.archive.Store(ctx, result.RunID, fileName, contentType,
			bytes.NewReader(content), int64(len(content)))
		if err != nil {
			imp.log.SideEffectFailed("import_archive", err)
		} else {
			result.ArchiveKey = key
		}
	}

	for _, row := range rows {
		created, err := imp.upsertRow(ctx, row.School)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, RowFailure{
				Line:   row.Line,
				RBD:    row.School.RBD,
				Reason: err.Error(),
			})
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	return result, nil
}

// readBounded reads the whole upload within the configured timeout. A slow
// or stalled upload aborts with a descriptive error instead of holding the
// request open indefinitely.
func (imp *Importer) readBounded(ctx context.Context, reader io.Reader) ([]byte, error) {
	readCtx, cancel := context.WithTimeout(ctx, imp.readTimeout)
	defer cancel()

	type readOutcome struct {
		content []byte
		err     error
	}
	done := make(chan readOutcome, 1)
	go func() {
		content, err := io.ReadAll(reader)
		done <- readOutcome{content: content, err: err}
	}()

	select {
	case outcome := <-done:
		if outcome.err != nil {
			return nil, apperr.BadRequest("could not read the uploaded file: " + outcome.err.Error())
		}
		return outcome.content, nil
	case <-readCtx.Done():
		return nil, apperr.BadRequest(fmt.Sprintf(
			"reading the uploaded file exceeded the %s limit", imp.readTimeout))
	}
}

// upsertRow resolves the school by RBD and updates it, or creates it when no
// match exists. Returns whether a new record was created.
func (imp *Importer) upsertRow(ctx context.Context, school domain.School) (bool, error) {
	if school.RBD == "" {
		return false, apperr.Validation("row has no RBD")
	}
	if school.Name == "" {
		return false, apperr.Validation("row has no school name")
	}

	existing, err := imp.cms.List(ctx, cms.CollectionColegios,
		cms.NewQuery().FilterEq("rbd", school.RBD).Page(1, 1))
	if err != nil {
		return false, err
	}

	if len(existing.Entries) > 0 {
		_, err := imp.cms.Update(ctx, cms.CollectionColegios, existing.Entries[0].DocumentID, school.Data())
		return false, err
	}

	_, err = imp.cms.Create(ctx, cms.CollectionColegios, school.Data())
	return true, err
}
