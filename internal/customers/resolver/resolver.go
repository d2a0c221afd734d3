// Package resolver locates canonical Person records in the CMS from partial
// identifiers, trying a fixed chain of strategies until one succeeds.
package resolver

import (
	"context"
	"strconv"

	"backoffice_backend/internal/cms"
	"backoffice_backend/platform/apperr"
	"backoffice_backend/platform/logger"
	"backoffice_backend/platform/rut"
)

// scanPageSize bounds the exhaustive-scan fallback.
const scanPageSize = 1000

// Keys are the candidate identifiers for one resolution attempt. Zero-valued
// fields are skipped by the strategies that need them.
type Keys struct {
	ID         int64
	DocumentID string
	RUT        string
	Email      string
}

// Outcome is the result of a resolution. NotFound is an outcome, not an
// error: Found is false and Entry nil when every strategy was exhausted.
type Outcome struct {
	Found    bool
	Entry    *cms.Entry
	Strategy string
}

// Reader is the slice of the CMS client the resolver needs.
type Reader interface {
	List(ctx context.Context, collection string, query *cms.Query) (*cms.ListResult, error)
	Get(ctx context.Context, collection, documentID string, query *cms.Query) (*cms.Entry, error)
}

// Cache is an optional read-through cache of normalized RUT to document id.
// Both methods are best-effort; implementations never return errors.
type Cache interface {
	GetDocumentID(ctx context.Context, normalizedRUT string) (string, bool)
	SetDocumentID(ctx context.Context, normalizedRUT, documentID string)
	Invalidate(ctx context.Context, normalizedRUT string)
}

// Service resolves Person records against the CMS.
type Service struct {
	cms   Reader
	cache Cache
	log   *logger.Logger
}

// New creates a resolver. cache may be nil.
func New(cmsReader Reader, cache Cache, log *logger.Logger) *Service {
	return &Service{cms: cmsReader, cache: cache, log: log}
}

// strategy tries one way of locating the record. It returns (nil, nil) when
// the strategy does not apply or found nothing.
type strategy struct {
	name string
	run  func(ctx context.Context, keys Keys) (*cms.Entry, error)
}

// Resolve runs the strategy chain and stops at the first hit. Transport
// errors advance the chain; credential errors abort immediately since no
// later strategy can succeed either.
func (s *Service) Resolve(ctx context.Context, keys Keys) (*Outcome, error) {
	if entry := s.fromCache(ctx, keys); entry != nil {
		return &Outcome{Found: true, Entry: entry, Strategy: "cache"}, nil
	}

	chain := []strategy{
		{name: "filter_id", run: s.byNumericID},
		{name: "filter_document_id", run: s.byDocumentIDFilter},
		{name: "scan_rut", run: s.byExhaustiveScan},
		{name: "direct_fetch", run: s.byDirectFetch},
		{name: "filter_rut", run: s.byRUTFilter},
		{name: "filter_email", run: s.byEmailFilter},
	}

	for _, st := range chain {
		entry, err := st.run(ctx, keys)
		if err != nil {
			if apperr.Is(err, apperr.KindUnauthorized) || apperr.Is(err, apperr.KindForbidden) {
				return nil, err
			}
			s.log.Debug("resolver strategy failed, trying next", "strategy", st.name, "error", err.Error())
			continue
		}
		if entry != nil {
			s.remember(ctx, entry)
			return &Outcome{Found: true, Entry: entry, Strategy: st.name}, nil
		}
	}

	return &Outcome{}, nil
}

// ResolveByRUT is a convenience wrapper for uniqueness pre-checks.
func (s *Service) ResolveByRUT(ctx context.Context, taxID string) (*Outcome, error) {
	return s.Resolve(ctx, Keys{RUT: taxID})
}

func (s *Service) byNumericID(ctx context.Context, keys Keys) (*cms.Entry, error) {
	if keys.ID == 0 {
		return nil, nil
	}
	return s.firstMatch(ctx, cms.NewQuery().FilterEq("id", keys.ID))
}

func (s *Service) byDocumentIDFilter(ctx context.Context, keys Keys) (*cms.Entry, error) {
	if keys.DocumentID == "" {
		return nil, nil
	}
	return s.firstMatch(ctx, cms.NewQuery().FilterEq("documentId", keys.DocumentID))
}

// byExhaustiveScan pulls a large page and compares normalized RUTs
// client-side. Used when targeted filters found nothing (some CMS versions
// do not index the rut field).
func (s *Service) byExhaustiveScan(ctx context.Context, keys Keys) (*cms.Entry, error) {
	wanted := rut.Normalize(keys.RUT)
	if wanted == "" {
		return nil, nil
	}

	result, err := s.cms.List(ctx, cms.CollectionPersonas, cms.NewQuery().Page(1, scanPageSize))
	if err != nil {
		return nil, err
	}

	for i := range result.Entries {
		if rut.Normalize(result.Entries[i].String("rut")) == wanted {
			return &result.Entries[i], nil
		}
	}
	return nil, nil
}

// byDirectFetch addresses the record by document id (or numeric id as a path
// segment), tolerating 404 as "not found" rather than an error.
func (s *Service) byDirectFetch(ctx context.Context, keys Keys) (*cms.Entry, error) {
	id := keys.DocumentID
	if id == "" && keys.ID != 0 {
		id = strconv.FormatInt(keys.ID, 10)
	}
	if id == "" {
		return nil, nil
	}

	entry, err := s.cms.Get(ctx, cms.CollectionPersonas, id, nil)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

func (s *Service) byRUTFilter(ctx context.Context, keys Keys) (*cms.Entry, error) {
	normalized := rut.Normalize(keys.RUT)
	if normalized == "" {
		return nil, nil
	}

	// The CMS stores the formatted form; try it first, then the raw input.
	for _, candidate := range []string{rut.Format(normalized), keys.RUT, normalized} {
		entry, err := s.firstMatch(ctx, cms.NewQuery().FilterEq("rut", candidate))
		if err != nil {
			return nil, err
		}
		if entry != nil && rut.Normalize(entry.String("rut")) == normalized {
			return entry, nil
		}
	}
	return nil, nil
}

func (s *Service) byEmailFilter(ctx context.Context, keys Keys) (*cms.Entry, error) {
	if keys.Email == "" {
		return nil, nil
	}
	return s.firstMatch(ctx, cms.NewQuery().Filter("correos.email", cms.OpEqi, keys.Email).Populate("correos"))
}

func (s *Service) firstMatch(ctx context.Context, query *cms.Query) (*cms.Entry, error) {
	result, err := s.cms.List(ctx, cms.CollectionPersonas, query.Page(1, 1))
	if err != nil {
		return nil, err
	}
	if len(result.Entries) == 0 {
		return nil, nil
	}
	return &result.Entries[0], nil
}

// fromCache returns a verified entry on a cache hit. The cached document id
// is confirmed with a direct fetch before being trusted; stale ids are
// invalidated and resolution falls through to the chain.
func (s *Service) fromCache(ctx context.Context, keys Keys) *cms.Entry {
	if s.cache == nil {
		return nil
	}
	normalized := rut.Normalize(keys.RUT)
	if normalized == "" {
		return nil
	}

	documentID, ok := s.cache.GetDocumentID(ctx, normalized)
	if !ok {
		return nil
	}

	entry, err := s.cms.Get(ctx, cms.CollectionPersonas, documentID, nil)
	if err != nil {
		s.cache.Invalidate(ctx, normalized)
		return nil
	}
	return entry
}

func (s *Service) remember(ctx context.Context, entry *cms.Entry) {
	if s.cache == nil || entry.DocumentID == "" {
		return
	}
	normalized := rut.Normalize(entry.String("rut"))
	if normalized == "" {
		return
	}
	s.cache.SetDocumentID(ctx, normalized, entry.DocumentID)
}
