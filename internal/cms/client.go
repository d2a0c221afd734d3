// Package cms provides the HTTP client for the headless CMS (Strapi-shaped)
// REST API that holds the canonical records.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"backoffice_backend/platform/apperr"
	"backoffice_backend/platform/config"
	"backoffice_backend/platform/logger"
)

// Collection names in the CMS. The backing Strapi instance keeps its
// Spanish-language collection names.
const (
	CollectionPersonas  = "personas"
	CollectionWoClients = "wo-clientes"
	CollectionPedidos   = "pedidos"
	CollectionCupones   = "cupones"
	CollectionColegios  = "colegios"
)

// Client is the CMS REST client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a CMS client from configuration.
func NewClient(cfg config.CMSConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.GetCMSBaseURL(), "/"),
		token:      cfg.GetCMSAPIToken(),
		httpClient: &http.Client{Timeout: cfg.GetCMSTimeout()},
		log:        log,
	}
}

// Pagination describes list pagination metadata.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// ListResult is a page of entries plus pagination metadata.
type ListResult struct {
	Entries    []Entry
	Pagination Pagination
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		Pagination Pagination `json:"pagination"`
	} `json:"meta"`
	Error struct {
		Status  int    `json:"status"`
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// List fetches a filtered page from a collection.
func (c *Client) List(ctx context.Context, collection string, query *Query) (*ListResult, error) {
	endpoint := c.collectionURL(collection)
	if query != nil {
		if encoded := query.Values().Encode(); encoded != "" {
			endpoint += "?" + encoded
		}
	}

	env, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var rawItems []map[string]interface{}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &rawItems); err != nil {
			return nil, apperr.Wrap(apperr.KindUnavailable, "cms returned malformed list", err)
		}
	}

	result := &ListResult{Pagination: env.Meta.Pagination}
	for _, raw := range rawItems {
		result.Entries = append(result.Entries, decodeEntry(raw))
	}
	return result, nil
}

// Get fetches one entry by document id (or numeric id rendered as string).
// A 404 maps to apperr.KindNotFound.
func (c *Client) Get(ctx context.Context, collection, documentID string, query *Query) (*Entry, error) {
	endpoint := c.collectionURL(collection) + "/" + url.PathEscape(documentID)
	if query != nil {
		if encoded := query.Values().Encode(); encoded != "" {
			endpoint += "?" + encoded
		}
	}

	env, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return decodeSingle(env)
}

// Create posts a new entry wrapped in the {data: ...} envelope.
func (c *Client) Create(ctx context.Context, collection string, data map[string]interface{}) (*Entry, error) {
	env, err := c.do(ctx, http.MethodPost, c.collectionURL(collection), map[string]interface{}{"data": data})
	if err != nil {
		return nil, err
	}
	return decodeSingle(env)
}

// Update applies a partial update to an entry. Only the fields present in
// data are sent; the CMS leaves the rest untouched.
func (c *Client) Update(ctx context.Context, collection, documentID string, data map[string]interface{}) (*Entry, error) {
	endpoint := c.collectionURL(collection) + "/" + url.PathEscape(documentID)
	env, err := c.do(ctx, http.MethodPut, endpoint, map[string]interface{}{"data": data})
	if err != nil {
		return nil, err
	}
	return decodeSingle(env)
}

// Delete removes an entry by document id.
func (c *Client) Delete(ctx context.Context, collection, documentID string) error {
	endpoint := c.collectionURL(collection) + "/" + url.PathEscape(documentID)
	_, err := c.do(ctx, http.MethodDelete, endpoint, nil)
	return err
}

// Ping verifies the CMS is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/_health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("cms health check: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) collectionURL(collection string) string {
	return c.baseURL + "/api/" + collection
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload interface{}) (*envelope, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "marshal cms payload", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "create cms request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("cms", method+" "+endpoint, err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "cms unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "read cms response", err)
	}

	var env envelope
	if len(raw) > 0 {
		// Tolerate empty or non-JSON bodies on errors; the status switch decides.
		_ = json.Unmarshal(raw, &env)
	}

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return &env, nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		// Misconfiguration, not transient failure: relay the upstream status.
		c.log.UpstreamError("cms", method+" "+endpoint, fmt.Errorf("status %d", resp.StatusCode))
		return nil, apperr.New(apperr.KindUnauthorized, cmsErrorMessage(&env, "cms rejected credentials")).WithStatus(resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.NotFound(cmsErrorMessage(&env, "record not found"))
	case resp.StatusCode == http.StatusBadRequest:
		return nil, apperr.BadRequest(cmsErrorMessage(&env, "cms rejected request"))
	default:
		c.log.UpstreamError("cms", method+" "+endpoint, fmt.Errorf("status %d", resp.StatusCode))
		return nil, apperr.Unavailable(cmsErrorMessage(&env, fmt.Sprintf("cms error: status %d", resp.StatusCode)))
	}
}

func decodeSingle(env *envelope) (*Entry, error) {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, apperr.NotFound("record not found")
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "cms returned malformed entry", err)
	}

	entry := decodeEntry(raw)
	return &entry, nil
}

func cmsErrorMessage(env *envelope, fallback string) string {
	if env != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return fallback
}
