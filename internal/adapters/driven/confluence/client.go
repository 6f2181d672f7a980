// Package confluence provides the content source adapter for the
// Confluence REST API.
package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/wikibot/internal/core/domain"
	"github.com/custodia-labs/wikibot/internal/core/ports/driven"
	"github.com/custodia-labs/wikibot/internal/logger"
	"github.com/custodia-labs/wikibot/internal/timeutil"
)

// Ensure Client implements the interface.
var _ driven.ContentSource = (*Client)(nil)

// Default configuration values.
const (
	// DefaultPageSize is the listing page size. The Confluence API caps
	// page listings at 100 items per request.
	DefaultPageSize = 100

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond keeps the client well below Confluence
	// Cloud rate limits.
	DefaultRequestsPerSecond = 5.0

	// DefaultBurstSize is the token bucket burst size.
	DefaultBurstSize = 10
)

// Config holds Confluence client configuration.
type Config struct {
	// BaseURL is the site root, e.g. https://example.atlassian.net/wiki.
	BaseURL string

	// Username is the account email for basic auth.
	Username string

	// APIToken is the Atlassian API token.
	APIToken string

	// PageSize overrides the listing page size (default 100).
	PageSize int

	// Timeout overrides the per-request timeout (default 30s).
	Timeout time.Duration

	// RequestsPerSecond overrides the sustained request rate.
	RequestsPerSecond float64
}

// Client talks to the Confluence REST API.
// Listing is paginated internally; callers always see the full result.
type Client struct {
	http     *http.Client
	baseURL  string
	username string
	apiToken string
	pageSize int
	limiter  *rate.Limiter
}

// New creates a Confluence client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("confluence: base URL is required")
	}
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("confluence: API token is required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("confluence: invalid base URL: %w", err)
	}

	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		baseURL:  base.String(),
		username: cfg.Username,
		apiToken: cfg.APIToken,
		pageSize: cfg.PageSize,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), DefaultBurstSize),
	}, nil
}

// --- Wire types ---

type pagePayload struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Version *struct {
		When string `json:"when"`
	} `json:"version"`
	Body *struct {
		View *struct {
			Value string `json:"value"`
		} `json:"view"`
	} `json:"body"`
}

type listPayload struct {
	Results []pagePayload `json:"results"`
}

// ListPages returns summaries for every page in a space.
// Pages are requested in batches of pageSize starting at offset 0; a
// short or empty batch signals the end. The API is gap-free and
// non-overlapping across batches, so no deduplication is needed.
func (c *Client) ListPages(ctx context.Context, spaceKey string) ([]domain.PageSummary, error) {
	if spaceKey == "" {
		return nil, fmt.Errorf("confluence: space key is required")
	}

	var all []domain.PageSummary
	start := 0

	for {
		batch, err := c.listBatch(ctx, spaceKey, start)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			all = append(all, domain.PageSummary{
				ID:    batch[i].ID,
				Title: batch[i].Title,
			})
		}

		// A batch shorter than the page size means there are no more.
		if len(batch) < c.pageSize {
			break
		}
		start += c.pageSize
	}

	logger.Debug("Listed %d pages in space %s", len(all), spaceKey)
	return all, nil
}

// listBatch fetches one listing page at the given offset.
func (c *Client) listBatch(ctx context.Context, spaceKey string, start int) ([]pagePayload, error) {
	q := url.Values{}
	q.Set("spaceKey", spaceKey)
	q.Set("type", "page")
	q.Set("start", strconv.Itoa(start))
	q.Set("limit", strconv.Itoa(c.pageSize))
	q.Set("expand", "version")

	body, err := c.get(ctx, "/rest/api/content?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("list space %s at offset %d: %w", spaceKey, start, err)
	}

	var payload listPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return payload.Results, nil
}

// GetPage fetches one page with body and version detail.
// A page without a version timestamp returns a structural error
// wrapping domain.ErrMissingField; the raw payload is logged so the
// offending document can be inspected.
func (c *Client) GetPage(ctx context.Context, id string) (*domain.Page, error) {
	if id == "" {
		return nil, fmt.Errorf("confluence: %w: page id", domain.ErrInvalidInput)
	}

	body, err := c.get(ctx, "/rest/api/content/"+url.PathEscape(id)+"?expand=body.view,version")
	if err != nil {
		return nil, fmt.Errorf("fetch page %s: %w", id, err)
	}

	var payload pagePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode page %s: %w", id, err)
	}

	if payload.Version == nil || payload.Version.When == "" {
		logger.Debug("Page %s raw payload: %s", id, body)
		return nil, fmt.Errorf("page %s: %w: version.when", id, domain.ErrMissingField)
	}

	version, err := timeutil.Parse(payload.Version.When)
	if err != nil {
		logger.Debug("Page %s raw payload: %s", id, body)
		return nil, fmt.Errorf("page %s: parse version: %w", id, err)
	}

	page := &domain.Page{
		ID:      payload.ID,
		Title:   payload.Title,
		Version: version,
	}
	if payload.Body != nil && payload.Body.View != nil {
		page.BodyHTML = payload.Body.View.Value
	}

	return page, nil
}

// get performs a rate-limited authenticated GET and returns the body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("confluence error (status %d): %s", resp.StatusCode, body)
	}

	return body, nil
}
