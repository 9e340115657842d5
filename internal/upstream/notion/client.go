package notion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quicknotes/internal/constants"
	apperrors "quicknotes/internal/errors"
	"quicknotes/internal/monitoring/tracing"
	"quicknotes/internal/ratelimit"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Client performs Notion API operations, coordinating the connection
// pool, the page-listing cache and the rate limit registry. Locks live
// inside those collaborators and are never held across a network call:
// the client copies what it needs out, then performs I/O on the copies.
type Client struct {
	baseURL string
	pool    *Pool
	cache   *Cache[[]Page]
	limits  *ratelimit.Manager
	now     func() time.Time
}

// Options configure a Client. Zero values fall back to production defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Limits  *ratelimit.Manager
	Clock   func() time.Time
	// Transport overrides the pooled clients' base transport; tests use
	// this to fake the upstream.
	Transport http.RoundTripper
}

// NewClient builds a Client from options.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = constants.DefaultNotionBaseURL
	}
	limits := opts.Limits
	if limits == nil {
		limits = ratelimit.NewManager()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Client{
		baseURL: baseURL,
		pool:    NewPool(opts.Timeout, opts.Transport),
		cache:   NewCache[[]Page](constants.PagesCacheTTL),
		limits:  limits,
		now:     clock,
	}
}

// Limits exposes the rate limit registry backing this client.
func (c *Client) Limits() *ratelimit.Manager { return c.limits }

// InvalidateCache clears the page-listing cache. Must be called on every
// credential change.
func (c *Client) InvalidateCache() { c.cache.Invalidate() }

// VerifyToken checks the credential against the identity endpoint.
func (c *Client) VerifyToken(ctx context.Context, credential string) error {
	if err := c.checkAdmission(credential); err != nil {
		return err
	}
	status, body, err := c.do(ctx, credential, http.MethodGet, "/v1/users/me", nil)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return apperrors.MapHTTPError(status, body)
	}
	return nil
}

// SearchPages lists the workspace's pages, newest edits first. A cache
// hit returns immediately with no network call and no rate limit
// bookkeeping. Concurrent misses may each issue a request; the cache
// converges once the first response lands.
func (c *Client) SearchPages(ctx context.Context, credential string) ([]Page, error) {
	if pages, ok := c.cache.Get(); ok {
		return pages, nil
	}
	if err := c.checkAdmission(credential); err != nil {
		return nil, err
	}

	status, body, err := c.do(ctx, credential, http.MethodPost, "/v1/search", searchPayload())
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, apperrors.MapHTTPError(status, body)
	}

	pages, ok := pagesFromSearch(body)
	if !ok {
		return nil, apperrors.NewAPI(0, "", "Invalid response format: missing results array")
	}
	log.WithField("count", len(pages)).Debug("fetched page listing")

	c.cache.Put(pages)
	return pages, nil
}

// PageInfo resolves a page summary by id via the (cached) listing. An id
// the listing does not contain yields a placeholder titled "Notion Page"
// rather than an error; a failed listing does too, so a stale selection
// never blocks the settings screen.
func (c *Client) PageInfo(ctx context.Context, credential, pageID string) (Page, error) {
	if strings.TrimSpace(pageID) == "" {
		return Page{}, apperrors.NewValidation("Page ID cannot be empty")
	}
	if err := c.checkAdmission(credential); err != nil {
		return Page{}, err
	}

	pages, err := c.SearchPages(ctx, credential)
	if err != nil {
		log.WithField("page_id", pageID).WithError(err).Warn("page info lookup fell back to placeholder")
		return Page{ID: pageID, Title: "Notion Page"}, nil
	}
	for _, page := range pages {
		if page.ID == pageID {
			return page, nil
		}
	}
	return Page{ID: pageID, Title: "Notion Page"}, nil
}

// AppendNote appends one timestamped, bold paragraph block to the page.
func (c *Client) AppendNote(ctx context.Context, credential, pageID, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.NewValidation("Cannot send an empty note")
	}
	if strings.TrimSpace(pageID) == "" {
		return apperrors.NewValidation("Page ID cannot be empty")
	}
	if err := c.checkAdmission(credential); err != nil {
		return err
	}

	payload := appendPayload(text, c.now())
	status, body, err := c.do(ctx, credential, http.MethodPatch, "/v1/blocks/"+pageID+"/children", payload)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return apperrors.MapHTTPError(status, body)
	}
	return nil
}

// checkAdmission fails fast with a RateLimited error when the registry
// would deny the credential. No network attempt is made; retrying is the
// caller's decision.
func (c *Client) checkAdmission(credential string) error {
	if c.limits.ShouldAllowRequest(credential) {
		return nil
	}
	delay := c.limits.RecommendedDelay(credential)
	limit, remaining := c.limits.Quota(credential)

	secs := int64(delay / time.Second)
	var retryAfter *int64
	if delay > 0 {
		retryAfter = &secs
	}
	return apperrors.NewRateLimited(
		fmt.Sprintf("Rate limit in effect, retry after %d seconds", secs),
		retryAfter, limit, remaining,
	)
}

// do executes one request on the credential's pooled client and feeds
// every actually-received response to the rate limit registry: 429
// records a rate limit observation, anything else records a success.
// Transport failures mutate nothing.
func (c *Client) do(ctx context.Context, credential, method, path string, payload []byte) (int, []byte, error) {
	cli := c.pool.GetOrCreate(credential)

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, apperrors.NewAPI(0, "", "failed to build request: "+err.Error())
	}

	spanCtx, span := tracing.StartSpan(ctx, "upstream/notion", "Notion."+method+" "+path)
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", c.baseURL+path),
	)
	defer span.End()
	req = req.WithContext(spanCtx)

	resp, err := cli.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, nil, apperrors.MapNetworkError(err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		reset, remaining, limit := ratelimit.ExtractHeaders(resp.Header)
		c.limits.RecordRateLimit(credential, reset, remaining, limit)
		span.SetStatus(codes.Error, "rate limited")
		return resp.StatusCode, body, apperrors.NewRateLimited(
			c.limits.LimitMessage(credential), reset, limit, remaining,
		)
	}

	// Only 429 signals exhaustion; any other received status clears
	// backoff state.
	c.limits.RecordSuccess(credential)

	if readErr != nil {
		span.RecordError(readErr)
		return resp.StatusCode, nil, apperrors.MapNetworkError(readErr)
	}
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, fmt.Sprintf("http_status=%d", resp.StatusCode))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return resp.StatusCode, body, nil
}
