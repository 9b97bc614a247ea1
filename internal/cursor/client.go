// Package cursor is a client for the Cursor dashboard API.
package cursor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/j-veylop/cursor-usage/internal/logger"
	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/usage"
)

const (
	// DefaultBaseURL is the public dashboard host.
	DefaultBaseURL = "https://cursor.com"

	eventsPath    = "/api/dashboard/get-filtered-usage-events"
	summaryPath   = "/api/usage-summary"
	userAgent     = "Mozilla/5.0 (compatible; cursor-usage/1.0)"
	sessionCookie = "WorkosCursorSessionToken"

	defaultTimeout  = 10 * time.Second
	defaultPageSize = 100
	// Stops runaway pagination if the server reports a bogus total.
	maxPages = 500
)

// ErrUnauthorized is returned when the session cookie is rejected.
var ErrUnauthorized = errors.New("unauthorized: session token may be expired, sign in to Cursor again")

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	PageSize          int
	MaxConcurrency    int
	RequestsPerSecond float64
	HTTPClient        *http.Client
	Now               func() time.Time
}

// Client fetches usage events and billing data for one user.
type Client struct {
	baseURL     string
	http        *http.Client
	pageSize    int
	concurrency int
	limiter     *rate.Limiter
	now         func() time.Time
}

// New creates a Client from opts.
func New(opts Options) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		http:        opts.HTTPClient,
		pageSize:    opts.PageSize,
		concurrency: opts.MaxConcurrency,
		now:         opts.Now,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	if c.concurrency <= 0 {
		c.concurrency = 1
	}
	if c.now == nil {
		c.now = time.Now
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	c.limiter = rate.NewLimiter(limit, c.concurrency)
	return c
}

type eventsRequest struct {
	TeamID    int    `json:"teamId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
}

type eventsPage struct {
	total  int
	events []models.UsageEvent
}

// FetchEvents returns every usage event between start and end, inclusive.
// The first page reports the total count; remaining pages are fetched
// concurrently and reassembled in page order. Any failure is logged and
// yields an empty slice.
func (c *Client) FetchEvents(ctx context.Context, creds models.Credentials, start, end time.Time) []models.UsageEvent {
	first, err := c.fetchPage(ctx, creds, start, end, 1)
	if err != nil {
		logger.Error("failed to fetch usage events", "page", 1, "error", err)
		return []models.UsageEvent{}
	}

	pages := pageCount(first.total, c.pageSize)
	if pages <= 1 {
		return first.events
	}
	if pages > maxPages {
		logger.Warn("capping pagination", "total", first.total, "pages", pages, "max", maxPages)
		pages = maxPages
	}
	logger.Debug("fetching remaining pages", "total", first.total, "pages", pages)

	results := make([][]models.UsageEvent, pages)
	results[0] = first.events

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for p := 2; p <= pages; p++ {
		g.Go(func() error {
			pg, err := c.fetchPage(gctx, creds, start, end, p)
			if err != nil {
				return fmt.Errorf("page %d: %w", p, err)
			}
			results[p-1] = pg.events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("failed to fetch usage events", "error", err)
		return []models.UsageEvent{}
	}

	events := make([]models.UsageEvent, 0, first.total)
	for _, r := range results {
		events = append(events, r...)
	}
	return events
}

func pageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

func (c *Client) fetchPage(ctx context.Context, creds models.Credentials, start, end time.Time, page int) (*eventsPage, error) {
	payload, err := json.Marshal(eventsRequest{
		StartDate: strconv.FormatInt(start.UnixMilli(), 10),
		EndDate:   strconv.FormatInt(end.UnixMilli(), 10),
		Page:      page,
		PageSize:  c.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode events request: %w", err)
	}

	body, err := c.do(ctx, creds, http.MethodPost, eventsPath, payload)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("failed to parse events response: invalid JSON")
	}

	var head struct {
		Total json.RawMessage `json:"totalUsageEventsCount"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		logger.Debug("events response has no page header, assuming a single page", "page", page, "error", err)
	}

	pg := &eventsPage{
		total:  parseTotal(head.Total),
		events: usage.ParseEvents(body, c.now()),
	}
	logger.Debug("fetched events page", "page", page, "events", len(pg.events), "total", pg.total)
	return pg, nil
}

// parseTotal accepts the count as a JSON number or a numeric string.
func parseTotal(raw json.RawMessage) int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// FetchBillingSummary returns the current billing cycle summary.
func (c *Client) FetchBillingSummary(ctx context.Context, creds models.Credentials) (*models.BillingSummary, error) {
	body, err := c.do(ctx, creds, http.MethodGet, summaryPath, nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("invalid usage summary response format")
	}

	var summary models.BillingSummary
	if err := json.Unmarshal(trimmed, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse usage summary: %w", err)
	}
	return &summary, nil
}

func (c *Client) do(ctx context.Context, creds models.Credentials, method, path string, payload []byte) ([]byte, error) {
	if !creds.Valid() {
		return nil, fmt.Errorf("credentials are incomplete")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cookie", sessionCookie+"="+url.QueryEscape(creds.SessionToken()))
	if method == http.MethodPost {
		req.Header.Set("Origin", DefaultBaseURL)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

// truncate shortens s to at most n cells without splitting a character.
func truncate(s string, n int) string {
	return ansi.Truncate(s, n, "...")
}
