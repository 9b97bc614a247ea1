package cursor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/cursor-usage/internal/logger"
	"github.com/j-veylop/cursor-usage/internal/models"
)

// MockRoundTripper implements http.RoundTripper for testing
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

var (
	testCreds = models.Credentials{UserID: "user_1", AccessToken: "tok:abc"}
	testStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2026, 1, 14, 23, 59, 59, 999e6, time.UTC)
)

// pagedServer serves total events split into pages of the requested size.
// Every event's model names its page.
type pagedServer struct {
	t        *testing.T
	total    int
	failPage int

	mu       sync.Mutex
	requests []eventsRequest
	headers  []http.Header
}

func (s *pagedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(s.t, http.MethodPost, r.Method)
	assert.Equal(s.t, eventsPath, r.URL.Path)

	var req eventsRequest
	if !assert.NoError(s.t, json.NewDecoder(r.Body).Decode(&req)) {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.headers = append(s.headers, r.Header.Clone())
	s.mu.Unlock()

	if req.Page == s.failPage {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	from := (req.Page - 1) * req.PageSize
	to := min(from+req.PageSize, s.total)
	events := make([]map[string]any, 0, req.PageSize)
	for i := from; i < to; i++ {
		events = append(events, map[string]any{
			"timestamp": fmt.Sprint(testStart.UnixMilli() + int64(i)),
			"model":     fmt.Sprintf("p%d", req.Page),
			"tokenUsage": map[string]any{
				"inputTokens": 10,
				"totalCents":  1,
			},
		})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"totalUsageEventsCount": s.total,
		"usageEventsDisplay":    events,
	})
}

func newTestClient(baseURL string) *Client {
	return New(Options{
		BaseURL:        baseURL,
		PageSize:       100,
		MaxConcurrency: 3,
		Now:            func() time.Time { return testEnd },
	})
}

func TestFetchEvents_Paginates(t *testing.T) {
	srv := &pagedServer{t: t, total: 250}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	events := newTestClient(ts.URL).FetchEvents(context.Background(), testCreds, testStart, testEnd)

	require.Len(t, events, 250)
	assert.Equal(t, "p1", events[0].Model())
	assert.Equal(t, "p1", events[99].Model())
	assert.Equal(t, "p2", events[100].Model())
	assert.Equal(t, "p3", events[249].Model())
	for i := 1; i < len(events); i++ {
		assert.Less(t, events[i-1].Timestamp(), events[i].Timestamp())
	}

	require.Len(t, srv.requests, 3)
	pages := map[int]bool{}
	for _, req := range srv.requests {
		pages[req.Page] = true
		assert.Equal(t, 0, req.TeamID)
		assert.Equal(t, 100, req.PageSize)
		assert.Equal(t, "1767225600000", req.StartDate)
		assert.Equal(t, fmt.Sprint(testEnd.UnixMilli()), req.EndDate)
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, pages)
}

func TestFetchEvents_Headers(t *testing.T) {
	srv := &pagedServer{t: t, total: 1}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	events := newTestClient(ts.URL).FetchEvents(context.Background(), testCreds, testStart, testEnd)
	require.Len(t, events, 1)

	h := srv.headers[0]
	assert.Equal(t, "WorkosCursorSessionToken=user_1%3A%3Atok%3Aabc", h.Get("Cookie"))
	assert.Equal(t, "https://cursor.com", h.Get("Origin"))
	assert.Equal(t, userAgent, h.Get("User-Agent"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
}

func TestFetchEvents_SinglePage(t *testing.T) {
	srv := &pagedServer{t: t, total: 40}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	events := newTestClient(ts.URL).FetchEvents(context.Background(), testCreds, testStart, testEnd)

	assert.Len(t, events, 40)
	assert.Len(t, srv.requests, 1)
}

func TestFetchEvents_FailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name     string
		failPage int
	}{
		{"FirstPage", 1},
		{"LaterPage", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &pagedServer{t: t, total: 300, failPage: tt.failPage}
			ts := httptest.NewServer(srv)
			defer ts.Close()

			events := newTestClient(ts.URL).FetchEvents(context.Background(), testCreds, testStart, testEnd)

			assert.NotNil(t, events)
			assert.Empty(t, events)
		})
	}
}

func TestFetchEvents_BadResponses(t *testing.T) {
	tests := []struct {
		name      string
		transport http.RoundTripper
	}{
		{
			name: "NetworkError",
			transport: &MockRoundTripper{
				RoundTripFunc: func(req *http.Request) (*http.Response, error) {
					return nil, errors.New("net error")
				},
			},
		},
		{
			name: "InvalidJSON",
			transport: &MockRoundTripper{
				RoundTripFunc: func(req *http.Request) (*http.Response, error) {
					return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("<html>"))}, nil
				},
			},
		},
		{
			name: "Unauthorized",
			transport: &MockRoundTripper{
				RoundTripFunc: func(req *http.Request) (*http.Response, error) {
					return &http.Response{StatusCode: 401, Body: io.NopCloser(strings.NewReader(""))}, nil
				},
			},
		},
		{
			name: "TopLevelArray",
			transport: &MockRoundTripper{
				RoundTripFunc: func(req *http.Request) (*http.Response, error) {
					return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(`[{"model":"a"}]`))}, nil
				},
			},
		},
		{
			name: "MissingEvents",
			transport: &MockRoundTripper{
				RoundTripFunc: func(req *http.Request) (*http.Response, error) {
					return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(`{"totalUsageEventsCount":"0"}`))}, nil
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Options{HTTPClient: &http.Client{Transport: tt.transport}})

			events := c.FetchEvents(context.Background(), testCreds, testStart, testEnd)

			assert.NotNil(t, events)
			assert.Empty(t, events)
		})
	}
}

func TestFetchEvents_IncompleteCredentials(t *testing.T) {
	called := false
	c := New(Options{HTTPClient: &http.Client{Transport: &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			called = true
			return nil, errors.New("unreachable")
		},
	}}})

	events := c.FetchEvents(context.Background(), models.Credentials{UserID: "u"}, testStart, testEnd)

	assert.Empty(t, events)
	assert.False(t, called)
}

func TestFetchEvents_Canceled(t *testing.T) {
	srv := &pagedServer{t: t, total: 10}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := newTestClient(ts.URL).FetchEvents(ctx, testCreds, testStart, testEnd)
	assert.Empty(t, events)
}

func TestFetchEvents_LogsUndecodableHeader(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetDebug(true)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetDebug(false)
	})

	c := New(Options{HTTPClient: &http.Client{Transport: &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(`[1, 2]`))}, nil
		},
	}}})

	events := c.FetchEvents(context.Background(), testCreds, testStart, testEnd)

	assert.Empty(t, events)
	assert.Contains(t, buf.String(), "no page header")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))

	long := strings.Repeat("é", 300)
	got := truncate(long, 200)
	assert.True(t, utf8.ValidString(got), "truncated body must stay valid UTF-8")
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 200)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 1, pageCount(0, 100))
	assert.Equal(t, 1, pageCount(100, 100))
	assert.Equal(t, 2, pageCount(101, 100))
	assert.Equal(t, 3, pageCount(250, 100))
	assert.Equal(t, 1, pageCount(10, 0))
}

func TestParseTotal(t *testing.T) {
	assert.Equal(t, 42, parseTotal(json.RawMessage(`42`)))
	assert.Equal(t, 42, parseTotal(json.RawMessage(`"42"`)))
	assert.Equal(t, 0, parseTotal(nil))
	assert.Equal(t, 0, parseTotal(json.RawMessage(`"many"`)))
	assert.Equal(t, 0, parseTotal(json.RawMessage(`-3`)))
}

const summaryJSON = `{
	"billingCycleStart": "2026-01-01T00:00:00.000Z",
	"billingCycleEnd": "2026-02-01T00:00:00.000Z",
	"membershipType": "pro",
	"limitType": "user",
	"isUnlimited": false,
	"autoModelSelectedDisplayMessage": "You've used 20% of your included usage",
	"individualUsage": {
		"plan": {
			"enabled": true,
			"used": 100,
			"limit": 500,
			"remaining": 400,
			"breakdown": {"included": 90, "bonus": 10, "total": 100},
			"totalPercentUsed": 0.2
		},
		"onDemand": {"enabled": true, "used": 3.5, "limit": null, "remaining": null}
	},
	"teamUsage": {}
}`

func TestFetchBillingSummary(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, summaryPath, r.URL.Path)
		assert.Contains(t, r.Header.Get("Cookie"), "WorkosCursorSessionToken=")
		assert.Empty(t, r.Header.Get("Origin"))
		_, _ = io.WriteString(w, summaryJSON)
	}))
	defer ts.Close()

	summary, err := newTestClient(ts.URL).FetchBillingSummary(context.Background(), testCreds)
	require.NoError(t, err)

	assert.Equal(t, "pro", summary.MembershipType)
	require.NotNil(t, summary.IndividualUsage.Plan)
	assert.Equal(t, 500.0, summary.IndividualUsage.Plan.Limit)
	assert.InDelta(t, 20.0, summary.PlanPercentUsed(), 1e-9)
	require.NotNil(t, summary.IndividualUsage.OnDemand)
	assert.Nil(t, summary.IndividualUsage.OnDemand.Limit)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), summary.CycleStart().UTC())
}

func TestFetchBillingSummary_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"Unauthorized", http.StatusUnauthorized, "", ErrUnauthorized},
		{"ServerError", http.StatusInternalServerError, "oops", nil},
		{"NullBody", http.StatusOK, "null", nil},
		{"Array", http.StatusOK, "[]", nil},
		{"BadJSON", http.StatusOK, "{nope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			_, err := newTestClient(ts.URL).FetchBillingSummary(context.Background(), testCreds)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
