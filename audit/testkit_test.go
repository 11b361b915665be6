package audit_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/idilettant/seoaudit/audit"
)

var fixtureTime = time.Date(2024, time.June, 1, 12, 34, 56, 0, time.UTC)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return fn(req) }

type route struct {
	status int
	body   string
	header http.Header
}

func htmlPage(body string) route {
	return route{status: http.StatusOK, body: body, header: http.Header{"Content-Type": []string{"text/html; charset=utf-8"}}}
}

func textFile(status int, body string) route {
	return route{status: status, body: body, header: http.Header{"Content-Type": []string{"text/plain"}}}
}

// site serves routes keyed by host+path and records every request.
type site struct {
	mu       sync.Mutex
	routes   map[string]route
	requests []string
}

func newSite(routes map[string]route) *site {
	return &site{routes: routes}
}

func (s *site) client() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		key := req.URL.Host + req.URL.Path

		s.mu.Lock()
		s.requests = append(s.requests, key)
		r, ok := s.routes[key]
		s.mu.Unlock()

		if !ok {
			r = textFile(http.StatusNotFound, "not found")
		}

		return responseWithBody(r.status, []byte(r.body), r.header), nil
	})}
}

func (s *site) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, req := range s.requests {
		if req == key {
			n++
		}
	}

	return n
}

func (s *site) hosts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	hosts := []string{}
	for _, req := range s.requests {
		hosts = append(hosts, strings.SplitN(req, "/", 2)[0])
	}

	return hosts
}

func responseWithBody(status int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}

	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Sleep(ctx context.Context, _ time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func newService(client *http.Client, mutate ...func(*audit.Options)) *audit.Service {
	opts := audit.Options{
		HTTPClient: client,
		Clock:      &testClock{now: fixtureTime},
	}
	for _, fn := range mutate {
		fn(&opts)
	}

	return audit.New(opts)
}

func begin(t *testing.T, svc *audit.Service) *audit.Session {
	t.Helper()

	session, err := svc.Begin()
	require.NoError(t, err)
	t.Cleanup(session.Close)

	return session
}

// prose returns n distinct words in short sentences.
func prose(n int) string {
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "topic%d", i)
		if (i+1)%10 == 0 {
			b.WriteString(". ")
		} else {
			b.WriteString(" ")
		}
	}

	return b.String()
}

// recorder is a Sink that keeps every event.
type recorder struct {
	mu        sync.Mutex
	progress  []audit.Progress
	results   []audit.CrawlResult
	checklist []audit.InfraReport
}

func (r *recorder) Progress(p audit.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, p)
}

func (r *recorder) PageResult(res audit.CrawlResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recorder) Checklist(c audit.InfraReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checklist = append(r.checklist, c)
}

type fakeScorer struct {
	scores *audit.Lighthouse
	err    error
	calls  []string
}

func (f *fakeScorer) Scores(_ context.Context, pageURL string) (*audit.Lighthouse, error) {
	f.calls = append(f.calls, pageURL)

	return f.scores, f.err
}

func findingIDs(findings []audit.Finding) []string {
	ids := make([]string, 0, len(findings))
	for _, f := range findings {
		ids = append(ids, f.ID)
	}

	return ids
}

func findByID(t *testing.T, findings []audit.Finding, id string) audit.Finding {
	t.Helper()

	for _, f := range findings {
		if f.ID == id {
			return f
		}
	}
	require.Failf(t, "finding not found", "id %q in %v", id, findingIDs(findings))

	return audit.Finding{}
}
