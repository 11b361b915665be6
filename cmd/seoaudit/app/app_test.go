package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/idilettant/seoaudit/audit"
	"github.com/idilettant/seoaudit/internal/config"
	"github.com/idilettant/seoaudit/internal/report"
)

const fixturePage = `<!DOCTYPE html>
<html lang="en">
<head>
<title>Acme widgets for every workshop</title>
<meta name="description" content="Acme builds durable widgets for workshops of every size, with free shipping and a lifetime warranty on parts.">
</head>
<body><h1>Acme widgets</h1><p>Widgets for workshops.</p></body>
</html>`

func TestCLI_AuditPrintsJSON(t *testing.T) {
	t.Parallel()

	client := newFixtureClient()
	clock := fixedClock{now: fixtureTime()}
	args := []string{"seoaudit", "--config", quietConfig(t), "audit", "--retries=0", "example.com"}

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), args, &stdout, &stderr, client, clock)
	require.NoError(t, err)
	require.Empty(t, stderr.String())

	output := stdout.Bytes()
	require.True(t, bytes.HasSuffix(output, []byte("\n")))
	require.True(t, json.Valid(bytes.TrimSuffix(output, []byte("\n"))))
	require.Equal(t, string(expectedPageReport(t, client, clock)), string(output))
}

func TestCLI_MissingURLPrintsHelp(t *testing.T) {
	t.Parallel()

	for _, command := range []string{"audit", "crawl", "prelaunch"} {
		t.Run(command, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			err := Run(context.Background(), []string{"seoaudit", command}, &stdout, &stderr, newFixtureClient(), fixedClock{now: fixtureTime()})
			require.NoError(t, err)
			require.Contains(t, stdout.String(), command)
			require.Contains(t, stdout.String(), "<url>")
		})
	}
}

func TestCLI_CrawlPrintsReportWhenFetchFails(t *testing.T) {
	t.Parallel()

	client := &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial error")
		}),
	}
	args := []string{"seoaudit", "--config", quietConfig(t), "crawl", "--retries=0", "--compact", "https://example.com"}

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), args, &stdout, &stderr, client, fixedClock{now: fixtureTime()})
	require.NoError(t, err)

	var site audit.SiteCrawlReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &site))
	require.Len(t, site.Pages, 1)
	require.True(t, site.Pages[0].Failed())
	require.Equal(t, 1, strings.Count(stdout.String(), "\n"))
}

func TestCLI_CrawlMarkdown(t *testing.T) {
	t.Parallel()

	args := []string{"seoaudit", "--config", quietConfig(t), "crawl", "--format=markdown", "--max-pages=1", "https://example.com"}

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), args, &stdout, &stderr, newFixtureClient(), fixedClock{now: fixtureTime()})
	require.NoError(t, err)
	require.Contains(t, stdout.String(), "# SEO Site Audit")
	require.Contains(t, stdout.String(), "example.com")
}

func TestCLI_RejectsBadOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{
			name: "unknown format",
			args: []string{"audit", "--format=xml", "example.com"},
			want: report.ErrUnknownFormat,
		},
		{
			name: "zero max pages",
			args: []string{"crawl", "--max-pages=0", "example.com"},
			want: config.ErrInvalidMaxPages,
		},
		{
			name: "negative retries",
			args: []string{"prelaunch", "--retries=-1", "example.com"},
			want: config.ErrNegativeRetries,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := append([]string{"seoaudit", "--config", quietConfig(t)}, tt.args...)

			var stdout, stderr bytes.Buffer
			err := Run(context.Background(), args, &stdout, &stderr, newFixtureClient(), fixedClock{now: fixtureTime()})
			require.ErrorIs(t, err, tt.want)
			require.Empty(t, stdout.String())
		})
	}
}

func TestCLI_FlagsOverrideConfigFile(t *testing.T) {
	t.Parallel()

	var userAgents []string
	client := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			userAgents = append(userAgents, req.Header.Get("User-Agent"))
			return responseWithBody(http.StatusOK, "text/html; charset=utf-8", fixturePage), nil
		}),
	}

	path := filepath.Join(t.TempDir(), "seoaudit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: error\nuser_agent: from-file\n"), 0o600))

	args := []string{"seoaudit", "--config", path, "audit", "--user-agent=from-flag", "example.com"}

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), args, &stdout, &stderr, client, fixedClock{now: fixtureTime()})
	require.NoError(t, err)
	require.Equal(t, []string{"from-flag"}, userAgents)
}

func TestCLI_SampleConfig(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), []string{"seoaudit", "sample-config"}, &stdout, &stderr, newFixtureClient(), fixedClock{now: fixtureTime()})
	require.NoError(t, err)
	require.Equal(t, config.SampleConfig(), stdout.String())
}

func expectedPageReport(t *testing.T, client *http.Client, clock fixedClock) []byte {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Retries = 0

	svc := audit.New(serviceOptions(cfg, client, clock, nil))
	session, err := svc.Begin()
	require.NoError(t, err)
	defer session.Close()

	page, err := session.AuditPage(context.Background(), "https://example.com")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, page, report.FormatJSON, true))

	return buf.Bytes()
}

func quietConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seoaudit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: error\n"), 0o600))

	return path
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func (c fixedClock) Sleep(ctx context.Context, _ time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func fixtureTime() time.Time {
	return time.Date(2024, time.June, 1, 12, 34, 56, 0, time.UTC)
}

func newFixtureClient() *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Path == "/" || req.URL.Path == "" {
				return responseWithBody(http.StatusOK, "text/html; charset=utf-8", fixturePage), nil
			}

			return responseWithBody(http.StatusNotFound, "text/plain", "not found"), nil
		}),
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func responseWithBody(status int, contentType, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}
