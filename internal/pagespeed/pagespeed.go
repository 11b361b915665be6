// Package pagespeed queries the PageSpeed Insights API, which runs Lighthouse
// remotely and returns category scores for a URL.
package pagespeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the public PageSpeed Insights v5 endpoint.
	DefaultEndpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"
	// DefaultTimeout covers a full remote Lighthouse run.
	DefaultTimeout = 60 * time.Second
	// DefaultStrategy emulates a mobile device.
	DefaultStrategy = "mobile"
)

var categoryKeys = []string{"performance", "accessibility", "best-practices", "seo"}

// ErrNoCategories is returned when the response carries no Lighthouse categories.
var ErrNoCategories = errors.New("pagespeed response has no lighthouse categories")

// Scores are the four Lighthouse category scores on a 0-100 scale.
// Unavailable lists the category keys Lighthouse returned no score for;
// their fields stay 0 and must not be read as a result.
type Scores struct {
	Performance   int      `json:"performance"`
	Accessibility int      `json:"accessibility"`
	BestPractices int      `json:"bestPractices"`
	SEO           int      `json:"seo"`
	Unavailable   []string `json:"unavailable,omitempty"`
}

// Category is one labelled score.
type Category struct {
	Key       string
	Label     string
	Score     int
	Available bool
}

// Categories lists the scores in a fixed display order.
func (s Scores) Categories() []Category {
	categories := []Category{
		{Key: "performance", Label: "Performance", Score: s.Performance},
		{Key: "accessibility", Label: "Accessibility", Score: s.Accessibility},
		{Key: "best-practices", Label: "Best practices", Score: s.BestPractices},
		{Key: "seo", Label: "SEO", Score: s.SEO},
	}
	for i := range categories {
		categories[i].Available = !slices.Contains(s.Unavailable, categories[i].Key)
	}

	return categories
}

// Scorer returns Lighthouse scores for a page.
type Scorer interface {
	Scores(ctx context.Context, pageURL string) (*Scores, error)
}

// Client calls the PageSpeed Insights API.
type Client struct {
	endpoint   string
	apiKey     string
	strategy   string
	httpClient *http.Client
}

// New creates a Client. Empty endpoint or strategy use the defaults; timeout <= 0 uses DefaultTimeout.
func New(endpoint, apiKey, strategy string, timeout time.Duration, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if strategy == "" {
		strategy = DefaultStrategy
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	client := *httpClient
	client.Timeout = timeout

	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		strategy:   strategy,
		httpClient: &client,
	}
}

type apiResponse struct {
	LighthouseResult struct {
		Categories map[string]struct {
			Score *float64 `json:"score"`
		} `json:"categories"`
	} `json:"lighthouseResult"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Scores runs a remote Lighthouse audit for pageURL.
func (c *Client) Scores(ctx context.Context, pageURL string) (*Scores, error) {
	query := url.Values{}
	query.Set("url", pageURL)
	query.Set("strategy", c.strategy)
	for _, key := range categoryKeys {
		query.Add("category", key)
	}
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pagespeed request: %w", c.stripURL(err))
	}
	defer func() { _ = resp.Body.Close() }()

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode pagespeed response (HTTP %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if payload.Error != nil && payload.Error.Message != "" {
			msg = payload.Error.Message
		}

		return nil, fmt.Errorf("pagespeed API error (HTTP %d): %s", resp.StatusCode, msg)
	}

	return scoresFrom(payload)
}

// stripURL drops the request URL from transport errors; it carries the API key.
func (c *Client) stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	if c.apiKey != "" && strings.Contains(err.Error(), c.apiKey) {
		return errors.New(strings.ReplaceAll(err.Error(), c.apiKey, "REDACTED"))
	}

	return err
}

func scoresFrom(payload apiResponse) (*Scores, error) {
	categories := payload.LighthouseResult.Categories
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}

	scores := &Scores{}
	score := func(key string) int {
		category, ok := categories[key]
		if !ok || category.Score == nil {
			scores.Unavailable = append(scores.Unavailable, key)
			return 0
		}

		return int(math.Round(*category.Score * 100))
	}

	scores.Performance = score("performance")
	scores.Accessibility = score("accessibility")
	scores.BestPractices = score("best-practices")
	scores.SEO = score("seo")

	return scores, nil
}
