package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/idilettant/seoaudit/internal/limiter"
)

const (
	// DefaultTimeout bounds a single request including the body read.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxBodyBytes caps how much of a response body is consumed.
	DefaultMaxBodyBytes int64 = 2 << 20

	baseRetryDelay = 100 * time.Millisecond
	maxRetryDelay  = 2 * time.Second
)

var errInvalidRequest = errors.New("invalid request")

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	text := http.StatusText(e.StatusCode)
	if text == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}

	return fmt.Sprintf("http status %d %s", e.StatusCode, text)
}

// Result contains the HTTP response data. Body holds at most MaxBodyBytes.
type Result struct {
	URL         string
	StatusCode  int
	Header      http.Header
	ContentType string
	Body        []byte
	Truncated   bool
}

// Config holds the Fetcher settings. Zero values fall back to package defaults.
type Config struct {
	Client       *http.Client
	Timeout      time.Duration
	UserAgent    string
	Limiter      *limiter.Limiter
	Retries      int
	RetryDelay   time.Duration
	MaxBodyBytes int64
	Clock        limiter.Timer
}

// Fetcher performs HTTP GET requests with a timeout, a body cap, retries and rate limiting.
type Fetcher struct {
	cfg Config
}

// New creates a Fetcher with the provided configuration.
func New(cfg Config) *Fetcher {
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = baseRetryDelay
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Clock == nil {
		cfg.Clock = limiter.NewClock()
	}

	return &Fetcher{cfg: cfg}
}

// Fetch performs a GET request, retrying temporary failures (network errors, 429, 5xx).
// A non-2xx final response is returned together with a *StatusError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Result, error) {
	attempts := f.cfg.Retries + 1

	var (
		result Result
		err    error
	)

	for attempt := range attempts {
		result, err = f.fetchOnce(ctx, rawURL)
		if err == nil && isSuccess(result.StatusCode) {
			return result, nil
		}

		if err == nil {
			err = &StatusError{StatusCode: result.StatusCode}
		}

		if ctx.Err() != nil || !isRetryable(result.StatusCode, err) || attempt == attempts-1 {
			return result, err
		}

		if sleepErr := f.cfg.Clock.Sleep(ctx, f.retryDelayFor(attempt+1)); sleepErr != nil {
			return result, sleepErr
		}
	}

	return result, err
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (Result, error) {
	if err := f.cfg.Limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	requestCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	if parsedURL.Path == "" {
		parsedURL.Path = "/"
	}

	request, err := http.NewRequestWithContext(requestCtx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	if f.cfg.UserAgent != "" {
		request.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	request.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	response, err := f.cfg.Client.Do(request)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = response.Body.Close()
	}()

	result := Result{
		URL:         rawURL,
		StatusCode:  response.StatusCode,
		Header:      response.Header,
		ContentType: response.Header.Get("Content-Type"),
	}
	if response.Request != nil && response.Request.URL != nil {
		result.URL = response.Request.URL.String()
	}

	// Read one byte past the cap to tell a truncated body from an exact fit.
	body, err := io.ReadAll(io.LimitReader(response.Body, f.cfg.MaxBodyBytes+1))
	if int64(len(body)) > f.cfg.MaxBodyBytes {
		body = body[:f.cfg.MaxBodyBytes]
		result.Truncated = true
	}
	result.Body = body

	if err != nil && len(body) == 0 {
		return result, fmt.Errorf("read body: %w", err)
	}

	return result, nil
}

func isSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}

func isRetryable(statusCode int, err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, errInvalidRequest) {
		return false
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	// *url.Error itself satisfies net.Error, so judge the innermost cause.
	var urlErr *url.Error
	for errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}

func (f *Fetcher) retryDelayFor(attempt int) time.Duration {
	delay := f.cfg.RetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}

	return min(delay, maxRetryDelay)
}
