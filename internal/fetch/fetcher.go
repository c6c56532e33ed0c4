// Package fetch implements a bounded-retry, rate-limited HTTP GET shared by
// every request a run sends to the BOE open-data endpoints.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultAttempts   = 5
	defaultBaseDelay  = 2 * time.Second
	defaultTimeout    = 30 * time.Second
	defaultMinSpacing = 250 * time.Millisecond
	defaultUserAgent  = "boe-rag/1.0"
)

// Config controls retry and pacing. Zero values take the defaults above.
type Config struct {
	Attempts   uint
	BaseDelay  time.Duration
	Timeout    time.Duration
	MinSpacing time.Duration
	UserAgent  string
}

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// FetchError is returned once the attempt budget is exhausted.
type FetchError struct {
	URL        string
	LastStatus int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: retries exhausted (last status %d): %v", e.URL, e.LastStatus, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RetryHook observes every failed attempt that will be retried.
type RetryHook func(url string, attempt uint, err error)

// Fetcher performs GET requests under a single shared minimum spacing.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     Config
	timer   retry.Timer
	logger  zerolog.Logger
	onRetry RetryHook
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimer swaps the timer used for backoff waits.
func WithTimer(t retry.Timer) Option {
	return func(f *Fetcher) {
		if t != nil {
			f.timer = t
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

func WithRetryHook(h RetryHook) Option {
	return func(f *Fetcher) {
		f.onRetry = h
	}
}

// New builds a Fetcher; the limiter enforces cfg.MinSpacing between consecutive requests.
func New(cfg Config, opts ...Option) *Fetcher {
	if cfg.Attempts == 0 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MinSpacing == 0 {
		cfg.MinSpacing = defaultMinSpacing
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	f := &Fetcher{
		client:  &http.Client{},
		limiter: newLimiter(cfg.MinSpacing),
		cfg:     cfg,
		timer:   realTimer{},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// newLimiter allows one request per spacing with no burst. A negative spacing disables pacing.
func newLimiter(spacing time.Duration) *rate.Limiter {
	if spacing <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(spacing), 1)
}

// Fetch GETs url and returns the body.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.FetchAccept(ctx, url, "")
}

// FetchAccept GETs url with the given Accept header.
func (f *Fetcher) FetchAccept(ctx context.Context, url, accept string) ([]byte, error) {
	var lastStatus int

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			b, status, err := f.attempt(ctx, url, accept)
			lastStatus = status
			return b, err
		},
		retry.Context(ctx),
		retry.Attempts(f.cfg.Attempts),
		retry.DelayType(f.backoff),
		retry.LastErrorOnly(true),
		retry.WithTimer(f.timer),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Warn().Str("url", url).Uint("attempt", n+1).Err(err).Msg("fetch attempt failed")
			if f.onRetry != nil {
				f.onRetry(url, n+1, err)
			}
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &FetchError{URL: url, LastStatus: lastStatus, Err: err}
	}
	return body, nil
}

// backoff doubles the base delay per retry on 429 and keeps it flat otherwise.
// retry-go counts n from 1 for the first retry.
func (f *Fetcher) backoff(n uint, err error, _ *retry.Config) time.Duration {
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
		if n > 0 {
			n--
		}
		return f.cfg.BaseDelay << n
	}
	return f.cfg.BaseDelay
}

func (f *Fetcher) attempt(ctx context.Context, url, accept string) ([]byte, int, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, 0, retry.Unrecoverable(err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, retry.Unrecoverable(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, retry.Unrecoverable(ctx.Err())
		}
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

type realTimer struct{}

func (realTimer) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
