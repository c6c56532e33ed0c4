package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTimer waits for real and remembers every requested delay.
type recordingTimer struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingTimer) After(d time.Duration) <-chan time.Time {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return time.After(d)
}

func testConfig() Config {
	return Config{
		Attempts:   5,
		BaseDelay:  5 * time.Millisecond,
		Timeout:    time.Second,
		MinSpacing: time.Millisecond,
	}
}

func TestFetch_BacksOffOnTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("<documento/>"))
	}))
	defer srv.Close()

	timer := &recordingTimer{}
	f := New(testConfig(), WithTimer(timer))

	start := time.Now()
	body, err := f.Fetch(context.Background(), srv.URL)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "<documento/>", string(body))
	assert.Equal(t, int32(4), calls.Load())

	require.Len(t, timer.delays, 3)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond}, timer.delays)

	var total time.Duration
	for _, d := range timer.delays {
		total += d
	}
	assert.GreaterOrEqual(t, elapsed, total)
}

func TestBackoff(t *testing.T) {
	f := New(Config{BaseDelay: 2 * time.Second})
	tooMany := &StatusError{Code: http.StatusTooManyRequests}

	// retry-go passes 1 for the first retry
	assert.Equal(t, 2*time.Second, f.backoff(1, tooMany, nil))
	assert.Equal(t, 4*time.Second, f.backoff(2, tooMany, nil))
	assert.Equal(t, 8*time.Second, f.backoff(3, tooMany, nil))
	assert.Equal(t, 2*time.Second, f.backoff(0, tooMany, nil))
	assert.Equal(t, 2*time.Second, f.backoff(3, &StatusError{Code: http.StatusBadGateway}, nil))
}

func TestFetch_FlatDelayOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	timer := &recordingTimer{}
	f := New(testConfig(), WithTimer(timer))

	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 5 * time.Millisecond}, timer.delays)
}

func TestFetch_ExhaustedReturnsFetchError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var retries atomic.Int32
	cfg := testConfig()
	cfg.Attempts = 3
	f := New(cfg, WithRetryHook(func(string, uint, error) { retries.Add(1) }))

	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, srv.URL, fe.URL)
	assert.Equal(t, http.StatusServiceUnavailable, fe.LastStatus)
	assert.Equal(t, int32(3), calls.Load())
	assert.GreaterOrEqual(t, retries.Load(), int32(2))
}

func TestFetch_SendsAcceptHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("Accept")))
	}))
	defer srv.Close()

	f := New(testConfig())
	body, err := f.FetchAccept(context.Background(), srv.URL, "application/json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", string(body))
}

func TestFetch_MinimumSpacingAcrossCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MinSpacing = 20 * time.Millisecond
	f := New(cfg)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	// the first request passes immediately, the next two wait one spacing each
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(testConfig())
	_, err := f.Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
