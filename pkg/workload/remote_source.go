package workload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mohamed-moneim/cpusched/pkg/proc"
)

const (
	defaultHTTPClientTimeout = 2 * time.Second
	defaultMaxAttempts       = 3
	defaultBackoff           = 200 * time.Millisecond
	defaultBreakerName       = "workload-remote-source"
)

var (
	errRetryableStatus  = errors.New("workload: retryable status code")
	errUnexpectedStatus = errors.New("workload: unexpected status code")
	errExhaustedRetries = errors.New("workload: exhausted retry budget")
	errRequestFailed    = errors.New("workload: request execution failed")
	// ErrGeneratorUnavailable wraps a circuit-breaker rejection: the
	// remote workload generator has failed enough recent requests that
	// the breaker is open and new requests fail fast instead of
	// stalling the run.
	ErrGeneratorUnavailable = errors.New("workload: remote generator unavailable")
)

// remoteClientConfig holds the client settings that RemoteOption
// values adjust at construction.
type remoteClientConfig struct {
	maxAttempt int
	backoff    time.Duration
	timeout    time.Duration
}

// RemoteOption mutates a RemoteSource's client configuration at construction.
type RemoteOption func(*remoteClientConfig)

// WithMaxAttempts overrides the retry budget for the workload fetch.
func WithMaxAttempts(attempts int) RemoteOption {
	return func(cfg *remoteClientConfig) {
		if attempts > 0 {
			cfg.maxAttempt = attempts
		}
	}
}

// WithBackoff overrides the delay between retry attempts.
func WithBackoff(delay time.Duration) RemoteOption {
	return func(cfg *remoteClientConfig) {
		if delay > 0 {
			cfg.backoff = delay
		}
	}
}

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) RemoteOption {
	return func(cfg *remoteClientConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// RemoteSource fetches a workload descriptor list from an HTTP
// endpoint standing in for a remote workload generator service.
// Requests are retried with a fixed backoff and guarded by a circuit
// breaker so a generator that is down or flapping fails the run
// immediately rather than stalling it.
type RemoteSource struct {
	http       *http.Client
	url        string
	maxAttempt int
	backoff    time.Duration
	breaker    *gobreaker.CircuitBreaker

	descs   []proc.Descriptor
	pos     int
	fetched bool
}

// NewRemoteSource builds a RemoteSource that fetches its descriptor
// list from url on the first call to Next.
func NewRemoteSource(httpClient *http.Client, url string, opts ...RemoteOption) *RemoteSource {
	cfg := remoteClientConfig{
		maxAttempt: defaultMaxAttempts,
		backoff:    defaultBackoff,
		timeout:    defaultHTTPClientTimeout,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        defaultBreakerName,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &RemoteSource{
		http:       httpClient,
		url:        strings.TrimSpace(url),
		maxAttempt: cfg.maxAttempt,
		backoff:    cfg.backoff,
		breaker:    breaker,
	}
}

// Next lazily fetches the full descriptor list on first call, then
// replays it in arrival order exactly like FileSource.
func (s *RemoteSource) Next() (proc.Descriptor, bool, error) {
	if !s.fetched {
		descs, err := s.fetch(context.Background())
		if err != nil {
			return proc.Descriptor{}, false, err
		}

		s.descs = descs
		s.fetched = true
	}

	if s.pos >= len(s.descs) {
		return proc.Descriptor{}, false, nil
	}

	d := s.descs[s.pos]
	s.pos++

	return d, true, nil
}

func (s *RemoteSource) fetch(ctx context.Context) ([]proc.Descriptor, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		return s.fetchWithRetry(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrGeneratorUnavailable, err)
		}

		return nil, err
	}

	descs, ok := result.([]proc.Descriptor)
	if !ok {
		return nil, fmt.Errorf("workload: unexpected breaker result type %T", result)
	}

	sortDescriptors(descs)

	return descs, nil
}

func (s *RemoteSource) fetchWithRetry(ctx context.Context) ([]proc.Descriptor, error) {
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempt; attempt++ {
		descs, retry, err := s.tryFetch(ctx)
		if err == nil {
			return descs, nil
		}

		if !retry {
			return nil, err
		}

		lastErr = err

		if attempt == s.maxAttempt {
			break
		}

		if waitErr := s.wait(ctx); waitErr != nil {
			return nil, fmt.Errorf("retry wait: %w", waitErr)
		}
	}

	if lastErr == nil {
		return nil, errExhaustedRetries
	}

	return nil, fmt.Errorf("%w: %w", errExhaustedRetries, lastErr)
}

func (s *RemoteSource) wait(ctx context.Context) error {
	timer := time.NewTimer(s.backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context done while waiting to retry: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (s *RemoteSource) tryFetch(ctx context.Context) ([]proc.Descriptor, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, fmt.Errorf("%w: %w", errRequestFailed, ctxErr)
		}

		return nil, true, fmt.Errorf("%w: %w", errRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isRetryableStatus(resp.StatusCode) {
			return nil, true, fmt.Errorf("%w: status %d", errRetryableStatus, resp.StatusCode)
		}

		return nil, false, fmt.Errorf("%w: status %d (body %s)", errUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var wire []wireDescriptor
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, false, fmt.Errorf("decode workload response: %w", err)
	}

	descs := make([]proc.Descriptor, 0, len(wire))

	for _, w := range wire {
		d := proc.Descriptor{ID: w.ID, ArrivalTime: w.ArrivalTime, Runtime: w.Runtime, Priority: w.Priority}
		if err := d.Validate(); err != nil {
			return nil, false, err
		}

		descs = append(descs, d)
	}

	return descs, false, nil
}

type wireDescriptor struct {
	ID          int `json:"id"`
	ArrivalTime int `json:"arrival_time"`
	Runtime     int `json:"runtime"`
	Priority    int `json:"priority"`
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	default:
		return status >= 500 && status != http.StatusNotImplemented
	}
}

func sortDescriptors(descs []proc.Descriptor) {
	sort.SliceStable(descs, func(i, j int) bool {
		if descs[i].ArrivalTime != descs[j].ArrivalTime {
			return descs[i].ArrivalTime < descs[j].ArrivalTime
		}

		return descs[i].ID < descs[j].ID
	})
}
