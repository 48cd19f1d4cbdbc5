package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alimgiray/glscope/internal/models"
	"github.com/alimgiray/glscope/internal/provider"
	"github.com/alimgiray/glscope/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// Fetch defaults
const (
	DefaultFetchTimeout = 5 * time.Second
	DefaultFetchRetries = 20
	DefaultRetryDelay   = 300 * time.Millisecond
)

// Operation labels used in logs and failure records
const (
	OpListProjects = "fetch project list"
	OpListCommits  = "fetch commits"
	OpCommitDiff   = "fetch commit diff"
	OpCommitRefs   = "fetch commit refs"
)

var (
	// ErrRetriesExhausted is matched by every terminal FetchError
	ErrRetriesExhausted = errors.New("maximum number of attempts reached")
	// ErrTimeout is wrapped by attempts that lost the race against the timer
	ErrTimeout = errors.New("request timed out")
)

// Attempt failure kinds
const (
	AttemptTimeout   = metrics.OutcomeTimeout
	AttemptHTTP      = metrics.OutcomeHTTP
	AttemptTransport = metrics.OutcomeTransport
)

// Operation identifies a fetch for logging and failure records
type Operation struct {
	Name        string
	ProjectName string
	AuthorEmail string
}

// AttemptError is the failure of a single attempt
type AttemptError struct {
	Kind   string
	Status int
	Err    error
}

func (e *AttemptError) Error() string {
	return e.Err.Error()
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// FetchError is returned once a fetch has used up all of its attempts
type FetchError struct {
	URL       string
	Operation string
	Attempts  int
	Last      *AttemptError
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v after %d attempts: %v", e.Operation, ErrRetriesExhausted, e.Attempts, e.Last)
}

func (e *FetchError) Unwrap() error {
	return e.Last
}

func (e *FetchError) Is(target error) bool {
	return target == ErrRetriesExhausted
}

// FetcherOptions holds the per-call retry budget
type FetcherOptions struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

// DefaultFetcherOptions returns the stock timeout and retry budget
func DefaultFetcherOptions() FetcherOptions {
	return FetcherOptions{
		Timeout:    DefaultFetchTimeout,
		Retries:    DefaultFetchRetries,
		RetryDelay: DefaultRetryDelay,
	}
}

func (o FetcherOptions) withDefaults() FetcherOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultFetchTimeout
	}
	if o.Retries <= 0 {
		o.Retries = DefaultFetchRetries
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	return o
}

// fetchState is the state of one Fetch call
type fetchState int

const (
	stateAttempting fetchState = iota
	stateWaiting
	stateRetrying
	stateSucceeded
	stateFailed
)

type attemptResult struct {
	body json.RawMessage
	err  *AttemptError
}

// Fetcher issues GET requests with a per-attempt timeout and a fixed retry
// budget. Terminal failures are appended to the run's failure log.
type Fetcher struct {
	provider provider.Provider
	failures *models.FailureLog
	opts     FetcherOptions
	log      logrus.FieldLogger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a fetcher bound to a provider and a failure log
func NewFetcher(p provider.Provider, failures *models.FailureLog, opts FetcherOptions, log logrus.FieldLogger) *Fetcher {
	return &Fetcher{
		provider: p,
		failures: failures,
		opts:     opts.withDefaults(),
		log:      log,
		sleep:    sleepContext,
	}
}

// Fetch returns the JSON body of rawURL. It fails only after the configured
// number of attempts, or when ctx is done.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, op Operation) (json.RawMessage, error) {
	var (
		state   = stateAttempting
		attempt int
		started time.Time
		pending <-chan attemptResult
		cancel  context.CancelFunc
		body    json.RawMessage
		lastErr *AttemptError
	)

	for {
		switch state {
		case stateAttempting:
			attempt++
			req, err := f.newRequest(ctx, rawURL)
			if err != nil {
				return nil, fmt.Errorf("%s: build request: %w", op.Name, err)
			}
			started = time.Now()
			pending, cancel = f.start(req)
			state = stateWaiting

		case stateWaiting:
			timer := time.NewTimer(f.opts.Timeout)
			select {
			case res := <-pending:
				timer.Stop()
				body, lastErr = res.body, res.err
			case <-timer.C:
				lastErr = &AttemptError{
					Kind: AttemptTimeout,
					Err:  fmt.Errorf("%s: attempt %d: %w after %s", op.Name, attempt, ErrTimeout, f.opts.Timeout),
				}
			case <-ctx.Done():
				timer.Stop()
				cancel()
				return nil, ctx.Err()
			}
			cancel()
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			elapsed := time.Since(started)
			metrics.FetchAttemptDuration.WithLabelValues(op.Name).Observe(elapsed.Seconds())

			if lastErr == nil {
				metrics.FetchAttempts.WithLabelValues(op.Name, metrics.OutcomeSuccess).Inc()
				state = stateSucceeded
				continue
			}

			metrics.FetchAttempts.WithLabelValues(op.Name, lastErr.Kind).Inc()
			entry := f.log.WithFields(logrus.Fields{
				"operation": op.Name,
				"url":       f.provider.Redact(rawURL),
				"attempt":   attempt,
				"elapsed":   elapsed.String(),
			}).WithError(lastErr)

			if attempt >= f.opts.Retries {
				entry.Error("Request failed, giving up")
				f.RecordFailure(op, rawURL, lastErr)
				metrics.FetchTerminalFailures.WithLabelValues(op.Name).Inc()
				state = stateFailed
			} else {
				entry.Warn("Request failed, retrying")
				state = stateRetrying
			}

		case stateRetrying:
			if err := f.sleep(ctx, f.opts.RetryDelay); err != nil {
				return nil, err
			}
			state = stateAttempting

		case stateSucceeded:
			return body, nil

		case stateFailed:
			return nil, &FetchError{
				URL:       f.provider.Redact(rawURL),
				Operation: op.Name,
				Attempts:  attempt,
				Last:      lastErr,
			}
		}
	}
}

// RecordFailure appends a failure record for rawURL to the failure log
func (f *Fetcher) RecordFailure(op Operation, rawURL string, err error) {
	record := models.FailureRecord{
		URL:       f.provider.Redact(rawURL),
		Operation: op.Name,
		Error:     err.Error(),
	}
	if op.ProjectName != "" {
		name := op.ProjectName
		record.ProjectName = &name
	}
	if op.AuthorEmail != "" {
		email := op.AuthorEmail
		record.Author = &email
	}
	f.failures.Append(record)
}

func (f *Fetcher) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	f.provider.Authorize(req)
	return req, nil
}

// start issues req on its own cancelable context. The returned channel
// receives exactly one result; cancel aborts the in-flight request.
func (f *Fetcher) start(req *http.Request) (<-chan attemptResult, context.CancelFunc) {
	ctx, cancel := context.WithCancel(req.Context())
	req = req.WithContext(ctx)

	results := make(chan attemptResult, 1)
	go func() {
		results <- f.do(req)
	}()
	return results, cancel
}

func (f *Fetcher) do(req *http.Request) attemptResult {
	resp, err := f.provider.Client().Do(req)
	if err != nil {
		return attemptResult{err: &AttemptError{Kind: AttemptTransport, Err: fmt.Errorf("network error: %w", err)}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return attemptResult{err: &AttemptError{
			Kind:   AttemptHTTP,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("HTTP error: status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return attemptResult{err: &AttemptError{Kind: AttemptTransport, Err: fmt.Errorf("network error: read body: %w", err)}}
	}
	return attemptResult{body: body}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
