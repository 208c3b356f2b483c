// Package fetch performs bounded-timeout JSON GETs with exponential
// backoff retry.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTimeout = 2500 * time.Millisecond
	DefaultRetries = 2

	initialWait = 200 * time.Millisecond
	maxBodySize = 16 << 20
)

// Doer is the subset of *http.Client used by the fetcher.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options bound one GetJSON call. Attempts made = Retries + 1.
type Options struct {
	Timeout time.Duration
	Retries int
}

func DefaultOptions() Options {
	return Options{Timeout: DefaultTimeout, Retries: DefaultRetries}
}

type State int

const (
	Attempting State = iota
	BackoffWait
	Succeeded
	ExhaustedFailed
)

func (s State) String() string {
	switch s {
	case Attempting:
		return "attempting"
	case BackoffWait:
		return "backoff_wait"
	case Succeeded:
		return "succeeded"
	case ExhaustedFailed:
		return "exhausted_failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transition records one move of the retry state machine. Attempt is the
// zero-based attempt index; Wait is set on BackoffWait; Err carries the
// failure that caused the move, if any.
type Transition struct {
	URL     string
	To      State
	Attempt int
	Wait    time.Duration
	Err     error
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type Option func(*Fetcher)

func WithSleeper(s Sleeper) Option {
	return func(f *Fetcher) { f.sleep = s }
}

func WithObserver(fn func(Transition)) Option {
	return func(f *Fetcher) { f.observe = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(f *Fetcher) { f.tracer = t }
}

type Fetcher struct {
	client  Doer
	sleep   Sleeper
	observe func(Transition)
	logger  *slog.Logger
	tracer  trace.Tracer
}

func New(client Doer, opts ...Option) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{
		client: client,
		sleep:  sleepContext,
		logger: slog.Default(),
		tracer: trace.NewNoopTracerProvider().Tracer("fetch"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// GetJSON fetches rawURL and decodes the body into out. Each attempt gets
// its own timeout; failures other than the last are followed by a wait of
// 200ms·2^attempt. After the final attempt the last error is returned as
// is (*TimeoutError, *HTTPError, *DecodeError or the client's error). If
// ctx ends first, ctx's error is returned.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, opts Options, out any) error {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	ctx, span := f.tracer.Start(ctx, "fetch.get-json", trace.WithAttributes(
		attribute.String("http.url", rawURL),
		attribute.Int("fetch.retries", opts.Retries),
	))
	defer span.End()

	schedule := &backoff.ExponentialBackOff{
		InitialInterval:     initialWait,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         30 * time.Second,
	}
	schedule.Reset()

	attempts := opts.Retries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		f.emit(Transition{URL: rawURL, To: Attempting, Attempt: attempt})

		err := f.attempt(ctx, rawURL, opts.Timeout, out)
		if err == nil {
			span.SetAttributes(attribute.Int("fetch.attempts", attempt+1))
			f.emit(Transition{URL: rawURL, To: Succeeded, Attempt: attempt})
			return nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			f.emit(Transition{URL: rawURL, To: ExhaustedFailed, Attempt: attempt, Err: ctxErr})
			span.SetStatus(codes.Error, ctxErr.Error())
			return ctxErr
		}

		f.logger.Warn("fetch attempt failed",
			"url", rawURL,
			"attempt", attempt+1,
			"of", attempts,
			"error", err,
		)

		if attempt == attempts-1 {
			break
		}

		wait := schedule.NextBackOff()
		f.emit(Transition{URL: rawURL, To: BackoffWait, Attempt: attempt, Wait: wait, Err: err})
		if err := f.sleep(ctx, wait); err != nil {
			f.emit(Transition{URL: rawURL, To: ExhaustedFailed, Attempt: attempt, Err: err})
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	f.emit(Transition{URL: rawURL, To: ExhaustedFailed, Attempt: attempts - 1, Err: lastErr})
	span.SetAttributes(attribute.Int("fetch.attempts", attempts))
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return lastErr
}

func (f *Fetcher) attempt(ctx context.Context, rawURL string, timeout time.Duration, out any) error {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return timeoutOr(ctx, attemptCtx, rawURL, timeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &HTTPError{StatusCode: resp.StatusCode, Status: statusText(resp), URL: rawURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return timeoutOr(ctx, attemptCtx, rawURL, timeout, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{URL: rawURL, Err: err}
	}
	return nil
}

// timeoutOr maps a failure caused by the attempt's own deadline to a
// TimeoutError and passes anything else through.
func timeoutOr(parent, attemptCtx context.Context, rawURL string, timeout time.Duration, err error) error {
	if parent.Err() == nil && attemptCtx.Err() == context.DeadlineExceeded {
		return &TimeoutError{URL: rawURL, After: timeout}
	}
	return err
}

func (f *Fetcher) emit(t Transition) {
	if f.observe != nil {
		f.observe(t)
	}
}

func statusText(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
