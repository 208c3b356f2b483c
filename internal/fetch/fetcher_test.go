package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

type blockingDoer struct {
	calls atomic.Int32
}

func (d *blockingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	<-req.Context().Done()
	return nil, req.Context().Err()
}

type errDoer struct {
	err   error
	calls int
}

func (d *errDoer) Do(*http.Request) (*http.Response, error) {
	d.calls++
	return nil, d.err
}

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetJSONAlwaysTimesOut(t *testing.T) {
	doer := &blockingDoer{}
	sleeper := &recordingSleeper{}
	f := New(doer, WithSleeper(sleeper.sleep), WithLogger(quietLogger()))

	var out map[string]any
	err := f.GetJSON(context.Background(), "http://upstream.test/btc_jpy/ticker", Options{Timeout: 5 * time.Millisecond, Retries: 2}, &out)

	if got := doer.calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %T %v", err, err)
	}
	if !IsTransport(err) {
		t.Fatal("timeout must count as a transport failure")
	}
	var te *TimeoutError
	if !errors.As(err, &te) || te.After != 5*time.Millisecond {
		t.Fatalf("expected per-attempt timeout to be recorded, got %+v", te)
	}
	var ne net.Error
	if !errors.As(err, &ne) || !ne.Timeout() {
		t.Fatal("timeout error must report Timeout() through net.Error")
	}
	want := []time.Duration{200 * time.Millisecond, 400 * time.Millisecond}
	if !reflect.DeepEqual(sleeper.waits, want) {
		t.Fatalf("unexpected backoff waits: %v", sleeper.waits)
	}
}

func TestGetJSONFailsTwiceThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":1,"data":{"last":"100"}}`))
	}))
	defer srv.Close()

	var states []State
	sleeper := &recordingSleeper{}
	f := New(srv.Client(),
		WithSleeper(sleeper.sleep),
		WithLogger(quietLogger()),
		WithObserver(func(tr Transition) { states = append(states, tr.To) }),
	)

	var out struct {
		Success int `json:"success"`
		Data    struct {
			Last string `json:"last"`
		} `json:"data"`
	}
	if err := f.GetJSON(context.Background(), srv.URL, DefaultOptions(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
	if out.Success != 1 || out.Data.Last != "100" {
		t.Fatalf("unexpected payload: %+v", out)
	}

	wantStates := []State{Attempting, BackoffWait, Attempting, BackoffWait, Attempting, Succeeded}
	if !reflect.DeepEqual(states, wantStates) {
		t.Fatalf("unexpected transitions: %v", states)
	}
}

func TestGetJSONReturnsLastHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(srv.Client(), WithSleeper((&recordingSleeper{}).sleep), WithLogger(quietLogger()))
	err := f.GetJSON(context.Background(), srv.URL, Options{Timeout: time.Second, Retries: 1}, &map[string]any{})

	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %T %v", err, err)
	}
	if he.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: %d", he.StatusCode)
	}
	if err.Error() != "HTTP 503 Service Unavailable" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestGetJSONPassesTransportErrorThrough(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	doer := &errDoer{err: cause}
	f := New(doer, WithSleeper((&recordingSleeper{}).sleep), WithLogger(quietLogger()))

	err := f.GetJSON(context.Background(), "http://upstream.test/tickers", Options{Timeout: time.Second, Retries: 2}, &map[string]any{})
	if err != cause {
		t.Fatalf("expected the raw transport error, got %v", err)
	}
	if doer.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", doer.calls)
	}
}

func TestGetJSONRetriesUndecodableBody(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			_, _ = w.Write([]byte(`<html>maintenance</html>`))
			return
		}
		_, _ = w.Write([]byte(`{"success":1}`))
	}))
	defer srv.Close()

	f := New(srv.Client(), WithSleeper((&recordingSleeper{}).sleep), WithLogger(quietLogger()))
	var out map[string]any
	if err := f.GetJSON(context.Background(), srv.URL, DefaultOptions(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", hits.Load())
	}
}

func TestGetJSONStopsWhenParentCancelled(t *testing.T) {
	doer := &errDoer{err: errors.New("connection reset")}
	ctx, cancel := context.WithCancel(context.Background())
	sleeper := func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	var last Transition
	f := New(doer, WithSleeper(sleeper), WithLogger(quietLogger()), WithObserver(func(tr Transition) { last = tr }))
	err := f.GetJSON(ctx, "http://upstream.test/tickers", Options{Timeout: time.Second, Retries: 5}, &map[string]any{})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if doer.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", doer.calls)
	}
	if last.To != ExhaustedFailed {
		t.Fatalf("expected final state exhausted, got %s", last.To)
	}
}

func TestZeroRetriesMakesOneAttempt(t *testing.T) {
	doer := &errDoer{err: errors.New("boom")}
	sleeper := &recordingSleeper{}
	f := New(doer, WithSleeper(sleeper.sleep), WithLogger(quietLogger()))

	_ = f.GetJSON(context.Background(), "http://upstream.test/x", Options{Timeout: time.Second}, &map[string]any{})
	if doer.calls != 1 || len(sleeper.waits) != 0 {
		t.Fatalf("expected one attempt and no waits, got %d attempts %v", doer.calls, sleeper.waits)
	}
}

func TestWithNilLoggerKeepsDefault(t *testing.T) {
	doer := &errDoer{err: errors.New("connection refused")}
	sleeper := &recordingSleeper{}
	f := New(doer, WithLogger(nil), WithSleeper(sleeper.sleep))

	err := f.GetJSON(context.Background(), "http://upstream.test/x", Options{Timeout: time.Second, Retries: 1}, &map[string]any{})
	if err == nil {
		t.Fatal("expected error")
	}
	if doer.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", doer.calls)
	}
}
