package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"bitbank-mcp/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func sampleItems() []domain.Ticker {
	last, pct := 15000000.0, 1.25
	vol := int64(123456789)
	return []domain.Ticker{
		{Pair: "btc_jpy", Last: &last, Change24hPct: &pct, Vol24hJPY: &vol},
		{Pair: "eth_jpy"},
	}
}

func TestFreshnessWithinAndAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.UnixMilli(1_000_000)}
	f := NewFreshness(10*time.Second, NewMemorySlot(), clock.now)
	ctx := context.Background()

	if _, ok := f.Get(ctx); ok {
		t.Fatal("empty cache must miss")
	}

	stored := f.Put(ctx, sampleItems())
	if stored.CapturedAtMs != 1_000_000 {
		t.Fatalf("unexpected capture time: %d", stored.CapturedAtMs)
	}

	clock.t = clock.t.Add(9999 * time.Millisecond)
	got, ok := f.Get(ctx)
	if !ok {
		t.Fatal("expected a fresh hit inside the window")
	}
	a, _ := json.Marshal(stored.Items)
	b, _ := json.Marshal(got.Items)
	if string(a) != string(b) {
		t.Fatalf("cached items differ:\n%s\n%s", a, b)
	}

	clock.t = clock.t.Add(time.Millisecond)
	if _, ok := f.Get(ctx); ok {
		t.Fatal("entry exactly ttl old must be stale")
	}
}

func TestFreshnessLastWriterWins(t *testing.T) {
	clock := &fakeClock{t: time.UnixMilli(0)}
	f := NewFreshness(time.Minute, nil, clock.now)
	ctx := context.Background()

	f.Put(ctx, []domain.Ticker{{Pair: "btc_jpy"}})
	clock.t = clock.t.Add(time.Second)
	f.Put(ctx, []domain.Ticker{{Pair: "xrp_jpy"}})

	got, ok := f.Get(ctx)
	if !ok || len(got.Items) != 1 || got.Items[0].Pair != "xrp_jpy" {
		t.Fatalf("expected the second write, got %+v", got)
	}
}

type failingSlot struct{}

func (failingSlot) Load(context.Context) (*domain.TickerEntry, error) {
	return nil, errors.New("slot down")
}

func (failingSlot) Store(context.Context, domain.TickerEntry) error {
	return errors.New("slot down")
}

func TestFreshnessSlotErrorsAreMisses(t *testing.T) {
	f := NewFreshness(time.Minute, failingSlot{}, nil).WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	entry := f.Put(context.Background(), sampleItems())
	if len(entry.Items) != 2 {
		t.Fatalf("Put must still return the entry, got %+v", entry)
	}
	if _, ok := f.Get(context.Background()); ok {
		t.Fatal("expected a miss when the slot fails")
	}
}

func TestFreshnessNilLoggerKeepsDefault(t *testing.T) {
	f := NewFreshness(time.Minute, failingSlot{}, nil).WithLogger(nil)
	if f.logger == nil {
		t.Fatal("nil logger must not replace the default")
	}
	if _, ok := f.Get(context.Background()); ok {
		t.Fatal("expected a miss when the slot fails")
	}
}

func TestRedisSlotSharesEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := &fakeClock{t: time.UnixMilli(5_000)}
	writer := NewFreshness(10*time.Second, NewRedisSlot(client, "", time.Minute), clock.now)
	reader := NewFreshness(10*time.Second, NewRedisSlot(client, "", time.Minute), clock.now)
	ctx := context.Background()

	if _, ok := reader.Get(ctx); ok {
		t.Fatal("empty redis slot must miss")
	}

	stored := writer.Put(ctx, sampleItems())
	got, ok := reader.Get(ctx)
	if !ok {
		t.Fatal("expected the reader to see the writer's entry")
	}
	a, _ := json.Marshal(stored)
	b, _ := json.Marshal(got)
	if string(a) != string(b) {
		t.Fatalf("redis round trip changed the entry:\n%s\n%s", a, b)
	}
	if ttl := mr.TTL(DefaultRedisKey); ttl != time.Minute {
		t.Fatalf("unexpected key expiry: %s", ttl)
	}
}

func TestRedisSlotCorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	if err := mr.Set("custom", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	slot := NewRedisSlot(client, "custom", 0)
	if _, err := slot.Load(context.Background()); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := InitRedis(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = client.Close()

	client, err = InitRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("unexpected error for url form: %v", err)
	}
	_ = client.Close()

	if _, err := InitRedis(context.Background(), "redis://127.0.0.1:1/0"); err == nil {
		t.Fatal("expected an error for an unreachable server")
	}
}
