// Package cache holds the single-entry, time-bounded snapshot of the JPY
// tickers and the slots it can live in.
package cache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"bitbank-mcp/internal/domain"
)

// Slot stores at most one entry. Load returns nil, nil when empty.
type Slot interface {
	Load(ctx context.Context) (*domain.TickerEntry, error)
	Store(ctx context.Context, entry domain.TickerEntry) error
}

// Freshness serves the stored entry while it is younger than ttl.
// Concurrent refreshes may both write; the last writer wins, and every
// stored entry is at most ttl old when served.
type Freshness struct {
	ttl    time.Duration
	slot   Slot
	now    func() time.Time
	logger *slog.Logger
}

func NewFreshness(ttl time.Duration, slot Slot, now func() time.Time) *Freshness {
	if slot == nil {
		slot = NewMemorySlot()
	}
	if now == nil {
		now = time.Now
	}
	return &Freshness{ttl: ttl, slot: slot, now: now, logger: slog.Default()}
}

func (f *Freshness) WithLogger(l *slog.Logger) *Freshness {
	if l != nil {
		f.logger = l
	}
	return f
}

func (f *Freshness) TTL() time.Duration { return f.ttl }

// Get returns the stored entry and true if it is still fresh. Slot errors
// are logged and reported as a miss.
func (f *Freshness) Get(ctx context.Context) (domain.TickerEntry, bool) {
	entry, err := f.slot.Load(ctx)
	if err != nil {
		f.logger.Warn("cache slot load failed", "error", err)
		return domain.TickerEntry{}, false
	}
	if entry == nil {
		return domain.TickerEntry{}, false
	}
	age := f.now().UnixMilli() - entry.CapturedAtMs
	if age < 0 || age >= f.ttl.Milliseconds() {
		return domain.TickerEntry{}, false
	}
	return *entry, true
}

// Put replaces the stored entry with items captured now.
func (f *Freshness) Put(ctx context.Context, items []domain.Ticker) domain.TickerEntry {
	entry := domain.TickerEntry{CapturedAtMs: f.now().UnixMilli(), Items: items}
	if err := f.slot.Store(ctx, entry); err != nil {
		f.logger.Warn("cache slot store failed", "error", err)
	}
	return entry
}

// MemorySlot is a process-local slot.
type MemorySlot struct {
	entry atomic.Pointer[domain.TickerEntry]
}

func NewMemorySlot() *MemorySlot { return &MemorySlot{} }

func (s *MemorySlot) Load(context.Context) (*domain.TickerEntry, error) {
	return s.entry.Load(), nil
}

func (s *MemorySlot) Store(_ context.Context, entry domain.TickerEntry) error {
	s.entry.Store(&entry)
	return nil
}
