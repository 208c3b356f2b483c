package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/render"

	tele "gopkg.in/telebot.v3"
)

const moversPerSide = 3

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// MoversDispatcher pushes a digest of the biggest JPY movers to subscribed
// chats whenever the tickers cache is refreshed.
type MoversDispatcher struct {
	sender messageSender

	mu          sync.RWMutex
	subscribers map[int64]struct{}
}

func NewMoversDispatcher(sender messageSender) *MoversDispatcher {
	return &MoversDispatcher{
		sender:      sender,
		subscribers: make(map[int64]struct{}),
	}
}

func (d *MoversDispatcher) Subscribe(chatID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.subscribers[chatID]; exists {
		return false
	}
	d.subscribers[chatID] = struct{}{}
	return true
}

func (d *MoversDispatcher) Unsubscribe(chatID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.subscribers[chatID]; !exists {
		return false
	}
	delete(d.subscribers, chatID)
	return true
}

func (d *MoversDispatcher) IsSubscribed(chatID int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, exists := d.subscribers[chatID]
	return exists
}

func (d *MoversDispatcher) SubscriberCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers)
}

func (d *MoversDispatcher) NotifyTickers(ctx context.Context, items []domain.Ticker) error {
	if d == nil || d.sender == nil {
		return nil
	}
	msg, ok := formatMovers(items)
	if !ok {
		return nil
	}

	var failures []string
	for _, chatID := range d.snapshotSubscribers() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := d.sender.Send(&tele.Chat{ID: chatID}, msg); err != nil {
			failures = append(failures, fmt.Sprintf("chat %d: %v", chatID, err))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("failed sending %d digests: %s", len(failures), strings.Join(failures, "; "))
	}
	return nil
}

func (d *MoversDispatcher) snapshotSubscribers() []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	chatIDs := make([]int64, 0, len(d.subscribers))
	for chatID := range d.subscribers {
		chatIDs = append(chatIDs, chatID)
	}
	sort.Slice(chatIDs, func(i, j int) bool { return chatIDs[i] < chatIDs[j] })
	return chatIDs
}

func parseMoversMode(args []string) (string, error) {
	if len(args) == 0 {
		return "status", nil
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "on":
		return "on", nil
	case "off":
		return "off", nil
	case "status":
		return "status", nil
	default:
		return "", fmt.Errorf("invalid mode")
	}
}

// formatMovers lists the top gainers and losers by 24h change. Tickers
// without a change are skipped.
func formatMovers(items []domain.Ticker) (string, bool) {
	ranked := make([]domain.Ticker, 0, len(items))
	for _, t := range items {
		if t.Change24hPct != nil {
			ranked = append(ranked, t)
		}
	}
	if len(ranked) == 0 {
		return "", false
	}
	sort.SliceStable(ranked, func(i, j int) bool { return *ranked[i].Change24hPct > *ranked[j].Change24hPct })

	n := min(moversPerSide, len(ranked))
	out := []string{"JPY movers (24h):", "Top gainers:"}
	for _, t := range ranked[:n] {
		out = append(out, moverLine(t))
	}
	out = append(out, "Top losers:")
	for i := len(ranked) - 1; i >= len(ranked)-n; i-- {
		out = append(out, moverLine(ranked[i]))
	}
	return strings.Join(out, "\n"), true
}

func moverLine(t domain.Ticker) string {
	return fmt.Sprintf("  %s %s (%s)", render.Pair(t.Pair), render.Price(t.Last, true), render.Change(t.Change24hPct))
}
