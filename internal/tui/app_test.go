package tui

import (
	"context"
	"sync"
	"testing"

	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

type stubMarket struct {
	mu        sync.Mutex
	tickers   *service.TickersJPYResult
	err       error
	bookPairs []string
}

func (s *stubMarket) GetTickersJPY(context.Context) (*service.TickersJPYResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.tickers == nil {
		return &service.TickersJPYResult{Items: []domain.Ticker{}}, nil
	}
	return s.tickers, nil
}

func (s *stubMarket) GetOrderbook(_ context.Context, p string, _ int) (*service.OrderbookResult, error) {
	s.mu.Lock()
	s.bookPairs = append(s.bookPairs, p)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &service.OrderbookResult{Normalized: domain.Orderbook{Pair: p, Bids: []domain.DepthLevel{}, Asks: []domain.DepthLevel{}}}, nil
}

func (s *stubMarket) GetTransactions(_ context.Context, params service.TransactionsParams) (*service.TransactionsResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.TransactionsResult{Normalized: []domain.Transaction{}, Meta: service.TransactionsMeta{Pair: params.Pair}}, nil
}

func testServices() Services {
	return Services{Market: &stubMarket{}, Username: "testuser"}
}

func press(m AppModel, s string) (AppModel, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return updated.(AppModel), cmd
}

func TestAppModelInitialTab(t *testing.T) {
	m := NewAppModel(testServices())
	if m.ActiveTab() != TabDashboard {
		t.Fatalf("expected TabDashboard, got %d", m.ActiveTab())
	}
	if m.Pair() != "btc_jpy" {
		t.Fatalf("expected btc_jpy, got %s", m.Pair())
	}
}

func TestAppModelTabSwitchByNumber(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	m, _ = press(m, "2")
	if m.ActiveTab() != TabBook {
		t.Fatalf("expected TabBook after pressing 2, got %d", m.ActiveTab())
	}
	m, _ = press(m, "3")
	if m.ActiveTab() != TabTrades {
		t.Fatalf("expected TabTrades after pressing 3, got %d", m.ActiveTab())
	}
	m, _ = press(m, "1")
	if m.ActiveTab() != TabDashboard {
		t.Fatalf("expected TabDashboard after pressing 1, got %d", m.ActiveTab())
	}
}

func TestAppModelTabSwitchByTab(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	app := updated.(AppModel)
	if app.ActiveTab() != TabBook {
		t.Fatalf("expected TabBook after Tab, got %d", app.ActiveTab())
	}

	updated, _ = app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	app = updated.(AppModel)
	if app.ActiveTab() != TabDashboard {
		t.Fatalf("expected TabDashboard after Shift+Tab, got %d", app.ActiveTab())
	}

	updated, _ = app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	app = updated.(AppModel)
	if app.ActiveTab() != TabTrades {
		t.Fatalf("expected wrap to TabTrades, got %d", app.ActiveTab())
	}
}

func TestAppModelPairCycling(t *testing.T) {
	market := &stubMarket{}
	m := NewAppModel(Services{Market: market})

	m, cmd := press(m, "n")
	if m.Pair() != "eth_jpy" {
		t.Fatalf("expected eth_jpy, got %s", m.Pair())
	}
	if cmd == nil {
		t.Fatal("expected fetch commands after changing pair")
	}

	m, _ = press(m, "p")
	m, _ = press(m, "p")
	if m.Pair() != WatchPairs[len(WatchPairs)-1] {
		t.Fatalf("expected wrap to last pair, got %s", m.Pair())
	}
}

func TestAppModelIgnoresStaleBook(t *testing.T) {
	m := NewAppModel(testServices())
	m, _ = press(m, "n")

	stale := &service.OrderbookResult{Normalized: domain.Orderbook{Pair: "btc_jpy"}}
	updated, _ := m.Update(bookMsg{res: stale})
	if updated.(AppModel).book.res != nil {
		t.Fatal("book for a previous pair should be ignored")
	}

	fresh := &service.OrderbookResult{Normalized: domain.Orderbook{Pair: "eth_jpy"}}
	updated, _ = m.Update(bookMsg{res: fresh})
	if updated.(AppModel).book.res != fresh {
		t.Fatal("expected book for the selected pair to be stored")
	}
}

func TestAppModelWindowResize(t *testing.T) {
	m := NewAppModel(testServices())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	app := updated.(AppModel)
	if app.width != 100 || app.height != 50 {
		t.Fatalf("expected 100x50, got %dx%d", app.width, app.height)
	}
}

func TestAppModelViewRendersWithoutPanic(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	for _, tab := range []Tab{TabDashboard, TabBook, TabTrades} {
		m.activeTab = tab
		if view := m.View(); view == "" {
			t.Fatalf("expected non-empty view for tab %d", tab)
		}
	}
}

func TestAppModelQuit(t *testing.T) {
	m := NewAppModel(testServices())
	m, cmd := press(m, "q")
	if cmd == nil || m.View() != "Goodbye!\n" {
		t.Fatal("expected quit")
	}
}
