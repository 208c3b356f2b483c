package tui

import (
	"context"
	"fmt"
	"strings"

	"bitbank-mcp/internal/render"
	"bitbank-mcp/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

const bookDepth = 10

type bookMsg struct{ res *service.OrderbookResult }
type bookErrMsg struct {
	pair string
	err  error
}

// BookModel shows the top of the order book for one pair.
type BookModel struct {
	services Services
	pair     string
	res      *service.OrderbookResult
	err      error
	width    int
	height   int
}

func NewBookModel(svc Services, pair string) BookModel {
	return BookModel{services: svc, pair: pair}
}

func (m BookModel) Init() tea.Cmd { return m.fetchCmd() }

func (m BookModel) Update(msg tea.Msg) (BookModel, tea.Cmd) {
	switch msg := msg.(type) {
	case bookMsg:
		if msg.res.Normalized.Pair != m.pair {
			return m, nil
		}
		m.res = msg.res
		m.err = nil
	case bookErrMsg:
		if msg.pair == m.pair {
			m.err = msg.err
		}
	case dashTickMsg:
		return m, m.fetchCmd()
	}
	return m, nil
}

// SetPair switches the pair and fetches its book.
func (m *BookModel) SetPair(pair string) tea.Cmd {
	m.pair = pair
	m.res = nil
	m.err = nil
	return m.fetchCmd()
}

func (m *BookModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m BookModel) View() string {
	title := HeaderStyle.Render("  " + render.Pair(m.pair) + " order book")
	if m.err != nil {
		return title + "\n" + ErrorStyle.Render("  Error: "+m.err.Error())
	}
	if m.res == nil {
		return title + "\n" + SubtextStyle.Render("  Loading...")
	}

	ob := m.res.Normalized
	asks := []string{AskStyle.Render("  Asks             price        amount         total")}
	for i := len(ob.Asks) - 1; i >= 0; i-- {
		asks = append(asks, "  "+AskStyle.Render(FormatLevel(ob.Asks[i], m.pair)))
	}
	bids := []string{BidStyle.Render("  Bids             price        amount         total")}
	for _, l := range ob.Bids {
		bids = append(bids, "  "+BidStyle.Render(FormatLevel(l, m.pair)))
	}
	mid := SubtextStyle.Render(fmt.Sprintf("  mid %s  spread %s", render.Price(ob.Mid, true), render.Price(ob.Spread, true)))

	body := strings.Join([]string{title, strings.Join(asks, "\n"), mid, strings.Join(bids, "\n")}, "\n")
	return BorderStyle.Width(max(40, m.width-2)).Render(body) + "\n" + SubtextStyle.Render("n/p: change pair")
}

func (m BookModel) fetchCmd() tea.Cmd {
	pair := m.pair
	return func() tea.Msg {
		if m.services.Market == nil {
			return bookErrMsg{pair: pair, err: fmt.Errorf("market service not available")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), refreshInterval)
		defer cancel()
		res, err := m.services.Market.GetOrderbook(ctx, pair, bookDepth)
		if err != nil {
			return bookErrMsg{pair: pair, err: err}
		}
		return bookMsg{res: res}
	}
}
