package tui

import (
	"context"
	"fmt"
	"strings"

	"bitbank-mcp/internal/render"
	"bitbank-mcp/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

const tradesShown = 20

type tradesMsg struct {
	pair string
	res  *service.TransactionsResult
}
type tradesErrMsg struct {
	pair string
	err  error
}

// TradesModel shows recent trades and the buy/sell balance for one pair.
type TradesModel struct {
	services Services
	pair     string
	res      *service.TransactionsResult
	err      error
	width    int
	height   int
}

func NewTradesModel(svc Services, pair string) TradesModel {
	return TradesModel{services: svc, pair: pair}
}

func (m TradesModel) Init() tea.Cmd { return m.fetchCmd() }

func (m TradesModel) Update(msg tea.Msg) (TradesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tradesMsg:
		if msg.pair == m.pair {
			m.res = msg.res
			m.err = nil
		}
	case tradesErrMsg:
		if msg.pair == m.pair {
			m.err = msg.err
		}
	case dashTickMsg:
		return m, m.fetchCmd()
	}
	return m, nil
}

func (m *TradesModel) SetPair(pair string) tea.Cmd {
	m.pair = pair
	m.res = nil
	m.err = nil
	return m.fetchCmd()
}

func (m *TradesModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m TradesModel) View() string {
	title := HeaderStyle.Render("  " + render.Pair(m.pair) + " recent trades")
	if m.err != nil {
		return title + "\n" + ErrorStyle.Render("  Error: "+m.err.Error())
	}
	if m.res == nil {
		return title + "\n" + SubtextStyle.Render("  Loading...")
	}

	s := m.res.Stats
	lines := []string{
		title,
		SubtextStyle.Render(fmt.Sprintf("  buys %d / sells %d (%d%% buy, %s)  volume %s",
			s.Buys, s.Sells, s.BuyRatioPct, s.Dominance, s.TotalVolumeText)),
	}
	txs := m.res.Normalized
	start := max(0, len(txs)-tradesShown)
	for i := len(txs) - 1; i >= start; i-- {
		lines = append(lines, "  "+FormatTrade(txs[i], m.pair))
	}
	if len(txs) == 0 {
		lines = append(lines, SubtextStyle.Render("  No trades"))
	}
	return BorderStyle.Width(max(40, m.width-2)).Render(strings.Join(lines, "\n"))
}

func (m TradesModel) fetchCmd() tea.Cmd {
	pair := m.pair
	return func() tea.Msg {
		if m.services.Market == nil {
			return tradesErrMsg{pair: pair, err: fmt.Errorf("market service not available")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), refreshInterval)
		defer cancel()
		res, err := m.services.Market.GetTransactions(ctx, service.TransactionsParams{Pair: pair, Limit: 100})
		if err != nil {
			return tradesErrMsg{pair: pair, err: err}
		}
		return tradesMsg{pair: pair, res: res}
	}
}
