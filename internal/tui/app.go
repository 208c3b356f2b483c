package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tab represents a screen tab in the TUI.
type Tab int

const (
	TabDashboard Tab = iota
	TabBook
	TabTrades
)

var tabNames = []string{"1:Markets", "2:Book", "3:Trades"}

// AppModel is the root Bubble Tea model that manages tab navigation and child screens.
type AppModel struct {
	services  Services
	activeTab Tab
	pairIdx   int
	dashboard DashboardModel
	book      BookModel
	trades    TradesModel
	now       func() time.Time
	width     int
	height    int
	quitting  bool
}

func NewAppModel(svc Services) AppModel {
	first := WatchPairs[0]
	return AppModel{
		services:  svc,
		activeTab: TabDashboard,
		dashboard: NewDashboardModel(svc),
		book:      NewBookModel(svc, first),
		trades:    NewTradesModel(svc, first),
		now:       time.Now,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.dashboard.Init(),
		m.book.Init(),
		m.trades.Init(),
	)
}

// Update handles global keys and routes data messages to every screen.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.propagateSize()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, DefaultKeyMap.Tab):
			m.activeTab = Tab((int(m.activeTab) + 1) % len(tabNames))
			return m, nil
		case key.Matches(msg, DefaultKeyMap.ShiftTab):
			m.activeTab = Tab((int(m.activeTab) + len(tabNames) - 1) % len(tabNames))
			return m, nil
		case msg.String() == "1":
			m.activeTab = TabDashboard
			return m, nil
		case msg.String() == "2":
			m.activeTab = TabBook
			return m, nil
		case msg.String() == "3":
			m.activeTab = TabTrades
			return m, nil
		case key.Matches(msg, DefaultKeyMap.NextPair):
			return m, m.selectPair(m.pairIdx + 1)
		case key.Matches(msg, DefaultKeyMap.PrevPair):
			return m, m.selectPair(m.pairIdx - 1)
		case key.Matches(msg, DefaultKeyMap.Refresh):
			return m, m.refresh()
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg.(type) {
	case tickersMsg, tickersErrMsg:
		m.dashboard, cmd = m.dashboard.Update(msg)
		cmds = append(cmds, cmd)
	case bookMsg, bookErrMsg:
		m.book, cmd = m.book.Update(msg)
		cmds = append(cmds, cmd)
	case tradesMsg, tradesErrMsg:
		m.trades, cmd = m.trades.Update(msg)
		cmds = append(cmds, cmd)
	case dashTickMsg:
		m.dashboard, cmd = m.dashboard.Update(msg)
		cmds = append(cmds, cmd)
		m.book, cmd = m.book.Update(msg)
		cmds = append(cmds, cmd)
		m.trades, cmd = m.trades.Update(msg)
		cmds = append(cmds, cmd)
	default:
		m.dashboard, cmd = m.dashboard.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m AppModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var content string
	switch m.activeTab {
	case TabDashboard:
		content = m.dashboard.View()
	case TabBook:
		content = m.book.View()
	case TabTrades:
		content = m.trades.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabBar(), content)
}

func (m *AppModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.propagateSize()
}

// ActiveTab returns the currently active tab (for testing).
func (m AppModel) ActiveTab() Tab { return m.activeTab }

// Pair returns the pair shown on the book and trades tabs.
func (m AppModel) Pair() string { return WatchPairs[m.pairIdx] }

func (m *AppModel) selectPair(idx int) tea.Cmd {
	n := len(WatchPairs)
	m.pairIdx = ((idx % n) + n) % n
	p := WatchPairs[m.pairIdx]
	return tea.Batch(m.book.SetPair(p), m.trades.SetPair(p))
}

func (m *AppModel) refresh() tea.Cmd {
	switch m.activeTab {
	case TabBook:
		return m.book.fetchCmd()
	case TabTrades:
		return m.trades.fetchCmd()
	default:
		return m.dashboard.Refresh()
	}
}

func (m *AppModel) propagateSize() {
	contentHeight := m.height - 2 // tab bar
	m.dashboard.SetSize(m.width, contentHeight)
	m.book.SetSize(m.width, contentHeight)
	m.trades.SetSize(m.width, contentHeight)
}

func (m AppModel) renderTabBar() string {
	var tabs []string
	for i, name := range tabNames {
		if Tab(i) == m.activeTab {
			tabs = append(tabs, ActiveTabStyle.Render(name))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(name))
		}
	}
	tabs = append(tabs, "  "+header(m.now()))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
