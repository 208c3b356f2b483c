package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/render"
	"bitbank-mcp/internal/service"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const refreshInterval = 10 * time.Second

// Dashboard message types.
type tickersMsg struct{ res *service.TickersJPYResult }
type tickersErrMsg struct{ err error }
type dashTickMsg time.Time

// DashboardModel shows the cached JPY tickers and a change heat map.
type DashboardModel struct {
	services Services
	items    []domain.Ticker
	meta     service.TickersJPYMeta
	spinner  spinner.Model
	loading  bool
	err      error
	width    int
	height   int
}

func NewDashboardModel(svc Services) DashboardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(SpinnerColor)
	return DashboardModel{
		services: svc,
		spinner:  sp,
		loading:  true,
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchTickersCmd(), m.tickCmd())
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickersMsg:
		m.items = msg.res.Items
		m.meta = msg.res.Meta
		m.loading = false
		m.err = nil
		return m, nil

	case tickersErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dashTickMsg:
		return m, tea.Batch(m.fetchTickersCmd(), m.tickCmd())
	}

	return m, nil
}

// Refresh refetches immediately.
func (m *DashboardModel) Refresh() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.fetchTickersCmd())
}

func (m DashboardModel) View() string {
	if m.loading && len(m.items) == 0 {
		return m.spinner.View() + SubtextStyle.Render(" Loading JPY tickers...")
	}
	if m.err != nil && len(m.items) == 0 {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableWidth := max(40, m.width*2/3-2)
	heatWidth := max(15, m.width-tableWidth-4)

	tableBox := BorderStyle.Width(tableWidth).Render(m.renderTable())
	heatBox := BorderStyle.Width(heatWidth).Render(HeaderStyle.Render("  Heat Map") + "\n" + RenderHeatMap(m.items, heatWidth))

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, tableBox, heatBox),
		m.statusLine(),
	)
}

func (m *DashboardModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Items returns the current tickers (for testing).
func (m DashboardModel) Items() []domain.Ticker { return m.items }

func (m DashboardModel) renderTable() string {
	lines := []string{
		HeaderStyle.Render("  JPY Markets"),
		SubtextStyle.Render("  Pair                   Last    24h      Volume"),
		SubtextStyle.Render(strings.Repeat("─", 55)),
	}
	rows := len(m.items)
	if limit := m.height - 8; limit > 0 && rows > limit {
		rows = limit
	}
	for _, t := range m.items[:rows] {
		lines = append(lines, "  "+FormatTicker(t))
	}
	if len(m.items) == 0 {
		lines = append(lines, SubtextStyle.Render("  No ticker data available"))
	}
	if rows < len(m.items) {
		lines = append(lines, SubtextStyle.Render(fmt.Sprintf("  ... %d more pairs", len(m.items)-rows)))
	}
	return strings.Join(lines, "\n")
}

func (m DashboardModel) statusLine() string {
	source := "live"
	if m.meta.Cached {
		source = "cached"
	}
	status := fmt.Sprintf("%d pairs (%s)", m.meta.Count, source)
	if m.meta.CapturedAt != "" {
		status += " captured " + m.meta.CapturedAt
	}
	if m.err != nil {
		status += "  " + ErrorStyle.Render("refresh failed: "+m.err.Error())
	}
	if m.loading {
		status = m.spinner.View() + " " + status
	}
	return SubtextStyle.Render(status)
}

func (m DashboardModel) fetchTickersCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Market == nil {
			return tickersErrMsg{err: fmt.Errorf("market service not available")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), refreshInterval)
		defer cancel()
		res, err := m.services.Market.GetTickersJPY(ctx)
		if err != nil {
			return tickersErrMsg{err: err}
		}
		return tickersMsg{res: res}
	}
}

func (m DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return dashTickMsg(t)
	})
}

// header renders the tab-independent clock line.
func header(now time.Time) string {
	return SubtextStyle.Render("bitbank " + render.Clock(now))
}
