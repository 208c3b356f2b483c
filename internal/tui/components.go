package tui

import (
	"fmt"
	"math"
	"strings"

	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/pair"
	"bitbank-mcp/internal/render"

	"github.com/charmbracelet/lipgloss"
)

// FormatTicker renders one JPY ticker as a table row.
func FormatTicker(t domain.Ticker) string {
	return fmt.Sprintf("%-10s %16s  %s  Vol: %s",
		render.Pair(t.Pair),
		render.Price(t.Last, true),
		changeStyle(t.Change24hPct).Render(fmt.Sprintf("%8s", render.Change(t.Change24hPct))),
		formatYenVolume(t.Vol24hJPY),
	)
}

func changeStyle(pct *float64) lipgloss.Style {
	switch {
	case pct == nil || *pct == 0:
		return PriceZeroStyle
	case *pct > 0:
		return PriceUpStyle
	default:
		return PriceDownStyle
	}
}

// FormatLevel renders one order book level with its cumulative total.
func FormatLevel(l domain.DepthLevel, p string) string {
	jpy := pair.IsJPY(p)
	return fmt.Sprintf("%16s  %12.4f  %12.4f", render.PriceOf(l.Price, jpy), l.Amount, l.Total)
}

func FormatTrade(tx domain.Transaction, p string) string {
	side := BidStyle.Render("BUY ")
	if tx.Side == domain.SideSell {
		side = AskStyle.Render("SELL")
	}
	when := ""
	if tx.IsoTime != nil {
		if _, clock, ok := strings.Cut(*tx.IsoTime, "T"); ok {
			when = strings.TrimSuffix(clock, "Z")
		}
	}
	return fmt.Sprintf("%s %s %16s  %12.4f", when, side, render.PriceOf(tx.Price, pair.IsJPY(p)), tx.Amount)
}

// RenderHeatMap renders a colored grid showing 24h change for each pair.
func RenderHeatMap(items []domain.Ticker, width int) string {
	if len(items) == 0 {
		return SubtextStyle.Render("No ticker data")
	}

	cellWidth := 8
	cols := max(1, width/cellWidth)

	var rows []string
	var row []string
	for i, t := range items {
		bg := HeatNeutral
		if t.Change24hPct != nil {
			switch {
			case *t.Change24hPct > 0:
				bg = heatColor(*t.Change24hPct, HeatGreen)
			case *t.Change24hPct < 0:
				bg = heatColor(-*t.Change24hPct, HeatRed)
			}
		}

		cell := lipgloss.NewStyle().
			Background(bg).
			Foreground(lipgloss.Color("#000000")).
			Bold(true).
			Width(cellWidth - 1).
			Align(lipgloss.Center).
			Render(strings.ToUpper(pair.Base(t.Pair)))

		row = append(row, cell)
		if (i+1)%cols == 0 || i == len(items)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}

	return strings.Join(rows, "\n")
}

// heatColor is neutral below a 1% move.
func heatColor(magnitude float64, base lipgloss.Color) lipgloss.Color {
	if magnitude < 1 {
		return HeatNeutral
	}
	return base
}

func formatYenVolume(v *int64) string {
	if v == nil {
		return "N/A"
	}
	f := float64(*v)
	switch {
	case f >= 1e12:
		return fmt.Sprintf("¥%.1fT", f/1e12)
	case f >= 1e9:
		return fmt.Sprintf("¥%.1fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("¥%.1fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("¥%.1fK", f/1e3)
	default:
		return fmt.Sprintf("¥%.0f", math.Max(f, 0))
	}
}
