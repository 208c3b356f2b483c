package render

import (
	"fmt"
	"strings"
	"time"

	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/pair"
	"bitbank-mcp/internal/service"
	"bitbank-mcp/internal/timeconv"
)

const (
	previewCount = 5
	tradeURL     = "https://app.bitbank.cc/trade/"
)

func Ticker(r *service.TickerResult) string {
	t := r.Normalized
	jpy := pair.IsJPY(t.Pair)
	out := []string{
		fmt.Sprintf("%s last: %s", Pair(t.Pair), Price(t.Last, jpy)),
		fmt.Sprintf("24h: open %s / high %s / low %s", Price(t.Open, jpy), Price(t.High, jpy), Price(t.Low, jpy)),
	}
	if t.Change24hPct != nil {
		out = append(out, "24h change: "+Change(t.Change24hPct))
	}
	out = append(out, "Volume: "+Volume(t.Volume, pair.Base(t.Pair)))
	if t.Vol24hJPY != nil {
		out = append(out, "Volume (JPY): "+Yen(*t.Vol24hJPY))
	}
	out = append(out, fmt.Sprintf("Bid: %s / Ask: %s (spread: %s)", Price(t.Buy, jpy), Price(t.Sell, jpy), Price(t.Spread(), jpy)))
	out = append(out, "Time: "+displayTime(t.Timestamp))
	out = append(out, "---", "Chart & trading: "+tradeURL+t.Pair)
	return lines(out...)
}

func Tickers(r *service.TickersResult) string {
	out := []string{fmt.Sprintf("Fetched %d pairs", len(r.Items)), ""}
	out = append(out, preview(r.Items, "pairs")...)
	return lines(out...)
}

func TickersJPY(r *service.TickersJPYResult) string {
	if r.Meta.Cached {
		return fmt.Sprintf("JPY pairs: %d (cached)", len(r.Items))
	}
	out := []string{fmt.Sprintf("Fetched %d JPY pairs", len(r.Items))}
	out = append(out, preview(r.Items, "pairs")...)
	return lines(out...)
}

func preview(items []domain.Ticker, noun string) []string {
	var out []string
	for i, t := range items {
		if i == previewCount {
			break
		}
		out = append(out, fmt.Sprintf("%s: %s (%s)", Pair(t.Pair), Price(t.Last, pair.IsJPY(t.Pair)), Change(t.Change24hPct)))
	}
	if len(items) > previewCount {
		out = append(out, fmt.Sprintf("... %d more %s", len(items)-previewCount, noun))
	}
	return out
}

func Candles(r *service.CandlesResult) string {
	m := r.Meta
	if r.NoData() {
		return fmt.Sprintf("No candlestick data found (%s/%s/%s)", m.Pair, m.Type, m.Date)
	}
	oldest, latest := r.Normalized[0], r.Normalized[len(r.Normalized)-1]
	return lines(
		fmt.Sprintf("%s [%s] %d candles", Pair(m.Pair), m.Type, len(r.Normalized)),
		fmt.Sprintf("Range: %s to %s", isoDate(oldest.IsoTime), isoDate(latest.IsoTime)),
		"Latest close: "+PriceOf(latest.Close, pair.IsJPY(m.Pair)),
		"",
		fmt.Sprintf("Note: oldest first, data[0]=oldest, data[%d]=latest", len(r.Normalized)-1),
	)
}

func Orderbook(r *service.OrderbookResult) string {
	ob := r.Normalized
	jpy := pair.IsJPY(ob.Pair)
	base := pair.Base(ob.Pair)

	out := []string{
		fmt.Sprintf("%s order book (top %d levels)", Pair(ob.Pair), r.Meta.TopN),
		"Mid: " + Price(ob.Mid, jpy),
		"Spread: " + Price(ob.Spread, jpy),
		"",
		fmt.Sprintf("Bids: %d levels", len(ob.Bids)),
	}
	out = append(out, levels(ob.Bids, jpy, base)...)
	out = append(out, "", fmt.Sprintf("Asks: %d levels", len(ob.Asks)))
	out = append(out, levels(ob.Asks, jpy, base)...)
	return lines(out...)
}

func levels(ls []domain.DepthLevel, jpy bool, base string) []string {
	var out []string
	for i, l := range ls {
		if i == previewCount {
			break
		}
		out = append(out, fmt.Sprintf("  %s - %.4f %s", PriceOf(l.Price, jpy), l.Amount, base))
	}
	if len(ls) > previewCount {
		out = append(out, fmt.Sprintf("  ... %d more levels", len(ls)-previewCount))
	}
	return out
}

func Depth(r *service.DepthResult) string {
	d := r.Normalized
	iso := na
	if d.IsoTime != nil {
		iso = *d.IsoTime
	}
	return lines(
		fmt.Sprintf("%s depth", Pair(r.Meta.Pair)),
		"Mid: "+Price(d.Mid, pair.IsJPY(r.Meta.Pair)),
		fmt.Sprintf("Levels: bids %d / asks %d", len(d.Bids), len(d.Asks)),
		"Time: "+iso,
	)
}

func Transactions(r *service.TransactionsResult) string {
	p := r.Meta.Pair
	out := []string{fmt.Sprintf("%s recent trades: %d", Pair(p), len(r.Normalized))}
	if len(r.Normalized) > 0 {
		latest := r.Normalized[len(r.Normalized)-1]
		out = append(out,
			"Latest price: "+PriceOf(latest.Price, pair.IsJPY(p)),
			fmt.Sprintf("Buys: %d / Sells: %d (%s)", r.Stats.Buys, r.Stats.Sells, r.Stats.Dominance),
			fmt.Sprintf("Volume: %s %s", r.Stats.TotalVolumeText, pair.Base(p)),
		)
	}
	return lines(out...)
}

// Error is the text shown to humans when an operation fails.
func Error(err error) string {
	return "Error: " + err.Error()
}

func isoDate(iso *string) string {
	if iso == nil {
		return na
	}
	date, _, _ := strings.Cut(*iso, "T")
	return date
}

func displayTime(ms *int64) string {
	if ms == nil {
		return na
	}
	t, ok := timeconv.ToAbsoluteTime(*ms)
	if !ok {
		return na
	}
	return timeconv.DisplayTime(t, nil)
}

// Clock renders now for status lines.
func Clock(now time.Time) string {
	return timeconv.DisplayTime(now, nil)
}
