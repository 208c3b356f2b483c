package normalize

import (
	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/pair"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Ticker normalizes a single-pair ticker. Change24hPct is left unrounded;
// display code rounds it.
func Ticker(p string, raw RawTicker) (domain.Ticker, error) {
	t, last, open, err := ticker(p, raw)
	if err != nil {
		return domain.Ticker{}, err
	}
	if open.ok && open.d.IsPositive() && last.ok {
		pct := (toFloat(last.d) - toFloat(open.d)) / toFloat(open.d) * 100
		t.Change24hPct = &pct
	}
	return t, nil
}

// Tickers normalizes a multi-pair payload. Change24hPct is rounded to two
// decimals here, unlike Ticker.
func Tickers(raw []RawTicker) ([]domain.Ticker, error) {
	out := make([]domain.Ticker, 0, len(raw))
	for _, r := range raw {
		t, last, open, err := ticker(r.Pair, r)
		if err != nil {
			return nil, err
		}
		if open.ok && open.d.IsPositive() && last.ok {
			pct := last.d.Sub(open.d).Div(open.d).Mul(hundred).Round(2).InexactFloat64()
			t.Change24hPct = &pct
		}
		out = append(out, t)
	}
	return out, nil
}

// FilterJPY keeps JPY-quoted pairs, judged by suffix.
func FilterJPY(items []domain.Ticker) []domain.Ticker {
	out := make([]domain.Ticker, 0, len(items))
	for _, t := range items {
		if pair.IsJPY(t.Pair) {
			out = append(out, t)
		}
	}
	return out
}

// KeepPairs drops raw rows whose pair fails keep. It runs before
// normalization so rows for unknown pairs are never parsed.
func KeepPairs(raw []RawTicker, keep func(string) bool) []RawTicker {
	out := make([]RawTicker, 0, len(raw))
	for _, r := range raw {
		if keep(r.Pair) {
			out = append(out, r)
		}
	}
	return out
}

type parsed struct {
	d  decimal.Decimal
	ok bool
}

func ticker(p string, raw RawTicker) (domain.Ticker, parsed, parsed, error) {
	fp := &fieldParser{resource: "ticker", detail: p}

	var last, open, vol parsed
	last.d, last.ok = fp.optional("last", raw.Last)
	open.d, open.ok = fp.optional("open", raw.Open)
	vol.d, vol.ok = fp.optional("vol", raw.Vol)
	buy, buyOK := fp.optional("buy", raw.Buy)
	sell, sellOK := fp.optional("sell", raw.Sell)
	high, highOK := fp.optional("high", raw.High)
	low, lowOK := fp.optional("low", raw.Low)
	if fp.err != nil {
		return domain.Ticker{}, parsed{}, parsed{}, fp.err
	}

	ts, iso := epoch(raw.Timestamp)
	t := domain.Ticker{
		Pair:      p,
		Last:      floatPtr(last.d, last.ok),
		Buy:       floatPtr(buy, buyOK),
		Sell:      floatPtr(sell, sellOK),
		Open:      floatPtr(open.d, open.ok),
		High:      floatPtr(high, highOK),
		Low:       floatPtr(low, lowOK),
		Volume:    floatPtr(vol.d, vol.ok),
		Timestamp: ts,
		IsoTime:   iso,
	}
	if pair.IsJPY(p) && vol.ok && last.ok {
		jpy := vol.d.Mul(last.d).Round(0).IntPart()
		t.Vol24hJPY = &jpy
	}
	return t, last, open, nil
}
