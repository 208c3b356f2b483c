package normalize

import (
	"encoding/json"
	"fmt"

	"bitbank-mcp/internal/domain"

	"github.com/shopspring/decimal"
)

// totalPlaces is the exchange's amount granularity.
const totalPlaces = 8

var two = decimal.NewFromInt(2)

// Orderbook truncates each side to topN levels, then accumulates running
// totals from the best price outward. Best prices, spread and mid come
// from the truncated view.
func Orderbook(p string, raw RawDepth, topN int) (domain.Orderbook, error) {
	bids, bestBid, err := levels(p, "bids", raw.Bids, topN)
	if err != nil {
		return domain.Orderbook{}, err
	}
	asks, bestAsk, err := levels(p, "asks", raw.Asks, topN)
	if err != nil {
		return domain.Orderbook{}, err
	}

	ts, iso := epoch(raw.Timestamp)
	ob := domain.Orderbook{
		Pair:       p,
		Bids:       bids,
		Asks:       asks,
		Timestamp:  ts,
		IsoTime:    iso,
		SequenceID: rawString(raw.SequenceID),
	}
	if bestBid != nil {
		ob.BestBid = floatPtr(*bestBid, true)
	}
	if bestAsk != nil {
		ob.BestAsk = floatPtr(*bestAsk, true)
	}
	if bestBid != nil && bestAsk != nil {
		ob.Spread = floatPtr(bestAsk.Sub(*bestBid), true)
		ob.Mid = floatPtr(bestAsk.Add(*bestBid).Div(two), true)
	}
	return ob, nil
}

// Depth keeps at most maxLevels per side as [price, amount] pairs. Mid is
// rounded to two decimals.
func Depth(p string, raw RawDepth, maxLevels int) (domain.DepthSnapshot, error) {
	asks, bestAsk, err := pairs(p, "asks", raw.Asks, maxLevels)
	if err != nil {
		return domain.DepthSnapshot{}, err
	}
	bids, bestBid, err := pairs(p, "bids", raw.Bids, maxLevels)
	if err != nil {
		return domain.DepthSnapshot{}, err
	}

	ts, iso := epoch(raw.Timestamp)
	snap := domain.DepthSnapshot{
		Asks:       asks,
		Bids:       bids,
		Timestamp:  ts,
		IsoTime:    iso,
		SequenceID: rawString(raw.SequenceID),
	}
	if bestAsk != nil {
		snap.BestAsk = floatPtr(*bestAsk, true)
	}
	if bestBid != nil {
		snap.BestBid = floatPtr(*bestBid, true)
	}
	if bestAsk != nil && bestBid != nil {
		snap.Mid = floatPtr(bestAsk.Add(*bestBid).Div(two).Round(2), true)
	}
	return snap, nil
}

func truncateSide(side [][]json.RawMessage, n int) [][]json.RawMessage {
	if n > 0 && len(side) > n {
		return side[:n]
	}
	return side
}

func levels(p, side string, raw [][]json.RawMessage, n int) ([]domain.DepthLevel, *decimal.Decimal, error) {
	raw = truncateSide(raw, n)
	out := make([]domain.DepthLevel, 0, len(raw))
	fp := &fieldParser{resource: "depth", detail: p}

	total := decimal.Zero
	var best *decimal.Decimal
	for i, lvl := range raw {
		if len(lvl) < 2 {
			return nil, nil, shortLevel(p, side, i, len(lvl))
		}
		price := fp.required("price", lvl[0])
		amount := fp.required("amount", lvl[1])
		if fp.err != nil {
			return nil, nil, fp.err
		}
		if best == nil {
			best = &price
		}
		total = total.Add(amount)
		out = append(out, domain.DepthLevel{
			Price:  toFloat(price),
			Amount: toFloat(amount),
			Total:  toFloat(total.Round(totalPlaces)),
		})
	}
	return out, best, nil
}

func pairs(p, side string, raw [][]json.RawMessage, n int) ([][]float64, *decimal.Decimal, error) {
	raw = truncateSide(raw, n)
	out := make([][]float64, 0, len(raw))
	fp := &fieldParser{resource: "depth", detail: p}

	var best *decimal.Decimal
	for i, lvl := range raw {
		if len(lvl) < 2 {
			return nil, nil, shortLevel(p, side, i, len(lvl))
		}
		price := fp.required("price", lvl[0])
		amount := fp.required("amount", lvl[1])
		if fp.err != nil {
			return nil, nil, fp.err
		}
		if best == nil {
			best = &price
		}
		out = append(out, []float64{toFloat(price), toFloat(amount)})
	}
	return out, best, nil
}

func shortLevel(p, side string, i, n int) error {
	return &domain.UpstreamDataError{
		Resource: "depth",
		Detail:   p,
		Reason:   fmt.Sprintf("%s level %d has %d fields, want 2", side, i, n),
	}
}
