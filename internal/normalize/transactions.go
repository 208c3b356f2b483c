package normalize

import (
	"fmt"
	"math"
	"sort"

	"bitbank-mcp/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	buyDominantPct  = 60
	sellDominantPct = 40
)

var (
	maxTransactionID = decimal.NewFromInt(math.MaxInt64)
	minTransactionID = decimal.NewFromInt(math.MinInt64)
)

// Transactions re-sorts trades ascending by execution time, since upstream
// order is not guaranteed, then keeps the most recent limit. A limit <= 0
// keeps every trade.
func Transactions(p string, raw RawTransactions, limit int) ([]domain.Transaction, error) {
	fp := &fieldParser{resource: "transactions", detail: p}
	out := make([]domain.Transaction, 0, len(raw.Transactions))
	for _, r := range raw.Transactions {
		id := fp.required("transaction_id", r.TransactionID)
		price := fp.required("price", r.Price)
		amount := fp.required("amount", r.Amount)
		if fp.err != nil {
			return nil, fp.err
		}
		if !id.IsInteger() || id.GreaterThan(maxTransactionID) || id.LessThan(minTransactionID) {
			return nil, &domain.UpstreamDataError{
				Resource: "transactions",
				Detail:   p,
				Reason:   fmt.Sprintf("malformed transaction_id %s", truncate(r.TransactionID)),
			}
		}
		ts, iso := epoch(r.ExecutedAt)
		if ts == nil {
			return nil, &domain.UpstreamDataError{
				Resource: "transactions",
				Detail:   p,
				Reason:   fmt.Sprintf("malformed executed_at %s", truncate(r.ExecutedAt)),
			}
		}
		out = append(out, domain.Transaction{
			TransactionID: id.IntPart(),
			Side:          domain.TradeSide(r.Side),
			Price:         toFloat(price),
			Amount:        toFloat(amount),
			ExecutedAt:    *ts,
			IsoTime:       iso,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ExecutedAt < out[j].ExecutedAt })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Stats counts sides and labels dominance: a buy share of at least 60% is
// buy-dominant, at most 40% sell-dominant, anything between balanced.
func Stats(txs []domain.Transaction) domain.TradeStats {
	var st domain.TradeStats
	volume := decimal.Zero
	for _, t := range txs {
		switch t.Side {
		case domain.SideBuy:
			st.Buys++
		case domain.SideSell:
			st.Sells++
		}
		volume = volume.Add(decimal.NewFromFloat(t.Amount))
	}

	total := st.Buys + st.Sells
	switch {
	case total == 0:
		st.Dominance = domain.DominanceNone
	default:
		st.BuyRatioPct = int(math.Round(float64(st.Buys) / float64(total) * 100))
		switch {
		case st.BuyRatioPct >= buyDominantPct:
			st.Dominance = domain.DominanceBuy
		case st.BuyRatioPct <= sellDominantPct:
			st.Dominance = domain.DominanceSell
		default:
			st.Dominance = domain.DominanceBalanced
		}
	}

	st.TotalVolume = volume.InexactFloat64()
	if volume.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		st.TotalVolumeText = volume.StringFixed(4)
	} else {
		st.TotalVolumeText = volume.StringFixed(6)
	}
	return st
}
