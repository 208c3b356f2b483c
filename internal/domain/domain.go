package domain

// Ticker is a normalized 24h snapshot for one pair. Nil numeric fields mean
// the upstream omitted the value.
type Ticker struct {
	Pair         string   `json:"pair"`
	Last         *float64 `json:"last"`
	Buy          *float64 `json:"buy"`
	Sell         *float64 `json:"sell"`
	Open         *float64 `json:"open"`
	High         *float64 `json:"high"`
	Low          *float64 `json:"low"`
	Volume       *float64 `json:"volume"`
	Timestamp    *int64   `json:"timestamp"`
	IsoTime      *string  `json:"isoTime"`
	Change24hPct *float64 `json:"change24hPct"`
	Vol24hJPY    *int64   `json:"vol24hJpy"`
}

// Spread is sell minus buy, or nil when either side is unknown.
func (t Ticker) Spread() *float64 {
	if t.Buy == nil || t.Sell == nil {
		return nil
	}
	s := *t.Sell - *t.Buy
	return &s
}

// Candle is one OHLCV row.
type Candle struct {
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"timestamp"`
	IsoTime   *string `json:"isoTime"`
}

// DepthLevel is one price level; Total is the cumulative amount from the
// best price outward on the same side.
type DepthLevel struct {
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
	Total  float64 `json:"total"`
}

// Orderbook is a truncated view of the book. Best prices, spread and mid are
// computed over the truncated levels.
type Orderbook struct {
	Pair       string       `json:"pair"`
	BestBid    *float64     `json:"bestBid"`
	BestAsk    *float64     `json:"bestAsk"`
	Spread     *float64     `json:"spread"`
	Mid        *float64     `json:"mid"`
	Bids       []DepthLevel `json:"bids"`
	Asks       []DepthLevel `json:"asks"`
	Timestamp  *int64       `json:"timestamp"`
	IsoTime    *string      `json:"isoTime"`
	SequenceID string       `json:"sequenceId,omitempty"`
}

// DepthSnapshot is the raw-pair view of the book: each level is
// [price, amount]. Mid is rounded to 2 decimals.
type DepthSnapshot struct {
	Asks       [][]float64 `json:"asks"`
	Bids       [][]float64 `json:"bids"`
	BestAsk    *float64    `json:"bestAsk"`
	BestBid    *float64    `json:"bestBid"`
	Mid        *float64    `json:"mid"`
	Timestamp  *int64      `json:"timestamp"`
	IsoTime    *string     `json:"isoTime"`
	SequenceID string      `json:"sequenceId,omitempty"`
}

type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// Transaction is one executed trade.
type Transaction struct {
	TransactionID int64     `json:"transactionId"`
	Side          TradeSide `json:"side"`
	Price         float64   `json:"price"`
	Amount        float64   `json:"amount"`
	ExecutedAt    int64     `json:"executedAt"`
	IsoTime       *string   `json:"isoTime"`
}

type Dominance string

const (
	DominanceBuy      Dominance = "buy-dominant"
	DominanceSell     Dominance = "sell-dominant"
	DominanceBalanced Dominance = "balanced"
	DominanceNone     Dominance = "none"
)

// TradeStats summarizes a transaction window.
type TradeStats struct {
	Buys            int       `json:"buys"`
	Sells           int       `json:"sells"`
	BuyRatioPct     int       `json:"buyRatioPct"`
	Dominance       Dominance `json:"dominance"`
	TotalVolume     float64   `json:"totalVolume"`
	TotalVolumeText string    `json:"totalVolumeText"`
}

// TickerEntry is the single cached snapshot of the JPY tickers.
type TickerEntry struct {
	CapturedAtMs int64    `json:"capturedAtEpochMs"`
	Items        []Ticker `json:"items"`
}

const (
	MarketAll = "all"
	MarketJPY = "jpy"
)

// CandleTypes lists the candlestick granularities accepted upstream.
var CandleTypes = []string{
	"1min", "5min", "15min", "30min", "1hour",
	"4hour", "8hour", "12hour", "1day", "1week", "1month",
}

const DefaultCandleType = "1day"

var yearlyCandleTypes = map[string]struct{}{
	"4hour": {}, "8hour": {}, "12hour": {}, "1day": {}, "1week": {}, "1month": {},
}

// IsYearlyCandleType reports whether the type is addressed by YYYY rather
// than YYYYMMDD.
func IsYearlyCandleType(candleType string) bool {
	_, ok := yearlyCandleTypes[candleType]
	return ok
}

func IsCandleType(candleType string) bool {
	for _, t := range CandleTypes {
		if t == candleType {
			return true
		}
	}
	return false
}
