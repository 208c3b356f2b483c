package service

import (
	"context"
	"time"

	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/normalize"
	"bitbank-mcp/internal/pair"
	"bitbank-mcp/internal/timeconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type MarketProvider interface {
	FetchTicker(ctx context.Context, pair string) (normalize.RawTicker, error)
	FetchTickers(ctx context.Context) ([]normalize.RawTicker, error)
	FetchTickersJPY(ctx context.Context) ([]normalize.RawTicker, error)
	FetchCandles(ctx context.Context, pair, candleType, date string) (normalize.RawCandlestick, error)
	FetchDepth(ctx context.Context, pair string) (normalize.RawDepth, error)
	FetchTransactions(ctx context.Context, pair, date string) (normalize.RawTransactions, error)
}

type TickerCache interface {
	Get(ctx context.Context) (domain.TickerEntry, bool)
	Put(ctx context.Context, items []domain.Ticker) domain.TickerEntry
}

type MarketService struct {
	tracer   trace.Tracer
	provider MarketProvider
	cache    TickerCache
	now      func() time.Time
}

func NewMarketService(tracer trace.Tracer, provider MarketProvider, cache TickerCache) *MarketService {
	return &MarketService{tracer: tracer, provider: provider, cache: cache, now: time.Now}
}

// WithClock replaces the local clock used for default dates and fetch
// timestamps.
func (s *MarketService) WithClock(now func() time.Time) *MarketService {
	s.now = now
	return s
}

type TickerMeta struct {
	Pair      string `json:"pair"`
	FetchedAt string `json:"fetchedAt"`
}

type TickerResult struct {
	Normalized domain.Ticker `json:"normalized"`
	Meta       TickerMeta    `json:"meta"`
}

type TickersMeta struct {
	Market    string `json:"market"`
	Count     int    `json:"count"`
	FetchedAt string `json:"fetchedAt"`
}

type TickersResult struct {
	Items []domain.Ticker `json:"items"`
	Meta  TickersMeta     `json:"meta"`
}

type TickersJPYMeta struct {
	Count      int    `json:"count"`
	Cached     bool   `json:"cached"`
	CapturedAt string `json:"capturedAt"`
}

type TickersJPYResult struct {
	Items []domain.Ticker `json:"items"`
	Meta  TickersJPYMeta  `json:"meta"`
}

type CandlesParams struct {
	Pair  string
	Type  string
	Date  string
	Limit int
}

type CandlesMeta struct {
	Pair  string `json:"pair"`
	Type  string `json:"type"`
	Date  string `json:"date"`
	Limit int    `json:"limit"`
	Count int    `json:"count"`
}

// CandlesResult with zero candles means upstream has nothing for the
// requested type and date.
type CandlesResult struct {
	Normalized []domain.Candle `json:"normalized"`
	Meta       CandlesMeta     `json:"meta"`
}

func (r *CandlesResult) NoData() bool { return len(r.Normalized) == 0 }

type OrderbookMeta struct {
	Pair  string `json:"pair"`
	TopN  int    `json:"topN"`
	Count int    `json:"count"`
}

type OrderbookResult struct {
	Normalized domain.Orderbook `json:"normalized"`
	Meta       OrderbookMeta    `json:"meta"`
}

type DepthMeta struct {
	Pair      string `json:"pair"`
	MaxLevels int    `json:"maxLevels"`
	AsksCount int    `json:"asksCount"`
	BidsCount int    `json:"bidsCount"`
	FetchedAt string `json:"fetchedAt"`
}

type DepthResult struct {
	Normalized domain.DepthSnapshot `json:"normalized"`
	Meta       DepthMeta            `json:"meta"`
}

type TransactionsParams struct {
	Pair  string
	Limit int
	Date  string
}

type TransactionsMeta struct {
	Pair   string `json:"pair"`
	Count  int    `json:"count"`
	Buys   int    `json:"buys"`
	Sells  int    `json:"sells"`
	Source string `json:"source"`
}

type TransactionsResult struct {
	Normalized []domain.Transaction `json:"normalized"`
	Stats      domain.TradeStats    `json:"stats"`
	Meta       TransactionsMeta     `json:"meta"`
}

func (s *MarketService) GetTicker(ctx context.Context, rawPair string) (*TickerResult, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-ticker")
	defer span.End()

	p, err := pair.Validate(rawPair)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("pair", p))

	raw, err := s.provider.FetchTicker(ctx, p)
	if err != nil {
		return nil, fail(span, err)
	}
	t, err := normalize.Ticker(p, raw)
	if err != nil {
		return nil, fail(span, err)
	}
	return &TickerResult{Normalized: t, Meta: TickerMeta{Pair: p, FetchedAt: s.fetchedAt()}}, nil
}

func (s *MarketService) GetTickers(ctx context.Context, market string) (*TickersResult, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-tickers")
	defer span.End()

	market, err := resolveMarket(market)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("market", market))

	raw, err := s.provider.FetchTickers(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	items, err := normalize.Tickers(raw)
	if err != nil {
		return nil, fail(span, err)
	}
	if market == domain.MarketJPY {
		items = normalize.FilterJPY(items)
	}
	return &TickersResult{
		Items: items,
		Meta:  TickersMeta{Market: market, Count: len(items), FetchedAt: s.fetchedAt()},
	}, nil
}

// GetTickersJPY serves the cached snapshot while it is fresh. On a miss it
// fetches every JPY ticker unfiltered, drops pairs outside the allow-list,
// and replaces the snapshot.
func (s *MarketService) GetTickersJPY(ctx context.Context) (*TickersJPYResult, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-tickers-jpy")
	defer span.End()

	if entry, ok := s.cache.Get(ctx); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return tickersJPYResult(entry, true), nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	raw, err := s.provider.FetchTickersJPY(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	items, err := normalize.Tickers(normalize.KeepPairs(raw, pair.IsAllowed))
	if err != nil {
		return nil, fail(span, err)
	}
	entry := s.cache.Put(ctx, items)
	return tickersJPYResult(entry, false), nil
}

// tickersJPYResult copies the items so callers cannot reorder or edit the
// cached snapshot.
func tickersJPYResult(entry domain.TickerEntry, cached bool) *TickersJPYResult {
	return &TickersJPYResult{
		Items: append([]domain.Ticker{}, entry.Items...),
		Meta: TickersJPYMeta{
			Count:      len(entry.Items),
			Cached:     cached,
			CapturedAt: timeconv.ISO(time.UnixMilli(entry.CapturedAtMs)),
		},
	}
}

func (s *MarketService) GetCandles(ctx context.Context, params CandlesParams) (*CandlesResult, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-candles")
	defer span.End()

	p, err := pair.Validate(params.Pair)
	if err != nil {
		return nil, err
	}
	candleType, err := resolveCandleType(params.Type)
	if err != nil {
		return nil, err
	}
	date, err := resolveCandleDate(candleType, params.Date, s.now())
	if err != nil {
		return nil, err
	}
	limit, err := resolveLimit("limit", params.Limit, defaultCandleLimit, maxCandleLimit)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("pair", p),
		attribute.String("candle.type", candleType),
		attribute.String("candle.date", date),
		attribute.Int("limit", limit),
	)

	raw, err := s.provider.FetchCandles(ctx, p, candleType, date)
	if err != nil {
		return nil, fail(span, err)
	}
	candles, err := normalize.Candles(raw, limit, p+"/"+candleType+"/"+date)
	if err != nil {
		return nil, fail(span, err)
	}
	return &CandlesResult{
		Normalized: candles,
		Meta:       CandlesMeta{Pair: p, Type: candleType, Date: date, Limit: limit, Count: len(candles)},
	}, nil
}

func (s *MarketService) GetOrderbook(ctx context.Context, rawPair string, topN int) (*OrderbookResult, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-orderbook")
	defer span.End()

	p, err := pair.Validate(rawPair)
	if err != nil {
		return nil, err
	}
	topN, err = resolveLimit("topN", topN, defaultTopN, maxTopN)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("pair", p), attribute.Int("top_n", topN))

	raw, err := s.provider.FetchDepth(ctx, p)
	if err != nil {
		return nil, fail(span, err)
	}
	ob, err := normalize.Orderbook(p, raw, topN)
	if err != nil {
		return nil, fail(span, err)
	}
	return &OrderbookResult{
		Normalized: ob,
		Meta:       OrderbookMeta{Pair: p, TopN: topN, Count: len(ob.Bids) + len(ob.Asks)},
	}, nil
}

func (s *MarketService) GetDepth(ctx context.Context, rawPair string, maxLevels int) (*DepthResult, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-depth")
	defer span.End()

	p, err := pair.Validate(rawPair)
	if err != nil {
		return nil, err
	}
	maxLevels, err = resolveLimit("maxLevels", maxLevels, defaultMaxLevels, maxMaxLevels)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("pair", p), attribute.Int("max_levels", maxLevels))

	raw, err := s.provider.FetchDepth(ctx, p)
	if err != nil {
		return nil, fail(span, err)
	}
	snap, err := normalize.Depth(p, raw, maxLevels)
	if err != nil {
		return nil, fail(span, err)
	}
	return &DepthResult{
		Normalized: snap,
		Meta: DepthMeta{
			Pair:      p,
			MaxLevels: maxLevels,
			AsksCount: len(snap.Asks),
			BidsCount: len(snap.Bids),
			FetchedAt: s.fetchedAt(),
		},
	}, nil
}

func (s *MarketService) GetTransactions(ctx context.Context, params TransactionsParams) (*TransactionsResult, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-transactions")
	defer span.End()

	p, err := pair.Validate(params.Pair)
	if err != nil {
		return nil, err
	}
	limit, err := resolveLimit("limit", params.Limit, defaultTxLimit, maxTxLimit)
	if err != nil {
		return nil, err
	}
	date, err := resolveTransactionsDate(params.Date)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("pair", p), attribute.Int("limit", limit), attribute.String("date", date))

	raw, err := s.provider.FetchTransactions(ctx, p, date)
	if err != nil {
		return nil, fail(span, err)
	}
	txs, err := normalize.Transactions(p, raw, limit)
	if err != nil {
		return nil, fail(span, err)
	}
	stats := normalize.Stats(txs)
	source := "latest"
	if date != "" {
		source = "by_date"
	}
	return &TransactionsResult{
		Normalized: txs,
		Stats:      stats,
		Meta: TransactionsMeta{
			Pair:   p,
			Count:  len(txs),
			Buys:   stats.Buys,
			Sells:  stats.Sells,
			Source: source,
		},
	}, nil
}

func (s *MarketService) fetchedAt() string {
	return timeconv.ISO(s.now())
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
