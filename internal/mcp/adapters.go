package mcp

import (
	"context"

	"bitbank-mcp/internal/service"
)

// MarketReader exposes the market operations served as tools and resources.
type MarketReader interface {
	GetTicker(ctx context.Context, pair string) (*service.TickerResult, error)
	GetTickers(ctx context.Context, market string) (*service.TickersResult, error)
	GetTickersJPY(ctx context.Context) (*service.TickersJPYResult, error)
	GetCandles(ctx context.Context, params service.CandlesParams) (*service.CandlesResult, error)
	GetOrderbook(ctx context.Context, pair string, topN int) (*service.OrderbookResult, error)
	GetDepth(ctx context.Context, pair string, maxLevels int) (*service.DepthResult, error)
	GetTransactions(ctx context.Context, params service.TransactionsParams) (*service.TransactionsResult, error)
}
