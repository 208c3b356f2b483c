package tui

import (
	"context"

	"bitbank-mcp/internal/service"
)

// MarketQuerier provides market data to the TUI.
type MarketQuerier interface {
	GetTickersJPY(ctx context.Context) (*service.TickersJPYResult, error)
	GetOrderbook(ctx context.Context, pair string, topN int) (*service.OrderbookResult, error)
	GetTransactions(ctx context.Context, params service.TransactionsParams) (*service.TransactionsResult, error)
}

// WatchPairs are the pairs the book and trades screens cycle through.
var WatchPairs = []string{"btc_jpy", "eth_jpy", "xrp_jpy", "sol_jpy", "doge_jpy"}

// Services bundles the dependencies injected into the TUI.
type Services struct {
	Market   MarketQuerier
	Username string
}
