package mcp

import (
	"context"
	"fmt"

	"bitbank-mcp/internal/render"
	"bitbank-mcp/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var errMarketUnavailable = fmt.Errorf("market service unavailable")

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func registerTools(server *mcp.Server, market MarketReader) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_ticker",
		Description: "Get ticker data for a trading pair",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in tickerInput) (*mcp.CallToolResult, service.TickerResult, error) {
		if market == nil {
			return nil, service.TickerResult{}, errMarketUnavailable
		}
		res, err := market.GetTicker(ctx, in.Pair)
		if err != nil {
			return nil, service.TickerResult{}, err
		}
		return textResult(render.Ticker(res)), *res, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_tickers",
		Description: "Get ticker data for all trading pairs",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in tickersInput) (*mcp.CallToolResult, service.TickersResult, error) {
		if market == nil {
			return nil, service.TickersResult{}, errMarketUnavailable
		}
		res, err := market.GetTickers(ctx, in.Market)
		if err != nil {
			return nil, service.TickersResult{}, err
		}
		return textResult(render.Tickers(res)), *res, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_tickers_jpy",
		Description: "Get ticker data for JPY trading pairs only (cached for a few seconds)",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ tickersJPYInput) (*mcp.CallToolResult, service.TickersJPYResult, error) {
		if market == nil {
			return nil, service.TickersJPYResult{}, errMarketUnavailable
		}
		res, err := market.GetTickersJPY(ctx)
		if err != nil {
			return nil, service.TickersJPYResult{}, err
		}
		return textResult(render.TickersJPY(res)), *res, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_candles",
		Description: "Get candlestick (OHLCV) data for a trading pair, oldest first",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in candlesInput) (*mcp.CallToolResult, service.CandlesResult, error) {
		if market == nil {
			return nil, service.CandlesResult{}, errMarketUnavailable
		}
		res, err := market.GetCandles(ctx, service.CandlesParams{Pair: in.Pair, Type: in.Type, Date: in.Date, Limit: in.Limit})
		if err != nil {
			return nil, service.CandlesResult{}, err
		}
		return textResult(render.Candles(res)), *res, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_orderbook",
		Description: "Get order book (bid/ask) for a trading pair with cumulative totals",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in orderbookInput) (*mcp.CallToolResult, service.OrderbookResult, error) {
		if market == nil {
			return nil, service.OrderbookResult{}, errMarketUnavailable
		}
		res, err := market.GetOrderbook(ctx, in.Pair, in.TopN)
		if err != nil {
			return nil, service.OrderbookResult{}, err
		}
		return textResult(render.Orderbook(res)), *res, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_depth",
		Description: "Get full order book depth for a trading pair as [price, amount] levels",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in depthInput) (*mcp.CallToolResult, service.DepthResult, error) {
		if market == nil {
			return nil, service.DepthResult{}, errMarketUnavailable
		}
		res, err := market.GetDepth(ctx, in.Pair, in.MaxLevels)
		if err != nil {
			return nil, service.DepthResult{}, err
		}
		return textResult(render.Depth(res)), *res, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_transactions",
		Description: "Get recent transactions for a trading pair with buy/sell balance",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in transactionsInput) (*mcp.CallToolResult, service.TransactionsResult, error) {
		if market == nil {
			return nil, service.TransactionsResult{}, errMarketUnavailable
		}
		res, err := market.GetTransactions(ctx, service.TransactionsParams{Pair: in.Pair, Limit: in.Limit, Date: in.Date})
		if err != nil {
			return nil, service.TransactionsResult{}, err
		}
		return textResult(render.Transactions(res)), *res, nil
	})
}
