package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/pair"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, market MarketReader) {
	server.AddResource(&mcp.Resource{
		URI:         "bitbank://pairs",
		Name:        "supported-pairs",
		Description: "Trading pairs accepted by the tools",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, pair.Supported())
	})

	server.AddResource(&mcp.Resource{
		URI:         "bitbank://candle-types",
		Name:        "candle-types",
		Description: "Candlestick types accepted by get_candles",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, domain.CandleTypes)
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "ticker://{pair}",
		Name:        "ticker-by-pair",
		Description: "Normalized ticker for one trading pair",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if market == nil {
			return nil, fmt.Errorf("market service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil || parsed.Scheme != "ticker" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		p := strings.TrimSpace(parsed.Host)
		if p == "" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		res, err := market.GetTicker(ctx, p)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, res)
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
