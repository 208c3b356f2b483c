package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitbank-mcp/internal/cache"
	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/fetch"
	"bitbank-mcp/internal/provider"
	"bitbank-mcp/internal/service"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"
)

type stubMarket struct {
	lastPair    string
	lastCandles service.CandlesParams
	err         error
}

func (s *stubMarket) GetTicker(_ context.Context, pair string) (*service.TickerResult, error) {
	s.lastPair = pair
	if s.err != nil {
		return nil, s.err
	}
	last := 100.0
	return &service.TickerResult{
		Normalized: domain.Ticker{Pair: "btc_jpy", Last: &last},
		Meta:       service.TickerMeta{Pair: "btc_jpy", FetchedAt: "2025-01-01T00:00:00.000Z"},
	}, nil
}

func (s *stubMarket) GetTickers(context.Context, string) (*service.TickersResult, error) {
	return &service.TickersResult{Items: []domain.Ticker{}, Meta: service.TickersMeta{Market: "all"}}, s.err
}

func (s *stubMarket) GetTickersJPY(context.Context) (*service.TickersJPYResult, error) {
	return &service.TickersJPYResult{Items: []domain.Ticker{}}, s.err
}

func (s *stubMarket) GetCandles(_ context.Context, params service.CandlesParams) (*service.CandlesResult, error) {
	s.lastCandles = params
	return &service.CandlesResult{Normalized: []domain.Candle{}, Meta: service.CandlesMeta{Pair: params.Pair, Type: "1day", Date: "2025"}}, s.err
}

func (s *stubMarket) GetOrderbook(context.Context, string, int) (*service.OrderbookResult, error) {
	return &service.OrderbookResult{Normalized: domain.Orderbook{Bids: []domain.DepthLevel{}, Asks: []domain.DepthLevel{}}}, s.err
}

func (s *stubMarket) GetDepth(context.Context, string, int) (*service.DepthResult, error) {
	return &service.DepthResult{Normalized: domain.DepthSnapshot{Asks: [][]float64{}, Bids: [][]float64{}}}, s.err
}

func (s *stubMarket) GetTransactions(context.Context, service.TransactionsParams) (*service.TransactionsResult, error) {
	return &service.TransactionsResult{Normalized: []domain.Transaction{}}, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServer() (*sdkmcp.Server, *stubMarket) {
	market := &stubMarket{}
	srv := NewServer(nil, market, ServerConfig{RequestTimeout: time.Second, Logger: quietLogger()})
	return srv, market
}

// upstreamServer wires the real pipeline against a fake bitbank API.
func upstreamServer(t *testing.T, routes map[string]string) *sdkmcp.Server {
	t.Helper()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(api.Close)

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	f := fetch.New(api.Client(),
		fetch.WithLogger(quietLogger()),
		fetch.WithSleeper(func(context.Context, time.Duration) error { return nil }),
	)
	bitbank := provider.NewBitbankProvider(tracer, f, provider.ProviderConfig{BaseURL: api.URL, Retries: 2})
	svc := service.NewMarketService(tracer, bitbank, cache.NewFreshness(10*time.Second, cache.NewMemorySlot(), nil))
	return NewServer(tracer, svc, ServerConfig{RequestTimeout: 2 * time.Second, Logger: quietLogger()})
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

type authRoundTripper struct {
	token string
	base  http.RoundTripper
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.token != "" {
		clone.Header.Set("Authorization", "Bearer "+t.token)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}

func toolText(res *sdkmcp.CallToolResult) string {
	for _, c := range res.Content {
		if text, ok := c.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func decodeStructured(t *testing.T, res *sdkmcp.CallToolResult, out any) {
	t.Helper()
	raw, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode structured content: %v", err)
	}
}
