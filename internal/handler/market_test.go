package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitbank-mcp/internal/chart"
	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/fetch"
	"bitbank-mcp/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubMarket struct {
	err         error
	candles     []domain.Candle
	lastCandles service.CandlesParams
	lastTopN    int
	lastTx      service.TransactionsParams
}

func (s *stubMarket) GetTicker(_ context.Context, p string) (*service.TickerResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	last := 15000000.0
	return &service.TickerResult{Normalized: domain.Ticker{Pair: p, Last: &last}, Meta: service.TickerMeta{Pair: p}}, nil
}

func (s *stubMarket) GetTickers(_ context.Context, market string) (*service.TickersResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.TickersResult{Items: []domain.Ticker{}, Meta: service.TickersMeta{Market: market}}, nil
}

func (s *stubMarket) GetTickersJPY(context.Context) (*service.TickersJPYResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.TickersJPYResult{Items: []domain.Ticker{{Pair: "btc_jpy"}}, Meta: service.TickersJPYMeta{Count: 1, Cached: true}}, nil
}

func (s *stubMarket) GetCandles(_ context.Context, params service.CandlesParams) (*service.CandlesResult, error) {
	s.lastCandles = params
	if s.err != nil {
		return nil, s.err
	}
	candles := s.candles
	if candles == nil {
		candles = []domain.Candle{}
	}
	return &service.CandlesResult{
		Normalized: candles,
		Meta:       service.CandlesMeta{Pair: "btc_jpy", Type: "1day", Date: "2025", Count: len(candles)},
	}, nil
}

func (s *stubMarket) GetOrderbook(_ context.Context, _ string, topN int) (*service.OrderbookResult, error) {
	s.lastTopN = topN
	if s.err != nil {
		return nil, s.err
	}
	return &service.OrderbookResult{Normalized: domain.Orderbook{Bids: []domain.DepthLevel{}, Asks: []domain.DepthLevel{}}}, nil
}

func (s *stubMarket) GetDepth(context.Context, string, int) (*service.DepthResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.DepthResult{Normalized: domain.DepthSnapshot{Asks: [][]float64{}, Bids: [][]float64{}}}, nil
}

func (s *stubMarket) GetTransactions(_ context.Context, params service.TransactionsParams) (*service.TransactionsResult, error) {
	s.lastTx = params
	if s.err != nil {
		return nil, s.err
	}
	return &service.TransactionsResult{Normalized: []domain.Transaction{}}, nil
}

func newTestRouter(market *stubMarket) *gin.Engine {
	h := New(trace.NewNoopTracerProvider().Tracer("test"), market, chart.NewRenderer())
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func serve(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestGetTickerSuccess(t *testing.T) {
	w := serve(newTestRouter(&stubMarket{}), "/api/ticker/btc_jpy")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var res service.TickerResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if res.Normalized.Pair != "btc_jpy" || *res.Normalized.Last != 15000000 {
		t.Fatalf("unexpected payload: %+v", res)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"user", domain.NewUserError(domain.ErrInvalidPair, "invalid pair format: 'x'"), http.StatusBadRequest},
		{"upstream data", &domain.UpstreamDataError{Resource: "ticker", Detail: "btc_jpy"}, http.StatusBadGateway},
		{"timeout", &fetch.TimeoutError{URL: "u", After: time.Second}, http.StatusGatewayTimeout},
		{"http status", &fetch.HTTPError{StatusCode: 503, Status: "Service Unavailable"}, http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(newTestRouter(&stubMarket{err: tc.err}), "/api/ticker/btc_jpy")
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] != tc.err.Error() {
				t.Fatalf("expected error message preserved, got %s", w.Body.String())
			}
		})
	}
}

func TestUnsupportedPairIncludesExamples(t *testing.T) {
	market := &stubMarket{err: domain.NewUserError(domain.ErrUnsupportedPair, "unsupported pair: 'abc_jpy'")}
	w := serve(newTestRouter(market), "/api/ticker/abc_jpy")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body struct {
		Examples []string `json:"supported_examples"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || len(body.Examples) == 0 {
		t.Fatalf("expected supported examples, got %s", w.Body.String())
	}
}

func TestGetCandlesPassesQuery(t *testing.T) {
	market := &stubMarket{candles: []domain.Candle{{Open: 1, High: 2, Low: 1, Close: 2, Timestamp: 1}}}
	w := serve(newTestRouter(market), "/api/candles/btc_jpy?type=1hour&date=20250101&limit=24")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	want := service.CandlesParams{Pair: "btc_jpy", Type: "1hour", Date: "20250101", Limit: 24}
	if market.lastCandles != want {
		t.Fatalf("unexpected params: %+v", market.lastCandles)
	}
}

func TestGetCandlesNoData(t *testing.T) {
	w := serve(newTestRouter(&stubMarket{}), "/api/candles/btc_jpy")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetCandlesBadLimit(t *testing.T) {
	w := serve(newTestRouter(&stubMarket{}), "/api/candles/btc_jpy?limit=ten")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetCandleChart(t *testing.T) {
	candles := []domain.Candle{
		{Open: 100, High: 110, Low: 95, Close: 105, Volume: 1, Timestamp: 1},
		{Open: 105, High: 108, Low: 99, Close: 100, Volume: 2, Timestamp: 2},
		{Open: 100, High: 112, Low: 98, Close: 111, Volume: 3, Timestamp: 3},
	}
	r := newTestRouter(&stubMarket{candles: candles})

	w := serve(r, "/api/candles/btc_jpy/chart?study=sma")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %s", ct)
	}

	w = serve(r, "/api/candles/btc_jpy/chart?study=macd")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown study, got %d", w.Code)
	}
}

func TestGetOrderbookAndTransactionsQuery(t *testing.T) {
	market := &stubMarket{}
	r := newTestRouter(market)

	if w := serve(r, "/api/orderbook/btc_jpy?topN=5"); w.Code != http.StatusOK || market.lastTopN != 5 {
		t.Fatalf("unexpected orderbook response %d topN=%d", w.Code, market.lastTopN)
	}
	if w := serve(r, "/api/transactions/btc_jpy?limit=10&date=20250101"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if market.lastTx != (service.TransactionsParams{Pair: "btc_jpy", Limit: 10, Date: "20250101"}) {
		t.Fatalf("unexpected transaction params: %+v", market.lastTx)
	}
}

func TestListingRoutes(t *testing.T) {
	r := newTestRouter(&stubMarket{})
	for _, target := range []string{"/health", "/api/pairs", "/api/tickers?market=jpy", "/api/tickers/jpy", "/api/depth/btc_jpy"} {
		if w := serve(r, target); w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, w.Code)
		}
	}
}
