package handler

import (
	"context"
	"net/http"

	"bitbank-mcp/internal/chart"
	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// MarketReader is the subset of the market service served over REST.
type MarketReader interface {
	GetTicker(ctx context.Context, pair string) (*service.TickerResult, error)
	GetTickers(ctx context.Context, market string) (*service.TickersResult, error)
	GetTickersJPY(ctx context.Context) (*service.TickersJPYResult, error)
	GetCandles(ctx context.Context, params service.CandlesParams) (*service.CandlesResult, error)
	GetOrderbook(ctx context.Context, pair string, topN int) (*service.OrderbookResult, error)
	GetDepth(ctx context.Context, pair string, maxLevels int) (*service.DepthResult, error)
	GetTransactions(ctx context.Context, params service.TransactionsParams) (*service.TransactionsResult, error)
}

type ChartRenderer interface {
	RenderCandles(candles []domain.Candle, study chart.Study) (*chart.Image, error)
}

type Handler struct {
	tracer trace.Tracer
	market MarketReader
	charts ChartRenderer
}

func New(tracer trace.Tracer, market MarketReader, charts ChartRenderer) *Handler {
	return &Handler{
		tracer: tracer,
		market: market,
		charts: charts,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/pairs", h.GetPairs)
	api.GET("/tickers", h.GetTickers)
	api.GET("/tickers/jpy", h.GetTickersJPY)
	api.GET("/ticker/:pair", h.GetTicker)
	api.GET("/candles/:pair", h.GetCandles)
	api.GET("/candles/:pair/chart", h.GetCandleChart)
	api.GET("/orderbook/:pair", h.GetOrderbook)
	api.GET("/depth/:pair", h.GetDepth)
	api.GET("/transactions/:pair", h.GetTransactions)
}

// Health godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
