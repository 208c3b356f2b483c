package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"bitbank-mcp/internal/chart"
	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/pair"
	"bitbank-mcp/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// queryInt reads an optional integer query parameter; absent means 0 so the
// service applies its default.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewUserError(domain.ErrInvalidParam, "%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

// GetPairs godoc
// @Summary      List supported pairs
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/pairs [get]
func (h *Handler) GetPairs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pairs": pair.Supported(), "candleTypes": domain.CandleTypes})
}

// GetTicker godoc
// @Summary      Get ticker for a pair
// @Tags         market
// @Produce      json
// @Param        pair  path  string  true  "Trading pair (e.g., btc_jpy)"
// @Success      200  {object}  service.TickerResult
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      504  {object}  map[string]string
// @Router       /api/ticker/{pair} [get]
func (h *Handler) GetTicker(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-ticker")
	defer span.End()
	span.SetAttributes(attribute.String("pair", c.Param("pair")))

	res, err := h.market.GetTicker(ctx, c.Param("pair"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetTickers godoc
// @Summary      Get tickers for all pairs
// @Tags         market
// @Produce      json
// @Param        market  query  string  false  "all or jpy"  default(all)
// @Success      200  {object}  service.TickersResult
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/tickers [get]
func (h *Handler) GetTickers(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-tickers")
	defer span.End()

	res, err := h.market.GetTickers(ctx, c.Query("market"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetTickersJPY godoc
// @Summary      Get cached tickers for supported JPY pairs
// @Tags         market
// @Produce      json
// @Success      200  {object}  service.TickersJPYResult
// @Failure      502  {object}  map[string]string
// @Router       /api/tickers/jpy [get]
func (h *Handler) GetTickersJPY(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-tickers-jpy")
	defer span.End()

	res, err := h.market.GetTickersJPY(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	span.SetAttributes(attribute.Bool("cached", res.Meta.Cached))
	c.JSON(http.StatusOK, res)
}

// GetCandles godoc
// @Summary      Get candlesticks for a pair
// @Description  Returns OHLCV candles oldest first
// @Tags         market
// @Produce      json
// @Param        pair   path   string  true   "Trading pair"
// @Param        type   query  string  false  "Candle type"  default(1day)
// @Param        date   query  string  false  "YYYY for 4hour and longer, YYYYMMDD otherwise"
// @Param        limit  query  int     false  "Number of candles (1-1000)"  default(200)
// @Success      200  {object}  service.CandlesResult
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/candles/{pair} [get]
func (h *Handler) GetCandles(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-candles")
	defer span.End()

	res, ok := h.candles(ctx, c)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("count", len(res.Normalized)))
	c.JSON(http.StatusOK, res)
}

// GetCandleChart godoc
// @Summary      Render a candlestick chart
// @Tags         market
// @Produce      png
// @Param        pair   path   string  true   "Trading pair"
// @Param        type   query  string  false  "Candle type"  default(1day)
// @Param        date   query  string  false  "YYYY or YYYYMMDD"
// @Param        limit  query  int     false  "Number of candles"  default(200)
// @Param        study  query  string  false  "volume, rsi or sma"  default(volume)
// @Success      200  {file}  binary
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/candles/{pair}/chart [get]
func (h *Handler) GetCandleChart(c *gin.Context) {
	if h.charts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chart renderer unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-candle-chart")
	defer span.End()

	study, err := chart.ParseStudy(c.Query("study"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, ok := h.candles(ctx, c)
	if !ok {
		return
	}
	img, err := h.charts.RenderCandles(res.Normalized, study)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, img.MimeType, img.Bytes)
}

func (h *Handler) candles(ctx context.Context, c *gin.Context) (*service.CandlesResult, bool) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	res, err := h.market.GetCandles(ctx, service.CandlesParams{
		Pair:  c.Param("pair"),
		Type:  c.Query("type"),
		Date:  c.Query("date"),
		Limit: limit,
	})
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if res.NoData() {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no candlestick data found (" + res.Meta.Pair + "/" + res.Meta.Type + "/" + res.Meta.Date + ")",
			"meta":  res.Meta,
		})
		return nil, false
	}
	return res, true
}

// GetOrderbook godoc
// @Summary      Get order book with cumulative totals
// @Tags         market
// @Produce      json
// @Param        pair  path   string  true   "Trading pair"
// @Param        topN  query  int     false  "Levels per side (1-200)"  default(20)
// @Success      200  {object}  service.OrderbookResult
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/orderbook/{pair} [get]
func (h *Handler) GetOrderbook(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-orderbook")
	defer span.End()

	topN, err := queryInt(c, "topN")
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.market.GetOrderbook(ctx, c.Param("pair"), topN)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetDepth godoc
// @Summary      Get raw depth levels
// @Tags         market
// @Produce      json
// @Param        pair       path   string  true   "Trading pair"
// @Param        maxLevels  query  int     false  "Levels per side (1-500)"  default(200)
// @Success      200  {object}  service.DepthResult
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/depth/{pair} [get]
func (h *Handler) GetDepth(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-depth")
	defer span.End()

	maxLevels, err := queryInt(c, "maxLevels")
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.market.GetDepth(ctx, c.Param("pair"), maxLevels)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetTransactions godoc
// @Summary      Get recent trades with buy/sell stats
// @Tags         market
// @Produce      json
// @Param        pair   path   string  true   "Trading pair"
// @Param        limit  query  int     false  "Number of trades (1-1000)"  default(100)
// @Param        date   query  string  false  "YYYYMMDD; latest trades when empty"
// @Success      200  {object}  service.TransactionsResult
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/transactions/{pair} [get]
func (h *Handler) GetTransactions(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-transactions")
	defer span.End()

	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.market.GetTransactions(ctx, service.TransactionsParams{
		Pair:  c.Param("pair"),
		Limit: limit,
		Date:  c.Query("date"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
