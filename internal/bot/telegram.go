package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbank-mcp/internal/chart"
	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/render"
	"bitbank-mcp/internal/service"

	tele "gopkg.in/telebot.v3"
)

const (
	maxMessageLen  = 4000
	commandTimeout = 20 * time.Second
	chartCandles   = 90
)

type MarketReader interface {
	GetTicker(ctx context.Context, pair string) (*service.TickerResult, error)
	GetTickers(ctx context.Context, market string) (*service.TickersResult, error)
	GetCandles(ctx context.Context, params service.CandlesParams) (*service.CandlesResult, error)
	GetOrderbook(ctx context.Context, pair string, topN int) (*service.OrderbookResult, error)
	GetTransactions(ctx context.Context, params service.TransactionsParams) (*service.TransactionsResult, error)
}

type ChartRenderer interface {
	RenderCandles(candles []domain.Candle, study chart.Study) (*chart.Image, error)
}

const usage = `Commands:
/ticker btc_jpy
/tickers [all|jpy]
/candles btc_jpy [type] [date]
/chart btc_jpy [type] [volume|rsi|sma]
/book btc_jpy [topN]
/trades btc_jpy [limit]
/movers on|off|status`

// StartTelegramBot starts long polling in the background. It returns nil
// when TELEGRAM_BOT_TOKEN is unset.
func StartTelegramBot(market MarketReader, charts ChartRenderer) *MoversDispatcher {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	movers := NewMoversDispatcher(b)

	b.Handle("/start", func(c tele.Context) error { return c.Send(usage) })
	b.Handle("/help", func(c tele.Context) error { return c.Send(usage) })
	b.Handle("/ping", func(c tele.Context) error { return c.Send("pong") })

	text := func(fn func(ctx context.Context, args []string) string) tele.HandlerFunc {
		return func(c tele.Context) error {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			_ = c.Notify(tele.Typing)
			return c.Send(truncate(fn(ctx, c.Args())))
		}
	}

	b.Handle("/ticker", text(func(ctx context.Context, args []string) string { return tickerReply(ctx, market, args) }))
	b.Handle("/tickers", text(func(ctx context.Context, args []string) string { return tickersReply(ctx, market, args) }))
	b.Handle("/candles", text(func(ctx context.Context, args []string) string { return candlesReply(ctx, market, args) }))
	b.Handle("/book", text(func(ctx context.Context, args []string) string { return bookReply(ctx, market, args) }))
	b.Handle("/trades", text(func(ctx context.Context, args []string) string { return tradesReply(ctx, market, args) }))

	b.Handle("/chart", func(c tele.Context) error {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		_ = c.Notify(tele.UploadingPhoto)

		img, caption, err := chartReply(ctx, market, charts, c.Args())
		if err != nil {
			return c.Send(truncate(err.Error()))
		}
		return c.Send(&tele.Photo{File: tele.FromReader(bytes.NewReader(img.Bytes)), Caption: caption})
	})

	b.Handle("/movers", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}
		mode, err := parseMoversMode(c.Args())
		if err != nil {
			return c.Send("Usage: /movers on | /movers off | /movers status")
		}
		switch mode {
		case "on":
			if movers.Subscribe(chat.ID) {
				return c.Send("JPY movers digest enabled for this chat.")
			}
			return c.Send("JPY movers digest is already enabled for this chat.")
		case "off":
			if movers.Unsubscribe(chat.ID) {
				return c.Send("JPY movers digest disabled for this chat.")
			}
			return c.Send("JPY movers digest is already disabled for this chat.")
		default:
			if movers.IsSubscribed(chat.ID) {
				return c.Send("Movers digest: ON")
			}
			return c.Send("Movers digest: OFF")
		}
	})

	log.Println("Telegram bot started")
	go b.Start()
	return movers
}

func tickerReply(ctx context.Context, market MarketReader, args []string) string {
	if len(args) == 0 {
		return "Usage: /ticker btc_jpy"
	}
	res, err := market.GetTicker(ctx, args[0])
	if err != nil {
		return render.Error(err)
	}
	return render.Ticker(res)
}

func tickersReply(ctx context.Context, market MarketReader, args []string) string {
	m := domain.MarketJPY
	if len(args) > 0 {
		m = args[0]
	}
	res, err := market.GetTickers(ctx, m)
	if err != nil {
		return render.Error(err)
	}
	return render.Tickers(res)
}

func candlesReply(ctx context.Context, market MarketReader, args []string) string {
	if len(args) == 0 {
		return "Usage: /candles btc_jpy [type] [date]"
	}
	params := service.CandlesParams{Pair: args[0], Limit: 30}
	if len(args) > 1 {
		params.Type = args[1]
	}
	if len(args) > 2 {
		params.Date = args[2]
	}
	res, err := market.GetCandles(ctx, params)
	if err != nil {
		return render.Error(err)
	}
	return render.Candles(res)
}

func bookReply(ctx context.Context, market MarketReader, args []string) string {
	if len(args) == 0 {
		return "Usage: /book btc_jpy [topN]"
	}
	topN, err := optionalInt(args, 1, "topN")
	if err != nil {
		return render.Error(err)
	}
	res, err := market.GetOrderbook(ctx, args[0], topN)
	if err != nil {
		return render.Error(err)
	}
	return render.Orderbook(res)
}

func tradesReply(ctx context.Context, market MarketReader, args []string) string {
	if len(args) == 0 {
		return "Usage: /trades btc_jpy [limit]"
	}
	limit, err := optionalInt(args, 1, "limit")
	if err != nil {
		return render.Error(err)
	}
	res, err := market.GetTransactions(ctx, service.TransactionsParams{Pair: args[0], Limit: limit})
	if err != nil {
		return render.Error(err)
	}
	return render.Transactions(res)
}

func chartReply(ctx context.Context, market MarketReader, charts ChartRenderer, args []string) (*chart.Image, string, error) {
	if charts == nil {
		return nil, "", errors.New("chart rendering unavailable")
	}
	if len(args) == 0 {
		return nil, "", errors.New("Usage: /chart btc_jpy [type] [volume|rsi|sma]")
	}
	params := service.CandlesParams{Pair: args[0], Limit: chartCandles}
	if len(args) > 1 {
		params.Type = args[1]
	}
	study := chart.StudyVolume
	if len(args) > 2 {
		s, err := chart.ParseStudy(args[2])
		if err != nil {
			return nil, "", err
		}
		study = s
	}

	res, err := market.GetCandles(ctx, params)
	if err != nil {
		return nil, "", errors.New(render.Error(err))
	}
	if res.NoData() {
		return nil, "", errors.New(render.Candles(res))
	}
	img, err := charts.RenderCandles(res.Normalized, study)
	if err != nil {
		return nil, "", err
	}
	caption := fmt.Sprintf("%s %s (%d candles, %s)", render.Pair(res.Meta.Pair), res.Meta.Type, len(res.Normalized), study)
	return img, caption, nil
}

func optionalInt(args []string, idx int, name string) (int, error) {
	if len(args) <= idx {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[idx]))
	if err != nil {
		return 0, domain.NewUserError(domain.ErrInvalidParam, "%s must be an integer, got %q", name, args[idx])
	}
	return n, nil
}

func truncate(msg string) string {
	if len(msg) > maxMessageLen {
		return msg[:maxMessageLen] + "\n\n[truncated]"
	}
	return msg
}
