package job

import (
	"context"
	"log"
	"time"

	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type TickersJPYReader interface {
	GetTickersJPY(ctx context.Context) (*service.TickersJPYResult, error)
}

// TickerNotifier receives every freshly fetched JPY snapshot.
type TickerNotifier interface {
	NotifyTickers(ctx context.Context, items []domain.Ticker) error
}

// TickersWarmer keeps the shared JPY tickers slot populated so tool calls
// mostly hit the cache.
type TickersWarmer struct {
	tracer   trace.Tracer
	market   TickersJPYReader
	interval time.Duration
	notifier TickerNotifier
}

func NewTickersWarmer(tracer trace.Tracer, market TickersJPYReader, intervalSecs int) *TickersWarmer {
	return &TickersWarmer{
		tracer:   tracer,
		market:   market,
		interval: time.Duration(intervalSecs) * time.Second,
	}
}

func (w *TickersWarmer) WithNotifier(n TickerNotifier) *TickersWarmer {
	w.notifier = n
	return w
}

// Start refreshes immediately and then every interval. Blocks until ctx is
// cancelled. A non-positive interval disables the warmer.
func (w *TickersWarmer) Start(ctx context.Context) {
	if w.market == nil || w.interval <= 0 {
		log.Println("Tickers warmer disabled")
		<-ctx.Done()
		return
	}

	log.Printf("Tickers warmer starting (every %s)...", w.interval)
	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Tickers warmer stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *TickersWarmer) refresh(ctx context.Context) {
	ctx, span := w.tracer.Start(ctx, "tickers-warmer.refresh")
	defer span.End()

	res, err := w.market.GetTickersJPY(ctx)
	if err != nil {
		span.RecordError(err)
		log.Printf("tickers warm error: %v", err)
		return
	}
	span.SetAttributes(attribute.Int("count", res.Meta.Count), attribute.Bool("cached", res.Meta.Cached))

	if res.Meta.Cached || w.notifier == nil {
		return
	}
	if err := w.notifier.NotifyTickers(ctx, res.Items); err != nil {
		log.Printf("tickers notify error: %v", err)
	}
}
