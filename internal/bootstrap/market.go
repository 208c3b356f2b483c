// Package bootstrap assembles the fetch, provider, cache and service layers
// from configuration for the cmd entrypoints.
package bootstrap

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"bitbank-mcp/internal/cache"
	"bitbank-mcp/internal/config"
	"bitbank-mcp/internal/fetch"
	"bitbank-mcp/internal/provider"
	"bitbank-mcp/internal/service"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var initRedisFunc = cache.InitRedis

// Market builds the MarketService. The returned close func releases the
// Redis client when one was opened.
func Market(ctx context.Context, cfg *config.Config, tracer trace.Tracer, logger *slog.Logger) (*service.MarketService, func()) {
	if logger == nil {
		logger = slog.Default()
	}

	fetcher := fetch.New(&http.Client{}, fetch.WithLogger(logger), fetch.WithTracer(tracer))
	bitbank := provider.NewBitbankProvider(tracer, fetcher, provider.ProviderConfig{
		BaseURL: cfg.BitbankAPIBase,
		Retries: cfg.FetchRetries,
	})

	slot, closeFn := tickerSlot(ctx, cfg)
	tickers := cache.NewFreshness(cfg.TickersJPYCacheTTL, slot, nil).WithLogger(logger)
	return service.NewMarketService(tracer, bitbank, tickers), closeFn
}

// tickerSlot falls back to process memory when Redis is not reachable.
func tickerSlot(ctx context.Context, cfg *config.Config) (cache.Slot, func()) {
	noop := func() {}
	if cfg.CacheBackend != "redis" {
		return cache.NewMemorySlot(), noop
	}

	connectCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	client, err := initRedisFunc(connectCtx, cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: redis unavailable (%v), using in-memory tickers cache", err)
		return cache.NewMemorySlot(), noop
	}

	// Entries outlive the freshness window a little so a peer process can
	// still read an age and decide staleness itself.
	expire := 2 * cfg.TickersJPYCacheTTL
	return cache.NewRedisSlot(client, cache.DefaultRedisKey, expire), func() { closeRedis(client) }
}

func closeRedis(client *redis.Client) {
	if err := client.Close(); err != nil {
		log.Printf("error closing redis: %v", err)
	}
}
