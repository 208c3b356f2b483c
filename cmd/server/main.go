package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"bitbank-mcp/internal/bootstrap"
	"bitbank-mcp/internal/bot"
	"bitbank-mcp/internal/chart"
	"bitbank-mcp/internal/config"
	"bitbank-mcp/internal/handler"
	"bitbank-mcp/internal/job"
	"bitbank-mcp/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "bitbank-mcp/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initTracerFunc         = tracing.InitTracer
	newMarketServiceFunc   = bootstrap.Market
	newChartRendererFunc   = chart.NewRenderer
	newTickersWarmerFunc   = job.NewTickersWarmer
	startWarmerFunc        = func(w *job.TickersWarmer, ctx context.Context) { go w.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           bitbank market data API
// @version         1.0
// @description     Normalized bitbank public market data with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	market, closeMarket := newMarketServiceFunc(ctx, cfg, tracer, logger)
	defer closeMarket()
	renderer := newChartRendererFunc()

	// Start Telegram bot; nil when no token is configured
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	movers := startTelegramBotFunc(market, renderer)

	warmer := newTickersWarmerFunc(tracer, market, cfg.CacheWarmSecs)
	if movers != nil {
		warmer = warmer.WithNotifier(movers)
	}
	startWarmerFunc(warmer, ctx)

	h := newHandlerFunc(tracer, market, renderer)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("bitbank-mcp"))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              httpAddrFromEnv(cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

// httpAddrFromEnv lets a platform-assigned PORT override the configured one.
func httpAddrFromEnv(defaultPort int) string {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		if defaultPort <= 0 {
			defaultPort = 8080
		}
		return fmt.Sprintf(":%d", defaultPort)
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
