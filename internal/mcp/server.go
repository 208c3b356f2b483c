package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// defaultRequestTimeout leaves room for three candlestick attempts plus
// backoff.
const defaultRequestTimeout = 30 * time.Second

const (
	ServerName    = "bitbank"
	ServerVersion = "0.3.0"
)

type ServerConfig struct {
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

func NewServer(tracer trace.Tracer, market MarketReader, cfg ServerConfig) *sdkmcp.Server {
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &sdkmcp.ServerOptions{
		Instructions: "Read-only bitbank market data: tickers, candles, order book depth and trades. " +
			"Pairs look like btc_jpy; read bitbank://pairs for the supported list.",
		Logger: logger,
	})

	srv.AddReceivingMiddleware(timeoutMiddleware(requestTimeout))
	if tracer != nil {
		srv.AddReceivingMiddleware(tracingMiddleware(tracer))
	}
	srv.AddReceivingMiddleware(loggingMiddleware(logger))

	registerTools(srv, market)
	registerResources(srv, market)
	return srv
}

func NewHTTPTransportHandler(server *sdkmcp.Server, cfg HTTPHandlerConfig) http.Handler {
	base := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, &sdkmcp.StreamableHTTPOptions{})
	return wrapHTTPHandler(base, cfg)
}

func timeoutMiddleware(timeout time.Duration) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if timeout <= 0 {
				return next(ctx, method, req)
			}
			timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(timeoutCtx, method, req)
		}
	}
}

func tracingMiddleware(tracer trace.Tracer) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			spanName := mcpSpanName(method, req)
			ctx, span := tracer.Start(ctx, spanName)
			span.SetAttributes(attribute.String("mcp.method", method))
			defer span.End()

			if callReq, ok := req.(*sdkmcp.CallToolRequest); ok {
				span.SetAttributes(attribute.String("mcp.tool", strings.TrimSpace(callReq.Params.Name)))
			}
			if readReq, ok := req.(*sdkmcp.ReadResourceRequest); ok {
				span.SetAttributes(attribute.String("mcp.resource.uri", strings.TrimSpace(readReq.Params.URI)))
			}

			result, err := next(ctx, method, req)
			if err != nil {
				span.RecordError(err)
			}
			if isToolError(result) {
				span.SetAttributes(attribute.Bool("mcp.tool.error", true))
			}
			return result, err
		}
	}
}

// loggingMiddleware logs tool calls and resource reads with a request id.
func loggingMiddleware(logger *slog.Logger) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if method != "tools/call" && method != "resources/read" {
				return next(ctx, method, req)
			}

			attrs := []any{"request_id", uuid.NewString(), "method", method}
			switch r := req.(type) {
			case *sdkmcp.CallToolRequest:
				attrs = append(attrs, "tool", r.Params.Name)
			case *sdkmcp.ReadResourceRequest:
				attrs = append(attrs, "uri", r.Params.URI)
			}

			start := time.Now()
			result, err := next(ctx, method, req)
			attrs = append(attrs, "duration", time.Since(start))

			switch {
			case err != nil:
				logger.Warn("mcp request failed", append(attrs, "error", err)...)
			case isToolError(result):
				logger.Info("mcp tool returned error", attrs...)
			default:
				logger.Debug("mcp request served", attrs...)
			}
			return result, err
		}
	}
}

func isToolError(result sdkmcp.Result) bool {
	callRes, ok := result.(*sdkmcp.CallToolResult)
	return ok && callRes != nil && callRes.IsError
}

func mcpSpanName(method string, req sdkmcp.Request) string {
	switch method {
	case "tools/call":
		if callReq, ok := req.(*sdkmcp.CallToolRequest); ok {
			name := strings.TrimSpace(callReq.Params.Name)
			if name != "" {
				return "mcp.tool." + strings.ReplaceAll(name, "/", ".")
			}
		}
		return "mcp.tool.call"
	case "resources/read":
		return "mcp.resource.read"
	default:
		return "mcp." + strings.ReplaceAll(method, "/", ".")
	}
}
