// Package provider talks to the bitbank public REST API.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bitbank-mcp/internal/domain"
	"bitbank-mcp/internal/fetch"
	"bitbank-mcp/internal/normalize"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultBaseURL = "https://public.bitbank.cc"

// Per-endpoint attempt timeouts, sized by expected payload.
const (
	tickerTimeout       = 5 * time.Second
	tickersTimeout      = 5 * time.Second
	candlestickTimeout  = 8 * time.Second
	depthTimeout        = 3 * time.Second
	transactionsTimeout = 4 * time.Second
)

// JSONGetter is satisfied by *fetch.Fetcher.
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, opts fetch.Options, out any) error
}

type ProviderConfig struct {
	BaseURL string
	Retries int
}

type BitbankProvider struct {
	tracer  trace.Tracer
	fetcher JSONGetter
	baseURL string
	retries int
}

func NewBitbankProvider(tracer trace.Tracer, fetcher JSONGetter, cfg ProviderConfig) *BitbankProvider {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = fetch.DefaultRetries
	}
	return &BitbankProvider{tracer: tracer, fetcher: fetcher, baseURL: base, retries: retries}
}

type envelope struct {
	Success json.RawMessage `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type errorData struct {
	Code int `json:"code"`
}

func (p *BitbankProvider) FetchTicker(ctx context.Context, pair string) (normalize.RawTicker, error) {
	var out normalize.RawTicker
	err := p.get(ctx, "ticker", pair, fmt.Sprintf("/%s/ticker", pair), tickerTimeout, &out)
	return out, err
}

func (p *BitbankProvider) FetchTickers(ctx context.Context) ([]normalize.RawTicker, error) {
	var out []normalize.RawTicker
	err := p.get(ctx, "tickers", "", "/tickers", tickersTimeout, &out)
	return out, err
}

func (p *BitbankProvider) FetchTickersJPY(ctx context.Context) ([]normalize.RawTicker, error) {
	var out []normalize.RawTicker
	err := p.get(ctx, "tickers_jpy", "", "/tickers_jpy", tickersTimeout, &out)
	return out, err
}

func (p *BitbankProvider) FetchCandles(ctx context.Context, pair, candleType, date string) (normalize.RawCandlestick, error) {
	var out normalize.RawCandlestick
	detail := fmt.Sprintf("%s/%s/%s", pair, candleType, date)
	err := p.get(ctx, "candlestick", detail, fmt.Sprintf("/%s/candlestick/%s/%s", pair, candleType, date), candlestickTimeout, &out)
	return out, err
}

func (p *BitbankProvider) FetchDepth(ctx context.Context, pair string) (normalize.RawDepth, error) {
	var out normalize.RawDepth
	err := p.get(ctx, "depth", pair, fmt.Sprintf("/%s/depth", pair), depthTimeout, &out)
	return out, err
}

// FetchTransactions returns the latest trades, or the trades of one
// YYYYMMDD day when date is set.
func (p *BitbankProvider) FetchTransactions(ctx context.Context, pair, date string) (normalize.RawTransactions, error) {
	path := fmt.Sprintf("/%s/transactions", pair)
	detail := pair
	if date != "" {
		path += "/" + date
		detail += "/" + date
	}
	var out normalize.RawTransactions
	err := p.get(ctx, "transactions", detail, path, transactionsTimeout, &out)
	return out, err
}

// get fetches path, checks the success envelope and decodes data into out.
// Envelope problems are UpstreamDataError and are not retried; only the
// transport is.
func (p *BitbankProvider) get(ctx context.Context, resource, detail, path string, timeout time.Duration, out any) error {
	ctx, span := p.tracer.Start(ctx, "bitbank-provider."+resource)
	defer span.End()
	span.SetAttributes(attribute.String("bitbank.resource", resource), attribute.String("bitbank.detail", detail))

	var body json.RawMessage
	if err := p.fetcher.GetJSON(ctx, p.baseURL+path, fetch.Options{Timeout: timeout, Retries: p.retries}, &body); err != nil {
		span.RecordError(err)
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &domain.UpstreamDataError{Resource: resource, Detail: detail, Reason: "malformed response envelope"}
	}
	if string(bytes.TrimSpace(env.Success)) != "1" {
		reason := "upstream reported failure"
		var ed errorData
		if json.Unmarshal(env.Data, &ed) == nil && ed.Code != 0 {
			reason = fmt.Sprintf("upstream reported failure (code %d)", ed.Code)
		}
		return &domain.UpstreamDataError{Resource: resource, Detail: detail, Reason: reason}
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return &domain.UpstreamDataError{Resource: resource, Detail: detail, Reason: "response has no data"}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.UpstreamDataError{Resource: resource, Detail: detail, Reason: "unexpected data shape"}
	}
	return nil
}
