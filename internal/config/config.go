package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BitbankAPIBase string
	FetchRetries   int

	TickersJPYCacheTTL time.Duration
	// TickersCacheTTL is kept apart from the JPY window and is not applied
	// to get_tickers.
	TickersCacheTTL time.Duration
	CacheBackend    string
	RedisURL        string
	CacheWarmSecs   int

	MCPTransport          string
	MCPHTTPEnabled        bool
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int

	TelegramBotToken string
	HTTPPort         int

	SSHBind        string
	SSHPort        int
	SSHHostKeyPath string

	OTLPEndpoint string
}

func Load() *Config {
	cfg := &Config{
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OTLPEndpoint:     strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	cfg.BitbankAPIBase = strings.TrimRight(strings.TrimSpace(os.Getenv("BITBANK_API_BASE")), "/")
	if cfg.BitbankAPIBase == "" {
		cfg.BitbankAPIBase = "https://public.bitbank.cc"
	}

	cfg.FetchRetries = 2
	if v := strings.TrimSpace(os.Getenv("FETCH_RETRIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 10 {
			cfg.FetchRetries = n
		} else {
			log.Printf("Warning: invalid FETCH_RETRIES=%q, using %d", v, cfg.FetchRetries)
		}
	}

	cfg.TickersJPYCacheTTL = envMillis("TICKERS_JPY_CACHE_TTL_MS", 10*time.Second)
	cfg.TickersCacheTTL = envMillis("TICKERS_CACHE_TTL_MS", 3*time.Second)

	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "memory"
	}
	if cfg.CacheBackend != "memory" && cfg.CacheBackend != "redis" {
		log.Printf("Warning: unsupported CACHE_BACKEND=%q, defaulting to memory", cfg.CacheBackend)
		cfg.CacheBackend = "memory"
	}
	if cfg.CacheBackend == "redis" && cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.CacheWarmSecs = 0
	if v := strings.TrimSpace(os.Getenv("CACHE_WARM_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CacheWarmSecs = n
		}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("MCP_HTTP_ENABLED")), "true")

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = envPositiveInt("MCP_HTTP_PORT", 8090)
	cfg.MCPRequestTimeoutSecs = envPositiveInt("MCP_REQUEST_TIMEOUT_SECS", 30)
	cfg.MCPRateLimitPerMin = envPositiveInt("MCP_RATE_LIMIT_PER_MIN", 60)

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, telegram bot will be disabled")
	}
	cfg.HTTPPort = envPositiveInt("HTTP_PORT", 8080)

	cfg.SSHBind = strings.TrimSpace(os.Getenv("SSH_BIND"))
	if cfg.SSHBind == "" {
		cfg.SSHBind = "127.0.0.1"
	}
	cfg.SSHPort = envPositiveInt("SSH_PORT", 23234)
	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/bitbank_ed25519"
	}

	return cfg
}

func envPositiveInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envMillis(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return time.Duration(n) * time.Millisecond
}
