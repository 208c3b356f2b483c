package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"bitbank-mcp/internal/config"
	"bitbank-mcp/internal/service"
	"bitbank-mcp/internal/tui"

	"github.com/charmbracelet/ssh"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainStartsAndStopsSSHServer(t *testing.T) {
	restore := stubSSHDeps(t)
	defer restore()

	started := make(chan struct{})
	var gotAddr string
	startSSHServerFunc = func(srv *ssh.Server) error {
		gotAddr = srv.Addr
		close(started)
		return ssh.ErrServerClosed
	}
	waitForSignalFunc = func(<-chan os.Signal) { <-started }

	shutdown := false
	shutdownSSHServerFn = func(*ssh.Server, context.Context) error {
		shutdown = true
		return nil
	}

	main()

	if gotAddr != "127.0.0.1:23234" {
		t.Fatalf("unexpected listen address %q", gotAddr)
	}
	if !shutdown {
		t.Fatal("expected ssh server shutdown")
	}
}

func TestTeaHandlerBuildsDashboard(t *testing.T) {
	h := teaHandler(nil)
	if h == nil {
		t.Fatal("expected handler")
	}
	m := tui.NewAppModel(tui.Services{Username: "alice"})
	m.SetSize(80, 24)
	if m.ActiveTab() != tui.TabDashboard {
		t.Fatalf("expected dashboard tab first, got %v", m.ActiveTab())
	}
}

func stubSSHDeps(t *testing.T) func() {
	t.Helper()

	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitTracer := initTracerFunc
	origNewMarket := newMarketServiceFunc
	origStart := startSSHServerFunc
	origShutdown := shutdownSSHServerFn
	origNotify := setupSignalNotify
	origWait := waitForSignalFunc

	keyPath := filepath.Join(t.TempDir(), "host_ed25519")
	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			BitbankAPIBase: "http://127.0.0.1:1",
			CacheBackend:   "memory",
			SSHBind:        "127.0.0.1",
			SSHPort:        23234,
			SSHHostKeyPath: keyPath,
		}
	}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newMarketServiceFunc = func(context.Context, *config.Config, trace.Tracer, *slog.Logger) (*service.MarketService, func()) {
		return nil, func() {}
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initTracerFunc = origInitTracer
		newMarketServiceFunc = origNewMarket
		startSSHServerFunc = origStart
		shutdownSSHServerFn = origShutdown
		setupSignalNotify = origNotify
		waitForSignalFunc = origWait
	}
}
