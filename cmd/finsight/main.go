// Command finsight is a terminal dashboard for FinSIGHT personal
// finances.
//
// Usage:
//
//	finsight [flags]
//
// With no backend configured the dashboard runs against a built-in demo
// backend on a loopback port. Set GEMINI_API_KEY to let the demo answer
// chat messages with Gemini instead of scripted replies.
//
// Flags:
//
//	-base-url string   Backend base URL (default: FINSIGHT_BASE_URL, or the built-in demo)
//	-demo              Run against the built-in demo backend even when a base URL is set
//	-redis-url string  Redis URL for demo chat history (default: REDIS_URL, or in-memory)
//	-log string        Write debug logs to this file (stdout belongs to the TUI)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/finsight/finsight"
	"github.com/finsight/finsight/api"
	bt "github.com/finsight/finsight/bubbletea"
	"github.com/finsight/finsight/demo"
	"github.com/finsight/finsight/demo/history"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "finsight: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		baseURL  = flag.String("base-url", "", "Backend base URL (default: FINSIGHT_BASE_URL, or the built-in demo)")
		demoMode = flag.Bool("demo", false, "Run against the built-in demo backend even when a base URL is set")
		redisURL = flag.String("redis-url", "", "Redis URL for demo chat history (default: REDIS_URL, or in-memory)")
		logPath  = flag.String("log", "", "Write debug logs to this file")
	)
	flag.Parse()

	// An .env file is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "finsight: load .env: %v\n", err)
	}

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := newLogger(*logPath)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	target := *baseURL
	if target == "" {
		target = os.Getenv("FINSIGHT_BASE_URL")
	}

	if *demoMode || target == "" {
		demoURL, shutdown, err := startDemo(ctx, *redisURL, logger)
		if err != nil {
			return err
		}
		defer shutdown()
		target = demoURL
	}

	client := api.New(api.WithBaseURL(target))
	m := bt.New(client, client, finsight.DefaultTheme(),
		bt.WithConversationOptions(finsight.WithLogger(logger)))

	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

// newLogger builds a file logger. The terminal is owned by the TUI, so
// without -log everything is discarded.
func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}

// startDemo serves the built-in backend on a loopback port and returns
// its base URL along with a shutdown func.
func startDemo(ctx context.Context, redisURL string, logger *zap.Logger) (string, func(), error) {
	store, err := newHistoryStore(redisURL)
	if err != nil {
		return "", nil, err
	}

	opts := []demo.Option{demo.WithLogger(logger), demo.WithStore(store)}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		responder, err := demo.NewGeminiResponder(ctx, key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "finsight: gemini unavailable, using scripted replies: %v\n", err)
		} else {
			opts = append(opts, demo.WithResponder(responder))
		}
	}
	srv := demo.New(opts...)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("demo listener: %w", err)
	}

	hs := &http.Server{Handler: srv}
	go func() {
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("demo server stopped", zap.Error(err))
		}
	}()

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
		_ = srv.Close()
	}
	return "http://" + ln.Addr().String(), shutdown, nil
}

// newHistoryStore picks the demo session store. Redis keeps transcripts
// across restarts; the default is in-memory.
func newHistoryStore(redisURL string) (history.Store, error) {
	if redisURL == "" {
		redisURL = os.Getenv("REDIS_URL")
	}
	if redisURL == "" {
		store, err := history.NewStore(history.StoreTypeMemory)
		if err != nil {
			return nil, fmt.Errorf("history store: %w", err)
		}
		return store, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	store, err := history.NewStore(history.StoreTypeRedis,
		history.WithRedisClient(redis.NewClient(opt)))
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}
	return store, nil
}
