package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/azstreams/dcrbuilder/sharecache"
)

func main() {
	_ = godotenv.Load()
	addr := getEnv("DCR_ADDR", ":8080")
	level := getEnv("DCR_LOG", "info")
	ttl := getEnv("DCR_CACHE_TTL", "30m")
	maxEntries := getEnv("DCR_CACHE_MAX_ENTRIES", "10000")

	if err := setupLogging(level); err != nil {
		slog.Error("could not init logging", "err", err)
		return
	}

	cacheTTL, err := time.ParseDuration(ttl)
	if err != nil {
		slog.Error("bad DCR_CACHE_TTL", "value", ttl, "err", err)
		return
	}
	cacheMax, err := strconv.Atoi(maxEntries)
	if err != nil {
		slog.Error("bad DCR_CACHE_MAX_ENTRIES", "value", maxEntries, "err", err)
		return
	}

	cache := sharecache.New(sharecache.Config{TTL: cacheTTL, MaxEntries: cacheMax})
	s := newServer(cache)
	s.setupRoutes()

	srv := &http.Server{Addr: addr, Handler: s.router}

	term := make(chan os.Signal, 1)
	signal.Notify(term, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "err", err)
			term <- syscall.SIGTERM
		}
	}()

	slog.Info("listening", "addr", addr, "cacheTTL", cacheTTL, "cacheMaxEntries", cacheMax)
	<-term

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown", "err", err)
	}
}

func setupLogging(level string) error {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(level))
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
	return err
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
