package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/auricare/calendar-gateway/internal/api"
	"github.com/auricare/calendar-gateway/internal/config"
	"github.com/auricare/calendar-gateway/internal/panel"
	"github.com/auricare/calendar-gateway/internal/printsettings"
	"github.com/auricare/calendar-gateway/internal/redisx"
	"github.com/auricare/calendar-gateway/internal/staff"
	"github.com/auricare/calendar-gateway/internal/upstream"

	"github.com/redis/go-redis/v9"
)

const version = "0.3.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("calendar-gateway starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s upstream=%s", cfg.Env, cfg.HTTPPort, cfg.UpstreamBaseURL)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis is optional: without it the gateway loses the staff cache and
	// print settings but the calendar keeps working.
	var rdb *redis.Client
	var kv *redisx.KV
	rdb, err = redisx.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Printf("redis unavailable, running without cache and print settings: %v", err)
		rdb = nil
	} else {
		kv = redisx.NewKV(rdb)
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		}()
		log.Println("connected to Redis")
	}

	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, cfg.RefreshPageSize)

	var cache staff.Cache
	if kv != nil {
		cache = kv
	}
	directory := staff.NewDirectory(client, cache, cfg.StaffCacheTTL)

	// The panel resolves staff names from a directory snapshot taken at
	// startup; the per-request grid path takes fresh snapshots itself.
	lookup, err := directory.Snapshot(rootCtx)
	if err != nil {
		log.Printf("staff directory unavailable at startup, names resolve lazily: %v", err)
		lookup = staff.MapLookup{}
	}

	rc := api.RouterConfig{
		Lister:   client,
		Panel:    panel.NewService(client, lookup, time.Now),
		Staff:    directory,
		Upstream: client,
		Redis:    rdb,
		Cfg:      cfg,
		Version:  version,
	}
	if kv != nil {
		rc.Prints = printsettings.NewStore(kv)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.NewRouter(rc),
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("shutting down calendar-gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
