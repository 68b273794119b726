package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/auricare/calendar-gateway/internal/clinicstub"
	"github.com/auricare/calendar-gateway/internal/config"
	"github.com/auricare/calendar-gateway/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("clinic-stub starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN is required for the clinic stub")
	}

	port := cfg.HTTPPort
	if port == "8080" {
		// Leave the default port for the gateway.
		port = "9090"
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pool.Close()
	log.Println("connected to Postgres")

	if err := clinicstub.EnsureSchema(rootCtx, pool); err != nil {
		log.Fatalf("schema error: %v", err)
	}

	repo := clinicstub.NewPgRepository(pool)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: clinicstub.NewHandler(repo).Router(),
	}

	go func() {
		log.Printf("clinic stub listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("shutting down clinic-stub")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
