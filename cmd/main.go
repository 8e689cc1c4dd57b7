// jobmate-board-service
//
// Job listing board: published listings filtered per profile, hidden and
// favorite preferences, owner listing management and paid publication.
// Exposes a REST API used by the Gateway and a gRPC BoardService:
//   - listings query        : filter published listings for a profile
//   - hide / favorite       : per-profile preference toggles (Redis)
//   - my-listings           : create, update, optimistic delete
//   - checkout confirm      : confirm payment, then publish the listing
//
// The published catalog is cached in memory and reloaded by cron.
// Publishes EVENT_LISTING_DELETED / EVENT_LISTING_PUBLISHED to Redis.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"jobmate/board-service/internal/board"
	"jobmate/board-service/internal/checkout"
	"jobmate/board-service/internal/config"
	"jobmate/board-service/internal/db"
	"jobmate/board-service/internal/grpcserver"
	"jobmate/board-service/internal/httpapi"
	"jobmate/board-service/internal/listing"
	"jobmate/board-service/internal/preference"
	"jobmate/board-service/internal/scheduler"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[board-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[board-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[board-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[board-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[board-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[board-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[board-service] Redis connected ✓")

	// ── Domain ───────────────────────────────────────────────────────────────
	repo := listing.NewRepository(pool, rdb)
	catalog := listing.NewCatalog(repo)
	svc := board.NewService(catalog, repo, repo, preference.NewRedisProfiles(rdb))
	pay := checkout.New(checkout.NewHTTPConfirmer(cfg.PaymentAPIURL, cfg.PaymentAPIKey), repo, cfg.PublicOrigin)

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(catalog, cfg.CatalogRefreshMinutes)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[board-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := httpapi.NewHandler(svc, repo, pay)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	go func() {
		log.Printf("[board-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[board-service] HTTP server error: %v", err)
		}
	}()

	// ── gRPC server ──────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatalf("[board-service] gRPC listen: %v", err)
	}
	gs := grpc.NewServer()
	hs := grpcserver.Register(gs, grpcserver.NewServer(svc))

	go func() {
		log.Printf("[board-service] gRPC listening on :%s", cfg.GRPCPort)
		if err := gs.Serve(lis); err != nil {
			log.Fatalf("[board-service] gRPC server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[board-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	hs.Shutdown()
	gs.GracefulStop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[board-service] Shutdown error: %v", err)
	}
	log.Println("[board-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "board-service",
		"version": version,
	})
}
