package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"todo-engine/internal/cache"
	"todo-engine/internal/config"
	"todo-engine/internal/controller"
	"todo-engine/internal/database"
	"todo-engine/internal/queue"
	"todo-engine/internal/remote"
	"todo-engine/internal/repository"
	"todo-engine/internal/routes"
	"todo-engine/internal/service"
	"todo-engine/internal/worker"
	"todo-engine/pkg/logger"
)

func main() {
	// Variables already set in the environment win over .env.
	_ = godotenv.Load()

	cfg := config.Get()
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Event journal is optional; without it /activity answers 503
	db := database.DB(ctx)
	if db != nil {
		if err := database.MigrateOrCreateSchema(ctx); err != nil {
			logger.Error(ctx, "Schema migration failed", "error", err)
			os.Exit(1)
		}
	}
	journal := repository.NewJournal(db)

	rdb := cache.Client(ctx)
	snapshot := cache.NewSnapshot(rdb, time.Duration(cfg.CacheTTL)*time.Second)

	// Pre-warm Kafka producer and ensure topic exists
	queue.EnsureTopic(ctx)
	publisher := queue.NewPublisher(queue.Producer(ctx))

	svc := service.New(remote.NewClient(cfg.RemoteBaseURL, cfg.RemoteUserID, cfg.RemoteBatchSize), snapshot, publisher)
	if err := svc.Load(ctx); err != nil {
		// Serve anyway; /ready stays 503 until POST /todos/reload succeeds.
		logger.Warn(ctx, "Initial load failed, serving empty collection")
	}

	// Consumes todo events, writes the journal, invalidates the snapshot
	w := &worker.Worker{Cache: snapshot}
	if db != nil {
		w.Journal = journal
	}
	go w.Run(ctx)

	h := &controller.Todos{
		Service: svc,
		Journal: journal,
		PerPage: cfg.ItemsPerPage,
		DB:      db,
		Redis:   rdb,
	}
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      routes.Router(h),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "Server shutdown error", "error", err)
	}
	if p := queue.Producer(shutdownCtx); p != nil {
		_ = p.Close()
	}
	if db != nil {
		_ = db.Close()
	}
	logger.Info(shutdownCtx, "Server stopped")
}
