package main

import (
	"context"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackbeanteam/lease-analysis-back/internal/blob"
	appconfig "github.com/blackbeanteam/lease-analysis-back/internal/config"
	"github.com/blackbeanteam/lease-analysis-back/internal/jobstore"
	"github.com/blackbeanteam/lease-analysis-back/internal/llm"
	"github.com/blackbeanteam/lease-analysis-back/internal/pipeline"
	"github.com/blackbeanteam/lease-analysis-back/internal/queue"
	"github.com/blackbeanteam/lease-analysis-back/internal/redis"
	"github.com/blackbeanteam/lease-analysis-back/internal/server"
	httpapi "github.com/blackbeanteam/lease-analysis-back/internal/transport/http"
	"github.com/blackbeanteam/lease-analysis-back/internal/trigger"
	"github.com/blackbeanteam/lease-analysis-back/internal/worker"
)

func main() {
	cfg := appconfig.Load()
	slog.Info("starting lease analysis backend", "addr", cfg.HTTPAddr, "blob_mode", cfg.BlobMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisService, err := redis.New(cfg.RedisURL)
	if err != nil {
		slog.Error("failed to connect to Redis", "err", err)
		os.Exit(1)
	}
	defer redisService.Close()

	blobSource, err := blob.NewSource(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize blob source", "err", err)
		os.Exit(1)
	}

	store := jobstore.NewRedisStore(redisService.Client(), cfg.JobTTL)
	pending := queue.NewRedisQueue(redisService.Client())

	llmClient := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTimeout)
	analyzer := pipeline.New(llmClient)
	w := worker.New(store, pending, blobSource, analyzer, cfg.TickBatch)

	handlers := &httpapi.Handlers{
		Store:   store,
		Queue:   pending,
		Worker:  w,
		Trigger: trigger.New(cfg.TriggerTimeout, cfg.TriggerBaseURL),
		Redis:   redisService,
		Config:  cfg,
	}
	r := server.NewRouter(handlers)

	srv := &nethttp.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	slog.Info("shutting down")

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
	cancel()
}
