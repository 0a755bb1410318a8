package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-service/config"
	"pos-service/internal/api"
	"pos-service/internal/broker"
	"pos-service/internal/realtime"
	"pos-service/internal/redisclient"
	"pos-service/internal/service"
	"pos-service/internal/store"
	"pos-service/internal/util"
	"pos-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting POS service")

	tp, err := util.InitTracer("pos-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicChanges)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	auditPublisher := broker.NewAuditPublisher(producer)

	// One hub per process; every command handler and the ws acceptor share it.
	hub := realtime.NewHub(cfg.Realtime.QueueSize)

	catalogService := service.NewCatalogService(db, hub, auditPublisher, redisClient)
	orderService := service.NewOrderService(db, redisClient, hub, auditPublisher)
	stationService := service.NewStationService(db, hub, auditPublisher, redisClient)

	// Seed the Redis order counters so numbering continues after restarts.
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if events, err := catalogService.ListEvents(seedCtx); err != nil {
		log.Printf("Failed to list events for counter seeding: %v", err)
	} else {
		for _, event := range events {
			next, err := db.NextOrderNumber(seedCtx, event.ID)
			if err != nil {
				log.Printf("Failed to read order number for event %s: %v", event.ID, err)
				continue
			}
			if err := redisClient.SeedOrderNumber(seedCtx, event.ID, next-1); err != nil {
				log.Printf("Failed to seed order counter for event %s: %v", event.ID, err)
			}
		}
	}
	seedCancel()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	archiveConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicChanges, cfg.Kafka.ConsumerGroup)
	archiveWorker := worker.NewArchiveWorker(archiveConsumer, db)
	go func() {
		if err := archiveWorker.Start(workerCtx); err != nil {
			log.Printf("Archive worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(hub, orderService, stationService, catalogService, redisClient)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	archiveWorker.Stop()

	log.Println("Server exited")
}
