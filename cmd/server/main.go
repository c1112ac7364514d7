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

	"github.com/gin-gonic/gin"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/config"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/api"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/broker"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/catalog"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/channel"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/gateway"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/ledger"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/service"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/storage"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/util"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/worker"
)

const httpClientTimeout = 15 * time.Second

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting bot-whatsapp-impressao")

	if cfg.Observ.JaegerEndpoint != "" {
		tp, err := util.InitTracer("bot-whatsapp-impressao", cfg.Observ.JaegerEndpoint)
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
	}

	var orderLedger ledger.Ledger
	switch cfg.Ledger.Backend {
	case "redis":
		redisLedger, err := ledger.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Ledger.TTL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisLedger.Close()
		log.Println("Redis ledger connected")
		orderLedger = redisLedger
	default:
		orderLedger = ledger.NewMemory()
	}

	var eventPublisher broker.Publisher = broker.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrders)
		defer producer.Close()
		log.Println("Kafka producer initialized")
		eventPublisher = broker.NewEventPublisher(producer)
	}

	paymentClient := gateway.NewClient(
		cfg.Payment.APIBaseURL, cfg.Payment.AccessToken, cfg.Payment.PublicHostname, httpClientTimeout)
	sender := channel.NewSender(
		cfg.Channel.APIBaseURL, cfg.Channel.AccountSID, cfg.Channel.AuthToken, cfg.Channel.FromNumber, httpClientTimeout)
	driveClient := storage.NewClient(
		cfg.Storage.UploadBaseURL, cfg.Storage.AccessToken, cfg.Storage.ParentFolderID, httpClientTimeout)

	orchestrator := service.NewOrderOrchestrator(
		catalog.Default(), paymentClient, orderLedger, driveClient, eventPublisher)
	reconciler := service.NewWebhookReconciler(
		paymentClient, orderLedger, sender, eventPublisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// Redis expires pending keys itself; only the memory backend needs the
	// sweeper, and a zero TTL means keep entries until paid.
	if evictable, ok := orderLedger.(worker.Evictable); ok && cfg.Ledger.TTL > 0 {
		expiryWorker := worker.NewExpiryWorker(evictable, cfg.Ledger.TTL, cfg.Ledger.SweepInterval)
		go expiryWorker.Start(workerCtx)
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(orchestrator, reconciler, cfg.Payment.WebhookSecret)
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

	log.Println("Server exited")
}
