package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SachyamKarki/Karki-Scrapper/api/rest"
	"github.com/SachyamKarki/Karki-Scrapper/api/ws"
	"github.com/SachyamKarki/Karki-Scrapper/config"
	"github.com/SachyamKarki/Karki-Scrapper/internal/ai"
	"github.com/SachyamKarki/Karki-Scrapper/internal/auth"
	"github.com/SachyamKarki/Karki-Scrapper/internal/mongo"
	"github.com/SachyamKarki/Karki-Scrapper/internal/mq"
	"github.com/SachyamKarki/Karki-Scrapper/internal/nats"
	"github.com/SachyamKarki/Karki-Scrapper/internal/redis"
	"github.com/SachyamKarki/Karki-Scrapper/internal/websocket"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
	"github.com/SachyamKarki/Karki-Scrapper/service"
)

// App holds every long-lived dependency of the server binary.
type App struct {
	cfg         config.Config
	logger      logger.Logger
	natsClient  *nats.NATSClient
	redisClient *redis.RedisClient
	mongoClient *mongo.Client
	mqClient    *mq.Client
	hub         *websocket.Hub
	httpServer  *http.Server
	rootCtx     context.Context
	cancel      context.CancelFunc
}

// NewApp connects the backing services and wires the relay and CRM layers
// together.
func NewApp(cfg config.Config) (*App, error) {
	baseLogger := logger.NewLogger(cfg.LogLevel, cfg.LogFile)
	rootCtx := logger.NewContext(context.Background(), baseLogger)
	rootCtx, rootCancel := context.WithCancel(rootCtx)

	log := logger.FromContext(rootCtx).WithModule("app")
	log.Infof("Initializing application components...")

	natsClient, err := nats.NewNATSClient(cfg.NATSURL)
	if err != nil {
		rootCancel()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	redisClient, err := redis.NewRedisClient(rootCtx, cfg.RedisURL)
	if err != nil {
		rootCancel()
		natsClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	mongoClient, err := mongo.NewClient(rootCtx, cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		rootCancel()
		natsClient.Close()
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	mqClient, err := mq.NewClient(cfg.AMQPURL)
	if err != nil {
		rootCancel()
		natsClient.Close()
		redisClient.Close()
		mongoClient.Close(context.Background())
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	chatModel, err := ai.NewGeminiChatModel(cfg.Gemini)
	if err != nil {
		rootCancel()
		natsClient.Close()
		redisClient.Close()
		mongoClient.Close(context.Background())
		mqClient.Close()
		return nil, err
	}
	outreach, err := service.NewOutreachService(rootCtx, chatModel, baseLogger)
	if err != nil {
		rootCancel()
		natsClient.Close()
		redisClient.Close()
		mongoClient.Close(context.Background())
		mqClient.Close()
		return nil, err
	}

	sessions := auth.NewSessionManager(cfg.Session)
	userService := service.NewUserService(mongoClient.Users(), baseLogger)
	chatService := service.NewChatService(mongoClient.Messages(), mongoClient.Users(), natsClient, redisClient, baseLogger)
	leadService := service.NewLeadService(mongoClient.Leads(), mqClient, baseLogger)

	hub := websocket.NewHub(natsClient, baseLogger)

	api := rest.NewAPI(
		sessions,
		userService,
		mongoClient.Users(),
		chatService,
		leadService,
		mongoClient.Leads(),
		outreach,
		mongoClient.SentEmails(),
		mongoClient,
		baseLogger,
	)

	router := api.Router()
	router.Get("/ws", ws.HandleWebSocket(hub, sessions, mongoClient.Users(), chatService, redisClient, baseLogger.WithModule("ws")))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	app := &App{
		cfg:         cfg,
		logger:      log,
		natsClient:  natsClient,
		redisClient: redisClient,
		mongoClient: mongoClient,
		mqClient:    mqClient,
		hub:         hub,
		httpServer:  httpServer,
		rootCtx:     rootCtx,
		cancel:      rootCancel,
	}

	log.Infof("Application initialized successfully")
	return app, nil
}

// Start runs the hub and HTTP server, then blocks until a shutdown signal.
func (a *App) Start() error {
	log := a.logger.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
	})

	go a.hub.Run()

	log.Infof("Starting application server")
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Warnf("Received shutdown signal: %s", sig.String())

	return a.Stop()
}

// Stop gracefully shuts down the server and closes all connections.
func (a *App) Stop() error {
	a.logger.Infof("Initiating graceful shutdown")

	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Errorf("HTTP server shutdown error: %v", err)
	}

	a.hub.Close()

	a.logger.Infof("Closing NATS connection")
	a.natsClient.Close()

	a.logger.Infof("Closing Redis connection")
	if err := a.redisClient.Close(); err != nil {
		a.logger.Errorf("Redis close error: %v", err)
	}

	a.logger.Infof("Closing RabbitMQ connection")
	a.mqClient.Close()

	a.logger.Infof("Closing MongoDB connection")
	if err := a.mongoClient.Close(ctx); err != nil {
		a.logger.Errorf("MongoDB close error: %v", err)
	}

	a.logger.Infof("Shutdown completed successfully")
	return nil
}
