package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/SachyamKarki/Karki-Scrapper/config"
	"github.com/SachyamKarki/Karki-Scrapper/internal/mongo"
	"github.com/SachyamKarki/Karki-Scrapper/internal/mq"
	"github.com/SachyamKarki/Karki-Scrapper/internal/nats"
	"github.com/SachyamKarki/Karki-Scrapper/internal/worker"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
)

var configPath = flag.String("config", "config.json", "service configuration file")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		*configPath = envPath
	}

	cfg := config.MustReadConfig(*configPath)
	log := logger.NewLogger(cfg.LogLevel, cfg.LogFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Close(context.Background())

	mqClient, err := mq.NewClient(cfg.AMQPURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqClient.Close()

	natsClient, err := nats.NewNATSClient(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}
	defer natsClient.Close()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	w := worker.NewScrapeWorker(mqClient, mongoClient.Leads(), natsClient, cfg.ScraperURL, log)
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("worker stopped: %v", err)
	}
}
