package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rannerhq/ranner/api"
	"github.com/rannerhq/ranner/config"
	"github.com/rannerhq/ranner/internal/amadeus"
	"github.com/rannerhq/ranner/internal/bootstrap"
	"github.com/rannerhq/ranner/internal/cache"
	"github.com/rannerhq/ranner/internal/kafka"
	"github.com/rannerhq/ranner/internal/logger"
	"github.com/rannerhq/ranner/internal/repository"
	"github.com/rannerhq/ranner/internal/service/flights"
	"github.com/rannerhq/ranner/internal/service/offers"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	callTimeout := time.Duration(cfg.Amadeus.TimeoutSeconds) * time.Second
	provider := amadeus.NewClient(&http.Client{}, cfg.Amadeus, appLog)

	searchCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Offers.SearchCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	flightService := flights.NewFlightService(flightRepo, producer, cfg.Kafka.FlightsTopic, appLog)
	offerService := offers.NewOfferService(provider, searchCache, callTimeout, appLog)

	flightHandler := api.NewFlightHandler(flightService)
	offerHandler := api.NewOfferHandler(offerService)

	if err := bootstrap.Run(ctx, cfg, appLog, flightHandler, offerHandler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
