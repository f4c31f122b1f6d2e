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
	"go.uber.org/zap"

	"github.com/Domenick1991/skybooker/config"
	"github.com/Domenick1991/skybooker/internal/bootstrap"
	"github.com/Domenick1991/skybooker/internal/cache"
	"github.com/Domenick1991/skybooker/internal/catalog"
	"github.com/Domenick1991/skybooker/internal/kafka"
	"github.com/Domenick1991/skybooker/internal/logger"
	"github.com/Domenick1991/skybooker/internal/provider/amadeus"
	"github.com/Domenick1991/skybooker/internal/repository"
	"github.com/Domenick1991/skybooker/internal/service/booking"
	"github.com/Domenick1991/skybooker/internal/service/fares"
	"github.com/Domenick1991/skybooker/internal/service/flights"
	"github.com/Domenick1991/skybooker/internal/service/pricing"
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

	logg, err := logger.New("skybooker-api", cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	checks := map[string]bootstrap.HealthCheck{"postgres": pool.Ping}

	var client *amadeus.Client
	if cfg.Amadeus.ClientID != "" && cfg.Amadeus.ClientSecret != "" {
		httpClient := &http.Client{Timeout: time.Duration(cfg.Amadeus.SearchTimeoutSeconds) * time.Second}
		session := amadeus.NewSession(cfg.Amadeus.BaseURL, cfg.Amadeus.ClientID, cfg.Amadeus.ClientSecret, httpClient)
		client = amadeus.NewClient(cfg.Amadeus.BaseURL, session, logg,
			amadeus.WithHTTPClient(httpClient),
			amadeus.WithTimeouts(
				time.Duration(cfg.Amadeus.SearchTimeoutSeconds)*time.Second,
				time.Duration(cfg.Amadeus.CallTimeoutSeconds)*time.Second,
			),
			amadeus.WithMaxResults(cfg.Amadeus.MaxResults),
		)
	}

	source, err := fareCatalog(ctx, cfg, pool, client, logg)
	if err != nil {
		logg.Fatal("init fare catalog", zap.String("source", cfg.Fares.Source), zap.Error(err))
	}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Fares.CacheTTL())
		defer func() { _ = redisCache.Close() }()
		source = fares.NewCachedCatalog(source, redisCache, logg)
		checks["redis"] = redisCache.Ping
	}

	lookup := fares.NewLookup(source, fares.WithEconomyFallback(cfg.Pricing.FallbackToEconomy))
	aggregator := pricing.NewAggregator(cfg.Pricing.Currency, logg,
		pricing.WithMarkup(pricing.PercentMarkup(int64(cfg.Pricing.MarkupPercent))))
	pricer := pricing.NewPricer(lookup, aggregator)
	assembler := booking.NewAssembler(lookup, booking.NewIDGenerator(cfg.Booking.IDPrefix),
		time.Duration(cfg.Booking.ExpiryHours)*time.Hour)

	var producer booking.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewProducer(cfg.Kafka.Brokers, logg)
		defer func() { _ = p.Close() }()
		producer = p
	}

	bookingOpts := []booking.BookingServiceOption{booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic)}
	var provider flights.Provider
	if client != nil {
		provider = client
		bookingOpts = append(bookingOpts, booking.WithOrderProvider(client))
	}

	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		pricer,
		assembler,
		producer,
		cfg.Kafka.BookingTopic,
		logg,
		bookingOpts...,
	)
	flightService := flights.NewFlightService(provider, pricer, logg,
		flights.WithSearchHistory(repository.NewSearchHistoryRepository(pool)))

	router := bootstrap.NewRouter(cfg, logg, flightService, bookingService, checks)
	if err := bootstrap.Run(ctx, cfg, logg, router); err != nil {
		logg.Fatal("server error", zap.Error(err))
	}
}

// fareCatalog builds the flight source named by fares.source.
func fareCatalog(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, client *amadeus.Client, logg *zap.Logger) (fares.Catalog, error) {
	switch cfg.Fares.Source {
	case config.FareSourcePostgres:
		repo := repository.NewFlightRepository(pool)
		if cfg.Fares.CatalogFile != "" {
			seed, err := catalog.LoadFile(cfg.Fares.CatalogFile)
			if err != nil {
				return nil, err
			}
			if err := repo.Upsert(ctx, seed.Flights()); err != nil {
				return nil, err
			}
			logg.Info("seeded flight catalog", zap.Int("flights", seed.Len()))
		}
		return repo, nil
	case config.FareSourceAmadeus:
		return fares.NewProviderCatalog(client), nil
	default:
		if cfg.Fares.CatalogFile != "" {
			return catalog.LoadFile(cfg.Fares.CatalogFile)
		}
		return catalog.Default(), nil
	}
}
