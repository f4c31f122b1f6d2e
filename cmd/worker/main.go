package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Domenick1991/skybooker/config"
	"github.com/Domenick1991/skybooker/internal/catalog"
	"github.com/Domenick1991/skybooker/internal/email"
	"github.com/Domenick1991/skybooker/internal/kafka"
	"github.com/Domenick1991/skybooker/internal/logger"
	"github.com/Domenick1991/skybooker/internal/repository"
	"github.com/Domenick1991/skybooker/internal/service/booking"
	"github.com/Domenick1991/skybooker/internal/service/fares"
	"github.com/Domenick1991/skybooker/internal/service/pricing"
)

const publishAttempts = 3

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New("skybooker-worker", cfg.Log.Level)
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

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
	defer func() { _ = producer.Close() }()

	// The sweep only touches stored bookings, so pricing runs on the built-in table.
	lookup := fares.NewLookup(catalog.Default())
	assembler := booking.NewAssembler(lookup, booking.NewIDGenerator(cfg.Booking.IDPrefix),
		time.Duration(cfg.Booking.ExpiryHours)*time.Hour)
	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		pricing.NewPricer(lookup, pricing.NewAggregator(cfg.Pricing.Currency, logg)),
		assembler,
		producer.WithRetries(publishAttempts),
		cfg.Kafka.BookingTopic,
		logg,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logg)
	defer func() { _ = consumer.Close() }()

	sender := email.NewSender(logg)

	go func() {
		if err := consumer.Consume(ctx, sender.Send); err != nil {
			logg.Error("consumer stopped", zap.Error(err))
			stop()
		}
	}()

	sweep := time.NewTicker(cfg.Worker.ExpirySweepInterval())
	defer sweep.Stop()

	logg.Info("worker started",
		zap.String("topic", cfg.Kafka.NotificationsTopic),
		zap.Duration("expiry_sweep", cfg.Worker.ExpirySweepInterval()))
	for {
		select {
		case <-sweep.C:
			expired, err := bookingService.ExpireUnpaidBookings(ctx)
			if err != nil {
				logg.Error("expire bookings", zap.Error(err))
				continue
			}
			if len(expired) > 0 {
				logg.Info("expired unpaid bookings", zap.Int("count", len(expired)))
			}
		case <-ctx.Done():
			logg.Info("shutting down worker")
			return
		}
	}
}
