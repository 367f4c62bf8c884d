// Package app wires configuration, storage, gateways, services and workers
// into one process. The HTTP server and the operator CLI share it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/application/services"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/DanielPopoola/ficmart-escrow/internal/infrastructure/events"
	"github.com/DanielPopoola/ficmart-escrow/internal/infrastructure/gateway"
	"github.com/DanielPopoola/ficmart-escrow/internal/infrastructure/lock"
	"github.com/DanielPopoola/ficmart-escrow/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/ficmart-escrow/internal/worker"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	Clock  application.Clock

	DB       *postgres.DB
	Store    *postgres.Store
	Gateways *application.GatewayRegistry
	// Simulator is always registered, also when another gateway is the default.
	Simulator *gateway.Simulator

	Payments    *services.PaymentService
	Retries     *services.RetryService
	Escrows     *services.EscrowService
	Withdrawals *services.WithdrawalService
	Refunds     *services.RefundService

	Publisher application.EventPublisher
	Locker    application.Locker

	AutoRelease *worker.AutoReleaseWorker
	Expiration  *worker.ExpirationWorker
	Reconciler  *worker.Reconciler
	Relay       *worker.OutboxRelay

	closers []func()
}

// New connects to the database and builds every component. Close releases them.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
		Clock:  application.SystemClock{},
	}

	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)
	a.Store = postgres.NewStore(db)

	if err := a.buildServices(cfg, logger); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildDelivery(ctx, cfg, logger); err != nil {
		a.Close()
		return nil, err
	}
	a.buildWorkers(cfg, logger)

	return a, nil
}

func (a *App) buildServices(cfg *config.Config, logger *slog.Logger) error {
	scheduler := gateway.NewTimerScheduler()
	a.closers = append(a.closers, scheduler.Stop)

	simulator := gateway.NewSimulator(cfg.Gateway.Simulator, scheduler, logger.With("gateway", domain.GatewaySimulator))
	a.Simulator = simulator
	adapters := []application.Gateway{gateway.NewRetryGateway(simulator, cfg.Retry)}

	if cfg.Gateway.Midtrans.ServerKey != "" {
		midtrans := gateway.NewMidtrans(cfg.Gateway.Midtrans, cfg.Gateway.Timeout)
		adapters = append(adapters, gateway.NewRetryGateway(midtrans, cfg.Retry))
	}

	registry, err := application.NewGatewayRegistry(domain.GatewayName(cfg.Gateway.Default), adapters...)
	if err != nil {
		return fmt.Errorf("register gateways: %w", err)
	}
	a.Gateways = registry

	a.Escrows = services.NewEscrowService(a.Store, cfg.Escrow, a.Clock, logger)
	a.Payments = services.NewPaymentService(a.Store, registry, a.Escrows, cfg.Payment, a.Clock, logger)
	a.Retries = services.NewRetryService(a.Store, registry, cfg.Payment, a.Clock, logger)
	a.Withdrawals = services.NewWithdrawalService(a.Store, a.Clock, logger)
	a.Refunds = services.NewRefundService(a.Store, a.Clock, logger)

	simulator.SetCallbackSink(func(ctx context.Context, body []byte) error {
		_, err := a.Payments.HandleWebhook(ctx, body)
		return err
	})
	return nil
}

func (a *App) buildDelivery(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Kafka.Enabled {
		producer, err := events.NewSyncProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		publisher := events.NewKafkaPublisher(producer, cfg.Kafka.TopicPrefix, logger)
		a.closers = append(a.closers, func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close kafka producer", "error", err)
			}
		})
		a.Publisher = publisher
		logger.Info("publishing events to kafka", "brokers", cfg.Kafka.Brokers)
	} else {
		a.Publisher = events.NewLogPublisher(logger)
	}

	if cfg.Redis.Enabled {
		client, err := lock.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", "error", err)
			}
		})
		a.Locker = lock.NewRedisLocker(client)
		logger.Info("worker locks backed by redis", "addr", cfg.Redis.Addr)
	} else {
		a.Locker = lock.NoopLocker{}
	}
	return nil
}

func (a *App) buildWorkers(cfg *config.Config, logger *slog.Logger) {
	payments := a.Store.Payments()
	a.AutoRelease = worker.NewAutoReleaseWorker(a.Escrows, a.Locker, cfg.Escrow, cfg.Worker, logger)
	a.Expiration = worker.NewExpirationWorker(payments, a.Payments, a.Locker, a.Clock, cfg.Worker, logger)
	a.Reconciler = worker.NewReconciler(payments, a.Payments, a.Locker, a.Clock, cfg.Worker, logger)
	a.Relay = worker.NewOutboxRelay(a.Store, a.Publisher, a.Clock, cfg.Worker, logger)
}

// StartWorkers runs every background loop until ctx is cancelled.
func (a *App) StartWorkers(ctx context.Context) {
	go a.AutoRelease.Start(ctx)
	go a.Expiration.Start(ctx)
	go a.Reconciler.Start(ctx)
	go a.Relay.Start(ctx)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
