package app

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orders-service/internal/config"
	"orders-service/internal/delivery/nats/handler"
	"orders-service/internal/domain/repositories"
	"orders-service/internal/infrastructure/logger"
	"orders-service/internal/infrastructure/memory"
	"orders-service/internal/infrastructure/mongodb"
	"orders-service/internal/infrastructure/natsclient"
	"orders-service/internal/usecase"

	"github.com/nats-io/nats.go"
)

type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return New(cfg).Run()
}

func New(cfg *config.Config) *App {
	return &App{
		cfg:    cfg,
		logger: logger.New(),
	}
}

func (a *App) Run() error {
	a.logger.Info("starting orders-service")

	orderRepo, closeRepo, err := a.initStore()
	if err != nil {
		return err
	}
	defer closeRepo()

	nc, err := connectToNATSWithRetry(a.cfg.NATS.URL, a.logger, 3, 2*time.Second)
	if err != nil {
		return err
	}
	defer nc.Close()

	products := natsclient.NewProductValidatorClient(nc, a.cfg.Service.RequestTimeout)
	payments := natsclient.NewPaymentSessionClient(nc, a.cfg.Service.RequestTimeout)

	orderUseCase := usecase.NewOrderUseCase(
		orderRepo,
		products,
		payments,
		a.cfg.Service.DefaultCurrency,
		a.logger,
	)

	// Create performs two upstream calls, each bounded by RequestTimeout,
	// plus the store write.
	handlerTimeout := 3 * a.cfg.Service.RequestTimeout

	orderHandler := handler.NewOrderHandler(orderUseCase, handlerTimeout, a.logger)
	subs, err := orderHandler.Subscribe(nc, a.cfg.NATS.QueueGroup)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	a.logger.Info("listening for order messages",
		"subjects", len(subs),
		"queue", a.cfg.NATS.QueueGroup)

	return a.waitForShutdown(nc)
}

func (a *App) initStore() (repositories.OrderRepository, func(), error) {
	if a.cfg.Mongo.URI == "" {
		a.logger.Warn("MONGO_URI not set, using in-memory order store")
		return memory.NewOrderRepositoryMemory(), func() {}, nil
	}

	a.logger.Info("connecting to MongoDB", "db", a.cfg.Mongo.DB)

	orderRepo, err := mongodb.NewOrderRepositoryMongo(a.cfg.Mongo.URI, a.cfg.Mongo.DB, a.logger)
	if err != nil {
		a.logger.Error("failed to connect to MongoDB", "error", err)
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	a.logger.Info("connected to MongoDB successfully")

	closeRepo := func() {
		if err := orderRepo.Close(); err != nil {
			a.logger.Error("failed to close MongoDB connection", "error", err)
		}
	}
	return orderRepo, closeRepo, nil
}

func (a *App) waitForShutdown(nc *nats.Conn) error {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	a.logger.Info("received shutdown signal, draining subscriptions", "signal", sig.String())

	drained := make(chan struct{})
	nc.SetClosedHandler(func(*nats.Conn) {
		close(drained)
	})

	if err := nc.Drain(); err != nil {
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}

	select {
	case <-drained:
		a.logger.Info("graceful shutdown completed")
	case <-time.After(10 * time.Second):
		a.logger.Warn("drain timeout, forcing close")
		nc.Close()
	}

	return nil
}

func connectToNATSWithRetry(url string, logger *slog.Logger, maxRetries int, delay time.Duration) (*nats.Conn, error) {
	var err error
	for i := 0; i < maxRetries; i++ {
		var nc *nats.Conn
		nc, err = nats.Connect(url,
			nats.Name("Orders Service"),
			nats.MaxReconnects(5),
			nats.ReconnectWait(2*time.Second),
			nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
				logger.Warn("NATS disconnected", "error", err)
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
			}),
		)
		if err == nil {
			logger.Info("connected to NATS", "url", url)
			return nc, nil
		}

		logger.Warn("failed to connect to NATS, retrying",
			"attempt", i+1,
			"max_retries", maxRetries,
			"error", err)

		if i < maxRetries-1 {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("failed to connect to NATS after %d attempts: %w", maxRetries, err)
}
