// Package membershipservice собирает основное HTTP-приложение ассоциации:
// хранилище, кеш, платёжный шлюз, очередь уведомлений и маршруты API.
package membershipservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/membership-service/internal/cache"
	"github.com/magabrotheeeer/membership-service/internal/config"
	"github.com/magabrotheeeer/membership-service/internal/lib/jwt"
	"github.com/magabrotheeeer/membership-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/membership-service/internal/migrations"
	"github.com/magabrotheeeer/membership-service/internal/models"
	"github.com/magabrotheeeer/membership-service/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/membership-service/internal/services/auth"
	membershipsvc "github.com/magabrotheeeer/membership-service/internal/services/membership"
	notificationservice "github.com/magabrotheeeer/membership-service/internal/services/notification"
	paymentservice "github.com/magabrotheeeer/membership-service/internal/services/payment"
	"github.com/magabrotheeeer/membership-service/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// fanoutPublisher отправляет события рассылки в обменник уведомлений.
type fanoutPublisher struct {
	ch *amqp.Channel
}

func (p *fanoutPublisher) Publish(event models.NotificationEvent) error {
	return rabbitmq.PublishMessage(p.ch, rabbitmq.Exchange, rabbitmq.RoutingKeyFanout, event)
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	providerClient := paymentprovider.NewClient(cfg.Lenco.APIURL, cfg.Lenco.SecretKey)

	authService := authservice.NewAuthService(db, jwtMaker)
	membershipService := membershipsvc.New(db, cacheRedis, logger)
	paymentService := paymentservice.New(db, providerClient, membershipService, cfg.Lenco.PublicKey, logger)
	notificationService := notificationservice.New(db, &fanoutPublisher{ch: ch}, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger,
		authService, membershipService, paymentService, notificationService,
		cfg.Lenco.WebhookSecret)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", closeErr))
		}
		if closeErr := a.conn.Close(); closeErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
