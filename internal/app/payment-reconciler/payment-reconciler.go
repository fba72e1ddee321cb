// Package paymentreconciler собирает фоновый сервис сверки платежей:
// хранилище, кеш, платёжный шлюз и цикл периодической проверки
// зависших pending-платежей.
package paymentreconciler

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/membership-service/internal/cache"
	"github.com/magabrotheeeer/membership-service/internal/config"
	"github.com/magabrotheeeer/membership-service/internal/paymentprovider"
	membershipsvc "github.com/magabrotheeeer/membership-service/internal/services/membership"
	paymentservice "github.com/magabrotheeeer/membership-service/internal/services/payment"
	reconcilerservice "github.com/magabrotheeeer/membership-service/internal/services/reconciler"
	"github.com/magabrotheeeer/membership-service/internal/storage/repository"
)

// App представляет приложение сверки платежей.
type App struct {
	reconcilerService *reconcilerservice.Service
	db                *repository.Storage
	logger            *slog.Logger
}

// New создает новый экземпляр приложения сверки.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	providerClient := paymentprovider.NewClient(cfg.Lenco.APIURL, cfg.Lenco.SecretKey)
	membershipService := membershipsvc.New(db, cacheRedis, logger)
	// Сверка идёт без участия пользователя, события в очередь не публикуются.
	paymentService := paymentservice.New(db, providerClient, membershipService, cfg.Lenco.PublicKey, logger)

	reconcilerService := reconcilerservice.New(db, paymentService,
		cfg.Reconciler.SweepInterval, cfg.Reconciler.PendingMaxAge, logger)

	return &App{
		reconcilerService: reconcilerService,
		db:                db,
		logger:            logger,
	}, nil
}

// Run запускает цикл сверки до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.reconcilerService.Run(ctx)

	a.logger.Info("shutting down payment reconciler")
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", slog.Any("err", err))
	}
	return nil
}
