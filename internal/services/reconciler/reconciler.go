// Package reconciler реализует фоновую сверку зависших pending-платежей.
// Вебхуки теряются; сверка периодически опрашивает шлюз по старым pending-записям
// и доводит их до конечного статуса.
package reconciler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/membership-service/internal/lib/sl"
	"github.com/magabrotheeeer/membership-service/internal/models"
)

// sweepLimit — максимум платежей, проверяемых за один проход.
const sweepLimit = 100

// Repository определяет выборку зависших платежей.
type Repository interface {
	ListStalePendingPayments(ctx context.Context, olderThan time.Time, limit int) ([]*models.Payment, error)
}

// Verifier проверяет платёж по ссылке и обновляет его статус.
type Verifier interface {
	VerifyByReference(ctx context.Context, reference string) (*models.Payment, error)
}

// Service периодически сверяет pending-платежи со шлюзом.
type Service struct {
	repo          Repository
	verifier      Verifier
	sweepInterval time.Duration
	pendingMaxAge time.Duration
	log           *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, verifier Verifier, sweepInterval, pendingMaxAge time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		verifier:      verifier,
		sweepInterval: sweepInterval,
		pendingMaxAge: pendingMaxAge,
		log:           log,
	}
}

// Run запускает цикл сверки до отмены контекста. Первый проход выполняется
// сразу, дальше по тикеру.
func (s *Service) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reconciler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep проверяет одну порцию зависших платежей. Ошибка по одному платежу
// не прерывает проход: остальные платежи всё равно проверяются.
func (s *Service) sweep(ctx context.Context) {
	olderThan := time.Now().UTC().Add(-s.pendingMaxAge)
	pending, err := s.repo.ListStalePendingPayments(ctx, olderThan, sweepLimit)
	if err != nil {
		s.log.Error("failed to list stale pending payments", sl.Err(err))
		return
	}
	if len(pending) == 0 {
		s.log.Info("no stale pending payments found")
		return
	}
	s.log.Info("found stale pending payments", slog.Int("count", len(pending)))

	for _, p := range pending {
		if ctx.Err() != nil {
			return
		}
		result, err := s.verifier.VerifyByReference(ctx, p.Reference)
		if err != nil {
			s.log.Error("failed to verify stale payment",
				slog.String("reference", p.Reference), sl.Err(err))
			continue
		}
		if result.Status != models.PaymentStatusPending {
			s.log.Info("resolved stale payment",
				slog.String("reference", p.Reference),
				slog.String("status", result.Status))
		}
	}
}
