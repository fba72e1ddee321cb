// Package payment реализует координацию платёжного потока: инициализацию,
// проверку статуса (опрос и вебхук) и зачёт успешного платежа в членство.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/membership-service/internal/lib/reference"
	"github.com/magabrotheeeer/membership-service/internal/models"
	"github.com/magabrotheeeer/membership-service/internal/paymentprovider"
)

// ErrOwnershipMismatch возвращается, когда платёж проверяет не его владелец.
// Проверка по опросу не должна позволять пользователю A зачесть членство
// пользователю B.
var ErrOwnershipMismatch = errors.New("payment belongs to another user")

// Repository определяет методы для работы с платежами в хранилище.
type Repository interface {
	CreatePayment(ctx context.Context, p models.Payment) error
	GetPayment(ctx context.Context, reference string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, reference, status, lencoReference, fee, method string, completedAt *time.Time) error
	// MarkPaymentReconciled возвращает true только первому вызову для ссылки.
	MarkPaymentReconciled(ctx context.Context, reference string) (bool, error)
	ListPaymentsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.Payment, error)
	CountPaymentsByUser(ctx context.Context, userUID string) (int, error)
}

// Gateway описывает обращение к платёжному шлюзу.
type Gateway interface {
	GetCollectionByReference(ctx context.Context, reference string) (*paymentprovider.Collection, error)
}

// MembershipCreditor зачитывает подтверждённый платёж в членство.
type MembershipCreditor interface {
	Credit(ctx context.Context, userUID, membershipType string, months int, paymentReference string) error
}

// Service реализует координацию платёжного потока.
type Service struct {
	repo      Repository
	gateway   Gateway
	creditor  MembershipCreditor
	publicKey string
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, gateway Gateway, creditor MembershipCreditor, publicKey string, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		gateway:   gateway,
		creditor:  creditor,
		publicKey: publicKey,
		log:       log,
	}
}

// Initialize генерирует ссылку платежа, сохраняет pending-запись и возвращает
// параметры для платёжного виджета. Ссылка присваивается до любого обращения
// к шлюзу: упавший после этого шага клиент оставляет восстановимую запись.
func (s *Service) Initialize(ctx context.Context, userUID, email string, req models.DummyPaymentInit) (*models.PaymentParams, error) {
	ref := reference.New()
	p := models.Payment{
		Reference:      ref,
		UserUID:        userUID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		MembershipType: req.MembershipType,
		DurationMonths: req.DurationMonths,
		Status:         models.PaymentStatusPending,
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("initialized payment",
		slog.String("reference", ref),
		slog.String("user_uid", userUID),
		slog.Int("amount", req.Amount))

	return &models.PaymentParams{
		PublicKey: s.publicKey,
		Reference: ref,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Email:     email,
	}, nil
}

// Verify проверяет платёж по запросу владельца: запрашивает статус у шлюза,
// обновляет запись и при успехе зачитывает платёж в членство.
func (s *Service) Verify(ctx context.Context, callerUID, ref string) (*models.Payment, error) {
	p, err := s.repo.GetPayment(ctx, ref)
	if err != nil {
		return nil, err
	}
	if p.UserUID != callerUID {
		return nil, ErrOwnershipMismatch
	}
	return s.verify(ctx, p)
}

// VerifyByReference проверяет платёж без проверки владельца. Используется
// фоновой сверкой pending-платежей.
func (s *Service) VerifyByReference(ctx context.Context, ref string) (*models.Payment, error) {
	p, err := s.repo.GetPayment(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.verify(ctx, p)
}

func (s *Service) verify(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	// Уже подтверждённый платёж повторно к шлюзу не ходит.
	if p.Status == models.PaymentStatusSuccessful {
		return p, nil
	}

	collection, err := s.gateway.GetCollectionByReference(ctx, p.Reference)
	if err != nil {
		// Платёж остаётся pending и может быть проверен позже
		return nil, fmt.Errorf("payment verification failed: %w", err)
	}

	status := mapGatewayStatus(collection.Status)
	if status == models.PaymentStatusPending {
		return p, nil
	}

	completedAt := parseCompletedAt(collection.CompletedAt)
	if err := s.repo.UpdatePaymentStatus(ctx, p.Reference, status,
		collection.LencoReference, collection.Fee, collection.Type, completedAt); err != nil {
		return nil, err
	}
	p.Status = status
	p.LencoReference = collection.LencoReference
	p.Fee = collection.Fee
	p.PaymentMethod = collection.Type
	p.CompletedAt = completedAt

	if status == models.PaymentStatusSuccessful {
		if err := s.reconcile(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ProcessWebhookEvent обрабатывает уже аутентифицированный вебхук шлюза.
// Владелец берётся из хранимой записи платежа, а не из тела вебхука.
func (s *Service) ProcessWebhookEvent(ctx context.Context, payload *paymentprovider.WebhookPayload) error {
	p, err := s.repo.GetPayment(ctx, payload.Data.Reference)
	if err != nil {
		return err
	}

	switch payload.Event {
	case "collection.successful":
		completedAt := parseCompletedAt(payload.Data.CompletedAt)
		if err := s.repo.UpdatePaymentStatus(ctx, p.Reference, models.PaymentStatusSuccessful,
			payload.Data.LencoReference, payload.Data.Fee, payload.Data.Type, completedAt); err != nil {
			return err
		}
		p.Status = models.PaymentStatusSuccessful
		return s.reconcile(ctx, p)
	case "collection.failed":
		return s.repo.UpdatePaymentStatus(ctx, p.Reference, models.PaymentStatusFailed,
			payload.Data.LencoReference, payload.Data.Fee, payload.Data.Type, nil)
	default:
		s.log.Info("ignored webhook event", slog.String("event", payload.Event))
		return nil
	}
}

// History возвращает страницу платежей пользователя и общее количество.
func (s *Service) History(ctx context.Context, userUID string, limit, offset int) ([]*models.Payment, int, error) {
	entries, err := s.repo.ListPaymentsByUser(ctx, userUID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountPaymentsByUser(ctx, userUID)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// reconcile зачитывает успешный платёж в членство ровно один раз на ссылку.
// Опрос и вебхук могут увидеть один и тот же успех конкурентно; условная
// пометка reconciled в хранилище выигрывается только одним из них.
func (s *Service) reconcile(ctx context.Context, p *models.Payment) error {
	won, err := s.repo.MarkPaymentReconciled(ctx, p.Reference)
	if err != nil {
		return err
	}
	if !won {
		s.log.Info("payment already reconciled", slog.String("reference", p.Reference))
		return nil
	}
	if err := s.creditor.Credit(ctx, p.UserUID, p.MembershipType, p.DurationMonths, p.Reference); err != nil {
		// Пометка уже выиграна: повторная сверка этот платёж не подхватит,
		// требуется ручное вмешательство
		s.log.Error("payment marked reconciled but membership credit failed",
			slog.String("reference", p.Reference), slog.Any("err", err))
		return err
	}
	s.log.Info("reconciled payment into membership",
		slog.String("reference", p.Reference),
		slog.String("user_uid", p.UserUID))
	return nil
}

// mapGatewayStatus переводит словарь статусов шлюза в локальный.
func mapGatewayStatus(gatewayStatus string) string {
	switch gatewayStatus {
	case "successful":
		return models.PaymentStatusSuccessful
	case "failed":
		return models.PaymentStatusFailed
	case "cancelled":
		return models.PaymentStatusCancelled
	default:
		return models.PaymentStatusPending
	}
}

func parseCompletedAt(raw string) *time.Time {
	if raw == "" {
		now := time.Now().UTC()
		return &now
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		now := time.Now().UTC()
		return &now
	}
	return &t
}
