// Package notification реализует административную рассылку уведомлений:
// определение круга получателей, пакетную запись и публикацию событий
// доставки в очередь.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/membership-service/internal/models"
)

// batchSize — размер одной транзакционной пачки уведомлений.
const batchSize = 300

// Repository определяет методы для работы с уведомлениями и получателями.
type Repository interface {
	// ListRecipients возвращает пользователей, попадающих под фильтр рассылки.
	ListRecipients(ctx context.Context, audience, membershipType, userUID string, now time.Time) ([]*models.User, error)
	// CreateNotificationsBatch вставляет пачку уведомлений в одной транзакции.
	CreateNotificationsBatch(ctx context.Context, entries []models.Notification) error
	ListNotifications(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, error)
	CountNotifications(ctx context.Context, userUID string) (int, error)
	MarkNotificationRead(ctx context.Context, userUID string, id int) error
}

// Publisher публикует событие доставки во внешнюю очередь.
type Publisher interface {
	Publish(event models.NotificationEvent) error
}

// Service реализует рассылку и чтение уведомлений.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

// New создает новый экземпляр Service. Publisher может быть nil:
// рассылка тогда ограничивается записью в хранилище.
func New(repo Repository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Send разворачивает рассылку в отдельные уведомления получателей и пишет их
// пачками. Пачка атомарна, рассылка в целом — нет: при ошибке на середине
// уже записанные пачки остаются, а ошибка сообщает, сколько получателей
// успело получить уведомление.
func (s *Service) Send(ctx context.Context, req models.DummyNotificationSend) (int, error) {
	recipients, err := s.repo.ListRecipients(ctx, req.Audience, req.MembershipType, req.UserUID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		s.log.Info("notification has no recipients", slog.String("audience", req.Audience))
		return 0, nil
	}

	now := time.Now().UTC()
	sent := 0
	for start := 0; start < len(recipients); start += batchSize {
		end := start + batchSize
		if end > len(recipients) {
			end = len(recipients)
		}
		chunk := recipients[start:end]

		entries := make([]models.Notification, 0, len(chunk))
		for _, r := range chunk {
			entries = append(entries, models.Notification{
				UserUID: r.UID,
				Type:    "announcement",
				Subject: req.Subject,
				Message: req.Message,
				SentAt:  now,
				IsRead:  false,
			})
		}
		if err := s.repo.CreateNotificationsBatch(ctx, entries); err != nil {
			return sent, fmt.Errorf("delivered to %d of %d recipients: %w", sent, len(recipients), err)
		}
		sent += len(chunk)

		s.publishChunk(chunk, req.Subject, req.Message)
	}

	s.log.Info("sent notification",
		slog.String("audience", req.Audience),
		slog.Int("recipients", sent))
	return sent, nil
}

// publishChunk публикует события доставки email. Ошибка публикации не
// прерывает рассылку: записи в хранилище уже есть, доставку добирает
// повторная отправка.
func (s *Service) publishChunk(chunk []*models.User, subject, message string) {
	if s.publisher == nil {
		return
	}
	for _, r := range chunk {
		if r.Email == "" {
			continue
		}
		event := models.NotificationEvent{
			Email:   r.Email,
			Subject: subject,
			Message: message,
		}
		if err := s.publisher.Publish(event); err != nil {
			s.log.Warn("failed to publish notification event",
				slog.String("email", r.Email), slog.Any("err", err))
		}
	}
}

// List возвращает страницу уведомлений пользователя и общее количество.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, int, error) {
	entries, err := s.repo.ListNotifications(ctx, userUID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountNotifications(ctx, userUID)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// MarkRead помечает уведомление пользователя прочитанным.
func (s *Service) MarkRead(ctx context.Context, userUID string, id int) error {
	return s.repo.MarkNotificationRead(ctx, userUID, id)
}
