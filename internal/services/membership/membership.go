// Package membership содержит бизнес-логику жизненного цикла членства:
// вычисление срока и активности, создание и продление записей,
// выдачу номеров членства.
package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/membership-service/internal/lib/month"
	"github.com/magabrotheeeer/membership-service/internal/models"
	"github.com/magabrotheeeer/membership-service/internal/storage/repository"
)

// Repository определяет методы для работы с членством в хранилище.
type Repository interface {
	// GetMembership возвращает запись о членстве пользователя.
	GetMembership(ctx context.Context, userUID string) (*models.Membership, error)
	// UpsertMembership перезаписывает запись о членстве (last-write-wins).
	UpsertMembership(ctx context.Context, m models.Membership) error
	// ExtendMembership продлевает членство под блокировкой строки.
	ExtendMembership(ctx context.Context, userUID string, months int, anchorNowIfExpired bool, now time.Time) (*models.Membership, error)
	// UpdateMembershipStatus устанавливает статус членства.
	UpdateMembershipStatus(ctx context.Context, userUID, status string) error
	// ListMemberships возвращает записи с пагинацией и фильтром по статусу.
	ListMemberships(ctx context.Context, status string, limit, offset int) ([]*models.Membership, error)
	// CountMemberships возвращает количество записей под фильтром.
	CountMemberships(ctx context.Context, status string) (int, error)
	// NextMembershipSequence атомарно выдаёт следующий номер для (префикс, год).
	NextMembershipSequence(ctx context.Context, prefix string, year int) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// ExtendPolicy задаёт точку отсчёта продления уже истёкшего членства.
type ExtendPolicy int

const (
	// AnchorExpiry — всегда продлевать от хранимой даты истечения,
	// даже если она в прошлом.
	AnchorExpiry ExtendPolicy = iota
	// AnchorNow — истёкшую запись продлевать от текущего момента,
	// чтобы пользователь не оплачивал уже прошедшие месяцы.
	AnchorNow
)

// Префиксы номеров членства по категориям.
var numberPrefixes = map[string]string{
	"full":      "MZIP",
	"associate": "AZIP",
	"student":   "SZIP",
	"fellow":    "FZIP",
}

// Service реализует бизнес-логику членства.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ComputeExpiry прибавляет durationMonths календарных месяцев к startDate
// по правилу ограничения последним днём месяца.
func ComputeExpiry(startDate time.Time, durationMonths int) time.Time {
	return month.AddMonths(startDate, durationMonths)
}

// IsActive вычисляет активность членства. Активность — производное свойство:
// запись со статусом active, но прошедшей датой истечения, не активна.
// Граница строгая: expiresAt, равный now, тоже означает неактивность.
func IsActive(m *models.Membership, now time.Time) bool {
	if m == nil || m.Status != models.MembershipStatusActive {
		return false
	}
	return now.Before(m.ExpiresAt)
}

// AssignMembershipNumber выдаёт номер вида <PREFIX><YEAR><NNN>, где
// последовательность атомарно инкрементируется в хранилище.
func (s *Service) AssignMembershipNumber(ctx context.Context, membershipType string, now time.Time) (string, error) {
	prefix, ok := numberPrefixes[membershipType]
	if !ok {
		return "", fmt.Errorf("unknown membership type: %s", membershipType)
	}
	year := now.Year()
	seq, err := s.repo.NextMembershipSequence(ctx, prefix, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d%03d", prefix, year, seq), nil
}

// Create создаёт (или перезаписывает) членство пользователя: startDate = now,
// статус active, срок по ComputeExpiry. Повторный вызов перезаписывает
// существующую запись целиком.
func (s *Service) Create(ctx context.Context, userUID string, req models.DummyMembershipCreate) (*models.Membership, error) {
	now := time.Now().UTC()
	number, err := s.AssignMembershipNumber(ctx, req.Type, now)
	if err != nil {
		return nil, fmt.Errorf("failed to assign membership number: %w", err)
	}

	m := models.Membership{
		UserUID:          userUID,
		Type:             req.Type,
		Status:           models.MembershipStatusActive,
		MembershipNumber: number,
		StartDate:        now,
		ExpiresAt:        ComputeExpiry(now, req.DurationMonths),
		DurationMonths:   req.DurationMonths,
		PaymentReference: req.PaymentReference,
	}
	if err := s.repo.UpsertMembership(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info("created membership",
		slog.String("user_uid", userUID),
		slog.String("number", number),
		slog.String("type", req.Type))

	s.invalidateCache(userUID)
	return &m, nil
}

// Extend продлевает членство на months месяцев. Точка отсчёта для истёкшей
// записи определяется политикой; активная запись всегда продлевается от
// хранимой даты истечения.
func (s *Service) Extend(ctx context.Context, userUID string, months int, policy ExtendPolicy) (*models.Membership, error) {
	m, err := s.repo.ExtendMembership(ctx, userUID, months, policy == AnchorNow, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.log.Info("extended membership",
		slog.String("user_uid", userUID),
		slog.Int("months", months),
		slog.Time("expires_at", m.ExpiresAt))

	s.invalidateCache(userUID)
	return m, nil
}

// Status возвращает запись о членстве вместе с вычисленной активностью.
// Отсутствие записи — не ошибка: возвращается пустая запись с is_active=false.
func (s *Service) Status(ctx context.Context, userUID string) (*models.MembershipStatusView, error) {
	var m *models.Membership
	cacheKey := fmt.Sprintf("membership:%s", userUID)
	found, err := s.cache.Get(cacheKey, &m)
	if err != nil {
		s.log.Warn("failed to read membership from cache", slog.String("key", cacheKey), slog.Any("err", err))
		found = false
	}
	if !found {
		m, err = s.repo.GetMembership(ctx, userUID)
		if err != nil {
			if isNotFound(err) {
				return &models.MembershipStatusView{Membership: nil, IsActive: false}, nil
			}
			return nil, err
		}
		if err := s.cache.Set(cacheKey, m, 5*time.Minute); err != nil {
			s.log.Warn("failed to cache membership", slog.String("key", cacheKey), slog.Any("err", err))
		}
	}

	return &models.MembershipStatusView{
		Membership: m,
		IsActive:   IsActive(m, time.Now().UTC()),
	}, nil
}

// SetStatus устанавливает статус членства (административная операция).
func (s *Service) SetStatus(ctx context.Context, userUID, status string) error {
	if err := s.repo.UpdateMembershipStatus(ctx, userUID, status); err != nil {
		return err
	}
	s.log.Info("updated membership status",
		slog.String("user_uid", userUID),
		slog.String("status", status))
	s.invalidateCache(userUID)
	return nil
}

// List возвращает страницу записей о членстве и общее количество.
func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]*models.Membership, int, error) {
	entries, err := s.repo.ListMemberships(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountMemberships(ctx, status)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Credit зачитывает успешный платёж в членство: существующая запись
// продлевается (истёкшая — от текущего момента), отсутствующая — создаётся.
func (s *Service) Credit(ctx context.Context, userUID, membershipType string, months int, paymentReference string) error {
	_, err := s.repo.GetMembership(ctx, userUID)
	if err != nil {
		if isNotFound(err) {
			_, err = s.Create(ctx, userUID, models.DummyMembershipCreate{
				Type:             membershipType,
				DurationMonths:   months,
				PaymentReference: paymentReference,
			})
			return err
		}
		return err
	}
	_, err = s.Extend(ctx, userUID, months, AnchorNow)
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func (s *Service) invalidateCache(userUID string) {
	cacheKey := fmt.Sprintf("membership:%s", userUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate membership cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
}
