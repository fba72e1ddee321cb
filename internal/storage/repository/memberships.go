package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/membership-service/internal/lib/month"
	"github.com/magabrotheeeer/membership-service/internal/models"
)

// UpsertMembership записывает членство пользователя. На пользователя хранится
// ровно одна запись: повторная вставка перезаписывает существующую
// (политика last-write-wins, не слияние).
func (s *Storage) UpsertMembership(ctx context.Context, m models.Membership) error {
	const op = "storage.UpsertMembership"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO memberships (user_uid, type, status, membership_number,
			      start_date, expires_at, duration_months, payment_reference, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			  ON CONFLICT (user_uid) DO UPDATE
			  SET type = EXCLUDED.type,
			      status = EXCLUDED.status,
			      membership_number = EXCLUDED.membership_number,
			      start_date = EXCLUDED.start_date,
			      expires_at = EXCLUDED.expires_at,
			      duration_months = EXCLUDED.duration_months,
			      payment_reference = EXCLUDED.payment_reference,
			      updated_at = NOW()`
	_, err := s.DB.ExecContext(ctx, query,
		m.UserUID, m.Type, m.Status, m.MembershipNumber,
		m.StartDate, m.ExpiresAt, m.DurationMonths, m.PaymentReference)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetMembership возвращает запись о членстве пользователя.
func (s *Storage) GetMembership(ctx context.Context, userUID string) (*models.Membership, error) {
	const op = "storage.GetMembership"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, type, status, membership_number, start_date, expires_at,
			      duration_months, payment_reference, created_at, updated_at
			  FROM memberships
			  WHERE user_uid = $1`
	m := &models.Membership{}
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&m.UserUID, &m.Type, &m.Status, &m.MembershipNumber,
		&m.StartDate, &m.ExpiresAt, &m.DurationMonths, &m.PaymentReference,
		&m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// ExtendMembership продлевает членство на months календарных месяцев внутри
// транзакции с блокировкой строки: два конкурентных продления сериализуются
// и не считают новый срок от одного и того же старого значения.
//
// Продление отсчитывается от хранимой даты истечения, поэтому продлевающийся
// заранее пользователь не теряет оплаченный срок. При anchorNowIfExpired
// уже истёкшая запись продлевается от now, а не от устаревшей даты; выбор
// делается под блокировкой, по актуальному значению expires_at.
func (s *Storage) ExtendMembership(ctx context.Context, userUID string, months int, anchorNowIfExpired bool, now time.Time) (*models.Membership, error) {
	const op = "storage.ExtendMembership"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	m := &models.Membership{}
	row := tx.QueryRowContext(ctx, `
		SELECT user_uid, type, status, membership_number, start_date, expires_at,
		       duration_months, payment_reference, created_at, updated_at
		FROM memberships
		WHERE user_uid = $1
		FOR UPDATE`, userUID)
	if err := row.Scan(&m.UserUID, &m.Type, &m.Status, &m.MembershipNumber,
		&m.StartDate, &m.ExpiresAt, &m.DurationMonths, &m.PaymentReference,
		&m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	anchor := m.ExpiresAt
	if anchorNowIfExpired && !m.ExpiresAt.After(now) {
		anchor = now
	}
	newExpiry := month.AddMonths(anchor, months)

	_, err = tx.ExecContext(ctx, `
		UPDATE memberships
		SET expires_at = $1, duration_months = duration_months + $2, updated_at = NOW()
		WHERE user_uid = $3`, newExpiry, months, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.ExpiresAt = newExpiry
	m.DurationMonths += months
	return m, nil
}

// UpdateMembershipStatus устанавливает статус членства (административная операция).
func (s *Storage) UpdateMembershipStatus(ctx context.Context, userUID, status string) error {
	const op = "storage.UpdateMembershipStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE memberships SET status = $1, updated_at = NOW() WHERE user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, status, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ListMemberships возвращает записи о членстве с пагинацией и необязательным
// фильтром по статусу (пустая строка — без фильтра).
func (s *Storage) ListMemberships(ctx context.Context, status string, limit, offset int) ([]*models.Membership, error) {
	const op = "storage.ListMemberships"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, type, status, membership_number, start_date, expires_at,
			      duration_months, payment_reference, created_at, updated_at
			  FROM memberships
			  WHERE ($1 = '' OR status = $1)
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.UserUID, &m.Type, &m.Status, &m.MembershipNumber,
			&m.StartDate, &m.ExpiresAt, &m.DurationMonths, &m.PaymentReference,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountMemberships возвращает общее количество записей под фильтром статуса.
func (s *Storage) CountMemberships(ctx context.Context, status string) (int, error) {
	const op = "storage.CountMemberships"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int
	query := `SELECT COUNT(*) FROM memberships WHERE ($1 = '' OR status = $1)`
	if err := s.DB.QueryRowContext(ctx, query, status).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}
