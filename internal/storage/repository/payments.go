package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/membership-service/internal/models"
)

// CreatePayment вставляет новую pending-запись платежа.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) error {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (reference, user_uid, amount, currency,
			      membership_type, duration_months, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query,
		p.Reference, p.UserUID, p.Amount, p.Currency,
		p.MembershipType, p.DurationMonths, p.Status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPayment возвращает платёж по ссылке.
func (s *Storage) GetPayment(ctx context.Context, reference string) (*models.Payment, error) {
	const op = "storage.GetPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT reference, user_uid, amount, currency, membership_type, duration_months,
			      status, lenco_reference, fee, payment_method, reconciled, completed_at,
			      created_at, updated_at
			  FROM payments
			  WHERE reference = $1`
	p := &models.Payment{}
	var completedAt sql.NullTime
	row := s.DB.QueryRowContext(ctx, query, reference)
	if err := row.Scan(&p.Reference, &p.UserUID, &p.Amount, &p.Currency,
		&p.MembershipType, &p.DurationMonths, &p.Status, &p.LencoReference,
		&p.Fee, &p.PaymentMethod, &p.Reconciled, &completedAt,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if completedAt.Valid {
		p.CompletedAt = &completedAt.Time
	}
	return p, nil
}

// UpdatePaymentStatus переводит платёж в итоговый статус и дописывает
// данные, полученные от шлюза.
func (s *Storage) UpdatePaymentStatus(ctx context.Context, reference, status, lencoReference, fee, method string, completedAt *time.Time) error {
	const op = "storage.UpdatePaymentStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET status = $1, lenco_reference = $2, fee = $3, payment_method = $4,
			      completed_at = $5, updated_at = NOW()
			  WHERE reference = $6`
	result, err := s.DB.ExecContext(ctx, query,
		status, lencoReference, fee, method, completedAt, reference)
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

// MarkPaymentReconciled условно помечает платёж зачтённым. Возвращает true
// только первому из конкурентных вызовов: опрос и вебхук, увидевшие один и
// тот же успешный платёж, создают ровно одно продление членства.
func (s *Storage) MarkPaymentReconciled(ctx context.Context, reference string) (bool, error) {
	const op = "storage.MarkPaymentReconciled"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET reconciled = TRUE, updated_at = NOW()
			  WHERE reference = $1 AND NOT reconciled`
	result, err := s.DB.ExecContext(ctx, query, reference)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}

// ListPaymentsByUser возвращает платежи пользователя с пагинацией.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT reference, user_uid, amount, currency, membership_type, duration_months,
			      status, lenco_reference, fee, payment_method, reconciled, completed_at,
			      created_at, updated_at
			  FROM payments
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var p models.Payment
		var completedAt sql.NullTime
		if err := rows.Scan(&p.Reference, &p.UserUID, &p.Amount, &p.Currency,
			&p.MembershipType, &p.DurationMonths, &p.Status, &p.LencoReference,
			&p.Fee, &p.PaymentMethod, &p.Reconciled, &completedAt,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if completedAt.Valid {
			p.CompletedAt = &completedAt.Time
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountPaymentsByUser возвращает общее количество платежей пользователя.
func (s *Storage) CountPaymentsByUser(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountPaymentsByUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int
	query := `SELECT COUNT(*) FROM payments WHERE user_uid = $1`
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// ListStalePendingPayments возвращает платежи, зависшие в pending дольше
// заданного порога. Используется фоновой сверкой.
func (s *Storage) ListStalePendingPayments(ctx context.Context, olderThan time.Time, limit int) ([]*models.Payment, error) {
	const op = "storage.ListStalePendingPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT reference, user_uid, amount, currency, membership_type, duration_months,
			      status, lenco_reference, fee, payment_method, reconciled, completed_at,
			      created_at, updated_at
			  FROM payments
			  WHERE status = 'pending' AND created_at < $1
			  ORDER BY created_at
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var p models.Payment
		var completedAt sql.NullTime
		if err := rows.Scan(&p.Reference, &p.UserUID, &p.Amount, &p.Currency,
			&p.MembershipType, &p.DurationMonths, &p.Status, &p.LencoReference,
			&p.Fee, &p.PaymentMethod, &p.Reconciled, &completedAt,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if completedAt.Valid {
			p.CompletedAt = &completedAt.Time
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
