package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/membership-service/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, email, username, password_hash, role)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid;`
	var newID string
	if err := s.DB.QueryRowContext(ctx, query,
		user.UID, user.Email, user.Username, user.PasswordHash, user.Role).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, first_name, last_name,
			      phone, address, province, profession, organization, created_at
			  FROM users
			  WHERE username = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, username)
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.FirstName, &u.LastName, &u.Phone, &u.Address, &u.Province,
		&u.Profession, &u.Organization, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, username, password_hash, role, first_name, last_name,
			      phone, address, province, profession, organization, created_at
			  FROM users
			  WHERE uid = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.FirstName, &u.LastName, &u.Phone, &u.Address, &u.Province,
		&u.Profession, &u.Organization, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateUserProfile обновляет разрешённые к редактированию поля профиля.
// Набор колонок фиксирован, произвольные поля запроса в хранилище не попадают.
func (s *Storage) UpdateUserProfile(ctx context.Context, userUID string, req models.DummyProfileUpdate) error {
	const op = "storage.UpdateUserProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET first_name = $1, last_name = $2, phone = $3, address = $4,
			      province = $5, profession = $6, organization = $7
			  WHERE uid = $8`
	result, err := s.DB.ExecContext(ctx, query,
		req.FirstName, req.LastName, req.Phone, req.Address,
		req.Province, req.Profession, req.Organization, userUID)
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

// UpdateUserRole меняет роль пользователя.
func (s *Storage) UpdateUserRole(ctx context.Context, userUID, role string) error {
	const op = "storage.UpdateUserRole"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET role = $1 WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, role, userUID)
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

// ListRecipients возвращает UID и email пользователей, попадающих под фильтр рассылки.
// Активность членства вычисляется тем же строгим правилом, что и в бизнес-логике:
// status = 'active' и expires_at строго позже now.
func (s *Storage) ListRecipients(ctx context.Context, audience, membershipType, userUID string, now time.Time) ([]*models.User, error) {
	const op = "storage.ListRecipients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var query string
	var args []any
	switch audience {
	case models.AudienceAll:
		query = `SELECT u.uid, u.email FROM users u`
	case models.AudienceActive:
		query = `SELECT u.uid, u.email
				 FROM users u
				 JOIN memberships m ON m.user_uid = u.uid
				 WHERE m.status = 'active' AND m.expires_at > $1`
		args = append(args, now)
	case models.AudienceExpired:
		query = `SELECT u.uid, u.email
				 FROM users u
				 LEFT JOIN memberships m ON m.user_uid = u.uid
				 WHERE m.user_uid IS NULL OR m.status <> 'active' OR m.expires_at <= $1`
		args = append(args, now)
	case models.AudienceType:
		query = `SELECT u.uid, u.email
				 FROM users u
				 JOIN memberships m ON m.user_uid = u.uid
				 WHERE m.type = $1`
		args = append(args, membershipType)
	case models.AudienceSpecific:
		query = `SELECT u.uid, u.email FROM users u WHERE u.uid = $1`
		args = append(args, userUID)
	default:
		return nil, fmt.Errorf("%s: unknown audience %q", op, audience)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UID, &u.Email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
