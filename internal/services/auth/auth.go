// Package auth содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/membership-service/internal/lib/jwt"
	"github.com/magabrotheeeer/membership-service/internal/lib/password"
	"github.com/magabrotheeeer/membership-service/internal/models"
)

// ErrInvalidCredentials возвращается при неверном имени пользователя или пароле.
// Единая ошибка для обоих случаев: ответ не раскрывает, существует ли пользователь.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)

	// UpdateUserProfile обновляет разрешённые поля профиля.
	UpdateUserProfile(ctx context.Context, userUID string, req models.DummyProfileUpdate) error

	// UpdateUserRole меняет роль пользователя.
	UpdateUserRole(ctx context.Context, userUID, role string) error
}

// AuthService отвечает за регистрацию, авторизацию, валидацию JWT и профиль.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user".
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user := models.User{
		UID:          uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         "user", // дефолтная роль при регистрации
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает информацию о пользователе, роль и признак валидности.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, string, bool, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, "", false, err
	}
	user := &models.User{
		Username: claims.Username,
		Role:     claims.Role,
		UID:      claims.UserUID,
	}
	return user, claims.Role, true, nil
}

// GetProfile возвращает пользователя по UID. Хэш пароля наружу не отдаётся.
func (s *AuthService) GetProfile(ctx context.Context, userUID string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile обновляет разрешённые поля профиля пользователя.
// Email, роль и хэш пароля через эту операцию изменить нельзя.
func (s *AuthService) UpdateProfile(ctx context.Context, userUID string, req models.DummyProfileUpdate) error {
	return s.users.UpdateUserProfile(ctx, userUID, req)
}

// UpdateRole меняет роль пользователя (административная операция).
func (s *AuthService) UpdateRole(ctx context.Context, userUID, role string) error {
	return s.users.UpdateUserRole(ctx, userUID, role)
}
