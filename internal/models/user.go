// Package models содержит доменные структуры ассоциации: пользователей,
// членство, платежи и уведомления. Структуры используются в бизнес-логике
// и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного члена ассоциации.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Роль пользователя, admin или user
	FirstName    string    // Имя
	LastName     string    // Фамилия
	Phone        string    // Телефон
	Address      string    // Адрес
	Province     string    // Провинция
	Profession   string    // Профессия
	Organization string    // Место работы
	CreatedAt    time.Time // Дата регистрации
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required"`
}

// DummyProfileUpdate описывает разрешённый к обновлению набор полей профиля.
// Поля вне этого списка никогда не переносятся в хранилище из тела запроса.
type DummyProfileUpdate struct {
	FirstName    string `json:"first_name" validate:"omitempty,max=100"`
	LastName     string `json:"last_name" validate:"omitempty,max=100"`
	Phone        string `json:"phone" validate:"omitempty,max=30"`
	Address      string `json:"address" validate:"omitempty,max=300"`
	Province     string `json:"province" validate:"omitempty,max=100"`
	Profession   string `json:"profession" validate:"omitempty,max=100"`
	Organization string `json:"organization" validate:"omitempty,max=200"`
}

// DummyRoleUpdate используется для смены роли пользователя администратором.
type DummyRoleUpdate struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}
