// Package models содержит доменную модель пользователя системы.
package models

import "github.com/google/uuid"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          uuid.UUID // Уникальный идентификатор пользователя
	Email        string    // Электронная почта
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Роль пользователя, admin или user
}

// DummyRegister используется для приёма данных запроса регистрации.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLogin используется для приёма данных запроса входа.
type DummyLogin struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
