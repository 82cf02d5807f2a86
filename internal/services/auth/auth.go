// Package auth реализует регистрацию и вход пользователей.
// Пароли хранятся в виде bcrypt-хэшей, при входе выдается JWT токен.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/smilemedia/subscription-hub/internal/lib/password"
	"github.com/smilemedia/subscription-hub/internal/lib/sl"
	"github.com/smilemedia/subscription-hub/internal/models"
)

// Repository определяет методы для работы с пользователями в хранилище.
type Repository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (uuid.UUID, error)
	// GetUserByUsername возвращает пользователя или models.ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenMaker выдает JWT токены.
type TokenMaker interface {
	GenerateToken(userUID, username, role string) (string, error)
}

// Service реализует регистрацию и вход пользователей.
type Service struct {
	repo  Repository
	maker TokenMaker
	log   *slog.Logger
}

// New создает новый Service.
func New(repo Repository, maker TokenMaker, log *slog.Logger) *Service {
	return &Service{repo: repo, maker: maker, log: log}
}

// Register регистрирует нового пользователя с ролью user
// и возвращает его UID. Имя пользователя должно быть свободно.
func (s *Service) Register(ctx context.Context, req models.DummyRegister) (uuid.UUID, error) {
	const op = "auth.Register"

	if _, err := s.repo.GetUserByUsername(ctx, req.Username); err == nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, models.ErrUserExists)
	} else if !errors.Is(err, models.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	uid, err := s.repo.RegisterUser(ctx, models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         "user",
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("registered new user", slog.String("username", req.Username))
	return uid, nil
}

// Login проверяет пару логин/пароль и возвращает JWT токен.
// Неизвестный username и неверный пароль неразличимы для клиента.
func (s *Service) Login(ctx context.Context, req models.DummyLogin) (string, error) {
	const op = "auth.Login"

	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	token, err := s.maker.GenerateToken(user.UID.String(), user.Username, user.Role)
	if err != nil {
		s.log.Error("failed to generate token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}
