// Package jwtoken реализует генерацию и парсинг JWT токенов
// с пользовательскими claim полями.
package jwtoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims описывает пользовательские данные, хранящиеся в JWT.
type Claims struct {
	UserUID              string `json:"user_uid"` // Идентификатор пользователя
	Username             string `json:"username"` // Имя пользователя
	Role                 string `json:"role"`     // Роль пользователя
	jwt.RegisteredClaims        // Стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// Maker создает и проверяет JWT токены, подписанные секретным ключом.
type Maker struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewMaker создает новый Maker.
func NewMaker(secretKey string, tokenTTL time.Duration) *Maker {
	return &Maker{secretKey: secretKey, tokenTTL: tokenTTL}
}

// GenerateToken создает JWT токен с заданными user_uid, username и role.
// Время жизни токена определяется tokenTTL.
func (m *Maker) GenerateToken(userUID, username, role string) (string, error) {
	claims := Claims{
		UserUID:  userUID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись и срок действия,
// возвращает Claims, если токен корректен.
func (m *Maker) ParseToken(tokenStr string) (*Claims, error) {
	const op = "jwtoken.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}

// TokenTTL возвращает время жизни выдаваемых токенов.
func (m *Maker) TokenTTL() time.Duration {
	return m.tokenTTL
}
