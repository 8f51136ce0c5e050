// Package crypto содержит криптографические примитивы,
// используемые сервером OralVis.
//
// В частности, пакет отвечает за:
//   - генерацию, подпись и разбор JWT access-токенов;
//   - настройку параметров токенов (issuer, audience, TTL);
//   - хэширование паролей (bcrypt, argon2id);
//   - соблюдение требований безопасности (HS256, срок жизни).
package crypto

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenClaims - токен подписан верно, но claims неполные или чужие.
var ErrTokenClaims = errors.New("invalid token claims")

// JWTConfig описывает параметры генерации JWT access-токена.
type JWTConfig struct {
	// Issuer - значение поля iss (кто выдал токен).
	Issuer string
	// Audience - значение поля aud (для кого предназначен токен).
	Audience string
	// SigningKey - секретный ключ для подписи токена (HS256).
	// Должен быть достаточно длинным и случайным.
	SigningKey string
	// AccessTTL - срок жизни access-токена.
	AccessTTL time.Duration
}

// Claims - содержимое access-токена: {userId, email, role} плюс стандартные поля.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewAccessToken создаёт и подписывает JWT access-токен для пользователя.
//
// Кроме userId/email/role токен содержит стандартные RegisteredClaims:
//   - iss (Issuer)
//   - aud (Audience)
//   - sub (userID)
//   - iat (IssuedAt)
//   - exp (ExpiresAt)
//
// Используется алгоритм подписи HS256.
func NewAccessToken(userID, email, role string, cfg JWTConfig) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTTL)),
		},
	}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(cfg.SigningKey))
}

// ParseAccessToken проверяет подпись, срок жизни, issuer и audience токена
// и возвращает его claims.
//
// Пустые Issuer/Audience в cfg означают, что соответствующее поле не проверяется.
func ParseAccessToken(tokenStr string, cfg JWTConfig) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return []byte(cfg.SigningKey), nil
	})
	if err != nil {
		return nil, err
	}

	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("%w: issuer %q", ErrTokenClaims, claims.Issuer)
	}
	if cfg.Audience != "" && !slices.Contains(claims.Audience, cfg.Audience) {
		return nil, fmt.Errorf("%w: audience", ErrTokenClaims)
	}
	if claims.UserID == "" || claims.Role == "" {
		return nil, fmt.Errorf("%w: missing userId or role", ErrTokenClaims)
	}
	return claims, nil
}
