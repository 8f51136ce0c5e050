// Package middleware содержит HTTP middleware сервера.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-oralvis/internal/shared/errors"
	sharedmodels "github.com/IvanChernomyrdin/go-oralvis/internal/shared/models"
)

// ctxKey используется как тип ключа для хранения значений в context.Context.
// Отдельный тип предотвращает коллизии ключей между пакетами.
type ctxKey string

// principalKey - ключ контекста, под которым хранится проверенный вызывающий.
const principalKey ctxKey = "principal"

// TokenVerifier проверяет bearer-токен (реализуется service.AuthService).
type TokenVerifier interface {
	Verify(token string) (models.Principal, error)
}

// JWTVerifier - HTTP-обёртка над TokenVerifier.
type JWTVerifier struct {
	verifier TokenVerifier
}

// NewJWTVerifier создаёт новый JWTVerifier.
func NewJWTVerifier(v TokenVerifier) *JWTVerifier {
	return &JWTVerifier{verifier: v}
}

// WithPrincipal кладёт Principal в контекст.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext извлекает аутентифицированного пользователя из контекста.
//
// Возвращает false, если запрос не прошёл через AuthMiddleware.
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}

// AuthMiddleware возвращает HTTP middleware для проверки bearer-токенов.
//
// Middleware:
//   - ожидает заголовок Authorization: Bearer <token>
//   - без токена отвечает 401
//   - с невалидным токеном отвечает 400
//   - сохраняет Principal в context.Context
func (v *JWTVerifier) AuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ExtractBearer(r.Header.Get("Authorization"))

			p, err := v.verifier.Verify(tokenStr)
			if err != nil {
				switch {
				case errors.Is(err, serr.ErrUnauthorized):
					writeJSONError(w, http.StatusUnauthorized, serr.ErrUnauthorized)
				case errors.Is(err, serr.ErrInvalidToken):
					writeJSONError(w, http.StatusBadRequest, serr.ErrInvalidToken)
				default:
					writeJSONError(w, http.StatusInternalServerError, serr.ErrInternal)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// ExtractBearer извлекает JWT из заголовка Authorization.
//
// Ожидаемый формат:
//
//	Authorization: Bearer <token>
//
// Пустая строка возвращается только если учётных данных нет вовсе.
// Заголовок с другой схемой возвращается как есть и не пройдёт проверку (400, а не 401).
func ExtractBearer(h string) string {
	h = strings.TrimSpace(h)
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if !strings.EqualFold(parts[0], "Bearer") {
		return h
	}
	if len(parts) != 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(sharedmodels.ErrorResponse{Error: err.Error()})
}
