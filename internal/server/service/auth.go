package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/config"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-oralvis/internal/shared/errors"
)

// AuthService реализует регистрацию, логин и проверку bearer-токенов.
//
// Ответственность:
//   - регистрация пользователей с ролью
//   - аутентификация (логин) и выпуск access токена
//   - проверка токена и извлечение Principal
type AuthService struct {
	users UsersRepo

	pass crypto.PasswordParams
	jwt  crypto.JWTConfig
}

// LoginResult - результат успешного логина.
type LoginResult struct {
	Token string
	User  models.User
}

// NewAuthService создаёт AuthService с зависимостями и настройками из конфига.
func NewAuthService(users UsersRepo, cfg *config.Config) *AuthService {
	return &AuthService{
		users: users,

		pass: crypto.PasswordParams{
			Hasher:     strings.ToLower(cfg.Password.Hasher),
			BcryptCost: cfg.Password.Bcrypt.Cost,
			Argon2: crypto.Argon2Params{
				Time:      cfg.Password.Argon2.Time,
				MemoryKiB: cfg.Password.Argon2.MemoryKiB,
				Threads:   cfg.Password.Argon2.Threads,
				KeyLen:    cfg.Password.Argon2.KeyLen,
				SaltLen:   cfg.Password.Argon2.SaltLen,
			},
		},
		jwt: crypto.JWTConfig{
			Issuer:     cfg.Auth.Issuer,
			Audience:   cfg.Auth.Audience,
			SigningKey: cfg.Auth.JWT.SigningKey,
			AccessTTL:  cfg.Auth.AccessTTL,
		},
	}
}

// Register регистрирует нового пользователя.
//
// Валидация:
//   - email, пароль и роль обязательны
//   - роль из набора technician|dentist
//   - для bcrypt пароль не длиннее 72 байт
//
// Возвращает:
//   - созданного пользователя (хэш пароля наружу не отдаётся api-слоем)
//   - ErrInvalidInput при некорректных данных или ErrAlreadyExists если email уже зарегистрирован
func (s *AuthService) Register(ctx context.Context, email, password string, role models.Role) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	role = models.Role(strings.TrimSpace(string(role)))

	if email == "" || strings.TrimSpace(password) == "" || role == "" {
		return models.User{}, serr.ErrInvalidInput
	}
	if !role.Valid() {
		return models.User{}, serr.ErrInvalidInput
	}
	if crypto.PasswordTooLong(password, s.pass) {
		return models.User{}, fmt.Errorf("%w: password longer than %d bytes", serr.ErrInvalidInput, crypto.MaxBcryptPasswordBytes)
	}

	hash, err := crypto.HashPassword(password, s.pass)
	if err != nil {
		return models.User{}, serr.ErrInternal
	}
	return s.users.Create(ctx, email, hash, role)
}

// Login аутентифицирует пользователя и выдаёт access токен.
//
// Неизвестный email и неверный пароль дают одну и ту же ошибку ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return LoginResult{}, serr.ErrInvalidInput
	}
	// получаем юзера по email
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// не палим существование email
		if errors.Is(err, serr.ErrNotFound) {
			return LoginResult{}, serr.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	// проверяем пароль, ошибка сверки тоже считается неверными данными
	ok, err := crypto.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return LoginResult{}, serr.ErrInvalidCredentials
	}
	if !ok {
		return LoginResult{}, serr.ErrInvalidCredentials
	}

	token, err := crypto.NewAccessToken(user.ID.String(), user.Email, string(user.Role), s.jwt)
	if err != nil {
		return LoginResult{}, serr.ErrInternal
	}

	return LoginResult{Token: token, User: user}, nil
}

// Verify проверяет bearer-токен и возвращает личность вызывающего.
//
// Ошибки:
//   - ErrUnauthorized если токен пустой
//   - ErrInvalidToken если подпись, срок или claims невалидны
func (s *AuthService) Verify(token string) (models.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Principal{}, serr.ErrUnauthorized
	}

	claims, err := crypto.ParseAccessToken(token, s.jwt)
	if err != nil {
		return models.Principal{}, serr.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return models.Principal{}, serr.ErrInvalidToken
	}

	p := models.Principal{
		UserID: userID,
		Email:  claims.Email,
		Role:   models.Role(claims.Role),
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// Authorize - единая проверка роли для защищённых операций.
func Authorize(p models.Principal, required models.Role) error {
	if p.Role != required {
		return serr.ErrForbidden
	}
	return nil
}
