package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/config"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/service"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/service/mocks"
	serr "github.com/IvanChernomyrdin/go-oralvis/internal/shared/errors"
)

const testSigningKey = "supersecretkeysupersecretkey123456"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.Issuer = "oralvis"
	cfg.Auth.Audience = "oralvis-api"
	cfg.Auth.AccessTTL = 24 * time.Hour
	cfg.Auth.JWT.Algorithm = "HS256"
	cfg.Auth.JWT.SigningKey = testSigningKey
	cfg.Password.Hasher = crypto.HasherBcrypt
	cfg.Password.Bcrypt.Cost = 4
	cfg.Storage.Folder = "oralvis-scans"
	return cfg
}

func testJWT() crypto.JWTConfig {
	cfg := testConfig()
	return crypto.JWTConfig{
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		SigningKey: cfg.Auth.JWT.SigningKey,
		AccessTTL:  cfg.Auth.AccessTTL,
	}
}

// создаём сервис
func newAuthService(t *testing.T) (*service.AuthService, *mocks.MockUsersRepo) {
	t.Helper()

	ctrl := gomock.NewController(t)
	users := mocks.NewMockUsersRepo(ctrl)

	return service.NewAuthService(users, testConfig()), users
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := crypto.HashPassword(password, crypto.PasswordParams{Hasher: crypto.HasherBcrypt, BcryptCost: 4})
	require.NoError(t, err)
	return h
}

// Успех: email нормализуется, пароль хэшируется
func TestAuthService_Register_OK(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	id := uuid.New()
	users.EXPECT().
		Create(ctx, "tech@mail.com", gomock.Any(), models.RoleTechnician).
		DoAndReturn(func(_ context.Context, email, hash string, role models.Role) (models.User, error) {
			require.NotEqual(t, "password123", hash)
			ok, err := crypto.VerifyPassword("password123", hash)
			require.NoError(t, err)
			require.True(t, ok)
			return models.User{ID: id, Email: email, PasswordHash: hash, Role: role}, nil
		})

	u, err := svc.Register(ctx, "  Tech@Mail.com ", "password123", models.RoleTechnician)
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, "tech@mail.com", u.Email)
	require.Equal(t, models.RoleTechnician, u.Role)
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		password string
		role     models.Role
	}{
		{"empty email", "", "pw", models.RoleDentist},
		{"empty password", "a@b.c", "", models.RoleDentist},
		{"empty role", "a@b.c", "pw", ""},
		{"unknown role", "a@b.c", "pw", "admin"},
		{"password over 72 bytes", "a@b.c", strings.Repeat("a", 80), models.RoleDentist},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newAuthService(t)
			_, err := svc.Register(context.Background(), tc.email, tc.password, tc.role)
			require.ErrorIs(t, err, serr.ErrInvalidInput)
		})
	}
}

// Такой email уже есть
func TestAuthService_Register_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	users.EXPECT().
		Create(ctx, "tech@mail.com", gomock.Any(), models.RoleTechnician).
		Return(models.User{}, serr.ErrAlreadyExists)

	_, err := svc.Register(ctx, "tech@mail.com", "password123", models.RoleTechnician)
	require.ErrorIs(t, err, serr.ErrAlreadyExists)
}

// Успех: токен несёт userId, email и role
func TestAuthService_Login_OK(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	user := models.User{
		ID:           uuid.New(),
		Email:        "dentist@mail.com",
		PasswordHash: hashed(t, "password123"),
		Role:         models.RoleDentist,
	}
	users.EXPECT().GetByEmail(ctx, "dentist@mail.com").Return(user, nil)

	res, err := svc.Login(ctx, "dentist@mail.com", "password123")
	require.NoError(t, err)
	require.Equal(t, user.ID, res.User.ID)
	require.NotEmpty(t, res.Token)

	claims, err := crypto.ParseAccessToken(res.Token, testJWT())
	require.NoError(t, err)
	require.Equal(t, user.ID.String(), claims.UserID)
	require.Equal(t, "dentist@mail.com", claims.Email)
	require.Equal(t, "dentist", claims.Role)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

// Неверный пароль
func TestAuthService_Login_InvalidPassword(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	users.EXPECT().
		GetByEmail(ctx, "test@mail.com").
		Return(models.User{ID: uuid.New(), PasswordHash: hashed(t, "correct-password"), Role: models.RoleDentist}, nil)

	_, err := svc.Login(ctx, "test@mail.com", "wrong-password")
	require.ErrorIs(t, err, serr.ErrInvalidCredentials)
}

// Пароль длиннее 72 байт при логине - неверные данные, а не 500
func TestAuthService_Login_LongPassword(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	users.EXPECT().
		GetByEmail(ctx, "test@mail.com").
		Return(models.User{ID: uuid.New(), PasswordHash: hashed(t, "correct-password"), Role: models.RoleDentist}, nil)

	_, err := svc.Login(ctx, "test@mail.com", strings.Repeat("a", 80))
	require.ErrorIs(t, err, serr.ErrInvalidCredentials)
}

// Email не существует: та же ошибка, что и при неверном пароле
func TestAuthService_Login_EmailNotFound(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	users.EXPECT().
		GetByEmail(ctx, "test@mail.com").
		Return(models.User{}, serr.ErrNotFound)

	_, err := svc.Login(ctx, "test@mail.com", "password")
	require.ErrorIs(t, err, serr.ErrInvalidCredentials)
}

func TestAuthService_Login_EmptyFields(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), "", "pw")
	require.ErrorIs(t, err, serr.ErrInvalidInput)

	_, err = svc.Login(context.Background(), "a@b.c", "")
	require.ErrorIs(t, err, serr.ErrInvalidInput)
}

func TestAuthService_Login_RepoError(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthService(t)

	users.EXPECT().GetByEmail(ctx, "test@mail.com").Return(models.User{}, serr.ErrInternal)

	_, err := svc.Login(ctx, "test@mail.com", "pw")
	require.ErrorIs(t, err, serr.ErrInternal)
}

func TestAuthService_Verify_OK(t *testing.T) {
	svc, _ := newAuthService(t)

	id := uuid.New()
	tok, err := crypto.NewAccessToken(id.String(), "t@mail.com", "technician", testJWT())
	require.NoError(t, err)

	p, err := svc.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, id, p.UserID)
	require.Equal(t, "t@mail.com", p.Email)
	require.Equal(t, models.RoleTechnician, p.Role)
	require.False(t, p.ExpiresAt.IsZero())
}

func TestAuthService_Verify_Empty(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Verify("  ")
	require.ErrorIs(t, err, serr.ErrUnauthorized)
}

func TestAuthService_Verify_Invalid(t *testing.T) {
	svc, _ := newAuthService(t)

	expiredCfg := testJWT()
	expiredCfg.AccessTTL = -time.Minute
	expired, err := crypto.NewAccessToken(uuid.NewString(), "t@mail.com", "dentist", expiredCfg)
	require.NoError(t, err)

	foreignCfg := testJWT()
	foreignCfg.SigningKey = "anotherkeyanotherkeyanotherkey1234"
	foreign, err := crypto.NewAccessToken(uuid.NewString(), "t@mail.com", "dentist", foreignCfg)
	require.NoError(t, err)

	badID, err := crypto.NewAccessToken("not-a-uuid", "t@mail.com", "dentist", testJWT())
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage": "abc.def.ghi",
		"expired": expired,
		"foreign": foreign,
		"bad id":  badID,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(tok)
			require.ErrorIs(t, err, serr.ErrInvalidToken)
		})
	}
}

func TestAuthorize(t *testing.T) {
	tech := models.Principal{Role: models.RoleTechnician}
	dentist := models.Principal{Role: models.RoleDentist}

	require.NoError(t, service.Authorize(tech, models.RoleTechnician))
	require.NoError(t, service.Authorize(dentist, models.RoleDentist))
	require.ErrorIs(t, service.Authorize(tech, models.RoleDentist), serr.ErrForbidden)
	require.ErrorIs(t, service.Authorize(dentist, models.RoleTechnician), serr.ErrForbidden)
	require.ErrorIs(t, service.Authorize(models.Principal{}, models.RoleDentist), serr.ErrForbidden)
}
