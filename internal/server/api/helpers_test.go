package api_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/api"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/config"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/service"
	svcmocks "github.com/IvanChernomyrdin/go-oralvis/internal/server/service/mocks"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/logger"
)

// pngBytes - минимальная сигнатура PNG, достаточная для определения типа.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type testDeps struct {
	users    *svcmocks.MockUsersRepo
	scans    *svcmocks.MockScansRepo
	storage  *svcmocks.MockObjectStorage
	renderer *svcmocks.MockReportRenderer
	health   *svcmocks.MockHealthRepo
	staging  string
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.Issuer = "oralvis"
	cfg.Auth.Audience = "oralvis-api"
	cfg.Auth.AccessTTL = time.Hour
	cfg.Auth.JWT.Algorithm = "HS256"
	cfg.Auth.JWT.SigningKey = "supersecretkeysupersecretkey123456" // >= 32
	cfg.Password.Hasher = "bcrypt"
	cfg.Password.Bcrypt.Cost = 4
	cfg.Storage.Folder = "oralvis-scans"
	cfg.Uploads.StagingDir = t.TempDir()
	cfg.Uploads.MaxImageBytes = 1024
	return cfg
}

// NewTestHandler создаёт Handler с настоящими сервисами поверх моков
func NewTestHandler(t *testing.T) (*api.Handler, testDeps) {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := testDeps{
		users:    svcmocks.NewMockUsersRepo(ctrl),
		scans:    svcmocks.NewMockScansRepo(ctrl),
		storage:  svcmocks.NewMockObjectStorage(ctrl),
		renderer: svcmocks.NewMockReportRenderer(ctrl),
		health:   svcmocks.NewMockHealthRepo(ctrl),
	}

	cfg := testConfig(t)
	d.staging = cfg.Uploads.StagingDir

	svc := service.NewServices(
		service.Repositories{Users: d.users, Scans: d.scans},
		service.Collaborators{Storage: d.storage, Renderer: d.renderer},
		cfg,
	)
	verifier := middleware.NewJWTVerifier(svc.Auth)

	return api.NewHandler(svc, d.health, logger.NewNop(), verifier, cfg.Uploads), d
}

func technician() models.Principal {
	return models.Principal{UserID: uuid.New(), Email: "tech@mail.com", Role: models.RoleTechnician}
}

func dentist() models.Principal {
	return models.Principal{UserID: uuid.New(), Email: "dentist@mail.com", Role: models.RoleDentist}
}

// asUser кладёт Principal в контекст запроса, как это делает AuthMiddleware.
func asUser(req *http.Request, p models.Principal) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), p))
}

// withURLParam добавляет chi-параметр маршрута.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

type formFile struct {
	field, name string
	data        []byte
}

// multipartRequest собирает запрос загрузки снимка.
func multipartRequest(t *testing.T, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/scans/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
