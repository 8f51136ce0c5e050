// Package api реализует HTTP-слой сервера OralVis.
//
// Пакет отвечает за:
//   - обработку входящих запросов и формирование ответов (JSON, multipart, PDF);
//   - маппинг доменных ошибок (service/repository) в HTTP-коды и сообщения;
//   - приём файлов снимков во временную папку перед передачей в сервис.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/config"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/service"
	serr "github.com/IvanChernomyrdin/go-oralvis/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/models"
)

// Каждый метод если будет возвращать ответ то будет это делать в JSON
// Вынес Content-Type и JSON для удобства
const (
	JsonContentType string = "application/json"
	ContentType     string = "Content-Type"
)

// Handler агрегирует зависимости HTTP-слоя и предоставляет методы-хендлеры.
//
// Handler содержит:
//   - Svc: сервисный слой (бизнес-логика);
//   - Health: проверка доступности базы для /healthz;
//   - Log: логгер для записи событий и ошибок;
//   - Verifier: middleware проверки bearer-токена;
//   - Uploads: куда и какого размера принимаем снимки.
type Handler struct {
	Svc      *service.Services
	Health   service.HealthRepo
	Log      *logger.HTTPLogger
	Verifier *middleware.JWTVerifier
	Uploads  config.UploadsConfig
}

// NewHandler создаёт экземпляр Handler с переданными зависимостями.
func NewHandler(
	svc *service.Services,
	health service.HealthRepo,
	log *logger.HTTPLogger,
	verifier *middleware.JWTVerifier,
	uploads config.UploadsConfig,
) *Handler {
	return &Handler{
		Svc:      svc,
		Health:   health,
		Log:      log,
		Verifier: verifier,
		Uploads:  uploads,
	}
}

// Вспомогательная функция вывода ошибки
func WriteError(w http.ResponseWriter, status int, err error) {
	w.Header().Set(ContentType, JsonContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(ContentType, JsonContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorStatuses - соответствие доменных ошибок HTTP-статусам.
// ErrInternal проверяется первым: обёрнутая внутренняя ошибка не должна уйти клиенту как 4xx.
var errorStatuses = []struct {
	err    error
	status int
}{
	{serr.ErrInternal, http.StatusInternalServerError},
	{serr.ErrBadJSON, http.StatusBadRequest},
	{serr.ErrInvalidInput, http.StatusBadRequest},
	{serr.ErrPayloadTooLarge, http.StatusBadRequest},
	{serr.ErrUnsupportedMedia, http.StatusBadRequest},
	{serr.ErrAlreadyExists, http.StatusBadRequest},
	{serr.ErrInvalidCredentials, http.StatusBadRequest},
	{serr.ErrInvalidToken, http.StatusBadRequest},
	{serr.ErrUnauthorized, http.StatusUnauthorized},
	{serr.ErrForbidden, http.StatusForbidden},
	{serr.ErrNotFound, http.StatusNotFound},
}

// StatusFromError возвращает HTTP-статус и ошибку, которую можно показать клиенту.
//
// Для ErrInvalidInput отдаётся полный текст (в нём перечислены поля),
// для остальных только сам sentinel, без контекста сервисного слоя.
func StatusFromError(err error) (int, error) {
	for _, e := range errorStatuses {
		if !errors.Is(err, e.err) {
			continue
		}
		if e.err == serr.ErrInvalidInput {
			return e.status, err
		}
		return e.status, e.err
	}
	return http.StatusInternalServerError, serr.ErrInternal
}

// writeServiceError пишет ответ по ошибке сервиса, 5xx логируются с подробностями.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	status, public := StatusFromError(err)
	if status >= http.StatusInternalServerError {
		var orphan *service.OrphanedObjectError
		if errors.As(err, &orphan) {
			h.Log.Sugar().Errorw("orphaned object", "op", op, "url", orphan.URL, "error", err)
		} else {
			h.Log.Sugar().Errorw(op+" failed", "error", err)
		}
	}
	WriteError(w, status, public)
}
