// Package service содержит бизнес-логику приложения (oralvis).
// Это прослойка между HTTP-обработчиками (api) и хранилищами (repository, storage).
package service

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . UsersRepo,ScansRepo,ObjectStorage,ReportRenderer,HealthRepo

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/config"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
)

// Repositories - набор интерфейсов, которые сервисный слой ожидает от слоя repository.
type Repositories struct {
	Users UsersRepo
	Scans ScansRepo
}

// Collaborators - внешние зависимости сценария загрузки и отчёта.
type Collaborators struct {
	Storage  ObjectStorage
	Renderer ReportRenderer
}

// Services - агрегатор всех сервисов приложения.
type Services struct {
	Auth  *AuthService
	Scans *ScansService
}

// NewServices собирает все сервисы приложения.
// cfg нужен AuthService (хэширование, JWT) и ScansService (папка объектов).
func NewServices(repos Repositories, deps Collaborators, cfg *config.Config) *Services {
	return &Services{
		Auth:  NewAuthService(repos.Users, cfg),
		Scans: NewScansService(repos.Scans, deps.Storage, deps.Renderer, cfg.Storage.Folder),
	}
}

// HealthRepo - минимально нужное для health-check.
type HealthRepo interface {
	Ping(ctx context.Context) error
}

// UsersRepo - репозиторий пользователей (нужен для auth/register/login).
type UsersRepo interface {
	Create(ctx context.Context, email, passwordHash string, role models.Role) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// ScansRepo - репозиторий снимков. Записи только создаются и читаются.
type ScansRepo interface {
	Create(ctx context.Context, scan models.Scan) (models.Scan, error)
	List(ctx context.Context) ([]models.Scan, error)
	ListByUploader(ctx context.Context, uploaderID uuid.UUID) ([]models.Scan, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Scan, error)
}

// ObjectStorage кладёт локальный файл в объектное хранилище
// и возвращает постоянный URL объекта.
type ObjectStorage interface {
	Upload(ctx context.Context, objectName, filePath, contentType string) (string, error)
}

// ReportRenderer пишет отчёт по снимку в w.
type ReportRenderer interface {
	Render(w io.Writer, scan models.Scan) error
}
