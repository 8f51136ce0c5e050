package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-oralvis/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/utils"
)

// ScansService - жизненный цикл снимков: загрузка, списки, просмотр, отчёт.
// Каждая операция начинается с проверки роли вызывающего.
type ScansService struct {
	scans    ScansRepo
	storage  ObjectStorage
	renderer ReportRenderer
	folder   string
}

// ScanMeta - метаданные снимка из формы загрузки.
type ScanMeta struct {
	PatientName string
	PatientID   string
	ScanType    string
	Region      string
}

// ImageFile - изображение, уже сохранённое во временный файл api-слоем.
type ImageFile struct {
	Path        string // путь к временному файлу
	Filename    string // исходное имя, из него берётся расширение
	ContentType string
	Size        int64
}

// Report - готовый PDF-отчёт.
type Report struct {
	Filename string
	Content  []byte
}

// OrphanedObjectError - изображение уже лежит в хранилище, но запись о снимке не сохранилась.
type OrphanedObjectError struct {
	URL string
	Err error
}

func (e *OrphanedObjectError) Error() string {
	return fmt.Sprintf("save scan (orphaned object %s): %v", e.URL, e.Err)
}

func (e *OrphanedObjectError) Unwrap() error { return e.Err }

func NewScansService(scans ScansRepo, storage ObjectStorage, renderer ReportRenderer, folder string) *ScansService {
	return &ScansService{
		scans:    scans,
		storage:  storage,
		renderer: renderer,
		folder:   strings.Trim(folder, "/"),
	}
}

// Upload сохраняет изображение в хранилище и создаёт запись о снимке.
//
// Порядок: роль, валидация, хранилище, удаление временного файла, вставка в базу.
// Если вставка не удалась, объект остаётся в хранилище (*OrphanedObjectError).
func (s *ScansService) Upload(ctx context.Context, caller models.Principal, meta ScanMeta, image ImageFile) (models.Scan, error) {
	if err := Authorize(caller, models.RoleTechnician); err != nil {
		return models.Scan{}, err
	}

	meta.PatientName = strings.TrimSpace(meta.PatientName)
	meta.PatientID = strings.TrimSpace(meta.PatientID)
	meta.Region = strings.TrimSpace(meta.Region)
	meta.ScanType = strings.TrimSpace(meta.ScanType)

	if meta.PatientName == "" || meta.PatientID == "" || meta.Region == "" {
		return models.Scan{}, fmt.Errorf("%w: patient_name, patient_id and region are required", serr.ErrInvalidInput)
	}
	if image.Path == "" || image.Size <= 0 {
		return models.Scan{}, fmt.Errorf("%w: scan image is required", serr.ErrInvalidInput)
	}
	if meta.ScanType == "" {
		meta.ScanType = models.DefaultScanType
	}

	url, err := s.storage.Upload(ctx, s.objectName(image.Filename), image.Path, image.ContentType)
	if err != nil {
		return models.Scan{}, fmt.Errorf("store image: %w: %w", serr.ErrInternal, err)
	}

	// локальная копия больше не нужна
	if err := os.Remove(image.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return models.Scan{}, fmt.Errorf("remove staged image: %w: %w", serr.ErrInternal, err)
	}

	scan, err := s.scans.Create(ctx, models.Scan{
		PatientName: meta.PatientName,
		PatientID:   meta.PatientID,
		ScanType:    meta.ScanType,
		Region:      meta.Region,
		ImageURL:    url,
		UploadedBy:  utils.Ptr(caller.UserID),
	})
	if err != nil {
		return models.Scan{}, &OrphanedObjectError{URL: url, Err: err}
	}

	if scan.UploadedByEmail == nil && caller.Email != "" {
		scan.UploadedByEmail = utils.Ptr(caller.Email)
	}
	return scan, nil
}

// List возвращает все снимки (только для dentist), новые первыми.
func (s *ScansService) List(ctx context.Context, caller models.Principal) ([]models.Scan, error) {
	if err := Authorize(caller, models.RoleDentist); err != nil {
		return nil, err
	}
	scans, err := s.scans.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	return scans, nil
}

// ListMine возвращает снимки, загруженные вызывающим техником.
func (s *ScansService) ListMine(ctx context.Context, caller models.Principal) ([]models.Scan, error) {
	if err := Authorize(caller, models.RoleTechnician); err != nil {
		return nil, err
	}
	scans, err := s.scans.ListByUploader(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list own scans: %w", err)
	}
	return scans, nil
}

// Get возвращает снимок по id (только для dentist).
// Невалидный id считается отсутствующим снимком.
func (s *ScansService) Get(ctx context.Context, caller models.Principal, id string) (models.Scan, error) {
	if err := Authorize(caller, models.RoleDentist); err != nil {
		return models.Scan{}, err
	}

	scanID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return models.Scan{}, serr.ErrNotFound
	}

	scan, err := s.scans.GetByID(ctx, scanID)
	if err != nil {
		return models.Scan{}, fmt.Errorf("get scan: %w", err)
	}
	return scan, nil
}

// RenderReport строит PDF-отчёт по снимку. Права и поиск как у Get.
func (s *ScansService) RenderReport(ctx context.Context, caller models.Principal, id string) (Report, error) {
	scan, err := s.Get(ctx, caller, id)
	if err != nil {
		return Report{}, err
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, scan); err != nil {
		return Report{}, fmt.Errorf("render report: %w: %w", serr.ErrInternal, err)
	}

	return Report{
		Filename: fmt.Sprintf("scan-report-%s-%d.pdf", scan.ID, time.Now().UnixMilli()),
		Content:  buf.Bytes(),
	}, nil
}

// objectName строит ключ объекта вида <folder>/scan-<uuid><ext>.
func (s *ScansService) objectName(filename string) string {
	name := "scan-" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	if s.folder == "" {
		return name
	}
	return path.Join(s.folder, name)
}
