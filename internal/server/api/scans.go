// HTTP-хендлеры снимков: загрузка, списки, просмотр, PDF-отчёт
package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/middleware"
	smodels "github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/service"
	serr "github.com/IvanChernomyrdin/go-oralvis/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/models"
)

// Имена полей multipart-формы загрузки.
const (
	FieldImage       = "scanImage"
	FieldPatientName = "patient_name"
	FieldPatientID   = "patient_id"
	FieldScanType    = "scan_type"
	FieldRegion      = "region"
)

const (
	// formOverhead - запас на текстовые поля и заголовки multipart сверх лимита изображения.
	formOverhead = 1 << 20
	// maxFieldBytes - лимит одного текстового поля формы.
	maxFieldBytes = 64 << 10
)

// UploadScan принимает multipart-форму со снимком.
//
// Файл из части scanImage пишется во временную папку, проверяется размер
// и тип содержимого (только image/*), затем передаётся в сервис.
// Временный файл удаляется при любом исходе.
//
// @Summary      Upload scan
// @Description  Technician only. Multipart form with patient fields and the scanImage file (image/*, up to 5 MiB).
// @Tags         scans
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        patient_name formData string true  "Patient name"
// @Param        patient_id   formData string true  "Patient ID"
// @Param        scan_type    formData string false "Scan type (default RGB)"
// @Param        region       formData string true  "Region"
// @Param        scanImage    formData file   true  "Scan image"
// @Success      201 {object} models.ScanResponse
// @Failure      400 {object} models.ErrorResponse "Validation error, not an image or too large"
// @Failure      401 {object} models.ErrorResponse "No token provided"
// @Failure      403 {object} models.ErrorResponse "Technicians only"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/scans/upload [post]
func (h *Handler) UploadScan(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, serr.ErrUnauthorized)
		return
	}
	// чужая роль: тело даже не читаем
	if err := service.Authorize(p, smodels.RoleTechnician); err != nil {
		h.writeServiceError(w, "upload scan", err)
		return
	}

	meta, image, err := h.readUploadForm(w, r)
	if image.Path != "" {
		// сервис удаляет файл сам после загрузки в хранилище, тут подчищаем остальные случаи
		defer os.Remove(image.Path)
	}
	if err != nil {
		h.writeServiceError(w, "upload scan", err)
		return
	}

	scan, err := h.Svc.Scans.Upload(r.Context(), p, meta, image)
	if err != nil {
		h.writeServiceError(w, "upload scan", err)
		return
	}

	writeJSON(w, http.StatusCreated, models.ScanResponse{
		Message: "Scan uploaded successfully",
		Scan:    scanView(scan),
	})
}

// readUploadForm разбирает multipart-поток без буферизации файла в памяти.
// Если файл уже записан на диск, image.Path заполнен даже при ошибке.
func (h *Handler) readUploadForm(w http.ResponseWriter, r *http.Request) (service.ScanMeta, service.ImageFile, error) {
	var (
		meta  service.ScanMeta
		image service.ImageFile
	)

	r.Body = http.MaxBytesReader(w, r.Body, h.Uploads.MaxImageBytes+formOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		return meta, image, fmt.Errorf("%w: expected multipart/form-data", serr.ErrInvalidInput)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return meta, image, bodyError(err)
		}

		switch part.FormName() {
		case FieldImage:
			if image.Path != "" {
				part.Close()
				return meta, image, fmt.Errorf("%w: only one %s is allowed", serr.ErrInvalidInput, FieldImage)
			}
			image, err = h.stageImage(part)
		case FieldPatientName:
			meta.PatientName, err = readField(part)
		case FieldPatientID:
			meta.PatientID, err = readField(part)
		case FieldScanType:
			meta.ScanType, err = readField(part)
		case FieldRegion:
			meta.Region, err = readField(part)
		default:
			_, err = io.Copy(io.Discard, part)
		}
		part.Close()
		if err != nil {
			return meta, image, err
		}
	}

	return meta, image, nil
}

// stageImage пишет часть формы во временный файл и проверяет размер и тип.
func (h *Handler) stageImage(part *multipart.Part) (service.ImageFile, error) {
	filename := ""
	if name := part.FileName(); name != "" {
		filename = filepath.Base(name)
	}

	if err := os.MkdirAll(h.Uploads.StagingDir, 0o755); err != nil {
		return service.ImageFile{}, fmt.Errorf("create staging dir: %w: %w", serr.ErrInternal, err)
	}
	f, err := os.CreateTemp(h.Uploads.StagingDir, "scan-*")
	if err != nil {
		return service.ImageFile{}, fmt.Errorf("create staged file: %w: %w", serr.ErrInternal, err)
	}
	image := service.ImageFile{Path: f.Name(), Filename: filename}

	n, copyErr := io.Copy(f, io.LimitReader(part, h.Uploads.MaxImageBytes+1))
	closeErr := f.Close()
	if copyErr != nil {
		return image, bodyError(copyErr)
	}
	if closeErr != nil {
		return image, fmt.Errorf("close staged file: %w: %w", serr.ErrInternal, closeErr)
	}

	if n > h.Uploads.MaxImageBytes {
		return image, fmt.Errorf("%w: image exceeds %d bytes", serr.ErrPayloadTooLarge, h.Uploads.MaxImageBytes)
	}
	image.Size = n
	if n == 0 {
		// пустой файл равен отсутствию файла, сервис вернёт ErrInvalidInput
		return image, nil
	}

	mt, err := mimetype.DetectFile(image.Path)
	if err != nil {
		return image, fmt.Errorf("detect content type: %w: %w", serr.ErrInternal, err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return image, serr.ErrUnsupportedMedia
	}
	image.ContentType = mt.String()
	if filepath.Ext(image.Filename) == "" {
		image.Filename += mt.Extension()
	}
	return image, nil
}

func readField(part io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
	if err != nil {
		return "", bodyError(err)
	}
	if len(b) > maxFieldBytes {
		return "", fmt.Errorf("%w: form field too long", serr.ErrInvalidInput)
	}
	return string(b), nil
}

// bodyError отличает превышение лимита тела от битого multipart.
func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: request body exceeds %d bytes", serr.ErrPayloadTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%w: malformed multipart body", serr.ErrInvalidInput)
}

// ListScans возвращает все снимки.
//
// @Summary      List scans
// @Description  Dentist only. Newest first, with uploader email.
// @Tags         scans
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} models.ScansResponse
// @Failure      401 {object} models.ErrorResponse "No token provided"
// @Failure      403 {object} models.ErrorResponse "Dentists only"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/scans/list [get]
func (h *Handler) ListScans(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, serr.ErrUnauthorized)
		return
	}

	scans, err := h.Svc.Scans.List(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, "list scans", err)
		return
	}
	writeJSON(w, http.StatusOK, models.ScansResponse{Scans: scanViews(scans)})
}

// MyScans возвращает снимки, загруженные текущим техником.
//
// @Summary      List own scans
// @Tags         scans
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} models.ScansResponse
// @Failure      401 {object} models.ErrorResponse "No token provided"
// @Failure      403 {object} models.ErrorResponse "Technicians only"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/scans/mine [get]
func (h *Handler) MyScans(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, serr.ErrUnauthorized)
		return
	}

	scans, err := h.Svc.Scans.ListMine(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, "list own scans", err)
		return
	}
	writeJSON(w, http.StatusOK, models.ScansResponse{Scans: scanViews(scans)})
}

// GetScan возвращает один снимок по id (только для дантиста).
//
// @Summary      Get scan
// @Tags         scans
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Scan ID"
// @Success      200 {object} models.ScanResponse
// @Failure      403 {object} models.ErrorResponse "Dentists only"
// @Failure      404 {object} models.ErrorResponse "Scan not found"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/scans/{id} [get]
func (h *Handler) GetScan(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, serr.ErrUnauthorized)
		return
	}

	scan, err := h.Svc.Scans.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, "get scan", err)
		return
	}
	writeJSON(w, http.StatusOK, models.ScanResponse{Scan: scanView(scan)})
}

// ScanReport отдаёт PDF-отчёт вложением.
//
// @Summary      Scan PDF report
// @Tags         scans
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Scan ID"
// @Success      200 {file} file
// @Failure      403 {object} models.ErrorResponse "Dentists only"
// @Failure      404 {object} models.ErrorResponse "Scan not found"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/scans/{id}/pdf [get]
func (h *Handler) ScanReport(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, serr.ErrUnauthorized)
		return
	}

	rep, err := h.Svc.Scans.RenderReport(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, "render report", err)
		return
	}

	w.Header().Set(ContentType, "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rep.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(rep.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(rep.Content); err != nil {
		h.Log.Sugar().Warnw("write report failed", "error", err)
	}
}
