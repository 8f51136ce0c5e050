package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/models"
)

// ErrNotImage возвращается до отправки, если файл не похож на изображение.
var ErrNotImage = errors.New("only image files are allowed")

// UploadRequest - поля формы загрузки снимка.
type UploadRequest struct {
	PatientName string
	PatientID   string
	ScanType    string // пусто: сервер подставит RGB
	Region      string
	ImagePath   string
}

// UploadScan отправляет снимок multipart-формой.
//
// POST /api/scans/upload
//
// Тип файла определяется по содержимому заранее, чтобы не гонять
// на сервер то, что он всё равно отклонит.
func (c *Client) UploadScan(token string, req UploadRequest) (models.Scan, error) {
	mt, err := mimetype.DetectFile(req.ImagePath)
	if err != nil {
		return models.Scan{}, fmt.Errorf("read image: %w", err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return models.Scan{}, fmt.Errorf("%w: %s is %s", ErrNotImage, req.ImagePath, mt.String())
	}

	f, err := os.Open(req.ImagePath)
	if err != nil {
		return models.Scan{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := [][2]string{
		{"patient_name", req.PatientName},
		{"patient_id", req.PatientID},
		{"region", req.Region},
	}
	if req.ScanType != "" {
		fields = append(fields, [2]string{"scan_type", req.ScanType})
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return models.Scan{}, err
		}
	}

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "scanImage",
		"filename": filepath.Base(req.ImagePath),
	}))
	hdr.Set("Content-Type", mt.String())
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return models.Scan{}, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return models.Scan{}, fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.Scan{}, err
	}

	r, err := c.newRequest(http.MethodPost, "/api/scans/upload", &body, token)
	if err != nil {
		return models.Scan{}, err
	}
	r.Header.Set("Content-Type", mw.FormDataContentType())

	var resp models.ScanResponse
	err = c.do(r, &resp)
	return resp.Scan, err
}

// ListScans возвращает все снимки (только для дантиста).
//
// GET /api/scans/list
func (c *Client) ListScans(token string) ([]models.Scan, error) {
	var resp models.ScansResponse
	err := c.GetJSON("/api/scans/list", &resp, token)
	return resp.Scans, err
}

// MyScans возвращает снимки, загруженные текущим техником.
//
// GET /api/scans/mine
func (c *Client) MyScans(token string) ([]models.Scan, error) {
	var resp models.ScansResponse
	err := c.GetJSON("/api/scans/mine", &resp, token)
	return resp.Scans, err
}

// GetScan возвращает один снимок по id.
//
// GET /api/scans/{id}
func (c *Client) GetScan(token, id string) (models.Scan, error) {
	var resp models.ScanResponse
	err := c.GetJSON("/api/scans/"+url.PathEscape(id), &resp, token)
	return resp.Scan, err
}

// DownloadReport пишет PDF-отчёт по снимку в w и возвращает имя файла,
// предложенное сервером в Content-Disposition.
//
// GET /api/scans/{id}/pdf
func (c *Client) DownloadReport(token, id string, w io.Writer) (string, error) {
	r, err := c.newRequest(http.MethodGet, "/api/scans/"+url.PathEscape(id)+"/pdf", nil, token)
	if err != nil {
		return "", err
	}
	r.Header.Set("Accept", "application/pdf")

	res, err := c.http.Do(r)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", readAPIErrorBody(res)
	}

	if _, err := io.Copy(w, res.Body); err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	return reportFilename(res.Header.Get("Content-Disposition"), id), nil
}

func reportFilename(disposition, id string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := filepath.Base(params["filename"]); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "scan-report-" + id + ".pdf"
}
