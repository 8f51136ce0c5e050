// Package report рисует PDF-отчёт по снимку (go-pdf/fpdf).
package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
)

// DefaultTitle - заголовок отчёта, если в конфиге пусто.
const DefaultTitle = "OralVis Healthcare - Scan Report"

// Разметка страницы в пунктах (A4, 595x842).
const (
	left       = 100.0
	titleY     = 100.0
	fieldsY    = 150.0
	lineStep   = 20.0
	titleSize  = 20.0
	fieldsSize = 14.0
	dateLayout = "2006-01-02"
)

// PDFRenderer реализует service.ReportRenderer.
type PDFRenderer struct {
	title string
}

func NewPDFRenderer(title string) *PDFRenderer {
	if title == "" {
		title = DefaultTitle
	}
	return &PDFRenderer{title: title}
}

// Render пишет одностраничный (при длинном URL многостраничный) отчёт в w.
func (r *PDFRenderer) Render(w io.Writer, scan models.Scan) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(r.title, false)
	pdf.SetCreator("oralvis", false)
	pdf.SetAutoPageBreak(true, 50)
	pdf.AddPage()

	// встроенные шрифты в cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(left, titleY)
	pdf.CellFormat(0, titleSize, tr(r.title), "", 1, "L", false, 0, "")

	uploader := "unknown"
	if scan.UploadedByEmail != nil && *scan.UploadedByEmail != "" {
		uploader = *scan.UploadedByEmail
	}

	lines := []string{
		"Patient Name: " + scan.PatientName,
		"Patient ID: " + scan.PatientID,
		"Scan Type: " + scan.ScanType,
		"Region: " + scan.Region,
		"Upload Date: " + scan.UploadDate.Format(dateLayout),
		"Uploaded by: " + uploader,
	}

	pdf.SetFont("Helvetica", "", fieldsSize)
	y := fieldsY
	for _, line := range lines {
		pdf.SetXY(left, y)
		pdf.CellFormat(0, fieldsSize, tr(line), "", 1, "L", false, 0, "")
		y += lineStep
	}

	y += lineStep / 2
	pdf.SetXY(left, y)
	pdf.CellFormat(0, fieldsSize, "Scan Image:", "", 1, "L", false, 0, "")

	pageW, _ := pdf.GetPageSize()
	_, _, rightMargin, _ := pdf.GetMargins()
	pdf.SetXY(left, y+lineStep)
	pdf.MultiCell(pageW-left-rightMargin, fieldsSize+2, tr("Image URL: "+scan.ImageURL), "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
