package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/report"
)

func sampleScan() models.Scan {
	email := "tech@oralvis.com"
	return models.Scan{
		ID:              uuid.New(),
		PatientName:     "Jane Doe",
		PatientID:       "P-001",
		ScanType:        "RGB",
		Region:          "Upper",
		ImageURL:        "https://cdn.example.com/oralvis/oralvis-scans/scan-1.png",
		UploadDate:      time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		UploadedByEmail: &email,
	}
}

func TestPDFRenderer_Render(t *testing.T) {
	var buf bytes.Buffer

	err := report.NewPDFRenderer("").Render(&buf, sampleScan())
	require.NoError(t, err)

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	require.Contains(t, string(out), "%%EOF")
	require.Contains(t, string(out), report.DefaultTitle)
}

func TestPDFRenderer_CustomTitle(t *testing.T) {
	var buf bytes.Buffer

	err := report.NewPDFRenderer("Clinic X - Report").Render(&buf, sampleScan())
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Clinic X - Report")
}

// без email загрузившего и с очень длинным URL (перенос строк)
func TestPDFRenderer_UnknownUploaderLongURL(t *testing.T) {
	scan := sampleScan()
	scan.UploadedByEmail = nil
	scan.ImageURL = "https://cdn.example.com/" + strings.Repeat("segment/", 400) + "scan.png"

	var buf bytes.Buffer
	require.NoError(t, report.NewPDFRenderer("").Render(&buf, scan))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
