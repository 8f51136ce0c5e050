package cli_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-oralvis/internal/agent/cli"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/models"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/utils"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func sampleScan() models.Scan {
	return models.Scan{
		ID:              "s1",
		PatientName:     "Jane",
		PatientID:       "P1",
		ScanType:        "RGB",
		Region:          "upper",
		ImageURL:        "https://cdn.example.com/oralvis/scan-1.png",
		UploadDate:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UploadedByEmail: utils.Ptr("t@x.com"),
	}
}

func TestUploadCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/scans/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "Jane", r.FormValue("patient_name"))
		require.Equal(t, "IOPA", r.FormValue("scan_type"))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.ScanResponse{Message: "Scan uploaded successfully", Scan: sampleScan()})
	}))
	defer srv.Close()

	img := filepath.Join(t.TempDir(), "jane.png")
	require.NoError(t, os.WriteFile(img, pngBytes, 0o600))

	out, err := run(t, cli.NewUploadCmd(newApp(t, srv.URL, "tok-A")),
		"--patient-name", "Jane", "--patient-id", "P1", "--region", "upper",
		"--scan-type", "IOPA", "--image", img)
	require.NoError(t, err)
	require.Contains(t, out, "scan uploaded: s1")
	require.Contains(t, out, "https://cdn.example.com/oralvis/scan-1.png")
}

func TestUploadCmd_RequiresLogin(t *testing.T) {
	_, err := run(t, cli.NewUploadCmd(newApp(t, "http://127.0.0.1:0", "")),
		"--patient-name", "Jane", "--patient-id", "P1", "--region", "upper", "--image", "x.png")
	require.ErrorIs(t, err, cli.ErrNotLoggedIn)
}

func TestListCmd_Table(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/scans/list", r.URL.Path)
		noEmail := sampleScan()
		noEmail.ID = "s2"
		noEmail.UploadedByEmail = nil
		json.NewEncoder(w).Encode(models.ScansResponse{Scans: []models.Scan{sampleScan(), noEmail}})
	}))
	defer srv.Close()

	out, err := run(t, cli.NewListCmd(newApp(t, srv.URL, "tok-B")))
	require.NoError(t, err)
	require.Contains(t, out, "PATIENT_ID")
	require.Contains(t, out, "s1")
	require.Contains(t, out, "t@x.com")
	require.Contains(t, out, "unknown")
}

func TestListCmd_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(models.ErrorResponse{Error: "forbidden"})
	}))
	defer srv.Close()

	_, err := run(t, cli.NewListCmd(newApp(t, srv.URL, "tok-A")))
	require.ErrorContains(t, err, "forbidden")
}

func TestMineCmd_EmptyAndJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/scans/mine", r.URL.Path)
		json.NewEncoder(w).Encode(models.ScansResponse{Scans: []models.Scan{}})
	}))
	defer srv.Close()

	out, err := run(t, cli.NewMineCmd(newApp(t, srv.URL, "tok-A")))
	require.NoError(t, err)
	require.Contains(t, out, "no scans")

	out, err = run(t, cli.NewMineCmd(newApp(t, srv.URL, "tok-A")), "--json")
	require.NoError(t, err)
	require.JSONEq(t, `[]`, out)
}

func TestGetCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/scans/s1", r.URL.Path)
		json.NewEncoder(w).Encode(models.ScanResponse{Scan: sampleScan()})
	}))
	defer srv.Close()

	out, err := run(t, cli.NewGetCmd(newApp(t, srv.URL, "tok-B")), "s1")
	require.NoError(t, err)
	require.Contains(t, out, "Jane (P1)")

	out, err = run(t, cli.NewGetCmd(newApp(t, srv.URL, "tok-B")), "s1", "--json")
	require.NoError(t, err)
	var got models.Scan
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, "s1", got.ID)
}

func TestGetCmd_RequiresID(t *testing.T) {
	_, err := run(t, cli.NewGetCmd(newApp(t, "http://127.0.0.1:0", "tok")))
	require.Error(t, err)
}

func TestReportCmd_SavesFile(t *testing.T) {
	pdf := []byte("%PDF-1.3 fake %%EOF")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/scans/s1/pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="scan-report-s1-1.pdf"`)
		w.Write(pdf)
	}))
	defer srv.Close()

	target := filepath.Join(t.TempDir(), "r.pdf")
	out, err := run(t, cli.NewReportCmd(newApp(t, srv.URL, "tok-B")), "s1", "--out", target)
	require.NoError(t, err)
	require.Contains(t, out, "report saved: "+target)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, pdf, got)
}

func TestReportCmd_ErrorLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.ErrorResponse{Error: "not found"})
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := run(t, cli.NewReportCmd(newApp(t, srv.URL, "tok-B")), "nope", "--out", filepath.Join(dir, "r.pdf"))
	require.ErrorContains(t, err, "not found")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
