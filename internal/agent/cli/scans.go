package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-oralvis/internal/agent/api"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/models"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/utils"
)

// NewUploadCmd загружает снимок (только technician).
//
//	oralvis upload --patient-name Jane --patient-id P1 --region upper --image ./scan.png
func NewUploadCmd(app *App) *cobra.Command {
	var req api.UploadRequest

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Загрузить снимок пациента",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.Token()
			if err != nil {
				return err
			}

			scan, err := app.Client().UploadScan(token, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scan uploaded: %s\n", scan.ID)
			printScan(cmd.OutOrStdout(), scan)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.PatientName, "patient-name", "", "patient name")
	cmd.Flags().StringVar(&req.PatientID, "patient-id", "", "patient id")
	cmd.Flags().StringVar(&req.Region, "region", "", "region (e.g. upper, lower)")
	cmd.Flags().StringVar(&req.ScanType, "scan-type", "", "scan type (default RGB)")
	cmd.Flags().StringVar(&req.ImagePath, "image", "", "path to the scan image")
	for _, f := range []string{"patient-name", "patient-id", "region", "image"} {
		cmd.MarkFlagRequired(f)
	}

	return cmd
}

// NewListCmd печатает все снимки (только dentist).
func NewListCmd(app *App) *cobra.Command {
	return newScansListCmd(app, "list", "Все снимки, новые сверху", (*api.Client).ListScans)
}

// NewMineCmd печатает снимки, загруженные текущим техником.
func NewMineCmd(app *App) *cobra.Command {
	return newScansListCmd(app, "mine", "Мои загруженные снимки", (*api.Client).MyScans)
}

func newScansListCmd(app *App, use, short string, fetch func(*api.Client, string) ([]models.Scan, error)) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.Token()
			if err != nil {
				return err
			}

			scans, err := fetch(app.Client(), token)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), scans)
			}
			if len(scans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no scans")
				return nil
			}
			printScanTable(cmd.OutOrStdout(), scans)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "вывести JSON")
	return cmd
}

// NewGetCmd печатает один снимок по id (только dentist).
func NewGetCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Показать снимок по ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.Token()
			if err != nil {
				return err
			}

			scan, err := app.Client().GetScan(token, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), scan)
			}
			printScan(cmd.OutOrStdout(), scan)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "вывести JSON")
	return cmd
}

// NewReportCmd скачивает PDF-отчёт по снимку (только dentist).
//
// Без --out файл сохраняется в текущую папку под именем, предложенным сервером.
func NewReportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Скачать PDF-отчёт по снимку",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.Token()
			if err != nil {
				return err
			}

			// пишем во временный файл рядом, чтобы при ошибке не оставить битый PDF
			dir := "."
			if out != "" {
				dir = filepath.Dir(out)
			}
			tmp, err := os.CreateTemp(dir, ".oralvis-report-*")
			if err != nil {
				return err
			}
			defer os.Remove(tmp.Name())

			name, err := app.Client().DownloadReport(token, args[0], tmp)
			if cerr := tmp.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			target := out
			if target == "" {
				target = name
			}
			if err := os.Rename(tmp.Name(), target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "report saved: %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "куда сохранить PDF")
	return cmd
}

func printScanTable(w io.Writer, scans []models.Scan) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATIENT\tPATIENT_ID\tTYPE\tREGION\tUPLOADED\tBY")
	for _, s := range scans {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.PatientName, s.PatientID, s.ScanType, s.Region,
			s.UploadDate.Local().Format(time.DateTime), uploader(s))
	}
	tw.Flush()
}

func printScan(w io.Writer, s models.Scan) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", s.ID)
	fmt.Fprintf(tw, "patient:\t%s (%s)\n", s.PatientName, s.PatientID)
	fmt.Fprintf(tw, "scan type:\t%s\n", s.ScanType)
	fmt.Fprintf(tw, "region:\t%s\n", s.Region)
	fmt.Fprintf(tw, "uploaded:\t%s by %s\n", s.UploadDate.Local().Format(time.DateTime), uploader(s))
	fmt.Fprintf(tw, "image:\t%s\n", s.ImageURL)
	tw.Flush()
}

func uploader(s models.Scan) string {
	return utils.Deref(s.UploadedByEmail, "unknown")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
