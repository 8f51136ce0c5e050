// Package cli реализует командный интерфейс (CLI) клиента OralVis.
//
// Пакет отвечает за:
//   - определение root-команды и набора подкоманд;
//   - разбор аргументов и флагов командной строки;
//   - загрузку сохранённого токена из ~/.oralvis/credentials.json;
//   - выполнение запросов к серверу и вывод результата пользователю.
//
// Точка входа пакета - функция Execute.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-oralvis/internal/agent/api"
	"github.com/IvanChernomyrdin/go-oralvis/internal/agent/config"
)

// DefaultServerURL - адрес сервера, если не задан --server и ORALVIS_SERVER.
const DefaultServerURL = "http://127.0.0.1:5000"

// ErrNotLoggedIn - в credentials.json нет токена.
var ErrNotLoggedIn = errors.New("not logged in, run: oralvis login")

// App содержит состояние CLI-приложения, разделяемое между командами.
type App struct {
	// ServerURL - базовый URL сервера OralVis.
	ServerURL string
	// Insecure отключает проверку TLS-сертификата (только dev).
	Insecure bool

	// CredsPath - путь к файлу с сохранённым токеном.
	CredsPath string
	// Creds - загруженные учётные данные. Заполняется в PersistentPreRunE.
	Creds *config.Credentials
}

// Client создаёт API-клиент с текущими настройками.
func (app *App) Client() *api.Client {
	var opts []api.Option
	if app.Insecure {
		opts = append(opts, api.WithInsecureTLS())
	}
	return NewAPIClient(app.ServerURL, opts...)
}

// Token возвращает сохранённый токен или ErrNotLoggedIn.
func (app *App) Token() (string, error) {
	if !app.Creds.LoggedIn() {
		return "", ErrNotLoggedIn
	}
	return app.Creds.Token, nil
}

// NewRootCmd создаёт root-команду CLI и регистрирует подкоманды.
//
// buildVersion и buildDate используются командой version.
func NewRootCmd(buildVersion, buildDate string) *cobra.Command {
	app := &App{}

	serverDefault := DefaultServerURL
	if v := os.Getenv("ORALVIS_SERVER"); v != "" {
		serverDefault = v
	}

	cmd := &cobra.Command{
		Use:   "oralvis",
		Short: "OralVis CLI: загрузка и просмотр стоматологических снимков",
		Long: `OralVis CLI.

Техник загружает снимки, дантист просматривает их и скачивает PDF-отчёты.

Примеры:
  oralvis register --email t@x.com --role technician
  oralvis login --email t@x.com
  oralvis upload --patient-name Jane --patient-id P1 --region upper --image ./scan.png
  oralvis list
  oralvis report <scan-id> --out report.pdf
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.CredsPath == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				app.CredsPath = p
			}

			creds, err := config.Load(app.CredsPath)
			if err != nil {
				return fmt.Errorf("load credentials: %w", err)
			}
			app.Creds = creds
			return nil
		},
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", serverDefault, "server base URL (env ORALVIS_SERVER)")
	cmd.PersistentFlags().BoolVar(&app.Insecure, "insecure", false, "не проверять TLS-сертификат сервера (только dev)")
	cmd.PersistentFlags().StringVar(&app.CredsPath, "credentials", "", "путь к credentials.json (по умолчанию ~/.oralvis/credentials.json)")

	cmd.AddCommand(NewRegisterCmd(app))
	cmd.AddCommand(NewLoginCmd(app))
	cmd.AddCommand(NewLogoutCmd(app))
	cmd.AddCommand(NewProfileCmd(app))
	cmd.AddCommand(NewUploadCmd(app))
	cmd.AddCommand(NewListCmd(app))
	cmd.AddCommand(NewMineCmd(app))
	cmd.AddCommand(NewGetCmd(app))
	cmd.AddCommand(NewReportCmd(app))
	cmd.AddCommand(NewVersionCmd(buildVersion, buildDate))

	return cmd
}

// Execute запускает обработку CLI-команд.
//
// При ошибке сообщение выводится в stderr, процесс завершается с кодом 1.
func Execute(buildVersion, buildDate string) {
	if err := NewRootCmd(buildVersion, buildDate).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
