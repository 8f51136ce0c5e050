package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-oralvis/internal/agent/config"
)

// NewLoginCmd создаёт CLI-команду входа.
//
// Полученный токен сохраняется в credentials.json вместе с email и ролью.
//
//	oralvis login --email t@x.com
//	echo pw1 | oralvis login --email t@x.com --password-stdin
func NewLoginCmd(app *App) *cobra.Command {
	var email string
	var pw passwordFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Логин пользователя (сохранить bearer-токен)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := pw.resolve(cmd)
			if err != nil {
				return err
			}

			resp, err := app.Client().Login(email, password)
			if err != nil {
				return err
			}

			app.Creds = &config.Credentials{
				Token: resp.Token,
				Email: resp.User.Email,
				Role:  resp.User.Role,
			}
			if err := config.Save(app.CredsPath, app.Creds); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "login ok: %s (%s), token saved\n", resp.User.Email, resp.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email for login")
	pw.register(cmd)
	cmd.MarkFlagRequired("email")

	return cmd
}

// NewLogoutCmd удаляет сохранённый токен.
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Удалить сохранённый токен",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Clear(app.CredsPath); err != nil {
				return err
			}
			app.Creds = &config.Credentials{}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}
