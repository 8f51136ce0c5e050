package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRegisterCmd создаёт CLI-команду регистрации пользователя.
//
// Пример использования:
//
//	oralvis register --email t@x.com --role technician --password pw1
func NewRegisterCmd(app *App) *cobra.Command {
	var email, role string
	var pw passwordFlags

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Регистрация нового пользователя (technician или dentist)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := pw.resolve(cmd)
			if err != nil {
				return err
			}

			resp, err := app.Client().Register(email, password, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registration successful: %s (%s)\n", resp.User.Email, resp.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email for registration")
	cmd.Flags().StringVar(&role, "role", "", "technician|dentist")
	pw.register(cmd)
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("role")

	return cmd
}
