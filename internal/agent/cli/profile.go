package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewProfileCmd показывает, кем является владелец сохранённого токена.
func NewProfileCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Показать пользователя текущего токена",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.Token()
			if err != nil {
				return err
			}

			claims, err := app.Client().Profile(token)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:      %s\n", claims.UserID)
			fmt.Fprintf(out, "email:   %s\n", claims.Email)
			fmt.Fprintf(out, "role:    %s\n", claims.Role)
			if claims.ExpiresAt > 0 {
				fmt.Fprintf(out, "expires: %s\n", time.Unix(claims.ExpiresAt, 0).Format(time.RFC3339))
			}
			return nil
		},
	}
}
