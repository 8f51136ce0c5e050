package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Значения по умолчанию, если ldflags не передавали (go run).
const (
	devVersion   = "dev"
	unknownBuild = "unknown"
)

// NewVersionCmd - команда oralvis version.
//
// Печатает версию клиента, дату сборки и адрес сервера, с которым он работает.
// В сеть команда не ходит.
func NewVersionCmd(buildVersion, buildDate string) *cobra.Command {
	if buildVersion == "" {
		buildVersion = devVersion
	}
	if buildDate == "" {
		buildDate = unknownBuild
	}
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию клиента и адрес сервера",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			server := DefaultServerURL
			if f := cmd.Flags().Lookup("server"); f != nil {
				server = f.Value.String()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "oralvis version=%s\nbuild_date=%s\nserver=%s\n", buildVersion, buildDate, server)
		},
	}
}
