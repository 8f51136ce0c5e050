package cli_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-oralvis/internal/agent/cli"
	"github.com/IvanChernomyrdin/go-oralvis/internal/agent/config"
)

func newApp(t *testing.T, serverURL, token string) *cli.App {
	t.Helper()
	return &cli.App{
		ServerURL: serverURL,
		CredsPath: filepath.Join(t.TempDir(), "credentials.json"),
		Creds:     &config.Credentials{Token: token},
	}
}

// run выполняет команду и возвращает её вывод.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		// nil заставит cobra взять os.Args
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	prev := cli.ReadPassword
	cli.ReadPassword = func(*cobra.Command, bool) (string, error) { return pw, nil }
	t.Cleanup(func() { cli.ReadPassword = prev })
}

func mustLoad(t *testing.T, path string) *config.Credentials {
	t.Helper()
	c, err := config.Load(path)
	require.NoError(t, err)
	return c
}
