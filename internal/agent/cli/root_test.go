package cli_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-oralvis/internal/agent/cli"
)

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	root := cli.NewRootCmd("dev", "unknown")

	for _, name := range []string{"register", "login", "logout", "profile", "upload", "list", "mine", "get", "report", "version"} {
		c, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		require.Equal(t, name, c.Name())
	}
}

func TestRootCmd_LoadsCredentialsFromFlag(t *testing.T) {
	root := cli.NewRootCmd("dev", "unknown")
	creds := filepath.Join(t.TempDir(), "none.json")

	// файла нет: токена нет, запрос до сервера не доходит
	_, err := run(t, root, "--credentials", creds, "--server", "http://127.0.0.1:0", "profile")
	require.ErrorIs(t, err, cli.ErrNotLoggedIn)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, cli.NewVersionCmd("1.2.3", "2026-01-16"))
	require.NoError(t, err)
	require.Contains(t, out, "oralvis version=1.2.3")
	require.Contains(t, out, "build_date=2026-01-16")
	require.Contains(t, out, "server="+cli.DefaultServerURL)
}

// без ldflags
func TestVersionCmd_Defaults(t *testing.T) {
	out, err := run(t, cli.NewVersionCmd("", ""))
	require.NoError(t, err)
	require.Contains(t, out, "oralvis version=dev")
	require.Contains(t, out, "build_date=unknown")
}

// адрес сервера берётся из --server root-команды
func TestVersionCmd_ShowsServerFlag(t *testing.T) {
	root := cli.NewRootCmd("1.2.3", "2026-01-16")
	creds := filepath.Join(t.TempDir(), "none.json")

	out, err := run(t, root, "--credentials", creds, "--server", "https://scans.example.com", "version")
	require.NoError(t, err)
	require.Contains(t, out, "server=https://scans.example.com")
}
