package utils_test

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/portseal/portseal/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte(`
[[forwards]]
name = "ssh"
local_addr = "127.0.0.1:2222"
remote_addr = "example.com:22"
`), 0o600))

	conf, err := utils.ReadConfig(path)
	require.NoError(t, err)
	require.Len(t, conf.Forwards, 1)

	_, err = utils.ReadConfig(filepath.Join(dir, "absent.toml"))
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("debug = true\n"), 0o600))

	_, err = utils.ReadConfig(path)
	require.Error(t, err)
}

func TestListener(t *testing.T) {
	t.Parallel()

	listener, err := utils.NewListener("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	defer listener.Close()

	go func() {
		conn, err := net.Dial("tcp", listener.Addr().String())
		if err == nil {
			conn.Close()
		}
	}()

	conn, err := listener.Accept()
	require.NoError(t, err)

	_, ok := conn.(*net.TCPConn)
	require.True(t, ok)
	require.NoError(t, conn.Close())
}
