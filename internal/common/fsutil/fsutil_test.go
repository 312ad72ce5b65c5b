package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("ENDPOINTD_DIR", "/etc/endpointd")

	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"  ", ""},
		{"/abs/endpoint.yaml", "/abs/endpoint.yaml"},
		{"rel/endpoint.toml", "rel/endpoint.toml"},
		{"~", home},
		{"~/cfg/.env", filepath.Join(home, "cfg", ".env")},
		{"~other/x.yaml", "~other/x.yaml"},
		{"$ENDPOINTD_DIR/endpoint.yaml", "/etc/endpointd/endpoint.yaml"},
	}
	for _, tc := range cases {
		got, err := ExpandPath(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestRequireFile(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "endpoint.yaml")
	require.NoError(t, os.WriteFile(p, []byte("region: us-east-1\n"), 0o600))

	require.NoError(t, RequireFile(p))

	err := RequireFile(filepath.Join(d, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.Error(t, RequireFile(d))
}
