package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "twampy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tos: 46\nttl: 64\npadding: 100\ndo_not_fragment: true\ndscp: ef\n"), 0o644))

	d, err := Read(path)
	require.NoError(t, err)
	require.EqualValues(t, 46, d.TOS)
	require.Equal(t, 64, d.TTL)
	require.Equal(t, 100, d.Padding)
	require.True(t, d.DoNotFragment)
	require.Equal(t, "ef", d.DSCP)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read("/nonexistent/twampy.yaml")
	require.Error(t, err)
}

func TestReadDefaultsPaddingSentinel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "twampy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tos: 0\n"), 0o644))

	d, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, -1, d.Padding)
}
