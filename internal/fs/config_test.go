package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestLoadConfigMissingFile(t *testing.T) {
	withHome(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg)
}

func TestSaveAndLoadConfig(t *testing.T) {
	home := withHome(t)

	cfg := EnvConfig{
		LastTarget:    "ath79",
		LastSubtarget: "generic",
		BackupPath:    "/tmp/backup-2024.tar.gz",
	}
	require.NoError(t, SaveConfig(cfg))

	path := filepath.Join(home, ".openwrt-build", "openwrt-build.env")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "BACKUP_PATH=/tmp/backup-2024.tar.gz\nLAST_SUBTARGET=generic\nLAST_TARGET=ath79\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigSkipsCommentsAndMalformedLines(t *testing.T) {
	home := withHome(t)

	dir := filepath.Join(home, ".openwrt-build")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	content := "# saved by openwrt-build\n\nnot a pair\n ROUTER_IP = 192.168.1.1 \nTOH_URL=https://example.org/toh.gz?a=b\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openwrt-build.env"), []byte(content), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, EnvConfig{
		RouterIP: "192.168.1.1",
		TohURL:   "https://example.org/toh.gz?a=b",
	}, cfg)
}

func TestPaths(t *testing.T) {
	home := withHome(t)

	cache, err := CacheFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".openwrt-build", "sources", "toh.json"), cache)

	backups, err := BackupDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".openwrt-build", "backups"), backups)
}

func TestClone(t *testing.T) {
	var nilCfg EnvConfig
	assert.NotNil(t, nilCfg.Clone())

	src := EnvConfig{RouterIP: "10.0.0.1"}
	dst := src.Clone()
	dst[RouterIP] = "10.0.0.2"
	assert.Equal(t, "10.0.0.1", src[RouterIP])
}
