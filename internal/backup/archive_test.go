package backup

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleArchive(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	files := map[string]string{
		"etc/config/network":  "config interface 'lan'\n\toption proto 'static'\n",
		"etc/config/wireless": "config wifi-device 'radio0'\n",
	}
	for _, name := range []string{"etc/config/network", "etc/config/wireless"} {
		body := files[name]
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o600, Size: int64(len(body))}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestValidate(t *testing.T) {
	path := writeFile(t, "backup-OpenWrt-2024-05-01.tar.gz", sampleArchive(t))
	assert.NoError(t, Validate(path))

	upper := writeFile(t, "BACKUP.TAR.GZ", sampleArchive(t))
	assert.NoError(t, Validate(upper))
}

func TestValidateRejects(t *testing.T) {
	t.Run("extension", func(t *testing.T) {
		path := writeFile(t, "backup.zip", sampleArchive(t))
		err := Validate(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".tar.gz")
	})

	t.Run("missing", func(t *testing.T) {
		err := Validate(filepath.Join(t.TempDir(), "absent.tar.gz"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "dir.tar.gz")
		require.NoError(t, os.Mkdir(dir, 0o700))
		assert.Error(t, Validate(dir))
	})

	t.Run("not gzip", func(t *testing.T) {
		path := writeFile(t, "plain.tar.gz", []byte("config system\n"))
		err := Validate(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gzip")
	})

	t.Run("empty tar", func(t *testing.T) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		require.NoError(t, tar.NewWriter(gz).Close())
		require.NoError(t, gz.Close())

		path := writeFile(t, "empty.tar.gz", buf.Bytes())
		err := Validate(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})
}
