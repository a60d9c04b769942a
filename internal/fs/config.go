package fs

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type EnvConfig map[string]string

const (
	configDirName  = ".openwrt-build"
	configFileName = "openwrt-build.env"
	sourcesDirName = "sources"
	cacheFileName  = "toh.json"
	backupDirName  = "backups"
	logFileName    = "openwrt-build.log"
)

func LoadConfig() (EnvConfig, error) {
	cfg := EnvConfig{}

	path, err := ConfigFilePath()
	if err != nil {
		return cfg, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		cfg[key] = value
	}

	if err := scanner.Err(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func SaveConfig(cfg EnvConfig) error {
	path, err := ConfigFilePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	keys := make([]string, 0, len(cfg))
	for key := range cfg {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := strings.ReplaceAll(cfg[key], "\n", " ")
		if _, err := writer.WriteString(key + "=" + value + "\n"); err != nil {
			return err
		}
	}

	return writer.Flush()
}

// Clone returns an independent copy; a nil receiver yields an empty config.
func (c EnvConfig) Clone() EnvConfig {
	dst := make(EnvConfig, len(c))
	for key, value := range c {
		dst[key] = value
	}
	return dst
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, configDirName), nil
}

func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// CacheFilePath is where the downloaded hardware table is kept between runs.
func CacheFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sourcesDirName, cacheFileName), nil
}

// BackupDir holds backups downloaded from routers.
func BackupDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, backupDirName), nil
}

func LogFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}
