package toh

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type cacheFile struct {
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	Columns   []string  `json:"columns"`
	Records   []Record  `json:"records"`
}

// SaveCache writes catalog to path as JSON, replacing any previous copy.
func SaveCache(path, source string, catalog *Catalog) error {
	if catalog == nil {
		return errors.New("catalog is nil")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	data, err := json.Marshal(cacheFile{
		Source:    source,
		FetchedAt: time.Now().UTC(),
		Columns:   catalog.columns,
		Records:   catalog.records,
	})
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod cache file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

// LoadCache reads a catalog written by SaveCache. A missing file yields an
// error satisfying errors.Is(err, os.ErrNotExist).
func LoadCache(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", path, err)
	}
	if len(file.Records) == 0 {
		return nil, fmt.Errorf("cache %s holds no records", path)
	}

	return NewCatalog(file.Columns, file.Records), nil
}
