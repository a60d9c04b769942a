package backup

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const Extension = ".tar.gz"

// Validate checks that path is a readable sysupgrade backup archive.
func Validate(path string) error {
	if !strings.HasSuffix(strings.ToLower(path), Extension) {
		return fmt.Errorf("backup file must have %s extension: %s", Extension, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat backup file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("backup path points to a directory: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer file.Close()

	return validateArchive(file)
}

func validateArchive(r io.Reader) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("backup file is not gzip compressed: %w", err)
	}
	defer gz.Close()

	if _, err := tar.NewReader(gz).Next(); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("backup archive is empty")
		}
		return fmt.Errorf("backup file is not a valid tar archive: %w", err)
	}
	return nil
}
