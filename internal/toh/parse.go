package toh

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// maxLineSize bounds one row of the dump.
const maxLineSize = 1 << 20

var errNoHeader = errors.New("missing header row")

// Parse reads the gzip-compressed, ISO-8859-1 encoded, tab-separated dump
// published by openwrt.org.
func Parse(r io.Reader) (*Catalog, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, loadErr(StageDecompress, err)
	}
	defer gz.Close()

	decoded := charmap.ISO8859_1.NewDecoder().Reader(gz)
	catalog, err := parseTSV(decoded)
	if err != nil {
		if errors.Is(err, errNoHeader) || errors.Is(err, bufio.ErrTooLong) {
			return nil, loadErr(StageParse, err)
		}
		return nil, loadErr(StageDecompress, err)
	}
	return catalog, nil
}

// ParseTSV reads tab-separated UTF-8 text with a header row.
func ParseTSV(r io.Reader) (*Catalog, error) {
	catalog, err := parseTSV(r)
	if err != nil {
		return nil, loadErr(StageParse, err)
	}
	return catalog, nil
}

// parseTSV splits lines on tabs only. The dump is not quoted, so a '"' is an
// ordinary character (models like `"Nano" Station M2`).
func parseTSV(r io.Reader) (*Catalog, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var columns []string
	var records []Record
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if columns == nil {
			header := strings.Split(strings.TrimPrefix(line, "\ufeff"), "\t")
			columns = make([]string, len(header))
			for i, name := range header {
				columns[i] = strings.TrimSpace(name)
			}
			if !hasColumn(columns, FieldTarget) || !hasColumn(columns, FieldSubtarget) {
				return nil, fmt.Errorf("%w: header lacks %q or %q column", errNoHeader, FieldTarget, FieldSubtarget)
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		row := strings.Split(line, "\t")
		record := make(Record, len(columns))
		for i, column := range columns {
			if column == "" {
				continue
			}
			if i < len(row) {
				record[column] = row[i]
			} else {
				record[column] = ""
			}
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if columns == nil {
		return nil, errNoHeader
	}

	return NewCatalog(columns, records), nil
}

func hasColumn(columns []string, name string) bool {
	for _, column := range columns {
		if column == name {
			return true
		}
	}
	return false
}
