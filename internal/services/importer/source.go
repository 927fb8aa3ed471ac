package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parse reads an upload. Files ending in .xlsx go through ParseXLSX, anything
// else is read as delimited text.
func Parse(filename string, r io.Reader) (*ParseResult, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ParseXLSX(r)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return ParseText(string(data))
}
