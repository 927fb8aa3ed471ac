package importer

import (
	"encoding/csv"
	"fmt"
	"strings"
)

const utf8BOM = "\uFEFF"

type ParseResult struct {
	Rows           []RawRow `json:"-"`
	Delimiter      string   `json:"delimiter"`
	Columns        []string `json:"columns"`
	UnknownColumns []string `json:"unknown_columns,omitempty"`
	// DroppedRows counts data lines that named neither a client nor a company.
	DroppedRows int `json:"dropped_rows"`
}

// ParseText turns delimited text into rows. The delimiter is a semicolon when
// the header line contains one, a comma otherwise.
func ParseText(text string) (*ParseResult, error) {
	text = strings.TrimPrefix(text, utf8BOM)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyFile
	}

	delim := ','
	if strings.Contains(lines[0], ";") {
		delim = ';'
	}

	header := splitLine(lines[0], delim)
	records := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		records = append(records, splitLine(line, delim))
	}

	res, err := buildRows(header, records)
	if err != nil {
		return nil, err
	}
	res.Delimiter = string(delim)
	return res, nil
}

func splitLine(line string, delim rune) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	fields, err := r.Read()
	if err != nil {
		fields = strings.Split(line, string(delim))
	}
	for i := range fields {
		fields[i] = unquote(strings.TrimSpace(fields[i]))
	}
	return fields
}

// unquote strips one pair of matching quote characters around s.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

func buildRows(header []string, records [][]string) (*ParseResult, error) {
	res := &ParseResult{}
	setters := make([]fieldSetter, len(header))
	seen := make(map[string]bool, len(header))

	for i, h := range header {
		name := canonicalColumn(NormalizeHeader(h))
		if name == "" {
			continue
		}
		setter, ok := columnTable[name]
		if !ok {
			res.UnknownColumns = append(res.UnknownColumns, name)
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		setters[i] = setter
		res.Columns = append(res.Columns, name)
	}

	if !seen[requiredColumn] {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, requiredColumn)
	}

	for _, rec := range records {
		var row RawRow
		for i, value := range rec {
			if i >= len(setters) || setters[i] == nil {
				continue
			}
			setters[i](&row, strings.TrimSpace(value))
		}
		if !row.HasClient() {
			res.DroppedRows++
			continue
		}
		row.Line = len(res.Rows) + 2
		res.Rows = append(res.Rows, row)
	}

	return res, nil
}
