package importer

import "errors"

var (
	ErrEmptyFile     = errors.New("empty or malformed file")
	ErrMissingColumn = errors.New("missing required column")
)
