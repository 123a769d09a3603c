package ingest

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// parseInt64 parses an integer cell. Empty cells are an error: callers
// that tolerate blanks use parseOptInt64.
func parseInt64(cell string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "ingest: parse integer %q", cell)
	}
	return v, nil
}

// parseOptInt64 parses an integer cell, mapping blank to nil.
func parseOptInt64(cell string) (*int64, error) {
	if strings.TrimSpace(cell) == "" {
		return nil, nil
	}
	v, err := parseInt64(cell)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseOptFloat parses a numeric cell, mapping blank to nil. Comma
// decimal separators from regional exports are accepted.
func parseOptFloat(cell string) (*float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, " ", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: parse number %q", cell)
	}
	return &v, nil
}

// parseBool maps the flag spellings seen in registry workbooks.
func parseBool(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "1", "true", "да", "yes":
		return true
	}
	return false
}
