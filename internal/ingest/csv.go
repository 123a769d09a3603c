// Package ingest loads the upstream source files (registry workbooks and
// regional statistics exports) into the snapshot tables.
package ingest

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// CSVOptions configures the delimited-file parser. Regional statistics
// exports commonly arrive semicolon-delimited in windows-1251.
type CSVOptions struct {
	Delimiter rune   // default ';'
	Encoding  string // IANA charset name; empty means UTF-8
	SkipRows  int    // number of header rows to skip
}

// ReadCSV parses a delimited file, transcoding from the configured
// charset, and returns all data rows with fields trimmed.
func ReadCSV(r io.Reader, opts CSVOptions) ([][]string, error) {
	if opts.Encoding != "" {
		enc, err := htmlindex.Get(opts.Encoding)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: unsupported charset %q", opts.Encoding)
		}
		r = enc.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	reader.Comma = ';'
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read csv row")
		}
		line++
		if line <= opts.SkipRows {
			continue
		}
		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
