package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/htmlindex"
)

func TestReadCSV_SemicolonDefault(t *testing.T) {
	in := strings.NewReader("territory_id;year;month;value\n71916000;2024;7;21500,5\n")

	rows, err := ReadCSV(in, CSVOptions{SkipRows: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"71916000", "2024", "7", "21500,5"}, rows[0])
}

func TestReadCSV_Windows1251(t *testing.T) {
	enc, err := htmlindex.Get("windows-1251")
	require.NoError(t, err)
	raw, err := enc.NewEncoder().Bytes([]byte("Надымский район;2024;150\n"))
	require.NoError(t, err)

	rows, err := ReadCSV(bytes.NewReader(raw), CSVOptions{Encoding: "windows-1251"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Надымский район", rows[0][0])
}

func TestReadCSV_CustomDelimiterAndTrim(t *testing.T) {
	in := strings.NewReader("a, b ,c\n")

	rows, err := ReadCSV(in, CSVOptions{Delimiter: ','})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
}

func TestReadCSV_UnknownCharset(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("x"), CSVOptions{Encoding: "no-such-charset"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported charset")
}

func TestReadCSV_VariableFieldCounts(t *testing.T) {
	in := strings.NewReader("71916000;2024;7;21500\n71916000;2024\n")

	rows, err := ReadCSV(in, CSVOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 4)
	assert.Len(t, rows[1], 2)
}
