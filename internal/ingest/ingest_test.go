package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasets_StableOrder(t *testing.T) {
	names := Datasets()
	assert.Equal(t, []string{
		"attributes", "climate", "consumption", "coordinates",
		"market", "mobility", "municipalities", "poad",
		"population", "regions", "settlements",
	}, names)
}

func TestParseSettlementRow(t *testing.T) {
	row, err := parseSettlementRow([]string{"101", "Надым", "город", "89", "", "890"})
	require.NoError(t, err)
	assert.Equal(t, int64(101), row[0])
	assert.Equal(t, "Надым", row[1])
	assert.Equal(t, int64(89), row[3])
	assert.Nil(t, row[4])
	require.NotNil(t, row[5])
	assert.Equal(t, int64(890), *row[5].(*int64))
}

func TestParseSettlementRow_BadID(t *testing.T) {
	_, err := parseSettlementRow([]string{"abc", "Надым", "город", "89"})
	assert.Error(t, err)
}

func TestParseAttributeRow(t *testing.T) {
	row, err := parseAttributeRow([]string{"101", "да", "0", "true", "1"})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(101), true, false, true, true}, row)
}

func TestParseClimateRow(t *testing.T) {
	row, err := parseClimateRow([]string{"71916000", "2024", "1", "-22,4"})
	require.NoError(t, err)
	assert.Equal(t, "71916000", row[0])
	assert.Equal(t, int64(2024), row[1])
	require.NotNil(t, row[3])
	assert.InDelta(t, -22.4, *row[3].(*float64), 1e-9)

	// Null temperature cell survives as nil.
	row, err = parseClimateRow([]string{"71916000", "2024", "2", ""})
	require.NoError(t, err)
	assert.Nil(t, row[3])

	_, err = parseClimateRow([]string{"71916000", "2024", "13", "-5"})
	assert.Error(t, err)
}

func TestParseConsumptionRow(t *testing.T) {
	row, err := parseConsumptionRow([]string{"71916000", "2024", "9", "21 500,75", "sberindex"})
	require.NoError(t, err)
	require.NotNil(t, row[3])
	assert.InDelta(t, 21500.75, *row[3].(*float64), 1e-9)
	assert.Equal(t, "sberindex", row[4])

	// Source column is optional.
	row, err = parseConsumptionRow([]string{"71916000", "2024", "9", "100"})
	require.NoError(t, err)
	assert.Equal(t, "", row[4])
}

func TestParseMobilityRow(t *testing.T) {
	row, err := parseMobilityRow([]string{"Надымский район", "2024", "151,3"})
	require.NoError(t, err)
	assert.Equal(t, "Надымский район", row[0])
	assert.Equal(t, int64(2024), row[1])
	require.NotNil(t, row[2])
	assert.InDelta(t, 151.3, *row[2].(*float64), 1e-9)
}

func TestParsePOADRow_Bounds(t *testing.T) {
	row, err := parsePOADRow([]string{"101", "0,82"})
	require.NoError(t, err)
	assert.InDelta(t, 0.82, *row[1].(*float64), 1e-9)

	_, err = parsePOADRow([]string{"101", "1,5"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside [0,1]")
}

func TestParseCoordinateRow_RequiresBoth(t *testing.T) {
	row, err := parseCoordinateRow([]string{"101", "66,53", "66,61"})
	require.NoError(t, err)
	assert.InDelta(t, 66.53, row[1].(float64), 1e-9)

	_, err = parseCoordinateRow([]string{"101", "66,53", ""})
	assert.Error(t, err)
}

func TestParseOptFloat(t *testing.T) {
	v, err := parseOptFloat(" 1 234,5 ")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.InDelta(t, 1234.5, *v, 1e-9)

	v, err = parseOptFloat("")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = parseOptFloat("n/a")
	assert.Error(t, err)
}

func TestIsBlank(t *testing.T) {
	assert.True(t, isBlank([]string{"", "", ""}))
	assert.True(t, isBlank(nil))
	assert.False(t, isBlank([]string{"", "x"}))
}
