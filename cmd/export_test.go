package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sberindex/ndi-cli/internal/model"
)

func TestMarshalExport(t *testing.T) {
	doc := dashboardExport{
		GeneratedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Settlements: 1,
		Records: []model.Record{
			{SettlementID: 1, SettlementName: "Надым", NDIRank: 1, NDI10: 7.12, ColorNDI: "green"},
		},
	}

	data, err := marshalExport(doc, false)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), data[len(data)-1])

	var back dashboardExport
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 1, back.Settlements)
	require.Len(t, back.Records, 1)
	assert.Equal(t, "Надым", back.Records[0].SettlementName)
	assert.Equal(t, "green", back.Records[0].ColorNDI)
}

func TestMarshalExport_Pretty(t *testing.T) {
	doc := dashboardExport{Settlements: 0}

	data, err := marshalExport(doc, true)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  ")
}
