package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWeights(t *testing.T) {
	require.NoError(t, ValidateWeights())

	var sum float64
	for _, w := range Weights() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestCompose_AllComponentsPresent(t *testing.T) {
	c := testCohort(t, false)
	in := Inputs{Scores: map[Component]Series{
		ComponentPOAD:          {1: 0.8, 2: 0.4, 3: 0.2},
		ComponentMarket:        {1: 0.6, 2: 0.5, 3: 0.1},
		ComponentConsumption:   {1: 0.7, 2: 0.3, 3: 0.2},
		ComponentAccessibility: {1: 0.9, 2: 0.5, 3: 0.3},
		ComponentClimate:       {1: 0.5, 2: 0.8, 3: 0.1},
		ComponentMobility:      {1: 0.4, 2: 0.6, 3: 0.2},
	}}

	records := Compose(c, in)
	require.Len(t, records, 3)

	top := records[0]
	assert.Equal(t, int64(1), top.SettlementID)
	want := 0.35*0.8 + 0.20*0.6 + 0.15*0.7 + 0.15*0.9 + 0.10*0.5 + 0.05*0.4
	assert.InDelta(t, want, top.NDIScore, 1e-4)
	assert.Equal(t, 1, top.NDIRank)
	assert.Equal(t, 3, records[2].NDIRank)
}

func TestCompose_MissingComponentDefaultsNeutral(t *testing.T) {
	c := testCohort(t, false)
	in := Inputs{Scores: map[Component]Series{
		ComponentPOAD: {1: 1.0, 2: 1.0, 3: 1.0},
	}}

	records := Compose(c, in)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.InDelta(t, 0.5, r.MarketScore, 1e-12)
		assert.InDelta(t, 0.5, r.MobilityScore, 1e-12)
		want := 0.35*1.0 + 0.65*0.5
		assert.InDelta(t, want, r.NDIScore, 1e-4)
	}
}

func TestCompose_AllNeutralMidIndex(t *testing.T) {
	// No data at all: every settlement sits exactly at the midpoint.
	c := testCohort(t, false)
	records := Compose(c, Inputs{Scores: map[Component]Series{}})
	require.Len(t, records, 3)
	for _, r := range records {
		assert.InDelta(t, 0.5, r.NDIScore, 1e-12)
		assert.InDelta(t, 5.0, r.NDI10, 1e-12)
		assert.Equal(t, 1, r.NDIRank)
		assert.Equal(t, "yellow", r.ColorNDI)
	}
}

func TestCompose_ScaleConsistency(t *testing.T) {
	c := testCohort(t, false)
	in := Inputs{Scores: map[Component]Series{
		ComponentPOAD:   {1: 0.123456, 2: 0.654321, 3: 0.999999},
		ComponentMarket: {1: 0.333333, 2: 0.111111, 3: 0.777777},
	}}

	for _, r := range Compose(c, in) {
		// Each scale is an independent rounding of the same quantity, so
		// they agree within the coarser precision.
		assert.InDelta(t, r.NDIScore*100, r.NDIScore100, 0.01+1e-9)
		assert.InDelta(t, r.NDIScore*10, r.NDI10, 0.01+1e-9)
	}
}

func TestCompose_DenseRankWithTies(t *testing.T) {
	c := testCohort(t, false)
	in := Inputs{Scores: map[Component]Series{
		ComponentPOAD: {1: 0.4, 2: 0.4, 3: 0.9},
	}}

	records := Compose(c, in)
	require.Len(t, records, 3)
	assert.Equal(t, int64(3), records[0].SettlementID)
	assert.Equal(t, 1, records[0].NDIRank)
	// Tied settlements share rank 2; ties ordered by settlement id.
	assert.Equal(t, int64(1), records[1].SettlementID)
	assert.Equal(t, 2, records[1].NDIRank)
	assert.Equal(t, int64(2), records[2].SettlementID)
	assert.Equal(t, 2, records[2].NDIRank)
}

func TestCompose_UnlinkedMemberStillScored(t *testing.T) {
	c := testCohort(t, true)
	records := Compose(c, Inputs{Scores: map[Component]Series{}})
	require.Len(t, records, 4)
	var found bool
	for _, r := range records {
		if r.SettlementID == 4 {
			found = true
			assert.InDelta(t, 0.5, r.NDIScore, 1e-12)
		}
	}
	assert.True(t, found)
}

func TestCompose_AttachesClimateAndMobilityAux(t *testing.T) {
	c := testCohort(t, false)
	hdd := 7200.0
	winter := -25.0
	in := Inputs{
		Scores: map[Component]Series{},
		Climate: map[int64]ClimateStats{
			1: {WinterTemp: &winter, HDD: &hdd, Category: "very_cold"},
		},
		MobilityKM: Series{1: 182.4},
	}

	records := Compose(c, in)
	for _, r := range records {
		switch r.SettlementID {
		case 1:
			require.NotNil(t, r.AvgHDDYearly)
			assert.InDelta(t, 7200.0, *r.AvgHDDYearly, 1e-9)
			assert.Equal(t, "very_cold", r.ClimateCategory)
			require.NotNil(t, r.MobilityIndexKM)
			assert.InDelta(t, 182.4, *r.MobilityIndexKM, 1e-9)
		default:
			assert.Nil(t, r.AvgHDDYearly)
			assert.Nil(t, r.MobilityIndexKM)
		}
	}
}

func TestColorBand(t *testing.T) {
	tests := []struct {
		ndi10 float64
		want  string
	}{
		{0.0, "red"},
		{2.99, "red"},
		{3.0, "orange"},
		{4.49, "orange"},
		{4.5, "yellow"},
		{6.49, "yellow"},
		{6.5, "green"},
		{10.0, "green"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, colorBand(tt.ndi10), "ndi10=%v", tt.ndi10)
	}
}
