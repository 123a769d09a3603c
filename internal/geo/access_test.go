package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sberindex/ndi-cli/internal/model"
)

func defaultParams() Params {
	return Params{HubMinPopulation: 10000, DecayKM: 500}
}

func TestHaversineKM(t *testing.T) {
	// Salekhard to Novy Urengoy, roughly 460 km.
	d := haversineKM(66.5299, 66.6136, 66.0839, 76.6810)
	assert.InDelta(t, 460, d, 30)

	assert.InDelta(t, 0, haversineKM(66.0, 70.0, 66.0, 70.0), 0.001)
}

func TestBuildAccessibility_HubGetsTopScore(t *testing.T) {
	coords := []model.Coordinates{
		{SettlementID: 1, Latitude: 66.53, Longitude: 66.61}, // hub
		{SettlementID: 2, Latitude: 66.08, Longitude: 76.68}, // ~460 km out
		{SettlementID: 3, Latitude: 71.64, Longitude: 128.87}, // far out
	}
	pop := map[int64]int64{1: 45000, 2: 5000, 3: 4000}

	res, err := BuildAccessibility(coords, pop, defaultParams())
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, res.Hubs)
	assert.InDelta(t, 0.0, res.Distances[1], 0.001)
	assert.InDelta(t, 1.0, res.Scores[1], 1e-9)
	assert.InDelta(t, 0.0, res.Scores[3], 1e-9)
	assert.Greater(t, res.Scores[2], res.Scores[3])
	assert.Greater(t, res.Distances[3], res.Distances[2])
}

func TestBuildAccessibility_NearestOfSeveralHubs(t *testing.T) {
	coords := []model.Coordinates{
		{SettlementID: 1, Latitude: 66.0, Longitude: 66.0},
		{SettlementID: 2, Latitude: 68.0, Longitude: 73.0},
		{SettlementID: 3, Latitude: 66.2, Longitude: 66.5},
	}
	pop := map[int64]int64{1: 20000, 2: 30000}

	res, err := BuildAccessibility(coords, pop, defaultParams())
	require.NoError(t, err)

	// Settlement 3 sits next to hub 1, not hub 2.
	near := haversineKM(66.2, 66.5, 66.0, 66.0)
	assert.InDelta(t, near, res.Distances[3], 0.001)
}

func TestBuildAccessibility_NoHubsFallsBackToNeighbour(t *testing.T) {
	coords := []model.Coordinates{
		{SettlementID: 1, Latitude: 66.0, Longitude: 66.0},
		{SettlementID: 2, Latitude: 66.5, Longitude: 67.0},
	}
	pop := map[int64]int64{1: 500, 2: 800}

	res, err := BuildAccessibility(coords, pop, defaultParams())
	require.NoError(t, err)

	assert.Empty(t, res.Hubs)
	// Symmetric pair: same distance both ways, flat curve passes raw through.
	assert.InDelta(t, res.Distances[1], res.Distances[2], 0.001)
	assert.InDelta(t, res.Scores[1], res.Scores[2], 1e-9)
	assert.Greater(t, res.Scores[1], 0.0)
	assert.LessOrEqual(t, res.Scores[1], 1.0)
}

func TestBuildAccessibility_SingleIsolatedSettlement(t *testing.T) {
	coords := []model.Coordinates{{SettlementID: 1, Latitude: 70.0, Longitude: 80.0}}
	pop := map[int64]int64{1: 300}

	_, err := BuildAccessibility(coords, pop, defaultParams())
	assert.Error(t, err)
}

func TestBuildAccessibility_InvalidParams(t *testing.T) {
	coords := []model.Coordinates{{SettlementID: 1, Latitude: 70.0, Longitude: 80.0}}

	_, err := BuildAccessibility(coords, nil, Params{HubMinPopulation: 0, DecayKM: 500})
	assert.Error(t, err)

	_, err = BuildAccessibility(coords, nil, Params{HubMinPopulation: 10000, DecayKM: 0})
	assert.Error(t, err)

	_, err = BuildAccessibility(nil, nil, defaultParams())
	assert.Error(t, err)
}
