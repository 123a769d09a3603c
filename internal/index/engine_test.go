package index

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sberindex/ndi-cli/internal/model"
)

// memSource is an in-memory snapshot for engine tests.
type memSource struct {
	settlements []model.Settlement
	regions     []model.Region
	munis       []model.Municipality
	attrs       map[int64]model.Attributes

	market      []model.Observation
	consumption []model.Observation
	mobility    []model.Observation
	climate     []model.ClimateObservation
	poad        map[int64]float64
	access      map[int64]float64

	failConsumption bool
}

func (m *memSource) Settlements(context.Context) ([]model.Settlement, error) {
	return m.settlements, nil
}
func (m *memSource) Regions(context.Context) ([]model.Region, error) { return m.regions, nil }
func (m *memSource) Municipalities(context.Context) ([]model.Municipality, error) {
	return m.munis, nil
}
func (m *memSource) Attributes(context.Context) (map[int64]model.Attributes, error) {
	return m.attrs, nil
}
func (m *memSource) MarketAccess(context.Context) ([]model.Observation, error) {
	return m.market, nil
}
func (m *memSource) Consumption(context.Context) ([]model.Observation, error) {
	if m.failConsumption {
		return nil, eris.New("source unavailable")
	}
	return m.consumption, nil
}
func (m *memSource) Mobility(context.Context) ([]model.Observation, error) { return m.mobility, nil }
func (m *memSource) ClimateMonthly(context.Context) ([]model.ClimateObservation, error) {
	return m.climate, nil
}
func (m *memSource) POADScores(context.Context) (map[int64]float64, error) { return m.poad, nil }
func (m *memSource) AccessibilityScores(context.Context) (map[int64]float64, error) {
	return m.access, nil
}
func (m *memSource) Coordinates(context.Context) ([]model.Coordinates, error) { return nil, nil }
func (m *memSource) Population(context.Context) (map[int64]int64, error)      { return nil, nil }
func (m *memSource) Close() error                                             { return nil }

func newMemSource() *memSource {
	return &memSource{
		settlements: []model.Settlement{
			{ID: 1, Name: "Надым", Type: "город", RegionID: 89, MunicipalityDownID: ptrInt64(890)},
			{ID: 2, Name: "Уренгой", Type: "пгт", RegionID: 89, MunicipalityDownID: ptrInt64(891)},
			{ID: 3, Name: "Тикси", Type: "пгт", RegionID: 14, MunicipalityDownID: ptrInt64(140)},
		},
		regions: []model.Region{
			{ID: 89, Name: "Ямало-Ненецкий АО"},
			{ID: 14, Name: "Республика Саха (Якутия)"},
		},
		munis: []model.Municipality{
			{ID: 890, Name: "Надымский район", TerritoryID: "T890"},
			{ID: 891, Name: "Пуровский район", TerritoryID: "T891"},
			{ID: 140, Name: "Булунский улус", TerritoryID: "T140"},
		},
		attrs: map[int64]model.Attributes{
			1: {IsArctic: true},
			3: {IsArctic: true, IsRemote: true},
		},
		market: []model.Observation{
			{TerritoryID: "T890", Value: ptrFloat64(120)},
			{TerritoryID: "T891", Value: ptrFloat64(80)},
			{TerritoryID: "T140", Value: ptrFloat64(20)},
		},
		consumption: []model.Observation{
			{TerritoryID: "T890", Year: 2024, Month: 9, Value: ptrFloat64(42000)},
			{TerritoryID: "T891", Year: 2024, Month: 9, Value: ptrFloat64(30000)},
			{TerritoryID: "T140", Year: 2024, Month: 10, Value: ptrFloat64(18000)},
		},
		mobility: []model.Observation{
			{Municipality: "Надымский район", Year: 2024, Value: ptrFloat64(150)},
			{Municipality: "Пуровский район", Year: 2024, Value: ptrFloat64(90)},
			{Municipality: "Булунский улус", Year: 2024, Value: ptrFloat64(310)},
		},
		climate: climateFixture(),
		poad:    map[int64]float64{1: 0.82, 2: 0.64, 3: 0.31},
		access:  map[int64]float64{1: 0.9, 2: 0.7, 3: 0.2},
	}
}

func climateFixture() []model.ClimateObservation {
	obs := fullYear("T890", 2024, -22, 14)
	obs = append(obs, fullYear("T891", 2024, -18, 16)...)
	obs = append(obs, fullYear("T140", 2024, -34, 8)...)
	return obs
}

func TestEngineRun_FullPipeline(t *testing.T) {
	eng := NewEngine(newMemSource())
	records, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Ranked order: every settlement present exactly once, ranks start at 1.
	assert.Equal(t, 1, records[0].NDIRank)
	seen := map[int64]bool{}
	for _, r := range records {
		assert.False(t, seen[r.SettlementID])
		seen[r.SettlementID] = true
		assert.GreaterOrEqual(t, r.NDIScore, 0.0)
		assert.LessOrEqual(t, r.NDIScore, 1.0)
		assert.NotEmpty(t, r.ColorNDI)
	}

	// Settlement 1 dominates the heavy components and must rank first.
	assert.Equal(t, int64(1), records[0].SettlementID)
	assert.True(t, records[0].IsArctic)
	require.NotNil(t, records[0].AvgHDDYearly)
	require.NotNil(t, records[0].MobilityIndexKM)
	assert.InDelta(t, 150.0, *records[0].MobilityIndexKM, 1e-9)
}

func TestEngineRun_Deterministic(t *testing.T) {
	src := newMemSource()
	first, err := NewEngine(src).Run(context.Background())
	require.NoError(t, err)
	second, err := NewEngine(src).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngineRun_EmptySourcesAllNeutral(t *testing.T) {
	src := newMemSource()
	src.market = nil
	src.consumption = nil
	src.mobility = nil
	src.climate = nil
	src.poad = nil
	src.access = nil

	records, err := NewEngine(src).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.InDelta(t, 0.5, r.NDIScore, 1e-12)
		assert.Equal(t, 1, r.NDIRank)
	}
	// Neutral ties fall back to settlement id order.
	assert.Equal(t, int64(1), records[0].SettlementID)
	assert.Equal(t, int64(2), records[1].SettlementID)
	assert.Equal(t, int64(3), records[2].SettlementID)
}

func TestEngineRun_SourceErrorPropagates(t *testing.T) {
	src := newMemSource()
	src.failConsumption = true

	_, err := NewEngine(src).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load consumption")
}
