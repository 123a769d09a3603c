package index

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sberindex/ndi-cli/internal/cohort"
	"github.com/sberindex/ndi-cli/internal/model"
)

// Fixed component weights. Static policy: not configurable at runtime.
const (
	WeightPOAD          = 0.35
	WeightMarket        = 0.20
	WeightConsumption   = 0.15
	WeightAccessibility = 0.15
	WeightClimate       = 0.10
	WeightMobility      = 0.05
)

// neutralScore substitutes for any component with no surviving value:
// missing data is treated as unknown, never as the worst observation.
const neutralScore = 0.5

// Color band breakpoints on the 0-10 scale.
const (
	bandRed    = 3.0
	bandOrange = 4.5
	bandYellow = 6.5
)

// Weights returns the fixed weight of each component.
func Weights() map[Component]float64 {
	return map[Component]float64{
		ComponentPOAD:          WeightPOAD,
		ComponentMarket:        WeightMarket,
		ComponentConsumption:   WeightConsumption,
		ComponentAccessibility: WeightAccessibility,
		ComponentClimate:       WeightClimate,
		ComponentMobility:      WeightMobility,
	}
}

// ValidateWeights checks the weight invariant before any composition.
func ValidateWeights() error {
	var sum float64
	for _, w := range Weights() {
		if w < 0 {
			return eris.New("index: negative component weight")
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return eris.Errorf("index: weights sum to %.12f, want 1.0", sum)
	}
	return nil
}

// Inputs collects everything the composite scorer joins per settlement.
type Inputs struct {
	Scores     map[Component]Series
	Climate    map[int64]ClimateStats
	MobilityKM Series
}

// Compose joins the six component series, defaults every absent component
// to the neutral score, computes the weighted index at three independently
// rounded scales, assigns color bands and dense ranks, and emits one
// record per cohort member ordered by rank then settlement id.
func Compose(c *cohort.Cohort, in Inputs) []model.Record {
	records := make([]model.Record, 0, c.Size())
	unrounded := make([]float64, 0, c.Size())

	for _, m := range c.Members {
		poad := scoreOrNeutral(in.Scores[ComponentPOAD], m.Settlement.ID)
		market := scoreOrNeutral(in.Scores[ComponentMarket], m.Settlement.ID)
		consumption := scoreOrNeutral(in.Scores[ComponentConsumption], m.Settlement.ID)
		access := scoreOrNeutral(in.Scores[ComponentAccessibility], m.Settlement.ID)
		climate := scoreOrNeutral(in.Scores[ComponentClimate], m.Settlement.ID)
		mobility := scoreOrNeutral(in.Scores[ComponentMobility], m.Settlement.ID)

		ndi := WeightPOAD*poad +
			WeightMarket*market +
			WeightConsumption*consumption +
			WeightAccessibility*access +
			WeightClimate*climate +
			WeightMobility*mobility

		r := model.Record{
			SettlementID:   m.Settlement.ID,
			SettlementName: m.Settlement.Name,
			SettlementType: m.Settlement.Type,
			RegionName:     m.RegionName,
			IsArctic:       m.Attrs.IsArctic,
			IsRemote:       m.Attrs.IsRemote,
			IsSpecial:      m.Attrs.IsSpecial,
			IsSuburb:       m.Attrs.IsSuburb,

			POADScore:             poad,
			MarketScore:           market,
			ConsumptionScore:      consumption,
			AccessibilityScore:    access,
			ClimateScore:          climate,
			MobilityScore:         mobility,
			POADScore100:          roundTo(poad*100, 2),
			MarketScore100:        roundTo(market*100, 2),
			ConsumptionScore100:   roundTo(consumption*100, 2),
			AccessibilityScore100: roundTo(access*100, 2),
			ClimateScore100:       roundTo(climate*100, 2),
			MobilityScore100:      roundTo(mobility*100, 2),

			// Each scale is rounded from the unrounded index, never from
			// another rounded scale.
			NDIScore:    roundTo(ndi, 4),
			NDIScore100: roundTo(ndi*100, 2),
			NDI10:       roundTo(ndi*10, 2),
			ColorNDI:    colorBand(roundTo(ndi*10, 2)),
		}

		if stats, ok := in.Climate[m.Settlement.ID]; ok {
			r.AvgTempCelsius = stats.AvgTemp
			r.AvgTempWinterCelsius = stats.WinterTemp
			r.AvgTempSummerCelsius = stats.SummerTemp
			r.TempAmplitudeCelsius = stats.Amplitude
			r.AvgHDDYearly = stats.HDD
			r.ClimateCategory = stats.Category
			r.HeatingCostPct = stats.HeatingCostPct
		}
		if km, ok := in.MobilityKM[m.Settlement.ID]; ok {
			v := km
			r.MobilityIndexKM = &v
		}

		records = append(records, r)
		unrounded = append(unrounded, ndi)
	}

	rankRecords(records, unrounded)
	return records
}

func scoreOrNeutral(s Series, id int64) float64 {
	if v, ok := s[id]; ok {
		return v
	}
	return neutralScore
}

func colorBand(ndi10 float64) string {
	switch {
	case ndi10 < bandRed:
		return "red"
	case ndi10 < bandOrange:
		return "orange"
	case ndi10 < bandYellow:
		return "yellow"
	default:
		return "green"
	}
}

// rankRecords assigns dense ranks over the unrounded index, descending:
// equal indexes share a rank and the next distinct index takes the next
// integer. The slice ends up ordered by rank, ties by settlement id.
func rankRecords(records []model.Record, unrounded []float64) {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if unrounded[i] != unrounded[j] {
			return unrounded[i] > unrounded[j]
		}
		return records[i].SettlementID < records[j].SettlementID
	})

	ranked := make([]model.Record, 0, len(records))
	rank := 0
	prev := math.Inf(1)
	for _, i := range order {
		if unrounded[i] != prev {
			rank++
			prev = unrounded[i]
		}
		r := records[i]
		r.NDIRank = rank
		ranked = append(ranked, r)
	}
	copy(records, ranked)
}
