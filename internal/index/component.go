// Package index implements the Northern Development Index computation
// engine: per-component normalization with imputation fallbacks, climate
// aggregation, and the weighted composite scorer.
package index

import (
	"github.com/sberindex/ndi-cli/internal/cohort"
	"github.com/sberindex/ndi-cli/internal/model"
)

// Component identifies one of the six index inputs.
type Component string

const (
	ComponentPOAD          Component = "poad"
	ComponentMarket        Component = "market"
	ComponentConsumption   Component = "consumption"
	ComponentAccessibility Component = "accessibility"
	ComponentClimate       Component = "climate"
	ComponentMobility      Component = "mobility"
)

// halfYearWindow restricts monthly sources to the second half of the
// latest year present in the table, so all components describe the same
// recent period.
func halfYearWindow(obs []model.Observation) Window {
	return Window{Year: latestYear(obs), FromMonth: 7, ToMonth: 12}
}

// BuildMarket scores market access: static territory-keyed observations,
// regional fallback, cohort min-max.
func BuildMarket(c *cohort.Cohort, obs []model.Observation) Series {
	direct := directValues(c, obs, cohort.KeyTerritory, Window{})
	return minMax(fillRegional(c, direct))
}

// BuildConsumption scores consumption adequacy: monthly territory-keyed
// observations averaged over the recent half-year window, regional
// fallback, then ratio against the regional subsistence baseline.
func BuildConsumption(c *cohort.Cohort, obs []model.Observation, b *Baselines) Series {
	direct := directValues(c, obs, cohort.KeyTerritory, halfYearWindow(obs))
	return ratioToReference(c, fillRegional(c, direct), b)
}

// BuildMobility scores transport mobility: yearly observations joined by
// normalized municipality name, latest year only, regional fallback,
// cohort min-max. The filled raw kilometre values are returned alongside
// the scores for UI display.
func BuildMobility(c *cohort.Cohort, obs []model.Observation) (Series, Series) {
	direct := directValues(c, obs, cohort.KeyName, Window{Year: latestYear(obs)})
	filled := fillRegional(c, direct)
	return minMax(filled), filled
}

// LoadPreScored passes through a component delivered upstream as already
// normalized per-settlement scores. Settlements outside the cohort are
// ignored; values outside [0,1] violate the upstream contract and are
// dropped as absent rather than repaired.
func LoadPreScored(c *cohort.Cohort, scores map[int64]float64) Series {
	out := make(Series, len(scores))
	for _, m := range c.Members {
		v, ok := scores[m.Settlement.ID]
		if !ok || v < 0 || v > 1 {
			continue
		}
		out[m.Settlement.ID] = v
	}
	return out
}
