package index

import (
	"math"

	"github.com/sberindex/ndi-cli/internal/cohort"
	"github.com/sberindex/ndi-cli/internal/model"
)

// Series maps settlement id to a numeric value. A missing key means the
// value is absent for that settlement; the composite scorer decides what
// absence means.
type Series map[int64]float64

// Window bounds the observation periods a component aggregates over.
// Zero fields mean "no restriction" (static sources).
type Window struct {
	Year      int
	FromMonth int
	ToMonth   int
}

func (w Window) contains(year, month int) bool {
	if w.Year != 0 && year != w.Year {
		return false
	}
	if w.FromMonth != 0 && (month < w.FromMonth || month > w.ToMonth) {
		return false
	}
	return true
}

// latestYear returns the most recent year present in the observations,
// or 0 when the table is empty or undated.
func latestYear(obs []model.Observation) int {
	year := 0
	for _, o := range obs {
		if o.Year > year {
			year = o.Year
		}
	}
	return year
}

// directValues resolves each cohort member's raw observations through the
// given join strategy, restricts them to the window, and averages. Members
// whose key is empty or has no surviving observation stay absent.
func directValues(c *cohort.Cohort, obs []model.Observation, kind cohort.KeyKind, w Window) Series {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, o := range obs {
		if o.Value == nil || !w.contains(o.Year, o.Month) {
			continue
		}
		key := o.TerritoryID
		if kind == cohort.KeyName {
			key = cohort.NormalizeMunicipality(o.Municipality)
		}
		if key == "" {
			continue
		}
		sums[key] += *o.Value
		counts[key]++
	}

	out := make(Series)
	for _, m := range c.Members {
		key := m.Key(kind)
		if key == "" {
			continue
		}
		if n := counts[key]; n > 0 {
			out[m.Settlement.ID] = sums[key] / float64(n)
		}
	}
	return out
}

// fillRegional substitutes the mean of same-region direct values for every
// member without one. A member whose region has no peers with a direct
// value stays absent. Accumulation walks members in cohort order so float
// summation is deterministic across runs.
func fillRegional(c *cohort.Cohort, direct Series) Series {
	regionSums := make(map[int64]float64)
	regionCounts := make(map[int64]int)
	for _, m := range c.Members {
		if v, ok := direct[m.Settlement.ID]; ok {
			regionSums[m.Settlement.RegionID] += v
			regionCounts[m.Settlement.RegionID]++
		}
	}

	out := make(Series, len(direct))
	for _, m := range c.Members {
		id := m.Settlement.ID
		if v, ok := direct[id]; ok {
			out[id] = v
			continue
		}
		if n := regionCounts[m.Settlement.RegionID]; n > 0 {
			out[id] = regionSums[m.Settlement.RegionID] / float64(n)
		}
	}
	return out
}

// minMax rescales the series to [0,1] using the cohort's own extremes.
// A degenerate range (max == min) makes the transform undefined: the whole
// series comes back absent rather than NaN, so the neutral default applies.
func minMax(s Series) Series {
	if len(s) == 0 {
		return Series{}
	}
	lo, hi := seriesRange(s)
	if hi == lo {
		return Series{}
	}
	out := make(Series, len(s))
	for id, v := range s {
		out[id] = (v - lo) / (hi - lo)
	}
	return out
}

// inverseMinMax is minMax flipped: the cohort maximum maps to 0 and the
// minimum to 1. Used for penalty-style inputs such as heating degree days.
func inverseMinMax(s Series) Series {
	scaled := minMax(s)
	for id, v := range scaled {
		scaled[id] = 1 - v
	}
	return scaled
}

// ratioCap bounds the ratio-to-reference transform: values at or above
// twice the regional baseline all score 1.0.
const ratioCap = 2.0

// ratioToReference scores each value relative to its region's baseline
// rather than to cohort extremes, rewarding adequacy against a
// cost-of-living reference instead of relative rank.
func ratioToReference(c *cohort.Cohort, s Series, b *Baselines) Series {
	out := make(Series, len(s))
	for _, m := range c.Members {
		v, ok := s[m.Settlement.ID]
		if !ok {
			continue
		}
		ref := b.For(m.RegionName)
		if ref <= 0 {
			continue
		}
		ratio := math.Min(v/ref, ratioCap)
		out[m.Settlement.ID] = ratio / ratioCap
	}
	return out
}

func seriesRange(s Series) (lo, hi float64) {
	first := true
	for _, v := range s {
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
