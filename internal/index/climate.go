package index

import (
	"time"

	"github.com/sberindex/ndi-cli/internal/cohort"
	"github.com/sberindex/ndi-cli/internal/model"
)

// hddBase is the indoor reference temperature for heating degree days.
const hddBase = 18.0

// referenceHDD is the fixed comparison baseline for the heating-cost
// percentage (roughly a mid-latitude reference city's yearly HDD).
const referenceHDD = 5000.0

// Climate category thresholds on yearly HDD.
const (
	hddMild     = 4000.0
	hddCold     = 6000.0
	hddVeryCold = 8000.0
	hddArctic   = 10000.0
)

// ClimateStats holds the per-settlement descriptive climate metrics that
// accompany the climate score in the output record.
type ClimateStats struct {
	AvgTemp        *float64
	WinterTemp     *float64
	SummerTemp     *float64
	Amplitude      *float64
	HDD            *float64
	Category       string
	HeatingCostPct *float64
}

// BuildClimate computes seasonal temperature aggregates and yearly HDD
// from monthly territory-keyed observations, restricted to the latest year
// in the table, and scores cold severity by inverse min-max over the
// cohort: more HDD means a lower score.
func BuildClimate(c *cohort.Cohort, obs []model.ClimateObservation) (Series, map[int64]ClimateStats) {
	year := 0
	for _, o := range obs {
		if o.Year > year {
			year = o.Year
		}
	}

	// territory -> month -> mean temperature for the window year.
	monthly := make(map[string]map[int]float64)
	for _, o := range obs {
		if o.TempAvg == nil || o.Year != year || o.Month < 1 || o.Month > 12 {
			continue
		}
		byMonth, ok := monthly[o.TerritoryID]
		if !ok {
			byMonth = make(map[int]float64, 12)
			monthly[o.TerritoryID] = byMonth
		}
		byMonth[o.Month] = *o.TempAvg
	}

	stats := make(map[int64]ClimateStats, c.Size())
	hddSeries := make(Series)
	for _, m := range c.Members {
		byMonth, ok := monthly[m.Key(cohort.KeyTerritory)]
		if !ok || len(byMonth) == 0 {
			continue
		}

		s := ClimateStats{
			AvgTemp:    monthMean(byMonth, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12),
			WinterTemp: monthMean(byMonth, 12, 1, 2),
			SummerTemp: monthMean(byMonth, 6, 7, 8),
		}
		if s.WinterTemp != nil && s.SummerTemp != nil {
			amp := *s.SummerTemp - *s.WinterTemp
			s.Amplitude = &amp
		}

		hdd := yearlyHDD(byMonth, year)
		s.HDD = &hdd
		s.Category = climateCategory(hdd)
		cost := (hdd - referenceHDD) / referenceHDD * 100
		s.HeatingCostPct = &cost

		stats[m.Settlement.ID] = s
		hddSeries[m.Settlement.ID] = hdd
	}

	return inverseMinMax(hddSeries), stats
}

// monthMean averages the available values among the given months, or nil
// when none are present.
func monthMean(byMonth map[int]float64, months ...int) *float64 {
	var sum float64
	var n int
	for _, mo := range months {
		if t, ok := byMonth[mo]; ok {
			sum += t
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

// yearlyHDD sums max(0, base-t) scaled by month length over the window year.
func yearlyHDD(byMonth map[int]float64, year int) float64 {
	var hdd float64
	for mo := 1; mo <= 12; mo++ {
		t, ok := byMonth[mo]
		if !ok || t >= hddBase {
			continue
		}
		hdd += (hddBase - t) * float64(daysInMonth(year, mo))
	}
	return hdd
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func climateCategory(hdd float64) string {
	switch {
	case hdd < hddMild:
		return "mild"
	case hdd < hddCold:
		return "cold"
	case hdd < hddVeryCold:
		return "very_cold"
	case hdd < hddArctic:
		return "arctic"
	default:
		return "extreme"
	}
}
