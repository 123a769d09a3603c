// Package geo computes the hub-accessibility component input from
// settlement coordinates and population counts.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sberindex/ndi-cli/internal/model"
)

const earthRadiusKM = 6371.0

// Params controls hub selection and the distance decay curve.
type Params struct {
	// HubMinPopulation is the population floor for a settlement to count
	// as a hub.
	HubMinPopulation int64
	// DecayKM scales the distance decay: raw = 1 / (1 + d/DecayKM).
	DecayKM float64
}

// Result holds per-settlement accessibility outputs.
type Result struct {
	// Scores are min-max rescaled over the cohort, in [0,1].
	Scores map[int64]float64
	// Distances hold kilometres to the nearest hub.
	Distances map[int64]float64
	// Hubs lists the settlement ids that qualified as hubs.
	Hubs []int64
}

// BuildAccessibility scores every settlement with known coordinates by
// its distance to the nearest hub. Hubs are settlements at or above the
// population floor; a hub's own distance is zero. When no settlement
// qualifies as a hub, the nearest neighbour substitutes so isolated
// cohorts still get a distance gradient.
func BuildAccessibility(coords []model.Coordinates, population map[int64]int64, p Params) (*Result, error) {
	if p.HubMinPopulation <= 0 || p.DecayKM <= 0 {
		return nil, eris.New("geo: hub population floor and decay must be positive")
	}
	if len(coords) == 0 {
		return nil, eris.New("geo: no settlement coordinates")
	}

	log := zap.L().With(zap.String("component", "geo.access"))

	var hubs []model.Coordinates
	hubIDs := make([]int64, 0)
	for _, c := range coords {
		if population[c.SettlementID] >= p.HubMinPopulation {
			hubs = append(hubs, c)
			hubIDs = append(hubIDs, c.SettlementID)
		}
	}

	res := &Result{
		Scores:    make(map[int64]float64, len(coords)),
		Distances: make(map[int64]float64, len(coords)),
		Hubs:      hubIDs,
	}

	raw := make(map[int64]float64, len(coords))
	for _, c := range coords {
		d, ok := nearestKM(c, hubs, coords)
		if !ok {
			continue
		}
		res.Distances[c.SettlementID] = d
		raw[c.SettlementID] = 1.0 / (1.0 + d/p.DecayKM)
	}
	if len(raw) == 0 {
		return nil, eris.New("geo: no settlement has a reachable hub or neighbour")
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range raw {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi > lo {
		for id, v := range raw {
			res.Scores[id] = (v - lo) / (hi - lo)
		}
	} else {
		// A flat decay curve carries no ranking signal; the raw values
		// are already in [0,1] so they pass through unscaled.
		for id, v := range raw {
			res.Scores[id] = v
		}
	}

	log.Info("accessibility computed",
		zap.Int("settlements", len(res.Scores)),
		zap.Int("hubs", len(hubIDs)),
	)
	return res, nil
}

// nearestKM returns the distance from c to the closest hub, or to the
// closest other settlement when the hub list is empty. The second return
// is false when there is nothing to measure against.
func nearestKM(c model.Coordinates, hubs, all []model.Coordinates) (float64, bool) {
	targets := hubs
	excludeSelf := false
	if len(targets) == 0 {
		targets = all
		excludeSelf = true
	}

	best := math.Inf(1)
	found := false
	for _, t := range targets {
		if excludeSelf && t.SettlementID == c.SettlementID {
			continue
		}
		d := haversineKM(c.Latitude, c.Longitude, t.Latitude, t.Longitude)
		if d < best {
			best = d
			found = true
		}
	}
	return best, found
}

// haversineKM computes the great-circle distance in kilometres.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}
