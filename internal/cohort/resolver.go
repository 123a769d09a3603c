// Package cohort builds the canonical settlement-territory-region mapping
// the component builders join against.
package cohort

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sberindex/ndi-cli/internal/model"
)

// KeyKind selects one of the two join strategies component tables use.
type KeyKind int

const (
	// KeyTerritory joins on the lower-level territory code.
	KeyTerritory KeyKind = iota
	// KeyName joins on the normalized municipality name.
	KeyName
)

// Member is one resolved cohort settlement. TerritoryID and NormName are
// empty when the settlement's municipality link is absent; component
// builders treat that as "no match", never as an error.
type Member struct {
	Settlement  model.Settlement
	RegionName  string
	TerritoryID string
	NormName    string
	Attrs       model.Attributes
}

// Key returns the member's join key for the given strategy, or "" when
// the member cannot be joined that way.
func (m Member) Key(kind KeyKind) string {
	if kind == KeyTerritory {
		return m.TerritoryID
	}
	return m.NormName
}

// Cohort is the fixed set of settlements under analysis for one run.
type Cohort struct {
	Members []Member
	byID    map[int64]*Member
}

// Resolve joins the settlement registry against the region and municipality
// registries and produces the cohort mapping. The mapping is recomputed for
// every run; it is never cached across snapshots.
func Resolve(settlements []model.Settlement, regions []model.Region, munis []model.Municipality, attrs map[int64]model.Attributes) (*Cohort, error) {
	regionsByID := make(map[int64]string, len(regions))
	for _, r := range regions {
		regionsByID[r.ID] = r.Name
	}
	munisByID := make(map[int64]model.Municipality, len(munis))
	for _, m := range munis {
		munisByID[m.ID] = m
	}

	c := &Cohort{byID: make(map[int64]*Member, len(settlements))}

	var unlinked int
	for _, s := range settlements {
		if _, dup := c.byID[s.ID]; dup {
			return nil, eris.Errorf("cohort: duplicate settlement id %d", s.ID)
		}
		// Reserve the id so the duplicate check above can fire; the entry
		// is pointed at the sorted member below.
		c.byID[s.ID] = nil

		m := Member{
			Settlement: s,
			RegionName: regionsByID[s.RegionID],
		}
		if s.MunicipalityDownID != nil {
			if mun, ok := munisByID[*s.MunicipalityDownID]; ok {
				m.TerritoryID = mun.TerritoryID
				m.NormName = NormalizeMunicipality(mun.Name)
			}
		}
		if m.TerritoryID == "" && m.NormName == "" {
			unlinked++
		}
		if a, ok := attrs[s.ID]; ok {
			m.Attrs = a
		}

		c.Members = append(c.Members, m)
	}

	// Deterministic member order regardless of registry order.
	sort.Slice(c.Members, func(i, j int) bool {
		return c.Members[i].Settlement.ID < c.Members[j].Settlement.ID
	})
	for i := range c.Members {
		c.byID[c.Members[i].Settlement.ID] = &c.Members[i]
	}

	zap.L().Info("cohort: resolved",
		zap.Int("settlements", len(c.Members)),
		zap.Int("unlinked", unlinked),
	)

	return c, nil
}

// Member returns the cohort member with the given settlement id.
func (c *Cohort) Member(settlementID int64) (*Member, bool) {
	m, ok := c.byID[settlementID]
	return m, ok
}

// Size returns the number of cohort members.
func (c *Cohort) Size() int {
	return len(c.Members)
}
