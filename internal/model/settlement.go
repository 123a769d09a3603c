// Package model defines the data types shared across the NDI pipeline.
package model

// Settlement is one row of the settlement registry (dict_settlements).
type Settlement struct {
	ID                 int64  `json:"settlement_id"`
	Name               string `json:"settlement_name"`
	Type               string `json:"settlement_type"`
	RegionID           int64  `json:"region_id"`
	MunicipalityUpID   *int64 `json:"municipality_up_id,omitempty"`
	MunicipalityDownID *int64 `json:"municipality_down_id,omitempty"`
}

// Region is one row of dict_regions.
type Region struct {
	ID   int64  `json:"region_id"`
	Name string `json:"region_name"`
}

// Municipality is one row of dict_municipalities. TerritoryID is the
// lower-level territory code (OKTMO-style) that territory-keyed component
// tables join against.
type Municipality struct {
	ID          int64  `json:"municipality_id"`
	Name        string `json:"municipality_name"`
	TerritoryID string `json:"territory_id"`
}

// Attributes holds the per-settlement classification flags
// (meta_settlement_attributes).
type Attributes struct {
	IsArctic  bool `json:"is_arctic"`
	IsRemote  bool `json:"is_remote"`
	IsSpecial bool `json:"is_special"`
	IsSuburb  bool `json:"is_suburb"`
}

// Coordinates holds a settlement's location (meta_settlement_coordinates).
type Coordinates struct {
	SettlementID int64   `json:"settlement_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}
