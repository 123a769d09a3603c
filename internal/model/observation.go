package model

// Observation is one raw component row. Static sources leave Year and
// Month zero; yearly sources leave Month zero. Value may be nil when the
// source delivered an empty cell that ingestion preserved.
type Observation struct {
	TerritoryID  string   `json:"territory_id,omitempty"`
	Municipality string   `json:"municipality_name,omitempty"`
	Year         int      `json:"year,omitempty"`
	Month        int      `json:"month,omitempty"`
	Value        *float64 `json:"value"`
	Source       string   `json:"source,omitempty"`
}

// ClimateObservation is one monthly temperature row (fact_climate_monthly).
type ClimateObservation struct {
	TerritoryID string   `json:"territory_id"`
	Year        int      `json:"year"`
	Month       int      `json:"month"`
	TempAvg     *float64 `json:"temp_avg_celsius"`
}
