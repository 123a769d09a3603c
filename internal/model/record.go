package model

// Record is the final per-settlement output of the composite scorer, in
// the shape the dashboard consumes. Computed fresh on every run, never
// mutated in place.
type Record struct {
	SettlementID   int64  `json:"settlement_id"`
	SettlementName string `json:"settlement_name"`
	SettlementType string `json:"settlement_type"`
	RegionName     string `json:"region_name"`
	IsArctic       bool   `json:"is_arctic"`
	IsRemote       bool   `json:"is_remote"`
	IsSpecial      bool   `json:"is_special"`
	IsSuburb       bool   `json:"is_suburb"`

	// Component scores, native [0,1] and 0-100 display views.
	POADScore             float64 `json:"poad_score"`
	MarketScore           float64 `json:"market_score"`
	ConsumptionScore      float64 `json:"consumption_score"`
	AccessibilityScore    float64 `json:"accessibility_score"`
	ClimateScore          float64 `json:"climate_score"`
	MobilityScore         float64 `json:"mobility_score"`
	POADScore100          float64 `json:"poad_score_100"`
	MarketScore100        float64 `json:"market_score_100"`
	ConsumptionScore100   float64 `json:"consumption_score_100"`
	AccessibilityScore100 float64 `json:"accessibility_score_100"`
	ClimateScore100       float64 `json:"climate_score_100"`
	MobilityScore100      float64 `json:"mobility_score_100"`

	// Weighted index at three scales, each rounded independently from the
	// unrounded value.
	NDIScore    float64 `json:"ndi_score"`
	NDIScore100 float64 `json:"ndi_score_100"`
	NDI10       float64 `json:"ndi_10"`
	NDIRank     int     `json:"ndi_rank"`
	ColorNDI    string  `json:"color_ndi"`

	// Auxiliary climate and mobility metrics, passed through for the UI.
	AvgTempCelsius       *float64 `json:"avg_temp_celsius"`
	AvgTempWinterCelsius *float64 `json:"avg_temp_winter_celsius"`
	AvgTempSummerCelsius *float64 `json:"avg_temp_summer_celsius"`
	TempAmplitudeCelsius *float64 `json:"temp_amplitude_celsius"`
	AvgHDDYearly         *float64 `json:"avg_hdd_yearly"`
	ClimateCategory      string   `json:"climate_category,omitempty"`
	HeatingCostPct       *float64 `json:"heating_cost_pct"`
	MobilityIndexKM      *float64 `json:"mobility_index_km"`
}
