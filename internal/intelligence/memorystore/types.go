package memorystore

import "time"

// Entity is one row of the ticker universe.
// Scores are clamped to 0-100 upstream and are not re-validated here.
type Entity struct {
	ID              string    `json:"id"`
	Ticker          string    `json:"ticker"`
	Name            string    `json:"name"`
	Sector          string    `json:"sector"`
	Region          string    `json:"region"`
	MarketCapBn     float64   `json:"market_cap_bn"`
	BaseScore       int       `json:"base_esg_score"`
	AIAdjustedScore int       `json:"ai_adjusted_score"`
	CarbonIntensity float64   `json:"carbon_intensity"`
	EfficiencyIndex float64   `json:"energy_efficiency_index"`
	TurnoverRate    float64   `json:"employee_turnover_rate"`
	AnomalyFlag     bool      `json:"anomaly_flag"`
	LastAuditDate   time.Time `json:"last_audit_date"`
}

// HistoryPoint is one trading day of a ticker's history ledger.
type HistoryPoint struct {
	Ticker       string    `json:"ticker"`
	Date         time.Time `json:"date"`
	RollingScore int       `json:"historical_esg_score"`
	DailyReturn  float64   `json:"daily_return"`
}
