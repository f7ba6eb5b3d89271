package postgres

import "time"

// UniverseRecord is one ticker of the companies_universe table. Ordinal keeps
// the snapshot's row order, which sector grouping depends on.
type UniverseRecord struct {
	Ordinal uint `gorm:"column:ordinal;primaryKey;autoIncrement"`

	ID     string `gorm:"column:id;type:text"`
	Ticker string `gorm:"column:ticker;type:text;not null;index:idx_universe_ticker"`
	Name   string `gorm:"column:name;type:text"`
	Sector string `gorm:"column:sector;type:text;index:idx_universe_sector"`
	Region string `gorm:"column:region;type:text"`

	MarketCapBn           float64 `gorm:"column:market_cap_bn;type:numeric"`
	BaseESGScore          int     `gorm:"column:base_esg_score"`
	AIPredictedDrift      int     `gorm:"column:ai_predicted_drift"`
	EnergyEfficiencyIndex float64 `gorm:"column:energy_efficiency_index;type:numeric"`
	EmployeeTurnoverRate  float64 `gorm:"column:employee_turnover_rate;type:numeric"`
	CarbonIntensity       float64 `gorm:"column:carbon_intensity;type:numeric"`
	AnomalyFlag           bool    `gorm:"column:anomaly_flag;not null"`

	LastAuditDate time.Time `gorm:"column:last_audit_date;type:date"`
}

// TableName overrides the default table name for GORM.
func (UniverseRecord) TableName() string {
	return "companies_universe"
}

// HistoryRecord is one trading day of the market_history table.
type HistoryRecord struct {
	RowID uint `gorm:"column:row_id;primaryKey;autoIncrement"`

	Ticker             string    `gorm:"column:ticker;type:text;not null;index:idx_history_ticker_date"`
	Date               time.Time `gorm:"column:date;not null;index:idx_history_ticker_date"`
	HistoricalESGScore int       `gorm:"column:historical_esg_score"`
	DailyReturn        float64   `gorm:"column:daily_return"`
}

// TableName overrides the default table name for GORM.
func (HistoryRecord) TableName() string {
	return "market_history"
}
