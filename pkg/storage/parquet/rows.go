package parquet

// Column layouts of the two snapshot files as written by the data generator
// (pandas + pyarrow). pyarrow marks every column OPTIONAL, hence the pointers.

// UniverseRow is one ticker of companies_universe.parquet.
type UniverseRow struct {
	ID                    *string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Ticker                *string  `parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Name                  *string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Sector                *string  `parquet:"name=sector, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Region                *string  `parquet:"name=region, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	MarketCapBn           *float64 `parquet:"name=market_cap_bn, type=DOUBLE, repetitiontype=OPTIONAL"`
	BaseESGScore          *int64   `parquet:"name=base_esg_score, type=INT64, repetitiontype=OPTIONAL"`
	EnergyEfficiencyIndex *float64 `parquet:"name=energy_efficiency_index, type=DOUBLE, repetitiontype=OPTIONAL"`
	EmployeeTurnoverRate  *float64 `parquet:"name=employee_turnover_rate, type=DOUBLE, repetitiontype=OPTIONAL"`
	CarbonIntensity       *float64 `parquet:"name=carbon_intensity, type=DOUBLE, repetitiontype=OPTIONAL"`
	LastAuditDate         *int32   `parquet:"name=last_audit_date, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"` // days since epoch
	AIPredictedDrift      *int64   `parquet:"name=ai_predicted_drift, type=INT64, repetitiontype=OPTIONAL"`
	AnomalyFlag           *bool    `parquet:"name=anomaly_flag, type=BOOLEAN, repetitiontype=OPTIONAL"`
}

// HistoryRow is one trading day of market_history.parquet.
type HistoryRow struct {
	Ticker             *string  `parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Date               *int64   `parquet:"name=date, type=INT64, logicaltype=TIMESTAMP, logicaltype.isadjustedtoutc=false, logicaltype.unit=NANOS, repetitiontype=OPTIONAL"`
	HistoricalESGScore *int64   `parquet:"name=historical_esg_score, type=INT64, repetitiontype=OPTIONAL"`
	DailyReturn        *float64 `parquet:"name=daily_return, type=DOUBLE, repetitiontype=OPTIONAL"`
}
