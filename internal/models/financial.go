package models

import "github.com/shopspring/decimal"

// FinancialSummary aggregates one school-month of canteen finances. It feeds
// the AI insight prompts and the dashboard surface.
type FinancialSummary struct {
	Sales                 decimal.Decimal
	Purchases             decimal.Decimal
	EntriesCount          int
	ReportStatus          string
	LiquidationTotal      decimal.Decimal
	LiquidationByCategory map[LiquidationCategory]decimal.Decimal
}

// NetIncome returns sales minus purchases.
func (s FinancialSummary) NetIncome() decimal.Decimal {
	return s.Sales.Sub(s.Purchases)
}
