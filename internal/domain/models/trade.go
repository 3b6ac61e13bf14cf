package models

// TradeRecord is one ledger entry as served by the ledger API.
//
// Numeric fields are pointers because the ledger may leave them empty: open
// positions have no ExitPrice, and rows imported without prices carry no
// ProfitLoss either. Tags keep the order the server sent.
//
// swagger:model TradeRecord
type TradeRecord struct {
	ID         int64     `json:"id" example:"42"`
	Symbol     string    `json:"symbol" example:"AAPL"`
	EntryPrice *float64  `json:"entryPrice" example:"100.5"`
	ExitPrice  *float64  `json:"exitPrice" example:"120"`
	Quantity   *float64  `json:"quantity" example:"10"`
	ProfitLoss *float64  `json:"profitLoss" example:"195"`
	Timestamp  Timestamp `json:"timestamp" swaggertype:"string" example:"2023-08-01T15:30:00"`
	Tags       []string  `json:"tags"`
	Notes      string    `json:"notes"`
}

// Float returns a pointer to v. Handy for building records in code and tests.
func Float(v float64) *float64 {
	return &v
}
