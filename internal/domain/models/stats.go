package models

// StatsSnapshot is the aggregate view over the full ledger.
//
// It is replaced as a whole on every refresh. Fields the server omits decode
// to zero, which is also what the dashboard displays for them.
//
// swagger:model StatsSnapshot
type StatsSnapshot struct {
	TotalTrades    int64            `json:"totalTrades" example:"12"`
	SumProfitLoss  float64          `json:"sumProfitLoss" example:"340.5"`
	AvgProfitLoss  float64          `json:"avgProfitLoss" example:"28.37"`
	WinRatePercent float64          `json:"winRatePercent" example:"58.3"`
	BySymbol       map[string]int64 `json:"bySymbol,omitempty"`
}
