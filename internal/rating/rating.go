// Package rating classifies trades for display: a win/loss marker and a
// five-step quality level derived from profit, position size and drawdown.
package rating

import (
	"math"

	"github.com/guttosm/tradedash/internal/domain/models"
)

// WinLoss marks a trade as profitable or not.
type WinLoss int

const (
	Loss WinLoss = iota
	Win
)

func (w WinLoss) String() string {
	if w == Win {
		return "WIN"
	}
	return "LOSS"
}

// Icon is the marker shown next to the trade.
func (w WinLoss) Icon() string {
	if w == Win {
		return "🟢"
	}
	return "🔴"
}

// Level is the quality of a trade on a 1..5 scale.
type Level int

const (
	Risky Level = iota + 1
	Cautious
	Okay
	Good
	Excellent
)

var levels = map[Level]struct{ name, icon, description string }{
	Excellent: {"EXCELLENT", "🔼", "Top tier trade, high confidence"},
	Good:      {"GOOD", "✅", "Good trade, profitable and reasonable risk"},
	Okay:      {"OKAY", "➖", "Average trade, small gain/loss"},
	Cautious:  {"CAUTIOUS", "⚠️", "Trade with higher risk or small loss, be careful"},
	Risky:     {"RISKY", "❌", "High-risk trade, likely loss"},
}

func (l Level) String() string      { return levels[l].name }
func (l Level) Icon() string        { return levels[l].icon }
func (l Level) Description() string { return levels[l].description }

// Scoring constants.
const (
	maxProfit         = 300.0
	maxQuantityFactor = 3.0
	weightProfit      = 0.6
	weightQuantity    = 0.3
	weightRisk        = 0.1
)

// Profit returns the trade's profit: the reported profitLoss, or
// (exit-entry)*quantity when it is missing and the inputs are present.
func Profit(t models.TradeRecord) (float64, bool) {
	if t.ProfitLoss != nil {
		return *t.ProfitLoss, true
	}
	if t.EntryPrice == nil || t.ExitPrice == nil || t.Quantity == nil {
		return 0, false
	}
	return (*t.ExitPrice - *t.EntryPrice) * *t.Quantity, true
}

// DetermineWinLoss is Win only for a strictly positive profit.
func DetermineWinLoss(t models.TradeRecord) WinLoss {
	if p, ok := Profit(t); ok && p > 0 {
		return Win
	}
	return Loss
}

// CalculateLevel scores a trade. Trades missing entry, exit or quantity are Okay;
// non-positive profit is Risky.
func CalculateLevel(t models.TradeRecord) Level {
	if t.EntryPrice == nil || t.ExitPrice == nil || t.Quantity == nil {
		return Okay
	}
	profit, _ := Profit(t)
	if profit <= 0 {
		return Risky
	}

	entry, exit, qty := *t.EntryPrice, *t.ExitPrice, *t.Quantity
	quantityFactor := math.Log10(qty + 1)
	risk := estimateRisk(entry, exit, qty)

	score := normalize(profit, maxProfit)*weightProfit +
		normalize(quantityFactor, maxQuantityFactor)*weightQuantity +
		(1-risk)*weightRisk

	r := int(math.Ceil(score * 5))
	if r < 1 {
		r = 1
	}
	if r > 5 {
		r = 5
	}
	return Level(r)
}

func normalize(v, limit float64) float64 {
	return math.Min(1.0, v/limit)
}

// estimateRisk is the realised loss as a share of the position, in [0,1].
func estimateRisk(entry, exit, qty float64) float64 {
	potentialLoss := entry * qty
	actualLoss := math.Max(0, entry-exit) * qty
	return math.Min(1.0, actualLoss/(potentialLoss+1))
}
