package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/mywealth/wealth-backend/pkg/enums"
)

// costed tracks units at a moving average cost (stocks, crypto, gold).
type costed struct{}

func (costed) Name() string { return "costed" }

func (costed) Apply(pos Position, mv Movement) Outcome {
	switch mv.QuantityChange.Sign() {
	case 1:
		pos.BookValue = pos.BookValue.Add(mv.Amount.Abs())
		pos.Quantity = pos.Quantity.Add(mv.QuantityChange)
		pos.AverageCost = averageOf(pos)
		if pos.Status == enums.AssetStatusArchived {
			pos.Status = enums.AssetStatusActive
		}
		return Outcome{Position: pos}

	case -1:
		costRemoved := mv.QuantityChange.Abs().Mul(pos.AverageCost)
		pnl := mv.Amount.Sub(costRemoved)
		pos.BookValue = pos.BookValue.Sub(costRemoved)
		pos.Quantity = pos.Quantity.Add(mv.QuantityChange)
		if pos.Quantity.LessThanOrEqual(ZeroTolerance) {
			// average cost is kept for reactivation
			pos.Quantity = decimal.Zero
			pos.BookValue = decimal.Zero
			pos.Status = enums.AssetStatusArchived
		}
		return Outcome{Position: pos, RealizedPnL: decimal.NewNullDecimal(pnl)}
	}

	return Outcome{Position: pos}
}

// Reverse undoes a movement linearly. Unlike Apply it never snaps to zero.
func (costed) Reverse(pos Position, rec Recorded) Position {
	if rec.QuantityChange.IsPositive() {
		pos.BookValue = pos.BookValue.Sub(rec.Amount.Abs())
		pos.Quantity = pos.Quantity.Sub(rec.QuantityChange)
	} else {
		pnl := decimal.Zero
		if rec.RealizedPnL.Valid {
			pnl = rec.RealizedPnL.Decimal
		}
		pos.BookValue = pos.BookValue.Add(rec.Amount.Sub(pnl))
		pos.Quantity = pos.Quantity.Sub(rec.QuantityChange)
	}

	if pos.Quantity.IsPositive() {
		pos.AverageCost = pos.BookValue.Div(pos.Quantity)
		pos.Status = enums.AssetStatusActive
	}
	return pos
}

func averageOf(pos Position) decimal.Decimal {
	if !pos.Quantity.IsPositive() {
		return decimal.Zero
	}
	return pos.BookValue.Div(pos.Quantity)
}
