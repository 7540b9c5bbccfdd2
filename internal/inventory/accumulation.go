package inventory

import "github.com/shopspring/decimal"

// accumulation covers cash-like assets. Without an explicit quantity change
// the quantity mirrors the value 1:1.
type accumulation struct{}

func (accumulation) Name() string { return "accumulation" }

func (accumulation) Apply(pos Position, mv Movement) Outcome {
	pos.BookValue = pos.BookValue.Add(mv.Amount)
	pos.Quantity = pos.Quantity.Add(unitsOf(mv.Amount, mv.QuantityChange))
	return Outcome{Position: pos}
}

func (accumulation) Reverse(pos Position, rec Recorded) Position {
	pos.BookValue = pos.BookValue.Sub(rec.Amount)
	pos.Quantity = pos.Quantity.Sub(unitsOf(rec.Amount, rec.QuantityChange))
	return pos
}

func unitsOf(amount, quantityChange decimal.Decimal) decimal.Decimal {
	if quantityChange.IsZero() {
		return amount
	}
	return quantityChange
}
