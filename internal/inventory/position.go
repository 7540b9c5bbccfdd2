// Package inventory holds the moving-average costing rules shared by the
// ledger and the asset registry. Everything here is pure.
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/mywealth/wealth-backend/pkg/enums"
)

// ZeroTolerance is the remaining quantity at or below which a costed
// position is treated as fully disposed.
var ZeroTolerance = decimal.New(1, -6)

// Position is the numeric state of an asset.
type Position struct {
	Quantity    decimal.Decimal
	BookValue   decimal.Decimal
	AverageCost decimal.Decimal
	Status      enums.AssetStatus
}

// Movement is a transaction about to be applied.
type Movement struct {
	Amount         decimal.Decimal
	QuantityChange decimal.Decimal
}

// Recorded is the stored part of a transaction needed to undo it.
type Recorded struct {
	Amount         decimal.Decimal
	QuantityChange decimal.Decimal
	RealizedPnL    decimal.NullDecimal
}

// Outcome is the position after applying a movement. RealizedPnL is only
// valid for disposals of costed assets.
type Outcome struct {
	Position    Position
	RealizedPnL decimal.NullDecimal
}

// Regime applies and reverses movements for one family of asset types.
type Regime interface {
	Name() string
	Apply(pos Position, mv Movement) Outcome
	Reverse(pos Position, rec Recorded) Position
}

var (
	costedRegime       Regime = costed{}
	accumulationRegime Regime = accumulation{}
)

// RegimeFor selects the regime for an asset type. Unknown types accumulate.
func RegimeFor(assetType enums.AssetType) Regime {
	if assetType.IsInventoryCosted() {
		return costedRegime
	}
	return accumulationRegime
}

// Opening builds the position of a newly created asset.
func Opening(quantity, totalCost decimal.Decimal) Position {
	avg := decimal.NewFromInt(1)
	if !quantity.IsZero() {
		avg = totalCost.Div(quantity)
	}
	return Position{
		Quantity:    quantity,
		BookValue:   totalCost,
		AverageCost: avg,
		Status:      enums.AssetStatusActive,
	}
}

// Withdraw removes funds from a source asset when it pays for another one.
// Only cash mirrors the value change in its quantity.
func Withdraw(pos Position, assetType enums.AssetType, amount decimal.Decimal) Position {
	pos.BookValue = pos.BookValue.Sub(amount)
	if assetType == enums.AssetTypeCash {
		pos.Quantity = pos.Quantity.Sub(amount)
	}
	return pos
}
