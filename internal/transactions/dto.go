package transactions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mywealth/wealth-backend/pkg/db/models"
	"github.com/mywealth/wealth-backend/pkg/enums"
)

// TransactionDTO is the API representation of a ledger entry.
type TransactionDTO struct {
	ID                   int64                 `json:"id"`
	AssetID              int64                 `json:"asset_id"`
	TransactionType      enums.TransactionType `json:"transaction_type"`
	Amount               float64               `json:"amount"`
	QuantityChange       float64               `json:"quantity_change"`
	PriceAtTransaction   *float64              `json:"price_at_transaction"`
	ExchangeRate         float64               `json:"exchange_rate"`
	SourceAmount         *float64              `json:"source_amount"`
	SourceCurrency       *string               `json:"source_currency"`
	BalanceAfter         float64               `json:"balance_after"`
	RealizedPnL          *float64              `json:"realized_pnl"`
	RelatedTransactionID *int64                `json:"related_transaction_id"`
	Note                 *string               `json:"note"`
	TransactionDate      time.Time             `json:"transaction_date"`
	CreatedAt            time.Time             `json:"created_at"`
}

// CreateTransactionInput is a movement against one of the caller's assets.
type CreateTransactionInput struct {
	AssetID              int64
	Type                 enums.TransactionType
	Amount               decimal.Decimal
	QuantityChange       decimal.Decimal
	PriceAtTransaction   decimal.NullDecimal
	ExchangeRate         decimal.Decimal
	SourceAmount         decimal.NullDecimal
	SourceCurrency       *string
	Note                 *string
	RelatedTransactionID *int64
}

// ListResult is one page of an asset's history.
type ListResult struct {
	Items      []TransactionDTO `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

func FromModel(t *models.Transaction) *TransactionDTO {
	if t == nil {
		return nil
	}
	return &TransactionDTO{
		ID:                   t.ID,
		AssetID:              t.AssetID,
		TransactionType:      t.TransactionType,
		Amount:               t.Amount.InexactFloat64(),
		QuantityChange:       t.QuantityChange.InexactFloat64(),
		PriceAtTransaction:   nullableFloat(t.PriceAtTransaction),
		ExchangeRate:         t.ExchangeRate.InexactFloat64(),
		SourceAmount:         nullableFloat(t.SourceAmount),
		SourceCurrency:       t.SourceCurrency,
		BalanceAfter:         t.BalanceAfter.InexactFloat64(),
		RealizedPnL:          nullableFloat(t.RealizedPnL),
		RelatedTransactionID: t.RelatedTransactionID,
		Note:                 t.Note,
		TransactionDate:      t.TransactionDate,
		CreatedAt:            t.CreatedAt,
	}
}

func nullableFloat(v decimal.NullDecimal) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Decimal.InexactFloat64()
	return &f
}
