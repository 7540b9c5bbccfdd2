package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mywealth/wealth-backend/pkg/enums"
)

// Transaction is an immutable ledger entry applied to one asset.
type Transaction struct {
	ID                   int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	AssetID              int64                 `gorm:"column:asset_id;not null;index"`
	UserID               string                `gorm:"column:user_id;type:text;not null;index"`
	TransactionType      enums.TransactionType `gorm:"column:transaction_type;type:text;not null"`
	Amount               decimal.Decimal       `gorm:"column:amount;type:numeric(28,10);not null"`
	QuantityChange       decimal.Decimal       `gorm:"column:quantity_change;type:numeric(28,10);not null"`
	PriceAtTransaction   decimal.NullDecimal   `gorm:"column:price_at_transaction;type:numeric(28,10)"`
	ExchangeRate         decimal.Decimal       `gorm:"column:exchange_rate;type:numeric(28,10);not null"`
	SourceAmount         decimal.NullDecimal   `gorm:"column:source_amount;type:numeric(28,10)"`
	SourceCurrency       *string               `gorm:"column:source_currency;type:text"`
	BalanceAfter         decimal.Decimal       `gorm:"column:balance_after;type:numeric(28,10);not null"`
	RealizedPnL          decimal.NullDecimal   `gorm:"column:realized_pnl;type:numeric(28,10)"`
	RelatedTransactionID *int64                `gorm:"column:related_transaction_id"`
	Note                 *string               `gorm:"column:note;type:text"`
	TransactionDate      time.Time             `gorm:"column:transaction_date;not null"`
	CreatedAt            time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}
