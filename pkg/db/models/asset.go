package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mywealth/wealth-backend/pkg/enums"
	"github.com/mywealth/wealth-backend/pkg/types"
)

// Asset is a single holding (cash account, position, liability) owned by a user.
type Asset struct {
	ID                int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID            string            `gorm:"column:user_id;type:text;not null;index"`
	Name              string            `gorm:"column:name;type:text;not null"`
	AssetType         enums.AssetType   `gorm:"column:asset_type;type:text;not null"`
	Status            enums.AssetStatus `gorm:"column:status;type:text;not null"`
	Currency          string            `gorm:"column:currency;type:text;not null"`
	Symbol            *string           `gorm:"column:symbol;type:text"`
	Quantity          decimal.Decimal   `gorm:"column:quantity;type:numeric(28,10);not null"`
	AverageCost       decimal.Decimal   `gorm:"column:average_cost;type:numeric(28,10);not null"`
	BookValue         decimal.Decimal   `gorm:"column:book_value;type:numeric(28,10);not null"`
	IncludeInNetWorth bool              `gorm:"column:include_in_net_worth;not null"`
	MetaData          types.Metadata    `gorm:"column:meta_data;type:jsonb"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Asset) TableName() string {
	return "assets"
}
