package assets

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mywealth/wealth-backend/internal/inventory"
	"github.com/mywealth/wealth-backend/pkg/db/models"
	"github.com/mywealth/wealth-backend/pkg/enums"
	"github.com/mywealth/wealth-backend/pkg/types"
)

const DefaultCurrency = "TWD"

// AssetDTO is the API representation of an asset.
type AssetDTO struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	AssetType         enums.AssetType   `json:"asset_type"`
	Status            enums.AssetStatus `json:"status"`
	Currency          string            `json:"currency"`
	Symbol            *string           `json:"symbol"`
	Quantity          float64           `json:"quantity"`
	AverageCost       float64           `json:"average_cost"`
	BookValue         float64           `json:"book_value"`
	IncludeInNetWorth bool              `json:"include_in_net_worth"`
	MetaData          types.Metadata    `json:"meta_data"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// CreateAssetInput describes a new asset and its optional funding source.
type CreateAssetInput struct {
	Name              string
	AssetType         enums.AssetType
	Currency          string
	Symbol            *string
	InitialTotalCost  decimal.Decimal
	InitialQuantity   decimal.Decimal
	IncludeInNetWorth bool
	MetaData          types.Metadata

	SourceAssetID   *int64
	SourceAmount    decimal.NullDecimal
	SourceCurrency  *string
	ExchangeRate    decimal.Decimal
	TransactionTime *time.Time
}

// UpdateAssetInput carries the fields present in a partial update.
type UpdateAssetInput struct {
	Name              *string
	Symbol            *string
	Currency          *string
	IncludeInNetWorth *bool
	MetaData          types.Metadata
}

// FromModel converts the persisted asset into its DTO.
func FromModel(a *models.Asset) *AssetDTO {
	if a == nil {
		return nil
	}
	return &AssetDTO{
		ID:                a.ID,
		Name:              a.Name,
		AssetType:         a.AssetType,
		Status:            a.Status,
		Currency:          a.Currency,
		Symbol:            a.Symbol,
		Quantity:          a.Quantity.InexactFloat64(),
		AverageCost:       a.AverageCost.InexactFloat64(),
		BookValue:         a.BookValue.InexactFloat64(),
		IncludeInNetWorth: a.IncludeInNetWorth,
		MetaData:          a.MetaData.Clone(),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// PositionOf extracts the inventory state of an asset.
func PositionOf(a *models.Asset) inventory.Position {
	return inventory.Position{
		Quantity:    a.Quantity,
		BookValue:   a.BookValue,
		AverageCost: a.AverageCost,
		Status:      a.Status,
	}
}

// ApplyPosition copies a computed position back onto the asset.
func ApplyPosition(a *models.Asset, pos inventory.Position) {
	a.Quantity = pos.Quantity
	a.BookValue = pos.BookValue
	a.AverageCost = pos.AverageCost
	a.Status = pos.Status
}
