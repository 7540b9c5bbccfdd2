package enums

import "fmt"

// AssetType maps to the asset_type column and selects the inventory regime.
type AssetType string

const (
	AssetTypeCash       AssetType = "CASH"
	AssetTypeStock      AssetType = "STOCK"
	AssetTypeCrypto     AssetType = "CRYPTO"
	AssetTypeGold       AssetType = "GOLD"
	AssetTypeLiability  AssetType = "LIABILITY"
	AssetTypeCreditCard AssetType = "CREDIT_CARD"
	AssetTypePending    AssetType = "PENDING"
)

var validAssetTypes = []AssetType{
	AssetTypeCash,
	AssetTypeStock,
	AssetTypeCrypto,
	AssetTypeGold,
	AssetTypeLiability,
	AssetTypeCreditCard,
	AssetTypePending,
}

// String implements fmt.Stringer.
func (t AssetType) String() string {
	return string(t)
}

// IsValid reports whether the value matches a known asset type.
func (t AssetType) IsValid() bool {
	for _, candidate := range validAssetTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsInventoryCosted reports whether quantity and average cost are tracked per unit.
func (t AssetType) IsInventoryCosted() bool {
	switch t {
	case AssetTypeStock, AssetTypeCrypto, AssetTypeGold:
		return true
	}
	return false
}

// ParseAssetType converts raw input into an AssetType.
func ParseAssetType(value string) (AssetType, error) {
	for _, candidate := range validAssetTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset type %q", value)
}
